package controller

import (
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// @Summary 用户列表
// @Tags 用户管理
// @Security BearerAuth
// @Produce json
// @Param role query string false "角色过滤"
// @Param departmentId query int false "部门过滤"
// @Success 200 {object} util.Response
// @Router /api/admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	users, total, err := c.UserService.ListUsers(
		model.UserRole(ctx.Query("role")),
		util.ParseUintOrZero(ctx.Query("departmentId")),
		page, limit)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: users, Total: int64(total), Page: page, Limit: limit})
}

type setDisabledRequest struct {
	Disabled bool `json:"disabled"`
}

// @Summary 启用/停用账号
// @Tags 用户管理
// @Accept json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param body body setDisabledRequest true "停用标志"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/disabled [put]
func (c *UserController) SetDisabled(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req setDisabledRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.UserService.SetDisabled(id, req.Disabled); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 部门列表
// @Tags 部门
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/departments [get]
func (c *UserController) ListDepartments(ctx *gin.Context) {
	depts, err := c.UserService.ListDepartments(ctx.Query("all") != "true")
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, depts)
}

type departmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

// @Summary 创建部门
// @Tags 部门
// @Accept json
// @Security BearerAuth
// @Param department body departmentRequest true "部门"
// @Success 201 {object} util.Response
// @Router /api/admin/departments [post]
func (c *UserController) CreateDepartment(ctx *gin.Context) {
	var req departmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	dept, err := c.UserService.CreateDepartment(req.Name, req.Description)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, dept)
}

// @Summary 更新部门
// @Tags 部门
// @Accept json
// @Security BearerAuth
// @Param id path int true "部门ID"
// @Param department body departmentRequest true "部门"
// @Success 200 {object} util.Response
// @Router /api/admin/departments/{id} [put]
func (c *UserController) UpdateDepartment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req departmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	dept, err := c.UserService.UpdateDepartment(id, req.Name, req.Description, req.IsActive)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, dept)
}

// @Summary 删除部门
// @Tags 部门
// @Security BearerAuth
// @Param id path int true "部门ID"
// @Success 200 {object} util.Response
// @Router /api/admin/departments/{id} [delete]
func (c *UserController) DeleteDepartment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.UserService.DeleteDepartment(id); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
