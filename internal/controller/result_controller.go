package controller

import (
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	ResultService *service.ResultService
}

func NewResultController(resultService *service.ResultService) *ResultController {
	return &ResultController{ResultService: resultService}
}

// @Summary 结果详情（教师视角）
// @Tags 结果管理
// @Security BearerAuth
// @Produce json
// @Param id path int true "结果ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/results/{id} [get]
func (c *ResultController) GetResult(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	result, err := c.ResultService.GetResult(id)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 我的结果（未发布不可见，粒度按考试配置）
// @Tags 结果
// @Security BearerAuth
// @Produce json
// @Param id path int true "结果ID"
// @Success 200 {object} util.Response
// @Router /api/student/results/{id} [get]
func (c *ResultController) GetMyResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	result, err := c.ResultService.GetStudentResult(user.UserID, id)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 我的结果列表
// @Tags 结果
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/student/results [get]
func (c *ResultController) ListMyResults(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := pageParams(ctx)
	results, total, err := c.ResultService.ListByStudent(user.UserID, true, page, limit)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: results, Total: int64(total), Page: page, Limit: limit})
}

// @Summary 某考试的结果列表
// @Tags 结果管理
// @Security BearerAuth
// @Produce json
// @Param examId path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{examId}/results [get]
func (c *ResultController) ListExamResults(ctx *gin.Context) {
	examID, ok := pathID(ctx, "examId")
	if !ok {
		return
	}
	page, limit := pageParams(ctx)
	results, total, err := c.ResultService.ListByExam(examID, page, limit)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: results, Total: int64(total), Page: page, Limit: limit})
}

// @Summary 发布单个结果
// @Tags 结果管理
// @Security BearerAuth
// @Param id path int true "结果ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/results/{id}/release [post]
func (c *ResultController) ReleaseResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	result, err := c.ResultService.ReleaseResult(id, user.UserID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 批量发布某考试全部结果
// @Tags 结果管理
// @Security BearerAuth
// @Param examId path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{examId}/results/release [post]
func (c *ResultController) ReleaseExamResults(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	examID, ok := pathID(ctx, "examId")
	if !ok {
		return
	}
	released, err := c.ResultService.ReleaseAllForExam(examID, user.UserID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"released": released})
}

// @Summary 按部门列出结果
// @Tags 结果管理
// @Security BearerAuth
// @Produce json
// @Param id path int true "部门ID"
// @Success 200 {object} util.Response
// @Router /api/admin/departments/{id}/results [get]
func (c *ResultController) ListDepartmentResults(ctx *gin.Context) {
	departmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	page, limit := pageParams(ctx)
	results, total, err := c.ResultService.ListByDepartment(departmentID, page, limit)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: results, Total: int64(total), Page: page, Limit: limit})
}
