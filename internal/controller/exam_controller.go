package controller

import (
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

// @Summary 创建考试
// @Tags 考试管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exam body service.ExamCreateRequest true "考试信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.ExamCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	exam, err := c.ExamService.CreateExam(user.UserID, req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, exam)
}

// @Summary 考试详情（含题目）
// @Tags 考试管理
// @Security BearerAuth
// @Produce json
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	exam, err := c.ExamService.GetExam(id)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// @Summary 考试列表
// @Tags 考试管理
// @Security BearerAuth
// @Produce json
// @Param status query string false "状态过滤"
// @Param type query string false "类型过滤"
// @Param departmentId query int false "部门过滤"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/teacher/exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	filter := repository.ExamFilter{
		Status:       model.ExamStatus(ctx.Query("status")),
		Type:         model.ExamType(ctx.Query("type")),
		DepartmentID: util.ParseUintOrZero(ctx.Query("departmentId")),
	}
	if ctx.Query("mine") == "true" {
		if user := util.GetUserFromContext(ctx); user != nil {
			filter.CreatedBy = user.UserID
		}
	}
	exams, total, err := c.ExamService.ListExams(filter, page, limit)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: exams, Total: int64(total), Page: page, Limit: limit})
}

// @Summary 学生可参加的考试
// @Tags 考试
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/student/exams [get]
func (c *ExamController) ListAvailableExams(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := pageParams(ctx)
	exams, total, err := c.ExamService.ListAvailableExams(page, limit)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	// 非公开考试只对名单内学生可见
	visible := make([]model.Exam, 0, len(exams))
	for _, exam := range exams {
		if exam.IsStudentAllowed(user.UserID) {
			exam.Questions = nil
			visible = append(visible, exam)
		}
	}
	util.Success(ctx, util.PageResponse{List: visible, Total: int64(total), Page: page, Limit: limit})
}

// @Summary 更新考试
// @Tags 考试管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Param exam body service.ExamCreateRequest true "考试信息"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.ExamCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	exam, err := c.ExamService.UpdateExam(user.UserID, id, req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// @Summary 发布考试
// @Tags 考试管理
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/publish [post]
func (c *ExamController) PublishExam(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	exam, err := c.ExamService.PublishExam(id)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// @Summary 撤回发布
// @Tags 考试管理
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/unpublish [post]
func (c *ExamController) UnpublishExam(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	exam, err := c.ExamService.UnpublishExam(id)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// @Summary 归档考试
// @Tags 考试管理
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/archive [post]
func (c *ExamController) ArchiveExam(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	exam, err := c.ExamService.ArchiveExam(id)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// @Summary 删除考试（级联）
// @Tags 考试管理
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ExamService.DeleteExam(id); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
