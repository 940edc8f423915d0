package controller

import (
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
	ProjectService    *service.ProjectService
}

func NewSubmissionController(submissionService *service.SubmissionService, projectService *service.ProjectService) *SubmissionController {
	return &SubmissionController{SubmissionService: submissionService, ProjectService: projectService}
}

// @Summary 提交详情
// @Tags 提交管理
// @Security BearerAuth
// @Produce json
// @Param id path int true "提交ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/submissions/{id} [get]
func (c *SubmissionController) GetSubmission(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	sub, err := c.SubmissionService.GetSubmission(id)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// @Summary 某考试的提交列表
// @Tags 提交管理
// @Security BearerAuth
// @Produce json
// @Param examId path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{examId}/submissions [get]
func (c *SubmissionController) ListExamSubmissions(ctx *gin.Context) {
	examID, ok := pathID(ctx, "examId")
	if !ok {
		return
	}
	page, limit := pageParams(ctx)
	subs, total, err := c.SubmissionService.ListByExam(examID, page, limit)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: subs, Total: int64(total), Page: page, Limit: limit})
}

// @Summary 我的提交列表
// @Tags 提交管理
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/student/submissions [get]
func (c *SubmissionController) ListMySubmissions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := pageParams(ctx)
	subs, total, err := c.SubmissionService.ListByStudent(user.UserID, page, limit)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: subs, Total: int64(total), Page: page, Limit: limit})
}

// @Summary 提交项目文件
// @Tags 项目考试
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param examId path int true "考试ID"
// @Param file formData file true "项目文件"
// @Success 201 {object} util.Response
// @Router /api/student/exams/{examId}/project [post]
func (c *SubmissionController) SubmitProject(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	examID, ok := pathID(ctx, "examId")
	if !ok {
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "project file required")
		return
	}
	defer file.Close()

	meta := service.SubmitMeta{
		IPAddress:   ctx.ClientIP(),
		BrowserInfo: ctx.Request.UserAgent(),
	}
	sub, err := c.ProjectService.SubmitProject(ctx.Request.Context(), user.UserID, examID,
		header.Filename, file, header.Size, header.Header.Get("Content-Type"), meta)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

type gradeProjectRequest struct {
	Marks    int    `json:"marks"`
	Feedback string `json:"feedback"`
}

// @Summary 项目评分
// @Tags 项目考试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "提交ID"
// @Param grade body gradeProjectRequest true "给分与反馈"
// @Success 200 {object} util.Response
// @Router /api/teacher/submissions/{id}/grade [post]
func (c *SubmissionController) GradeProject(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req gradeProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	result, err := c.ProjectService.GradeProject(user.UserID, id, req.Marks, req.Feedback)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type feedbackRequest struct {
	Text string `json:"text" binding:"required"`
}

// @Summary 项目反馈（不改分数）
// @Tags 项目考试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "提交ID"
// @Param feedback body feedbackRequest true "反馈内容"
// @Success 200 {object} util.Response
// @Router /api/teacher/submissions/{id}/feedback [post]
func (c *SubmissionController) ProvideFeedback(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req feedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ProjectService.ProvideFeedback(user.UserID, id, req.Text); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
