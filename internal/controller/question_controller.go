package controller

import (
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// @Summary 添加题目
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param examId path int true "考试ID"
// @Param question body service.QuestionRequest true "题目"
// @Success 201 {object} util.Response
// @Router /api/teacher/exams/{examId}/questions [post]
func (c *QuestionController) AddQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	examID, ok := pathID(ctx, "examId")
	if !ok {
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.QuestionService.AddQuestion(examID, user.UserID, req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// @Summary 批量添加题目
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param examId path int true "考试ID"
// @Param questions body []service.QuestionRequest true "题目列表"
// @Success 201 {object} util.Response
// @Router /api/teacher/exams/{examId}/questions/batch [post]
func (c *QuestionController) AddQuestionsBatch(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	examID, ok := pathID(ctx, "examId")
	if !ok {
		return
	}
	var reqs []service.QuestionRequest
	if err := ctx.ShouldBindJSON(&reqs); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if len(reqs) == 0 {
		util.BadRequest(ctx, "empty question list")
		return
	}
	questions, err := c.QuestionService.AddQuestionsBatch(examID, user.UserID, reqs)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, questions)
}

// @Summary 考试题目列表
// @Tags 题目管理
// @Security BearerAuth
// @Produce json
// @Param examId path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{examId}/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	examID, ok := pathID(ctx, "examId")
	if !ok {
		return
	}
	questions, err := c.QuestionService.ListByExam(examID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// @Summary 题目详情
// @Tags 题目管理
// @Security BearerAuth
// @Produce json
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	q, err := c.QuestionService.GetQuestion(id)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary 更新题目（答案键变更触发追溯重算）
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param question body service.QuestionRequest true "题目"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.QuestionService.UpdateQuestion(id, req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary 删除题目（从历史判分记录摘除）
// @Tags 题目管理
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.QuestionService.DeleteQuestion(id); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
