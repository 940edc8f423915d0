package controller

import (
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService  *service.AttemptService
	QuestionService *service.QuestionService
}

func NewAttemptController(attemptService *service.AttemptService, questionService *service.QuestionService) *AttemptController {
	return &AttemptController{AttemptService: attemptService, QuestionService: questionService}
}

// @Summary 开始考试
// @Tags 考试作答
// @Security BearerAuth
// @Produce json
// @Param examId path int true "考试ID"
// @Success 201 {object} util.Response
// @Router /api/student/exams/{examId}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	examID, ok := pathID(ctx, "examId")
	if !ok {
		return
	}
	attempt, err := c.AttemptService.StartAttempt(user.UserID, examID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, c.attemptView(attempt))
}

// @Summary 尝试详情（含剩余时间与作答视图题目）
// @Tags 考试作答
// @Security BearerAuth
// @Produce json
// @Param id path int true "尝试ID"
// @Success 200 {object} util.Response
// @Router /api/student/attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	attempt, err := c.AttemptService.GetAttempt(user.UserID, user.Role, id)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, c.attemptView(attempt))
}

// attemptView 按快照持久化的顺序附上作答视图的题目内容
func (c *AttemptController) attemptView(attempt *model.ExamAttempt) gin.H {
	questions, err := c.QuestionService.ListByExam(attempt.ExamID)
	byID := make(map[uint]*model.Question, len(questions))
	if err == nil {
		for i := range questions {
			byID[questions[i].ID] = &questions[i]
		}
	}

	type questionView struct {
		Position int            `json:"position"`
		Answer   string         `json:"answer"`
		Marks    int            `json:"marks"`
		Question model.Question `json:"question"`
	}
	views := make([]questionView, 0, len(attempt.Questions))
	for _, entry := range attempt.Questions {
		q, ok := byID[entry.QuestionID]
		if !ok {
			continue
		}
		view := questionView{Position: entry.Position, Answer: entry.Answer, Question: q.Sanitized()}
		if attempt.Status == model.AttemptSubmitted {
			view.Marks = entry.Marks
		}
		views = append(views, view)
	}

	return gin.H{
		"attempt":          attempt,
		"questions":        views,
		"remainingSeconds": int(c.AttemptService.Remaining(attempt).Seconds()),
	}
}

type saveAnswerRequest struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
}

// @Summary 暂存单题答案
// @Tags 考试作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "尝试ID"
// @Param answer body saveAnswerRequest true "答案"
// @Success 200 {object} util.Response
// @Router /api/student/attempts/{id}/answers [put]
func (c *AttemptController) SaveAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req saveAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.AttemptService.SaveAnswer(user.UserID, id, req.QuestionID, req.Answer); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type submitAttemptRequest struct {
	Answers []service.AnswerSubmission `json:"answers"`
}

// @Summary 提交考试（判分、生成提交与结果）
// @Tags 考试作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "尝试ID"
// @Param submission body submitAttemptRequest true "答案集"
// @Success 200 {object} util.Response
// @Router /api/student/attempts/{id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req submitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	meta := service.SubmitMeta{
		IPAddress:   ctx.ClientIP(),
		BrowserInfo: ctx.Request.UserAgent(),
	}
	out, err := c.AttemptService.SubmitAttempt(user.UserID, id, req.Answers, meta)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, out)
}

// @Summary 我的尝试列表
// @Tags 考试作答
// @Security BearerAuth
// @Produce json
// @Param examId query int false "按考试过滤"
// @Success 200 {object} util.Response
// @Router /api/student/attempts [get]
func (c *AttemptController) ListMyAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := pageParams(ctx)
	attempts, total, err := c.AttemptService.ListByStudent(user.UserID, util.ParseUintOrZero(ctx.Query("examId")), page, limit)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: int64(total), Page: page, Limit: limit})
}

// @Summary 某考试的全部尝试
// @Tags 考试管理
// @Security BearerAuth
// @Produce json
// @Param examId path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{examId}/attempts [get]
func (c *AttemptController) ListExamAttempts(ctx *gin.Context) {
	examID, ok := pathID(ctx, "examId")
	if !ok {
		return
	}
	page, limit := pageParams(ctx)
	attempts, total, err := c.AttemptService.ListByExam(examID, page, limit)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: int64(total), Page: page, Limit: limit})
}

type manualGradeRequest struct {
	Scores []service.ManualScore `json:"scores" binding:"required,min=1"`
}

// @Summary 人工评阅（给分钳制在题目满分内）
// @Tags 考试管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "尝试ID"
// @Param scores body manualGradeRequest true "给分列表"
// @Success 200 {object} util.Response
// @Router /api/teacher/attempts/{id}/grade [post]
func (c *AttemptController) ManualGrade(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req manualGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	out, err := c.AttemptService.ManualGradeAttempt(user.UserID, id, req.Scores)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, out)
}
