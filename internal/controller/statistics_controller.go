package controller

import (
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StatisticsController struct {
	StatisticsService *service.StatisticsService
}

func NewStatisticsController(statisticsService *service.StatisticsService) *StatisticsController {
	return &StatisticsController{StatisticsService: statisticsService}
}

// @Summary 考试统计（缓存）
// @Tags 统计
// @Security BearerAuth
// @Produce json
// @Param examId path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/statistics/exams/{examId} [get]
func (c *StatisticsController) ExamStatistics(ctx *gin.Context) {
	examID, ok := pathID(ctx, "examId")
	if !ok {
		return
	}
	stats, err := c.StatisticsService.ExamStatistics(ctx.Request.Context(), examID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 我的成绩概览
// @Tags 统计
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/student/statistics/overview [get]
func (c *StatisticsController) MyOverview(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	overview, err := c.StatisticsService.StudentOverview(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// @Summary 学生成绩概览（教师视角）
// @Tags 统计
// @Security BearerAuth
// @Produce json
// @Param studentId path int true "学生ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/statistics/students/{studentId} [get]
func (c *StatisticsController) StudentOverview(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}
	overview, err := c.StatisticsService.StudentOverview(ctx.Request.Context(), studentID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// @Summary 部门统计
// @Tags 统计
// @Security BearerAuth
// @Produce json
// @Param departmentId path int true "部门ID"
// @Success 200 {object} util.Response
// @Router /api/admin/statistics/departments/{departmentId} [get]
func (c *StatisticsController) DepartmentStatistics(ctx *gin.Context) {
	departmentID, ok := pathID(ctx, "departmentId")
	if !ok {
		return
	}
	stats, err := c.StatisticsService.DepartmentStatistics(ctx.Request.Context(), departmentID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
