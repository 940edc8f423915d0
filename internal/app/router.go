package app

import (
	"exam_portal_backend/docs"
	"exam_portal_backend/internal/middleware"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 登录用户通用路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.GET("/auth/profile", c.auth.Profile)
		authGroup.PUT("/auth/profile", c.auth.UpdateProfile)
		authGroup.PUT("/auth/password", c.auth.ChangePassword)
		authGroup.GET("/departments", c.user.ListDepartments)

		authGroup.GET("/notifications", c.notification.List)
		authGroup.GET("/notifications/unread-count", c.notification.UnreadCount)
		authGroup.POST("/notifications/:id/read", c.notification.MarkRead)
		authGroup.POST("/notifications/read-all", c.notification.MarkAllRead)
	}

	// 学生路由
	student := router.Group("/api/student")
	student.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(model.Student))
	{
		student.GET("/exams", c.exam.ListAvailableExams)
		student.POST("/exams/:examId/attempts", c.attempt.StartAttempt)
		student.POST("/exams/:examId/project", c.submission.SubmitProject)

		student.GET("/attempts", c.attempt.ListMyAttempts)
		student.GET("/attempts/:id", c.attempt.GetAttempt)
		student.PUT("/attempts/:id/answers", c.attempt.SaveAnswer)
		student.POST("/attempts/:id/submit", c.attempt.SubmitAttempt)

		student.GET("/submissions", c.submission.ListMySubmissions)
		student.GET("/results", c.result.ListMyResults)
		student.GET("/results/:id", c.result.GetMyResult)
		student.GET("/statistics/overview", c.statistics.MyOverview)
	}

	// 教师路由
	teacher := router.Group("/api/teacher")
	teacher.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/exams", c.exam.CreateExam)
		teacher.GET("/exams", c.exam.ListExams)
		teacher.GET("/exams/:examId", c.exam.GetExam)
		teacher.PUT("/exams/:examId", c.exam.UpdateExam)
		teacher.DELETE("/exams/:examId", c.exam.DeleteExam)
		teacher.POST("/exams/:examId/publish", c.exam.PublishExam)
		teacher.POST("/exams/:examId/unpublish", c.exam.UnpublishExam)
		teacher.POST("/exams/:examId/archive", c.exam.ArchiveExam)

		teacher.POST("/exams/:examId/questions", c.question.AddQuestion)
		teacher.POST("/exams/:examId/questions/batch", c.question.AddQuestionsBatch)
		teacher.GET("/exams/:examId/questions", c.question.ListQuestions)
		teacher.GET("/questions/:id", c.question.GetQuestion)
		teacher.PUT("/questions/:id", c.question.UpdateQuestion)
		teacher.DELETE("/questions/:id", c.question.DeleteQuestion)

		teacher.GET("/exams/:examId/attempts", c.attempt.ListExamAttempts)
		teacher.POST("/attempts/:id/grade", c.attempt.ManualGrade)

		teacher.GET("/exams/:examId/submissions", c.submission.ListExamSubmissions)
		teacher.GET("/submissions/:id", c.submission.GetSubmission)
		teacher.POST("/submissions/:id/grade", c.submission.GradeProject)
		teacher.POST("/submissions/:id/feedback", c.submission.ProvideFeedback)

		teacher.GET("/exams/:examId/results", c.result.ListExamResults)
		teacher.POST("/exams/:examId/results/release", c.result.ReleaseExamResults)
		teacher.GET("/results/:id", c.result.GetResult)
		teacher.POST("/results/:id/release", c.result.ReleaseResult)

		teacher.GET("/statistics/exams/:examId", c.statistics.ExamStatistics)
		teacher.GET("/statistics/students/:studentId", c.statistics.StudentOverview)
	}

	// 管理员路由
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.ListUsers)
		admin.PUT("/users/:id/disabled", c.user.SetDisabled)
		admin.POST("/departments", c.user.CreateDepartment)
		admin.PUT("/departments/:id", c.user.UpdateDepartment)
		admin.DELETE("/departments/:id", c.user.DeleteDepartment)
		admin.GET("/departments/:id/results", c.result.ListDepartmentResults)
		admin.GET("/statistics/departments/:departmentId", c.statistics.DepartmentStatistics)
	}
}
