package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"exam_portal_backend/internal/config"
	"exam_portal_backend/internal/controller"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"
	"exam_portal_backend/pkg/database"
	"exam_portal_backend/pkg/logger"
	"exam_portal_backend/pkg/monitoring"
	"exam_portal_backend/pkg/security"
	"exam_portal_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user         *repository.UserRepository
	department   *repository.DepartmentRepository
	exam         *repository.ExamRepository
	question     *repository.QuestionRepository
	attempt      *repository.AttemptRepository
	submission   *repository.SubmissionRepository
	result       *repository.ResultRepository
	notification *repository.NotificationRepository
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	exam         *service.ExamService
	question     *service.QuestionService
	attempt      *service.AttemptService
	submission   *service.SubmissionService
	result       *service.ResultService
	recalc       *service.RecalcService
	project      *service.ProjectService
	statistics   *service.StatisticsService
	notification *service.NotificationService
	storage      *service.StorageService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	exam         *controller.ExamController
	question     *controller.QuestionController
	attempt      *controller.AttemptController
	submission   *controller.SubmissionController
	result       *controller.ResultController
	statistics   *controller.StatisticsController
	notification *controller.NotificationController
	health       *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		department:   repository.NewDepartmentRepository(db),
		exam:         repository.NewExamRepository(db),
		question:     repository.NewQuestionRepository(db),
		attempt:      repository.NewAttemptRepository(db),
		submission:   repository.NewSubmissionRepository(db),
		result:       repository.NewResultRepository(db),
		notification: repository.NewNotificationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, repos.department)
	s.storage = service.NewStorageService(cfg)
	s.notification = service.NewNotificationService(repos.notification, cfg.Exam.NotificationRetentionDays)
	s.statistics = service.NewStatisticsService(db, rdb, cfg.Exam.StatsCacheTTL)

	s.recalc = service.NewRecalcService(repos.attempt, repos.submission, repos.result, s.statistics, db)
	s.exam = service.NewExamService(repos.exam, repos.question, repos.attempt, repos.submission, repos.result, s.notification)
	s.question = service.NewQuestionService(repos.question, repos.exam, s.recalc)
	s.submission = service.NewSubmissionService(repos.submission)
	s.result = service.NewResultService(repos.result, repos.exam, s.notification)
	s.attempt = service.NewAttemptService(repos.exam, repos.question, repos.attempt, s.submission, s.result, s.notification, db)
	s.project = service.NewProjectService(repos.exam, repos.submission, repos.result, s.storage, s.notification)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth, s.user),
		user:         controller.NewUserController(s.user),
		exam:         controller.NewExamController(s.exam),
		question:     controller.NewQuestionController(s.question),
		attempt:      controller.NewAttemptController(s.attempt, s.question),
		submission:   controller.NewSubmissionController(s.submission, s.project),
		result:       controller.NewResultController(s.result),
		statistics:   controller.NewStatisticsController(s.statistics),
		notification: controller.NewNotificationController(s.notification),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	})
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window, userLimitKey(cfg.JWT.Secret)))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// userLimitKey 已登录请求按用户ID限流，匿名或token无效的请求回退到按IP限流。
// 限流器挂在引擎层、先于分组的认证中间件执行，所以这里自行校验token。
func userLimitKey(secret string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return ""
		}
		claims, err := util.ParseJWT(token, secret)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("u:%d", claims.UserID)
	}
}

func (a *App) startBackgroundTasks(s *services) {
	// 过期通知清理
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			s.notification.CleanupExpired()
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// redis只承载统计缓存，连不上时降级为无缓存运行
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, statistics caching disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("exam-portal", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
