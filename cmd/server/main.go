// Package main runs the quiz platform HTTP services with graceful shutdown.
// The auth, question and quiz services share one process and one database but
// keep service boundaries: the quiz service talks to the question service
// over HTTP the same way it would across processes.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quizgrid/backend/config"
	"github.com/quizgrid/backend/internal/auth"
	"github.com/quizgrid/backend/internal/middleware"
	"github.com/quizgrid/backend/internal/questions"
	"github.com/quizgrid/backend/internal/quizzes"
	"github.com/quizgrid/backend/internal/realtime"
	"github.com/quizgrid/backend/internal/submissions"
	"github.com/quizgrid/backend/pkg/database"
	"github.com/quizgrid/backend/pkg/queue"
	"github.com/quizgrid/backend/pkg/redis"
	"github.com/quizgrid/backend/pkg/response"
	"github.com/quizgrid/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ReportsBucket:        cfg.AWS.ReportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Auth service
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Question service
	questionRepo := questions.NewRepository(pool)
	questionCache := questions.NewCache(rdb.Client, 10*time.Minute, logger)
	selector := questions.NewSelector(questionRepo, questionCache, logger)
	questionHandler := questions.NewHandler(questionRepo, selector, s3Client, logger)

	// Quiz service. The question collaborator is an HTTP client even though
	// both services run here; the quiz service never touches question rows
	// directly.
	questionClient := questions.NewClient(cfg.Gateway.QuestionURL, logger)
	quizRepo := quizzes.NewRepository(pool)
	submissionRepo := submissions.NewRepository(pool)
	orchestrator := quizzes.NewOrchestrator(quizRepo, submissionRepo, questionClient, authRepo, logger)
	projector := quizzes.NewProjector(quizRepo, submissionRepo, questionClient, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	quizHandler := quizzes.NewHandler(orchestrator, projector, jobQueue, hub, rdb.Client, s3Client, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth service (all public; token checks happen at the gateway)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/validate", authHandler.Validate)
		authGroup.GET("/role", authHandler.Role)
		authGroup.GET("/username/:username", authHandler.UserID)
	}

	// Question service. Role enforcement happens at the gateway; these
	// routes trust the identity headers it injects.
	questionGroup := router.Group("/question")
	{
		questionGroup.GET("/allQuestions", questionHandler.ListAll)
		questionGroup.GET("/category/:category", questionHandler.ListByCategory)
		questionGroup.POST("/add", questionHandler.Add)
		questionGroup.POST("/addMultiple", questionHandler.AddBatch)
		questionGroup.PUT("/update/:id", questionHandler.Update)
		questionGroup.GET("/generate", questionHandler.Generate)
		questionGroup.POST("/getQuestions", questionHandler.Resolve)
		questionGroup.POST("/getQuestionsWithAnswers", questionHandler.ResolveWithAnswers)
		questionGroup.POST("/getScore", questionHandler.Score)
		questionGroup.POST("/import", questionHandler.Import)
	}

	// Quiz service. Endpoints that attribute work to a user require the
	// identity headers.
	quizGroup := router.Group("/quiz")
	{
		quizGroup.POST("/create", middleware.Identity(), quizHandler.Create)
		quizGroup.GET("/get/:quizId", quizHandler.Get)
		quizGroup.POST("/submit/:quizId", middleware.Identity(), quizHandler.Submit)
		quizGroup.GET("/teacher/quizzes", middleware.Identity(), quizHandler.TeacherQuizzes)
		quizGroup.GET("/student/history", middleware.Identity(), quizHandler.StudentHistory)
		quizGroup.GET("/result/:submissionId", middleware.Identity(), quizHandler.Result)
		quizGroup.GET("/analytics/:quizId", middleware.Identity(), quizHandler.Analytics)
		quizGroup.GET("/report/:quizId", middleware.Identity(), quizHandler.Report)
		quizGroup.GET("/live/:quizId", middleware.Identity(), quizHandler.Live())
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
