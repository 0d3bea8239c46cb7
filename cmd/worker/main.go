// Package main runs the background job worker (quiz report generation to S3).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quizgrid/backend/config"
	"github.com/quizgrid/backend/internal/questions"
	"github.com/quizgrid/backend/internal/quizzes"
	"github.com/quizgrid/backend/internal/submissions"
	"github.com/quizgrid/backend/internal/worker"
	"github.com/quizgrid/backend/pkg/database"
	"github.com/quizgrid/backend/pkg/queue"
	"github.com/quizgrid/backend/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Cfg := storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		ReportsBucket:        cfg.AWS.ReportsBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}
	s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	// The worker reads the same database as the server, so it projects
	// analytics with local stores instead of going through the HTTP API.
	questionRepo := questions.NewRepository(pool)
	selector := questions.NewSelector(questionRepo, nil, logger)
	quizRepo := quizzes.NewRepository(pool)
	submissionRepo := submissions.NewRepository(pool)
	projector := quizzes.NewProjector(quizRepo, submissionRepo, selector, logger)

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewReportProcessor(projector, s3Client, jobQueue, rdb.Client, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
