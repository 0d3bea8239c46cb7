// Package main runs the API gateway: it authorizes requests against the
// route policy and proxies them to the auth, question and quiz services.
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
	"github.com/quizgrid/backend/internal/gateway"
	"github.com/quizgrid/backend/internal/middleware"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	policy := gateway.DefaultPolicy()
	proxy, err := gateway.NewProxy(cfg.Gateway.AuthURL, cfg.Gateway.QuestionURL, cfg.Gateway.QuizURL, logger)
	if err != nil {
		logger.Fatal("proxy", zap.Error(err))
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(gateway.Filter(jwtService, policy, logger))

	router.NoRoute(proxy.Handle)

	srv := &http.Server{
		Addr:    ":" + cfg.Gateway.Port,
		Handler: router,
	}

	go func() {
		logger.Info("gateway listening", zap.String("port", cfg.Gateway.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("gateway", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("gateway shutdown", zap.Error(err))
	}
	logger.Info("gateway stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
