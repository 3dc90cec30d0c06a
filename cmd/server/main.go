package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduforge/quiz-service/internal/cache"
	"github.com/eduforge/quiz-service/internal/config"
	"github.com/eduforge/quiz-service/internal/handlers"
	"github.com/eduforge/quiz-service/internal/models"
	"github.com/eduforge/quiz-service/internal/repositories/postgres"
	"github.com/eduforge/quiz-service/internal/services"
	"github.com/eduforge/quiz-service/internal/utils"
	"github.com/eduforge/quiz-service/internal/validator"
	"github.com/eduforge/quiz-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	logger.Info("starting quiz service", "port", cfg.Port, "environment", cfg.Environment)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Quiz{}, &models.Question{}, &models.QuizResult{}); err != nil {
		logger.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	eventCfg := config.LoadEventConfig()
	publisher, err := eventCfg.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	cacheSvc := cache.NewRedisCache(redisClient, logger)
	validate := validator.New()

	quizService := services.NewQuizService(repo, cacheSvc, publisher, logger, validate)
	attemptService := services.NewAttemptService(repo, cacheSvc, publisher, logger, validate)
	reviewService := services.NewReviewService(repo, cacheSvc, logger)
	exportService := services.NewExportService(repo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(quizService, attemptService, reviewService, exportService, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
