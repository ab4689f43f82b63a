package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"examsathi/internal/config"
	"examsathi/internal/database"
	"examsathi/internal/handlers"
	"examsathi/internal/logger"
	"examsathi/internal/middleware"
	"examsathi/internal/models"
	"examsathi/internal/repository"
	"examsathi/internal/router"
	"examsathi/internal/services"
	"examsathi/internal/worker"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	level := "info"
	if cfg.Env != "production" {
		level = "debug"
	}
	if err := logger.Init(cfg.Env, level); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting ExamSathi AI server", zap.String("env", cfg.Env))

	// ──── Step 2: Optional PostgreSQL audit log ────
	var workerPool *worker.Pool
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(context.Background(), cfg.DatabaseURL, database.PoolOptions{
			MaxConns: int32(cfg.DBMaxConns),
			MinConns: int32(cfg.DBMinConns),
		})
		if err != nil {
			logger.Fatal("PostgreSQL connection failed", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("PostgreSQL connected")

		applied, err := database.RunMigrations(context.Background(), pool, cfg.MigrationsDir)
		if err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}
		logger.Info("database migrations applied", zap.Int("applied", applied))

		workerPool = worker.NewPool(repository.NewAskLogRepo(pool), 2, 256)
		workerPool.Start()
	} else {
		logger.Info("DATABASE_URL not set, ask log disabled")
	}

	// ──── Step 3: Rate limiter for /ask ────
	var askLimiter middleware.Limiter
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Redis connection failed", zap.Error(err))
		}
		defer redisClient.Close()
		askLimiter = middleware.NewRedisRateLimiter(redisClient, cfg.AskRateLimit, time.Minute)
		logger.Info("Redis connected, shared rate limiter enabled")
	} else {
		askLimiter = middleware.NewRateLimiter(cfg.AskRateLimit, time.Minute)
	}

	// ──── Step 4: Initialize Gemini ────
	answers := services.NewAnswerService(
		cfg.GeminiAPIKey,
		cfg.GeminiModel,
		cfg.GeminiConcurrentReqs,
		cfg.MaxNewTokens,
		models.GenerationOptions{MaxLength: cfg.DefaultMaxLength, Temperature: cfg.DefaultTemperature},
	)
	defer answers.Close()

	if cfg.GeminiAPIKey != "" {
		logger.Info("loading model on startup", zap.String("model", cfg.GeminiModel))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		answers.Load(ctx)
		cancel()
	} else {
		logger.Warn("GEMINI_API_KEY not set, model will load on first request")
	}

	// ──── Step 5: Initialize Handlers ────
	serverHandler := handlers.NewServerHandler(answers)
	var askHandler *handlers.AskHandler
	if workerPool != nil {
		askHandler = handlers.NewAskHandler(answers, workerPool)
	} else {
		askHandler = handlers.NewAskHandler(answers, nil)
	}

	// ──── Step 6: Start HTTP Server ────
	r := router.New(serverHandler, askHandler, askLimiter, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	idle := make(chan struct{})
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
		if workerPool != nil {
			workerPool.Stop()
		}
		close(idle)
	}()

	logger.Info("ExamSathi AI server ready", zap.String("addr", "http://localhost:"+cfg.Port))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
	<-idle
}
