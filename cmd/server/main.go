package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlbertPrograms/nodecs-backend/internal/config"
	"github.com/AlbertPrograms/nodecs-backend/internal/database"
	"github.com/AlbertPrograms/nodecs-backend/internal/executor"
	"github.com/AlbertPrograms/nodecs-backend/internal/handler"
	"github.com/AlbertPrograms/nodecs-backend/internal/logger"
	"github.com/AlbertPrograms/nodecs-backend/internal/repository"
	"github.com/AlbertPrograms/nodecs-backend/internal/router"
	"github.com/AlbertPrograms/nodecs-backend/internal/service"
	"github.com/AlbertPrograms/nodecs-backend/internal/store"
	"github.com/AlbertPrograms/nodecs-backend/internal/validator"
	"github.com/AlbertPrograms/nodecs-backend/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting node.cs backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Repositories. Task reads sit behind the Redis read-through cache:
	// every submission re-reads the hidden test data.
	taskRepo := repository.NewCachedTaskRepository(repository.NewTaskRepository(pool), rdb, log)
	examRepo := repository.NewExamRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	// Ephemeral state. Tokens and sessions live in process memory and die
	// with it; a restart invalidates everything in flight.
	tokens := store.NewTokenStore()
	sessions := store.NewSessionStore()

	grader := executor.NewClient(cfg.ExecutorURL, cfg.ExecutorTimeout, log)

	taskService := service.NewTaskService(tokens, taskRepo, grader, cfg.TokenTTL, log)
	examService := service.NewExamService(sessions, examRepo, taskRepo, resultRepo, grader, log)
	resultService := service.NewResultService(resultRepo, examRepo, taskRepo, log)

	handlers := &router.Handlers{
		Task:   handler.NewTaskHandler(taskService, examService),
		Exam:   handler.NewExamHandler(examService),
		Result: handler.NewResultHandler(resultService),
		WS:     handler.NewWSHandler(examService, log, cfg.AllowedOrigins),
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	sweepWorker := worker.NewSweepWorker(tokens, sessions, cfg.SweepInterval, log)
	go sweepWorker.Start(workerCtx)

	r := router.SetupRouter(handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	workerCancel()

	// In-flight sessions are gone once the process exits; make that loud.
	if n := sessions.Len(); n > 0 {
		log.Warn().Int("count", n).Msg("Shutting down with live exam sessions, they will not survive restart")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
