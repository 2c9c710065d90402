package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/derslik/derslik-backend/internal/config"
	"github.com/derslik/derslik-backend/internal/database"
	"github.com/derslik/derslik-backend/internal/handler"
	"github.com/derslik/derslik-backend/internal/logger"
	"github.com/derslik/derslik-backend/internal/repository"
	"github.com/derslik/derslik-backend/internal/router"
	"github.com/derslik/derslik-backend/internal/service"
	"github.com/derslik/derslik-backend/internal/validator"
	"github.com/derslik/derslik-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Derslik Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	manualGradeRepo := repository.NewManualGradeRepository(pool)
	gradebookRepo := repository.NewGradebookRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo, authService, log)
	auditLogger := service.NewAuditLogger(rdb, log)
	resultsPublisher := service.NewRedisResultsPublisher(rdb, log)
	courseService := service.NewCourseService(courseRepo, userRepo, log)
	examService := service.NewExamService(examRepo, questionRepo, courseRepo, log)
	submissionService := service.NewSubmissionService(
		examRepo, questionRepo, submissionRepo, auditLogger, resultsPublisher, log)
	manualGradeService := service.NewManualGradeService(
		examRepo, questionRepo, submissionRepo, manualGradeRepo, auditLogger, log)
	gradebookService := service.NewGradebookService(
		courseRepo, examRepo, submissionRepo, gradebookRepo, auditLogger, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, userService),
		Course:     handler.NewCourseHandler(courseService),
		Exam:       handler.NewExamHandler(examService),
		Submission: handler.NewSubmissionHandler(submissionService),
		Grading:    handler.NewGradingHandler(manualGradeService),
		Gradebook:  handler.NewGradebookHandler(gradebookService),
		Results:    handler.NewResultsHandler(rdb, examService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	auditWorker := worker.NewAuditWorker(pool, rdb, log)
	go auditWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
