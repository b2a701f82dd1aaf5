package main

import (
	"context"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/tutorpaes/tutor-backend/internal/config"
	"github.com/tutorpaes/tutor-backend/internal/database"
	"github.com/tutorpaes/tutor-backend/internal/feedback"
	"github.com/tutorpaes/tutor-backend/internal/handler"
	"github.com/tutorpaes/tutor-backend/internal/logger"
	"github.com/tutorpaes/tutor-backend/internal/repository"
	"github.com/tutorpaes/tutor-backend/internal/router"
	"github.com/tutorpaes/tutor-backend/internal/service"
	"github.com/tutorpaes/tutor-backend/internal/validator"
	"github.com/tutorpaes/tutor-backend/internal/worker"
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
		Str("exam_code", cfg.ExamCode).
		Msg("Starting TutorPAES Backend")

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
	catalogRepo := repository.NewCatalogRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)

	// ─── Feedback Generator ────────────────────────────────────────────
	var generator feedback.Generator = feedback.NewRuleBased()
	if cfg.OpenAIAPIKey != "" {
		llm := feedback.NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
		generator = feedback.NewFallback(llm, generator, cfg.FeedbackTimeout, log)
		log.Info().Str("model", cfg.OpenAIModel).Msg("LLM feedback enabled")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	progressQueue := worker.NewProgressQueue(rdb)
	selector := service.NewQuestionSelector(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))

	authService := service.NewAuthService(cfg, rdb, userRepo)
	catalogService := service.NewCatalogService(catalogRepo, questionRepo, rdb, cfg.CatalogCacheTTL, log)
	attemptService := service.NewAttemptService(attemptRepo, progressQueue, log)
	answerService := service.NewAnswerService(catalogService, attemptService, attemptRepo, generator, cfg.ExamCode, log)
	quizService := service.NewQuizService(catalogService, attemptService, selector, cfg.ExamCode, log)
	feedbackService := service.NewFeedbackService(catalogService, attemptRepo, generator)
	statsService := service.NewStatsService(catalogRepo, attemptRepo, userRepo, cfg.ExamCode)
	questionService := service.NewQuestionService(catalogService, questionRepo, cfg.ExamCode, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Catalog:  handler.NewCatalogHandler(catalogService),
		Quiz:     handler.NewQuizHandler(quizService, answerService),
		Feedback: handler.NewFeedbackHandler(feedbackService),
		User:     handler.NewUserHandler(statsService),
		Question: handler.NewQuestionHandler(questionService),
		System:   handler.NewSystemHandler(rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	progressWorker := worker.NewProgressWorker(progressRepo, rdb, log)
	go func() {
		defer close(workerDone)
		progressWorker.Start(workerCtx)
	}()

	// ─── Check Catalog ────────────────────────────────────────────────
	// Serving without a seeded exam is allowed; quiz requests fail with
	// EXAM_NOT_SEEDED until cmd/seed-catalog has run.
	if _, err := catalogRepo.GetExamByCode(ctx, cfg.ExamCode); err != nil {
		log.Warn().Err(err).Str("exam_code", cfg.ExamCode).Msg("Exam catalog not seeded")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
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

	// 2. Stop the progress worker and wait for its final flush.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Progress worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
