package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/ai"
	"github.com/prepmed/prepmed-backend/internal/config"
	"github.com/prepmed/prepmed-backend/internal/database"
	"github.com/prepmed/prepmed-backend/internal/handler"
	"github.com/prepmed/prepmed-backend/internal/logger"
	"github.com/prepmed/prepmed-backend/internal/repository"
	"github.com/prepmed/prepmed-backend/internal/router"
	"github.com/prepmed/prepmed-backend/internal/service"
	"github.com/prepmed/prepmed-backend/internal/validator"
	"github.com/prepmed/prepmed-backend/internal/worker"
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
		Msg("Starting PrepMed Backend")

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
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	caseRepo := repository.NewCaseRepository(pool)
	snapshotRepo := repository.NewSnapshotRepository(pool)
	flashcardRepo := repository.NewFlashcardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	aiClient := ai.NewClient(cfg, log)
	if !aiClient.Configured() {
		log.Warn().Msg("GROQ_API_KEY not set; AI features disabled")
	}

	authService := service.NewAuthService(cfg, userRepo)
	quizService := service.NewQuizService(cfg, rdb, questionRepo, snapshotRepo, log)
	encounterService := service.NewEncounterService(caseRepo, aiClient, log)
	dailyService := service.NewDailyService(rdb, questionRepo, log)
	analyticsService := service.NewAnalyticsService(resultRepo, userRepo)
	plannerService := service.NewPlannerService(analyticsService, aiClient, log)
	flashcardService := service.NewFlashcardService(flashcardRepo, aiClient, log)
	userService := service.NewUserService(userRepo, questionRepo, rdb, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService),
		Quiz:      handler.NewQuizHandler(quizService),
		Encounter: handler.NewEncounterHandler(encounterService),
		Study:     handler.NewStudyHandler(dailyService, analyticsService, plannerService),
		User:      handler.NewUserHandler(userService),
		Flashcard: handler.NewFlashcardHandler(flashcardService),
		Tutor:     handler.NewTutorHandler(aiClient, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	resultWorker := worker.NewResultWorker(resultRepo, userRepo, rdb, log)
	snapshotWorker := worker.NewSnapshotWorker(cfg, snapshotRepo, rdb, log)

	for i := 0; i < cfg.ResultWorkers; i++ {
		go resultWorker.Start(workerCtx)
	}
	go snapshotWorker.Start(workerCtx)

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

	// 2. Stop session clocks; live sessions survive in Redis.
	quizService.Close()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
