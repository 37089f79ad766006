package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pathwise/knowtrace/internal/api/handlers"
	mw "github.com/pathwise/knowtrace/internal/api/middleware"
	"github.com/pathwise/knowtrace/internal/buildconfig"
	"github.com/pathwise/knowtrace/internal/config"
	"github.com/pathwise/knowtrace/internal/domain"
	"github.com/pathwise/knowtrace/internal/service"
	"github.com/pathwise/knowtrace/internal/store"
	"go.uber.org/zap"
)

// App holds the router plus process metrics.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	bktStore := store.NewBKTStore(db)
	dktStore := store.NewDKTStore(db)
	progressionStore := store.NewProgressionStore(db)
	questionStore := store.NewQuestionStore(db)

	// Services. Each holds only its own thresholds; all per-student state
	// lives behind the stores.
	bktSvc := service.NewBKTService(logger)
	bktSvc.MasteryThreshold = config.MasteryThreshold()

	dktSvc := service.NewDKTService(logger)
	dktSvc.SkillCount = config.DKTSkillCount()
	dktSvc.HiddenSize = config.DKTHiddenSize()

	selectorSvc := service.NewSelectorService(logger)
	selectorSvc.ConfidenceThreshold = config.ConfidenceThreshold()

	progressionSvc := service.NewProgressionService(logger)
	progressionSvc.MaxLevel = config.MaxLevel()
	progressionSvc.MasteryThreshold = config.LevelMasteryThreshold()
	progressionSvc.RequiredConsecutive = config.RequiredConsecutive()

	questionSvc := service.NewQuestionService(questionStore, bktStore, dktStore, dktSvc, selectorSvc, logger)
	questionSvc.MasteryThreshold = config.MasteryThreshold()

	orchestratorSvc := service.NewOrchestratorService(
		bktSvc, dktSvc, progressionSvc, selectorSvc,
		bktStore, dktStore, progressionStore, questionStore,
		logger,
	)

	// Handlers
	answerHandler := handlers.NewAnswerHandler(orchestratorSvc)
	masteryHandler := handlers.NewMasteryHandler(bktStore, bktSvc)
	progressionHandler := handlers.NewProgressionHandler(progressionStore, progressionSvc)
	dktHandler := handlers.NewDKTHandler(dktStore, dktSvc)
	questionsHandler := handlers.NewQuestionsHandler(questionSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and metrics (no auth)
	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		if key := config.APIKey(); key != "" {
			r.Use(mw.APIKeyAuth(key))
		} else {
			logger.Warn("API_KEY not set, /v1 routes are unauthenticated")
		}

		r.Post("/answers", answerHandler.Submit)

		r.Route("/students/{studentID}", func(r chi.Router) {
			r.Get("/mastery", masteryHandler.List)
			r.Get("/dkt", dktHandler.Get)
			r.Route("/skills/{skillID}", func(r chi.Router) {
				r.Get("/mastery", masteryHandler.Get)
				r.Post("/reset", masteryHandler.Reset)
				r.Get("/progression", progressionHandler.Get)
			})
		})

		r.Post("/questions/select", questionsHandler.Select)
	})

	return app
}

// NewRouter returns just the chi.Mux.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"build":      buildconfig.VersionInfo(),
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy the domain interfaces at compile time.
var (
	_ domain.BKTStore         = (*store.BKTStore)(nil)
	_ domain.DKTStore         = (*store.DKTStore)(nil)
	_ domain.ProgressionStore = (*store.ProgressionStore)(nil)
	_ domain.QuestionStore    = (*store.QuestionStore)(nil)
)
