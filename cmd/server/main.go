package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"ledgerlens/internal/ai"
	"ledgerlens/internal/api/handlers"
	"ledgerlens/internal/api/middleware"
	"ledgerlens/internal/config"
	"ledgerlens/internal/jobs/inmemory"
	"ledgerlens/internal/logger"
	"ledgerlens/internal/session"
	"ledgerlens/internal/worker"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to YAML config file (optional)")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	// The whole session lives in memory; closing the server discards it.
	// Users persist state through /api/session/export.
	store := session.NewStore()
	store.SetSettings(cfg.Import)

	assistant := buildAssistant(ctx, cfg, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.JobQueueSize, jobStore)

	jobWorker := worker.New(store, assistant, jobStore, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobWorker.Handle); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	importsHandler := handlers.NewImportsHandler(store, log)
	transactionsHandler := handlers.NewTransactionsHandler(store, log)
	categoriesHandler := handlers.NewCategoriesHandler(store, log)
	rulesHandler := handlers.NewRulesHandler(store, jobQueue, log)
	recurringHandler := handlers.NewRecurringHandler(store, log)
	sessionHandler := handlers.NewSessionHandler(store, log)
	aiHandler := handlers.NewAIHandler(store, assistant, jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, jobQueue, log)

	// Create router
	mux := http.NewServeMux()

	// Import endpoints
	mux.HandleFunc("/api/import/preview", methodHandler(http.MethodPost, importsHandler.Preview))
	mux.HandleFunc("/api/import/commit", methodHandler(http.MethodPost, importsHandler.Commit))

	// Transactions endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.ListTransactions(w, r)
		case http.MethodDelete:
			transactionsHandler.DeleteBySource(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			transactionsHandler.UpdateTransaction(w, r, id)
		case http.MethodDelete:
			transactionsHandler.DeleteTransaction(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Categories endpoints
	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			categoriesHandler.ListCategories(w, r)
		case http.MethodPost:
			categoriesHandler.CreateCategory(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/categories/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/categories/")
		if name == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Category name is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			categoriesHandler.RenameCategory(w, r, name)
		case http.MethodDelete:
			categoriesHandler.DeleteCategory(w, r, name)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Rules endpoints
	mux.HandleFunc("/api/rules", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			rulesHandler.ListRules(w, r)
		case http.MethodPost:
			rulesHandler.CreateRule(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/rules/reapply", methodHandler(http.MethodPost, rulesHandler.Reapply))
	mux.HandleFunc("/api/rules/categorize", methodHandler(http.MethodGet, rulesHandler.Categorize))
	mux.HandleFunc("/api/rules/suggest", methodHandler(http.MethodGet, rulesHandler.Suggest))

	mux.HandleFunc("/api/rules/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/rules/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Rule ID is required")
			return
		}
		if r.Method == http.MethodDelete {
			rulesHandler.DeleteRule(w, r, id)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Recurring charges endpoint
	mux.HandleFunc("/api/recurring", methodHandler(http.MethodGet, recurringHandler.ListRecurring))

	// Session endpoints
	mux.HandleFunc("/api/session/export", methodHandler(http.MethodGet, sessionHandler.Export))
	mux.HandleFunc("/api/session/import", methodHandler(http.MethodPost, sessionHandler.Import))
	mux.HandleFunc("/api/session/merge", methodHandler(http.MethodPost, sessionHandler.Merge))
	mux.HandleFunc("/api/session/settings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			sessionHandler.GetSettings(w, r)
		case http.MethodPut:
			sessionHandler.UpdateSettings(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// AI endpoints
	mux.HandleFunc("/api/ai/categorize", methodHandler(http.MethodPost, aiHandler.Categorize))
	mux.HandleFunc("/api/ai/mine-rules", methodHandler(http.MethodPost, aiHandler.MineRules))
	mux.HandleFunc("/api/ai/analyze", methodHandler(http.MethodPost, aiHandler.Analyze))

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", methodHandler(http.MethodGet, jobsHandler.ListJobs))

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if rest == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		if jobID, found := strings.CutSuffix(rest, "/cancel"); found {
			if r.Method == http.MethodPost {
				jobsHandler.CancelJob(w, r, jobID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}
		if r.Method == http.MethodGet {
			jobsHandler.GetJob(w, r, rest)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Int("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// methodHandler restricts a handler to a single HTTP method.
func methodHandler(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

// buildAssistant creates the configured AI provider, or nil when none is
// selected.
func buildAssistant(ctx context.Context, cfg config.Config, log zerolog.Logger) ai.Assistant {
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		assistant, err := ai.NewGeminiAssistant(ctx, cfg.AI.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
		log.Info().Str("provider", cfg.AI.Provider).Msg("AI assistant configured")
		return assistant
	case config.ProviderClaude:
		log.Info().Str("provider", cfg.AI.Provider).Msg("AI assistant configured")
		return ai.NewClaudeAssistant(cfg.AI.APIKey, cfg.AI.Model)
	default:
		log.Warn().Msg("No AI provider configured - AI endpoints will be disabled")
		return nil
	}
}
