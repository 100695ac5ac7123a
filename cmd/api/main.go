package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/sales-insights/internal/api/handlers"
	"github.com/dvloznov/sales-insights/internal/api/middleware"
	"github.com/dvloznov/sales-insights/internal/ask"
	"github.com/dvloznov/sales-insights/internal/config"
	"github.com/dvloznov/sales-insights/internal/engine"
	"github.com/dvloznov/sales-insights/internal/jobs"
	"github.com/dvloznov/sales-insights/internal/jobs/inmemory"
	"github.com/dvloznov/sales-insights/internal/logger"
	"github.com/dvloznov/sales-insights/internal/source"
)

func newRecordSource(cfg *config.Config) (engine.RecordSource, error) {
	switch cfg.SourceKind {
	case "csv":
		return source.NewCSVFileSource(cfg.CSVPath), nil
	case "gcs":
		if cfg.GCSBucket == "" || cfg.GCSObject == "" {
			return nil, fmt.Errorf("newRecordSource: GCS_BUCKET and GCS_OBJECT are required for the gcs source")
		}
		return source.NewGCSSource(cfg.GCSBucket, cfg.GCSObject), nil
	case "bigquery":
		if cfg.BQProject == "" {
			return nil, fmt.Errorf("newRecordSource: BQ_PROJECT is required for the bigquery source")
		}
		return source.NewBigQuerySource(cfg.BQProject, cfg.BQDataset, cfg.BQTable), nil
	default:
		return nil, fmt.Errorf("newRecordSource: unknown source kind %q", cfg.SourceKind)
	}
}

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	src, err := newRecordSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure record source")
	}

	ctx := logger.WithContext(context.Background(), log)

	eng := engine.New(src, logger.ForComponent(log, "engine"))

	// Load the initial dataset before serving traffic. A failure here is
	// not fatal: the engine serves an empty version-0 snapshot until a
	// refresh succeeds.
	if accepted, report, err := eng.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial dataset load failed; starting with an empty snapshot")
	} else {
		log.Info().
			Int("accepted", accepted).
			Int("rejected", report.Rejected).
			Msg("Initial dataset loaded")
	}

	// Job infrastructure for asynchronous refreshes.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		refreshJob, ok := job.(*jobs.RefreshJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().Str("job_id", refreshJob.JobID).Msg("Processing refresh job")

		accepted, report, err := eng.Refresh(ctx)
		if err != nil {
			log.Error().Err(err).Str("job_id", refreshJob.JobID).Msg("Dataset refresh failed")
			return err
		}

		refreshJob.AcceptedCount = accepted
		refreshJob.RejectedCount = report.Rejected
		refreshJob.DatasetVersion = eng.DatasetVersion()

		log.Info().
			Str("job_id", refreshJob.JobID).
			Int("accepted", accepted).
			Int("rejected", report.Rejected).
			Uint64("dataset_version", refreshJob.DatasetVersion).
			Msg("Dataset refresh completed")

		return nil
	}

	go func() {
		log.Info().Msg("Starting refresh worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Refresh worker stopped with error")
		}
	}()

	salesHandler := handlers.NewSalesHandler(eng, logger.ForComponent(log, "api"))
	refreshHandler := handlers.NewRefreshHandler(jobQueue, logger.ForComponent(log, "api"))
	jobsHandler := handlers.NewJobsHandler(jobStore, logger.ForComponent(log, "api"))
	askHandler := handlers.NewAskHandler(ask.NewGeminiTranslator(cfg.GeminiModel), eng, logger.ForComponent(log, "ask"))

	mux := http.NewServeMux()

	mux.HandleFunc("/api/kpis", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			salesHandler.Kpis(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/sales-over-time", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			salesHandler.SalesOverTime(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/sales-by-country", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			salesHandler.ByCountry(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/sales-by-category", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			salesHandler.ByProductLine(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/top-customers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			salesHandler.TopCustomers(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/ingest", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			salesHandler.IngestBatch(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			refreshHandler.EnqueueRefresh(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/ask", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			askHandler.Ask(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":          "healthy",
			"dataset_version": eng.DatasetVersion(),
			"time":            time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("source", cfg.SourceKind).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

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

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
