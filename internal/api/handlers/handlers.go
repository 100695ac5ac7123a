package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/sales-insights/internal/api/middleware"
	"github.com/dvloznov/sales-insights/internal/engine"
	"github.com/dvloznov/sales-insights/internal/ingest"
	"github.com/dvloznov/sales-insights/internal/jobs"
)

// defaultTopCustomers is used when /api/top-customers is called without a
// limit parameter.
const defaultTopCustomers = 10

// QueryEngine is the slice of the aggregation engine the API layer consumes.
type QueryEngine interface {
	QueryKpis(ctx context.Context) (engine.KPISummary, error)
	QueryTimeSeries(ctx context.Context, granularity string) ([]engine.TimeSeriesPoint, error)
	QueryByCountry(ctx context.Context) ([]engine.CountrySales, error)
	QueryByProductLine(ctx context.Context) ([]engine.ProductLineSales, error)
	QueryTopCustomers(ctx context.Context, limit int) ([]engine.CustomerSales, error)
	Ingest(ctx context.Context, raws []ingest.RawRecord) (int, *ingest.RejectionReport)
	DatasetVersion() uint64
}

// SalesHandler serves the derived analytical views.
type SalesHandler struct {
	engine QueryEngine
	log    zerolog.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(eng QueryEngine, log zerolog.Logger) *SalesHandler {
	return &SalesHandler{engine: eng, log: log}
}

// Kpis handles GET /api/kpis
func (h *SalesHandler) Kpis(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.engine.QueryKpis(r.Context())
	if err != nil {
		writeEngineError(w, h.log, err, "Failed to compute KPIs")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":            kpis,
		"dataset_version": h.engine.DatasetVersion(),
	})
}

// SalesOverTime handles GET /api/sales-over-time?period=monthly|quarterly|yearly
func (h *SalesHandler) SalesOverTime(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "monthly"
	}

	series, err := h.engine.QueryTimeSeries(r.Context(), period)
	if err != nil {
		writeEngineError(w, h.log, err, "Failed to compute time series")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":   series,
		"period": period,
	})
}

// ByCountry handles GET /api/sales-by-country
func (h *SalesHandler) ByCountry(w http.ResponseWriter, r *http.Request) {
	rows, err := h.engine.QueryByCountry(r.Context())
	if err != nil {
		writeEngineError(w, h.log, err, "Failed to compute country breakdown")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": rows})
}

// ByProductLine handles GET /api/sales-by-category
func (h *SalesHandler) ByProductLine(w http.ResponseWriter, r *http.Request) {
	rows, err := h.engine.QueryByProductLine(r.Context())
	if err != nil {
		writeEngineError(w, h.log, err, "Failed to compute product-line breakdown")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": rows})
}

// TopCustomers handles GET /api/top-customers?limit=N
func (h *SalesHandler) TopCustomers(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopCustomers
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	rows, err := h.engine.QueryTopCustomers(r.Context(), limit)
	if err != nil {
		writeEngineError(w, h.log, err, "Failed to compute customer ranking")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":            rows,
		"limit_requested": limit,
		"results_count":   len(rows),
	})
}

// IngestBatch handles POST /api/ingest with a JSON array of raw candidates.
func (h *SalesHandler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	var raws []ingest.RawRecord
	if err := json.NewDecoder(r.Body).Decode(&raws); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	accepted, report := h.engine.Ingest(r.Context(), raws)

	h.log.Info().
		Int("accepted", accepted).
		Int("rejected", report.Rejected).
		Msg("Batch ingested via API")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accepted_count":   accepted,
		"rejection_report": report,
		"dataset_version":  h.engine.DatasetVersion(),
	})
}

// writeEngineError maps engine failures onto HTTP statuses. Parameter
// errors are the caller's fault; everything else is ours.
func writeEngineError(w http.ResponseWriter, log zerolog.Logger, err error, msg string) {
	var paramErr *engine.ParamError
	if errors.As(err, &paramErr) {
		middleware.WriteError(w, http.StatusBadRequest, paramErr.Error())
		return
	}
	log.Error().Err(err).Msg(msg)
	middleware.WriteError(w, http.StatusInternalServerError, msg)
}

// RefreshHandler enqueues asynchronous dataset refreshes.
type RefreshHandler struct {
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(publisher jobs.Publisher, log zerolog.Logger) *RefreshHandler {
	return &RefreshHandler{publisher: publisher, log: log}
}

// EnqueueRefresh handles POST /api/refresh
func (h *RefreshHandler) EnqueueRefresh(w http.ResponseWriter, r *http.Request) {
	job := &jobs.RefreshJob{RequestedBy: "api"}

	if err := h.publisher.PublishRefresh(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue refresh job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue refresh job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Msg("Refresh job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
