package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dvloznov/sales-insights/internal/domain"
	"github.com/dvloznov/sales-insights/internal/ingest"
)

// MaxCustomerLimit bounds the top-customer ranking size a caller may request.
const MaxCustomerLimit = 100

// RecordSource supplies the raw record batch a Refresh re-ingests. Concrete
// implementations (CSV file, GCS object, BigQuery table) live in
// internal/source.
type RecordSource interface {
	FetchRecords(ctx context.Context) ([]ingest.RawRecord, error)
}

// Engine is the aggregation engine's only public entry point. It validates
// incoming batches, owns the versioned dataset snapshot, and serves derived
// views through the cache.
//
// Access pattern is single-writer, many-reader: Ingest and Refresh serialize
// on refreshMu and swap the snapshot pointer; queries take one atomic
// pointer read and then work on immutable data.
type Engine struct {
	source RecordSource
	log    zerolog.Logger

	refreshMu sync.Mutex
	snap      atomic.Pointer[snapshot]
	cache     *viewCache
}

// New creates an engine with an empty dataset at version zero. src may be
// nil when all data arrives via Ingest; Refresh then fails cleanly.
func New(src RecordSource, log zerolog.Logger) *Engine {
	e := &Engine{
		source: src,
		log:    log,
		cache:  newViewCache(),
	}
	e.snap.Store(newSnapshot(0, nil, &ingest.RejectionReport{}))
	return e
}

// Ingest validates a batch of raw candidates and makes it the engine's
// current dataset. Rejected candidates are classified in the report and
// never halt the batch. The cache is invalidated together with the snapshot
// swap, so no query sees old views against the new version.
func (e *Engine) Ingest(ctx context.Context, raws []ingest.RawRecord) (int, *ingest.RejectionReport) {
	records, report := ingest.ValidateBatch(raws)

	e.refreshMu.Lock()
	version := e.snap.Load().version + 1
	e.snap.Store(newSnapshot(version, records, report))
	e.cache.invalidateAll()
	e.refreshMu.Unlock()

	e.log.Info().
		Uint64("dataset_version", version).
		Int("accepted", report.Accepted).
		Int("rejected", report.Rejected).
		Msg("Ingested record batch")

	return report.Accepted, report
}

// Refresh re-runs ingestion against the configured record source and
// atomically replaces the dataset and cache. Calling it with an unchanged
// source is idempotent in content, though the dataset version still
// advances.
func (e *Engine) Refresh(ctx context.Context) (int, *ingest.RejectionReport, error) {
	if e.source == nil {
		return 0, nil, fmt.Errorf("Refresh: no record source configured")
	}
	raws, err := e.source.FetchRecords(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("Refresh: fetch records: %w", err)
	}
	accepted, report := e.Ingest(ctx, raws)
	return accepted, report, nil
}

// DatasetVersion returns the version of the current snapshot.
func (e *Engine) DatasetVersion() uint64 {
	return e.snap.Load().version
}

// LastReport returns the rejection report of the most recent ingest.
func (e *Engine) LastReport() *ingest.RejectionReport {
	return e.snap.Load().report
}

// QueryKpis returns the scalar KPI summary for the current dataset.
func (e *Engine) QueryKpis(ctx context.Context) (KPISummary, error) {
	view, err := e.cachedView("kpis", func(s *snapshot) interface{} {
		return computeKPIs(s.active, s.records)
	})
	if err != nil {
		return KPISummary{}, err
	}
	return view.(KPISummary), nil
}

// QueryTimeSeries returns the revenue/order-count series at the requested
// granularity, one point per period over the dataset's date span with
// zero-filled gaps.
func (e *Engine) QueryTimeSeries(ctx context.Context, granularity string) ([]TimeSeriesPoint, error) {
	g, err := domain.ParseGranularity(granularity)
	if err != nil {
		return nil, &ParamError{Param: "granularity", Reason: err.Error()}
	}
	view, err := e.cachedView("timeseries:"+string(g), func(s *snapshot) interface{} {
		return computeTimeSeries(s.active, g)
	})
	if err != nil {
		return nil, err
	}
	return view.([]TimeSeriesPoint), nil
}

// QueryByCountry returns the per-country breakdown ordered by revenue.
func (e *Engine) QueryByCountry(ctx context.Context) ([]CountrySales, error) {
	view, err := e.cachedView("country", func(s *snapshot) interface{} {
		return computeByCountry(s.active)
	})
	if err != nil {
		return nil, err
	}
	return view.([]CountrySales), nil
}

// QueryByProductLine returns the per-product-line breakdown ordered by
// revenue.
func (e *Engine) QueryByProductLine(ctx context.Context) ([]ProductLineSales, error) {
	view, err := e.cachedView("product_line", func(s *snapshot) interface{} {
		return computeByProductLine(s.active)
	})
	if err != nil {
		return nil, err
	}
	return view.([]ProductLineSales), nil
}

// QueryTopCustomers returns the top customers by revenue. limit must be in
// [1, MaxCustomerLimit].
func (e *Engine) QueryTopCustomers(ctx context.Context, limit int) ([]CustomerSales, error) {
	if limit < 1 || limit > MaxCustomerLimit {
		return nil, &ParamError{
			Param:  "limit",
			Reason: fmt.Sprintf("%d is out of range [1, %d]", limit, MaxCustomerLimit),
		}
	}
	view, err := e.cachedView(fmt.Sprintf("customers:%d", limit), func(s *snapshot) interface{} {
		return computeTopCustomers(s.active, limit)
	})
	if err != nil {
		return nil, err
	}
	return view.([]CustomerSales), nil
}

// cachedView serves one derived view through the cache. The snapshot is
// captured once, so version and data are consistent for the whole call; a
// cache entry tagged with any other version is an invariant violation and
// fails the query.
func (e *Engine) cachedView(key string, compute func(*snapshot) interface{}) (interface{}, error) {
	snap := e.snap.Load()
	entry, err := e.cache.getOrCompute(snap.version, key, func() (interface{}, error) {
		return compute(snap), nil
	})
	if err != nil {
		return nil, err
	}
	if entry.version != snap.version {
		return nil, fmt.Errorf("cachedView %q: entry version %d, snapshot version %d: %w",
			key, entry.version, snap.version, ErrStaleView)
	}
	return entry.view, nil
}
