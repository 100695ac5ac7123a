package engine

import (
	"github.com/dvloznov/sales-insights/internal/domain"
	"github.com/dvloznov/sales-insights/internal/ingest"
)

// snapshot is one immutable ingested dataset. Version and data travel
// together so a reader can never observe a version number paired with the
// wrong records. A refresh builds a new snapshot and swaps the engine's
// pointer; nothing here is mutated afterwards.
type snapshot struct {
	version uint64
	records []domain.SaleRecord // every validated record, cancellations included
	active  []domain.SaleRecord // records contributing to revenue metrics
	report  *ingest.RejectionReport
}

func newSnapshot(version uint64, records []domain.SaleRecord, report *ingest.RejectionReport) *snapshot {
	return &snapshot{
		version: version,
		records: records,
		active:  ActiveSubset(records),
		report:  report,
	}
}
