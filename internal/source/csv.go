// Package source provides RecordSource implementations the engine can
// refresh from: a local CSV export, a CSV object in GCS, or a warehouse
// table in BigQuery. Sources only fetch raw candidates; validation belongs
// to the engine.
package source

import (
	"context"
	"fmt"
	"os"

	"github.com/dvloznov/sales-insights/internal/ingest"
)

// CSVFileSource reads raw records from a sales CSV export on local disk.
type CSVFileSource struct {
	Path string
}

func NewCSVFileSource(path string) *CSVFileSource {
	return &CSVFileSource{Path: path}
}

func (s *CSVFileSource) FetchRecords(ctx context.Context) ([]ingest.RawRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("FetchRecords: open %s: %w", s.Path, err)
	}
	defer f.Close()

	records, err := ingest.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("FetchRecords: parse %s: %w", s.Path, err)
	}
	return records, nil
}
