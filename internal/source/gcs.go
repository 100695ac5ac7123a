package source

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/dvloznov/sales-insights/internal/ingest"
)

// GCSSource reads a sales CSV export stored as a GCS object.
type GCSSource struct {
	Bucket string
	Object string
}

func NewGCSSource(bucket, object string) *GCSSource {
	return &GCSSource{Bucket: bucket, Object: object}
}

func (s *GCSSource) FetchRecords(ctx context.Context) ([]ingest.RawRecord, error) {
	data, err := downloadObject(ctx, s.Bucket, s.Object)
	if err != nil {
		return nil, fmt.Errorf("FetchRecords: %w", err)
	}
	records, err := ingest.ParseCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("FetchRecords: parse gs://%s/%s: %w", s.Bucket, s.Object, err)
	}
	return records, nil
}

func downloadObject(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}
	return data, nil
}
