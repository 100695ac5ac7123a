// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the API service and CLIs read from the
// environment. Exactly one record source is used; SourceKind selects it.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// SourceKind is one of "csv", "gcs" or "bigquery".
	SourceKind string `env:"SOURCE_KIND" envDefault:"csv"`

	CSVPath string `env:"SALES_CSV_PATH" envDefault:"data/sales_data_sample.csv"`

	GCSBucket string `env:"GCS_BUCKET"`
	GCSObject string `env:"GCS_OBJECT"`

	BQProject string `env:"BQ_PROJECT"`
	BQDataset string `env:"BQ_DATASET" envDefault:"sales"`
	BQTable   string `env:"BQ_TABLE" envDefault:"sales_records"`

	// GeminiModel backs the natural-language query endpoint.
	GeminiModel string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	NotionToken      string `env:"NOTION_TOKEN"`
	NotionDatabaseID string `env:"NOTION_DATABASE_ID"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("Load: parse env: %w", err)
	}
	return cfg, nil
}
