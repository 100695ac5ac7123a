package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dvloznov/sales-insights/internal/ingest"
	"github.com/dvloznov/sales-insights/internal/logger"
	"github.com/dvloznov/sales-insights/internal/source"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	csvPath := flag.String("csv", "", "Path to the sales CSV export (required)")
	strict := flag.Bool("strict", false, "Exit non-zero if any record is rejected")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal().Msg("Error: --csv is required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("csv", *csvPath).Msg("Starting validation")

	raws, err := source.NewCSVFileSource(*csvPath).FetchRecords(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read CSV")
	}

	records, report := ingest.ValidateBatch(raws)

	fmt.Printf("Candidates: %d\n", report.Candidates)
	fmt.Printf("Accepted:   %d\n", report.Accepted)
	fmt.Printf("Rejected:   %d\n", report.Rejected)

	if report.Rejected > 0 {
		reasons := make([]string, 0, len(report.Counts))
		for reason := range report.Counts {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)

		fmt.Println("\nRejections by reason:")
		for _, reason := range reasons {
			fmt.Printf("  %-24s %d\n", reason, report.Counts[ingest.RejectReason(reason)])
			for _, example := range report.Examples[ingest.RejectReason(reason)] {
				fmt.Printf("    - %s\n", example)
			}
		}
	}

	log.Info().
		Int("accepted", len(records)).
		Int("rejected", report.Rejected).
		Msg("Validation complete")

	if *strict && report.Rejected > 0 {
		os.Exit(1)
	}
}
