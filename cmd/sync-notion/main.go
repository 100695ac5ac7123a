package main

import (
	"context"
	"flag"
	"time"

	"github.com/dvloznov/sales-insights/internal/config"
	"github.com/dvloznov/sales-insights/internal/engine"
	"github.com/dvloznov/sales-insights/internal/logger"
	"github.com/dvloznov/sales-insights/internal/notionsync"
	"github.com/dvloznov/sales-insights/internal/source"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	csvPath := flag.String("csv", "", "Path to the sales CSV export (defaults to SALES_CSV_PATH)")
	notionToken := flag.String("notion-token", "", "Notion API token (defaults to NOTION_TOKEN)")
	customersDBID := flag.String("customers-db-id", "", "Notion database ID for the top-customer ranking")
	kpiDBID := flag.String("kpi-db-id", "", "Notion database ID for KPI snapshots (optional)")
	topN := flag.Int("top", 10, "Number of top customers to sync")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if *csvPath == "" {
		*csvPath = cfg.CSVPath
	}
	if *notionToken == "" {
		*notionToken = cfg.NotionToken
	}
	if *customersDBID == "" {
		*customersDBID = cfg.NotionDatabaseID
	}

	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token or NOTION_TOKEN is required")
	}
	if *customersDBID == "" {
		log.Fatal().Msg("Error: --customers-db-id or NOTION_DATABASE_ID is required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	eng := engine.New(source.NewCSVFileSource(*csvPath), logger.ForComponent(log, "engine"))

	accepted, report, err := eng.Refresh(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load dataset")
	}

	log.Info().
		Str("csv", *csvPath).
		Int("accepted", accepted).
		Int("rejected", report.Rejected).
		Bool("dry_run", *dryRun).
		Msg("Dataset loaded, starting Notion sync")

	customers, err := eng.QueryTopCustomers(ctx, *topN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to rank customers")
	}

	notionClient := notionsync.NewNotionClient(*notionToken)

	if err := notionsync.SyncTopCustomers(ctx, notionClient, *customersDBID, customers, eng.DatasetVersion(), *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Top-customer sync failed")
	}

	if *kpiDBID != "" {
		summary, err := eng.QueryKpis(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to compute KPIs")
		}
		if err := notionsync.SyncKPISummary(ctx, notionClient, *kpiDBID, summary, eng.DatasetVersion(), *dryRun); err != nil {
			log.Fatal().Err(err).Msg("KPI sync failed")
		}
	}

	log.Info().Msg("Notion sync completed successfully")
}
