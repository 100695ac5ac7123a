package notionsync

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/sales-insights/internal/engine"
	"github.com/dvloznov/sales-insights/internal/logger"
)

// SyncTopCustomers mirrors the current top-customer ranking into a Notion database.
// Pages are keyed by the Customer title property: existing pages are updated in
// place, missing ones are created, and customers that dropped out of the ranking
// are archived. With dryRun set, the planned changes are logged but not applied.
func SyncTopCustomers(ctx context.Context, notionClient NotionService, notionDBID string, rows []engine.CustomerSales, datasetVersion uint64, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Int("customer_count", len(rows)).
		Uint64("dataset_version", datasetVersion).
		Bool("dry_run", dryRun).
		Msg("Starting top-customer sync to Notion")

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("SyncTopCustomers: %w", err)
	}

	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	// Map customer name -> existing page ID for idempotent updates.
	existingPages := make(map[string]string)
	for _, page := range notionPages {
		if name := extractTitle(page, "Customer"); name != "" {
			existingPages[name] = string(page.ID)
		}
	}

	ranked := make(map[string]bool, len(rows))
	for _, row := range rows {
		ranked[row.CustomerID] = true
	}

	// Archive pages for customers no longer in the ranking, and untitled
	// pages left behind by earlier syncs.
	var archived int
	for _, page := range notionPages {
		name := extractTitle(page, "Customer")
		if name != "" && ranked[name] {
			continue
		}
		if dryRun {
			log.Info().
				Str("customer", name).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] Would archive stale Notion page")
			archived++
			continue
		}
		if err := notionClient.ArchivePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("customer", name).
				Str("page_id", string(page.ID)).
				Msg("Failed to archive stale Notion page")
			continue
		}
		archived++
	}

	var created, updated int
	for i, row := range rows {
		props := CustomerToNotionProperties(row, i+1, datasetVersion)

		if pageID, ok := existingPages[row.CustomerID]; ok {
			if dryRun {
				log.Info().
					Str("customer", row.CustomerID).
					Str("page_id", pageID).
					Msg("[DRY RUN] Would update Notion page")
				updated++
				continue
			}
			if _, err := notionClient.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().
					Err(err).
					Str("customer", row.CustomerID).
					Str("page_id", pageID).
					Msg("Failed to update Notion page")
				continue
			}
			updated++
			continue
		}

		if dryRun {
			log.Info().
				Str("customer", row.CustomerID).
				Msg("[DRY RUN] Would create Notion page")
			created++
			continue
		}
		page, err := notionClient.CreatePage(ctx, notionDBID, props)
		if err != nil {
			log.Warn().
				Err(err).
				Str("customer", row.CustomerID).
				Msg("Failed to create Notion page")
			continue
		}
		log.Debug().
			Str("customer", row.CustomerID).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page")
		created++
	}

	log.Info().
		Int("created", created).
		Int("updated", updated).
		Int("archived", archived).
		Msg("Top-customer sync complete")

	return nil
}

// SyncKPISummary writes one KPI snapshot page per dataset version. Re-running
// the sync for the same version updates the existing page instead of creating
// a duplicate.
func SyncKPISummary(ctx context.Context, notionClient NotionService, notionDBID string, summary engine.KPISummary, datasetVersion uint64, dryRun bool) error {
	log := logger.FromContext(ctx)

	title := fmt.Sprintf("dataset-v%d", datasetVersion)
	props := KPIToNotionProperties(summary, datasetVersion, time.Now())

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("SyncKPISummary: %w", err)
	}

	var existingPageID string
	for _, page := range notionPages {
		if extractTitle(page, "Snapshot") == title {
			existingPageID = string(page.ID)
			break
		}
	}

	if dryRun {
		if existingPageID != "" {
			log.Info().Str("snapshot", title).Str("page_id", existingPageID).Msg("[DRY RUN] Would update KPI page")
		} else {
			log.Info().Str("snapshot", title).Msg("[DRY RUN] Would create KPI page")
		}
		return nil
	}

	if existingPageID != "" {
		if _, err := notionClient.UpdatePage(ctx, existingPageID, props); err != nil {
			return fmt.Errorf("SyncKPISummary: %w", err)
		}
		log.Info().Str("snapshot", title).Str("page_id", existingPageID).Msg("Updated KPI page")
		return nil
	}

	page, err := notionClient.CreatePage(ctx, notionDBID, props)
	if err != nil {
		return fmt.Errorf("SyncKPISummary: %w", err)
	}
	log.Info().Str("snapshot", title).Str("page_id", string(page.ID)).Msg("Created KPI page")

	return nil
}

// queryAllNotionPages queries all pages from a Notion database and returns them.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
