package notionsync

import (
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/sales-insights/internal/engine"
)

// CustomerToNotionProperties converts a ranked customer row into Notion page properties.
// The customer name is the title property and doubles as the idempotency key.
func CustomerToNotionProperties(row engine.CustomerSales, rank int, datasetVersion uint64) notionapi.Properties {
	revenue, _ := row.Revenue.Float64()

	return notionapi.Properties{
		"Customer": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.CustomerID,
					},
				},
			},
		},
		"Rank": notionapi.NumberProperty{
			Number: float64(rank),
		},
		"Revenue": notionapi.NumberProperty{
			Number: revenue,
		},
		"Orders": notionapi.NumberProperty{
			Number: float64(row.OrderCount),
		},
		"Dataset Version": notionapi.NumberProperty{
			Number: float64(datasetVersion),
		},
	}
}

// KPIToNotionProperties converts the headline KPI figures into Notion page properties.
// One page per dataset version; the title encodes the version so re-syncs update in place.
func KPIToNotionProperties(k engine.KPISummary, datasetVersion uint64, syncedAt time.Time) notionapi.Properties {
	totalRevenue, _ := k.TotalRevenue.Float64()
	avgOrderValue, _ := k.AverageOrderValue.Float64()

	return notionapi.Properties{
		"Snapshot": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: fmt.Sprintf("dataset-v%d", datasetVersion),
					},
				},
			},
		},
		"Total Revenue": notionapi.NumberProperty{
			Number: totalRevenue,
		},
		"Average Order Value": notionapi.NumberProperty{
			Number: avgOrderValue,
		},
		"Order Count": notionapi.NumberProperty{
			Number: float64(k.OrderCount),
		},
		"Distinct Customers": notionapi.NumberProperty{
			Number: float64(k.DistinctCustomers),
		},
		"Synced At": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(syncedAt.UTC())
					return &d
				}(),
			},
		},
	}
}

// extractTitle returns the plain-text title of a page under the given property
// name, or empty string when the property is missing or has another type.
func extractTitle(page notionapi.Page, property string) string {
	if prop, ok := page.Properties[property]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if len(title.Title) > 0 {
				return title.Title[0].PlainText
			}
		}
	}
	return ""
}
