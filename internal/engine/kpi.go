package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/sales-insights/internal/domain"
)

// KPISummary is the scalar summary view. Revenue figures are computed over
// the active subset only; ActiveRecords/TotalRecords and the status
// distribution cover the full validated dataset so consumers can show how
// much was excluded.
type KPISummary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	OrderCount        int             `json:"order_count"`
	DistinctCustomers int             `json:"distinct_customers"`

	ActiveRecords      int           `json:"active_records"`
	TotalRecords       int           `json:"total_records"`
	StatusDistribution []StatusCount `json:"status_distribution"`
}

// StatusCount is one row of the per-status record distribution, counted
// over all validated records including cancellations.
type StatusCount struct {
	Status  domain.Status `json:"status"`
	Records int           `json:"records"`
}

// computeKPIs builds the KPI summary. Sums accumulate exactly in decimal;
// the two-fraction-digit rounding happens once on the finished figures.
// OrderCount is the number of distinct order IDs in the active subset, not
// the line-item count. Average order value is zero when there are no orders.
func computeKPIs(active, all []domain.SaleRecord) KPISummary {
	total := decimal.Zero
	orders := make(map[string]struct{})
	customers := make(map[string]struct{})
	for _, rec := range active {
		total = total.Add(rec.LineTotal)
		orders[rec.OrderID] = struct{}{}
		customers[rec.CustomerID] = struct{}{}
	}

	avg := decimal.Zero
	if len(orders) > 0 {
		avg = total.Div(decimal.NewFromInt(int64(len(orders))))
	}

	return KPISummary{
		TotalRevenue:       total.Round(2),
		AverageOrderValue:  avg.Round(2),
		OrderCount:         len(orders),
		DistinctCustomers:  len(customers),
		ActiveRecords:      len(active),
		TotalRecords:       len(all),
		StatusDistribution: statusDistribution(all),
	}
}

func statusDistribution(records []domain.SaleRecord) []StatusCount {
	counts := make(map[domain.Status]int)
	for _, rec := range records {
		counts[rec.Status]++
	}
	rows := make([]StatusCount, 0, len(counts))
	for status, n := range counts {
		rows = append(rows, StatusCount{Status: status, Records: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Records != rows[j].Records {
			return rows[i].Records > rows[j].Records
		}
		return rows[i].Status < rows[j].Status
	})
	return rows
}
