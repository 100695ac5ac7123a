package engine

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/sales-insights/internal/domain"
)

// TimeSeriesPoint is one period of a time-series view. Periods with no
// active records appear with zero revenue; the series is always continuous
// over the dataset's date span.
type TimeSeriesPoint struct {
	Period     string          `json:"period"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
}

// CountrySales is one row of the country breakdown.
type CountrySales struct {
	Country    string          `json:"country"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
}

// ProductLineSales is one row of the product-line breakdown.
type ProductLineSales struct {
	ProductLine string          `json:"product_line"`
	Revenue     decimal.Decimal `json:"revenue"`
	OrderCount  int             `json:"order_count"`
}

// CustomerSales is one row of the top-customer ranking.
type CustomerSales struct {
	CustomerID string          `json:"customer_id"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
}

// groupTotal accumulates revenue and distinct orders for one group key.
type groupTotal struct {
	key     string
	revenue decimal.Decimal
	orders  map[string]struct{}
}

func accumulate(records []domain.SaleRecord, keyOf func(domain.SaleRecord) string) map[string]*groupTotal {
	totals := make(map[string]*groupTotal)
	for _, rec := range records {
		key := keyOf(rec)
		g, ok := totals[key]
		if !ok {
			g = &groupTotal{key: key, revenue: decimal.Zero, orders: make(map[string]struct{})}
			totals[key] = g
		}
		g.revenue = g.revenue.Add(rec.LineTotal)
		g.orders[rec.OrderID] = struct{}{}
	}
	return totals
}

// rankGroups orders groups by revenue descending, breaking ties by distinct
// order count descending and finally by key ascending, so the same dataset
// always ranks identically. Truncation to limit happens only after the full
// sort; limit <= 0 means no truncation.
func rankGroups(totals map[string]*groupTotal, limit int) []*groupTotal {
	groups := make([]*groupTotal, 0, len(totals))
	for _, g := range totals {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if cmp := groups[i].revenue.Cmp(groups[j].revenue); cmp != 0 {
			return cmp > 0
		}
		if len(groups[i].orders) != len(groups[j].orders) {
			return len(groups[i].orders) > len(groups[j].orders)
		}
		return groups[i].key < groups[j].key
	})
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// computeTimeSeries buckets the active subset by period and zero-fills every
// period between the earliest and latest order date, so the result has no
// gaps regardless of which buckets saw sales.
func computeTimeSeries(active []domain.SaleRecord, g domain.Granularity) []TimeSeriesPoint {
	if len(active) == 0 {
		return []TimeSeriesPoint{}
	}

	first, last := dateSpan(active)
	totals := accumulate(active, func(rec domain.SaleRecord) string {
		return PeriodKey(g, rec.OrderDate)
	})

	span := periodSpan(g, first, last)
	points := make([]TimeSeriesPoint, 0, len(span))
	for _, period := range span {
		point := TimeSeriesPoint{Period: period, Revenue: decimal.Zero}
		if t, ok := totals[period]; ok {
			point.Revenue = t.revenue.Round(2)
			point.OrderCount = len(t.orders)
		}
		points = append(points, point)
	}
	return points
}

func dateSpan(records []domain.SaleRecord) (first, last civil.Date) {
	first, last = records[0].OrderDate, records[0].OrderDate
	for _, rec := range records[1:] {
		if rec.OrderDate.Before(first) {
			first = rec.OrderDate
		}
		if rec.OrderDate.After(last) {
			last = rec.OrderDate
		}
	}
	return first, last
}

func computeByCountry(active []domain.SaleRecord) []CountrySales {
	groups := rankGroups(accumulate(active, func(r domain.SaleRecord) string { return r.Country }), 0)
	rows := make([]CountrySales, len(groups))
	for i, g := range groups {
		rows[i] = CountrySales{Country: g.key, Revenue: g.revenue.Round(2), OrderCount: len(g.orders)}
	}
	return rows
}

func computeByProductLine(active []domain.SaleRecord) []ProductLineSales {
	groups := rankGroups(accumulate(active, func(r domain.SaleRecord) string { return r.ProductLine }), 0)
	rows := make([]ProductLineSales, len(groups))
	for i, g := range groups {
		rows[i] = ProductLineSales{ProductLine: g.key, Revenue: g.revenue.Round(2), OrderCount: len(g.orders)}
	}
	return rows
}

func computeTopCustomers(active []domain.SaleRecord, limit int) []CustomerSales {
	groups := rankGroups(accumulate(active, func(r domain.SaleRecord) string { return r.CustomerID }), limit)
	rows := make([]CustomerSales, len(groups))
	for i, g := range groups {
		rows[i] = CustomerSales{CustomerID: g.key, Revenue: g.revenue.Round(2), OrderCount: len(g.orders)}
	}
	return rows
}
