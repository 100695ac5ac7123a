package engine

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/sales-insights/internal/domain"
)

var (
	jan10 = civil.Date{Year: 2003, Month: 1, Day: 10}
	feb03 = civil.Date{Year: 2003, Month: 2, Day: 3}
	apr20 = civil.Date{Year: 2003, Month: 4, Day: 20}
)

func TestComputeTimeSeries_ZeroFillsEmptyPeriods(t *testing.T) {
	// Sales in January and April only; February and March must still
	// appear with zero revenue.
	active := []domain.SaleRecord{
		rec("O1", "Alpha", "USA", "Trains", domain.StatusShipped, jan10, "100.00"),
		rec("O2", "Beta", "USA", "Trains", domain.StatusShipped, apr20, "40.00"),
	}

	points := computeTimeSeries(active, domain.GranularityMonthly)

	wantPeriods := []string{"2003-01", "2003-02", "2003-03", "2003-04"}
	if len(points) != len(wantPeriods) {
		t.Fatalf("got %d points, want %d", len(points), len(wantPeriods))
	}
	for i, p := range points {
		if p.Period != wantPeriods[i] {
			t.Errorf("point %d period = %q, want %q", i, p.Period, wantPeriods[i])
		}
	}
	if !points[1].Revenue.IsZero() || points[1].OrderCount != 0 {
		t.Errorf("empty period = %+v, want zero revenue and orders", points[1])
	}
	if got := points[3].Revenue.String(); got != "40" {
		t.Errorf("2003-04 revenue = %s, want 40", got)
	}
}

func TestComputeTimeSeries_CountsDistinctOrdersPerPeriod(t *testing.T) {
	active := []domain.SaleRecord{
		rec("O1", "Alpha", "USA", "Trains", domain.StatusShipped, jan10, "10.00"),
		rec("O1", "Alpha", "USA", "Trains", domain.StatusShipped, jan10, "15.00"),
		rec("O2", "Beta", "USA", "Trains", domain.StatusShipped, jan10, "5.00"),
	}

	points := computeTimeSeries(active, domain.GranularityMonthly)
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if points[0].OrderCount != 2 {
		t.Errorf("OrderCount = %d, want 2 distinct orders", points[0].OrderCount)
	}
	if got := points[0].Revenue.String(); got != "30" {
		t.Errorf("Revenue = %s, want 30", got)
	}
}

func TestComputeTimeSeries_EmptyDataset(t *testing.T) {
	points := computeTimeSeries(nil, domain.GranularityMonthly)
	if points == nil || len(points) != 0 {
		t.Errorf("points = %v, want empty non-nil slice", points)
	}
}

func TestRankGroups_TieBreaking(t *testing.T) {
	// Gamma and Beta tie on revenue; Beta has more distinct orders. Delta
	// ties Gamma on both revenue and orders, so the key breaks the tie.
	active := []domain.SaleRecord{
		rec("O1", "Alpha", "USA", "Trains", domain.StatusShipped, jan10, "500.00"),
		rec("O2", "Beta", "USA", "Trains", domain.StatusShipped, jan10, "100.00"),
		rec("O3", "Beta", "USA", "Trains", domain.StatusShipped, feb03, "100.00"),
		rec("O4", "Gamma", "USA", "Trains", domain.StatusShipped, jan10, "200.00"),
		rec("O5", "Delta", "USA", "Trains", domain.StatusShipped, jan10, "200.00"),
	}

	rows := computeTopCustomers(active, 0)

	want := []string{"Alpha", "Beta", "Delta", "Gamma"}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, w := range want {
		if rows[i].CustomerID != w {
			t.Errorf("rank %d = %q, want %q (rows: %v)", i+1, rows[i].CustomerID, w, rows)
		}
	}
}

func TestComputeTopCustomers_TruncatesAfterFullSort(t *testing.T) {
	active := []domain.SaleRecord{
		rec("O1", "Small", "USA", "Trains", domain.StatusShipped, jan10, "10.00"),
		rec("O2", "Big", "USA", "Trains", domain.StatusShipped, jan10, "1000.00"),
		rec("O3", "Mid", "USA", "Trains", domain.StatusShipped, jan10, "100.00"),
	}

	rows := computeTopCustomers(active, 2)

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].CustomerID != "Big" || rows[1].CustomerID != "Mid" {
		t.Errorf("top-2 = %v, want Big then Mid", rows)
	}
}

func TestComputeByCountry_AggregatesAndRanks(t *testing.T) {
	active := []domain.SaleRecord{
		rec("O1", "Alpha", "USA", "Trains", domain.StatusShipped, jan10, "100.00"),
		rec("O2", "Beta", "USA", "Trains", domain.StatusShipped, feb03, "50.00"),
		rec("O3", "Gamma", "France", "Trains", domain.StatusShipped, jan10, "120.00"),
	}

	rows := computeByCountry(active)

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Country != "USA" || rows[0].Revenue.String() != "150" || rows[0].OrderCount != 2 {
		t.Errorf("first row = %+v, want USA/150/2", rows[0])
	}
	if rows[1].Country != "France" {
		t.Errorf("second row = %+v, want France", rows[1])
	}
}

func TestBreakdowns_RevenueConsistentAcrossDimensions(t *testing.T) {
	active := []domain.SaleRecord{
		rec("O1", "Alpha", "USA", "Trains", domain.StatusShipped, jan10, "123.45"),
		rec("O2", "Beta", "France", "Ships", domain.StatusShipped, feb03, "67.89"),
		rec("O3", "Gamma", "Norway", "Planes", domain.StatusShipped, apr20, "11.11"),
	}

	sum := func(rows []decimal.Decimal) decimal.Decimal {
		total := decimal.Zero
		for _, r := range rows {
			total = total.Add(r)
		}
		return total
	}

	var byCountry, byLine, byCustomer []decimal.Decimal
	for _, r := range computeByCountry(active) {
		byCountry = append(byCountry, r.Revenue)
	}
	for _, r := range computeByProductLine(active) {
		byLine = append(byLine, r.Revenue)
	}
	for _, r := range computeTopCustomers(active, 0) {
		byCustomer = append(byCustomer, r.Revenue)
	}

	total := computeKPIs(active, active).TotalRevenue
	for name, got := range map[string]decimal.Decimal{
		"country":      sum(byCountry),
		"product line": sum(byLine),
		"customer":     sum(byCustomer),
	} {
		if !got.Equal(total) {
			t.Errorf("%s breakdown sums to %s, want %s", name, got, total)
		}
	}
}
