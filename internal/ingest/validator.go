package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/sales-insights/internal/domain"
)

// RejectReason classifies why a candidate record was rejected.
type RejectReason string

const (
	ReasonMissingField     RejectReason = "missing_field"
	ReasonBadDate          RejectReason = "bad_date"
	ReasonBadNumber        RejectReason = "bad_number"
	ReasonNegativeQuantity RejectReason = "negative_quantity"
	ReasonNegativePrice    RejectReason = "negative_price"
	ReasonTotalMismatch    RejectReason = "line_total_mismatch"
)

// maxExamplesPerReason bounds how many sample rejections are kept per reason
// in the report; further rejections are still counted.
const maxExamplesPerReason = 5

// lineTotalTolerance is the maximum absolute difference allowed between the
// reported line total and quantity × unit price. Mismatches beyond it are
// data-quality problems and are rejected, never auto-corrected.
var lineTotalTolerance = decimal.NewFromFloat(0.01)

// orderDateLayouts are tried in order when parsing a raw order date. The
// source exports use either ISO dates or US-style "M/D/YYYY H:MM" stamps.
var orderDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// RejectionReport summarizes what ValidateBatch turned away. It is returned
// alongside the accepted records; rejection never halts a batch.
type RejectionReport struct {
	Candidates int `json:"candidates"`
	Accepted   int `json:"accepted"`
	Rejected   int `json:"rejected"`

	Counts   map[RejectReason]int      `json:"counts"`
	Examples map[RejectReason][]string `json:"examples"`
}

func newRejectionReport() *RejectionReport {
	return &RejectionReport{
		Counts:   make(map[RejectReason]int),
		Examples: make(map[RejectReason][]string),
	}
}

func (r *RejectionReport) reject(reason RejectReason, row int, detail string) {
	r.Rejected++
	r.Counts[reason]++
	if len(r.Examples[reason]) < maxExamplesPerReason {
		r.Examples[reason] = append(r.Examples[reason], fmt.Sprintf("row %d: %s", row, detail))
	}
}

// ValidateBatch normalizes a batch of raw candidates into SaleRecords. It is
// pure and total: malformed input is classified into the report, never
// raised. Row numbers in report examples are 1-based positions in the batch.
func ValidateBatch(raws []RawRecord) ([]domain.SaleRecord, *RejectionReport) {
	report := newRejectionReport()
	report.Candidates = len(raws)

	// One normalizer per batch; a cases.Caser is not safe to share across
	// goroutines but is cheap to reuse within one.
	norm := domain.NewNormalizer()

	records := make([]domain.SaleRecord, 0, len(raws))
	for i, raw := range raws {
		rec, reason, detail := validateOne(norm, raw)
		if reason != "" {
			report.reject(reason, i+1, detail)
			continue
		}
		records = append(records, rec)
	}
	report.Accepted = len(records)
	return records, report
}

func validateOne(norm *domain.Normalizer, raw RawRecord) (domain.SaleRecord, RejectReason, string) {
	var zero domain.SaleRecord

	required := []struct{ name, value string }{
		{"order_id", raw.OrderID},
		{"order_date", raw.OrderDate},
		{"quantity", raw.Quantity},
		{"unit_price", raw.UnitPrice},
		{"line_total", raw.LineTotal},
		{"status", raw.Status},
		{"country", raw.Country},
		{"product_line", raw.ProductLine},
		{"customer_id", raw.CustomerID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return zero, ReasonMissingField, fmt.Sprintf("missing required field %q", f.name)
		}
	}

	orderDate, err := parseOrderDate(raw.OrderDate)
	if err != nil {
		return zero, ReasonBadDate, fmt.Sprintf("order_date %q: %v", raw.OrderDate, err)
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(raw.Quantity))
	if err != nil {
		return zero, ReasonBadNumber, fmt.Sprintf("quantity %q is not an integer", raw.Quantity)
	}
	if quantity < 0 {
		return zero, ReasonNegativeQuantity, fmt.Sprintf("quantity %d is negative", quantity)
	}

	unitPrice, err := decimal.NewFromString(strings.TrimSpace(raw.UnitPrice))
	if err != nil {
		return zero, ReasonBadNumber, fmt.Sprintf("unit_price %q is not a number", raw.UnitPrice)
	}
	if unitPrice.IsNegative() {
		return zero, ReasonNegativePrice, fmt.Sprintf("unit_price %s is negative", unitPrice)
	}

	lineTotal, err := decimal.NewFromString(strings.TrimSpace(raw.LineTotal))
	if err != nil {
		return zero, ReasonBadNumber, fmt.Sprintf("line_total %q is not a number", raw.LineTotal)
	}

	expected := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if lineTotal.Sub(expected).Abs().GreaterThan(lineTotalTolerance) {
		return zero, ReasonTotalMismatch,
			fmt.Sprintf("line_total %s does not match quantity %d × unit_price %s (expected %s)",
				lineTotal, quantity, unitPrice, expected)
	}

	// Line number is informational; a missing or malformed value does not
	// reject the record.
	lineNumber, _ := strconv.Atoi(strings.TrimSpace(raw.LineNumber))

	return domain.SaleRecord{
		OrderID:     strings.TrimSpace(raw.OrderID),
		LineNumber:  lineNumber,
		OrderDate:   orderDate,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   lineTotal,
		Status:      norm.Status(raw.Status),
		Country:     norm.TitleCase(raw.Country),
		ProductLine: norm.TitleCase(raw.ProductLine),
		CustomerID:  norm.TitleCase(raw.CustomerID),
	}, "", ""
}

func parseOrderDate(raw string) (civil.Date, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("unrecognized date format")
}
