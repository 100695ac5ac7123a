package ingest

import (
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func validRaw() RawRecord {
	return RawRecord{
		OrderID:     "10107",
		LineNumber:  "2",
		OrderDate:   "2003-02-24",
		Quantity:    "30",
		UnitPrice:   "95.70",
		LineTotal:   "2871.00",
		Status:      "Shipped",
		Country:     "USA",
		ProductLine: "Motorcycles",
		CustomerID:  "Land of Toys Inc.",
	}
}

func TestValidateBatch_AcceptsWellFormedRecord(t *testing.T) {
	records, report := ValidateBatch([]RawRecord{validRaw()})

	if report.Candidates != 1 || report.Accepted != 1 || report.Rejected != 0 {
		t.Fatalf("report = %+v, want 1 candidate accepted", report)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.OrderID != "10107" {
		t.Errorf("OrderID = %q, want %q", rec.OrderID, "10107")
	}
	if rec.LineNumber != 2 {
		t.Errorf("LineNumber = %d, want 2", rec.LineNumber)
	}
	if rec.OrderDate != (civil.Date{Year: 2003, Month: 2, Day: 24}) {
		t.Errorf("OrderDate = %v, want 2003-02-24", rec.OrderDate)
	}
	if !rec.LineTotal.Equal(rec.UnitPrice.Mul(decimal.NewFromInt(int64(rec.Quantity)))) {
		t.Errorf("LineTotal %s inconsistent with %d × %s", rec.LineTotal, rec.Quantity, rec.UnitPrice)
	}
}

func TestValidateBatch_RejectionReasons(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawRecord)
		reason RejectReason
	}{
		{
			name:   "missing order id",
			mutate: func(r *RawRecord) { r.OrderID = "" },
			reason: ReasonMissingField,
		},
		{
			name:   "whitespace-only status",
			mutate: func(r *RawRecord) { r.Status = "   " },
			reason: ReasonMissingField,
		},
		{
			name:   "unparseable date",
			mutate: func(r *RawRecord) { r.OrderDate = "24th Feb 2003" },
			reason: ReasonBadDate,
		},
		{
			name:   "quantity not an integer",
			mutate: func(r *RawRecord) { r.Quantity = "thirty" },
			reason: ReasonBadNumber,
		},
		{
			name:   "negative quantity",
			mutate: func(r *RawRecord) { r.Quantity = "-3" },
			reason: ReasonNegativeQuantity,
		},
		{
			name:   "negative unit price",
			mutate: func(r *RawRecord) { r.UnitPrice = "-95.70"; r.LineTotal = "-2871.00" },
			reason: ReasonNegativePrice,
		},
		{
			name:   "line total off by more than a cent",
			mutate: func(r *RawRecord) { r.LineTotal = "2871.50" },
			reason: ReasonTotalMismatch,
		},
		{
			name:   "line total not a number",
			mutate: func(r *RawRecord) { r.LineTotal = "n/a" },
			reason: ReasonBadNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)

			records, report := ValidateBatch([]RawRecord{raw})

			if len(records) != 0 {
				t.Fatalf("got %d accepted records, want 0", len(records))
			}
			if report.Rejected != 1 {
				t.Fatalf("Rejected = %d, want 1", report.Rejected)
			}
			if report.Counts[tt.reason] != 1 {
				t.Errorf("Counts[%s] = %d, want 1 (counts: %v)", tt.reason, report.Counts[tt.reason], report.Counts)
			}
			if len(report.Examples[tt.reason]) != 1 {
				t.Errorf("Examples[%s] = %v, want one example", tt.reason, report.Examples[tt.reason])
			}
		})
	}
}

func TestValidateBatch_ToleratesSubCentRounding(t *testing.T) {
	raw := validRaw()
	raw.Quantity = "3"
	raw.UnitPrice = "33.333"
	raw.LineTotal = "100.00" // expected 99.999, off by 0.001

	records, report := ValidateBatch([]RawRecord{raw})
	if report.Rejected != 0 {
		t.Fatalf("rejected sub-cent mismatch: %v", report.Counts)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
}

func TestValidateBatch_DateLayouts(t *testing.T) {
	tests := []struct {
		raw  string
		want civil.Date
	}{
		{"2003-02-24", civil.Date{Year: 2003, Month: 2, Day: 24}},
		{"2003-02-24 00:00:00", civil.Date{Year: 2003, Month: 2, Day: 24}},
		{"2/24/2003 0:00", civil.Date{Year: 2003, Month: 2, Day: 24}},
		{"2/24/2003", civil.Date{Year: 2003, Month: 2, Day: 24}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			raw := validRaw()
			raw.OrderDate = tt.raw

			records, report := ValidateBatch([]RawRecord{raw})
			if report.Rejected != 0 {
				t.Fatalf("date %q rejected: %v", tt.raw, report.Examples)
			}
			if records[0].OrderDate != tt.want {
				t.Errorf("OrderDate = %v, want %v", records[0].OrderDate, tt.want)
			}
		})
	}
}

func TestValidateBatch_MissingLineNumberAccepted(t *testing.T) {
	raw := validRaw()
	raw.LineNumber = ""

	records, report := ValidateBatch([]RawRecord{raw})
	if report.Rejected != 0 {
		t.Fatalf("record with no line number rejected: %v", report.Examples)
	}
	if records[0].LineNumber != 0 {
		t.Errorf("LineNumber = %d, want 0", records[0].LineNumber)
	}
}

func TestValidateBatch_NormalizesTextFields(t *testing.T) {
	raw := validRaw()
	raw.Status = "shipped"
	raw.Country = "usa"
	raw.ProductLine = "MOTORCYCLES"
	raw.CustomerID = "land of toys inc."

	records, report := ValidateBatch([]RawRecord{raw})
	if report.Rejected != 0 {
		t.Fatalf("unexpected rejection: %v", report.Examples)
	}

	rec := records[0]
	if string(rec.Status) != "Shipped" {
		t.Errorf("Status = %q, want %q", rec.Status, "Shipped")
	}
	if rec.Country != "Usa" {
		t.Errorf("Country = %q, want %q", rec.Country, "Usa")
	}
	if rec.ProductLine != "Motorcycles" {
		t.Errorf("ProductLine = %q, want %q", rec.ProductLine, "Motorcycles")
	}
	if rec.CustomerID != "Land Of Toys Inc." {
		t.Errorf("CustomerID = %q, want %q", rec.CustomerID, "Land Of Toys Inc.")
	}
}

func TestValidateBatch_ExampleCapAndFullCounts(t *testing.T) {
	raws := make([]RawRecord, 0, 8)
	for i := 0; i < 8; i++ {
		raw := validRaw()
		raw.OrderDate = "garbage"
		raws = append(raws, raw)
	}

	_, report := ValidateBatch(raws)

	if report.Counts[ReasonBadDate] != 8 {
		t.Errorf("Counts[bad_date] = %d, want 8", report.Counts[ReasonBadDate])
	}
	if len(report.Examples[ReasonBadDate]) != maxExamplesPerReason {
		t.Errorf("kept %d examples, want %d", len(report.Examples[ReasonBadDate]), maxExamplesPerReason)
	}
	// Examples carry 1-based row positions.
	if !strings.HasPrefix(report.Examples[ReasonBadDate][0], "row 1:") {
		t.Errorf("first example = %q, want row 1 prefix", report.Examples[ReasonBadDate][0])
	}
}

func TestValidateBatch_MixedBatchKeepsGoingPastRejections(t *testing.T) {
	bad := validRaw()
	bad.Quantity = "x"

	records, report := ValidateBatch([]RawRecord{bad, validRaw(), bad, validRaw()})

	if report.Candidates != 4 || report.Accepted != 2 || report.Rejected != 2 {
		t.Fatalf("report = %+v, want 4/2/2", report)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}
