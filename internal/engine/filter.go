package engine

import "github.com/dvloznov/sales-insights/internal/domain"

// ActiveSubset returns the records that count toward revenue-bearing
// metrics: everything whose status is not in the cancellation set. The set
// is an explicit enumeration on the Status type, so a status value this
// service has never seen before stays included rather than being silently
// dropped from revenue.
func ActiveSubset(records []domain.SaleRecord) []domain.SaleRecord {
	active := make([]domain.SaleRecord, 0, len(records))
	for _, rec := range records {
		if rec.Status.Voided() {
			continue
		}
		active = append(active, rec)
	}
	return active
}
