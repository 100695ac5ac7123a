package domain

// Status is the fulfillment state of an order line.
type Status string

// Known statuses from the source system. The set is closed for parsing
// purposes, but revenue rules only care about the cancellation set below:
// a status we have never seen before still counts toward revenue rather
// than being silently dropped.
const (
	StatusShipped   Status = "Shipped"
	StatusResolved  Status = "Resolved"
	StatusCancelled Status = "Cancelled"
	StatusOnHold    Status = "On Hold"
	StatusDisputed  Status = "Disputed"
	StatusInProcess Status = "In Process"
)

// voidStatuses is the explicit cancellation set. Records in these statuses
// never contribute to revenue-bearing metrics.
var voidStatuses = map[Status]bool{
	StatusCancelled: true,
}

// Voided reports whether records in this status are excluded from the
// active subset.
func (s Status) Voided() bool {
	return voidStatuses[s]
}
