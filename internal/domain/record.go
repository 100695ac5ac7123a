package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// SaleRecord represents one validated sales line item. One order usually
// spans several line items, so OrderID is not unique per record.
// Records are immutable once produced by the validator; derived views are
// always built into new structures.
type SaleRecord struct {
	OrderID    string     // from ORDERNUMBER
	LineNumber int        // from ORDERLINENUMBER, position within the order
	OrderDate  civil.Date // calendar date, no time component

	Quantity  int             // units ordered, never negative
	UnitPrice decimal.Decimal // price per unit
	LineTotal decimal.Decimal // quantity × unit price, checked by the validator

	Status      Status
	Country     string
	ProductLine string
	CustomerID  string // from CUSTOMERNAME
}
