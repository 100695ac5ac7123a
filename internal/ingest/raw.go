package ingest

// RawRecord is one unvalidated sales line-item candidate as it arrives from
// a source collaborator. Every field is kept as text; parsing and
// classification happen in ValidateBatch, never at the source.
type RawRecord struct {
	OrderID     string `json:"order_id"`
	LineNumber  string `json:"line_number"`
	OrderDate   string `json:"order_date"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
	Status      string `json:"status"`
	Country     string `json:"country"`
	ProductLine string `json:"product_line"`
	CustomerID  string `json:"customer_id"`
}
