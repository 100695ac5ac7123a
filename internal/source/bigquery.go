package source

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/sales-insights/internal/ingest"
)

// BigQuerySource reads raw sales records from a warehouse table. Numeric
// and date columns are rendered back to text because the validator owns all
// parsing and classification of candidate values.
type BigQuerySource struct {
	ProjectID string
	DatasetID string
	TableID   string
}

func NewBigQuerySource(projectID, datasetID, tableID string) *BigQuerySource {
	return &BigQuerySource{ProjectID: projectID, DatasetID: datasetID, TableID: tableID}
}

// salesRow mirrors the warehouse sales table schema.
type salesRow struct {
	OrderID     string              `bigquery:"order_id"`
	LineNumber  bigquery.NullInt64  `bigquery:"line_number"`
	OrderDate   bigquery.NullDate   `bigquery:"order_date"`
	Quantity    bigquery.NullInt64  `bigquery:"quantity"`
	UnitPrice   *big.Rat            `bigquery:"unit_price"` // NUMERIC
	LineTotal   *big.Rat            `bigquery:"line_total"` // NUMERIC
	Status      string              `bigquery:"status"`
	Country     bigquery.NullString `bigquery:"country"`
	ProductLine bigquery.NullString `bigquery:"product_line"`
	CustomerID  bigquery.NullString `bigquery:"customer_id"`
}

func (s *BigQuerySource) FetchRecords(ctx context.Context) ([]ingest.RawRecord, error) {
	client, err := bigquery.NewClient(ctx, s.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("FetchRecords: bigquery client: %w", err)
	}
	defer client.Close()

	q := client.Query(fmt.Sprintf(`
		SELECT
			order_id, line_number, order_date, quantity,
			unit_price, line_total, status, country, product_line, customer_id
		FROM %s.%s
	`, s.DatasetID, s.TableID))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchRecords: running query: %w", err)
	}

	var records []ingest.RawRecord
	for {
		var row salesRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("FetchRecords: reading row: %w", err)
		}
		records = append(records, rowToRaw(row))
	}
	return records, nil
}

func rowToRaw(row salesRow) ingest.RawRecord {
	raw := ingest.RawRecord{
		OrderID: row.OrderID,
		Status:  row.Status,
	}
	if row.LineNumber.Valid {
		raw.LineNumber = strconv.FormatInt(row.LineNumber.Int64, 10)
	}
	if row.OrderDate.Valid {
		raw.OrderDate = row.OrderDate.Date.String()
	}
	if row.Quantity.Valid {
		raw.Quantity = strconv.FormatInt(row.Quantity.Int64, 10)
	}
	raw.UnitPrice = ratString(row.UnitPrice)
	raw.LineTotal = ratString(row.LineTotal)
	if row.Country.Valid {
		raw.Country = row.Country.StringVal
	}
	if row.ProductLine.Valid {
		raw.ProductLine = row.ProductLine.StringVal
	}
	if row.CustomerID.Valid {
		raw.CustomerID = row.CustomerID.StringVal
	}
	return raw
}

func ratString(r *big.Rat) string {
	if r == nil {
		return ""
	}
	return r.FloatString(2)
}
