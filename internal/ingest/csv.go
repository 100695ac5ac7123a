package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Column headers of the sales export this service ingests. Header matching
// is case-insensitive; unmapped columns are skipped.
const (
	colOrderNumber = "ORDERNUMBER"
	colLineNumber  = "ORDERLINENUMBER"
	colOrderDate   = "ORDERDATE"
	colQuantity    = "QUANTITYORDERED"
	colUnitPrice   = "PRICEEACH"
	colLineTotal   = "SALES"
	colStatus      = "STATUS"
	colCountry     = "COUNTRY"
	colProductLine = "PRODUCTLINE"
	colCustomer    = "CUSTOMERNAME"
)

// ParseCSV reads a raw sales export into candidate records. The export is
// Latin-1 encoded (customer and country names carry accented characters), so
// the stream is decoded before CSV parsing. Field-level validation is not
// done here; ValidateBatch owns classification of bad values.
func ParseCSV(r io.Reader) ([]RawRecord, error) {
	reader := csv.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ParseCSV: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToUpper(strings.TrimSpace(h))] = i
	}

	field := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ParseCSV: read row %d: %w", len(records)+2, err)
		}
		records = append(records, RawRecord{
			OrderID:     field(row, colOrderNumber),
			LineNumber:  field(row, colLineNumber),
			OrderDate:   field(row, colOrderDate),
			Quantity:    field(row, colQuantity),
			UnitPrice:   field(row, colUnitPrice),
			LineTotal:   field(row, colLineTotal),
			Status:      field(row, colStatus),
			Country:     field(row, colCountry),
			ProductLine: field(row, colProductLine),
			CustomerID:  field(row, colCustomer),
		})
	}
	return records, nil
}
