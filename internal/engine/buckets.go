package engine

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/sales-insights/internal/domain"
)

// PeriodKey maps a calendar date to its bucket at the given granularity.
// Keys are zero-padded ("2004", "2004-Q2", "2004-03") so that plain string
// ordering is calendar ordering, independent of which years are present or
// the order records were seen in.
func PeriodKey(g domain.Granularity, d civil.Date) string {
	year, ord := periodOrdinal(g, d)
	return formatPeriod(g, year, ord)
}

// periodSpan enumerates every period key between two dates inclusive, in
// calendar order. Time-series views use it to zero-fill gaps so chart
// consumers see a continuous series.
func periodSpan(g domain.Granularity, from, to civil.Date) []string {
	if to.Before(from) {
		from, to = to, from
	}
	fromYear, fromOrd := periodOrdinal(g, from)
	toYear, toOrd := periodOrdinal(g, to)

	perYear := ordinalsPerYear(g)
	var keys []string
	for year, ord := fromYear, fromOrd; year < toYear || (year == toYear && ord <= toOrd); {
		keys = append(keys, formatPeriod(g, year, ord))
		ord++
		if ord > perYear {
			ord = 1
			year++
		}
	}
	return keys
}

// periodOrdinal reduces a date to (year, ordinal-within-year) for the
// granularity: month 1-12, quarter 1-4, or a constant 1 for yearly buckets.
func periodOrdinal(g domain.Granularity, d civil.Date) (int, int) {
	switch g {
	case domain.GranularityYearly:
		return d.Year, 1
	case domain.GranularityQuarterly:
		return d.Year, quarterOf(d.Month)
	default: // monthly
		return d.Year, int(d.Month)
	}
}

func ordinalsPerYear(g domain.Granularity) int {
	switch g {
	case domain.GranularityYearly:
		return 1
	case domain.GranularityQuarterly:
		return 4
	default:
		return 12
	}
}

func formatPeriod(g domain.Granularity, year, ord int) string {
	switch g {
	case domain.GranularityYearly:
		return fmt.Sprintf("%04d", year)
	case domain.GranularityQuarterly:
		return fmt.Sprintf("%04d-Q%d", year, ord)
	default:
		return fmt.Sprintf("%04d-%02d", year, ord)
	}
}

func quarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}
