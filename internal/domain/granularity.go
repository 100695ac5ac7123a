package domain

import (
	"fmt"
	"strings"
)

// Granularity is the requested time-bucketing resolution for time-series
// views.
type Granularity string

const (
	GranularityMonthly   Granularity = "monthly"
	GranularityQuarterly Granularity = "quarterly"
	GranularityYearly    Granularity = "yearly"
)

// ParseGranularity validates a raw granularity value. Unknown values are an
// error for the caller to surface; there is no silent fallback.
func ParseGranularity(raw string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(raw))) {
	case GranularityMonthly:
		return GranularityMonthly, nil
	case GranularityQuarterly:
		return GranularityQuarterly, nil
	case GranularityYearly:
		return GranularityYearly, nil
	default:
		return "", fmt.Errorf("unsupported granularity %q (want monthly, quarterly or yearly)", raw)
	}
}
