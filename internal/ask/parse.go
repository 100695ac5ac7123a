package ask

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseResponse decodes the model's JSON reply into a Request. It tolerates
// Markdown fences and surrounding junk the model sometimes emits despite
// instructions, and checks the view name against the known set.
func parseResponse(raw string) (*Request, error) {
	clean := cleanModelJSON(raw)

	var req Request
	if err := json.Unmarshal([]byte(clean), &req); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w\nraw response: %s", err, raw)
	}

	switch req.View {
	case ViewKpis, ViewTimeSeries, ViewByCountry, ViewByProductLine, ViewTopCustomers:
	default:
		return nil, fmt.Errorf("model selected unknown view %q", req.View)
	}
	return &req, nil
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: keep only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
