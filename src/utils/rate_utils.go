package utils

import (
	"strconv"
	"strings"
)

// ParseRate parses a rate amount string, stripping one leading "$". The
// second return is false when the value is absent or unparseable. Display
// paths render a "-" for false; the aggregation path substitutes zero. That
// asymmetry is deliberate and matches the dashboard's historical behavior.
func ParseRate(raw string) (float64, bool) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
