package utils

import (
	"strconv"
	"strings"
	"time"
)

// serialEpoch anchors the legacy spreadsheet date serials: serial N maps to
// 1899-12-31 + (N-1) days, in UTC, so serial 2 is 1900-01-01. Matches the
// conversion the dataset's producing spreadsheets use.
var serialEpoch = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)

// ParseEffectiveDate normalizes the two effective-date encodings found in the
// dataset: a numeric day-count serial, or an M/D/Y string. It never fails
// hard; the second return is false for empty or malformed input, and callers
// exclude such records from date-dependent operations.
//
// This is the single date normalizer for the whole pipeline. Every component
// that compares, formats or filters effective dates goes through it.
func ParseEffectiveDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		days := int(serial)
		if days < 1 {
			return time.Time{}, false
		}
		return serialEpoch.AddDate(0, 0, days-1), true
	}

	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	month, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	day, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject rollover such as 2/30 -> March 1.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

// FormatDateISO renders a normalized date as YYYY-MM-DD, the canonical form
// used for fee-schedule-date matching.
func FormatDateISO(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// FormatDateUS renders a normalized date as MM/DD/YYYY for display.
func FormatDateUS(t time.Time) string {
	return t.UTC().Format("01/02/2006")
}
