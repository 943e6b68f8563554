package processors

import (
	"github.com/username/medrates/backend/src/models"
	"github.com/username/medrates/backend/src/utils"
)

// VisibleColumns reports, per displayable column, whether any record in the
// result set carries a non-empty value, so all-empty columns can be hidden.
// The derived rate_per_hour column is visible only when some record has a
// parseable rate with a convertible duration unit.
func VisibleColumns(records []models.RateRecord) map[string]bool {
	columns := make(map[string]bool, len(models.ColumnKeys))
	for _, key := range models.ColumnKeys {
		columns[key] = false
	}

	agg := NewAggregator()
	for i := range records {
		for _, key := range models.ColumnKeys {
			if key == "rate_per_hour" {
				continue
			}
			if v := records[i].Field(key); v != "" && v != "-" {
				columns[key] = true
			}
		}
		if rate, ok := utils.ParseRate(records[i].Rate); ok {
			if _, convertible := agg.HourlyEquivalent(rate, records[i].DurationUnit); convertible {
				columns["rate_per_hour"] = true
			}
		}
	}
	return columns
}
