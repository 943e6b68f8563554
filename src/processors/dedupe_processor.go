package processors

import (
	"time"

	"github.com/username/medrates/backend/src/models"
	"github.com/username/medrates/backend/src/utils"
)

// deduplicatorImpl implements the Deduplicator interface.
type deduplicatorImpl struct{}

// LatestPerKey groups records by natural key and keeps, per group, the record
// with the maximum normalized effective date. Ties keep the first-encountered
// record, so the operation is deterministic given input order. Records whose
// dates do not normalize sort as the minimum date: they survive only when
// they are alone in their group. Output preserves first-encounter order of
// the keys, which keeps the operation idempotent.
func (d *deduplicatorImpl) LatestPerKey(records []models.RateRecord) []models.RateRecord {
	type entry struct {
		index int
		date  time.Time
	}
	latest := make(map[string]entry)
	var order []string

	for i := range records {
		key := records[i].NaturalKey()
		date, ok := utils.ParseEffectiveDate(records[i].RateEffectiveDate)
		if !ok {
			date = time.Time{}
		}
		existing, seen := latest[key]
		if !seen {
			latest[key] = entry{index: i, date: date}
			order = append(order, key)
			continue
		}
		if date.After(existing.date) {
			latest[key] = entry{index: i, date: date}
		}
	}

	out := make([]models.RateRecord, 0, len(order))
	for _, key := range order {
		out = append(out, records[latest[key].index])
	}
	return out
}
