package processors

import (
	"sort"
	"strconv"

	"github.com/username/medrates/backend/src/models"
	"github.com/username/medrates/backend/src/utils"
)

// sortEngineImpl implements the SortEngine interface.
type sortEngineImpl struct{}

// Toggle computes the next sort specification after a header click. It is a
// pure function; the input slice is never mutated.
//
// Non-additive clicks run each column through a three-state cycle
// (unsorted -> asc -> desc -> unsorted) and replace any other columns.
// Additive clicks append new columns at the lowest priority and toggle the
// direction of columns already present, primary or not; removal only happens
// through the non-additive cycle.
func (s *sortEngineImpl) Toggle(spec []SortKey, key string, additive bool) []SortKey {
	idx := -1
	for i, sk := range spec {
		if sk.Key == key {
			idx = i
			break
		}
	}

	if idx == -1 {
		if additive {
			out := make([]SortKey, len(spec), len(spec)+1)
			copy(out, spec)
			return append(out, SortKey{Key: key, Direction: SortAsc})
		}
		return []SortKey{{Key: key, Direction: SortAsc}}
	}

	if !additive && spec[idx].Direction == SortDesc {
		out := make([]SortKey, 0, len(spec)-1)
		for i, sk := range spec {
			if i != idx {
				out = append(out, sk)
			}
		}
		return out
	}

	out := make([]SortKey, len(spec))
	copy(out, spec)
	if out[idx].Direction == SortAsc {
		out[idx].Direction = SortDesc
	} else {
		out[idx].Direction = SortAsc
	}
	return out
}

// Apply sorts a copy of the records by walking the spec in priority order.
// The sort is stable: equal records keep their input order.
func (s *sortEngineImpl) Apply(records []models.RateRecord, spec []SortKey) []models.RateRecord {
	out := make([]models.RateRecord, len(records))
	copy(out, records)
	if len(spec) == 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, sk := range spec {
			c := compareField(&out[i], &out[j], sk.Key)
			if c == 0 {
				continue
			}
			if sk.Direction == SortDesc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out
}

// compareField compares one column of two records: numerically when both
// values parse as numbers, by normalized date for the effective-date column,
// and as case-sensitive strings otherwise. Missing values compare as the
// empty string and unparseable dates as the minimum date.
func compareField(a, b *models.RateRecord, key string) int {
	va, vb := a.Field(key), b.Field(key)

	if key == "rate_effective_date" {
		da, _ := utils.ParseEffectiveDate(va)
		db, _ := utils.ParseEffectiveDate(vb)
		switch {
		case da.Before(db):
			return -1
		case da.After(db):
			return 1
		}
		return 0
	}

	na, errA := strconv.ParseFloat(va, 64)
	nb, errB := strconv.ParseFloat(vb, 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	}

	switch {
	case va < vb:
		return -1
	case va > vb:
		return 1
	}
	return 0
}
