package processors

import (
	"sort"
	"strings"

	"github.com/username/medrates/backend/src/models"
	"github.com/username/medrates/backend/src/utils"
)

// filterEngineImpl implements the FilterEngine interface. It is stateless;
// all inputs arrive per call and results are fresh slices.
type filterEngineImpl struct{}

// modifierCode extracts the match key of a modifier option: the code prefix
// before " - ".
func modifierCode(option string) string {
	if idx := strings.Index(option, " - "); idx >= 0 {
		return option[:idx]
	}
	return option
}

func (e *filterEngineImpl) Matches(record *models.RateRecord, sel *models.FilterSelection) bool {
	if sel.ServiceCategory != "" && record.ServiceCategory != sel.ServiceCategory {
		return false
	}
	if sel.State != "" && !strings.EqualFold(record.StateName, sel.State) {
		return false
	}
	if sel.ServiceCode != "" && record.ServiceCode != sel.ServiceCode {
		return false
	}
	if sel.ServiceDescription != "" && record.ServiceDescription != sel.ServiceDescription {
		return false
	}
	if sel.Program != "" && record.Program != sel.Program {
		return false
	}
	if sel.LocationRegion != "" && record.LocationRegion != sel.LocationRegion {
		return false
	}
	if sel.ProviderType != "" && record.ProviderType != sel.ProviderType {
		return false
	}

	if sel.Modifier != "" {
		want := modifierCode(sel.Modifier)
		found := false
		for _, m := range record.Modifiers() {
			if m[0] != "" && modifierCode(m[0]) == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return e.matchesDate(record, sel)
}

// matchesDate resolves the date constraint in precedence order: exact
// fee-schedule date, then start/end range, then year. Records whose effective
// date does not normalize never match an active constraint, and are included
// when no constraint is active (no constraint applies to them).
func (e *filterEngineImpl) matchesDate(record *models.RateRecord, sel *models.FilterSelection) bool {
	if !sel.HasDateConstraint() {
		return true
	}
	d, ok := utils.ParseEffectiveDate(record.RateEffectiveDate)
	if !ok {
		return false
	}

	if sel.FeeScheduleDate != "" {
		return utils.FormatDateISO(d) == sel.FeeScheduleDate
	}
	if sel.StartDate != nil && d.Before(*sel.StartDate) {
		return false
	}
	if sel.EndDate != nil && d.After(*sel.EndDate) {
		return false
	}
	if sel.StartDate == nil && sel.EndDate == nil && sel.Year != 0 && d.Year() != sel.Year {
		return false
	}
	return true
}

func (e *filterEngineImpl) Apply(records []models.RateRecord, sel *models.FilterSelection) []models.RateRecord {
	if !sel.IsReady() {
		return nil
	}
	var out []models.RateRecord
	for i := range records {
		if e.Matches(&records[i], sel) {
			out = append(out, records[i])
		}
	}
	return out
}

// narrowed returns the records matching only the selections at cascade stages
// strictly before the requested stage. Date constraints never narrow option
// lists.
func (e *filterEngineImpl) narrowed(records []models.RateRecord, stage models.FilterStage, sel *models.FilterSelection) []models.RateRecord {
	prior := &models.FilterSelection{}
	if stage > models.StageServiceCategory {
		prior.ServiceCategory = sel.ServiceCategory
	}
	if stage > models.StageState {
		prior.State = sel.State
	}
	if stage > models.StageServiceCode {
		prior.ServiceCode = sel.ServiceCode
		prior.ServiceDescription = sel.ServiceDescription
	}

	var out []models.RateRecord
	for i := range records {
		if e.Matches(&records[i], prior) {
			out = append(out, records[i])
		}
	}
	return out
}

func (e *filterEngineImpl) Options(records []models.RateRecord, stage models.FilterStage, sel *models.FilterSelection) *StageOptions {
	scoped := e.narrowed(records, stage, sel)
	opts := &StageOptions{}

	switch stage {
	case models.StageServiceCategory:
		opts.ServiceCategories = distinctSorted(scoped, func(r *models.RateRecord) string {
			return strings.TrimSpace(r.ServiceCategory)
		})
	case models.StageState:
		opts.States = distinctSorted(scoped, func(r *models.RateRecord) string {
			return strings.ToUpper(strings.TrimSpace(r.StateName))
		})
	case models.StageServiceCode:
		opts.ServiceCodes = distinctSorted(scoped, func(r *models.RateRecord) string { return r.ServiceCode })
		opts.ServiceDescriptions = distinctSorted(scoped, func(r *models.RateRecord) string { return r.ServiceDescription })
	case models.StageDetail:
		opts.Programs = distinctSorted(scoped, func(r *models.RateRecord) string { return r.Program })
		opts.LocationRegions = distinctSorted(scoped, func(r *models.RateRecord) string { return r.LocationRegion })
		opts.ProviderTypes = distinctSorted(scoped, func(r *models.RateRecord) string { return r.ProviderType })
		opts.Modifiers = modifierOptions(scoped)
	}
	return opts
}

// modifierOptions flattens all four modifier slots across the scoped records
// into deduplicated "code - details" display strings.
func modifierOptions(records []models.RateRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range records {
		for _, m := range records[i].Modifiers() {
			display := models.ModifierDisplay(m[0], m[1])
			if display == "" {
				continue
			}
			if _, dup := seen[display]; dup {
				continue
			}
			seen[display] = struct{}{}
			out = append(out, display)
		}
	}
	sort.Strings(out)
	return out
}

func (e *filterEngineImpl) FeeScheduleDates(records []models.RateRecord, sel *models.FilterSelection) []string {
	// Fee-schedule options narrow on everything selected above the date
	// dimension, not on any active date constraint.
	prior := &models.FilterSelection{
		ServiceCategory:    sel.ServiceCategory,
		State:              sel.State,
		ServiceCode:        sel.ServiceCode,
		ServiceDescription: sel.ServiceDescription,
	}

	seen := make(map[string]struct{})
	var out []string
	for i := range records {
		if !e.Matches(&records[i], prior) {
			continue
		}
		d, ok := utils.ParseEffectiveDate(records[i].RateEffectiveDate)
		if !ok {
			continue
		}
		iso := utils.FormatDateISO(d)
		if _, dup := seen[iso]; dup {
			continue
		}
		seen[iso] = struct{}{}
		out = append(out, iso)
	}
	sort.Strings(out)
	return out
}

func distinctSorted(records []models.RateRecord, value func(*models.RateRecord) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range records {
		v := value(&records[i])
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
