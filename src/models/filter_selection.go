package models

import (
	"strings"
	"time"
)

// FilterStage is one level of the cascading filter order. Selecting a stage
// clears every stage strictly after it.
type FilterStage int

const (
	StageServiceCategory FilterStage = iota + 1
	StageState
	StageServiceCode // service code XOR service description
	StageDetail      // program, location/region, modifier
)

// StateSelection distinguishes the comparison view's "all states" mode from a
// specific state list. Replaces the upstream "ALL_STATES" sentinel string.
type StateSelection struct {
	All    bool     `json:"all"`
	States []string `json:"states,omitempty"`
}

// Includes reports whether the selection covers the given state name
// (case-insensitive). An empty selection covers nothing.
func (s StateSelection) Includes(state string) bool {
	if s.All {
		return true
	}
	for _, st := range s.States {
		if strings.EqualFold(st, state) {
			return true
		}
	}
	return false
}

func (s StateSelection) Empty() bool {
	return !s.All && len(s.States) == 0
}

// FilterSelection is the user-driven projection over the rate dataset: at most
// one selected value per filterable dimension. The zero value is an empty
// selection. Mutations go through the Select* methods so the cascade-reset
// rules hold.
type FilterSelection struct {
	ServiceCategory    string `json:"serviceCategory,omitempty"`
	State              string `json:"state,omitempty"`
	ServiceCode        string `json:"serviceCode,omitempty"`
	ServiceDescription string `json:"serviceDescription,omitempty"`
	Program            string `json:"program,omitempty"`
	LocationRegion     string `json:"locationRegion,omitempty"`
	Modifier           string `json:"modifier,omitempty"`
	ProviderType       string `json:"providerType,omitempty"`

	// FeeScheduleDate is an exact-match ISO date (YYYY-MM-DD). When set it
	// supersedes StartDate/EndDate and Year.
	FeeScheduleDate string     `json:"feeScheduleDate,omitempty"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	Year            int        `json:"year,omitempty"`

	// FilterStep drives "what to pick next" guidance only; it carries no
	// filtering semantics.
	FilterStep int `json:"filterStep,omitempty"`
}

// SelectServiceCategory sets the top cascade stage and clears everything below.
func (f *FilterSelection) SelectServiceCategory(category string) {
	f.ServiceCategory = category
	f.State = ""
	f.clearCodeAndBelow()
	f.FilterStep = 2
}

// SelectState clears the code/description stage and the detail stages. The
// stored state is uppercased; comparisons against records are
// case-insensitive either way.
func (f *FilterSelection) SelectState(state string) {
	f.State = strings.ToUpper(state)
	f.clearCodeAndBelow()
	f.FilterStep = 3
}

// SelectServiceCode keeps any selected description (the two coexist once both
// are picked through the UI) and resets the detail stages.
func (f *FilterSelection) SelectServiceCode(code string) {
	f.ServiceCode = code
	f.clearDetail()
	f.FilterStep = 4
}

// SelectServiceDescription mirrors SelectServiceCode for the description side
// of the code XOR description pair.
func (f *FilterSelection) SelectServiceDescription(desc string) {
	f.ServiceDescription = desc
	f.clearDetail()
	f.FilterStep = 4
}

// SelectYear constrains to a calendar year by pinning the range bounds to
// Jan 1 and Dec 31 so the range and year fields stay consistent. Selecting
// year 0 clears all three.
func (f *FilterSelection) SelectYear(year int) {
	if year == 0 {
		f.Year = 0
		f.StartDate = nil
		f.EndDate = nil
		return
	}
	f.Year = year
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	f.StartDate = &start
	f.EndDate = &end
}

// SelectFeeScheduleDate sets the exact-match date and drops any range bounds,
// which it supersedes.
func (f *FilterSelection) SelectFeeScheduleDate(isoDate string) {
	f.FeeScheduleDate = isoDate
	if isoDate != "" {
		f.StartDate = nil
		f.EndDate = nil
		f.Year = 0
	}
}

// Reset returns the selection to its initial empty state.
func (f *FilterSelection) Reset() {
	*f = FilterSelection{FilterStep: 1}
}

// IsReady reports whether enough has been selected to show results. A state
// is the minimum; until then consumers render a "please filter" prompt
// instead of the unbounded table.
func (f *FilterSelection) IsReady() bool {
	return f.State != ""
}

// HasDateConstraint reports whether any date-dependent filtering is active.
func (f *FilterSelection) HasDateConstraint() bool {
	return f.FeeScheduleDate != "" || f.StartDate != nil || f.EndDate != nil || f.Year != 0
}

func (f *FilterSelection) clearCodeAndBelow() {
	f.ServiceCode = ""
	f.ServiceDescription = ""
	f.clearDetail()
}

func (f *FilterSelection) clearDetail() {
	f.Program = ""
	f.LocationRegion = ""
	f.Modifier = ""
	f.ProviderType = ""
}
