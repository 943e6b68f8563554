package processors

import (
	"github.com/username/medrates/backend/src/models"
)

// FilterEngine implements the cascading filter state machine over the rate
// dataset: record matching against a FilterSelection, and the dependent
// narrowing of each stage's available options.
type FilterEngine interface {
	// Matches reports whether a single record satisfies every non-empty
	// selection, including the active date constraint.
	Matches(record *models.RateRecord, sel *models.FilterSelection) bool

	// Apply returns the matching subset. Until the selection IsReady it
	// returns nil so consumers show a "please filter" prompt instead of
	// the unbounded table.
	Apply(records []models.RateRecord, sel *models.FilterSelection) []models.RateRecord

	// Options returns the distinct, sorted values selectable for a stage,
	// drawn only from records matching the selections at earlier stages.
	// State values are uppercased; modifier options are "code - details"
	// display strings whose match key is the code prefix.
	Options(records []models.RateRecord, stage models.FilterStage, sel *models.FilterSelection) *StageOptions

	// FeeScheduleDates returns the distinct normalized effective dates
	// (ISO form, sorted) among records matching the non-date selections.
	FeeScheduleDates(records []models.RateRecord, sel *models.FilterSelection) []string
}

// StageOptions carries the selectable values per dimension for one narrowing
// step. Only the slices relevant to the requested stage are populated.
type StageOptions struct {
	ServiceCategories   []string `json:"service_categories,omitempty"`
	States              []string `json:"states,omitempty"`
	ServiceCodes        []string `json:"service_codes,omitempty"`
	ServiceDescriptions []string `json:"service_descriptions,omitempty"`
	Programs            []string `json:"programs,omitempty"`
	LocationRegions     []string `json:"location_regions,omitempty"`
	Modifiers           []string `json:"modifiers,omitempty"`
	ProviderTypes       []string `json:"provider_types,omitempty"`
}

// Deduplicator collapses historical entries sharing a natural key down to the
// single latest-effective-date entry per key.
type Deduplicator interface {
	LatestPerKey(records []models.RateRecord) []models.RateRecord
}

// SortDirection is "asc" or "desc".
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortKey is one entry of an ordered sort specification. The first entry is
// the primary sort.
type SortKey struct {
	Key       string        `json:"key"`
	Direction SortDirection `json:"direction"`
}

// SortEngine applies ordered multi-key sort specifications with the table's
// click semantics: a three-state cycle per column, and additive clicks
// appending lower-priority keys.
type SortEngine interface {
	Toggle(spec []SortKey, key string, additive bool) []SortKey
	Apply(records []models.RateRecord, spec []SortKey) []models.RateRecord
}

// StateAverage is one aggregated bar: the mean rate across a state's entries.
type StateAverage struct {
	State   string  `json:"state"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// SelectionRate is one selected row's rate, keyed by state and the row's
// modifier/program/region selection key.
type SelectionRate struct {
	State        string  `json:"state"`
	SelectionKey string  `json:"selection_key"`
	Rate         float64 `json:"rate"`
}

// RatePoint is one point in a historical rate series. Value is nil when the
// hourly-equivalent toggle is on and the duration unit is not convertible;
// Display carries the "N/A" marker for that case.
type RatePoint struct {
	Date    string             `json:"date"`
	Value   *float64           `json:"value"`
	Display string             `json:"display"`
	Record  *models.RateRecord `json:"record"`
}

// Aggregator computes derived per-group numeric rates for chart consumption.
// Its sums deliberately treat unparseable rates and non-convertible duration
// units as zero; display paths never do. See the dedupe/aggregate tests.
type Aggregator interface {
	// HourlyEquivalent converts a rate to a per-hour basis. ok is false for
	// units that do not convert; callers must not treat that as zero
	// outside the aggregate-sum paths.
	HourlyEquivalent(rate float64, durationUnit string) (value float64, ok bool)

	// ChartValue is the aggregate-path numeric value of a record: the raw
	// or hourly-equivalent rate, with unparseable/non-convertible as 0,
	// rounded to cents.
	ChartValue(record *models.RateRecord, hourly bool) float64

	// StateAverages groups records by state and averages ChartValue per
	// group, sorted by state name.
	StateAverages(records []models.RateRecord, hourly bool) []StateAverage

	// SelectionRates returns ChartValue per selected row, where selections
	// maps a state to the selection keys chosen in its table.
	SelectionRates(records []models.RateRecord, selections map[string][]string, hourly bool) []SelectionRate

	// NationalAverage is the mean positive ChartValue for a service
	// category and code across all states, or 0 when nothing qualifies.
	NationalAverage(records []models.RateRecord, serviceCategory, serviceCode string, hourly bool) float64

	// RateSeries is the dated series for one natural-key line, sorted by
	// normalized effective date ascending.
	RateSeries(records []models.RateRecord, hourly bool) []RatePoint
}

// NewFilterEngine creates the canonical filter engine.
func NewFilterEngine() FilterEngine { return &filterEngineImpl{} }

// NewDeduplicator creates the latest-per-key deduplicator.
func NewDeduplicator() Deduplicator { return &deduplicatorImpl{} }

// NewSortEngine creates the multi-key sort engine.
func NewSortEngine() SortEngine { return &sortEngineImpl{} }

// NewAggregator creates the chart aggregator.
func NewAggregator() Aggregator { return &aggregatorImpl{} }
