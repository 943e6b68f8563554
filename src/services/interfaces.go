package services

import (
	"context"
	"errors"

	"github.com/username/medrates/backend/src/models"
	"github.com/username/medrates/backend/src/processors"
)

var (
	ErrDatasetUnavailable = errors.New("rate dataset unavailable")
	ErrDatasetFetchFailed = errors.New("dataset fetch failed")
)

// RecordSource supplies the full, already-persisted rate collection. The
// production implementation reads the sqlite store; tests inject fixtures.
type RecordSource interface {
	FetchAll() ([]models.RateRecord, error)
}

// TableResult is the dashboard view payload: the filtered and sorted rows
// plus the per-column visibility map.
type TableResult struct {
	Ready          bool                 `json:"ready"`
	Data           []models.RateRecord  `json:"data"`
	VisibleColumns map[string]bool      `json:"visible_columns"`
	Count          int                  `json:"count"`
	SortSpec       []processors.SortKey `json:"sort_spec,omitempty"`
}

// OptionsResult carries the selectable values for every stage given the
// current selections, plus the fee-schedule dates the date dropdown offers.
type OptionsResult struct {
	ServiceCategories   []string `json:"service_categories"`
	States              []string `json:"states"`
	ServiceCodes        []string `json:"service_codes"`
	ServiceDescriptions []string `json:"service_descriptions"`
	Programs            []string `json:"programs"`
	LocationRegions     []string `json:"location_regions"`
	Modifiers           []string `json:"modifiers"`
	ProviderTypes       []string `json:"provider_types"`
	FeeScheduleDates    []string `json:"fee_schedule_dates"`
}

// HistoryResult is the historical-rates view payload: the latest entry per
// natural key for the table, and the dated series for the selected entry.
type HistoryResult struct {
	Ready          bool                   `json:"ready"`
	Data           []models.RateRecord    `json:"data"`
	VisibleColumns map[string]bool        `json:"visible_columns"`
	SelectedKey    string                 `json:"selected_key,omitempty"`
	Series         []processors.RatePoint `json:"series,omitempty"`
}

// ComparisonRequest describes one state-rate-comparison query.
type ComparisonRequest struct {
	ServiceCategory string                `json:"serviceCategory"`
	ServiceCode     string                `json:"serviceCode"`
	States          models.StateSelection `json:"states"`
	// Selections maps a state to the selection keys of its chosen table
	// rows; ignored in all-states mode.
	Selections map[string][]string `json:"selections,omitempty"`
	Hourly     bool                `json:"hourly"`
	// SortOrder orders chart groups by rate: "asc", "desc" or "default".
	SortOrder string `json:"sortOrder,omitempty"`
}

// ComparisonMetrics summarizes the charted rates.
type ComparisonMetrics struct {
	Max float64 `json:"max"`
	Min float64 `json:"min"`
	Avg float64 `json:"avg"`
}

// ComparisonResult is the comparison view payload. StateAverages is set in
// all-states mode; SelectionRates otherwise.
type ComparisonResult struct {
	Ready           bool                       `json:"ready"`
	Data            []models.RateRecord        `json:"data"`
	VisibleColumns  map[string]bool            `json:"visible_columns"`
	StateAverages   []processors.StateAverage  `json:"state_averages,omitempty"`
	SelectionRates  []processors.SelectionRate `json:"selection_rates,omitempty"`
	Metrics         *ComparisonMetrics         `json:"metrics,omitempty"`
	NationalAverage float64                    `json:"national_average"`
}

// RatesService owns the in-memory rate store and runs the filtering, sorting,
// deduplication and aggregation pipeline for the three dashboard views.
// Derived results are cached until the dataset changes.
type RatesService interface {
	// Records returns the shared read-only record collection, loading it
	// from the source on first use. Optional date-range narrowing matches
	// the upstream collection endpoint.
	Records(startDate, endDate string) ([]models.RateRecord, error)

	TableView(sel *models.FilterSelection, spec []processors.SortKey) (*TableResult, error)
	FilterOptions(sel *models.FilterSelection) (*OptionsResult, error)
	HistoryView(sel *models.FilterSelection, entryKey string, hourly bool) (*HistoryResult, error)
	ComparisonView(req *ComparisonRequest) (*ComparisonResult, error)

	// Reload drops the in-memory store and caches so the next request
	// rereads the persisted dataset.
	Reload()
}

// DatasetService fetches the upstream record collection and persists it.
type DatasetService interface {
	// Refresh performs the fetch-and-store cycle and returns the number of
	// records loaded.
	Refresh(ctx context.Context) (int, error)
}
