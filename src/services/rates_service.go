package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/medrates/backend/src/logger"
	"github.com/username/medrates/backend/src/models"
	"github.com/username/medrates/backend/src/processors"
	"github.com/username/medrates/backend/src/utils"
)

const (
	tableCacheKeyFormat      = "rates:table:%s"
	optionsCacheKeyFormat    = "rates:options:%s"
	historyCacheKeyFormat    = "rates:history:%s"
	comparisonCacheKeyFormat = "rates:comparison:%s"
)

type ratesServiceImpl struct {
	source     RecordSource
	filter     processors.FilterEngine
	dedupe     processors.Deduplicator
	sortEngine processors.SortEngine
	agg        processors.Aggregator
	results    *cache.Cache

	mu      sync.RWMutex
	records []models.RateRecord
	loaded  bool
}

func NewRatesService(
	source RecordSource,
	filter processors.FilterEngine,
	dedupe processors.Deduplicator,
	sortEngine processors.SortEngine,
	agg processors.Aggregator,
	results *cache.Cache,
) RatesService {
	return &ratesServiceImpl{
		source:     source,
		filter:     filter,
		dedupe:     dedupe,
		sortEngine: sortEngine,
		agg:        agg,
		results:    results,
	}
}

// snapshot returns the shared record slice, loading it from the source on
// first use. Callers must not mutate the returned slice.
func (s *ratesServiceImpl) snapshot() ([]models.RateRecord, error) {
	s.mu.RLock()
	if s.loaded {
		recs := s.records
		s.mu.RUnlock()
		return recs, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.records, nil
	}
	recs, err := s.source.FetchAll()
	if err != nil {
		logger.L.Error("failed to load rate records from store", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}
	s.records = recs
	s.loaded = true
	logger.L.Info("rate records loaded into memory", "count", len(recs))
	return recs, nil
}

func (s *ratesServiceImpl) Reload() {
	s.mu.Lock()
	s.records = nil
	s.loaded = false
	s.mu.Unlock()
	s.results.Flush()
	logger.L.Info("rate record snapshot and result caches invalidated")
}

func (s *ratesServiceImpl) Records(startDate, endDate string) ([]models.RateRecord, error) {
	recs, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if startDate == "" && endDate == "" {
		return recs, nil
	}

	var start, end time.Time
	if startDate != "" {
		start, err = time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, fmt.Errorf("invalid startDate %q: %w", startDate, err)
		}
	}
	if endDate != "" {
		end, err = time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, fmt.Errorf("invalid endDate %q: %w", endDate, err)
		}
	}

	filtered := make([]models.RateRecord, 0, len(recs))
	for _, rec := range recs {
		d, ok := utils.ParseEffectiveDate(rec.RateEffectiveDate)
		if !ok {
			continue
		}
		if !start.IsZero() && d.Before(start) {
			continue
		}
		if !end.IsZero() && d.After(end) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered, nil
}

func (s *ratesServiceImpl) TableView(sel *models.FilterSelection, spec []processors.SortKey) (*TableResult, error) {
	cacheKey := fmt.Sprintf(tableCacheKeyFormat, cacheHash(struct {
		Sel  *models.FilterSelection `json:"sel"`
		Spec []processors.SortKey    `json:"spec"`
	}{sel, spec}))
	if cached, found := s.results.Get(cacheKey); found {
		if result, ok := cached.(*TableResult); ok {
			return result, nil
		}
	}

	recs, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if !sel.IsReady() {
		return &TableResult{Ready: false, Data: []models.RateRecord{}, VisibleColumns: map[string]bool{}}, nil
	}

	filtered := s.filter.Apply(recs, sel)
	sorted := s.sortEngine.Apply(filtered, spec)
	result := &TableResult{
		Ready:          true,
		Data:           sorted,
		VisibleColumns: processors.VisibleColumns(sorted),
		Count:          len(sorted),
		SortSpec:       spec,
	}
	s.results.Set(cacheKey, result, cache.DefaultExpiration)
	return result, nil
}

func (s *ratesServiceImpl) FilterOptions(sel *models.FilterSelection) (*OptionsResult, error) {
	cacheKey := fmt.Sprintf(optionsCacheKeyFormat, cacheHash(sel))
	if cached, found := s.results.Get(cacheKey); found {
		if result, ok := cached.(*OptionsResult); ok {
			return result, nil
		}
	}

	recs, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	result := &OptionsResult{}
	for _, stage := range []models.FilterStage{
		models.StageServiceCategory,
		models.StageState,
		models.StageServiceCode,
		models.StageDetail,
	} {
		opts := s.filter.Options(recs, stage, sel)
		switch stage {
		case models.StageServiceCategory:
			result.ServiceCategories = opts.ServiceCategories
		case models.StageState:
			result.States = opts.States
		case models.StageServiceCode:
			result.ServiceCodes = opts.ServiceCodes
			result.ServiceDescriptions = opts.ServiceDescriptions
		case models.StageDetail:
			result.Programs = opts.Programs
			result.LocationRegions = opts.LocationRegions
			result.Modifiers = opts.Modifiers
			result.ProviderTypes = opts.ProviderTypes
		}
	}
	result.FeeScheduleDates = s.filter.FeeScheduleDates(recs, sel)

	s.results.Set(cacheKey, result, cache.DefaultExpiration)
	return result, nil
}

func (s *ratesServiceImpl) HistoryView(sel *models.FilterSelection, entryKey string, hourly bool) (*HistoryResult, error) {
	cacheKey := fmt.Sprintf(historyCacheKeyFormat, cacheHash(struct {
		Sel      *models.FilterSelection `json:"sel"`
		EntryKey string                  `json:"entry_key"`
		Hourly   bool                    `json:"hourly"`
	}{sel, entryKey, hourly}))
	if cached, found := s.results.Get(cacheKey); found {
		if result, ok := cached.(*HistoryResult); ok {
			return result, nil
		}
	}

	if sel.ServiceCategory == "" || sel.State == "" || sel.ServiceCode == "" {
		return &HistoryResult{Ready: false, Data: []models.RateRecord{}, VisibleColumns: map[string]bool{}}, nil
	}

	recs, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	filtered := s.filter.Apply(recs, sel)
	table := s.dedupe.LatestPerKey(filtered)

	result := &HistoryResult{
		Ready:          true,
		Data:           table,
		VisibleColumns: processors.VisibleColumns(table),
	}

	// A single remaining entry is charted without an explicit pick.
	if entryKey == "" && len(table) == 1 {
		entryKey = table[0].NaturalKey()
	}
	if entryKey != "" {
		var matching []models.RateRecord
		for _, rec := range filtered {
			if rec.NaturalKey() == entryKey {
				matching = append(matching, rec)
			}
		}
		if len(matching) > 0 {
			series := s.agg.RateSeries(matching, hourly)
			// Extend the last known rate to today so the chart reads as
			// the currently effective value.
			last := series[len(series)-1]
			series = append(series, processors.RatePoint{
				Date:    utils.FormatDateUS(time.Now().UTC()),
				Value:   last.Value,
				Display: last.Display,
				Record:  last.Record,
			})
			result.SelectedKey = entryKey
			result.Series = series
		}
	}

	s.results.Set(cacheKey, result, cache.DefaultExpiration)
	return result, nil
}

func (s *ratesServiceImpl) ComparisonView(req *ComparisonRequest) (*ComparisonResult, error) {
	cacheKey := fmt.Sprintf(comparisonCacheKeyFormat, cacheHash(req))
	if cached, found := s.results.Get(cacheKey); found {
		if result, ok := cached.(*ComparisonResult); ok {
			return result, nil
		}
	}

	if req.ServiceCategory == "" || req.ServiceCode == "" || req.States.Empty() {
		return &ComparisonResult{Ready: false, Data: []models.RateRecord{}, VisibleColumns: map[string]bool{}}, nil
	}

	recs, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	// Comparison always works on the latest entry per natural key across
	// the whole category and code, regardless of the state selection.
	var universe []models.RateRecord
	for _, rec := range recs {
		if rec.ServiceCategory == req.ServiceCategory && rec.ServiceCode == req.ServiceCode {
			universe = append(universe, rec)
		}
	}
	universe = s.dedupe.LatestPerKey(universe)

	var data []models.RateRecord
	for _, rec := range universe {
		if req.States.Includes(rec.StateName) {
			data = append(data, rec)
		}
	}

	result := &ComparisonResult{
		Ready:           true,
		Data:            data,
		VisibleColumns:  processors.VisibleColumns(data),
		NationalAverage: s.agg.NationalAverage(universe, req.ServiceCategory, req.ServiceCode, req.Hourly),
	}

	var values []float64
	if req.States.All {
		averages := s.agg.StateAverages(data, req.Hourly)
		orderStateAverages(averages, req.SortOrder)
		result.StateAverages = averages
		for _, avg := range averages {
			values = append(values, avg.Average)
		}
	} else {
		rates := s.agg.SelectionRates(data, req.Selections, req.Hourly)
		orderSelectionRates(rates, req.SortOrder)
		result.SelectionRates = rates
		for _, r := range rates {
			values = append(values, r.Rate)
		}
	}
	result.Metrics = summarize(values)

	s.results.Set(cacheKey, result, cache.DefaultExpiration)
	return result, nil
}

func orderStateAverages(averages []processors.StateAverage, order string) {
	switch strings.ToLower(order) {
	case "asc":
		sort.SliceStable(averages, func(i, j int) bool { return averages[i].Average < averages[j].Average })
	case "desc":
		sort.SliceStable(averages, func(i, j int) bool { return averages[i].Average > averages[j].Average })
	}
}

func orderSelectionRates(rates []processors.SelectionRate, order string) {
	switch strings.ToLower(order) {
	case "asc":
		sort.SliceStable(rates, func(i, j int) bool { return rates[i].Rate < rates[j].Rate })
	case "desc":
		sort.SliceStable(rates, func(i, j int) bool { return rates[i].Rate > rates[j].Rate })
	}
}

func summarize(values []float64) *ComparisonMetrics {
	if len(values) == 0 {
		return nil
	}
	metrics := &ComparisonMetrics{Max: values[0], Min: values[0]}
	var sum float64
	for _, v := range values {
		if v > metrics.Max {
			metrics.Max = v
		}
		if v < metrics.Min {
			metrics.Min = v
		}
		sum += v
	}
	metrics.Avg = utils.RoundFloat(sum/float64(len(values)), 2)
	return metrics
}

// cacheHash derives a stable cache key component from any serializable query.
func cacheHash(query interface{}) string {
	tag, err := utils.GenerateETag(query)
	if err != nil {
		// Unserializable queries fall back to an uncacheable key.
		return fmt.Sprintf("nocache-%d", time.Now().UnixNano())
	}
	return tag
}
