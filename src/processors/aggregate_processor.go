package processors

import (
	"sort"
	"strings"

	"github.com/username/medrates/backend/src/models"
	"github.com/username/medrates/backend/src/utils"
)

// aggregatorImpl implements the Aggregator interface.
type aggregatorImpl struct{}

func (a *aggregatorImpl) HourlyEquivalent(rate float64, durationUnit string) (float64, bool) {
	switch strings.ToUpper(strings.TrimSpace(durationUnit)) {
	case models.UnitFifteenMinutes:
		return rate * 4, true
	case models.UnitThirtyMinutes:
		return rate * 2, true
	case models.UnitPerHour:
		return rate, true
	}
	return 0, false
}

// ChartValue folds a record down to the number charts sum over. Unparseable
// rates and non-convertible duration units become 0 here; the table display
// for the same record shows "-" or "N/A" instead. The asymmetry is inherited
// dashboard behavior and is pinned by tests.
func (a *aggregatorImpl) ChartValue(record *models.RateRecord, hourly bool) float64 {
	rate, ok := utils.ParseRate(record.Rate)
	if !ok {
		return 0
	}
	if hourly {
		converted, convertible := a.HourlyEquivalent(rate, record.DurationUnit)
		if !convertible {
			return 0
		}
		rate = converted
	}
	return utils.RoundFloat(rate, 2)
}

func (a *aggregatorImpl) StateAverages(records []models.RateRecord, hourly bool) []StateAverage {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range records {
		state := strings.ToUpper(records[i].StateName)
		sums[state] += a.ChartValue(&records[i], hourly)
		counts[state]++
	}

	out := make([]StateAverage, 0, len(sums))
	for state, sum := range sums {
		out = append(out, StateAverage{
			State:   state,
			Average: utils.RoundFloat(sum/float64(counts[state]), 2),
			Count:   counts[state],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}

func (a *aggregatorImpl) SelectionRates(records []models.RateRecord, selections map[string][]string, hourly bool) []SelectionRate {
	chosen := make(map[string]map[string]bool, len(selections))
	for state, keys := range selections {
		set := make(map[string]bool, len(keys))
		for _, k := range keys {
			set[k] = true
		}
		chosen[strings.ToUpper(state)] = set
	}

	var out []SelectionRate
	for i := range records {
		state := strings.ToUpper(records[i].StateName)
		set, ok := chosen[state]
		if !ok {
			continue
		}
		key := records[i].SelectionKey()
		if !set[key] {
			continue
		}
		out = append(out, SelectionRate{
			State:        state,
			SelectionKey: key,
			Rate:         a.ChartValue(&records[i], hourly),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].State != out[j].State {
			return out[i].State < out[j].State
		}
		return out[i].SelectionKey < out[j].SelectionKey
	})
	return out
}

func (a *aggregatorImpl) NationalAverage(records []models.RateRecord, serviceCategory, serviceCode string, hourly bool) float64 {
	var sum float64
	var count int
	for i := range records {
		if records[i].ServiceCategory != serviceCategory || records[i].ServiceCode != serviceCode {
			continue
		}
		v := a.ChartValue(&records[i], hourly)
		if v <= 0 {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0
	}
	return utils.RoundFloat(sum/float64(count), 2)
}

func (a *aggregatorImpl) RateSeries(records []models.RateRecord, hourly bool) []RatePoint {
	indexed := make([]int, 0, len(records))
	for i := range records {
		indexed = append(indexed, i)
	}
	sort.SliceStable(indexed, func(x, y int) bool {
		dx, _ := utils.ParseEffectiveDate(records[indexed[x]].RateEffectiveDate)
		dy, _ := utils.ParseEffectiveDate(records[indexed[y]].RateEffectiveDate)
		return dx.Before(dy)
	})

	out := make([]RatePoint, 0, len(indexed))
	for _, i := range indexed {
		r := &records[i]
		point := RatePoint{Record: r}
		if d, ok := utils.ParseEffectiveDate(r.RateEffectiveDate); ok {
			point.Date = utils.FormatDateUS(d)
		}

		rate, parsed := utils.ParseRate(r.Rate)
		if !parsed {
			point.Display = "-"
			out = append(out, point)
			continue
		}
		if hourly {
			converted, convertible := a.HourlyEquivalent(rate, r.DurationUnit)
			if !convertible {
				// The chart renders a gap plus an N/A label here, never a zero.
				point.Display = "N/A"
				out = append(out, point)
				continue
			}
			rate = converted
		}
		v := utils.RoundFloat(rate, 2)
		point.Value = &v
		out = append(out, point)
	}
	return out
}
