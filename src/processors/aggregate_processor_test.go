package processors

import (
	"testing"

	"github.com/username/medrates/backend/src/models"
)

func TestHourlyEquivalent(t *testing.T) {
	agg := NewAggregator()
	tests := []struct {
		unit string
		want float64
		ok   bool
	}{
		{"15 MINUTES", 40, true},
		{"30 MINUTES", 20, true},
		{"PER HOUR", 10, true},
		{" per hour ", 10, true},
		{"PER SESSION", 0, false},
		{"PER DIEM", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := agg.HourlyEquivalent(10, tt.unit)
		if ok != tt.ok || got != tt.want {
			t.Errorf("HourlyEquivalent(10, %q) = (%v, %v), want (%v, %v)", tt.unit, got, ok, tt.want, tt.ok)
		}
	}
}

// Sums substitute zero for unparseable rates and non-convertible units; the
// table and chart display paths show "-" or "N/A" for those same records.
// This asymmetry is inherited dashboard behavior; these tests pin it.
func TestChartValueZeroSubstitution(t *testing.T) {
	agg := NewAggregator()

	bad := models.RateRecord{Rate: "N/A", DurationUnit: "PER HOUR"}
	if got := agg.ChartValue(&bad, false); got != 0 {
		t.Errorf("unparseable rate: ChartValue = %v, want 0", got)
	}

	session := models.RateRecord{Rate: "$50.00", DurationUnit: "PER SESSION"}
	if got := agg.ChartValue(&session, true); got != 0 {
		t.Errorf("non-convertible unit with hourly on: ChartValue = %v, want 0", got)
	}
	if got := agg.ChartValue(&session, false); got != 50 {
		t.Errorf("non-convertible unit with hourly off: ChartValue = %v, want 50", got)
	}
}

func TestStateAverages(t *testing.T) {
	agg := NewAggregator()
	recs := []models.RateRecord{
		{StateName: "ohio", Rate: "$10.00", DurationUnit: "PER HOUR"},
		{StateName: "OHIO", Rate: "$20.00", DurationUnit: "PER HOUR"},
		{StateName: "TEXAS", Rate: "$12.00", DurationUnit: "PER HOUR"},
	}

	got := agg.StateAverages(recs, false)
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2", len(got))
	}
	if got[0].State != "OHIO" || got[0].Average != 15 || got[0].Count != 2 {
		t.Errorf("OHIO group = %+v", got[0])
	}
	if got[1].State != "TEXAS" || got[1].Average != 12 {
		t.Errorf("TEXAS group = %+v", got[1])
	}
}

func TestStateAveragesHourlyZeros(t *testing.T) {
	agg := NewAggregator()
	// The per-session record contributes 0 to the sum but still counts,
	// dragging the average down.
	recs := []models.RateRecord{
		{StateName: "OH", Rate: "$10.00", DurationUnit: "15 MINUTES"},
		{StateName: "OH", Rate: "$50.00", DurationUnit: "PER SESSION"},
	}
	got := agg.StateAverages(recs, true)
	if len(got) != 1 || got[0].Average != 20 || got[0].Count != 2 {
		t.Errorf("got %+v, want average 20 over count 2", got)
	}
}

func TestSelectionRates(t *testing.T) {
	agg := NewAggregator()
	recs := []models.RateRecord{
		{StateName: "OHIO", Modifier1: "U1", Program: "Waiver", Rate: "$10.00", DurationUnit: "15 MINUTES"},
		{StateName: "OHIO", Modifier1: "U2", Program: "Waiver", Rate: "$11.00", DurationUnit: "15 MINUTES"},
		{StateName: "TEXAS", Modifier1: "U1", Rate: "$12.00", DurationUnit: "PER HOUR"},
	}
	selections := map[string][]string{
		"ohio": {recs[0].SelectionKey()},
	}

	got := agg.SelectionRates(recs, selections, true)
	if len(got) != 1 {
		t.Fatalf("got %d rates, want 1", len(got))
	}
	if got[0].State != "OHIO" || got[0].Rate != 40 {
		t.Errorf("selection rate = %+v", got[0])
	}
}

func TestNationalAverageSkipsNonPositive(t *testing.T) {
	agg := NewAggregator()
	recs := []models.RateRecord{
		{StateName: "OH", ServiceCategory: "HCBS", ServiceCode: "T1019", Rate: "$10.00", DurationUnit: "PER HOUR"},
		{StateName: "TX", ServiceCategory: "HCBS", ServiceCode: "T1019", Rate: "$20.00", DurationUnit: "PER HOUR"},
		{StateName: "KY", ServiceCategory: "HCBS", ServiceCode: "T1019", Rate: "N/A"},
		{StateName: "CA", ServiceCategory: "HCBS", ServiceCode: "H0031", Rate: "$99.00", DurationUnit: "PER HOUR"},
	}

	if got := agg.NationalAverage(recs, "HCBS", "T1019", false); got != 15 {
		t.Errorf("NationalAverage = %v, want 15 (zero entries excluded)", got)
	}
	if got := agg.NationalAverage(recs, "HCBS", "missing", false); got != 0 {
		t.Errorf("NationalAverage with no matches = %v, want 0", got)
	}
}

func TestRateSeries(t *testing.T) {
	agg := NewAggregator()
	recs := []models.RateRecord{
		{Rate: "$12.00", DurationUnit: "15 MINUTES", RateEffectiveDate: "1/1/2024"},
		{Rate: "$9.00", DurationUnit: "15 MINUTES", RateEffectiveDate: "1/1/2023"},
		{Rate: "N/A", RateEffectiveDate: "6/1/2023"},
		{Rate: "$11.00", DurationUnit: "PER SESSION", RateEffectiveDate: "9/1/2023"},
	}

	got := agg.RateSeries(recs, true)
	if len(got) != 4 {
		t.Fatalf("got %d points, want 4", len(got))
	}
	if got[0].Date != "01/01/2023" || got[3].Date != "01/01/2024" {
		t.Errorf("series not date-ordered: %q .. %q", got[0].Date, got[3].Date)
	}
	if got[0].Value == nil || *got[0].Value != 36 {
		t.Errorf("first point = %+v, want hourly 36", got[0])
	}
	if got[1].Display != "-" || got[1].Value != nil {
		t.Errorf("unparseable rate point = %+v, want display '-'", got[1])
	}
	if got[2].Display != "N/A" || got[2].Value != nil {
		t.Errorf("non-convertible point = %+v, want display 'N/A'", got[2])
	}
}

func TestVisibleColumns(t *testing.T) {
	recs := []models.RateRecord{
		{StateName: "OH", ServiceCode: "T1019", Rate: "$10.00", DurationUnit: "PER SESSION"},
	}
	cols := VisibleColumns(recs)
	if !cols["state_name"] || !cols["rate"] {
		t.Errorf("populated columns should be visible: %v", cols)
	}
	if cols["modifier_1"] || cols["program"] {
		t.Errorf("all-empty columns should be hidden: %v", cols)
	}
	if cols["rate_per_hour"] {
		t.Error("rate_per_hour should be hidden without a convertible unit")
	}

	recs = append(recs, models.RateRecord{StateName: "TX", Rate: "$8.00", DurationUnit: "15 MINUTES"})
	cols = VisibleColumns(recs)
	if !cols["rate_per_hour"] {
		t.Error("rate_per_hour should appear once any record converts")
	}
}
