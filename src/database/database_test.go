package database

import (
	"path/filepath"
	"testing"

	"github.com/username/medrates/backend/src/models"
)

func TestReplaceAndFetchRoundtrip(t *testing.T) {
	InitDB(filepath.Join(t.TempDir(), "rates_test.db"))
	defer DB.Close()

	records := []models.RateRecord{
		{
			StateName: "TEXAS", ServiceCategory: "HCBS", ServiceCode: "T1019",
			Program: "STAR+PLUS", LocationRegion: "Rural",
			Rate: "$10.00", DurationUnit: "PER HOUR", RateEffectiveDate: "7/1/2024",
		},
		{
			StateName: "OHIO", ServiceCategory: "HCBS", ServiceCode: "T1019",
			Modifier1: "U1", Modifier1Details: "Individual",
			Rate: "$12.00", DurationUnit: "15 MINUTES", RateEffectiveDate: "1/1/2024",
			ProviderType: "Agency",
		},
	}

	if err := ReplaceAllRates(DB, "batch-1", records); err != nil {
		t.Fatalf("ReplaceAllRates: %v", err)
	}

	got, err := FetchAllRates(DB)
	if err != nil {
		t.Fatalf("FetchAllRates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	// Fetch orders by state name.
	if got[0].StateName != "OHIO" || got[1].StateName != "TEXAS" {
		t.Errorf("order = %q, %q", got[0].StateName, got[1].StateName)
	}
	if got[0].Modifier1 != "U1" || got[0].Modifier1Details != "Individual" {
		t.Errorf("modifier columns lost: %+v", got[0])
	}
	if got[0].ProviderType != "Agency" {
		t.Errorf("provider type lost: %+v", got[0])
	}
}

func TestReplaceAllRatesSwapsBatches(t *testing.T) {
	InitDB(filepath.Join(t.TempDir(), "rates_test.db"))
	defer DB.Close()

	first := []models.RateRecord{{StateName: "OHIO", ServiceCode: "A", Rate: "$1", RateEffectiveDate: "1/1/2024"}}
	second := []models.RateRecord{
		{StateName: "TEXAS", ServiceCode: "B", Rate: "$2", RateEffectiveDate: "1/1/2024"},
		{StateName: "KANSAS", ServiceCode: "C", Rate: "$3", RateEffectiveDate: "1/1/2024"},
	}

	if err := ReplaceAllRates(DB, "batch-1", first); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if err := ReplaceAllRates(DB, "batch-2", second); err != nil {
		t.Fatalf("second load: %v", err)
	}

	got, err := FetchAllRates(DB)
	if err != nil {
		t.Fatalf("FetchAllRates: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d records, want the second batch only", len(got))
	}
	for _, r := range got {
		if r.StateName == "OHIO" {
			t.Error("first batch record survived the replace")
		}
	}
}
