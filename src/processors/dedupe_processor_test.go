package processors

import (
	"reflect"
	"testing"

	"github.com/username/medrates/backend/src/models"
)

func TestLatestPerKeyKeepsNewest(t *testing.T) {
	dedupe := NewDeduplicator()
	recs := []models.RateRecord{
		{StateName: "OH", ServiceCode: "T1019", Rate: "$9.00", RateEffectiveDate: "1/1/2023"},
		{StateName: "OH", ServiceCode: "T1019", Rate: "$12.00", RateEffectiveDate: "1/1/2024"},
		{StateName: "OH", ServiceCode: "T1019", Rate: "$10.00", RateEffectiveDate: "7/1/2023"},
	}

	got := dedupe.LatestPerKey(recs)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Rate != "$12.00" {
		t.Errorf("kept rate %q, want the 2024 entry", got[0].Rate)
	}
}

func TestLatestPerKeyDistinctKeysSurvive(t *testing.T) {
	dedupe := NewDeduplicator()
	recs := []models.RateRecord{
		{StateName: "OH", ServiceCode: "T1019", Modifier1: "U1", RateEffectiveDate: "1/1/2023"},
		{StateName: "OH", ServiceCode: "T1019", Modifier1: "U2", RateEffectiveDate: "1/1/2023"},
		{StateName: "TX", ServiceCode: "T1019", Modifier1: "U1", RateEffectiveDate: "1/1/2023"},
	}
	if got := dedupe.LatestPerKey(recs); len(got) != 3 {
		t.Errorf("got %d records, want 3", len(got))
	}
}

func TestLatestPerKeyUnparseableDates(t *testing.T) {
	dedupe := NewDeduplicator()

	// Alone in its group: survives.
	solo := []models.RateRecord{{StateName: "TX", ServiceCode: "H0031", RateEffectiveDate: "unknown"}}
	if got := dedupe.LatestPerKey(solo); len(got) != 1 {
		t.Fatalf("solo unparseable record dropped")
	}

	// Against a dated sibling: the dated one wins.
	recs := []models.RateRecord{
		{StateName: "TX", ServiceCode: "H0031", Rate: "$1.00", RateEffectiveDate: "unknown"},
		{StateName: "TX", ServiceCode: "H0031", Rate: "$2.00", RateEffectiveDate: "1/1/2020"},
	}
	got := dedupe.LatestPerKey(recs)
	if len(got) != 1 || got[0].Rate != "$2.00" {
		t.Errorf("got %+v, want the dated entry", got)
	}
}

func TestLatestPerKeyTiesKeepFirst(t *testing.T) {
	dedupe := NewDeduplicator()
	recs := []models.RateRecord{
		{StateName: "OH", ServiceCode: "T1019", Rate: "$1.00", RateEffectiveDate: "1/1/2024"},
		{StateName: "OH", ServiceCode: "T1019", Rate: "$2.00", RateEffectiveDate: "1/1/2024"},
	}
	got := dedupe.LatestPerKey(recs)
	if len(got) != 1 || got[0].Rate != "$1.00" {
		t.Errorf("tie should keep the first-encountered record, got %+v", got)
	}
}

func TestLatestPerKeyIdempotent(t *testing.T) {
	dedupe := NewDeduplicator()
	recs := []models.RateRecord{
		{StateName: "OH", ServiceCode: "T1019", RateEffectiveDate: "1/1/2023"},
		{StateName: "TX", ServiceCode: "T1019", RateEffectiveDate: "1/1/2024"},
		{StateName: "OH", ServiceCode: "T1019", RateEffectiveDate: "1/1/2024"},
	}
	once := dedupe.LatestPerKey(recs)
	twice := dedupe.LatestPerKey(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("not idempotent:\n once: %+v\ntwice: %+v", once, twice)
	}
}
