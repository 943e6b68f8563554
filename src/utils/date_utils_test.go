package utils

import (
	"testing"
	"time"
)

func TestParseEffectiveDateSerial(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1", "1899-12-31"},
		{"2", "1900-01-01"},
		{"32", "1900-01-31"},
		{"367", "1901-01-01"},
		{"44927", "2023-01-01"},
		{"45292", "2024-01-01"},
	}
	for _, tt := range tests {
		got, ok := ParseEffectiveDate(tt.raw)
		if !ok {
			t.Fatalf("ParseEffectiveDate(%q): expected ok", tt.raw)
		}
		if FormatDateISO(got) != tt.want {
			t.Errorf("ParseEffectiveDate(%q) = %s, want %s", tt.raw, FormatDateISO(got), tt.want)
		}
	}
}

func TestParseEffectiveDateSlashForm(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"7/1/2024", "2024-07-01"},
		{"12/31/2023", "2023-12-31"},
		{" 1/2/2022 ", "2022-01-02"},
		{"02/03/2021", "2021-02-03"},
	}
	for _, tt := range tests {
		got, ok := ParseEffectiveDate(tt.raw)
		if !ok {
			t.Fatalf("ParseEffectiveDate(%q): expected ok", tt.raw)
		}
		if FormatDateISO(got) != tt.want {
			t.Errorf("ParseEffectiveDate(%q) = %s, want %s", tt.raw, FormatDateISO(got), tt.want)
		}
	}
}

func TestParseEffectiveDateRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"abc",
		"0",
		"-5",
		"1/2",
		"1/2/3/4",
		"13/1/2024",
		"0/1/2024",
		"1/32/2024",
		"2/30/2024", // would roll over to March
		"a/b/c",
	} {
		if _, ok := ParseEffectiveDate(raw); ok {
			t.Errorf("ParseEffectiveDate(%q): expected not ok", raw)
		}
	}
}

// Both encodings of the same calendar day must normalize identically, since
// the dataset mixes them freely within one state.
func TestParseEffectiveDateEncodingsAgree(t *testing.T) {
	fromSlash, ok := ParseEffectiveDate("1/31/1900")
	if !ok {
		t.Fatal("slash form did not parse")
	}
	fromSerial, ok := ParseEffectiveDate("32")
	if !ok {
		t.Fatal("serial form did not parse")
	}
	if !fromSlash.Equal(fromSerial) {
		t.Errorf("encodings disagree: %v vs %v", fromSlash, fromSerial)
	}
}

func TestFormatDateUS(t *testing.T) {
	d := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	if got := FormatDateUS(d); got != "07/01/2024" {
		t.Errorf("FormatDateUS = %q, want 07/01/2024", got)
	}
}
