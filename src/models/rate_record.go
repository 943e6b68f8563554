package models

import "strings"

// Duration units that convert to an hourly-equivalent rate. Anything else
// (including empty) is not convertible.
const (
	UnitFifteenMinutes = "15 MINUTES"
	UnitThirtyMinutes  = "30 MINUTES"
	UnitPerHour        = "PER HOUR"
)

// RateRecord is one reimbursement rate entry as delivered by the upstream
// dataset. All fields are kept as opaque strings; rate and effective date are
// parsed on demand and malformed values degrade to "missing", never to errors.
type RateRecord struct {
	StateName          string `json:"state_name"`
	ServiceCategory    string `json:"service_category"`
	ServiceCode        string `json:"service_code"`
	ServiceDescription string `json:"service_description,omitempty"`
	Program            string `json:"program"`
	LocationRegion     string `json:"location_region"`

	Modifier1        string `json:"modifier_1,omitempty"`
	Modifier1Details string `json:"modifier_1_details,omitempty"`
	Modifier2        string `json:"modifier_2,omitempty"`
	Modifier2Details string `json:"modifier_2_details,omitempty"`
	Modifier3        string `json:"modifier_3,omitempty"`
	Modifier3Details string `json:"modifier_3_details,omitempty"`
	Modifier4        string `json:"modifier_4,omitempty"`
	Modifier4Details string `json:"modifier_4_details,omitempty"`

	Rate              string `json:"rate"`
	DurationUnit      string `json:"duration_unit,omitempty"`
	RateEffectiveDate string `json:"rate_effective_date"`
	ProviderType      string `json:"provider_type,omitempty"`
}

// Modifiers returns the four modifier slots in order as (code, details) pairs.
// Empty slots have an empty code.
func (r *RateRecord) Modifiers() [4][2]string {
	return [4][2]string{
		{r.Modifier1, r.Modifier1Details},
		{r.Modifier2, r.Modifier2Details},
		{r.Modifier3, r.Modifier3Details},
		{r.Modifier4, r.Modifier4Details},
	}
}

// ModifierDisplay formats one modifier slot as "code - details", omitting the
// details segment when absent. Empty slots format as "".
func ModifierDisplay(code, details string) string {
	if code == "" {
		return ""
	}
	if details == "" {
		return code
	}
	return code + " - " + details
}

// NaturalKey identifies "the same rate line across time" for deduplication and
// grouping: state (uppercased), category, code, program, region and the four
// modifier slots, order-sensitive, all other fields compared as stored.
func (r *RateRecord) NaturalKey() string {
	return strings.Join([]string{
		strings.ToUpper(r.StateName),
		r.ServiceCategory,
		r.ServiceCode,
		r.Program,
		r.LocationRegion,
		r.Modifier1,
		r.Modifier2,
		r.Modifier3,
		r.Modifier4,
	}, "|")
}

// SelectionKey identifies a row within one state for chart selection: the
// modifier slots plus program and region. Matches the comparison view's
// row-selection granularity.
func (r *RateRecord) SelectionKey() string {
	return strings.Join([]string{
		r.Modifier1,
		r.Modifier2,
		r.Modifier3,
		r.Modifier4,
		r.Program,
		r.LocationRegion,
	}, "|")
}

// Field returns the record's value for a sortable/displayable column key.
// Unknown keys return "".
func (r *RateRecord) Field(key string) string {
	switch key {
	case "state_name":
		return r.StateName
	case "service_category":
		return r.ServiceCategory
	case "service_code":
		return r.ServiceCode
	case "service_description":
		return r.ServiceDescription
	case "program":
		return r.Program
	case "location_region":
		return r.LocationRegion
	case "modifier_1":
		return r.Modifier1
	case "modifier_2":
		return r.Modifier2
	case "modifier_3":
		return r.Modifier3
	case "modifier_4":
		return r.Modifier4
	case "duration_unit":
		return r.DurationUnit
	case "rate":
		return r.Rate
	case "rate_effective_date":
		return r.RateEffectiveDate
	case "provider_type":
		return r.ProviderType
	}
	return ""
}

// ColumnKeys lists every displayable column in table order.
var ColumnKeys = []string{
	"state_name",
	"service_category",
	"service_code",
	"service_description",
	"program",
	"location_region",
	"modifier_1",
	"modifier_2",
	"modifier_3",
	"modifier_4",
	"duration_unit",
	"rate",
	"rate_per_hour",
	"rate_effective_date",
}
