package borelog

import (
	"encoding/json"
	"errors"
)

// ErrMissingMetadata is returned when a document lacks the identifying
// project name or job code.
var ErrMissingMetadata = errors.New("missing required metadata")

// NValueMarker is written in place of an N-value that cannot be derived
// numerically (refusal or placeholder blow counts).
const NValueMarker = ">50"

// RemarkStatus is the receipt state of a laboratory sample.
type RemarkStatus string

const (
	SampleReceived    RemarkStatus = "Sample Received"
	SampleNotReceived RemarkStatus = "Sample Not Received"
)

// Sample types assigned by explicit label or inferred from a sample code.
const (
	SampleTypeSPT         = "SPT"
	SampleTypeUndisturbed = "UNDISTURBED"
	SampleTypeDisturbed   = "DISTURBED"
)

// Reading is a measured value that may instead hold a literal placeholder
// from the source sheet, such as "-" for a missing blow count or ">50".
// It marshals as a number, a string, or null.
type Reading struct {
	Value *float64
	Text  string
}

// IsZero reports whether the reading carries neither a number nor text.
func (r Reading) IsZero() bool {
	return r.Value == nil && r.Text == ""
}

// MarshalJSON implements json.Marshaler.
func (r Reading) MarshalJSON() ([]byte, error) {
	switch {
	case r.Value != nil:
		return json.Marshal(*r.Value)
	case r.Text != "":
		return json.Marshal(r.Text)
	default:
		return []byte("null"), nil
	}
}

// Coordinates is an easting/northing pair as printed on the log.
type Coordinates struct {
	E *float64 `json:"e"`
	L *float64 `json:"l"`
}

// LabTests holds the laboratory test counts listed in the header block.
// SPTTests and VSTests are derived from the combined SP/VS count.
type LabTests struct {
	PermeabilityTests  *int `json:"permeability_tests"`
	SPVSTests          *int `json:"sp_vs_tests"`
	SPTTests           *int `json:"spt_tests"`
	VSTests            *int `json:"vs_tests"`
	UndisturbedSamples *int `json:"undisturbed_samples"`
	DisturbedSamples   *int `json:"disturbed_samples"`
	WaterSamples       *int `json:"water_samples"`
}

// Metadata is the borehole header block. ProjectName and JobCode are
// mandatory; every other field is optional.
type Metadata struct {
	ProjectName        string       `json:"project_name"`
	ClientAddress      string       `json:"client_address"`
	WebsiteAddress     string       `json:"website_address"`
	JobCode            string       `json:"job_code"`
	SectionName        string       `json:"section_name"`
	Location           string       `json:"location"`
	ChainageKm         *float64     `json:"chainage_km"`
	BoreholeNo         string       `json:"borehole_no"`
	CommencementDate   string       `json:"commencement_date"`
	CompletionDate     string       `json:"completion_date"`
	MSL                *float64     `json:"msl"`
	MethodOfBoring     string       `json:"method_of_boring"`
	DiameterOfHole     string       `json:"diameter_of_hole"`
	TerminationDepth   *float64     `json:"termination_depth"`
	StandingWaterLevel *float64     `json:"standing_water_level"`
	Coordinates        *Coordinates `json:"coordinates"`
	LabTests           LabTests     `json:"lab_tests"`
}

// SoilLayer is one stratigraphic interval. DepthFrom <= DepthTo always holds
// for emitted layers; Thickness is their difference unless the source gave an
// explicit, different value.
type SoilLayer struct {
	Description string   `json:"description"`
	DepthFrom   float64  `json:"depth_from"`
	DepthTo     float64  `json:"depth_to"`
	Thickness   *float64 `json:"thickness"`

	SampleID    string     `json:"sample_id"`
	SampleType  string     `json:"sample_type"`
	SampleDepth string     `json:"sample_depth"`
	RunLength   *float64   `json:"run_length"`
	SPTBlows    [3]Reading `json:"spt_blows"`
	NValue      Reading    `json:"n_value"`

	TotalCoreLengthCM *float64 `json:"total_core_length_cm"`
	TCRPercent        *float64 `json:"tcr_percent"`
	RQDLengthCM       *float64 `json:"rqd_length_cm"`
	RQDPercent        *float64 `json:"rqd_percent"`

	ColourOfReturnWater string `json:"colour_of_return_water"`
	WaterLoss           string `json:"water_loss"`
	DiameterOfBorehole  string `json:"diameter_of_borehole"`
	Remarks             string `json:"remarks"`
}

// SampleRemark records whether a sample reached the laboratory.
type SampleRemark struct {
	SampleID string       `json:"sample_id"`
	Status   RemarkStatus `json:"status"`
}

// CoreQuality is the document-wide core recovery summary.
type CoreQuality struct {
	TCRPercent *float64 `json:"tcr_percent"`
	RQDPercent *float64 `json:"rqd_percent"`
}

// Record is the canonical result of parsing one export.
type Record struct {
	Metadata    Metadata       `json:"metadata"`
	Layers      []SoilLayer    `json:"layers"`
	Remarks     []SampleRemark `json:"remarks"`
	CoreQuality CoreQuality    `json:"core_quality"`
}
