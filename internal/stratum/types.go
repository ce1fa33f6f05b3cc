// Package stratum resolves the stratum (layer and sample) data of one
// borehole-log version from whichever stored representation exists and
// normalizes it into a single shape.
//
// Three representations are probed in a fixed priority order:
//
//  1. the document written when an export was parsed and imported
//  2. the per-version structured document
//  3. the legacy document from before versions were stored per project
//
// The first candidate that can be read and decoded wins. A candidate that
// is missing, unreadable or malformed is logged and skipped; when none
// remain the log simply has no stratum data yet.
package stratum

import (
	"encoding/json"

	"github.com/JonMunkholm/borelog/internal/borelog"
)

// Identity names one version of one borehole log.
type Identity struct {
	ProjectID string `json:"project_id"`
	BorelogID string `json:"borelog_id"`
	Version   int    `json:"version_no"`
}

// Source identifies which stored representation a Result came from.
type Source string

const (
	SourceParse   Source = "csv_parse"
	SourceVersion Source = "version"
	SourceLegacy  Source = "legacy"
)

// DepthMode says how a sample's depth was recorded. The zero value means no
// depth resolved and marshals as null.
type DepthMode string

const (
	DepthSingle DepthMode = "single"
	DepthRange  DepthMode = "range"
)

// MarshalJSON implements json.Marshaler.
func (m DepthMode) MarshalJSON() ([]byte, error) {
	if m == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(m))
}

// Sample is one sampling event within a layer.
type Sample struct {
	ID           string    `json:"id"`
	SampleOrder  int       `json:"sample_order"`
	SampleType   string    `json:"sample_type"`
	DepthMode    DepthMode `json:"depth_mode"`
	DepthSingleM *float64  `json:"depth_single_m"`
	DepthFromM   *float64  `json:"depth_from_m"`
	DepthToM     *float64  `json:"depth_to_m"`
	RunLengthM   *float64  `json:"run_length_m"`

	SPT15cm1 borelog.Reading `json:"spt_15cm_1"`
	SPT15cm2 borelog.Reading `json:"spt_15cm_2"`
	SPT15cm3 borelog.Reading `json:"spt_15cm_3"`
	NValue   borelog.Reading `json:"n_value"`

	TotalCoreLengthCM *float64 `json:"total_core_length_cm"`
	TCRPercent        *float64 `json:"tcr_percent"`
	RQDLengthCM       *float64 `json:"rqd_length_cm"`
	RQDPercent        *float64 `json:"rqd_percent"`

	CreatedAt       string `json:"created_at"`
	CreatedByUserID string `json:"created_by_user_id"`
}

// Layer is one stratigraphic interval with its samples. Samples is never
// nil.
type Layer struct {
	ID                string   `json:"id"`
	LayerOrder        int      `json:"layer_order"`
	Description       string   `json:"description"`
	DepthFromM        *float64 `json:"depth_from_m"`
	DepthToM          *float64 `json:"depth_to_m"`
	ThicknessM        *float64 `json:"thickness_m"`
	ReturnWaterColour string   `json:"return_water_colour"`
	WaterLoss         string   `json:"water_loss"`
	BoreholeDiameter  string   `json:"borehole_diameter"`
	Remarks           string   `json:"remarks"`
	CreatedAt         string   `json:"created_at"`
	CreatedByUserID   string   `json:"created_by_user_id"`
	Samples           []Sample `json:"samples"`
}

// Result is the unified stratum view of one borehole-log version. Layers is
// never nil.
type Result struct {
	BorelogID string  `json:"borelog_id"`
	VersionNo int     `json:"version_no"`
	ProjectID string  `json:"project_id"`
	Source    Source  `json:"source,omitempty"`
	Layers    []Layer `json:"layers"`
}
