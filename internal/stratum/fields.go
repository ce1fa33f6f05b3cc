package stratum

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/JonMunkholm/borelog/internal/borelog"
)

// field is a canonical field name of the unified shape.
type field string

const (
	fID              field = "id"
	fLayerOrder      field = "layer_order"
	fSampleOrder     field = "sample_order"
	fDescription     field = "description"
	fDepthFrom       field = "depth_from_m"
	fDepthTo         field = "depth_to_m"
	fDepthSingle     field = "depth_single_m"
	fThickness       field = "thickness_m"
	fReturnWater     field = "return_water_colour"
	fWaterLoss       field = "water_loss"
	fDiameter        field = "borehole_diameter"
	fRemarks         field = "remarks"
	fCreatedAt       field = "created_at"
	fCreatedBy       field = "created_by_user_id"
	fSamples         field = "samples"
	fSampleType      field = "sample_type"
	fSampleCode      field = "sample_code"
	fRunLength       field = "run_length_m"
	fSPT1            field = "spt_15cm_1"
	fSPT2            field = "spt_15cm_2"
	fSPT3            field = "spt_15cm_3"
	fSPTBlows        field = "spt_blows"
	fNValue          field = "n_value"
	fTotalCoreLength field = "total_core_length_cm"
	fTCR             field = "tcr_percent"
	fRQDLength       field = "rqd_length_cm"
	fRQD             field = "rqd_percent"
)

// aliases maps a canonical field to the names it has been stored under,
// probed in order. The canonical name always comes first.
type aliases map[field][]string

var layerAliases = aliases{
	fID:          {"id", "layer_id"},
	fLayerOrder:  {"layer_order", "layer_no", "order", "sequence"},
	fDescription: {"description", "soil_description", "strata_description"},
	fDepthFrom:   {"depth_from_m", "depth_from", "from_m", "from"},
	fDepthTo:     {"depth_to_m", "depth_to", "to_m", "to"},
	fThickness:   {"thickness_m", "thickness"},
	fReturnWater: {"return_water_colour", "colour_of_return_water", "color_of_return_water"},
	fWaterLoss:   {"water_loss"},
	fDiameter:    {"borehole_diameter", "diameter_of_borehole"},
	fRemarks:     {"remarks", "remark"},
	fCreatedAt:   {"created_at", "createdAt"},
	fCreatedBy:   {"created_by_user_id", "created_by", "createdBy"},
	fSamples:     {"samples", "sample_events", "sampling"},
}

var sampleAliases = aliases{
	fID:              {"id"},
	fSampleOrder:     {"sample_order", "sample_no", "order"},
	fSampleType:      {"sample_type", "type"},
	fSampleCode:      {"sample_code", "sample_id", "code"},
	fDepthSingle:     {"depth_single_m", "sample_event_depth_m", "depth_m", "depth"},
	fDepthFrom:       {"depth_from_m", "depth_from", "from_m"},
	fDepthTo:         {"depth_to_m", "depth_to", "to_m"},
	fRunLength:       {"run_length_m", "run_length"},
	fSPT1:            {"spt_15cm_1", "spt_blows_1", "spt1"},
	fSPT2:            {"spt_15cm_2", "spt_blows_2", "spt2"},
	fSPT3:            {"spt_15cm_3", "spt_blows_3", "spt3"},
	fSPTBlows:        {"spt_blows", "blows"},
	fNValue:          {"n_value", "n"},
	fTotalCoreLength: {"total_core_length_cm", "total_core_length"},
	fTCR:             {"tcr_percent", "tcr"},
	fRQDLength:       {"rqd_length_cm", "rqd_length"},
	fRQD:             {"rqd_percent", "rqd"},
	fCreatedAt:       {"created_at", "createdAt"},
	fCreatedBy:       {"created_by_user_id", "created_by", "createdBy"},
}

// layerContainers are the top-level keys a layer list has been stored under.
var layerContainers = []string{"layers", "strata", "stratum_layers", "soil_layers"}

// record is one decoded JSON object whose fields are read through an alias
// table.
type record struct {
	raw   map[string]json.RawMessage
	names aliases
}

// lookup returns the first present, non-null value among f's aliases.
func (r record) lookup(f field) (json.RawMessage, bool) {
	for _, name := range r.names[f] {
		v, ok := r.raw[name]
		if ok && !isNull(v) {
			return v, true
		}
	}
	return nil, false
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// text reads a string field; numbers are rendered in their JSON form.
func (r record) text(f field) string {
	v, ok := r.lookup(f)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}

// number reads a numeric field stored either as a JSON number or as text
// such as "1.50" or "2.5 m".
func (r record) number(f field) *float64 {
	v, ok := r.lookup(f)
	if !ok {
		return nil
	}
	return numberOf(v)
}

func numberOf(v json.RawMessage) *float64 {
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return borelog.ParseNumber(s)
	}
	return nil
}

// order reads a positive integer ordering field.
func (r record) order(f field) (int, bool) {
	n := r.number(f)
	if n == nil || *n < 1 {
		return 0, false
	}
	return int(*n), true
}

// reading keeps numbers as numbers and anything else as literal text.
func (r record) reading(f field) borelog.Reading {
	v, ok := r.lookup(f)
	if !ok {
		return borelog.Reading{}
	}
	return readingOf(v)
}

func readingOf(v json.RawMessage) borelog.Reading {
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return borelog.Reading{Value: &n}
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return borelog.Reading{}
	}
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return borelog.Reading{Value: &f}
	}
	return borelog.Reading{Text: s}
}

// objects reads an array of JSON objects. Elements that are not objects are
// skipped.
func (r record) objects(f field, names aliases) []record {
	v, ok := r.lookup(f)
	if !ok {
		return nil
	}
	return decodeObjects(v, names)
}

func decodeObjects(v json.RawMessage, names aliases) []record {
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil
	}
	out := make([]record, 0, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			continue
		}
		out = append(out, record{raw: obj, names: names})
	}
	return out
}

// blows reads the three SPT increments from separate fields, falling back
// to a spt_blows array.
func (r record) blows() [3]borelog.Reading {
	out := [3]borelog.Reading{r.reading(fSPT1), r.reading(fSPT2), r.reading(fSPT3)}
	v, ok := r.lookup(fSPTBlows)
	if !ok {
		return out
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(v, &arr); err != nil {
		return out
	}
	for i := 0; i < len(arr) && i < len(out); i++ {
		if out[i].IsZero() && !isNull(arr[i]) {
			out[i] = readingOf(arr[i])
		}
	}
	return out
}
