package stratum

import (
	"regexp"
	"strconv"
	"time"

	"github.com/JonMunkholm/borelog/internal/borelog"
)

// ParseDocument is written for every successful import under ParsePrefix
// and read back as the highest-priority candidate. It uses the parse-time
// field names (depth_from, sample_event_depth_m, ...), which the alias
// tables map onto the unified shape.
type ParseDocument struct {
	ProjectID   string                 `json:"project_id"`
	BorelogID   string                 `json:"borelog_id"`
	VersionNo   int                    `json:"version_no"`
	ImportID    string                 `json:"import_id,omitempty"`
	SourceFile  string                 `json:"source_file,omitempty"`
	ParsedAt    time.Time              `json:"parsed_at"`
	Metadata    borelog.Metadata       `json:"metadata"`
	Layers      []ParseLayer           `json:"layers"`
	Remarks     []borelog.SampleRemark `json:"remarks"`
	CoreQuality borelog.CoreQuality    `json:"core_quality"`
}

type ParseLayer struct {
	LayerNo             int           `json:"layer_no"`
	Description         string        `json:"description"`
	DepthFrom           float64       `json:"depth_from"`
	DepthTo             float64       `json:"depth_to"`
	Thickness           *float64      `json:"thickness"`
	ColourOfReturnWater string        `json:"colour_of_return_water,omitempty"`
	WaterLoss           string        `json:"water_loss,omitempty"`
	DiameterOfBorehole  string        `json:"diameter_of_borehole,omitempty"`
	Remarks             string        `json:"remarks,omitempty"`
	Samples             []ParseSample `json:"samples"`
}

type ParseSample struct {
	SampleCode        string             `json:"sample_code,omitempty"`
	SampleType        string             `json:"sample_type,omitempty"`
	SampleEventDepthM *float64           `json:"sample_event_depth_m,omitempty"`
	DepthFrom         *float64           `json:"depth_from,omitempty"`
	DepthTo           *float64           `json:"depth_to,omitempty"`
	RunLength         *float64           `json:"run_length,omitempty"`
	SPTBlows          [3]borelog.Reading `json:"spt_blows"`
	NValue            borelog.Reading    `json:"n_value"`
	TotalCoreLengthCM *float64           `json:"total_core_length_cm,omitempty"`
	TCRPercent        *float64           `json:"tcr_percent,omitempty"`
	RQDLengthCM       *float64           `json:"rqd_length_cm,omitempty"`
	RQDPercent        *float64           `json:"rqd_percent,omitempty"`
}

// sampleDepthRange matches a recorded sample interval such as "1.50-1.95 m".
var sampleDepthRange = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*[-–]\s*(\d+(?:\.\d+)?)`)

// FromRecord converts a parsed record into its import-time document. Each
// layer carries at most one sample, present only when the layer recorded
// any sample field.
func FromRecord(id Identity, rec *borelog.Record) ParseDocument {
	doc := ParseDocument{
		ProjectID:   id.ProjectID,
		BorelogID:   id.BorelogID,
		VersionNo:   id.Version,
		Metadata:    rec.Metadata,
		Layers:      make([]ParseLayer, 0, len(rec.Layers)),
		Remarks:     rec.Remarks,
		CoreQuality: rec.CoreQuality,
	}
	if doc.Remarks == nil {
		doc.Remarks = []borelog.SampleRemark{}
	}
	for i, l := range rec.Layers {
		pl := ParseLayer{
			LayerNo:             i + 1,
			Description:         l.Description,
			DepthFrom:           l.DepthFrom,
			DepthTo:             l.DepthTo,
			Thickness:           l.Thickness,
			ColourOfReturnWater: l.ColourOfReturnWater,
			WaterLoss:           l.WaterLoss,
			DiameterOfBorehole:  l.DiameterOfBorehole,
			Remarks:             l.Remarks,
			Samples:             []ParseSample{},
		}
		if hasSample(l) {
			pl.Samples = append(pl.Samples, sampleFromLayer(l))
		}
		doc.Layers = append(doc.Layers, pl)
	}
	return doc
}

func hasSample(l borelog.SoilLayer) bool {
	if l.SampleID != "" || l.SampleType != "" || l.SampleDepth != "" || l.RunLength != nil || !l.NValue.IsZero() {
		return true
	}
	for _, b := range l.SPTBlows {
		if !b.IsZero() {
			return true
		}
	}
	return l.TotalCoreLengthCM != nil || l.TCRPercent != nil || l.RQDLengthCM != nil || l.RQDPercent != nil
}

func sampleFromLayer(l borelog.SoilLayer) ParseSample {
	s := ParseSample{
		SampleCode:        l.SampleID,
		SampleType:        l.SampleType,
		RunLength:         l.RunLength,
		SPTBlows:          l.SPTBlows,
		NValue:            l.NValue,
		TotalCoreLengthCM: l.TotalCoreLengthCM,
		TCRPercent:        l.TCRPercent,
		RQDLengthCM:       l.RQDLengthCM,
		RQDPercent:        l.RQDPercent,
	}
	if m := sampleDepthRange.FindStringSubmatch(l.SampleDepth); m != nil {
		from, _ := strconv.ParseFloat(m[1], 64)
		to, _ := strconv.ParseFloat(m[2], 64)
		s.DepthFrom, s.DepthTo = &from, &to
	} else {
		s.SampleEventDepthM = borelog.ParseNumber(l.SampleDepth)
	}
	return s
}
