package stratum

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/JonMunkholm/borelog/internal/borelog"
)

var (
	errEmptyDocument = errors.New("empty document")
	errNoLayerList   = errors.New("no layer list")
)

// decodeLayers normalizes any stored stratum document. The layer list is
// either the whole document (a bare JSON array) or sits under one of
// layerContainers.
func decodeLayers(data []byte) ([]Layer, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(data) == 0 {
		return nil, errEmptyDocument
	}

	var list json.RawMessage
	switch data[0] {
	case '[':
		list = data
	case '{':
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		for _, name := range layerContainers {
			if v, ok := doc[name]; ok && !isNull(v) {
				list = v
				break
			}
		}
		if list == nil {
			return nil, errNoLayerList
		}
	default:
		return nil, fmt.Errorf("decode document: unexpected leading byte %q", data[0])
	}

	if !json.Valid(list) || bytes.TrimSpace(list)[0] != '[' {
		return nil, fmt.Errorf("decode document: layer list is not an array")
	}
	return normalizeLayers(decodeObjects(list, layerAliases)), nil
}

// normalizeLayers sorts layers and their samples, renumbers them densely
// from 1 and fills synthesized ids.
func normalizeLayers(recs []record) []Layer {
	type keyed struct {
		layer Layer
		order int
		depth float64
		index int
	}

	items := make([]keyed, 0, len(recs))
	for i, r := range recs {
		l := layerOf(r)
		order, ok := r.order(fLayerOrder)
		if !ok {
			order = math.MaxInt
		}
		items = append(items, keyed{layer: l, order: order, depth: depthKey(l.DepthFromM), index: i})
	}
	sort.SliceStable(items, func(a, b int) bool {
		x, y := items[a], items[b]
		if x.order != y.order {
			return x.order < y.order
		}
		if x.depth != y.depth {
			return x.depth < y.depth
		}
		return x.index < y.index
	})

	layers := make([]Layer, len(items))
	for i, it := range items {
		l := it.layer
		l.LayerOrder = i + 1
		if l.ID == "" {
			l.ID = fmt.Sprintf("layer-%d", i+1)
		}
		for j := range l.Samples {
			l.Samples[j].SampleOrder = j + 1
			if l.Samples[j].ID == "" {
				l.Samples[j].ID = fmt.Sprintf("sample-%d-%d", i+1, j+1)
			}
		}
		layers[i] = l
	}
	return layers
}

func depthKey(d *float64) float64 {
	if d == nil {
		return math.Inf(1)
	}
	return *d
}

func layerOf(r record) Layer {
	return Layer{
		ID:                r.text(fID),
		Description:       r.text(fDescription),
		DepthFromM:        r.number(fDepthFrom),
		DepthToM:          r.number(fDepthTo),
		ThicknessM:        r.number(fThickness),
		ReturnWaterColour: r.text(fReturnWater),
		WaterLoss:         r.text(fWaterLoss),
		BoreholeDiameter:  r.text(fDiameter),
		Remarks:           r.text(fRemarks),
		CreatedAt:         r.text(fCreatedAt),
		CreatedByUserID:   r.text(fCreatedBy),
		Samples:           samplesOf(r.objects(fSamples, sampleAliases)),
	}
}

// samplesOf converts and sorts the samples of one layer. Order numbers are
// assigned by normalizeLayers.
func samplesOf(recs []record) []Sample {
	type keyed struct {
		sample Sample
		order  int
		depth  float64
		index  int
	}

	items := make([]keyed, 0, len(recs))
	for i, r := range recs {
		s := sampleOf(r)
		order, ok := r.order(fSampleOrder)
		if !ok {
			order = math.MaxInt
		}
		d := s.DepthFromM
		if s.DepthMode == DepthSingle {
			d = s.DepthSingleM
		}
		items = append(items, keyed{sample: s, order: order, depth: depthKey(d), index: i})
	}
	sort.SliceStable(items, func(a, b int) bool {
		x, y := items[a], items[b]
		if x.order != y.order {
			return x.order < y.order
		}
		if x.depth != y.depth {
			return x.depth < y.depth
		}
		return x.index < y.index
	})

	samples := make([]Sample, len(items))
	for i, it := range items {
		samples[i] = it.sample
	}
	return samples
}

func sampleOf(r record) Sample {
	blows := r.blows()
	s := Sample{
		ID:                r.text(fID),
		RunLengthM:        r.number(fRunLength),
		SPT15cm1:          blows[0],
		SPT15cm2:          blows[1],
		SPT15cm3:          blows[2],
		NValue:            r.reading(fNValue),
		TotalCoreLengthCM: r.number(fTotalCoreLength),
		TCRPercent:        r.number(fTCR),
		RQDLengthCM:       r.number(fRQDLength),
		RQDPercent:        r.number(fRQD),
		CreatedAt:         r.text(fCreatedAt),
		CreatedByUserID:   r.text(fCreatedBy),
	}
	s.DepthMode, s.DepthSingleM, s.DepthFromM, s.DepthToM =
		depthMode(r.number(fDepthSingle), r.number(fDepthFrom), r.number(fDepthTo))
	s.SampleType = sampleType(r, s)
	return s
}

// depthMode derives the depth mode and the depth fields consistent with it:
// a range keeps from/to and clears the single depth; otherwise the first
// resolved depth becomes the single depth.
func depthMode(single, from, to *float64) (mode DepthMode, s, f, t *float64) {
	switch {
	case from != nil && to != nil:
		return DepthRange, nil, from, to
	case single != nil:
		return DepthSingle, single, nil, nil
	case from != nil:
		return DepthSingle, from, nil, nil
	case to != nil:
		return DepthSingle, to, nil, nil
	}
	return "", nil, nil, nil
}

// sampleTypeStrategies classify a sample, most authoritative first.
var sampleTypeStrategies = []func(record, Sample) string{
	func(r record, _ Sample) string { return borelog.NormalizeSampleType(r.text(fSampleType)) },
	func(r record, _ Sample) string { return borelog.InferSampleType(r.text(fSampleCode)) },
	func(_ record, s Sample) string {
		if !s.SPT15cm1.IsZero() || !s.SPT15cm2.IsZero() || !s.SPT15cm3.IsZero() || !s.NValue.IsZero() {
			return borelog.SampleTypeSPT
		}
		return ""
	},
}

func sampleType(r record, s Sample) string {
	for _, strategy := range sampleTypeStrategies {
		if t := strategy(r, s); t != "" {
			return t
		}
	}
	return ""
}
