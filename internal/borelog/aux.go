package borelog

import "strings"

// maxLabelQualifier bounds the text allowed between a label and its colon,
// e.g. " (cm)" in "Total Core Length (cm):".
const maxLabelQualifier = 16

// auxField is a labeled per-layer field found on the follow-up lines of a
// cluster.
type auxField struct {
	prefix string
	apply  func(l *SoilLayer, value string)
}

// auxFields is matched in order; longer prefixes precede their shorter
// relatives ("RQD Length" before "RQD").
var auxFields = []auxField{
	{"sample id", setText(func(l *SoilLayer) *string { return &l.SampleID })},
	{"sample no", setText(func(l *SoilLayer) *string { return &l.SampleID })},
	{"sample type", func(l *SoilLayer, v string) { l.SampleType = NormalizeSampleType(v) }},
	{"sample depth", setText(func(l *SoilLayer) *string { return &l.SampleDepth })},
	{"run length", setNumber(func(l *SoilLayer) **float64 { return &l.RunLength })},
	{"spt blows", func(l *SoilLayer, v string) { l.SPTBlows = parseBlows(v) }},
	{"n-value", func(l *SoilLayer, v string) { l.NValue = readingOf(v) }},
	{"n value", func(l *SoilLayer, v string) { l.NValue = readingOf(v) }},
	{"total core length", setNumber(func(l *SoilLayer) **float64 { return &l.TotalCoreLengthCM })},
	{"tcr", setNumber(func(l *SoilLayer) **float64 { return &l.TCRPercent })},
	{"rqd length", setNumber(func(l *SoilLayer) **float64 { return &l.RQDLengthCM })},
	{"rqd", setNumber(func(l *SoilLayer) **float64 { return &l.RQDPercent })},
	{"colour of return water", setText(func(l *SoilLayer) *string { return &l.ColourOfReturnWater })},
	{"color of return water", setText(func(l *SoilLayer) *string { return &l.ColourOfReturnWater })},
	{"water loss", setText(func(l *SoilLayer) *string { return &l.WaterLoss })},
	{"diameter of borehole", setText(func(l *SoilLayer) *string { return &l.DiameterOfBorehole })},
	{"remarks", setText(func(l *SoilLayer) *string { return &l.Remarks })},
}

// positionalFields maps the CSV cells after depth and thickness, in export
// column order.
var positionalFields = []func(*SoilLayer, string){
	setText(func(l *SoilLayer) *string { return &l.SampleID }),
	setText(func(l *SoilLayer) *string { return &l.SampleDepth }),
	setNumber(func(l *SoilLayer) **float64 { return &l.RunLength }),
	func(l *SoilLayer, v string) { l.SPTBlows[0] = blowReading(v) },
	func(l *SoilLayer, v string) { l.SPTBlows[1] = blowReading(v) },
	func(l *SoilLayer, v string) { l.SPTBlows[2] = blowReading(v) },
	func(l *SoilLayer, v string) { l.NValue = readingOf(v) },
	setNumber(func(l *SoilLayer) **float64 { return &l.TotalCoreLengthCM }),
	setNumber(func(l *SoilLayer) **float64 { return &l.TCRPercent }),
	setNumber(func(l *SoilLayer) **float64 { return &l.RQDLengthCM }),
	setNumber(func(l *SoilLayer) **float64 { return &l.RQDPercent }),
	setText(func(l *SoilLayer) *string { return &l.ColourOfReturnWater }),
	setText(func(l *SoilLayer) *string { return &l.WaterLoss }),
	setText(func(l *SoilLayer) *string { return &l.DiameterOfBorehole }),
	setText(func(l *SoilLayer) *string { return &l.Remarks }),
}

func setText(field func(*SoilLayer) *string) func(*SoilLayer, string) {
	return func(l *SoilLayer, v string) { *field(l) = cleanCell(v) }
}

func setNumber(field func(*SoilLayer) **float64) func(*SoilLayer, string) {
	return func(l *SoilLayer, v string) {
		if n := ParseNumber(v); n != nil {
			*field(l) = n
		}
	}
}

// auxLabelOf returns the labeled field a line carries and its value, or nil.
// Leading empty spreadsheet cells before the label are skipped.
func auxLabelOf(line string) (*auxField, string) {
	s := strings.TrimLeft(line, " \t\"',")
	for i := range auxFields {
		f := &auxFields[i]
		if !hasPrefixFold(s, f.prefix) {
			continue
		}
		rest := s[len(f.prefix):]
		colon := strings.IndexByte(rest, ':')
		if colon < 0 || colon > maxLabelQualifier {
			continue
		}
		return f, joinCells(SplitFields(rest[colon+1:]))
	}
	return nil, ""
}
