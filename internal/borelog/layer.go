package borelog

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// rangePattern captures "description ... from-to[ m]" with an optional unit
// and either a hyphen or an en dash between the depths.
var rangePattern = regexp.MustCompile(`^(.*?\S)[\s,]+(\d+(?:\.\d+)?)\s*[-–]\s*(\d+(?:\.\d+)?)\s*(?:m\.?)?$`)

// layerLine is the first line of a cluster, kept raw and split into cells.
type layerLine struct {
	raw   string
	cells []string
}

// depthSpan is what a depth strategy resolves from the first line.
type depthSpan struct {
	description string
	from, to    float64
	thickness   *float64 // explicit value from the source, if any
	extras      []string // cells after the depth and thickness columns
}

// layerContext carries everything the description strategies may draw on.
type layerContext struct {
	first     layerLine
	span      depthSpan
	remarks   string
	unlabeled string
}

// firstResult evaluates strategies in order and returns the first success.
func firstResult[I, O any](in I, strategies []func(I) (O, bool)) (O, bool) {
	for _, s := range strategies {
		if v, ok := s(in); ok {
			return v, true
		}
	}
	var zero O
	return zero, false
}

// depthStrategies resolve the depth interval, most specific first.
var depthStrategies = []func(layerLine) (depthSpan, bool){
	rangeDepth,
	csvColumnDepth,
	leadingTokenDepth,
}

// descriptionStrategies resolve the layer description in priority order.
var descriptionStrategies = []func(layerContext) (string, bool){
	func(c layerContext) (string, bool) { return c.span.description, c.span.description != "" },
	firstColumnDescription,
	func(c layerContext) (string, bool) { return c.remarks, c.remarks != "" },
	func(c layerContext) (string, bool) { return c.unlabeled, c.unlabeled != "" },
	trailingTokenDescription,
}

// ExtractLayer resolves one cluster into a SoilLayer. It reports false when
// no strategy yields a depth interval; such clusters are stray text rather
// than layers.
func ExtractLayer(cluster []string) (SoilLayer, bool) {
	if len(cluster) == 0 {
		return SoilLayer{}, false
	}
	first := layerLine{raw: cluster[0], cells: SplitFields(cluster[0])}
	span, ok := firstResult(first, depthStrategies)
	if !ok {
		return SoilLayer{}, false
	}

	layer := SoilLayer{DepthFrom: span.from, DepthTo: span.to}
	thickness := difference(span.from, span.to)
	if span.thickness != nil {
		thickness = *span.thickness
	}
	layer.Thickness = &thickness

	if span.description != "" {
		for i, v := range span.extras {
			if i < len(positionalFields) && v != "" {
				positionalFields[i](&layer, v)
			}
		}
	}

	ctx := layerContext{first: first, span: span}
	for _, line := range cluster[1:] {
		if isRemarkLine(line) {
			continue
		}
		if f, value := auxLabelOf(line); f != nil {
			if value != "" {
				f.apply(&layer, value)
			}
			continue
		}
		if ctx.unlabeled == "" {
			ctx.unlabeled = joinCells(SplitFields(line))
		}
	}
	ctx.remarks = layer.Remarks

	layer.Description, _ = firstResult(ctx, descriptionStrategies)
	if layer.SampleType == "" {
		layer.SampleType = InferSampleType(layer.SampleID)
	}
	if layer.NValue.IsZero() {
		layer.NValue = deriveNValue(layer.SPTBlows)
	}
	return layer, true
}

// rangeDepth matches "description from-to m" in the first cell, or in the
// whole line when no cell is a bare number (an unquoted free-text line that
// the comma splitter cut apart).
func rangeDepth(l layerLine) (depthSpan, bool) {
	candidates := []string{l.cells[0]}
	if !anyNumericCell(l.cells) {
		candidates = append(candidates, trimRow(l.raw))
	}
	for _, c := range candidates {
		m := rangePattern.FindStringSubmatch(strings.TrimSpace(c))
		if m == nil {
			continue
		}
		from, errFrom := strconv.ParseFloat(m[2], 64)
		to, errTo := strconv.ParseFloat(m[3], 64)
		if errFrom != nil || errTo != nil || from > to {
			continue
		}
		return depthSpan{
			description: strings.Trim(m[1], " ,;:-–\""),
			from:        from,
			to:          to,
		}, true
	}
	return depthSpan{}, false
}

// csvColumnDepth takes the first two adjacent numeric cells of a CSV row as
// from/to. Text before them is the description; a numeric cell right after
// them is an explicit thickness; an empty cell there is a blank thickness
// column and is skipped.
func csvColumnDepth(l layerLine) (depthSpan, bool) {
	if len(l.cells) < 3 {
		return depthSpan{}, false
	}
	i := adjacentNumericPair(l.cells, 0)
	if i < 0 {
		return depthSpan{}, false
	}
	from, to := *ParseNumber(l.cells[i]), *ParseNumber(l.cells[i+1])
	if from > to {
		return depthSpan{}, false
	}
	span := depthSpan{description: joinCells(l.cells[:i]), from: from, to: to}
	next := i + 2
	if next < len(l.cells) && (l.cells[next] == "" || isNumeric(l.cells[next])) {
		span.thickness = ParseNumber(l.cells[next])
		next++
	}
	span.extras = l.cells[next:]
	return span, true
}

// leadingTokenDepth reads "from to thickness ..." from whitespace-separated
// tokens.
func leadingTokenDepth(l layerLine) (depthSpan, bool) {
	toks := strings.Fields(l.raw)
	if len(toks) < 3 || !isNumeric(toks[0]) || !isNumeric(toks[1]) || !isNumeric(toks[2]) {
		return depthSpan{}, false
	}
	from, to := *ParseNumber(toks[0]), *ParseNumber(toks[1])
	if from > to {
		return depthSpan{}, false
	}
	return depthSpan{from: from, to: to, thickness: ParseNumber(toks[2])}, true
}

func firstColumnDescription(c layerContext) (string, bool) {
	c0 := c.first.cells[0]
	if c0 == "" || leadingNumber.MatchString(c0) || isHeaderCell(c0) {
		return "", false
	}
	if f, _ := auxLabelOf(c0); f != nil {
		return "", false
	}
	return c0, true
}

// trailingTokenDescription takes the text after the two or three leading
// numeric tokens of the first line.
func trailingTokenDescription(c layerContext) (string, bool) {
	toks := strings.FieldsFunc(c.first.raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	n := 0
	for n < len(toks) && n < 3 && isNumeric(toks[n]) {
		n++
	}
	if n < 2 || n >= len(toks) {
		return "", false
	}
	return strings.Trim(strings.Join(toks[n:], " "), `"`), true
}

func anyNumericCell(cells []string) bool {
	for _, c := range cells {
		if isNumeric(c) {
			return true
		}
	}
	return false
}

func joinCells(cells []string) string {
	var parts []string
	for _, c := range cells {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, ", ")
}

// readingOf keeps numbers as numbers and anything else as literal text.
func readingOf(s string) Reading {
	s = cleanCell(s)
	if s == "" {
		return Reading{}
	}
	if n := ParseNumber(s); n != nil {
		return Reading{Value: n}
	}
	return Reading{Text: s}
}

// parseBlows splits "5, 7, 9" into the three 15 cm increments. "5/7/9" is
// accepted only as exactly three slash-separated numbers, so a penetration
// reading such as "50/10" stays one literal increment.
func parseBlows(v string) [3]Reading {
	var blows [3]Reading
	parts := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	if len(parts) == 1 {
		if slashed := strings.Split(parts[0], "/"); len(slashed) == 3 && allNumeric(slashed) {
			parts = slashed
		}
	}
	for i := 0; i < len(parts) && i < len(blows); i++ {
		blows[i] = blowReading(parts[i])
	}
	return blows
}

// blowReading keeps a blow count as a number only when the whole cell is
// numeric; "50/10" or "R" stay literal.
func blowReading(s string) Reading {
	s = cleanCell(s)
	if isNumeric(s) {
		return readingOf(s)
	}
	if s == "" {
		return Reading{}
	}
	return Reading{Text: s}
}

func allNumeric(values []string) bool {
	for _, v := range values {
		if !isNumeric(v) {
			return false
		}
	}
	return true
}

// deriveNValue sums the second and third increments once all three are
// recorded. A placeholder or other non-numeric count in either of them
// yields NValueMarker.
func deriveNValue(blows [3]Reading) Reading {
	for _, b := range blows {
		if b.IsZero() {
			return Reading{}
		}
	}
	second, third := blows[1], blows[2]
	if second.Value == nil || third.Value == nil {
		return Reading{Text: NValueMarker}
	}
	return Reading{Value: floatPtr(round2(*second.Value + *third.Value))}
}

// InferSampleType classifies a sample code by prefix: S/D for SPT, U for
// undisturbed, D for disturbed. Unknown prefixes stay unclassified.
func InferSampleType(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch {
	case strings.HasPrefix(code, "S/D"):
		return SampleTypeSPT
	case strings.HasPrefix(code, "U"):
		return SampleTypeUndisturbed
	case strings.HasPrefix(code, "D"):
		return SampleTypeDisturbed
	}
	return ""
}

// NormalizeSampleType maps spelled-out and abbreviated sample types to the
// canonical names.
func NormalizeSampleType(v string) string {
	up := strings.ToUpper(strings.TrimSpace(v))
	switch up {
	case "SPT", "S/D", "SD":
		return SampleTypeSPT
	case "UDS", "UD", "U", "UNDISTURBED":
		return SampleTypeUndisturbed
	case "DS", "D", "DISTURBED":
		return SampleTypeDisturbed
	}
	return up
}
