package borelog

import (
	"fmt"
	"regexp"
	"strings"
)

// Lookahead windows for labels whose values continue on following lines.
const (
	coordinateLookahead = 3
	labTestLookahead    = 5
)

// metaLabel binds a header label to the field it fills. apply receives the
// cleaned single-line value, the raw remainder of the line after the label
// and the lines that follow; it returns how many of those lines it consumed.
type metaLabel struct {
	label string
	apply func(m *Metadata, value, rest string, next []string) int
}

// metaLabels is checked in order on every header line. It is filled in init
// because the lookahead labels consult the table themselves.
var metaLabels []metaLabel

func init() {
	metaLabels = []metaLabel{
		{"Project Name:", textField(func(m *Metadata) *string { return &m.ProjectName })},
		{"Client Address:", textField(func(m *Metadata) *string { return &m.ClientAddress })},
		{"Website:", textField(func(m *Metadata) *string { return &m.WebsiteAddress })},
		{"Job Code:", textField(func(m *Metadata) *string { return &m.JobCode })},
		{"Section Name:", textField(func(m *Metadata) *string { return &m.SectionName })},
		{"Location:", textField(func(m *Metadata) *string { return &m.Location })},
		{"Chainage (km):", numberField(func(m *Metadata) **float64 { return &m.ChainageKm })},
		{"Chainage:", numberField(func(m *Metadata) **float64 { return &m.ChainageKm })},
		{"Borehole No.:", textField(func(m *Metadata) *string { return &m.BoreholeNo })},
		{"Borehole No:", textField(func(m *Metadata) *string { return &m.BoreholeNo })},
		{"Commencement Date:", textField(func(m *Metadata) *string { return &m.CommencementDate })},
		{"Completion Date:", textField(func(m *Metadata) *string { return &m.CompletionDate })},
		{"Mean Sea Level (MSL):", numberField(func(m *Metadata) **float64 { return &m.MSL })},
		{"MSL:", numberField(func(m *Metadata) **float64 { return &m.MSL })},
		{"Method of Boring:", textField(func(m *Metadata) *string { return &m.MethodOfBoring })},
		{"Diameter of Hole:", textField(func(m *Metadata) *string { return &m.DiameterOfHole })},
		{"Termination Depth:", numberField(func(m *Metadata) **float64 { return &m.TerminationDepth })},
		{"Standing Water Level:", numberField(func(m *Metadata) **float64 { return &m.StandingWaterLevel })},
		{"Coordinates:", applyCoordinates},
		{"Lab Tests:", applyLabTests},
	}
}

func textField(field func(*Metadata) *string) func(*Metadata, string, string, []string) int {
	return func(m *Metadata, value, _ string, _ []string) int {
		if p := field(m); *p == "" {
			*p = value
		}
		return 0
	}
}

func numberField(field func(*Metadata) **float64) func(*Metadata, string, string, []string) int {
	return func(m *Metadata, value, _ string, _ []string) int {
		if p := field(m); *p == nil {
			*p = ParseNumber(value)
		}
		return 0
	}
}

// ScanMetadata reads the header block above the layer table. It fails with
// ErrMissingMetadata when the project name or job code is absent.
func ScanMetadata(lines []string) (Metadata, error) {
	var m Metadata
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if isLayerSectionStart(line) {
			break
		}
		consumed := 0
		for _, ml := range metaLabels {
			value, rest, ok := labelValue(line, ml.label)
			if !ok {
				continue
			}
			if n := ml.apply(&m, value, rest, lines[i+1:]); n > consumed {
				consumed = n
			}
		}
		i += consumed
	}

	if m.LabTests.SPVSTests != nil && m.LabTests.SPTTests == nil && m.LabTests.VSTests == nil {
		spt, vs := splitSPVS(*m.LabTests.SPVSTests)
		m.LabTests.SPTTests, m.LabTests.VSTests = &spt, &vs
	}

	var missing []string
	if m.ProjectName == "" {
		missing = append(missing, "project name")
	}
	if m.JobCode == "" {
		missing = append(missing, "job code")
	}
	if len(missing) > 0 {
		return m, fmt.Errorf("%w: %s", ErrMissingMetadata, strings.Join(missing, ", "))
	}
	return m, nil
}

// labelValue locates label in line and returns its value. The raw remainder
// is cut where the next known label begins. CSV-shaped remainders
// (",value,,") yield their first non-empty cell; free text is kept whole.
func labelValue(line, label string) (value, rest string, ok bool) {
	idx := indexFold(line, label)
	if idx < 0 {
		return "", "", false
	}
	rest = line[idx+len(label):]
	cut := len(rest)
	for _, other := range metaLabels {
		if j := indexFold(rest, other.label); j >= 0 && j < cut {
			cut = j
		}
	}
	rest = rest[:cut]

	trimmed := strings.TrimLeft(rest, " \t")
	if strings.HasPrefix(trimmed, ",") {
		value = cleanCell(firstNonEmpty(SplitFields(trimmed)))
	} else {
		value = cleanCell(trimRow(trimmed))
	}
	return value, rest, true
}

func hasMetaLabel(line string) bool {
	for _, ml := range metaLabels {
		if indexFold(line, ml.label) >= 0 {
			return true
		}
	}
	return false
}

// lookahead feeds rest and then up to limit following lines to match, which
// reports whether a line contributed anything and whether the scan is
// complete. It stops early at the layer table or another labeled line and
// returns the number of following lines consumed.
func lookahead(rest string, next []string, limit int, match func(string) (hit, done bool)) int {
	if _, done := match(rest); done {
		return 0
	}
	consumed := 0
	for i := 0; i < len(next) && i < limit; i++ {
		if isLayerSectionStart(next[i]) || hasMetaLabel(next[i]) {
			break
		}
		hit, done := match(next[i])
		if hit {
			consumed = i + 1
		}
		if done {
			break
		}
	}
	return consumed
}

var (
	eastingPattern  = regexp.MustCompile(`(?i)\b(?:East|E)\s*:[\s,"]*([+-]?\d+(?:\.\d+)?)`)
	northingPattern = regexp.MustCompile(`(?i)\b(?:North|L)\s*:[\s,"]*([+-]?\d+(?:\.\d+)?)`)
)

// scanCoordinates reads an easting/northing pair from the label remainder
// and up to three following lines.
func scanCoordinates(rest string, next []string) (*Coordinates, int) {
	var c Coordinates
	consumed := lookahead(rest, next, coordinateLookahead, func(s string) (bool, bool) {
		hit := false
		if c.E == nil {
			if m := eastingPattern.FindStringSubmatch(s); m != nil {
				c.E, hit = ParseNumber(m[1]), true
			}
		}
		if c.L == nil {
			if m := northingPattern.FindStringSubmatch(s); m != nil {
				c.L, hit = ParseNumber(m[1]), true
			}
		}
		return hit, c.E != nil && c.L != nil
	})
	if c.E == nil && c.L == nil {
		return nil, consumed
	}
	return &c, consumed
}

func applyCoordinates(m *Metadata, _, rest string, next []string) int {
	c, consumed := scanCoordinates(rest, next)
	if m.Coordinates == nil {
		m.Coordinates = c
	}
	return consumed
}

// labTestCounters pair a count pattern with the LabTests field it fills.
var labTestCounters = []struct {
	pattern *regexp.Regexp
	field   func(*LabTests) **int
}{
	{regexp.MustCompile(`(?i)permeability[^:\d]*:[\s,"]*(\d+)`), func(l *LabTests) **int { return &l.PermeabilityTests }},
	{regexp.MustCompile(`(?i)\bSP\s*/\s*VS[^:\d]*:[\s,"]*(\d+)`), func(l *LabTests) **int { return &l.SPVSTests }},
	{regexp.MustCompile(`(?i)(?:\bundisturbed|\bUDS)[^:\d]*:[\s,"]*(\d+)`), func(l *LabTests) **int { return &l.UndisturbedSamples }},
	{regexp.MustCompile(`(?i)(?:\bdisturbed|\bDS)[^:\d]*:[\s,"]*(\d+)`), func(l *LabTests) **int { return &l.DisturbedSamples }},
	{regexp.MustCompile(`(?i)\bwater\s+samples?[^:\d]*:[\s,"]*(\d+)`), func(l *LabTests) **int { return &l.WaterSamples }},
}

// scanLabTests reads test counts from the label remainder and up to five
// following lines. The SP/VS split is applied later by ScanMetadata.
func scanLabTests(rest string, next []string) (LabTests, int) {
	var lt LabTests
	consumed := lookahead(rest, next, labTestLookahead, func(s string) (bool, bool) {
		hit := false
		for _, c := range labTestCounters {
			if p := c.field(&lt); *p == nil {
				if m := c.pattern.FindStringSubmatch(s); m != nil {
					*p, hit = parseCount(m[1]), true
				}
			}
		}
		return hit, false
	})
	return lt, consumed
}

func applyLabTests(m *Metadata, _, rest string, next []string) int {
	lt, consumed := scanLabTests(rest, next)
	dst := &m.LabTests
	for _, c := range labTestCounters {
		if p := c.field(dst); *p == nil {
			*p = *c.field(&lt)
		}
	}
	return consumed
}
