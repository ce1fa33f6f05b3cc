package borelog

import (
	"regexp"
	"strings"
)

// Phrases that open the layer table. The metadata scan stops at the first
// line containing one of them.
var layerSectionStartPhrases = []string{
	"layer details",
	"soil layers",
	"stratification details",
	"description of soil",
	"description of strata",
	"soil description",
}

// Phrases that close the layer table.
var layerSectionEndPhrases = []string{
	"termination depth",
	"total depth",
	"end of log",
	"end of borehole",
	"borehole terminated",
	"bottom of hole",
}

var (
	// leadingDecimal matches rows that open with a depth, e.g. "12.50 ...".
	leadingDecimal = regexp.MustCompile(`^\d+\.\d+`)

	// trailingRange matches rows that close with "2.00-5.50 m" or "2.00–5.50 m".
	trailingRange = regexp.MustCompile(`\d+(?:\.\d+)?\s*[-–]\s*\d+(?:\.\d+)?\s*m\.?$`)

	// unitCell matches header cells such as "(m)" or "(cm)".
	unitCell = regexp.MustCompile(`^\(\s*[a-zA-Z%]+\s*\)$`)
)

func containsAnyFold(line string, phrases []string) bool {
	lower := strings.ToLower(line)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func isLayerSectionStart(line string) bool {
	return containsAnyFold(line, layerSectionStartPhrases)
}

func isLayerSectionEnd(line string) bool {
	return containsAnyFold(line, layerSectionEndPhrases)
}

// isHeaderLine reports whether a line is a column header of the layer table,
// in free-text ("Description  Depth From  Depth To") or CSV form, or a row of
// unit captions.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	hasDepth := strings.Contains(lower, "depth")
	if strings.Contains(lower, "description") && (hasDepth || strings.Contains(lower, "thickness")) {
		return true
	}
	if hasDepth && strings.Contains(lower, "thickness") {
		return true
	}

	cells := SplitFields(line)
	units, nonEmpty := 0, 0
	for _, c := range cells {
		if c == "" {
			continue
		}
		nonEmpty++
		if unitCell.MatchString(c) {
			units++
		}
	}
	return nonEmpty > 0 && units == nonEmpty
}

// isHeaderCell reports whether a single cell names a layer-table column.
func isHeaderCell(cell string) bool {
	lower := strings.ToLower(cell)
	return strings.Contains(lower, "description") ||
		strings.Contains(lower, "depth") ||
		strings.Contains(lower, "thickness")
}
