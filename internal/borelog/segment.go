package borelog

// Segment locates the layer table and groups its lines into one cluster per
// layer. Header rows directly after the section start are skipped, a line
// that looks like the start of a new layer opens a new cluster, and every
// other line is appended to the open cluster. Grouping stops at the first
// section-end marker or the end of input.
func Segment(lines []string) [][]string {
	clusters := make([][]string, 0)

	start := -1
	for i, line := range lines {
		if isLayerSectionStart(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return clusters
	}

	i := start + 1
	for i < len(lines) && isHeaderLine(lines[i]) {
		i++
	}

	var current []string
	for ; i < len(lines); i++ {
		line := lines[i]
		if isLayerSectionEnd(line) {
			break
		}
		if current == nil || isNewLayerStart(line) {
			if current != nil {
				clusters = append(clusters, current)
			}
			current = []string{line}
			continue
		}
		current = append(current, line)
	}
	if current != nil {
		clusters = append(clusters, current)
	}
	return clusters
}

// isNewLayerStart applies three heuristics in order, because free-text and
// CSV exports mark a new row differently:
//
//	(a) the line opens with a decimal number ("12.50 ...")
//	(b) the line closes with a depth range ("... 2.00-5.50 m")
//	(c) a CSV row of three or more cells whose first cell is descriptive text
//	    and which has two adjacent numeric cells after it
//
// Labeled sample lines ("SPT Blows: 5, 7, 9") never start a layer.
func isNewLayerStart(line string) bool {
	if f, _ := auxLabelOf(line); f != nil {
		return false
	}
	if leadingDecimal.MatchString(line) || trailingRange.MatchString(trimRow(line)) {
		return true
	}

	cells := SplitFields(line)
	if len(cells) < 3 {
		return false
	}
	first := cells[0]
	if first == "" || isNumeric(first) || isHeaderCell(first) {
		return false
	}
	return adjacentNumericPair(cells, 1) >= 0
}

// adjacentNumericPair returns the index of the first cell at or after from
// that is numeric and followed by another numeric cell, or -1.
func adjacentNumericPair(cells []string, from int) int {
	for i := from; i+1 < len(cells); i++ {
		if isNumeric(cells[i]) && isNumeric(cells[i+1]) {
			return i
		}
	}
	return -1
}
