package borelog

import "strings"

// Lines splits raw export text into trimmed lines, dropping blank ones.
// A row made only of commas and quotes (an empty spreadsheet row) counts as
// blank. Empty input yields an empty, non-nil slice.
func Lines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if isBlankRow(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func isBlankRow(line string) bool {
	return strings.Trim(line, ", \t\"") == ""
}

// SplitFields splits one line into cell values on commas outside double
// quotes, then strips surrounding quotes and whitespace from each value.
// Doubled quotes inside a quoted cell unescape to one quote. An unterminated
// quote falls back to splitting on every comma.
func SplitFields(line string) []string {
	var (
		fields   []string
		cell     strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			cell.WriteString(`""`)
			i++
		case c == '"':
			inQuotes = !inQuotes
			cell.WriteByte(c)
		case c == ',' && !inQuotes:
			fields = append(fields, unquote(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(c)
		}
	}
	if inQuotes {
		parts := strings.Split(line, ",")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(strings.Trim(strings.TrimSpace(p), `"`))
		}
		return parts
	}
	return append(fields, unquote(cell.String()))
}

// unquote trims whitespace and one pair of surrounding quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return strings.TrimSpace(s)
}

// cleanCell removes spreadsheet artifacts from a single value: the ="..."
// formula wrapper, surrounding quotes and whitespace.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}
	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// trimRow drops trailing empty cells and quotes from a CSV-shaped line.
func trimRow(line string) string {
	return strings.Trim(strings.TrimRight(line, ", \t\""), ` "`)
}

// indexFold is a case-insensitive strings.Index for ASCII labels.
func indexFold(s, substr string) int {
	lower := strings.ToLower(s)
	if len(lower) != len(s) {
		return strings.Index(s, substr)
	}
	return strings.Index(lower, strings.ToLower(substr))
}

// hasPrefixFold is a case-insensitive strings.HasPrefix.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
