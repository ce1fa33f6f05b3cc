package borelog

import (
	"regexp"
	"strings"
)

// sampleIDPattern matches sample codes such as "S-4", "UDS-2" or "S/D-3".
var sampleIDPattern = regexp.MustCompile(`\b[A-Za-z]+(?:/[A-Za-z]+)?-\d+\b`)

func isRemarkLine(line string) bool {
	_, ok := remarkStatus(line)
	return ok
}

func remarkStatus(line string) (RemarkStatus, bool) {
	up := strings.ToUpper(line)
	switch {
	case strings.Contains(up, "SAMPLE NOT RECEIVED"):
		return SampleNotReceived, true
	case strings.Contains(up, "SAMPLE RECEIVED"):
		return SampleReceived, true
	}
	return "", false
}

// ScanRemarks collects sample receipt remarks from anywhere in the
// document. Lines without a recognisable sample code are skipped.
func ScanRemarks(lines []string) []SampleRemark {
	remarks := make([]SampleRemark, 0)
	for _, line := range lines {
		status, ok := remarkStatus(line)
		if !ok {
			continue
		}
		id := sampleIDPattern.FindString(line)
		if id == "" {
			continue
		}
		remarks = append(remarks, SampleRemark{SampleID: id, Status: status})
	}
	return remarks
}

// coreQualityLabel matches "TCR %:", "TCR (%):" or "RQD %:" anywhere in a
// line. "RQD Length:" does not match.
var coreQualityLabel = regexp.MustCompile(`(?i)\b(tcr|rqd)\s*(?:\(?\s*%\s*\)?)?\s*:`)

// ScanCoreQuality returns the last TCR % and RQD % values seen anywhere in
// the document. Labels may follow other text, share a line, or sit in their
// own spreadsheet cell with the value in the next one.
func ScanCoreQuality(lines []string) CoreQuality {
	var cq CoreQuality
	for _, line := range lines {
		matches := coreQualityLabel.FindAllStringSubmatchIndex(line, -1)
		for i, m := range matches {
			end := len(line)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}
			n := ParseNumber(labeledCell(line[m[1]:end]))
			if n == nil {
				continue
			}
			if strings.EqualFold(line[m[2]:m[3]], "tcr") {
				cq.TCRPercent = n
			} else {
				cq.RQDPercent = n
			}
		}
	}
	return cq
}

// labeledCell returns the value following a label: the first non-empty cell
// when the remainder is CSV shaped (",85,,"), otherwise the remainder itself.
func labeledCell(rest string) string {
	trimmed := strings.TrimLeft(rest, " \t\"")
	if strings.HasPrefix(trimmed, ",") {
		return firstNonEmpty(SplitFields(trimmed))
	}
	return cleanCell(trimmed)
}
