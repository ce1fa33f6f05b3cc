package borelog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// leadingNumber matches the numeric prefix of a value such as "2.50 m".
	leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

	// strictNumber matches a cell that is a number and nothing else.
	strictNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
)

// sptShare is the fraction of a combined SP/VS count attributed to SPT.
var sptShare = decimal.RequireFromString("0.7")

// ParseNumber reads the numeric prefix of s. It returns nil for empty input,
// dash placeholders, spreadsheet error literals (#N/A, #VALUE!, ...) and
// anything that does not start with a number. It never panics.
func ParseNumber(s string) *float64 {
	s = cleanCell(s)
	if isNullLiteral(s) {
		return nil
	}
	m := leadingNumber.FindString(s)
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &f
}

// isNumeric reports whether a whole cell is a plain number.
func isNumeric(s string) bool {
	s = cleanCell(s)
	return s != "" && strictNumber.MatchString(s)
}

func isNullLiteral(s string) bool {
	if s == "" || strings.HasPrefix(s, "#") {
		return true
	}
	switch strings.ToLower(s) {
	case "-", "--", "–", "—", "n/a", "na", "nil", "null", "none":
		return true
	}
	return false
}

// parseCount reads a non-negative integer count.
func parseCount(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// difference returns to-from rounded to two decimal places.
func difference(from, to float64) float64 {
	return decimal.NewFromFloat(to).Sub(decimal.NewFromFloat(from)).Round(2).InexactFloat64()
}

// round2 rounds to two decimal places.
func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// splitSPVS divides a combined SP/VS test count 70/30, rounding the SPT share
// half away from zero and giving the remainder to VS.
func splitSPVS(total int) (spt, vs int) {
	spt = int(decimal.NewFromInt(int64(total)).Mul(sptShare).Round(0).IntPart())
	return spt, total - spt
}

func floatPtr(f float64) *float64 { return &f }
