package locale

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts a raw numeric string, possibly carrying a currency
// symbol and thousands separators, into a float64 magnitude. decimalSep is
// either "." or ",". Failure is reported as NaN so the caller can drop the
// row; the sign of the result is preserved for the direction policy but is
// not interpreted here.
func ParseAmount(raw, decimalSep string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '.' || r == ',' || r == '-':
			return r
		default:
			return -1
		}
	}, raw)

	if decimalSep == "," {
		// "1.234,56": dots are thousands separators.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else {
		// "1,234.56": commas are thousands separators.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
