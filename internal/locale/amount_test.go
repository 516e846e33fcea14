package locale

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		sep  string
		want float64
	}{
		{"german thousands and decimal", "1.234,56", ",", 1234.56},
		{"english thousands and decimal", "1,234.56", ".", 1234.56},
		{"negative german amount", "-1.234,56", ",", -1234.56},
		{"currency symbol stripped", "€ 99,90", ",", 99.90},
		{"dollar sign stripped", "$42.00", ".", 42.00},
		{"plain integer", "100", ".", 100},
		{"whitespace around digits", " 12.50 ", ".", 12.50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.raw, tt.sep)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseAmount(%q, %q) = %v, want %v", tt.raw, tt.sep, got, tt.want)
			}
		})
	}
}

func TestParseAmountFailure(t *testing.T) {
	for _, raw := range []string{"", "abc", "-", "..", "EUR"} {
		if got := ParseAmount(raw, "."); !math.IsNaN(got) {
			t.Errorf("ParseAmount(%q, \".\") = %v, want NaN", raw, got)
		}
	}
}
