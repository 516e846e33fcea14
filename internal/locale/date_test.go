package locale

import "testing"

func TestParseDate(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		format string
		want   string
		wantOK bool
	}{
		{
			name:   "german dotted date",
			raw:    "25.12.2023",
			format: FormatDMY,
			want:   "2023-12-25",
			wantOK: true,
		},
		{
			name:   "us slashed date",
			raw:    "12/25/2023",
			format: FormatMDY,
			want:   "2023-12-25",
			wantOK: true,
		},
		{
			name:   "iso date",
			raw:    "2023-12-25",
			format: FormatISO,
			want:   "2023-12-25",
			wantOK: true,
		},
		{
			name:   "two digit year assumed 2000s",
			raw:    "01.02.24",
			format: FormatDMY,
			want:   "2024-02-01",
			wantOK: true,
		},
		{
			name:   "single digit day and month",
			raw:    "5.3.2024",
			format: FormatDMY,
			want:   "2024-03-05",
			wantOK: true,
		},
		{
			name:   "spreadsheet serial for unix epoch",
			raw:    "25569",
			format: FormatDMY,
			want:   "1970-01-01",
			wantOK: true,
		},
		{
			name:   "spreadsheet serial modern date",
			raw:    "45291",
			format: FormatISO,
			want:   "2023-12-31",
			wantOK: true,
		},
		{
			name:   "wrong part count falls through to generic",
			raw:    "2023/12/25",
			format: FormatDMY,
			want:   "2023-12-25",
			wantOK: true,
		},
		{
			name:   "garbage fails without panicking",
			raw:    "not a date",
			format: FormatDMY,
			wantOK: false,
		},
		{
			name:   "empty string fails",
			raw:    "",
			format: FormatISO,
			wantOK: false,
		},
		{
			name:   "impossible calendar date fails",
			raw:    "31.02.2023",
			format: FormatDMY,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw, tt.format)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q, %q) ok = %v, want %v", tt.raw, tt.format, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseDate(%q, %q) = %q, want %q", tt.raw, tt.format, got, tt.want)
			}
		})
	}
}

func TestDateRoundTrip(t *testing.T) {
	cases := []struct {
		raw    string
		format string
	}{
		{"25.12.2023", FormatDMY},
		{"12/25/2023", FormatMDY},
		{"2023-12-25", FormatISO},
	}

	for _, c := range cases {
		t.Run(c.format, func(t *testing.T) {
			canonical, ok := ParseDate(c.raw, c.format)
			if !ok {
				t.Fatalf("ParseDate(%q, %q) failed", c.raw, c.format)
			}
			if got := FormatDate(canonical, c.format); got != c.raw {
				t.Errorf("FormatDate(ParseDate(%q)) = %q, want the original", c.raw, got)
			}
		})
	}
}
