package dates

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "iso passthrough", input: "2024-03-15", want: "2024-03-15"},
		{name: "us slashes", input: "03/15/2024", want: "2024-03-15"},
		{name: "iso slashes", input: "2024/03/15", want: "2024-03-15"},
		{name: "european dashes", input: "15-03-2024", want: "2024-03-15"},
		{name: "garbage", input: "the ides of march", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "month out of range", input: "2024-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) = %q, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeAlternateFormatsAgree(t *testing.T) {
	// Every accepted spelling of the same day must canonicalize identically.
	want, err := Normalize("2024-01-31")
	if err != nil {
		t.Fatal(err)
	}
	for _, alt := range []string{"01/31/2024", "2024/01/31", "31-01-2024"} {
		got, err := Normalize(alt)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", alt, err)
		}
		if got != want {
			t.Errorf("Normalize(%q) = %q, want %q", alt, got, want)
		}
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{name: "valid range", start: "2024-01-01", end: "2024-01-31", wantStart: "2024-01-01", wantEnd: "2024-01-31"},
		{name: "equal dates", start: "2024-06-01", end: "2024-06-01", wantStart: "2024-06-01", wantEnd: "2024-06-01"},
		{name: "mixed formats", start: "01/01/2024", end: "2024/01/31", wantStart: "2024-01-01", wantEnd: "2024-01-31"},
		{name: "inverted", start: "2024-02-01", end: "2024-01-01", wantErr: true},
		{name: "bad start", start: "not-a-date", end: "2024-01-01", wantErr: true},
		{name: "bad end", start: "2024-01-01", end: "never", wantErr: true},
		// Over a year is allowed, only warned about.
		{name: "large range", start: "2020-01-01", end: "2024-01-01", wantStart: "2020-01-01", wantEnd: "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ValidateRange(tt.start, tt.end, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateRange(%q, %q) succeeded, want error", tt.start, tt.end)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateRange(%q, %q) unexpected error: %v", tt.start, tt.end, err)
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("got (%q, %q), want (%q, %q)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestSafeDivide(t *testing.T) {
	tests := []struct {
		name        string
		num, den    float64
		def         float64
		want        float64
	}{
		{name: "normal division", num: 10, den: 4, def: -1, want: 2.5},
		{name: "zero denominator", num: 10, den: 0, def: 0, want: 0},
		{name: "zero denominator custom default", num: 42, den: 0, def: -1, want: -1},
		{name: "zero numerator", num: 0, den: 5, def: -1, want: 0},
		{name: "negative", num: -6, den: 3, def: 0, want: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeDivide(tt.num, tt.den, tt.def); got != tt.want {
				t.Errorf("SafeDivide(%v, %v, %v) = %v, want %v", tt.num, tt.den, tt.def, got, tt.want)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	days := DaysBetween("2024-02-27", "2024-03-02")
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if len(days) != len(want) {
		t.Fatalf("got %d days, want %d: %v", len(days), len(want), days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day[%d] = %s, want %s", i, days[i], want[i])
		}
	}

	single := DaysBetween("2024-01-01", "2024-01-01")
	if len(single) != 1 || single[0] != "2024-01-01" {
		t.Errorf("single-day range = %v, want [2024-01-01]", single)
	}
}
