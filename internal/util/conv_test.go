package util

import "testing"

func TestParseUintOrZero(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want uint
	}{
		{"plain number", "42", 42},
		{"empty means no filter", "", 0},
		{"garbage falls back to zero", "abc", 0},
		{"negative falls back to zero", "-7", 0},
		{"overflow falls back to zero", "99999999999999999999", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseUintOrZero(tc.in); got != tc.want {
				t.Errorf("ParseUintOrZero(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}
