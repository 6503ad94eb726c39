package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces", "Champion US", "championus"},
		{"punctuation", "Screwfix - FR", "screwfixfr"},
		{"empty", "", ""},
		{"already normalized", "lilyandmeclothing", "lilyandmeclothing"},
		{"mixed case and digits", "Shop24 DE", "shop24de"},
		{"non-ascii stripped", "Café Brün", "cafbrn"},
		{"only punctuation", "---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.in); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
