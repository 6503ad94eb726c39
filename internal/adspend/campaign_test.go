package adspend

import "testing"

func TestParseCampaign(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Campaign
	}{
		{
			name: "standard",
			in:   "596-pm1-Champion-US-0826-71017",
			want: Campaign{Affiliate: "pm1", MerchantID: "71017", MerchantName: "Champion", MerchantSlug: "champion"},
		},
		{
			name: "dashed merchant",
			in:   "12-lb2-Screwfix-FR-Promo-FR-0901-5501",
			want: Campaign{Affiliate: "lb2", MerchantID: "5501", MerchantName: "Screwfix-FR-Promo", MerchantSlug: "screwfixfrpromo"},
		},
		{
			name: "too few segments",
			in:   "brand-awareness-q3",
			want: Campaign{},
		},
		{
			name: "empty",
			in:   "",
			want: Campaign{},
		},
		{
			name: "five segments has empty merchant name",
			in:   "1-aff-US-0826-99",
			want: Campaign{Affiliate: "aff", MerchantID: "99"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCampaign(tt.in); got != tt.want {
				t.Errorf("ParseCampaign(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractSheetKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://docs.google.com/spreadsheets/d/1AbC_d-9xyz/edit#gid=0", "1AbC_d-9xyz"},
		{"https://docs.google.com/spreadsheets/d/1AbC/export?format=csv", "1AbC"},
		{"1AbC_d-9xyz", "1AbC_d-9xyz"},
		{"https://example.com/not-a-sheet", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractSheetKey(tt.in); got != tt.want {
			t.Errorf("ExtractSheetKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
