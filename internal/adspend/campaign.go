// Package adspend imports advertising cost data from spreadsheet CSV
// exports and derives the merchant join keys from campaign names.
package adspend

import (
	"strings"

	"github.com/afflux-io/afflux/internal/slug"
)

// Campaign is the structured form of a campaign name following the
// convention <seq>-<affiliate>-<merchant…>-<country>-<date>-<id>. The
// merchant part may itself contain dashes.
type Campaign struct {
	Affiliate    string
	MerchantID   string
	MerchantName string
	MerchantSlug string
}

// ParseCampaign extracts the affiliate label and merchant identity from a
// campaign name. Names with fewer than five dash-separated segments do not
// follow the convention and parse to a zero Campaign.
//
//	ParseCampaign("596-pm1-Champion-US-0826-71017")
//	  => {Affiliate: "pm1", MerchantID: "71017", MerchantName: "Champion", MerchantSlug: "champion"}
func ParseCampaign(name string) Campaign {
	parts := strings.Split(strings.TrimSpace(name), "-")
	if len(parts) < 5 {
		return Campaign{}
	}
	merchantName := strings.Join(parts[2:len(parts)-3], "-")
	return Campaign{
		Affiliate:    parts[1],
		MerchantID:   parts[len(parts)-1],
		MerchantName: merchantName,
		MerchantSlug: slug.Make(merchantName),
	}
}
