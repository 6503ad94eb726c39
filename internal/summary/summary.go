// Package summary joins collected orders with imported ad spend into
// per-merchant performance rows.
package summary

import (
	"math"
	"sort"
	"strings"

	"github.com/afflux-io/afflux/internal/store"
)

// CNYPerUSD converts CNY-denominated spend into the USD the commission
// figures use. Fixed rate, matching how the sheets are budgeted.
const CNYPerUSD = 7.15

// MerchantRow is one merchant/affiliate pairing with its spend and order
// metrics side by side.
type MerchantRow struct {
	MerchantID   string   `json:"merchant_id"`
	MerchantName string   `json:"merchant_name"`
	MerchantSlug string   `json:"merchant_slug"`
	Affiliate    string   `json:"affiliate"`
	Campaigns    []string `json:"campaigns"`

	Budget      float64 `json:"budget"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"`

	Orders              int64   `json:"orders"`
	OrderAmount         float64 `json:"order_amount"`
	Commission          float64 `json:"commission"`
	ConfirmedCommission float64 `json:"confirmed_commission"`
	PendingCommission   float64 `json:"pending_commission"`
	RejectedCommission  float64 `json:"rejected_commission"`

	CR  float64 `json:"cr"`
	EPC float64 `json:"epc"`
	CPC float64 `json:"cpc"`
	ROI float64 `json:"roi"`
}

type orderGroup struct {
	merchantName string
	orders       int64
	amount       float64
	commission   float64
	confirmed    float64
	pending      float64
	rejected     float64
}

// mergeKey joins the two data sources: merchant id plus the lowercased
// affiliate label.
func mergeKey(merchantID, affiliate string) string {
	return merchantID + "_" + strings.ToLower(affiliate)
}

// Summarize builds merchant rows from orders and spend records. The merge
// is spend-driven: every spend group (merchant, affiliate) becomes a row,
// with order metrics attached when a matching order group exists. Spend
// rows without a merchant id or affiliate label cannot be joined and are
// skipped. Budget is the daily value on endDate, not a range sum.
func Summarize(orders []store.Order, spend []store.AdSpendRecord, endDate string) []MerchantRow {
	orderGroups := make(map[string]*orderGroup)
	for _, o := range orders {
		if o.MerchantID == "" {
			continue
		}
		key := mergeKey(o.MerchantID, o.AffiliateName)
		g, ok := orderGroups[key]
		if !ok {
			g = &orderGroup{merchantName: o.MerchantName}
			orderGroups[key] = g
		}
		g.orders++
		g.amount += o.OrderAmount
		g.commission += o.Commission
		switch o.Status {
		case store.StatusApproved:
			g.confirmed += o.Commission
		case store.StatusRejected:
			g.rejected += o.Commission
		default:
			g.pending += o.Commission
		}
	}

	rowIdx := make(map[string]int)
	rows := make([]MerchantRow, 0)
	campaigns := make(map[string]map[string]struct{})

	for _, rec := range spend {
		if rec.MerchantID == "" || rec.AffiliateName == "" {
			continue
		}
		key := mergeKey(rec.MerchantID, rec.AffiliateName)
		i, ok := rowIdx[key]
		if !ok {
			i = len(rows)
			rowIdx[key] = i
			// MerchantName stays empty until an order group supplies the
			// display name.
			rows = append(rows, MerchantRow{
				MerchantID:   rec.MerchantID,
				MerchantSlug: rec.MerchantSlug,
				Affiliate:    strings.ToLower(rec.AffiliateName),
			})
			campaigns[key] = make(map[string]struct{})
		}
		row := &rows[i]

		cost := rec.Cost
		if strings.EqualFold(rec.Currency, "CNY") {
			cost /= CNYPerUSD
		}
		row.Impressions += rec.Impressions
		row.Clicks += rec.Clicks
		row.Cost += cost
		if rec.Date == endDate && rec.Budget > row.Budget {
			row.Budget = rec.Budget
		}
		campaigns[key][rec.CampaignName] = struct{}{}
	}

	for key, i := range rowIdx {
		row := &rows[i]
		for name := range campaigns[key] {
			row.Campaigns = append(row.Campaigns, name)
		}
		sort.Strings(row.Campaigns)

		if g, ok := orderGroups[key]; ok {
			if g.merchantName != "" {
				row.MerchantName = g.merchantName
			}
			row.Orders = g.orders
			row.OrderAmount = g.amount
			row.Commission = g.commission
			row.ConfirmedCommission = g.confirmed
			row.PendingCommission = g.pending
			row.RejectedCommission = g.rejected
		}

		if row.Clicks > 0 {
			row.CR = float64(row.Orders) / float64(row.Clicks)
			row.EPC = row.Commission / float64(row.Clicks)
			row.CPC = row.Cost / float64(row.Clicks)
		}
		if row.Cost > 0 {
			row.ROI = (row.Commission - row.Cost) / row.Cost
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return sortROI(rows[a]) > sortROI(rows[b])
	})
	return rows
}

// sortROI is the ranking key: rows with no cost carry a zero ROI that
// would otherwise sort above genuine losses, so they rank below everything.
func sortROI(r MerchantRow) float64 {
	if r.Cost <= 0 {
		return math.Inf(-1)
	}
	return r.ROI
}
