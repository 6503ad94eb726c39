package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afflux-io/afflux/internal/store"
)

func order(merchantID, affiliate, status string, amount, comm float64) store.Order {
	return store.Order{
		MerchantID: merchantID, MerchantName: "Champion US", AffiliateName: affiliate,
		OrderAmount: amount, Commission: comm, Status: status,
	}
}

func spendRow(merchantID, affiliate, campaign, date string, clicks int64, cost, budget float64) store.AdSpendRecord {
	return store.AdSpendRecord{
		MerchantID: merchantID, MerchantSlug: "championus", AffiliateName: affiliate,
		CampaignName: campaign, Date: date, Impressions: clicks * 10, Clicks: clicks,
		Cost: cost, Budget: budget, Currency: "USD",
	}
}

func TestSummarizeJoinsOrdersToSpend(t *testing.T) {
	orders := []store.Order{
		order("71017", "pm1", store.StatusApproved, 100, 10),
		order("71017", "pm1", store.StatusPending, 50, 5),
		order("71017", "pm1", store.StatusRejected, 20, 2),
		order("9999", "pm1", store.StatusApproved, 10, 1), // no spend: no row
	}
	spend := []store.AdSpendRecord{
		spendRow("71017", "PM1", "596-pm1-Champion-US-0826-71017", "2024-08-25", 100, 8, 40),
		spendRow("71017", "pm1", "597-pm1-Champion-US-0827-71017", "2024-08-26", 50, 2, 60),
	}

	rows := Summarize(orders, spend, "2024-08-26")
	require.Len(t, rows, 1, "merge is spend-driven")

	r := rows[0]
	assert.Equal(t, "71017", r.MerchantID)
	assert.Equal(t, "Champion US", r.MerchantName, "order group supplies the display name")
	assert.Equal(t, "championus", r.MerchantSlug)
	assert.Equal(t, "pm1", r.Affiliate, "affiliate label match is case-insensitive")
	assert.Equal(t, []string{"596-pm1-Champion-US-0826-71017", "597-pm1-Champion-US-0827-71017"}, r.Campaigns)

	assert.Equal(t, int64(3), r.Orders)
	assert.InDelta(t, 170.0, r.OrderAmount, 1e-9)
	assert.InDelta(t, 17.0, r.Commission, 1e-9)
	assert.InDelta(t, 10.0, r.ConfirmedCommission, 1e-9)
	assert.InDelta(t, 5.0, r.PendingCommission, 1e-9)
	assert.InDelta(t, 2.0, r.RejectedCommission, 1e-9)

	assert.Equal(t, int64(150), r.Clicks)
	assert.InDelta(t, 10.0, r.Cost, 1e-9)
	assert.InDelta(t, 60.0, r.Budget, 1e-9, "budget is the end-date value, not a sum")

	assert.InDelta(t, 3.0/150, r.CR, 1e-9)
	assert.InDelta(t, 17.0/150, r.EPC, 1e-9)
	assert.InDelta(t, 10.0/150, r.CPC, 1e-9)
	assert.InDelta(t, (17.0-10.0)/10.0, r.ROI, 1e-9)
}

func TestSummarizeSpendWithoutOrders(t *testing.T) {
	spend := []store.AdSpendRecord{
		spendRow("55", "lb2", "1-lb2-Screwfix-FR-0826-55", "2024-08-26", 40, 12, 20),
	}
	rows := Summarize(nil, spend, "2024-08-26")
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Empty(t, r.MerchantName, "no order group, no display name")
	assert.Equal(t, "championus", r.MerchantSlug)
	assert.Equal(t, int64(0), r.Orders)
	assert.Zero(t, r.CR)
	assert.Zero(t, r.EPC)
	assert.InDelta(t, 0.3, r.CPC, 1e-9)
	assert.InDelta(t, -1.0, r.ROI, 1e-9, "all cost, no commission")
}

func TestSummarizeCNYConversion(t *testing.T) {
	rec := spendRow("55", "lb2", "c", "2024-08-26", 10, 71.5, 0)
	rec.Currency = "CNY"
	rows := Summarize(nil, []store.AdSpendRecord{rec}, "2024-08-26")
	require.Len(t, rows, 1)
	assert.InDelta(t, 10.0, rows[0].Cost, 1e-9)
}

func TestSummarizeSkipsUnjoinableSpend(t *testing.T) {
	spend := []store.AdSpendRecord{
		spendRow("", "lb2", "no-merchant", "2024-08-26", 10, 5, 0),
		spendRow("55", "", "no-affiliate", "2024-08-26", 10, 5, 0),
	}
	rows := Summarize(nil, spend, "2024-08-26")
	assert.Empty(t, rows)
}

func TestSummarizeSortsByROIDescending(t *testing.T) {
	orders := []store.Order{
		order("1", "a", store.StatusApproved, 100, 30), // ROI (30-10)/10 = 2
		order("2", "a", store.StatusApproved, 100, 5),  // ROI (5-10)/10 = -0.5
	}
	spend := []store.AdSpendRecord{
		spendRow("2", "a", "c2", "2024-08-26", 10, 10, 0),
		spendRow("1", "a", "c1", "2024-08-26", 10, 10, 0),
		spendRow("3", "a", "c3", "2024-08-26", 10, 0, 0), // zero cost: ranks last
	}
	rows := Summarize(orders, spend, "2024-08-26")
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[0].MerchantID)
	assert.Equal(t, "2", rows[1].MerchantID)
	assert.Equal(t, "3", rows[2].MerchantID)
}
