// Package collector orchestrates a collection run: fetch line items from a
// partner adapter, merge multi-line orders, and reconcile the result against
// the persisted order set.
package collector

import (
	"github.com/afflux-io/afflux/internal/platform"
	"github.com/afflux-io/afflux/internal/slug"
)

// Candidate is one merged order ready for reconciliation. Partner feeds
// report line items; several items sharing an order id are one order whose
// amounts sum.
type Candidate struct {
	OrderID      string
	MerchantID   string
	MerchantName string
	MerchantSlug string
	Amount       float64
	Commission   float64
	Status       platform.Status
	OrderDate    string
	Raw          []byte
}

// aggregate merges line items by order id, preserving first-seen order.
// The first item fixes the merchant, status, and date; later items add
// their amounts and take over the raw payload. Items without an order id
// cannot be keyed and are dropped, counted so feed anomalies stay visible.
func aggregate(items []platform.LineItem) (cands []Candidate, dropped int) {
	byID := make(map[string]int, len(items))
	out := make([]Candidate, 0, len(items))

	for _, it := range items {
		if it.OrderID == "" {
			dropped++
			continue
		}
		if i, ok := byID[it.OrderID]; ok {
			out[i].Amount += it.Amount
			out[i].Commission += it.Commission
			out[i].Raw = it.Raw
			continue
		}
		byID[it.OrderID] = len(out)
		out = append(out, Candidate{
			OrderID:      it.OrderID,
			MerchantID:   it.MerchantID,
			MerchantName: it.MerchantName,
			MerchantSlug: slug.Make(it.MerchantName),
			Amount:       it.Amount,
			Commission:   it.Commission,
			Status:       it.Status,
			OrderDate:    it.OrderDate,
			Raw:          it.Raw,
		})
	}
	return out, dropped
}
