package collector

import (
	"context"
	"math"

	"github.com/afflux-io/afflux/internal/store"
)

// AmountTolerance is the absolute difference below which two monetary
// values are considered equal. Partner APIs round inconsistently; penny
// jitter must not count as a change.
const AmountTolerance = 0.01

// OrderStore is the slice of the persistence layer the reconciliation
// engine writes through. *store.Store satisfies it.
type OrderStore interface {
	GetOrder(ctx context.Context, accountID int64, orderID string) (*store.Order, error)
	InsertOrder(ctx context.Context, o *store.Order) error
	UpdateOrder(ctx context.Context, o *store.Order) error
	DeleteOrder(ctx context.Context, accountID int64, orderID string) error
	OrderIDsInRange(ctx context.Context, accountID int64, start, end string) ([]string, error)
}

// Stats counts the outcome of one reconciliation pass. Dropped counts
// line items the aggregator discarded for lacking an order id.
type Stats struct {
	New     int `json:"new"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Deleted int `json:"deleted"`
	Dropped int `json:"dropped"`
}

// Total is the number of candidates examined, deletions excluded.
func (s Stats) Total() int { return s.New + s.Updated + s.Skipped }

// engine reconciles merged candidates against the stored order set for one
// platform account.
type engine struct {
	orders OrderStore
}

// reconcile applies candidates to the store: unseen orders are inserted,
// changed ones updated, unchanged ones skipped. When syncDeletes is set,
// stored orders dated inside [start, end] but absent from the candidate
// set are deleted, making the feed authoritative for the range.
func (e *engine) reconcile(ctx context.Context, userID, accountID int64, affiliate string, cands []Candidate, syncDeletes bool, start, end string) (*Stats, error) {
	var stats Stats
	seen := make(map[string]struct{}, len(cands))

	for _, c := range cands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seen[c.OrderID] = struct{}{}

		existing, err := e.orders.GetOrder(ctx, accountID, c.OrderID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			o := &store.Order{
				UserID:            userID,
				PlatformAccountID: accountID,
				OrderID:           c.OrderID,
				MerchantID:        c.MerchantID,
				MerchantName:      c.MerchantName,
				MerchantSlug:      c.MerchantSlug,
				OrderAmount:       c.Amount,
				Commission:        c.Commission,
				Status:            string(c.Status),
				OrderDate:         c.OrderDate,
				AffiliateName:     affiliate,
				RawData:           string(c.Raw),
			}
			if err := e.orders.InsertOrder(ctx, o); err != nil {
				return nil, err
			}
			stats.New++
			continue
		}

		if !changed(existing, c) {
			stats.Skipped++
			continue
		}
		existing.Status = string(c.Status)
		existing.Commission = c.Commission
		existing.OrderAmount = c.Amount
		existing.MerchantName = c.MerchantName
		existing.MerchantSlug = c.MerchantSlug
		existing.AffiliateName = affiliate
		existing.RawData = string(c.Raw)
		if err := e.orders.UpdateOrder(ctx, existing); err != nil {
			return nil, err
		}
		stats.Updated++
	}

	if syncDeletes {
		stored, err := e.orders.OrderIDsInRange(ctx, accountID, start, end)
		if err != nil {
			return nil, err
		}
		for _, id := range stored {
			if _, ok := seen[id]; ok {
				continue
			}
			if err := e.orders.DeleteOrder(ctx, accountID, id); err != nil {
				return nil, err
			}
			stats.Deleted++
		}
	}
	return &stats, nil
}

// changed reports whether a candidate warrants an update. Exactly three
// triggers: status differs, or amount or commission moved beyond the
// tolerance. Other fields are refreshed when an update happens anyway but
// never cause one on their own.
func changed(o *store.Order, c Candidate) bool {
	if o.Status != string(c.Status) {
		return true
	}
	if math.Abs(o.OrderAmount-c.Amount) > AmountTolerance {
		return true
	}
	return math.Abs(o.Commission-c.Commission) > AmountTolerance
}
