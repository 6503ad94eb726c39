package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afflux-io/afflux/internal/platform"
	"github.com/afflux-io/afflux/internal/store"
)

// fakeOrders is an in-memory OrderStore keyed by (account, order id).
type fakeOrders struct {
	rows   map[int64]map[string]*store.Order
	nextID int64
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{rows: make(map[int64]map[string]*store.Order)}
}

func (f *fakeOrders) GetOrder(_ context.Context, accountID int64, orderID string) (*store.Order, error) {
	o, ok := f.rows[accountID][orderID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) InsertOrder(_ context.Context, o *store.Order) error {
	f.nextID++
	o.ID = f.nextID
	if f.rows[o.PlatformAccountID] == nil {
		f.rows[o.PlatformAccountID] = make(map[string]*store.Order)
	}
	cp := *o
	f.rows[o.PlatformAccountID][o.OrderID] = &cp
	return nil
}

func (f *fakeOrders) UpdateOrder(_ context.Context, o *store.Order) error {
	for _, byOrder := range f.rows {
		for _, row := range byOrder {
			if row.ID == o.ID {
				row.Status = o.Status
				row.Commission = o.Commission
				row.OrderAmount = o.OrderAmount
				row.MerchantName = o.MerchantName
				row.MerchantSlug = o.MerchantSlug
				row.AffiliateName = o.AffiliateName
				row.RawData = o.RawData
				return nil
			}
		}
	}
	return errors.New("order not found")
}

func (f *fakeOrders) DeleteOrder(_ context.Context, accountID int64, orderID string) error {
	delete(f.rows[accountID], orderID)
	return nil
}

func (f *fakeOrders) OrderIDsInRange(_ context.Context, accountID int64, start, end string) ([]string, error) {
	var ids []string
	for id, o := range f.rows[accountID] {
		if o.OrderDate >= start && o.OrderDate <= end {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// stubAdapter returns canned line items.
type stubAdapter struct {
	name    string
	deletes bool
	items   []platform.LineItem
	err     error
	calls   int
}

func (s *stubAdapter) Platform() string  { return s.name }
func (s *stubAdapter) SyncDeletes() bool { return s.deletes }
func (s *stubAdapter) Collect(context.Context, platform.Account, string, string) ([]platform.LineItem, error) {
	s.calls++
	return s.items, s.err
}

func item(orderID string, amount, comm float64, status platform.Status) platform.LineItem {
	return platform.LineItem{
		OrderID: orderID, MerchantID: "71017", MerchantName: "Champion US",
		Amount: amount, Commission: comm, Status: status,
		OrderDate: "2024-08-10", Raw: []byte(`{"order_id":"` + orderID + `"}`),
	}
}

func job(accountID int64) Job {
	return Job{Account: store.PlatformAccount{
		ID: accountID, UserID: 7, Platform: "stub",
		AccountName: "acct", AffiliateName: "pm1",
	}}
}

func TestAggregateMergesLineItems(t *testing.T) {
	cands, dropped := aggregate([]platform.LineItem{
		item("A", 10, 1, platform.StatusPending),
		item("B", 5, 0.5, platform.StatusApproved),
		item("A", 7, 0.2, platform.StatusApproved), // merged into A
		{MerchantID: "x"},                          // no order id, dropped
	})
	require.Len(t, cands, 2)
	assert.Equal(t, 1, dropped)

	a := cands[0]
	assert.Equal(t, "A", a.OrderID)
	assert.InDelta(t, 17.0, a.Amount, 1e-9)
	assert.InDelta(t, 1.2, a.Commission, 1e-9)
	assert.Equal(t, platform.StatusPending, a.Status, "first item fixes the status")
	assert.Equal(t, "championus", a.MerchantSlug)
	assert.Equal(t, "B", cands[1].OrderID)
}

func TestCollectInsertUpdateSkip(t *testing.T) {
	orders := newFakeOrders()
	adapter := &stubAdapter{name: "stub", items: []platform.LineItem{
		item("A", 10, 1, platform.StatusPending),
	}}
	c := New(orders, nil, adapter)
	c.Pause = 0

	stats, err := c.Collect(context.Background(), job(1), "2024-08-01", "2024-08-31")
	require.NoError(t, err)
	assert.Equal(t, &Stats{New: 1}, stats)

	stored := orders.rows[1]["A"]
	require.NotNil(t, stored)
	assert.Equal(t, int64(7), stored.UserID)
	assert.Equal(t, "pm1", stored.AffiliateName)
	assert.Equal(t, store.StatusPending, stored.Status)

	// Same feed again: nothing changed.
	stats, err = c.Collect(context.Background(), job(1), "2024-08-01", "2024-08-31")
	require.NoError(t, err)
	assert.Equal(t, &Stats{Skipped: 1}, stats)

	// Status flips: update.
	adapter.items = []platform.LineItem{item("A", 10, 1, platform.StatusApproved)}
	stats, err = c.Collect(context.Background(), job(1), "2024-08-01", "2024-08-31")
	require.NoError(t, err)
	assert.Equal(t, &Stats{Updated: 1}, stats)
	assert.Equal(t, store.StatusApproved, orders.rows[1]["A"].Status)
}

func TestCollectAffiliateChangeAloneSkips(t *testing.T) {
	orders := newFakeOrders()
	adapter := &stubAdapter{name: "stub", items: []platform.LineItem{
		item("A", 10, 1, platform.StatusPending),
	}}
	c := New(orders, nil, adapter)

	_, err := c.Collect(context.Background(), job(1), "2024-08-01", "2024-08-31")
	require.NoError(t, err)
	assert.Equal(t, "pm1", orders.rows[1]["A"].AffiliateName)

	// Only the account's affiliate label changed; the feed itself did not.
	// Status, amount, and commission are the only update triggers, so the
	// stored row stays as it was.
	relabeled := job(1)
	relabeled.Account.AffiliateName = "pm2"
	stats, err := c.Collect(context.Background(), relabeled, "2024-08-01", "2024-08-31")
	require.NoError(t, err)
	assert.Equal(t, &Stats{Skipped: 1}, stats)
	assert.Equal(t, "pm1", orders.rows[1]["A"].AffiliateName)

	// Once a real trigger fires, the update carries the new label along.
	adapter.items = []platform.LineItem{item("A", 10, 1, platform.StatusApproved)}
	stats, err = c.Collect(context.Background(), relabeled, "2024-08-01", "2024-08-31")
	require.NoError(t, err)
	assert.Equal(t, &Stats{Updated: 1}, stats)
	assert.Equal(t, "pm2", orders.rows[1]["A"].AffiliateName)
}

func TestCollectCountsDroppedItems(t *testing.T) {
	orders := newFakeOrders()
	adapter := &stubAdapter{name: "stub", items: []platform.LineItem{
		item("A", 10, 1, platform.StatusPending),
		{MerchantID: "x", Amount: 5}, // no order id
	}}
	c := New(orders, nil, adapter)

	stats, err := c.Collect(context.Background(), job(1), "2024-08-01", "2024-08-31")
	require.NoError(t, err)
	assert.Equal(t, &Stats{New: 1, Dropped: 1}, stats)
}

func TestCollectAmountTolerance(t *testing.T) {
	orders := newFakeOrders()
	adapter := &stubAdapter{name: "stub", items: []platform.LineItem{
		item("A", 10.00, 1.00, platform.StatusPending),
	}}
	c := New(orders, nil, adapter)

	_, err := c.Collect(context.Background(), job(1), "2024-08-01", "2024-08-31")
	require.NoError(t, err)

	// Within tolerance: skip.
	adapter.items = []platform.LineItem{item("A", 10.005, 1.00, platform.StatusPending)}
	stats, err := c.Collect(context.Background(), job(1), "2024-08-01", "2024-08-31")
	require.NoError(t, err)
	assert.Equal(t, &Stats{Skipped: 1}, stats)
	assert.InDelta(t, 10.00, orders.rows[1]["A"].OrderAmount, 1e-9, "skipped rows keep the stored amount")

	// Beyond tolerance: update.
	adapter.items = []platform.LineItem{item("A", 10.02, 1.00, platform.StatusPending)}
	stats, err = c.Collect(context.Background(), job(1), "2024-08-01", "2024-08-31")
	require.NoError(t, err)
	assert.Equal(t, &Stats{Updated: 1}, stats)
	assert.InDelta(t, 10.02, orders.rows[1]["A"].OrderAmount, 1e-9)
}

func TestCollectDeleteSync(t *testing.T) {
	orders := newFakeOrders()
	adapter := &stubAdapter{name: "stub", deletes: true, items: []platform.LineItem{
		item("A", 10, 1, platform.StatusPending),
		item("B", 5, 0.5, platform.StatusPending),
	}}
	c := New(orders, nil, adapter)

	_, err := c.Collect(context.Background(), job(1), "2024-08-01", "2024-08-31")
	require.NoError(t, err)
	require.Len(t, orders.rows[1], 2)

	// B drops out of the feed: the range is authoritative, B goes.
	adapter.items = []platform.LineItem{item("A", 10, 1, platform.StatusPending)}
	stats, err := c.Collect(context.Background(), job(1), "2024-08-01", "2024-08-31")
	require.NoError(t, err)
	assert.Equal(t, &Stats{Skipped: 1, Deleted: 1}, stats)
	assert.NotContains(t, orders.rows[1], "B")

	// An order dated outside the requested range survives.
	old := &store.Order{UserID: 7, PlatformAccountID: 1, OrderID: "OLD", OrderDate: "2024-07-01", Status: store.StatusPending}
	require.NoError(t, orders.InsertOrder(context.Background(), old))
	stats, err = c.Collect(context.Background(), job(1), "2024-08-01", "2024-08-31")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Deleted)
	assert.Contains(t, orders.rows[1], "OLD")
}

func TestCollectNoDeleteSyncForAdditiveAdapters(t *testing.T) {
	orders := newFakeOrders()
	adapter := &stubAdapter{name: "stub", deletes: false, items: []platform.LineItem{
		item("A", 10, 1, platform.StatusPending),
		item("B", 5, 0.5, platform.StatusPending),
	}}
	c := New(orders, nil, adapter)

	_, err := c.Collect(context.Background(), job(1), "2024-08-01", "2024-08-31")
	require.NoError(t, err)

	adapter.items = []platform.LineItem{item("A", 10, 1, platform.StatusPending)}
	stats, err := c.Collect(context.Background(), job(1), "2024-08-01", "2024-08-31")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Deleted)
	assert.Contains(t, orders.rows[1], "B")
}

func TestCollectUnsupportedPlatform(t *testing.T) {
	c := New(newFakeOrders(), nil)
	j := job(1)
	j.Account.Platform = "unknown"
	_, err := c.Collect(context.Background(), j, "2024-08-01", "2024-08-31")
	require.Error(t, err)
}

func TestCollectAllIsolatesFailures(t *testing.T) {
	orders := newFakeOrders()
	good := &stubAdapter{name: "good", items: []platform.LineItem{item("A", 10, 1, platform.StatusPending)}}
	bad := &stubAdapter{name: "bad", err: platform.ErrAuthFailed}
	c := New(orders, nil, good, bad)
	c.Pause = time.Millisecond

	jobs := []Job{job(1), job(2)}
	jobs[0].Account.Platform = "good"
	jobs[1].Account.Platform = "bad"

	results := c.CollectAll(context.Background(), jobs, "2024-08-01", "2024-08-31")
	require.Len(t, results, 2)

	assert.Empty(t, results[0].Error)
	require.NotNil(t, results[0].Stats)
	assert.Equal(t, 1, results[0].Stats.New)

	assert.Nil(t, results[1].Stats)
	assert.Contains(t, results[1].Error, "authentication failed")
	assert.Equal(t, 1, good.calls)
	assert.Equal(t, 1, bad.calls)
}
