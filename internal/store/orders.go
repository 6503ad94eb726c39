package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GetOrder returns the persisted order for (account, order id), or nil when
// it has not been seen before.
func (s *Store) GetOrder(ctx context.Context, accountID int64, orderID string) (*Order, error) {
	var o Order
	err := s.db.WithContext(ctx).
		Where("platform_account_id = ? AND order_id = ?", accountID, orderID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: reading order: %w", err)
	}
	return &o, nil
}

// InsertOrder persists a first-sighted order.
func (s *Store) InsertOrder(ctx context.Context, o *Order) error {
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("store: inserting order: %w", err)
	}
	return nil
}

// UpdateOrder overwrites the mutable fields of an existing order row. The
// order identifier and creation metadata are left untouched.
func (s *Store) UpdateOrder(ctx context.Context, o *Order) error {
	err := s.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{
			"status":         o.Status,
			"commission":     o.Commission,
			"order_amount":   o.OrderAmount,
			"merchant_name":  o.MerchantName,
			"merchant_slug":  o.MerchantSlug,
			"affiliate_name": o.AffiliateName,
			"raw_data":       o.RawData,
		}).Error
	if err != nil {
		return fmt.Errorf("store: updating order: %w", err)
	}
	return nil
}

// DeleteOrder removes one order by its composite key.
func (s *Store) DeleteOrder(ctx context.Context, accountID int64, orderID string) error {
	err := s.db.WithContext(ctx).
		Where("platform_account_id = ? AND order_id = ?", accountID, orderID).
		Delete(&Order{}).Error
	if err != nil {
		return fmt.Errorf("store: deleting order: %w", err)
	}
	return nil
}

// OrderIDsInRange lists the order identifiers the store holds for an
// account with order dates inside [start, end]. Used by delete-syncing
// adapters to find rows absent from the latest fetch.
func (s *Store) OrderIDsInRange(ctx context.Context, accountID int64, start, end string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&Order{}).
		Where("platform_account_id = ? AND order_date >= ? AND order_date <= ?", accountID, start, end).
		Pluck("order_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("store: listing order ids: %w", err)
	}
	return ids, nil
}

// OrderFilter narrows order listings. Zero values mean "no constraint".
type OrderFilter struct {
	StartDate  string
	EndDate    string
	AccountID  int64
	AccountIDs []int64
	Limit      int
}

// OrdersByUser lists a user's orders, newest order date first.
func (s *Store) OrdersByUser(ctx context.Context, userID int64, f OrderFilter) ([]Order, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.StartDate != "" {
		q = q.Where("order_date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		q = q.Where("order_date <= ?", f.EndDate)
	}
	if f.AccountID != 0 {
		q = q.Where("platform_account_id = ?", f.AccountID)
	}
	if len(f.AccountIDs) > 0 {
		q = q.Where("platform_account_id IN ?", f.AccountIDs)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}

	var orders []Order
	if err := q.Order("order_date DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("store: listing orders: %w", err)
	}
	return orders, nil
}

// OrderTotals are aggregate figures over a set of orders.
type OrderTotals struct {
	TotalOrders         int64   `json:"total_orders"`
	TotalAmount         float64 `json:"total_amount"`
	TotalCommission     float64 `json:"total_commission"`
	ConfirmedCommission float64 `json:"confirmed_commission"`
	PendingCommission   float64 `json:"pending_commission"`
	RejectedCommission  float64 `json:"rejected_commission"`
}

// OrderTotalsByUser computes dashboard totals, with commission split by
// status.
func (s *Store) OrderTotalsByUser(ctx context.Context, userID int64, f OrderFilter) (*OrderTotals, error) {
	q := s.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", userID)
	if f.StartDate != "" {
		q = q.Where("order_date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		q = q.Where("order_date <= ?", f.EndDate)
	}
	if f.AccountID != 0 {
		q = q.Where("platform_account_id = ?", f.AccountID)
	}

	var totals OrderTotals
	err := q.Select(
		"COUNT(*) AS total_orders, " +
			"COALESCE(SUM(order_amount), 0) AS total_amount, " +
			"COALESCE(SUM(commission), 0) AS total_commission, " +
			"COALESCE(SUM(CASE WHEN status = 'Approved' THEN commission ELSE 0 END), 0) AS confirmed_commission, " +
			"COALESCE(SUM(CASE WHEN status = 'Pending' THEN commission ELSE 0 END), 0) AS pending_commission, " +
			"COALESCE(SUM(CASE WHEN status = 'Rejected' THEN commission ELSE 0 END), 0) AS rejected_commission").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("store: computing order totals: %w", err)
	}
	return &totals, nil
}
