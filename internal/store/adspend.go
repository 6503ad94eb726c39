package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// CreateSheet registers a spend sheet as an import source.
func (s *Store) CreateSheet(ctx context.Context, sheet *SpendSheet) error {
	if err := s.db.WithContext(ctx).Create(sheet).Error; err != nil {
		return fmt.Errorf("store: creating spend sheet: %w", err)
	}
	return nil
}

// SheetsByUser lists a user's registered spend sheets, newest first.
func (s *Store) SheetsByUser(ctx context.Context, userID int64) ([]SpendSheet, error) {
	var sheets []SpendSheet
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sheets).Error
	if err != nil {
		return nil, fmt.Errorf("store: listing spend sheets: %w", err)
	}
	return sheets, nil
}

// SheetByID returns the sheet only if it belongs to userID; nil otherwise.
func (s *Store) SheetByID(ctx context.Context, userID, sheetID int64) (*SpendSheet, error) {
	var sheet SpendSheet
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sheetID, userID).
		First(&sheet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: looking up spend sheet: %w", err)
	}
	return &sheet, nil
}

// DeleteSheet removes a user's spend sheet. Returns false when no row
// matched.
func (s *Store) DeleteSheet(ctx context.Context, userID, sheetID int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sheetID, userID).
		Delete(&SpendSheet{})
	if res.Error != nil {
		return false, fmt.Errorf("store: deleting spend sheet: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetSpendRecord returns the row for (sheet, date, campaign), or nil.
func (s *Store) GetSpendRecord(ctx context.Context, sheetID int64, date, campaign string) (*AdSpendRecord, error) {
	var rec AdSpendRecord
	err := s.db.WithContext(ctx).
		Where("sheet_id = ? AND date = ? AND campaign_name = ?", sheetID, date, campaign).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: reading spend record: %w", err)
	}
	return &rec, nil
}

// InsertSpendRecord persists a newly imported spend row.
func (s *Store) InsertSpendRecord(ctx context.Context, rec *AdSpendRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("store: inserting spend record: %w", err)
	}
	return nil
}

// UpdateSpendRecord overwrites the metric fields of an existing spend row.
func (s *Store) UpdateSpendRecord(ctx context.Context, rec *AdSpendRecord) error {
	err := s.db.WithContext(ctx).
		Model(&AdSpendRecord{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"affiliate_name": rec.AffiliateName,
			"merchant_id":    rec.MerchantID,
			"merchant_slug":  rec.MerchantSlug,
			"budget":         rec.Budget,
			"currency":       rec.Currency,
			"impressions":    rec.Impressions,
			"clicks":         rec.Clicks,
			"cost":           rec.Cost,
		}).Error
	if err != nil {
		return fmt.Errorf("store: updating spend record: %w", err)
	}
	return nil
}

// SpendFilter narrows spend listings. Zero values mean "no constraint".
type SpendFilter struct {
	StartDate  string
	EndDate    string
	SheetID    int64
	Affiliates []string // case-insensitive affiliate label filter
	Limit      int
}

// SpendByUser lists a user's imported spend rows, newest date first.
func (s *Store) SpendByUser(ctx context.Context, userID int64, f SpendFilter) ([]AdSpendRecord, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.StartDate != "" {
		q = q.Where("date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		q = q.Where("date <= ?", f.EndDate)
	}
	if f.SheetID != 0 {
		q = q.Where("sheet_id = ?", f.SheetID)
	}
	if len(f.Affiliates) > 0 {
		lowered := make([]string, len(f.Affiliates))
		for i, a := range f.Affiliates {
			lowered[i] = strings.ToLower(a)
		}
		q = q.Where("LOWER(affiliate_name) IN ?", lowered)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}

	var rows []AdSpendRecord
	if err := q.Order("date DESC, campaign_name ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: listing spend records: %w", err)
	}
	return rows, nil
}
