package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// CreateAccount inserts a platform account. Uniqueness on
// (user, platform, account name) is enforced by the schema.
func (s *Store) CreateAccount(ctx context.Context, a *PlatformAccount) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("store: creating platform account: %w", err)
	}
	return nil
}

// AccountsByUser lists a user's platform accounts.
func (s *Store) AccountsByUser(ctx context.Context, userID int64) ([]PlatformAccount, error) {
	var accounts []PlatformAccount
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("store: listing platform accounts: %w", err)
	}
	return accounts, nil
}

// AccountByID returns the account only if it belongs to userID; nil when
// absent or owned by someone else.
func (s *Store) AccountByID(ctx context.Context, userID, accountID int64) (*PlatformAccount, error) {
	var a PlatformAccount
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", accountID, userID).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: looking up platform account: %w", err)
	}
	return &a, nil
}

// AccountsByIDs returns the subset of the given accounts owned by userID.
func (s *Store) AccountsByIDs(ctx context.Context, userID int64, ids []int64) ([]PlatformAccount, error) {
	var accounts []PlatformAccount
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("store: listing platform accounts by id: %w", err)
	}
	return accounts, nil
}

// DeleteAccount removes a user's platform account. Returns false when no
// row matched (absent or not owned).
func (s *Store) DeleteAccount(ctx context.Context, userID, accountID int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", accountID, userID).
		Delete(&PlatformAccount{})
	if res.Error != nil {
		return false, fmt.Errorf("store: deleting platform account: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
