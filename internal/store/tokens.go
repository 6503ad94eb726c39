package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Get returns the most recently issued token for the account. The second
// return is false on a miss or when the token has expired; expired rows are
// left in place, staleness is only detected here at read time.
//
// Together with Put this implements platform.TokenStore.
func (s *Store) Get(ctx context.Context, accountID int64) (string, bool, error) {
	var t PlatformToken
	err := s.db.WithContext(ctx).
		Where("platform_account_id = ?", accountID).
		Order("created_at DESC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: reading token: %w", err)
	}
	if !t.ExpireTime.After(time.Now()) {
		return "", false, nil
	}
	return t.Token, true, nil
}

// Put records a freshly issued token with its declared expiry.
func (s *Store) Put(ctx context.Context, accountID int64, token string, expiry time.Time) error {
	row := PlatformToken{
		PlatformAccountID: accountID,
		Token:             token,
		ExpireTime:        expiry,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("store: saving token: %w", err)
	}
	return nil
}
