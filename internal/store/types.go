// Package store is the persistent layer: gorm models and the repositories
// the engine reads and writes through.
package store

import "time"

// Order statuses. Partner vocabularies are mapped onto these three values
// before anything is persisted.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// User owns platform accounts, orders, and spend sheets.
type User struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Username     string `gorm:"size:100;not null" json:"username"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// PlatformAccount is one user's credential set for one affiliate partner.
// Either APIToken (long-lived partner token) or EncryptedPassword
// (simulated-login partners) is set.
type PlatformAccount struct {
	ID                int64  `gorm:"primaryKey" json:"id"`
	UserID            int64  `gorm:"not null;index;uniqueIndex:idx_account_unique" json:"user_id"`
	Platform          string `gorm:"size:32;not null;uniqueIndex:idx_account_unique" json:"platform"`
	AccountName       string `gorm:"size:255;not null;uniqueIndex:idx_account_unique" json:"account_name"`
	EncryptedPassword string `gorm:"size:512" json:"-"`
	APIToken          string `gorm:"size:512" json:"-"`
	AffiliateName     string `gorm:"size:100" json:"affiliate_name"`
	IsActive          bool   `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"-"`
}

// Order is the canonical, deduplicated commission record. Composite-unique
// on (platform account, order id); amounts are non-negative and compared
// with an absolute 0.01 tolerance.
type Order struct {
	ID                int64   `gorm:"primaryKey" json:"id"`
	UserID            int64   `gorm:"not null;index" json:"user_id"`
	PlatformAccountID int64   `gorm:"not null;index;uniqueIndex:idx_order_unique" json:"platform_account_id"`
	OrderID           string  `gorm:"size:128;not null;uniqueIndex:idx_order_unique" json:"order_id"`
	MerchantID        string  `gorm:"size:128;index" json:"merchant_id"`
	MerchantName      string  `gorm:"size:255" json:"merchant_name"`
	MerchantSlug      string  `gorm:"size:255;index" json:"merchant_slug"`
	OrderAmount       float64 `gorm:"not null;default:0" json:"order_amount"`
	Commission        float64 `gorm:"not null;default:0" json:"commission"`
	Status            string  `gorm:"size:16;not null;index" json:"status"`
	OrderDate         string  `gorm:"size:10;index" json:"order_date"`
	AffiliateName     string  `gorm:"size:100" json:"affiliate_name"`
	RawData           string  `gorm:"type:text" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PlatformToken is an issued login token for a platform account. Multiple
// rows may exist per account; only the most recent one is consulted, and
// expiry is checked at read time rather than by eviction.
type PlatformToken struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	PlatformAccountID int64     `gorm:"not null;index" json:"platform_account_id"`
	Token             string    `gorm:"size:512;not null" json:"-"`
	ExpireTime        time.Time `json:"expire_time"`
	CreatedAt         time.Time `json:"created_at"`
}

// SpendSheet registers one external spreadsheet as a CSV import source.
type SpendSheet struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	UserID      int64  `gorm:"not null;index" json:"user_id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	URL         string `gorm:"size:1024;not null" json:"url"`
	SheetKey    string `gorm:"size:128;not null" json:"sheet_key"`
	Description string `gorm:"size:1024" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// AdSpendRecord is one imported advertising row: cost, impressions, and
// clicks for one campaign on one date. Unique on (sheet, date, campaign).
type AdSpendRecord struct {
	ID            int64   `gorm:"primaryKey" json:"id"`
	UserID        int64   `gorm:"not null;index" json:"user_id"`
	SheetID       int64   `gorm:"not null;index;uniqueIndex:idx_spend_unique" json:"sheet_id"`
	Date          string  `gorm:"size:10;not null;uniqueIndex:idx_spend_unique" json:"date"`
	CampaignName  string  `gorm:"size:255;not null;uniqueIndex:idx_spend_unique" json:"campaign_name"`
	AffiliateName string  `gorm:"size:100;index" json:"affiliate_name"`
	MerchantID    string  `gorm:"size:128;index" json:"merchant_id"`
	MerchantSlug  string  `gorm:"size:255;index" json:"merchant_slug"`
	Budget        float64 `gorm:"not null;default:0" json:"budget"`
	Currency      string  `gorm:"size:8" json:"currency"`
	Impressions   int64   `gorm:"not null;default:0" json:"impressions"`
	Clicks        int64   `gorm:"not null;default:0" json:"clicks"`
	Cost          float64 `gorm:"not null;default:0" json:"cost"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
