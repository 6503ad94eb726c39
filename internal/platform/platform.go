// Package platform implements the partner adapters: one per affiliate
// network, each translating that partner's wire format, authentication
// scheme, and status vocabulary into the shared line-item shape.
package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Platform identifiers, also the values stored on PlatformAccount.Platform.
const (
	LinkHaitaoName   = "linkhaitao"
	PartnerMaticName = "partnermatic"
	LinkBuxName      = "linkbux"
	RewardooName     = "rewardoo"
)

// Status is the canonical three-state order status every partner vocabulary
// maps onto. Unrecognized partner values default to Pending.
type Status string

// Canonical statuses.
const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Account carries the credentials an adapter needs for one collection run.
// Password is already decrypted by the caller; adapters never see
// ciphertext.
type Account struct {
	ID            int64
	Name          string
	Password      string
	APIToken      string
	AffiliateName string
}

// LineItem is one raw partner record with its normalized fields attached.
// Several line items may share an OrderID (multi-line invoices); merging
// them is the aggregator's job, not the adapter's.
type LineItem struct {
	OrderID      string
	MerchantID   string
	MerchantName string
	Amount       float64
	Commission   float64
	Status       Status
	OrderDate    string // YYYY-MM-DD
	Raw          []byte // source record as received, retained for audit
}

// Adapter converts one partner's API into normalized line items.
type Adapter interface {
	// Platform returns the partner identifier.
	Platform() string

	// SyncDeletes reports whether this partner's feed replaces the store
	// for the requested range: orders stored in-range but absent from the
	// fetch are deleted by the reconciliation engine.
	SyncDeletes() bool

	// Collect authenticates and fetches all line items for the date range
	// (inclusive, YYYY-MM-DD).
	Collect(ctx context.Context, account Account, startDate, endDate string) ([]LineItem, error)
}

// TokenStore caches issued login tokens per platform account. Expiry is
// checked by Get at read time; nothing is ever evicted.
type TokenStore interface {
	Get(ctx context.Context, accountID int64) (token string, ok bool, err error)
	Put(ctx context.Context, accountID int64, token string, expiry time.Time) error
}

// Recognizer resolves a visual login challenge to its 4-character code. The
// actual recognition (OCR service, subprocess) lives outside this package.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Failure taxonomy.
var (
	// ErrAuthFailed means login attempts were exhausted or a required
	// credential is missing from the account.
	ErrAuthFailed = errors.New("platform: authentication failed")

	// ErrRecognition means the challenge recognizer returned an invalid or
	// wrong-length code.
	ErrRecognition = errors.New("platform: challenge recognition failed")
)

// UpstreamError is a partner-reported failure: a non-success response code,
// a malformed payload, or a transport error talking to the partner.
type UpstreamError struct {
	Platform string
	Code     string
	Message  string
	cause    error
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s API error: %s (code: %s)", e.Platform, e.Message, e.Code)
	}
	return fmt.Sprintf("%s API error: %s", e.Platform, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.cause }

func upstreamErr(platform, code, message string, cause error) *UpstreamError {
	return &UpstreamError{Platform: platform, Code: code, Message: message, cause: cause}
}

// defaultClient is shared by adapters constructed without an explicit HTTP
// client. Partner APIs can be slow; the timeout is generous.
var defaultClient = &http.Client{Timeout: 60 * time.Second}

func orClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return defaultClient
}
