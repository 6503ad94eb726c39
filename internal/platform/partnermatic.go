package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// PartnerMatic collects from the PartnerMatic performance API. It uses a
// static bearer token and is the one partner whose feed is treated as the
// source of truth: stored orders in the requested range that the feed no
// longer reports get deleted.
type PartnerMatic struct {
	BaseURL string
	HTTP    *http.Client

	// SyncDelete controls delete-reconciliation; on by default. Exposed so
	// the sync-to-source behavior is a per-adapter choice rather than a
	// hard-coded platform name in the engine.
	SyncDelete bool
}

// NewPartnerMatic builds the adapter with the production base URL.
func NewPartnerMatic() *PartnerMatic {
	return &PartnerMatic{BaseURL: "https://api.partnermatic.com", SyncDelete: true}
}

// Platform implements Adapter.
func (pm *PartnerMatic) Platform() string { return PartnerMaticName }

// SyncDeletes implements Adapter.
func (pm *PartnerMatic) SyncDeletes() bool { return pm.SyncDelete }

type pmEnvelope struct {
	Code    flexString `json:"code"`
	Message string     `json:"message"`
	Data    *struct {
		Total flexInt           `json:"total"`
		List  []json.RawMessage `json:"list"`
	} `json:"data"`
}

type pmRecord struct {
	OrderID      flexString `json:"order_id"`
	BrandID      flexString `json:"brand_id"`
	MerchantName string     `json:"merchant_name"`
	SaleAmount   flexFloat  `json:"sale_amount"`
	SaleComm     flexFloat  `json:"sale_comm"`
	Status       string     `json:"status"`
	OrderTime    flexString `json:"order_time"`
}

// Collect implements Adapter.
func (pm *PartnerMatic) Collect(ctx context.Context, account Account, startDate, endDate string) ([]LineItem, error) {
	if account.APIToken == "" {
		return nil, fmt.Errorf("%w: PartnerMatic account has no API token", ErrAuthFailed)
	}

	payload, _ := json.Marshal(map[string]any{
		"source":    "partnermatic",
		"token":     account.APIToken,
		"dataScope": "user",
		"beginDate": startDate,
		"endDate":   endDate,
		"curPage":   1,
		"perPage":   2000,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pm.BaseURL+"/report/performance", bytes.NewReader(payload))
	if err != nil {
		return nil, upstreamErr(PartnerMaticName, "", err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+account.APIToken)

	body, err := doRequest(ctx, orClient(pm.HTTP), req, PartnerMaticName)
	if err != nil {
		return nil, err
	}

	var env pmEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, upstreamErr(PartnerMaticName, "", "malformed response: "+err.Error(), err)
	}
	if env.Code.String() != "0" || env.Data == nil {
		msg := env.Message
		if msg == "" {
			msg = "data fetch failed"
		}
		return nil, upstreamErr(PartnerMaticName, env.Code.String(), msg, nil)
	}

	items := make([]LineItem, 0, len(env.Data.List))
	for _, raw := range env.Data.List {
		var rec pmRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		items = append(items, LineItem{
			OrderID:      rec.OrderID.String(),
			MerchantID:   rec.BrandID.String(),
			MerchantName: rec.MerchantName,
			Amount:       money(rec.SaleAmount),
			Commission:   money(rec.SaleComm),
			Status:       mapPMStatus(rec.Status),
			OrderDate:    dateOnly(rec.OrderTime),
			Raw:          raw,
		})
	}
	return items, nil
}

func mapPMStatus(s string) Status {
	switch s {
	case "Approved":
		return StatusApproved
	case "Rejected", "Canceled":
		return StatusRejected
	default:
		return StatusPending
	}
}
