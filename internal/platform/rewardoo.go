package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Rewardoo collects from the Rewardoo transaction API. Same API family as
// LinkBux; the token travels in a form-encoded POST body instead of the
// query string.
type Rewardoo struct {
	BaseURL string
	HTTP    *http.Client
}

// NewRewardoo builds the adapter with the production base URL.
func NewRewardoo() *Rewardoo {
	return &Rewardoo{BaseURL: "https://admin.rewardoo.com"}
}

// Platform implements Adapter.
func (rw *Rewardoo) Platform() string { return RewardooName }

// SyncDeletes implements Adapter. Rewardoo feeds merge additively.
func (rw *Rewardoo) SyncDeletes() bool { return false }

// Collect implements Adapter.
func (rw *Rewardoo) Collect(ctx context.Context, account Account, startDate, endDate string) ([]LineItem, error) {
	if account.APIToken == "" {
		return nil, fmt.Errorf("%w: Rewardoo account has no API token", ErrAuthFailed)
	}

	form := url.Values{
		"token":      {account.APIToken},
		"begin_date": {startDate},
		"end_date":   {endDate},
		"page":       {"1"},
		"limit":      {"1000"},
	}
	body, err := postForm(ctx, orClient(rw.HTTP), rw.BaseURL+"/api.php?mod=medium&op=transaction_details", form, nil, RewardooName)
	if err != nil {
		return nil, err
	}

	var env mediumEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, upstreamErr(RewardooName, "", "malformed response: "+err.Error(), err)
	}
	if !env.success() || env.Data == nil {
		code, msg := env.errParts()
		return nil, upstreamErr(RewardooName, code, msg, nil)
	}

	raws := env.records()
	items := make([]LineItem, 0, len(raws))
	for _, raw := range raws {
		var rec mediumRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		items = append(items, normalizeMedium(raw, rec, rec.RewardooID.String()))
	}
	return items, nil
}
