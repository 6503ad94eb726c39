package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// LinkBux collects from the LinkBux transaction API using a static token
// passed as a query parameter.
type LinkBux struct {
	BaseURL string
	HTTP    *http.Client
}

// NewLinkBux builds the adapter with the production base URL.
func NewLinkBux() *LinkBux {
	return &LinkBux{BaseURL: "https://www.linkbux.com"}
}

// Platform implements Adapter.
func (lb *LinkBux) Platform() string { return LinkBuxName }

// SyncDeletes implements Adapter. LinkBux feeds merge additively.
func (lb *LinkBux) SyncDeletes() bool { return false }

// Collect implements Adapter.
func (lb *LinkBux) Collect(ctx context.Context, account Account, startDate, endDate string) ([]LineItem, error) {
	if account.APIToken == "" {
		return nil, fmt.Errorf("%w: LinkBux account has no API token", ErrAuthFailed)
	}

	params := url.Values{
		"token":      {account.APIToken},
		"begin_date": {startDate},
		"end_date":   {endDate},
		"type":       {"json"},
		"status":     {"All"},
		"limit":      {"2000"},
	}
	body, err := getBytes(ctx, orClient(lb.HTTP), lb.BaseURL+"/api.php?mod=medium&op=transaction_v2&"+params.Encode(), LinkBuxName)
	if err != nil {
		return nil, err
	}

	var env mediumEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, upstreamErr(LinkBuxName, "", "malformed response: "+err.Error(), err)
	}
	if !env.success() || env.Data == nil {
		code, msg := env.errParts()
		return nil, upstreamErr(LinkBuxName, code, msg, nil)
	}

	raws := env.records()
	items := make([]LineItem, 0, len(raws))
	for _, raw := range raws {
		var rec mediumRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		items = append(items, normalizeMedium(raw, rec, rec.LinkbuxID.String()))
	}
	return items, nil
}
