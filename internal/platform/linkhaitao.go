package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LinkHaitao collects from the LinkHaitao network. Accounts with a static
// API token use the medium cashback endpoint; accounts without one fall
// back to the legacy simulated-login flow, which requires resolving a
// visual challenge and caches the issued token in the TokenStore.
type LinkHaitao struct {
	BaseURL    string
	HTTP       *http.Client
	Tokens     TokenStore
	Recognizer Recognizer
	Logger     *slog.Logger
}

// NewLinkHaitao builds the adapter with the production base URL.
func NewLinkHaitao(tokens TokenStore, recognizer Recognizer, logger *slog.Logger) *LinkHaitao {
	return &LinkHaitao{
		BaseURL:    "https://www.linkhaitao.com",
		Tokens:     tokens,
		Recognizer: recognizer,
		Logger:     logger,
	}
}

// Platform implements Adapter.
func (lh *LinkHaitao) Platform() string { return LinkHaitaoName }

// SyncDeletes implements Adapter. LinkHaitao feeds merge additively.
func (lh *LinkHaitao) SyncDeletes() bool { return false }

// maxLoginAttempts bounds the simulated-login retry loop.
const maxLoginAttempts = 5

// Collect implements Adapter.
func (lh *LinkHaitao) Collect(ctx context.Context, account Account, startDate, endDate string) ([]LineItem, error) {
	if account.APIToken != "" {
		return lh.collectWithToken(ctx, account, startDate, endDate)
	}
	return lh.collectWithLogin(ctx, account, startDate, endDate)
}

// ---- API-token path ----

type lhTokenEnvelope struct {
	Status struct {
		Code flexInt `json:"code"`
		Msg  string  `json:"msg"`
	} `json:"status"`
	Data *struct {
		List []json.RawMessage `json:"list"`
	} `json:"data"`
}

type lhAPIRecord struct {
	OrderID        flexString `json:"order_id"`
	SignID         flexString `json:"sign_id"`
	MerchantID     flexString `json:"m_id"`
	AdvertiserName string     `json:"advertiser_name"`
	SaleAmount     flexFloat  `json:"sale_amount"`
	Cashback       flexFloat  `json:"cashback"`
	Status         string     `json:"status"`
	OrderTime      flexString `json:"order_time"`
}

func (lh *LinkHaitao) collectWithToken(ctx context.Context, account Account, startDate, endDate string) ([]LineItem, error) {
	params := url.Values{
		"token":      {account.APIToken},
		"begin_date": {startDate},
		"end_date":   {endDate},
		"page":       {"1"},
		"per_page":   {"4000"},
	}
	body, err := getBytes(ctx, orClient(lh.HTTP), lh.BaseURL+"/api.php?mod=medium&op=cashback2&"+params.Encode(), LinkHaitaoName)
	if err != nil {
		return nil, err
	}

	var env lhTokenEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, upstreamErr(LinkHaitaoName, "", "malformed response: "+err.Error(), err)
	}
	if env.Status.Code != 0 || env.Data == nil {
		msg := env.Status.Msg
		if msg == "" {
			msg = "data fetch failed"
		}
		return nil, upstreamErr(LinkHaitaoName, strconv.Itoa(int(env.Status.Code)), msg, nil)
	}

	items := make([]LineItem, 0, len(env.Data.List))
	for _, raw := range env.Data.List {
		var rec lhAPIRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		orderID := rec.OrderID.String()
		if orderID == "" {
			orderID = rec.SignID.String()
		}
		items = append(items, LineItem{
			OrderID:      orderID,
			MerchantID:   rec.MerchantID.String(),
			MerchantName: rec.AdvertiserName,
			Amount:       money(rec.SaleAmount),
			Commission:   money(rec.Cashback),
			Status:       mapLHStatus(rec.Status),
			OrderDate:    dateOnly(rec.OrderTime),
			Raw:          raw,
		})
	}
	return items, nil
}

// ---- simulated-login path ----

type lhLoginResponse struct {
	Code    flexString `json:"code"`
	Msg     string     `json:"msg"`
	ErrorNo string     `json:"error_no"`
	Payload *struct {
		AuthToken  string     `json:"auth_token"`
		UID        flexString `json:"uid"`
		ExpireTime flexString `json:"expire_time"`
	} `json:"payload"`
}

type lhReportEnvelope struct {
	Code    flexString `json:"code"`
	Msg     string     `json:"msg"`
	Payload *struct {
		Info []json.RawMessage `json:"info"`
	} `json:"payload"`
}

type lhLegacyRecord struct {
	ID          flexString `json:"id"`
	MCID        flexString `json:"mcid"`
	Sitename    string     `json:"sitename"`
	Amount      flexFloat  `json:"amount"`
	TotalCmsn   flexFloat  `json:"total_cmsn"`
	Status      string     `json:"status"`
	DateYmd     string     `json:"date_ymd"`
	UpdatedDate string     `json:"updated_date"`
}

func (lh *LinkHaitao) collectWithLogin(ctx context.Context, account Account, startDate, endDate string) ([]LineItem, error) {
	token, err := lh.ensureToken(ctx, account)
	if err != nil {
		return nil, err
	}

	const (
		page     = "1"
		pageSize = "100"
		export   = "0"
	)
	form := url.Values{
		"sign":       {Sign(startDate + endDate + page + pageSize + export)},
		"start_date": {startDate},
		"end_date":   {endDate},
		"page":       {page},
		"page_size":  {pageSize},
		"export":     {export},
	}
	body, err := postForm(ctx, orClient(lh.HTTP), lh.BaseURL+"/api2.php?c=report&a=transactionDetail", form,
		map[string]string{"Lh-Authorization": token}, LinkHaitaoName)
	if err != nil {
		return nil, err
	}

	var env lhReportEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, upstreamErr(LinkHaitaoName, "", "malformed response: "+err.Error(), err)
	}
	ok := env.Code.String() == "0200" || env.Msg == "success" || env.Msg == "成功"
	if !ok || env.Payload == nil {
		msg := env.Msg
		if msg == "" {
			msg = "data fetch failed"
		}
		return nil, upstreamErr(LinkHaitaoName, env.Code.String(), msg, nil)
	}

	items := make([]LineItem, 0, len(env.Payload.Info))
	for _, raw := range env.Payload.Info {
		var rec lhLegacyRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		date := rec.DateYmd
		if date == "" {
			date = rec.UpdatedDate
		}
		items = append(items, LineItem{
			OrderID:      rec.ID.String(),
			MerchantID:   rec.MCID.String(),
			MerchantName: rec.Sitename,
			Amount:       money(rec.Amount),
			Commission:   money(rec.TotalCmsn),
			Status:       mapLHStatus(rec.Status),
			OrderDate:    dateOnly(flexString{value: date}),
			Raw:          raw,
		})
	}
	return items, nil
}

// ensureToken reuses a cached unexpired token or performs a fresh login.
func (lh *LinkHaitao) ensureToken(ctx context.Context, account Account) (string, error) {
	if token, ok, err := lh.Tokens.Get(ctx, account.ID); err != nil {
		return "", err
	} else if ok {
		return token, nil
	}
	if account.Password == "" {
		return "", fmt.Errorf("%w: account has neither API token nor password", ErrAuthFailed)
	}
	return lh.login(ctx, account)
}

// login runs the bounded challenge/recognize/submit loop. Attempts are
// strictly sequential; exhausting them fails the whole collection.
func (lh *LinkHaitao) login(ctx context.Context, account Account) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		token, err := lh.loginOnce(ctx, account)
		if err == nil {
			return token, nil
		}
		lastErr = err
		if lh.Logger != nil {
			lh.Logger.Warn("login attempt failed",
				"platform", LinkHaitaoName, "account", account.Name,
				"attempt", attempt, "err", err)
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %v", ErrAuthFailed, maxLoginAttempts, lastErr)
}

func (lh *LinkHaitao) loginOnce(ctx context.Context, account Account) (string, error) {
	if lh.Recognizer == nil {
		return "", fmt.Errorf("%w: no recognizer configured", ErrRecognition)
	}
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	image, err := getBytes(ctx, orClient(lh.HTTP), lh.BaseURL+"/api2.php?c=verifyCode&a=getCode&t="+timestamp, LinkHaitaoName)
	if err != nil {
		return "", err
	}

	code, err := lh.Recognizer.Recognize(ctx, image)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognition, err)
	}
	if len(code) != 4 {
		return "", fmt.Errorf("%w: expected 4 characters, got %q", ErrRecognition, code)
	}

	const remember = "1"
	form := url.Values{
		"sign":     {Sign(account.Name + account.Password + code + remember + timestamp)},
		"uname":    {account.Name},
		"password": {account.Password},
		"code":     {code},
		"remember": {remember},
		"t":        {timestamp},
	}
	body, err := postForm(ctx, orClient(lh.HTTP), lh.BaseURL+"/api2.php?c=login&a=login", form, nil, LinkHaitaoName)
	if err != nil {
		return "", err
	}

	var resp lhLoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", upstreamErr(LinkHaitaoName, "", "malformed login response: "+err.Error(), err)
	}

	ok := resp.Code.String() == "0200" || resp.Msg == "success" || resp.ErrorNo == "lh_suc"
	if !ok || resp.Payload == nil || resp.Payload.AuthToken == "" {
		msg := resp.Msg
		if msg == "" {
			msg = "login rejected"
		}
		return "", upstreamErr(LinkHaitaoName, resp.Code.String(), msg, nil)
	}

	expiry := parseExpiry(resp.Payload.ExpireTime)
	if err := lh.Tokens.Put(ctx, account.ID, resp.Payload.AuthToken, expiry); err != nil {
		return "", err
	}
	return resp.Payload.AuthToken, nil
}

func mapLHStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved":
		return StatusApproved
	case "rejected":
		return StatusRejected
	default:
		return StatusPending
	}
}
