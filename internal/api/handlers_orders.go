package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/afflux-io/afflux/internal/collector"
	"github.com/afflux-io/afflux/internal/store"
	"github.com/afflux-io/afflux/internal/summary"
)

type collectOrdersRequest struct {
	PlatformAccountID int64  `json:"platformAccountId"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
}

// CollectOrders triggers a collection run. With a platformAccountId it
// collects that single account; without one it walks every active account
// the caller owns. Partner failures come back as per-account results, not
// as an HTTP error.
func (h *Handler) CollectOrders(w http.ResponseWriter, r *http.Request) {
	var req collectOrdersRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validDate(req.StartDate) || !validDate(req.EndDate) {
		fail(w, http.StatusBadRequest, "startDate and endDate must be YYYY-MM-DD")
		return
	}
	if req.StartDate > req.EndDate {
		fail(w, http.StatusBadRequest, "startDate is after endDate")
		return
	}
	userID := identity(r).UserID

	var accounts []store.PlatformAccount
	if req.PlatformAccountID != 0 {
		account, err := h.store.AccountByID(r.Context(), userID, req.PlatformAccountID)
		if err != nil {
			fail(w, http.StatusInternalServerError, "account lookup failed")
			return
		}
		if account == nil {
			fail(w, http.StatusNotFound, "account not found")
			return
		}
		accounts = []store.PlatformAccount{*account}
	} else {
		all, err := h.store.AccountsByUser(r.Context(), userID)
		if err != nil {
			fail(w, http.StatusInternalServerError, "account lookup failed")
			return
		}
		for _, a := range all {
			if a.IsActive {
				accounts = append(accounts, a)
			}
		}
	}
	if len(accounts) == 0 {
		fail(w, http.StatusBadRequest, "no active platform accounts")
		return
	}

	jobs := make([]collector.Job, 0, len(accounts))
	for _, account := range accounts {
		job := collector.Job{Account: account}
		if account.EncryptedPassword != "" {
			password, err := h.keeper.Decrypt(account.EncryptedPassword)
			if err != nil {
				fail(w, http.StatusInternalServerError, "could not read stored credentials")
				return
			}
			job.Password = password
		}
		jobs = append(jobs, job)
	}

	results := h.collector.CollectAll(r.Context(), jobs, req.StartDate, req.EndDate)

	var totals collector.Stats
	failures := 0
	for _, res := range results {
		if res.Error != "" {
			failures++
			continue
		}
		totals.New += res.Stats.New
		totals.Updated += res.Stats.Updated
		totals.Skipped += res.Stats.Skipped
		totals.Deleted += res.Stats.Deleted
		totals.Dropped += res.Stats.Dropped
	}
	if failures == len(results) {
		// Every account failed; surface the first message.
		fail(w, http.StatusBadGateway, results[0].Error)
		return
	}

	ids := make([]int64, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	orders, err := h.store.OrdersByUser(r.Context(), userID, store.OrderFilter{
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		AccountIDs: ids,
	})
	if err != nil {
		fail(w, http.StatusInternalServerError, "order lookup failed")
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"stats":   totals,
		"results": results,
		"orders":  orders,
	})
}

// ListOrders lists the caller's orders, optionally date/account filtered.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	f, err := orderFilterFromQuery(r)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	orders, err := h.store.OrdersByUser(r.Context(), identity(r).UserID, f)
	if err != nil {
		fail(w, http.StatusInternalServerError, "listing failed")
		return
	}
	respond(w, http.StatusOK, orders)
}

// Stats returns dashboard totals with per-status commission sums.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	f, err := orderFilterFromQuery(r)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	totals, err := h.store.OrderTotalsByUser(r.Context(), identity(r).UserID, f)
	if err != nil {
		fail(w, http.StatusInternalServerError, "aggregation failed")
		return
	}
	respond(w, http.StatusOK, totals)
}

// MerchantSummary joins orders and ad spend per merchant/affiliate pair.
// The optional platformAccountIds filter restricts orders to those
// accounts and spend rows to those accounts' affiliate labels.
func (h *Handler) MerchantSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	startDate, endDate := q.Get("startDate"), q.Get("endDate")
	if !validDate(startDate) || !validDate(endDate) {
		fail(w, http.StatusBadRequest, "startDate and endDate must be YYYY-MM-DD")
		return
	}
	userID := identity(r).UserID

	orderFilter := store.OrderFilter{StartDate: startDate, EndDate: endDate, Limit: 100000}
	spendFilter := store.SpendFilter{StartDate: startDate, EndDate: endDate, Limit: 100000}

	if raw := q.Get("platformAccountIds"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid platformAccountIds")
			return
		}
		accounts, err := h.store.AccountsByIDs(r.Context(), userID, ids)
		if err != nil {
			fail(w, http.StatusInternalServerError, "account lookup failed")
			return
		}
		orderFilter.AccountIDs = ids
		for _, a := range accounts {
			if a.AffiliateName != "" {
				spendFilter.Affiliates = append(spendFilter.Affiliates, a.AffiliateName)
			}
		}
	}

	orders, err := h.store.OrdersByUser(r.Context(), userID, orderFilter)
	if err != nil {
		fail(w, http.StatusInternalServerError, "order lookup failed")
		return
	}
	spend, err := h.store.SpendByUser(r.Context(), userID, spendFilter)
	if err != nil {
		fail(w, http.StatusInternalServerError, "spend lookup failed")
		return
	}

	respond(w, http.StatusOK, summary.Summarize(orders, spend, endDate))
}

var (
	errInvalidDate      = errors.New("dates must be YYYY-MM-DD")
	errInvalidAccountID = errors.New("invalid platformAccountId")
)

func orderFilterFromQuery(r *http.Request) (store.OrderFilter, error) {
	q := r.URL.Query()
	f := store.OrderFilter{StartDate: q.Get("startDate"), EndDate: q.Get("endDate")}
	if f.StartDate != "" && !validDate(f.StartDate) {
		return f, errInvalidDate
	}
	if f.EndDate != "" && !validDate(f.EndDate) {
		return f, errInvalidDate
	}
	if raw := q.Get("platformAccountId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, errInvalidAccountID
		}
		f.AccountID = id
	}
	return f, nil
}

func parseIDList(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
