package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/afflux-io/afflux/internal/platform"
	"github.com/afflux-io/afflux/internal/store"
)

var knownPlatforms = map[string]bool{
	platform.LinkHaitaoName:   true,
	platform.PartnerMaticName: true,
	platform.LinkBuxName:      true,
	platform.RewardooName:     true,
}

type createAccountRequest struct {
	Platform      string `json:"platform"`
	AccountName   string `json:"account_name"`
	Password      string `json:"password"`
	APIToken      string `json:"api_token"`
	AffiliateName string `json:"affiliate_name"`
}

// CreateAccount registers a platform credential set. The password, when
// present, is stored encrypted and never returned.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Platform = strings.ToLower(strings.TrimSpace(req.Platform))
	req.AccountName = strings.TrimSpace(req.AccountName)
	if !knownPlatforms[req.Platform] {
		fail(w, http.StatusBadRequest, "unsupported platform: "+req.Platform)
		return
	}
	if req.AccountName == "" {
		fail(w, http.StatusBadRequest, "account_name is required")
		return
	}
	if req.Password == "" && req.APIToken == "" {
		fail(w, http.StatusBadRequest, "either password or api_token is required")
		return
	}

	account := &store.PlatformAccount{
		UserID:        identity(r).UserID,
		Platform:      req.Platform,
		AccountName:   req.AccountName,
		APIToken:      req.APIToken,
		AffiliateName: strings.TrimSpace(req.AffiliateName),
		IsActive:      true,
	}
	if req.Password != "" {
		enc, err := h.keeper.Encrypt(req.Password)
		if err != nil {
			fail(w, http.StatusInternalServerError, "could not store credentials")
			return
		}
		account.EncryptedPassword = enc
	}

	if err := h.store.CreateAccount(r.Context(), account); err != nil {
		fail(w, http.StatusConflict, "account already exists for this platform")
		return
	}
	respond(w, http.StatusCreated, account)
}

// ListAccounts lists the caller's platform accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.AccountsByUser(r.Context(), identity(r).UserID)
	if err != nil {
		fail(w, http.StatusInternalServerError, "listing failed")
		return
	}
	respond(w, http.StatusOK, accounts)
}

// DeleteAccount removes one of the caller's platform accounts.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid account id")
		return
	}
	deleted, err := h.store.DeleteAccount(r.Context(), identity(r).UserID, id)
	if err != nil {
		fail(w, http.StatusInternalServerError, "delete failed")
		return
	}
	if !deleted {
		fail(w, http.StatusNotFound, "account not found")
		return
	}
	respondMsg(w, http.StatusOK, "account deleted", nil)
}
