// Package api implements the HTTP surface: authentication, platform
// account management, collection triggers, and reporting queries.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/afflux-io/afflux/internal/adspend"
	"github.com/afflux-io/afflux/internal/auth"
	"github.com/afflux-io/afflux/internal/collector"
	"github.com/afflux-io/afflux/internal/store"
)

// FetchCSVFunc downloads the CSV export for a spreadsheet key. Injectable
// so handler tests never reach the real sheet host.
type FetchCSVFunc func(ctx context.Context, sheetKey string) ([]byte, error)

// Handler holds all API handler state.
type Handler struct {
	store     *store.Store
	sessions  *auth.Sessions
	keeper    *auth.Keeper
	collector *collector.Collector
	importer  *adspend.Importer
	fetchCSV  FetchCSVFunc
	logger    *slog.Logger
}

// NewHandler creates a new API handler. fetch may be nil, in which case the
// real spreadsheet export endpoint is used.
func NewHandler(s *store.Store, sessions *auth.Sessions, keeper *auth.Keeper,
	c *collector.Collector, im *adspend.Importer, fetch FetchCSVFunc, logger *slog.Logger) *Handler {
	if fetch == nil {
		fetch = func(ctx context.Context, sheetKey string) ([]byte, error) {
			return adspend.FetchCSV(ctx, nil, sheetKey)
		}
	}
	return &Handler{
		store:     s,
		sessions:  sessions,
		keeper:    keeper,
		collector: c,
		importer:  im,
		fetchCSV:  fetch,
		logger:    logger,
	}
}

// Routes mounts the API routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware)

			r.Get("/auth/me", h.Me)

			r.Post("/platform-accounts", h.CreateAccount)
			r.Get("/platform-accounts", h.ListAccounts)
			r.Delete("/platform-accounts/{id}", h.DeleteAccount)

			r.Post("/collect-orders", h.CollectOrders)
			r.Get("/orders", h.ListOrders)
			r.Get("/stats", h.Stats)
			r.Get("/merchant-summary", h.MerchantSummary)

			r.Post("/spend-sheets", h.CreateSheet)
			r.Get("/spend-sheets", h.ListSheets)
			r.Delete("/spend-sheets/{id}", h.DeleteSheet)
			r.Post("/collect-spend", h.CollectSpend)
			r.Get("/spend", h.ListSpend)
		})
	})
}

type ctxKey int

const identityKey ctxKey = 0

// authMiddleware validates the bearer token and stores the caller identity
// in the request context.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header || token == "" {
			fail(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		id, err := h.sessions.Verify(token)
		if err != nil {
			fail(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}

// identity returns the authenticated caller. Only valid below
// authMiddleware.
func identity(r *http.Request) auth.Identity {
	id, _ := r.Context().Value(identityKey).(auth.Identity)
	return id
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}
