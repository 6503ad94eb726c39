package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/afflux-io/afflux/internal/adspend"
	"github.com/afflux-io/afflux/internal/store"
)

type createSheetRequest struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// CreateSheet registers a spreadsheet as a spend import source. The sheet
// key is extracted from the sharing URL at registration time.
func (h *Handler) CreateSheet(w http.ResponseWriter, r *http.Request) {
	var req createSheetRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		fail(w, http.StatusBadRequest, "name is required")
		return
	}
	key := adspend.ExtractSheetKey(req.URL)
	if key == "" {
		fail(w, http.StatusBadRequest, "url does not contain a spreadsheet key")
		return
	}

	sheet := &store.SpendSheet{
		UserID:      identity(r).UserID,
		Name:        req.Name,
		URL:         strings.TrimSpace(req.URL),
		SheetKey:    key,
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.store.CreateSheet(r.Context(), sheet); err != nil {
		fail(w, http.StatusInternalServerError, "could not register sheet")
		return
	}
	respond(w, http.StatusCreated, sheet)
}

// ListSheets lists the caller's registered spend sheets.
func (h *Handler) ListSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.store.SheetsByUser(r.Context(), identity(r).UserID)
	if err != nil {
		fail(w, http.StatusInternalServerError, "listing failed")
		return
	}
	respond(w, http.StatusOK, sheets)
}

// DeleteSheet removes one of the caller's spend sheets.
func (h *Handler) DeleteSheet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid sheet id")
		return
	}
	deleted, err := h.store.DeleteSheet(r.Context(), identity(r).UserID, id)
	if err != nil {
		fail(w, http.StatusInternalServerError, "delete failed")
		return
	}
	if !deleted {
		fail(w, http.StatusNotFound, "sheet not found")
		return
	}
	respondMsg(w, http.StatusOK, "sheet deleted", nil)
}

type collectSpendRequest struct {
	SheetID int64 `json:"sheetId"`
}

// CollectSpend downloads a sheet's CSV export and imports its rows.
func (h *Handler) CollectSpend(w http.ResponseWriter, r *http.Request) {
	var req collectSpendRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID := identity(r).UserID

	sheet, err := h.store.SheetByID(r.Context(), userID, req.SheetID)
	if err != nil {
		fail(w, http.StatusInternalServerError, "sheet lookup failed")
		return
	}
	if sheet == nil {
		fail(w, http.StatusNotFound, "sheet not found")
		return
	}

	data, err := h.fetchCSV(r.Context(), sheet.SheetKey)
	if err != nil {
		fail(w, http.StatusBadGateway, "could not fetch sheet export: "+err.Error())
		return
	}
	stats, err := h.importer.ImportCSV(r.Context(), userID, sheet.ID, bytes.NewReader(data))
	if err != nil {
		fail(w, http.StatusInternalServerError, "import failed: "+err.Error())
		return
	}
	respond(w, http.StatusOK, stats)
}

// ListSpend lists the caller's imported spend rows.
func (h *Handler) ListSpend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.SpendFilter{StartDate: q.Get("startDate"), EndDate: q.Get("endDate")}
	if (f.StartDate != "" && !validDate(f.StartDate)) || (f.EndDate != "" && !validDate(f.EndDate)) {
		fail(w, http.StatusBadRequest, errInvalidDate.Error())
		return
	}
	if raw := q.Get("sheetId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid sheetId")
			return
		}
		f.SheetID = id
	}
	rows, err := h.store.SpendByUser(r.Context(), identity(r).UserID, f)
	if err != nil {
		fail(w, http.StatusInternalServerError, "listing failed")
		return
	}
	respond(w, http.StatusOK, rows)
}
