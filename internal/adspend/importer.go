package adspend

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/afflux-io/afflux/internal/store"
)

// Fixed export layout: two header rows, then eleven columns per row.
const (
	colCampaign    = 0
	colBudget      = 3
	colCurrency    = 4
	colDate        = 7
	colImpressions = 8
	colClicks      = 9
	colCost        = 10

	minColumns = 11
	headerRows = 2
)

// SpendStore is the slice of the persistence layer the importer writes
// through. *store.Store satisfies it.
type SpendStore interface {
	GetSpendRecord(ctx context.Context, sheetID int64, date, campaign string) (*store.AdSpendRecord, error)
	InsertSpendRecord(ctx context.Context, rec *store.AdSpendRecord) error
	UpdateSpendRecord(ctx context.Context, rec *store.AdSpendRecord) error
}

// ImportStats counts the outcome of one CSV import.
type ImportStats struct {
	New     int `json:"new"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Dropped int `json:"dropped"`
}

// Importer parses spreadsheet CSV exports and reconciles them into the
// spend table. Rows dated today are upserted on every run, so intra-day
// metric growth is captured; historical rows are write-once.
type Importer struct {
	Store  SpendStore
	Logger *slog.Logger

	// Now is the clock used to decide which rows count as "today".
	// Overridable in tests; nil means time.Now.
	Now func() time.Time
}

func (im *Importer) now() time.Time {
	if im.Now != nil {
		return im.Now()
	}
	return time.Now()
}

// ImportCSV reads one CSV export and reconciles its rows into the spend
// table for the given sheet. Malformed rows are dropped and counted, never
// fatal; only store failures abort the import.
func (im *Importer) ImportCSV(ctx context.Context, userID int64, sheetID int64, r io.Reader) (*ImportStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are dropped, not fatal

	var stats ImportStats
	today := im.now().Format("2006-01-02")
	seen := make(map[string]struct{})

	for rowNum := 0; ; rowNum++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Dropped++
			continue
		}
		if rowNum < headerRows {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(row) < minColumns {
			stats.Dropped++
			continue
		}
		campaign := strings.TrimSpace(row[colCampaign])
		date := normalizeDate(row[colDate])
		if campaign == "" || date == "" {
			stats.Dropped++
			continue
		}

		key := campaign + "|" + date
		if _, dup := seen[key]; dup {
			stats.Skipped++
			continue
		}
		seen[key] = struct{}{}

		parsed := ParseCampaign(campaign)
		rec := &store.AdSpendRecord{
			UserID:        userID,
			SheetID:       sheetID,
			Date:          date,
			CampaignName:  campaign,
			AffiliateName: parsed.Affiliate,
			MerchantID:    parsed.MerchantID,
			MerchantSlug:  parsed.MerchantSlug,
			Budget:        parseAmount(row[colBudget]),
			Currency:      strings.TrimSpace(row[colCurrency]),
			Impressions:   parseCount(row[colImpressions]),
			Clicks:        parseCount(row[colClicks]),
			Cost:          parseAmount(row[colCost]),
		}

		existing, err := im.Store.GetSpendRecord(ctx, sheetID, date, campaign)
		if err != nil {
			return nil, err
		}
		switch {
		case existing == nil:
			if err := im.Store.InsertSpendRecord(ctx, rec); err != nil {
				return nil, err
			}
			stats.New++
		case date == today:
			rec.ID = existing.ID
			if err := im.Store.UpdateSpendRecord(ctx, rec); err != nil {
				return nil, err
			}
			stats.Updated++
		default:
			// Historical rows are immutable once imported.
			stats.Skipped++
		}
	}

	if im.Logger != nil {
		im.Logger.Info("spend import finished",
			"sheet", sheetID, "new", stats.New, "updated", stats.Updated,
			"skipped", stats.Skipped, "dropped", stats.Dropped)
	}
	return &stats, nil
}

// FetchCSV downloads the CSV export for a spreadsheet key.
func FetchCSV(ctx context.Context, client *http.Client, sheetKey string) ([]byte, error) {
	url := "https://docs.google.com/spreadsheets/d/" + sheetKey + "/export?format=csv"
	return fetchCSVFrom(ctx, client, url)
}

func fetchCSVFrom(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("adspend: building export request: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adspend: fetching export: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("adspend: export returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("adspend: reading export: %w", err)
	}
	return body, nil
}

var sheetKeyPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// ExtractSheetKey pulls the spreadsheet key out of a sharing URL. A bare
// key passes through unchanged; anything else yields the empty string.
func ExtractSheetKey(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if m := sheetKeyPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	if rawURL != "" && !strings.ContainsAny(rawURL, "/?&") {
		return rawURL
	}
	return ""
}

// normalizeDate reduces a sheet date cell to YYYY-MM-DD. Slash-separated
// dates are common in exports; anything not resembling a date is dropped
// by the caller.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "/", "-")
	if len(s) < 10 {
		return ""
	}
	s = s[:10]
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ""
	}
	return s
}

// parseAmount parses a monetary cell, tolerating thousands separators and
// currency symbols. Unparsable cells count as zero.
func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.' && r != '-'
	})
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseCount(s string) int64 {
	return int64(parseAmount(s))
}
