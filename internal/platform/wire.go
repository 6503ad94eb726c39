package platform

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// flexString decodes a JSON field that partners send as either a string or
// a number. Identifiers like order ids and merchant ids arrive both ways.
type flexString struct {
	value   string
	numeric bool // the JSON token was a number, not a quoted string
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = flexString{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString{value: s}
		return nil
	}
	*f = flexString{value: string(b), numeric: true}
	return nil
}

func (f flexString) String() string { return f.value }

// flexFloat decodes a JSON number that may arrive as a number, a numeric
// string, an empty string, or null. Anything unparsable decodes to 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := string(b)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexInt decodes a JSON integer that may arrive as a number or a string.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(v)
	return nil
}

// money clamps a normalized monetary value to be non-negative. Partners
// occasionally report negative or missing amounts; the canonical model
// requires >= 0.
func money(v flexFloat) float64 {
	if v < 0 {
		return 0
	}
	return float64(v)
}

// dateOnly reduces a partner order-time value to a YYYY-MM-DD calendar
// date. Handles "YYYY-MM-DD", "YYYY-MM-DD HH:MM:SS", and Unix epoch
// seconds, which arrive either as a JSON number or as a 10-digit numeric
// string. Empty input yields the empty string.
func dateOnly(v flexString) string {
	s := strings.TrimSpace(v.value)
	if s == "" {
		return ""
	}
	if v.numeric {
		if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(ts, 0).UTC().Format("2006-01-02")
		}
		return ""
	}
	if len(s) == 10 && allDigits(s) {
		ts, _ := strconv.ParseInt(s, 10, 64)
		return time.Unix(ts, 0).UTC().Format("2006-01-02")
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// parseExpiry interprets a token expiry field, which partners send as a
// datetime string or as epoch seconds. Unparsable values get a short grace
// window so a fresh token is still used once.
func parseExpiry(raw flexString) time.Time {
	s := strings.TrimSpace(raw.value)
	if s == "" {
		return time.Now().Add(10 * time.Minute)
	}
	if raw.numeric || (len(s) == 10 && allDigits(s)) {
		if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(ts, 0)
		}
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now().Add(10 * time.Minute)
}
