package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPRecognizer delegates challenge recognition to an external OCR
// service: POST the raw image, read back {"code": "..."}.
type HTTPRecognizer struct {
	URL  string
	HTTP *http.Client
}

// Recognize implements Recognizer.
func (hr *HTTPRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hr.URL, bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := orClient(hr.HTTP).Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("recognizer returned status %d", resp.StatusCode)
	}

	var out struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("malformed recognizer response: %w", err)
	}
	return strings.TrimSpace(out.Code), nil
}
