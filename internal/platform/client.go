package platform

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// doRequest executes req and returns the response body. Transport failures
// surface as UpstreamError so callers report one failure kind per partner.
func doRequest(ctx context.Context, c *http.Client, req *http.Request, platform string) ([]byte, error) {
	resp, err := c.Do(req.WithContext(ctx))
	if err != nil {
		return nil, upstreamErr(platform, "", err.Error(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstreamErr(platform, "", "reading response: "+err.Error(), err)
	}
	return body, nil
}

func getBytes(ctx context.Context, c *http.Client, rawURL, platform string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, upstreamErr(platform, "", err.Error(), err)
	}
	return doRequest(ctx, c, req, platform)
}

func postForm(ctx context.Context, c *http.Client, rawURL string, form url.Values, headers map[string]string, platform string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, upstreamErr(platform, "", err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return doRequest(ctx, c, req, platform)
}
