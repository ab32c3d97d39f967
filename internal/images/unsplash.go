package images

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultUnsplashBaseURL = "https://api.unsplash.com"

// Unsplash looks up a stock photo through the Unsplash search API.
type Unsplash struct {
	baseURL   string
	accessKey string
	httpc     *http.Client
}

func NewUnsplash(baseURL, accessKey string) *Unsplash {
	if baseURL == "" {
		baseURL = defaultUnsplashBaseURL
	}
	return &Unsplash{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		httpc:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (u *Unsplash) Resolve(ctx context.Context, name string) (string, bool) {
	if u.accessKey == "" || strings.TrimSpace(name) == "" {
		return "", false
	}

	q := url.Values{}
	q.Set("query", name)
	q.Set("per_page", "1")
	q.Set("orientation", "squarish")
	q.Set("client_id", u.accessKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.baseURL+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		slog.Debug("Unsplash request failed", "name", name, "err", err)
		return "", false
	}
	req.Header.Set("Accept-Version", "v1")

	resp, err := u.httpc.Do(req)
	if err != nil {
		slog.Debug("Unsplash request failed", "name", name, "err", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("Unsplash returned non-200 status", "name", name, "status", resp.StatusCode)
		return "", false
	}

	var out struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
			} `json:"urls"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		slog.Debug("Failed to decode Unsplash response", "name", name, "err", err)
		return "", false
	}
	if len(out.Results) == 0 || out.Results[0].URLs.Regular == "" {
		return "", false
	}
	return out.Results[0].URLs.Regular, true
}
