// Package external fetches third-party context for the landing page: news
// headlines, geolocation, and a weather forecast. Results are never
// persisted and never cached; every landing render pays the full cost.
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// defaultTimeout bounds every provider call. The providers themselves
// specify no SLA; 10s keeps a slow upstream from pinning a request forever.
const defaultTimeout = 10 * time.Second

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewHTTPClient returns the shared client used by all provider calls.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// getJSON issues a GET and decodes the JSON response into dest. A non-2xx
// status is an error.
func getJSON(ctx context.Context, client *http.Client, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "quill-blog (contact@quill.dev)")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}
