// internal/api/client.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrLookupFailed is returned when the service answers but cannot place the caller.
var ErrLookupFailed = errors.New("ip lookup failed")

// lookupFields limits the response to what Location carries.
const lookupFields = "status,message,lat,lon,city,country,query"

// Client talks to an ip-api compatible IP geolocation service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Location is the service's answer for the caller's public address.
type Location struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Country string  `json:"country"`
	Query   string  `json:"query"`
}

// New creates a new API client. A zero timeout means 30 seconds.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Lookup resolves the approximate location of the caller's public address.
func (c *Client) Lookup(ctx context.Context) (Location, error) {
	q := url.Values{}
	q.Set("fields", lookupFields)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/json/?"+q.Encode(), nil)
	if err != nil {
		return Location{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	var loc Location
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return Location{}, fmt.Errorf("failed to decode lookup response: %w", err)
	}
	if loc.Status != "success" {
		return loc, fmt.Errorf("%w: %s", ErrLookupFailed, loc.Message)
	}
	return loc, nil
}
