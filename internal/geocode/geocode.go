// Package geocode resolves street addresses from the feed to coordinate
// pairs. Lookups are strictly best-effort: a failed or ambiguous lookup
// produces an empty pair, never an error, so a geocoding outage can never
// break a reconciliation pass.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/recoilapp/recoil/pkg/logging"
)

// DefaultBaseURL is the public US Census one-line address geocoder.
const DefaultBaseURL = "https://geocoding.geo.census.gov/geocoder/locations/onelineaddress"

// DefaultFormat anchors bare feed addresses to the city the feed covers.
const DefaultFormat = "%s, Chicago, IL"

// Client geocodes addresses over HTTP.
type Client struct {
	baseURL string
	format  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the geocoding endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithFormat overrides the address format template. The template must
// contain a single %s for the raw address.
func WithFormat(format string) Option {
	return func(c *Client) { c.format = format }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a geocoding client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		format:  DefaultFormat,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// censusResponse is the subset of the geocoder response we read.
type censusResponse struct {
	Result struct {
		AddressMatches []struct {
			Coordinates struct {
				X float64 `json:"x"` // longitude
				Y float64 `json:"y"` // latitude
			} `json:"coordinates"`
		} `json:"addressMatches"`
	} `json:"result"`
}

// Geocode resolves an address to (latitude, longitude). Returns (nil, nil)
// when the address is empty, the lookup fails, or no match is found.
func (c *Client) Geocode(ctx context.Context, address string) (*float64, *float64) {
	if address == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("address", fmt.Sprintf(c.format, address))
	q.Set("benchmark", "Public_AR_Current")
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("address", address).Msg("Geocode request failed")
		return nil, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		logging.Ctx(ctx).Debug().Int("status", resp.StatusCode).Str("address", address).Msg("Geocode request rejected")
		return nil, nil
	}

	var out censusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil
	}
	if len(out.Result.AddressMatches) == 0 {
		return nil, nil
	}

	coords := out.Result.AddressMatches[0].Coordinates
	lat, lng := coords.Y, coords.X
	return &lat, &lng
}
