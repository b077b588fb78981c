// Package store is the client for the remote record store (a Parse-style
// REST API). It provides the windowed snapshot query, the chunked batch
// mutation transport, and the push notification transport. The engine hands
// it ordered mutation descriptors and does not inspect results beyond
// logging.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/recoilapp/recoil/pkg/constants"
	"github.com/recoilapp/recoil/pkg/errors"
)

// DefaultBaseURL is the hosted store endpoint.
const DefaultBaseURL = "https://api.parse.com"

// DefaultChunkSize is the maximum number of mutations per physical batch
// request.
const DefaultChunkSize = constants.DefaultBatchChunkSize

// casualtyPath is the collection holding one object per casualty event.
const casualtyPath = "/1/classes/Casualty"

// Config carries the store credentials and endpoint. It is passed in
// explicitly at construction; nothing here is read from process-wide state.
type Config struct {
	BaseURL       string
	ApplicationID string
	APIKey        string
	HTTPTimeout   time.Duration
	ChunkSize     int
}

// Client talks to the remote record store.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a store client from an explicit configuration.
func New(cfg Config) (*Client, error) {
	if cfg.ApplicationID == "" {
		return nil, errors.NewConfigError("store", "application id is required", nil)
	}
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError("store", "api key is required", nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = constants.DefaultHTTPTimeout
	}
	if cfg.ChunkSize <= 0 || cfg.ChunkSize > DefaultChunkSize {
		cfg.ChunkSize = DefaultChunkSize
	}

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

// do performs one authenticated request and returns the raw response body.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any) (int, []byte, error) {
	u := c.cfg.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, errors.WrapTransport("encode", 0, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return 0, nil, errors.WrapTransport("request", 0, err)
	}

	req.Header.Set("X-Parse-Application-Id", c.cfg.ApplicationID)
	req.Header.Set("X-Parse-REST-API-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, errors.WrapTransport("request", 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.WrapTransport("read", resp.StatusCode, err)
	}

	return resp.StatusCode, data, nil
}
