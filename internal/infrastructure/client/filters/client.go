// Package filters is the HTTP client of the saved filter API. *Client
// satisfies filtrage.Remote.
package filters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"pkgconsole/internal/domain/filter"
	"pkgconsole/internal/infrastructure/http/v1/dto"
)

const (
	filtersPath    = "/api/filters"
	defaultTimeout = 15 * time.Second

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// APIError is a non-2xx response of the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("saved filter API: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("saved filter API: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client talks to the saved filter API at a base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = defaultTimeout
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns the saved filters of viewKey.
func (c *Client) List(ctx context.Context, viewKey string) ([]filter.Saved, error) {
	endpoint := c.baseURL + filtersPath + "?" + url.Values{"key": {viewKey}}.Encode()

	var resp []dto.FilterResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]filter.Saved, 0, len(resp))
	for _, r := range resp {
		out = append(out, toSaved(r))
	}
	return out, nil
}

// Upsert creates saved when its ID is zero and updates it otherwise.
func (c *Client) Upsert(ctx context.Context, saved filter.Saved) (filter.Saved, error) {
	req := dto.UpsertFilterRequest{Key: saved.Key, Name: saved.Name, Query: saved.Query}
	if saved.ID != 0 {
		req.ID = &saved.ID
	}
	if req.Query == nil {
		req.Query = filter.Set{}
	}

	var resp dto.FilterResponse
	if err := c.do(ctx, http.MethodPut, c.baseURL+filtersPath, req, &resp); err != nil {
		return filter.Saved{}, err
	}
	return toSaved(resp), nil
}

// Delete removes a saved filter.
func (c *Client) Delete(ctx context.Context, id int64) error {
	endpoint := c.baseURL + filtersPath + "/" + strconv.FormatInt(id, 10)
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body dto.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		apiErr.Details = body.Details
	} else if text := strings.TrimSpace(string(data)); text != "" {
		apiErr.Message = text
	}
	return apiErr
}

func toSaved(r dto.FilterResponse) filter.Saved {
	return filter.Saved{
		ID:         r.ID,
		Key:        r.Key,
		Name:       r.Name,
		Query:      r.Query,
		CreatedAt:  r.CreatedAt,
		ModifiedAt: r.ModifiedAt,
	}
}
