// Package storefront is a Go client for the storefront REST API.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotAuthenticated is returned by calls that need a token when none is set.
var ErrNotAuthenticated = errors.New("not logged in")

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
	Fields     map[string]string
}

// Error is the server's message followed by its error detail, when the server sent one.
func (e *APIError) Error() string {
	switch {
	case e.Message == "":
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	case e.Details == "" || e.Details == e.Message:
		return e.Message
	}
	return e.Message + ": " + e.Details
}

// Client calls the API under baseURL, e.g. "http://localhost:8080/api/v1".
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token is the bearer token in use, if any.
func (c *Client) Token() string {
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// do sends a request and decodes a 2xx JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, auth bool, in, out interface{}) error {
	if auth && c.token == "" {
		return ErrNotAuthenticated
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal req payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
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
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var payload struct {
		Message string            `json:"message"`
		Error   string            `json:"error"`
		Errors  map[string]string `json:"errors"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Message = payload.Message
		apiErr.Details = payload.Error
		apiErr.Fields = payload.Errors
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}
