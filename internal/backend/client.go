// Package backend is a small client for the document store that owns file
// records, their blobs and user authentication. It speaks the store's
// collection API: records CRUD with filter expressions, multipart record
// creation, file download and password authentication.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrNoBaseURL is returned when the client has no usable store location.
var ErrNoBaseURL = errors.New("backend: base URL is not configured")

// Client talks to one store instance.
type Client struct {
	baseURL   string
	http      *http.Client
	authStore *AuthStore
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithAuthStore attaches the session state used to authorize requests.
func WithAuthStore(store *AuthStore) Option {
	return func(c *Client) {
		if store != nil {
			c.authStore = store
		}
	}
}

// NewClient creates a client for the store at baseURL. The URL must be an
// absolute http(s) URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid URL %q", ErrNoBaseURL, baseURL)
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		authStore: NewAuthStore(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized store location.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AuthStore returns the session state owned by this client.
func (c *Client) AuthStore() *AuthStore {
	return c.authStore
}

// Collection returns the record service for a collection id or name.
func (c *Client) Collection(name string) *RecordService {
	return &RecordService{client: c, collection: name}
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), body)
	if err != nil {
		return nil, err
	}
	if c.authStore.IsValid() {
		req.Header.Set("Authorization", c.authStore.Token())
	}
	return req, nil
}

// send executes req and converts non-2xx responses into *ResponseError.
// On success the caller owns the response body.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newResponseError(req, resp)
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("backend: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
