package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notisync"
)

// Client calls the commerce API on behalf of one authenticated session.
// It implements the store's Remote interface.
type Client struct {
	baseURL    string
	credential string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. to add tracing
// transports. Nil clients are ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a commerce API client bound to a session credential.
func New(cfg Config, credential string, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("commerce: invalid base URL %q: %w", cfg.BaseURL, err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		credential: credential,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// apiResponse is the storefront's standard response envelope.
type apiResponse[T any] struct {
	Data T `json:"data"`
}

// FetchNotifications returns the newest notifications, at most limit.
func (c *Client) FetchNotifications(ctx context.Context, limit int) ([]notisync.Notification, error) {
	path := "/notifications?limit=" + strconv.Itoa(limit)

	var resp apiResponse[[]notisync.Notification]
	if err := c.do(ctx, http.MethodGet, path, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// FetchUnreadCount returns the authoritative unread total for the session's
// user.
func (c *Client) FetchUnreadCount(ctx context.Context) (int, error) {
	var resp apiResponse[struct {
		Count int `json:"count"`
	}]
	if err := c.do(ctx, http.MethodGet, "/notifications/unread-count", &resp); err != nil {
		return 0, err
	}
	return resp.Data.Count, nil
}

// ConfirmRead persists a single mark-as-read server-side.
func (c *Client) ConfirmRead(ctx context.Context, id string) error {
	path := "/notifications/" + url.PathEscape(id) + "/read"
	return c.do(ctx, http.MethodPatch, path, nil)
}

// ConfirmReadAll persists a bulk mark-all-as-read server-side.
func (c *Client) ConfirmReadAll(ctx context.Context) error {
	return c.do(ctx, http.MethodPatch, "/notifications/read-all", nil)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("commerce: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	// Request IDs let the storefront correlate client retries in its logs.
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.credential != "" {
		req.Header.Set("Authorization", "Bearer "+c.credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("commerce: %s %s: %w", method, path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return ErrUnexpectedStatus{Method: method, Path: path, StatusCode: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("commerce: decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}
