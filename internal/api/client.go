// Package api is the HTTP client adapter every resource service calls
// through. One configured client per backend: an authenticated client
// that attaches the session bearer token, and a public one that never
// does. The adapter owns the timeout, the bounded retry policy for
// idempotent reads, the typed error taxonomy, and the single-fire 401
// side effect.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/campusorient/discovery-sync/config"
)

// TokenProvider supplies the current bearer token. The second return is
// false when no session is active; the request then proceeds
// unauthenticated rather than blocking.
type TokenProvider interface {
	Token() (string, bool)
}

// Client is a configured REST client bound to one backend base URL.
type Client struct {
	base       *url.URL
	hc         *http.Client
	tokens     TokenProvider
	onUnauth   func(context.Context)
	retryCount int
	retryDelay time.Duration
	logger     *slog.Logger

	// firedToken is the bearer token the 401 hook already fired for;
	// empty means armed. Keying on the token means a fresh login gets
	// its own single fire even when its first call is rejected too.
	unauthMu   sync.Mutex
	firedToken string
}

// Option customizes a Client.
type Option func(*Client)

// WithTokenProvider makes the client authenticated: every request
// carries "Authorization: Bearer <token>" while a token exists.
func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Client) { c.tokens = tp }
}

// WithOnUnauthorized installs the hook fired when an authenticated call
// receives a 401. The adapter guarantees the hook runs exactly once per
// expiry: concurrent 401s for the same token collapse into one
// invocation, and the guard re-arms on a subsequent successful call or
// when the session token changes.
func WithOnUnauthorized(fn func(context.Context)) Option {
	return func(c *Client) { c.onUnauth = fn }
}

// WithHTTPClient overrides the underlying http.Client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New builds a client from configuration. cfg.BaseURL must parse.
func New(cfg config.APIConfig, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}

	c := &Client{
		base:       base,
		hc:         &http.Client{Timeout: cfg.Timeout},
		retryCount: cfg.RetryCount,
		retryDelay: cfg.RetryDelay,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get issues an idempotent read. Timeout and network failures are
// retried up to the configured count with a fixed inter-attempt delay;
// error-status responses are returned as-is.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	attempts := c.retryCount + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = c.do(ctx, http.MethodGet, path, query, nil, "", out)
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
		if attempt < attempts-1 {
			c.logger.WarnContext(ctx, "retrying request",
				"path", path, "attempt", attempt+1, "error_class", Classify(lastErr))
			timer := time.NewTimer(c.retryDelay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return lastErr
			case <-timer.C:
			}
		}
	}
	return lastErr
}

// Post issues a JSON write. Writes are never auto-retried.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.writeJSON(ctx, http.MethodPost, path, body, out)
}

// Put issues a JSON full-replace write.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.writeJSON(ctx, http.MethodPut, path, body, out)
}

// Patch issues a JSON partial-update write.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.writeJSON(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a JSON-bodied delete.
func (c *Client) Delete(ctx context.Context, path string, body, out any) error {
	return c.writeJSON(ctx, http.MethodDelete, path, body, out)
}

// PostMultipart uploads a single file under the given form field.
func (c *Client) PostMultipart(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create multipart field: %w", err)
	}
	if _, err = io.Copy(part, r); err != nil {
		return fmt.Errorf("copy multipart body: %w", err)
	}
	if err = mw.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, &buf, mw.FormDataContentType(), out)
}

func (c *Client) writeJSON(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		rd = bytes.NewReader(raw)
	}
	return c.do(ctx, method, path, nil, rd, "application/json; charset=utf-8", out)
}

// do executes one request and maps the outcome onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	endpoint := method + " " + path

	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json; charset=utf-8")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	tok := c.attachToken(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return c.transportError(endpoint, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// A good authenticated response re-arms the 401 guard.
		if c.tokens != nil {
			c.rearmUnauthorized()
		}
		if out == nil {
			return nil
		}
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response from %s: %w", endpoint, err)
		}
		return nil
	}

	return c.statusError(ctx, endpoint, resp, tok)
}

// attachToken adds the bearer header when a session token exists and
// returns the token used. Requests proceed unauthenticated otherwise;
// endpoints that do not require auth must never block on a missing
// token.
func (c *Client) attachToken(req *http.Request) string {
	if c.tokens == nil {
		return ""
	}
	tok, ok := c.tokens.Token()
	if !ok {
		return ""
	}
	(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(req)
	return tok
}

func (c *Client) transportError(endpoint string, err error) error {
	var urlErr *url.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &urlErr) && urlErr.Timeout()) {
		return &TimeoutError{Endpoint: endpoint, Err: err}
	}
	return &NetworkError{Endpoint: endpoint, Err: err}
}

func (c *Client) statusError(ctx context.Context, endpoint string, resp *http.Response, tok string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.fireUnauthorized(ctx, tok)
		return &AuthenticationError{Endpoint: endpoint}
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Endpoint: endpoint}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		if fields := decodeFieldErrors(raw); len(fields) > 0 {
			return &ValidationError{Endpoint: endpoint, Fields: fields}
		}
	}

	return &HTTPError{Endpoint: endpoint, Status: resp.StatusCode, Message: decodeMessage(raw)}
}

// fireUnauthorized runs the guard-protected hook. Two concurrent 401s
// for the same token must produce exactly one session clear and one
// redirect trigger; a 401 against a different token fires again.
func (c *Client) fireUnauthorized(ctx context.Context, tok string) {
	if c.tokens == nil || c.onUnauth == nil || tok == "" {
		return
	}

	c.unauthMu.Lock()
	fired := c.firedToken == tok
	if !fired {
		c.firedToken = tok
	}
	c.unauthMu.Unlock()

	if !fired {
		c.onUnauth(ctx)
	}
}

func (c *Client) rearmUnauthorized() {
	c.unauthMu.Lock()
	c.firedToken = ""
	c.unauthMu.Unlock()
}

// decodeFieldErrors extracts a field → message map from the two error
// body shapes the backends use: {"errors": {field: msg}} and the flat
// DRF style {field: [msgs]}.
func decodeFieldErrors(raw []byte) map[string]string {
	var envelope struct {
		Errors map[string]any `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Errors) > 0 {
		return flattenFieldErrors(envelope.Errors)
	}

	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil
	}
	delete(flat, "message")
	delete(flat, "detail")
	delete(flat, "error")
	fields := flattenFieldErrors(flat)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func flattenFieldErrors(in map[string]any) map[string]string {
	out := map[string]string{}
	for field, v := range in {
		switch msg := v.(type) {
		case string:
			out[field] = msg
		case []any:
			parts := make([]string, 0, len(msg))
			for _, p := range msg {
				if s, ok := p.(string); ok {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				out[field] = strings.Join(parts, "; ")
			}
		}
	}
	return out
}

func decodeMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Detail != "":
		return body.Detail
	default:
		return body.Error
	}
}
