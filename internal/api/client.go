// Package api is the HTTP client for the school payments REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/schoolpay/internal/common"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a unique id on every outbound request.
const RequestIDHeader = "X-Request-ID"

// Config describes how to reach the API.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client calls the payments API. Protected endpoints authenticate with the
// bearer token supplied by the token source; public endpoints send none.
type Client struct {
	base           http.RoundTripper
	authed         *http.Client
	public         *http.Client
	logger         *slog.Logger
	onUnauthorized func(context.Context)
	baseURL        string
	userAgent      string
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithUnauthorizedHandler registers fn to run whenever any call gets a 401.
func WithUnauthorizedHandler(fn func(context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithTransport replaces the base round tripper, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// NewClient creates a client for cfg. tokens supplies the bearer token for
// protected calls and is consulted on every request.
func NewClient(cfg Config, tokens oauth2.TokenSource, opts ...Option) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("%w: api base url", common.ErrMissingConfig)
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("%w: api base url %q: %w", common.ErrInvalidConfig, cfg.BaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "schoolpay"
	}

	if tokens == nil {
		tokens = noTokens{}
	}

	c := &Client{
		baseURL:   base,
		userAgent: userAgent,
		logger:    slog.Default(),
		base:      http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}

	transport := requestIDTransport{base: c.base}
	c.public = &http.Client{Timeout: timeout, Transport: transport}
	c.authed = &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: tokenSource{src: tokens},
			Base:   transport,
		},
	}

	return c, nil
}

// requestIDTransport stamps each request with a fresh request id.
type requestIDTransport struct {
	base http.RoundTripper
}

func (t requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set(RequestIDHeader, uuid.NewString())
	return t.base.RoundTrip(clone)
}

// ErrNoToken is returned for protected calls made without a token source.
var ErrNoToken = errors.New("no bearer token available")

type noTokens struct{}

func (noTokens) Token() (*oauth2.Token, error) {
	return nil, ErrNoToken
}

// tokenError marks failures of the token source so they are not mistaken
// for network errors.
type tokenError struct {
	err error
}

func (e *tokenError) Error() string { return e.err.Error() }

func (e *tokenError) Unwrap() error { return e.err }

type tokenSource struct {
	src oauth2.TokenSource
}

func (s tokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, &tokenError{err: err}
	}
	return tok, nil
}

// envelope is the wrapper most endpoints put around their payload.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// call describes one request.
type call struct {
	body     any
	query    url.Values
	method   string
	path     string
	fallback string
	public   bool
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// send performs the request and returns the raw body of a successful
// response. Failures are classified into common.APIError values.
func (c *Client) send(ctx context.Context, cl call) ([]byte, error) {
	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return nil, err
	}

	httpClient := c.authed
	if cl.public {
		httpClient = c.public
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err, cl.fallback)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", cl.fallback, common.ErrTransport, err)
	}

	requestID := ""
	if resp.Request != nil {
		requestID = resp.Request.Header.Get(RequestIDHeader)
	}
	c.logger.Debug("api request",
		"method", cl.method,
		"path", cl.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		c.unauthorized(ctx)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, common.NewAPIError(resp.StatusCode, serverMessage(body, cl.fallback))
	}

	return body, nil
}

// transportError maps failures that never produced a response.
func (c *Client) transportError(ctx context.Context, err error, fallback string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var tokErr *tokenError
	if errors.As(err, &tokErr) {
		return fmt.Errorf("%s: %w", fallback, tokErr.err)
	}
	return fmt.Errorf("%s: %w: %w", fallback, common.ErrTransport, err)
}

func (c *Client) unauthorized(ctx context.Context) {
	c.logger.Warn("Unauthorized response, clearing session")
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

// serverMessage extracts the structured message from an error body.
func serverMessage(body []byte, fallback string) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return fallback
}

// do performs the request and decodes the payload into out. The payload is
// the envelope's data field when present, otherwise the whole body.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	body, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	return decodePayload(body, out, cl.fallback)
}

func decodePayload(body []byte, out any, fallback string) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%s: invalid response: %w", fallback, err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = fallback
		}
		return &common.APIError{StatusCode: http.StatusOK, Message: msg, Err: common.ErrServer}
	}
	if out == nil {
		return nil
	}

	payload := body
	if len(env.Data) > 0 && string(env.Data) != "null" {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s: invalid response: %w", fallback, err)
	}
	return nil
}
