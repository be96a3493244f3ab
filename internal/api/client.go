package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"matdepot/authctl/internal/config"
)

const (
	authTokenHeader = "x-auth-token"
	requestIDHeader = "X-Request-Id"
)

// TokenProvider yields the bearer token to attach to outgoing requests,
// or "" when no session is held.
type TokenProvider func() string

// Client is the typed REST client for the backend auth API. It owns no
// state beyond the in-flight request; persistence and caching live in
// the auth manager.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
	log     zerolog.Logger
}

func NewClient(cfg config.APIConfig, tokens TokenProvider, log zerolog.Logger) *Client {
	if tokens == nil {
		tokens = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		tokens:  tokens,
		log:     log,
	}
}

// Error is a backend rejection: the request reached the server and was
// refused. Code is optional and machine-readable (e.g. EXPIRED, LOCKED).
type Error struct {
	Status int    `json:"-"`
	Msg    string `json:"msg"`
	Code   string `json:"code"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Msg, e.Code)
	}
	return e.Msg
}

const (
	CodeExpired = "EXPIRED"
	CodeLocked  = "LOCKED"
)

// AsError unwraps err into a backend rejection. Transport failures
// (timeout, unreachable host) do not match.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsUnauthorized(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == http.StatusUnauthorized
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, ksuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens(); token != "" {
		req.Header.Set(authTokenHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return c.decodeError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) decodeError(status int, raw []byte) error {
	apiErr := Error{Status: status}
	if len(raw) > 0 {
		// Best effort: an unparseable body still yields a typed error.
		_ = json.Unmarshal(raw, &apiErr)
	}
	if apiErr.Msg == "" {
		apiErr.Msg = http.StatusText(status)
	}

	c.log.Debug().
		Int("status", status).
		Str("code", apiErr.Code).
		Msg("backend rejected request")

	return &apiErr
}
