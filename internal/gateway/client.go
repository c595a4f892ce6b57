// Package gateway implements the typed REST client for the central
// reservation service.  Every endpoint wraps its payload in a common
// envelope; the only accept condition is success=true with a non-null
// data field.  Anything else becomes an *APIError carrying the
// server-provided message, and HTTP 401 maps to ErrUnauthorized so
// callers can treat an explicit rejection differently from an outage.
package gateway

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

// ErrUnauthorized is returned when the gateway rejects the request
// with HTTP 401.  Login treats this as terminal: an explicit
// rejection must not degrade into the offline fallback.
var ErrUnauthorized = errors.New("gateway: unauthorized")

// APIError is a domain-level failure: the HTTP exchange worked but the
// envelope did not carry usable data.
type APIError struct {
	StatusCode int    // envelope statusCode (may differ from HTTP status)
	Message    string // server-provided message
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway: request failed (status %d)", e.StatusCode)
	}
	return "gateway: " + e.Message
}

// envelope is the wire wrapper every gateway response uses.
type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
}

// TokenSource supplies the bearer token attached to authenticated
// calls.  An empty token means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// Client talks to the reservation gateway.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

// NewClient builds a gateway client.  httpClient may be nil, in which
// case a client with a 15s timeout is used.  tokens may be nil for a
// client that only performs unauthenticated calls.
func NewClient(httpClient *http.Client, baseURL string, tokens TokenSource) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokens:     tokens,
	}
}

// do performs one envelope-wrapped exchange.  in is JSON-encoded as
// the request body when non-nil; out receives the envelope's data
// field when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gateway: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("gateway: read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("gateway: decode envelope (http %d): %w", resp.StatusCode, err)
	}
	// success=true with data present is the only accept condition for
	// calls that expect a payload.  An HTTP 200 carrying success=false
	// is still a domain failure.  Void calls (out == nil) only require
	// the success flag.
	if !env.Success || (out != nil && isNullData(env.Data)) {
		return &APIError{StatusCode: env.StatusCode, Message: env.Message}
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("gateway: decode data: %w", err)
		}
	}
	return nil
}

func isNullData(d json.RawMessage) bool {
	return len(d) == 0 || string(d) == "null"
}
