// Package api is the REST client for the workspace backend.
//
// Every response is wrapped in a {success, message, data} envelope and every
// request carries the bearer token.
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
	"time"

	"go.uber.org/zap"

	"github.com/neilberkman/proofa/pkg/judgewire"
)

// ErrUnauthorized is returned (wrapped in *Error) for HTTP 401. The token has
// expired or was revoked.
var ErrUnauthorized = errors.New("session expired")

// Error is a failed API call.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client talks to the backend REST API
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client for baseURL authenticated with token.
func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// BaseURL returns the API root the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) getJSON(ctx context.Context, op, path string) (json.RawMessage, error) {
	return c.do(ctx, op, http.MethodGet, path, nil, "")
}

func (c *Client) postJSON(ctx context.Context, op, path string, payload any) (json.RawMessage, error) {
	if payload == nil {
		payload = struct{}{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
	}
	return c.do(ctx, op, http.MethodPost, path, bytes.NewReader(body), "application/json")
}

// do performs a request and unwraps the envelope. It returns the data field.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.send(op, req)
}

// send attaches auth, performs req and unwraps the envelope.
func (c *Client) send(op string, req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	method, path := req.Method, req.URL.Path

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("api call",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	env, decodeErr := judgewire.DecodeEnvelope(raw)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &Error{Op: op, StatusCode: resp.StatusCode, Message: env.Message, Err: ErrUnauthorized}
	}
	if resp.StatusCode >= 400 {
		msg := env.Message
		if decodeErr != nil {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, &Error{Op: op, StatusCode: resp.StatusCode, Err: decodeErr}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, &Error{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
	return env.Data, nil
}
