// Package push keeps a live websocket subscription to a workspace and hands
// decoded analysis events to the caller.
package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/neilberkman/proofa/pkg/judgewire"
)

// Status is the connection state reported to Handlers.OnStatus
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

// DefaultBackoff is the wait between redials.
const DefaultBackoff = 2 * time.Second

// ErrNoPushURL is returned when no push endpoint is configured.
var ErrNoPushURL = errors.New("no push url configured")

// Handlers receive events and connection state. Either may be nil.
type Handlers struct {
	OnEvent  func(judgewire.Event)
	OnStatus func(Status)
}

func (h Handlers) event(ev judgewire.Event) {
	if h.OnEvent != nil {
		h.OnEvent(ev)
	}
}

func (h Handlers) status(s Status) {
	if h.OnStatus != nil {
		h.OnStatus(s)
	}
}

// Client subscribes to workspace push channels
type Client struct {
	baseURL string
	token   string
	dialer  *websocket.Dialer
	logger  *zap.Logger

	// Backoff is the fixed wait between redials
	Backoff time.Duration
}

// NewClient creates a push client. pushURL may contain "{id}", which is
// replaced by the workspace ID; otherwise the ID is sent as the
// workspace_id query parameter.
func NewClient(pushURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: pushURL,
		token:   token,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:  logger,
		Backoff: DefaultBackoff,
	}
}

// URL builds the subscription URL for a workspace. The token goes in the
// query string as well as the header because browsers and some proxies
// drop headers on upgrade.
func (c *Client) URL(workspaceID string) (string, error) {
	if c.baseURL == "" {
		return "", ErrNoPushURL
	}
	raw := strings.ReplaceAll(c.baseURL, "{id}", url.PathEscape(workspaceID))
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid push url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid push url scheme %q", u.Scheme)
	}

	q := u.Query()
	if !strings.Contains(c.baseURL, "{id}") {
		q.Set("workspace_id", workspaceID)
	}
	if c.token != "" {
		q.Set("token", c.token)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run subscribes to workspaceID and delivers events until ctx is done. It
// redials after any disconnect. Frames that are not JSON objects and events
// of unknown type are skipped.
func (c *Client) Run(ctx context.Context, workspaceID string, h Handlers) error {
	target, err := c.URL(workspaceID)
	if err != nil {
		return err
	}

	for {
		h.status(StatusConnecting)
		err := c.session(ctx, target, h)
		if ctx.Err() != nil {
			h.status(StatusDisconnected)
			return nil
		}
		if err != nil {
			h.status(StatusError)
			c.logger.Warn("push channel dropped", zap.String("workspace", workspaceID), zap.Error(err))
		} else {
			h.status(StatusDisconnected)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.Backoff):
		}
	}
}

// session runs one connection until it drops.
func (c *Client) session(ctx context.Context, target string, h Handlers) error {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := c.dialer.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial failed with HTTP %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()
	h.status(StatusConnected)

	// Unblock ReadMessage when the context ends.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		kind, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}

		ev, err := judgewire.ParseEvent(frame)
		if err != nil {
			c.logger.Debug("skipping malformed push frame", zap.Error(err))
			continue
		}
		if !ev.Known() {
			c.logger.Debug("ignoring push event", zap.String("type", ev.Type))
			continue
		}
		h.event(ev)
	}
}
