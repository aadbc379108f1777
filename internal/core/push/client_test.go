package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/proofa/pkg/judgewire"
)

var upgrader = websocket.Upgrader{}

// frameServer serves frames to every connection and then closes it.
func frameServer(t *testing.T, frames []string, connections *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "ws-1", r.URL.Query().Get("workspace_id"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		atomic.AddInt32(connections, 1)

		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_DeliversKnownEventsOnly(t *testing.T) {
	var conns int32
	srv := frameServer(t, []string{
		`{"type":"presence","user":"x"}`,
		`not json at all`,
		`["array"]`,
		`{"type":"analysis_update","score":95}`,
		`{"type":"analysis_update","id":"p1","message":"Nice shading","verdict":"Approved"}`,
	}, &conns)

	c := NewClient(srv.URL, "secret", nil)
	c.Backoff = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan judgewire.Event, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, "ws-1", Handlers{OnEvent: func(ev judgewire.Event) { events <- ev }})
	}()

	first := <-events
	assert.Equal(t, 95, first.Analysis.Score)
	assert.False(t, first.HasMessage)

	second := <-events
	assert.Equal(t, "p1", second.ID)
	assert.Equal(t, "Nice shading", second.Message)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestRun_Redials(t *testing.T) {
	var conns int32
	srv := frameServer(t, []string{`{"type":"analysis_update","score":10}`}, &conns)

	c := NewClient(srv.URL, "secret", nil)
	c.Backoff = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var connected int32
	events := make(chan judgewire.Event, 64)
	go func() {
		_ = c.Run(ctx, "ws-1", Handlers{
			OnEvent: func(ev judgewire.Event) { events <- ev },
			OnStatus: func(s Status) {
				if s == StatusConnected {
					atomic.AddInt32(&connected, 1)
				}
			},
		})
	}()

	// The same event arrives once per connection; deduplication is the
	// reconciler's job.
	<-events
	<-events
	cancel()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&conns), int32(2))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&connected), int32(2))
}

func TestURL(t *testing.T) {
	c := NewClient("https://push.example/ws/{id}", "t", nil)
	u, err := c.URL("ws 1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "wss://push.example/ws/ws%201?"), u)
	assert.Contains(t, u, "token=t")
	assert.NotContains(t, u, "workspace_id")

	c = NewClient("ws://localhost:8080/ws", "", nil)
	u, err = c.URL("ws-1")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws?workspace_id=ws-1", u)

	_, err = NewClient("", "t", nil).URL("ws-1")
	assert.ErrorIs(t, err, ErrNoPushURL)

	_, err = NewClient("ftp://x", "t", nil).URL("ws-1")
	assert.Error(t, err)
}
