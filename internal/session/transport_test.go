package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/daviddao/zcon/internal/frame"
)

// startTestHub serves one WebSocket client. It hands every message it
// reads to got and writes everything from push back to the client.
func startTestHub(t *testing.T, got chan<- map[string]any, push <-chan string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close(websocket.StatusNormalClosure, "")
		ctx := r.Context()

		go func() {
			for msg := range push {
				if err := ws.Write(ctx, websocket.MessageText, []byte(msg)); err != nil {
					return
				}
			}
			ws.Close(websocket.StatusNormalClosure, "bye")
		}()

		for {
			var v map[string]any
			if err := wsjson.Read(ctx, ws, &v); err != nil {
				return
			}
			got <- v
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketSessionEndToEnd(t *testing.T) {
	got := make(chan map[string]any, 8)
	push := make(chan string, 8)
	url := startTestHub(t, got, push)

	rec := newRecorder()
	s := New(WebSocketDialer{}, url, rec)
	done := runAsync(t, s)
	waitOpen(t, rec)

	select {
	case hs := <-got:
		assert.Equal(t, map[string]any{
			"kind": 1.0,
			"name": "join",
			"data": map[string]any{"spaces": "*"},
		}, hs)
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not receive handshake")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ping := frame.New(frame.Command, "ping").WithMeta(map[string]any{"spaces": "ops"})
	require.NoError(t, s.Send(ctx, ping))

	select {
	case v := <-got:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, `{"kind":1,"name":"ping","meta":{"spaces":"ops"}}`, string(b))
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not receive frame")
	}

	push <- `{"kind":3,"name":"hello","meta":{"source":{"name":"bot"}}}`
	push <- `not json`
	push <- `{"kind":2,"name":"tick"}`
	close(push)

	require.NoError(t, waitDone(t, done))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.frames, 2)
	assert.Equal(t, "hello", rec.frames[0].Name)
	src, _ := rec.frames[0].Source()
	assert.Equal(t, "bot", src)
	assert.Equal(t, "tick", rec.frames[1].Name)
	assert.Equal(t, 1, rec.malformed)
	assert.Equal(t, []State{Connecting, Open, Closed}, rec.states)
}

func TestWebSocketDialRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	s := New(WebSocketDialer{}, url, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := s.Run(ctx)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, Closed, s.State())
}
