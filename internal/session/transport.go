package session

import (
	"context"
	"io"
	"net/http"

	"nhooyr.io/websocket"
)

// Transport is one established connection carrying text messages.
// Read returns io.EOF when the peer closed the connection normally.
type Transport interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, msg []byte) error
	Close() error
}

// Dialer opens transports.
type Dialer interface {
	Dial(ctx context.Context, url string) (Transport, error)
}

// WebSocketDialer dials hubs over WebSocket.
type WebSocketDialer struct {
	Header    http.Header
	ReadLimit int64 // 0 keeps the library default
}

// Dial implements Dialer.
func (d WebSocketDialer) Dial(ctx context.Context, url string) (Transport, error) {
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: d.Header})
	if err != nil {
		return nil, err
	}
	if d.ReadLimit > 0 {
		conn.SetReadLimit(d.ReadLimit)
	}
	return &wsTransport{conn: conn}, nil
}

type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) Read(ctx context.Context) ([]byte, error) {
	_, msg, err := t.conn.Read(ctx)
	if err != nil {
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return nil, io.EOF
		}
		return nil, err
	}
	return msg, nil
}

func (t *wsTransport) Write(ctx context.Context, msg []byte) error {
	return t.conn.Write(ctx, websocket.MessageText, msg)
}

// Close starts the close handshake without waiting for the hub.
func (t *wsTransport) Close() error {
	go t.conn.Close(websocket.StatusNormalClosure, "")
	return nil
}
