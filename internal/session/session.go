// Package session manages one connection to the hub.
//
// A Session moves through Connecting, Open and Closed exactly once. The
// subscription handshake is written while the session lock is held during
// the transition to Open, so no other frame can reach the wire before it,
// and it is written at most once per Session. Closed is terminal; a new
// connection needs a new Session.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/daviddao/zcon/internal/frame"
)

var (
	ErrNotConnected = errors.New("session: not connected")
	ErrTransport    = errors.New("session: transport error")
	ErrSessionUsed  = errors.New("session: already used")
)

// Handshake constants.
const (
	HandshakeName = "join"
	SubscribeAll  = "*"
)

// State is the lifecycle state of a session.
type State int

const (
	Connecting State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	}
	return "?"
}

// Handshake returns the join frame subscribing to spaces.
func Handshake(spaces string) frame.Frame {
	return frame.New(frame.Command, HandshakeName).WithData(map[string]any{"spaces": spaces})
}

// Option configures a Session.
type Option func(*Session)

// WithSubscribe sets the spaces requested by the handshake. Default "*".
func WithSubscribe(spaces string) Option {
	return func(s *Session) { s.subscribe = spaces }
}

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is one logical channel to the hub.
type Session struct {
	id        uuid.UUID
	dialer    Dialer
	url       string
	subscribe string
	handler   Handler
	logger    zerolog.Logger

	mu            sync.Mutex
	state         State
	started       bool
	handshakeSent bool
	conn          Transport
	cancel        context.CancelFunc
}

// New returns a session in the Connecting state. Nothing is dialed until Run.
func New(dialer Dialer, url string, h Handler, opts ...Option) *Session {
	if h == nil {
		h = HandlerFuncs{}
	}
	s := &Session{
		id:        uuid.New(),
		dialer:    dialer,
		url:       url,
		subscribe: SubscribeAll,
		handler:   h,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().
		Str("component", "session").
		Str("session", s.id.String()).
		Logger()
	return s
}

// ID identifies the session in logs and transcripts.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandshakeSent reports whether the handshake reached the transport.
func (s *Session) HandshakeSent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handshakeSent
}

// Run dials the hub, performs the handshake and delivers inbound frames
// until the connection ends, ctx is cancelled or Close is called. It
// returns nil for a normal close and an ErrTransport error otherwise.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started || s.state == Closed {
		s.mu.Unlock()
		return ErrSessionUsed
	}
	s.started = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	s.handler.StateChanged(Connecting)
	s.logger.Debug().Str("url", s.url).Msg("dialing")

	conn, err := s.dialer.Dial(ctx, s.url)
	if err != nil {
		if ctx.Err() != nil {
			s.close()
			return nil
		}
		return s.fail(fmt.Errorf("%w: dial %s: %w", ErrTransport, s.url, err))
	}

	opened, err := s.open(ctx, conn)
	if err != nil {
		return s.fail(err)
	}
	if !opened {
		return nil
	}
	return s.readLoop(ctx, conn)
}

// open moves to Open and writes the handshake under the lock.
func (s *Session) open(ctx context.Context, conn Transport) (bool, error) {
	hs := Handshake(s.subscribe)
	msg, err := frame.Encode(hs)
	if err != nil {
		conn.Close()
		return false, fmt.Errorf("encode handshake: %w", err)
	}

	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		conn.Close()
		return false, nil
	}
	s.conn = conn
	s.state = Open
	err = conn.Write(ctx, msg)
	if err == nil {
		s.handshakeSent = true
	}
	s.mu.Unlock()

	s.handler.StateChanged(Open)
	if err != nil {
		return false, fmt.Errorf("%w: handshake: %w", ErrTransport, err)
	}
	s.logger.Info().Str("url", s.url).Str("subscribe", s.subscribe).Msg("session open")
	s.handler.FrameSent(hs)
	return true, nil
}

func (s *Session) readLoop(ctx context.Context, conn Transport) error {
	for {
		raw, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil || s.State() == Closed {
				s.logger.Info().Msg("session closed")
				s.close()
				return nil
			}
			return s.fail(fmt.Errorf("%w: read: %w", ErrTransport, err))
		}

		f, err := frame.Decode(raw)
		if err != nil {
			s.logger.Warn().Err(err).Int("bytes", len(raw)).Msg("discarding inbound message")
			s.handler.Malformed(raw, err)
			continue
		}
		s.handler.FrameReceived(f)
	}
}

// Send encodes f and writes it. It fails with ErrNotConnected unless the
// session is Open; nothing is queued.
func (s *Session) Send(ctx context.Context, f frame.Frame) error {
	msg, err := frame.Encode(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	s.mu.Lock()
	if s.state != Open {
		s.mu.Unlock()
		return ErrNotConnected
	}
	err = s.conn.Write(ctx, msg)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%w: send: %w", ErrTransport, err)
	}
	s.logger.Debug().Stringer("kind", f.Kind).Str("name", f.Name).Msg("frame sent")
	s.handler.FrameSent(f)
	return nil
}

// Close ends the session. It does not wait for the hub to acknowledge.
func (s *Session) Close() error {
	s.close()
	return nil
}

func (s *Session) fail(err error) error {
	s.logger.Error().Err(err).Msg("session failed")
	s.handler.Errored(err)
	s.close()
	return err
}

func (s *Session) close() {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return
	}
	s.state = Closed
	conn := s.conn
	s.conn = nil
	cancel := s.cancel
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if cancel != nil {
		cancel()
	}
	s.handler.StateChanged(Closed)
}
