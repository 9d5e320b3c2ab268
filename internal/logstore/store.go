// Package logstore holds the console's ordered, append-only log.
package logstore

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/daviddao/zcon/internal/render"
)

// Line is one appended entry with the identity the store assigned to it.
type Line struct {
	ID    ulid.ULID
	At    time.Time
	Entry render.Entry
}

// Revealer brings the most recent line into view.
type Revealer interface {
	RevealLatest()
}

// RevealerFunc adapts a function to Revealer.
type RevealerFunc func()

func (f RevealerFunc) RevealLatest() { f() }

// Sink observes appended lines. Errors are logged and never affect the log.
type Sink interface {
	Observe(Line) error
}

// Option configures a Store.
type Option func(*Store)

// WithRevealer sets the revealer called after every append.
func WithRevealer(r Revealer) Option {
	return func(s *Store) { s.revealer = r }
}

// WithSink adds a sink.
func WithSink(sink Sink) Option {
	return func(s *Store) { s.sinks = append(s.sinks, sink) }
}

// WithLogger sets the logger used for sink failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l.With().Str("component", "logstore").Logger() }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is an append-only sequence of lines. There is no delete or edit.
type Store struct {
	mu       sync.RWMutex
	lines    []Line
	revealer Revealer
	sinks    []Sink
	logger   zerolog.Logger
	now      func() time.Time
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append adds e at the tail and then reveals it.
func (s *Store) Append(e render.Entry) Line {
	at := s.now()
	line := Line{
		ID:    ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()),
		At:    at,
		Entry: e,
	}

	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.mu.Unlock()

	for _, sink := range s.sinks {
		if err := sink.Observe(line); err != nil {
			s.logger.Warn().Err(err).Str("line", line.ID.String()).Msg("sink failed")
		}
	}

	s.RevealLatest()
	return line
}

// RevealLatest asks the revealer to show the newest line.
func (s *Store) RevealLatest() {
	if s.revealer != nil {
		s.revealer.RevealLatest()
	}
}

// Len returns the number of lines.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// At returns the i-th line in append order.
func (s *Store) At(i int) (Line, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.lines) {
		return Line{}, false
	}
	return s.lines[i], true
}

// Last returns the most recently appended line.
func (s *Store) Last() (Line, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.lines) == 0 {
		return Line{}, false
	}
	return s.lines[len(s.lines)-1], true
}

// Lines returns a copy of all lines in append order.
func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}
