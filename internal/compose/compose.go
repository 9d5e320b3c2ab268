// Package compose builds outbound frames from the operator's input.
package compose

import (
	"context"

	"github.com/daviddao/zcon/internal/frame"
)

// Input exposes the operator's current selections. Values are read when a
// frame is submitted, never earlier.
type Input interface {
	Kind() frame.Kind
	Text() string
	Space() string
	// PrepareNext readies the input for the next entry after a successful
	// send. It must not clear the text.
	PrepareNext()
}

// Sender transmits frames; *session.Session implements it.
type Sender interface {
	Send(ctx context.Context, f frame.Frame) error
}

// Compose returns {kind, name: text, meta: {spaces: space}}.
func Compose(kind frame.Kind, text, space string) frame.Frame {
	return frame.Frame{
		Kind: kind,
		Name: text,
		Meta: map[string]any{frame.MetaSpaces: space},
	}
}

// Composer submits the current input through a sender.
type Composer struct {
	input  Input
	sender Sender
}

// New returns a composer reading from input and sending through sender.
func New(input Input, sender Sender) *Composer {
	return &Composer{input: input, sender: sender}
}

// Submit composes a frame from the current input and sends it. On success
// the input is prepared for the next entry; on failure it is left as is and
// the error (for example session.ErrNotConnected) is returned.
func (c *Composer) Submit(ctx context.Context) (frame.Frame, error) {
	f := Compose(c.input.Kind(), c.input.Text(), c.input.Space())
	if err := c.sender.Send(ctx, f); err != nil {
		return f, err
	}
	c.input.PrepareNext()
	return f, nil
}
