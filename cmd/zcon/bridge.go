package main

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/daviddao/zcon/internal/frame"
	"github.com/daviddao/zcon/internal/session"
)

// --- Session messages ---

type stateMsg struct{ state session.State }

type frameMsg struct{ frame frame.Frame }

type sentMsg struct{ frame frame.Frame }

type malformedMsg struct {
	raw []byte
	err error
}

type errMsg struct{ err error }

// runDoneMsg is sent once Session.Run returns.
type runDoneMsg struct{ err error }

// mailbox is an unbounded FIFO between session callbacks and the program.
// push never blocks, so callbacks fired from inside Update (Send, Close)
// cannot deadlock the event loop. Messages leave in push order.
type mailbox struct {
	mu    sync.Mutex
	queue []tea.Msg
	ready chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1)}
}

func (b *mailbox) push(msg tea.Msg) {
	b.mu.Lock()
	b.queue = append(b.queue, msg)
	b.mu.Unlock()
	select {
	case b.ready <- struct{}{}:
	default: // already signaled
	}
}

// next returns a command that waits for the oldest queued message. Only
// one next command may be outstanding at a time.
func (b *mailbox) next() tea.Cmd {
	return func() tea.Msg {
		for {
			b.mu.Lock()
			if len(b.queue) > 0 {
				msg := b.queue[0]
				b.queue[0] = nil
				b.queue = b.queue[1:]
				b.mu.Unlock()
				return msg
			}
			b.mu.Unlock()
			<-b.ready
		}
	}
}

// handler adapts session events into mailbox messages.
func (b *mailbox) handler() session.Handler {
	return session.HandlerFuncs{
		OnState:     func(s session.State) { b.push(stateMsg{state: s}) },
		OnFrame:     func(f frame.Frame) { b.push(frameMsg{frame: f}) },
		OnSent:      func(f frame.Frame) { b.push(sentMsg{frame: f}) },
		OnMalformed: func(raw []byte, err error) { b.push(malformedMsg{raw: raw, err: err}) },
		OnError:     func(err error) { b.push(errMsg{err: err}) },
	}
}
