package session

import "github.com/daviddao/zcon/internal/frame"

// Handler receives session events. Inbound frames are delivered from the
// Run goroutine in transport order. StateChanged(Closed) may also come
// from a goroutine calling Close. Handlers may call Send and Close.
type Handler interface {
	StateChanged(State)
	FrameReceived(frame.Frame)
	FrameSent(frame.Frame)
	Malformed(raw []byte, err error)
	Errored(err error)
}

// HandlerFuncs implements Handler with optional callbacks; nil fields are
// skipped.
type HandlerFuncs struct {
	OnState     func(State)
	OnFrame     func(frame.Frame)
	OnSent      func(frame.Frame)
	OnMalformed func(raw []byte, err error)
	OnError     func(error)
}

func (h HandlerFuncs) StateChanged(s State) {
	if h.OnState != nil {
		h.OnState(s)
	}
}

func (h HandlerFuncs) FrameReceived(f frame.Frame) {
	if h.OnFrame != nil {
		h.OnFrame(f)
	}
}

func (h HandlerFuncs) FrameSent(f frame.Frame) {
	if h.OnSent != nil {
		h.OnSent(f)
	}
}

func (h HandlerFuncs) Malformed(raw []byte, err error) {
	if h.OnMalformed != nil {
		h.OnMalformed(raw, err)
	}
}

func (h HandlerFuncs) Errored(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}
