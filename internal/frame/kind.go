package frame

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags a frame. Values outside the defined set are legal on the wire.
type Kind int

const (
	Command Kind = 1
	Event   Kind = 2
	Message Kind = 3
)

// Kinds lists the defined kinds in selector order.
var Kinds = []Kind{Command, Event, Message}

// Known reports whether k is one of the defined kinds.
func (k Kind) Known() bool {
	return k == Command || k == Event || k == Message
}

func (k Kind) String() string {
	switch k {
	case Command:
		return "command"
	case Event:
		return "event"
	case Message:
		return "message"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind maps a kind name, short alias or wire number to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "command", "cmd", "c", "1":
		return Command, nil
	case "event", "evt", "e", "2":
		return Event, nil
	case "message", "msg", "m", "3":
		return Message, nil
	}
	return 0, fmt.Errorf("unknown kind %q (valid: command, event, message)", s)
}
