package render

import "github.com/daviddao/zcon/internal/frame"

// Table maps frame kinds to display labels and icons. A Table is never
// modified after construction; With returns an extended copy.
type Table struct {
	labels map[frame.Kind]string
	icons  map[frame.Kind]string
}

// DefaultTable returns the table for the defined kinds.
func DefaultTable() Table {
	return Table{
		labels: map[frame.Kind]string{
			frame.Command: "command",
			frame.Event:   "event",
			frame.Message: "message",
		},
		icons: map[frame.Kind]string{
			frame.Command: "⌘",
			frame.Event:   "↯",
			frame.Message: "✉️",
		},
	}
}

// With returns a copy of t that also classifies kind.
func (t Table) With(kind frame.Kind, label, icon string) Table {
	out := Table{
		labels: make(map[frame.Kind]string, len(t.labels)+1),
		icons:  make(map[frame.Kind]string, len(t.icons)+1),
	}
	for k, v := range t.labels {
		out.labels[k] = v
	}
	for k, v := range t.icons {
		out.icons[k] = v
	}
	out.labels[kind] = label
	out.icons[kind] = icon
	return out
}

// Label returns the display label for kind. A miss means "unknown".
func (t Table) Label(kind frame.Kind) (string, bool) {
	l, ok := t.labels[kind]
	return l, ok
}

// Icon returns the glyph for kind. A miss means "unknown".
func (t Table) Icon(kind frame.Kind) (string, bool) {
	i, ok := t.icons[kind]
	return i, ok
}
