// Package render turns frames into display-ready log entries.
//
// An Entry is a list of segments in a fixed order: kind badge, meta badge
// (only for non-empty meta), name label, data payload (only for non-empty
// data). Every segment is followed by a single space. Segments carry style
// classes rather than colors; the terminal UI maps classes to styles.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/daviddao/zcon/internal/frame"
)

// UnknownIcon is shown in the kind badge of an unclassified kind.
const UnknownIcon = "?"

// Style classes.
const (
	ClassKind       = "frame-kind"
	ClassName       = "frame-name"
	ClassMeta       = "frame-meta"
	ClassMetaSource = "frame-meta-source"
	ClassMetaSpace  = "frame-meta-space"
	ClassData       = "frame-data"
)

// Role identifies what a segment shows.
type Role string

const (
	RoleKind       Role = "kind"
	RoleMeta       Role = "meta"
	RoleMetaSource Role = "meta-source"
	RoleMetaSpace  Role = "meta-space"
	RoleName       Role = "name"
	RoleData       Role = "data"
)

// Direction records whether an entry was received or sent.
type Direction int

const (
	Inbound Direction = iota
	Outbound
)

// Segment is one styled piece of an entry.
type Segment struct {
	Role     Role      `json:"role"`
	Classes  []string  `json:"classes"`
	Text     string    `json:"text"`
	Children []Segment `json:"children,omitempty"`
}

// String returns the segment's text followed by its separator.
func (s Segment) String() string {
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s Segment) write(b *strings.Builder) {
	b.WriteString(s.Text)
	for _, c := range s.Children {
		b.WriteString(c.Text)
	}
	b.WriteByte(' ')
}

// Entry is the rendered projection of one frame.
type Entry struct {
	Kind      frame.Kind
	Direction Direction
	Segments  []Segment
}

// Text returns the plain concatenation of all segments.
func (e Entry) Text() string {
	var b strings.Builder
	for _, s := range e.Segments {
		s.write(&b)
	}
	return b.String()
}

// Segment returns the first top-level segment with the given role.
func (e Entry) Segment(role Role) (Segment, bool) {
	for _, s := range e.Segments {
		if s.Role == role {
			return s, true
		}
	}
	return Segment{}, false
}

// Renderer renders frames using a classification table.
type Renderer struct {
	table Table
}

// New returns a renderer bound to table.
func New(table Table) *Renderer {
	return &Renderer{table: table}
}

// KindClass returns the style class for kind: frame-kind-<label> for a
// classified kind, frame-kind-<n> otherwise.
func (r *Renderer) KindClass(kind frame.Kind) string {
	if label, ok := r.table.Label(kind); ok {
		return ClassKind + "-" + label
	}
	return ClassKind + "-" + strconv.Itoa(int(kind))
}

// Render renders a received frame.
func (r *Renderer) Render(f frame.Frame) Entry {
	return r.render(f, Inbound)
}

// RenderSent renders a frame this console sent.
func (r *Renderer) RenderSent(f frame.Frame) Entry {
	return r.render(f, Outbound)
}

func (r *Renderer) render(f frame.Frame, dir Direction) Entry {
	kindClass := r.KindClass(f.Kind)
	segs := make([]Segment, 0, 4)

	icon, ok := r.table.Icon(f.Kind)
	if !ok {
		icon = UnknownIcon
	}
	segs = append(segs, Segment{
		Role:    RoleKind,
		Classes: []string{ClassKind, kindClass},
		Text:    icon,
	})

	if f.HasMeta() {
		segs = append(segs, metaSegment(f))
	}

	segs = append(segs, Segment{
		Role:    RoleName,
		Classes: []string{ClassName, kindClass},
		Text:    f.Name,
	})

	if f.HasData() {
		segs = append(segs, Segment{
			Role:    RoleData,
			Classes: []string{ClassData},
			Text:    payloadText(f.Data),
		})
	}

	return Entry{Kind: f.Kind, Direction: dir, Segments: segs}
}

func metaSegment(f frame.Frame) Segment {
	seg := Segment{Role: RoleMeta, Classes: []string{ClassMeta}}
	if src, ok := f.Source(); ok {
		seg.Children = append(seg.Children, Segment{
			Role:    RoleMetaSource,
			Classes: []string{ClassMetaSource},
			Text:    src,
		})
	}
	if space, ok := f.Space(); ok {
		seg.Children = append(seg.Children, Segment{
			Role:    RoleMetaSpace,
			Classes: []string{ClassMetaSpace},
			Text:    " [" + space + "]:",
		})
	}
	return seg
}

func payloadText(data map[string]any) string {
	b, err := frame.Marshal(data)
	if err != nil {
		// Only reachable for frames built in code with non-JSON values.
		return fmt.Sprint(data)
	}
	return string(b)
}
