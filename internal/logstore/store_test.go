package logstore

import (
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviddao/zcon/internal/frame"
	"github.com/daviddao/zcon/internal/render"
)

func entry(name string) render.Entry {
	return render.New(render.DefaultTable()).Render(frame.New(frame.Message, name))
}

func TestAppendKeepsOrder(t *testing.T) {
	s := New()
	for _, name := range []string{"f1", "f2", "f3"} {
		s.Append(entry(name))
	}

	lines := s.Lines()
	require.Len(t, lines, 3)
	for i, name := range []string{"f1", "f2", "f3"} {
		seg, _ := lines[i].Entry.Segment(render.RoleName)
		assert.Equal(t, name, seg.Text)
	}
	assert.True(t, lines[0].ID.Compare(lines[1].ID) < 0)
	assert.True(t, lines[1].ID.Compare(lines[2].ID) < 0)
}

func TestRevealAfterEveryAppend(t *testing.T) {
	var reveals []int
	var s *Store
	s = New(WithRevealer(RevealerFunc(func() {
		// The new line is already in the store when reveal runs.
		reveals = append(reveals, s.Len())
	})))

	s.Append(entry("a"))
	s.Append(entry("b"))
	s.Append(entry("c"))

	assert.Equal(t, []int{1, 2, 3}, reveals)
}

func TestAccessors(t *testing.T) {
	s := New()
	_, ok := s.Last()
	assert.False(t, ok)
	_, ok = s.At(0)
	assert.False(t, ok)

	s.Append(entry("a"))
	want := s.Append(entry("b"))

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, want, last)

	first, ok := s.At(0)
	require.True(t, ok)
	seg, _ := first.Entry.Segment(render.RoleName)
	assert.Equal(t, "a", seg.Text)

	_, ok = s.At(2)
	assert.False(t, ok)
	_, ok = s.At(-1)
	assert.False(t, ok)
}

func TestLinesIsACopy(t *testing.T) {
	s := New()
	s.Append(entry("a"))
	lines := s.Lines()
	lines[0] = Line{}

	first, _ := s.At(0)
	assert.NotEqual(t, Line{}, first)
}

type recordingSink struct {
	seen []Line
	err  error
}

func (r *recordingSink) Observe(l Line) error {
	r.seen = append(r.seen, l)
	return r.err
}

func TestSinkFailureDoesNotDrop(t *testing.T) {
	failing := &recordingSink{err: errors.New("disk full")}
	ok := &recordingSink{}
	s := New(WithSink(failing), WithSink(ok))

	s.Append(entry("a"))
	s.Append(entry("b"))

	assert.Equal(t, 2, s.Len())
	assert.Len(t, failing.seen, 2)
	assert.Len(t, ok.seen, 2)
}

func TestClockStampsLines(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return at }))

	line := s.Append(entry("a"))
	assert.Equal(t, at, line.At)
	assert.Equal(t, ulid.Timestamp(at), line.ID.Time())
}
