package transcript

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviddao/zcon/internal/frame"
	"github.com/daviddao/zcon/internal/logstore"
	"github.com/daviddao/zcon/internal/render"
)

func openTemp(t *testing.T) *Transcript {
	t.Helper()
	tr, err := Open(filepath.Join(t.TempDir(), "nested", "transcript.db"))
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	return tr
}

func TestRecorderRoundTrip(t *testing.T) {
	tr := openTemp(t)
	r := render.New(render.DefaultTable())

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store := logstore.New(
		logstore.WithSink(tr.Recorder("s-1")),
		logstore.WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
	)

	in := frame.New(frame.Message, "hello").
		WithMeta(map[string]any{"source": map[string]any{"name": "bot"}, "space": map[string]any{"name": "ops"}})
	out := frame.New(frame.Command, "ping")

	first := store.Append(r.Render(in))
	second := store.Append(r.RenderSent(out))

	recs, err := tr.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, first.ID.String(), recs[0].ID)
	assert.Equal(t, "s-1", recs[0].Session)
	assert.True(t, first.At.Equal(recs[0].At))
	assert.Equal(t, render.Inbound, recs[0].Direction)
	assert.Equal(t, first.Entry.Text(), recs[0].Entry.Text())
	assert.Equal(t, first.Entry.Segments, recs[0].Entry.Segments)

	assert.Equal(t, second.ID.String(), recs[1].ID)
	assert.Equal(t, render.Outbound, recs[1].Direction)
	assert.Equal(t, frame.Command, recs[1].Entry.Kind)
}

func TestListLimitKeepsNewest(t *testing.T) {
	tr := openTemp(t)
	r := render.New(render.DefaultTable())
	store := logstore.New(logstore.WithSink(tr.Recorder("s")))

	for _, name := range []string{"a", "b", "c", "d"} {
		store.Append(r.Render(frame.New(frame.Event, name)))
	}

	recs, err := tr.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	names := make([]string, 0, len(recs))
	for _, rec := range recs {
		seg, ok := rec.Entry.Segment(render.RoleName)
		require.True(t, ok)
		names = append(names, seg.Text)
	}
	assert.Equal(t, []string{"c", "d"}, names)
}

func TestListEmpty(t *testing.T) {
	recs, err := openTemp(t).List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReopenKeepsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.db")
	r := render.New(render.DefaultTable())

	tr, err := Open(path)
	require.NoError(t, err)
	logstore.New(logstore.WithSink(tr.Recorder("s"))).Append(r.Render(frame.New(frame.Message, "kept")))
	require.NoError(t, tr.Close())

	tr, err = Open(path)
	require.NoError(t, err)
	defer tr.Close()

	recs, err := tr.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "✉️ kept ", recs[0].Entry.Text())
}
