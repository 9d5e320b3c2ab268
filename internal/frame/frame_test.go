package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDataCopies(t *testing.T) {
	data := map[string]any{"nested": map[string]any{"k": "v"}}
	f := New(Event, "e").WithData(data)

	data["added"] = true
	data["nested"].(map[string]any)["k"] = "changed"

	assert.Equal(t, map[string]any{"nested": map[string]any{"k": "v"}}, f.Data)
}

func TestCloneIsIndependent(t *testing.T) {
	f := New(Message, "m").WithMeta(map[string]any{"source": map[string]any{"name": "bot"}})
	c := f.Clone()
	c.Meta["source"].(map[string]any)["name"] = "other"

	name, ok := f.Source()
	assert.True(t, ok)
	assert.Equal(t, "bot", name)
}

func TestSourceAndSpace(t *testing.T) {
	tests := []struct {
		name       string
		meta       map[string]any
		wantSource string
		hasSource  bool
		wantSpace  string
		hasSpace   bool
	}{
		{"nil meta", nil, "", false, "", false},
		{"source only", map[string]any{"source": map[string]any{"name": "bot"}}, "bot", true, "", false},
		{"space only", map[string]any{"space": map[string]any{"name": "ops"}}, "", false, "ops", true},
		{"both", map[string]any{
			"source": map[string]any{"name": "bot"},
			"space":  map[string]any{"name": "ops"},
		}, "bot", true, "ops", true},
		{"source not object", map[string]any{"source": "bot"}, "", true, "", false},
		{"spaces target is not space", map[string]any{"spaces": "ops"}, "", false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Frame{Kind: Message, Name: "x", Meta: tt.meta}
			src, ok := f.Source()
			assert.Equal(t, tt.hasSource, ok)
			assert.Equal(t, tt.wantSource, src)
			space, ok := f.Space()
			assert.Equal(t, tt.hasSpace, ok)
			assert.Equal(t, tt.wantSpace, space)
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
		err   bool
	}{
		{"command", Command, false},
		{"Command", Command, false},
		{"cmd", Command, false},
		{"1", Command, false},
		{"event", Event, false},
		{"e", Event, false},
		{"message", Message, false},
		{" msg ", Message, false},
		{"3", Message, false},
		{"4", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.err {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "command", Command.String())
	assert.Equal(t, "event", Event.String())
	assert.Equal(t, "message", Message.String())
	assert.Equal(t, "kind(7)", Kind(7).String())
}
