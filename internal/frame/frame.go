// Package frame defines the hub's frame model and its JSON wire codec.
//
// A Frame is handled as a value: the codec and the helpers in this package
// never modify the maps of a frame they are given. Data and Meta keep the
// difference between nil (absent, omitted on the wire) and an empty map
// (present, encoded as {}).
package frame

// Recognized meta keys.
const (
	MetaSource = "source"
	MetaSpace  = "space"
	MetaSpaces = "spaces"
)

// Frame is the unit of communication with the hub.
type Frame struct {
	Kind Kind
	Name string
	Data map[string]any
	Meta map[string]any
}

// New returns a frame with no data and no meta.
func New(kind Kind, name string) Frame {
	return Frame{Kind: kind, Name: name}
}

// WithData returns a copy of f carrying a copy of data.
func (f Frame) WithData(data map[string]any) Frame {
	out := f.Clone()
	out.Data = cloneMap(data)
	return out
}

// WithMeta returns a copy of f carrying a copy of meta.
func (f Frame) WithMeta(meta map[string]any) Frame {
	out := f.Clone()
	out.Meta = cloneMap(meta)
	return out
}

// Clone returns a deep copy of f.
func (f Frame) Clone() Frame {
	return Frame{
		Kind: f.Kind,
		Name: f.Name,
		Data: cloneMap(f.Data),
		Meta: cloneMap(f.Meta),
	}
}

// HasData reports whether the frame carries a non-empty payload.
func (f Frame) HasData() bool { return len(f.Data) > 0 }

// HasMeta reports whether the frame carries non-empty metadata.
func (f Frame) HasMeta() bool { return len(f.Meta) > 0 }

// Source returns meta.source.name.
func (f Frame) Source() (string, bool) {
	return f.metaName(MetaSource)
}

// Space returns meta.space.name.
func (f Frame) Space() (string, bool) {
	return f.metaName(MetaSpace)
}

// metaName reads meta[key].name. A present key whose value is not an
// object, or whose name is missing or not text, counts as present with an
// empty name so the badge still shows that the key was set.
func (f Frame) metaName(key string) (string, bool) {
	v, ok := f.Meta[key]
	if !ok {
		return "", false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return "", true
	}
	name, _ := obj["name"].(string)
	return name, true
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
