package frame

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedFrame is returned by Decode for text that is not a frame.
var ErrMalformedFrame = errors.New("malformed frame")

// wireFrame fixes the key order on the wire. The pointer fields keep an
// empty map on the wire while a nil map is omitted.
type wireFrame struct {
	Kind Kind            `json:"kind"`
	Name string          `json:"name"`
	Data *map[string]any `json:"data,omitempty"`
	Meta *map[string]any `json:"meta,omitempty"`
}

// Encode serializes f. Equal frames always encode to equal bytes.
func Encode(f Frame) ([]byte, error) {
	w := wireFrame{Kind: f.Kind, Name: f.Name}
	if f.Data != nil {
		w.Data = &f.Data
	}
	if f.Meta != nil {
		w.Meta = &f.Meta
	}
	return Marshal(w)
}

// Marshal is the canonical JSON form used on the wire and in rendered
// payloads: map keys sorted, no HTML escaping, no trailing newline.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses one frame. Unknown kinds and unknown keys inside data and
// meta are kept as they are; unknown top-level keys are ignored.
func Decode(text []byte) (Frame, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(text, &fields); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if fields == nil {
		return Frame{}, fmt.Errorf("%w: not an object", ErrMalformedFrame)
	}

	var f Frame
	raw, ok := fields["kind"]
	if !ok {
		return Frame{}, fmt.Errorf("%w: missing kind", ErrMalformedFrame)
	}
	kind, err := decodeKind(raw)
	if err != nil {
		return Frame{}, err
	}
	f.Kind = kind

	raw, ok = fields["name"]
	if !ok {
		return Frame{}, fmt.Errorf("%w: missing name", ErrMalformedFrame)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return Frame{}, fmt.Errorf("%w: name is not a string", ErrMalformedFrame)
	}
	if err := json.Unmarshal(raw, &f.Name); err != nil {
		return Frame{}, fmt.Errorf("%w: name: %v", ErrMalformedFrame, err)
	}

	if f.Data, err = decodeObject(fields, "data"); err != nil {
		return Frame{}, err
	}
	if f.Meta, err = decodeObject(fields, "meta"); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// decodeKind accepts any JSON number with an integral value that fits in
// an int, so 1, 1.0 and 1e0 are the same kind.
func decodeKind(raw json.RawMessage) (Kind, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0, fmt.Errorf("%w: kind is not a number", ErrMalformedFrame)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return Kind(n), nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || f != math.Trunc(f) || f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("%w: kind is not an integer: %s", ErrMalformedFrame, raw)
	}
	return Kind(int(f)), nil
}

// decodeObject returns nil for an absent or null key.
func decodeObject(fields map[string]json.RawMessage, key string) (map[string]any, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("%w: %s is not an object", ErrMalformedFrame, key)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedFrame, key, err)
	}
	return m, nil
}
