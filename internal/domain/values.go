package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"
)

// Field is a single named attribute inside a Values snapshot.
type Field struct {
	Name  string
	Value any
}

// Values is an ordered mapping of field name to value. Order is the order in
// which an entity lists its attributes and is preserved through JSON.
type Values []Field

// Get returns the value stored under name.
func (v Values) Get(name string) (any, bool) {
	for _, f := range v {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether name is present.
func (v Values) Has(name string) bool {
	_, ok := v.Get(name)
	return ok
}

// Len returns the number of fields.
func (v Values) Len() int { return len(v) }

// Names returns the field names in order.
func (v Values) Names() []string {
	names := make([]string, len(v))
	for i, f := range v {
		names[i] = f.Name
	}
	return names
}

// Without returns a copy of v with every field in excluded removed.
func (v Values) Without(excluded map[string]struct{}) Values {
	if v == nil {
		return nil
	}
	out := make(Values, 0, len(v))
	for _, f := range v {
		if _, skip := excluded[f.Name]; skip {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Intersects reports whether any of names is present in v.
func (v Values) Intersects(names ...string) bool {
	for _, n := range names {
		if v.Has(n) {
			return true
		}
	}
	return false
}

// Map returns an unordered copy, convenient for assertions and templating.
func (v Values) Map() map[string]any {
	m := make(map[string]any, len(v))
	for _, f := range v {
		m[f.Name] = f.Value
	}
	return m
}

// MarshalJSON encodes v as a JSON object with keys in field order.
func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, fmt.Errorf("domain.Values.MarshalJSON: key %q: %w", f.Name, err)
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("domain.Values.MarshalJSON: value %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping document key order. Nested
// values decode with encoding/json defaults (numbers become float64).
func (v *Values) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("domain.Values.UnmarshalJSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("domain.Values.UnmarshalJSON: expected object")
	}

	out := Values{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("domain.Values.UnmarshalJSON: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.New("domain.Values.UnmarshalJSON: non-string key")
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("domain.Values.UnmarshalJSON: value %q: %w", key, err)
		}
		out = append(out, Field{Name: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("domain.Values.UnmarshalJSON: %w", err)
	}

	*v = out
	return nil
}

// ChangedFields compares two snapshots of the same entity and returns the
// prior and new values of every field in after whose value differs from
// before. A field missing from before counts as changed. Result order follows
// after.
func ChangedFields(before, after Values) (old, updated Values) {
	for _, f := range after {
		prev, ok := before.Get(f.Name)
		if ok && valuesEqual(prev, f.Value) {
			continue
		}
		old = append(old, Field{Name: f.Name, Value: prev})
		updated = append(updated, f)
	}
	return old, updated
}

func valuesEqual(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if ta, ok := a.(*time.Time); ok {
		tb, ok := b.(*time.Time)
		if !ok {
			return false
		}
		if ta == nil || tb == nil {
			return ta == nil && tb == nil
		}
		return ta.Equal(*tb)
	}
	return reflect.DeepEqual(a, b)
}
