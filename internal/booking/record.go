package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is an ordered field map for one booking confirmation. Keys keep the
// casing and order they arrived with; lookups by name are case-insensitive.
// Values are strings, json.Number, bool, nil, nested *Record or []any.
//
// A Record is not safe for concurrent mutation.
type Record struct {
	keys   []string
	values map[string]any
	index  map[string]string // lower-cased key -> first exact key
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{
		values: make(map[string]any),
		index:  make(map[string]string),
	}
}

// Len returns the number of keys.
func (r *Record) Len() int {
	return len(r.keys)
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Has reports whether name is present under any casing.
func (r *Record) Has(name string) bool {
	_, ok := r.index[strings.ToLower(name)]
	return ok
}

// Key returns the exact key stored for name, matched case-insensitively.
func (r *Record) Key(name string) (string, bool) {
	k, ok := r.index[strings.ToLower(name)]
	return k, ok
}

// Get returns the value stored under name, matched case-insensitively.
func (r *Record) Get(name string) (any, bool) {
	k, ok := r.Key(name)
	if !ok {
		return nil, false
	}
	return r.values[k], true
}

// GetString returns the value under name rendered as a string, or "" when absent.
func (r *Record) GetString(name string) string {
	v, _ := r.Get(name)
	return StringValue(v)
}

// Set stores v under the existing key matching name case-insensitively, or
// appends name as a new key.
func (r *Record) Set(name string, v any) {
	if k, ok := r.Key(name); ok {
		r.values[k] = v
		return
	}
	r.Put(name, v)
}

// Put stores v under the exact key, appending it when new.
func (r *Record) Put(key string, v any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
		lower := strings.ToLower(key)
		if _, seen := r.index[lower]; !seen {
			r.index[lower] = key
		}
	}
	r.values[key] = v
}

// Delete removes the key matching name case-insensitively.
func (r *Record) Delete(name string) {
	k, ok := r.Key(name)
	if !ok {
		return
	}
	delete(r.values, k)
	lower := strings.ToLower(k)
	delete(r.index, lower)
	kept := r.keys[:0]
	for _, existing := range r.keys {
		if existing == k {
			continue
		}
		kept = append(kept, existing)
		if _, seen := r.index[lower]; !seen && strings.ToLower(existing) == lower {
			r.index[lower] = existing
		}
	}
	r.keys = kept
}

// Range calls fn for each key in order until fn returns false.
func (r *Record) Range(fn func(key string, v any) bool) {
	for _, k := range r.keys {
		if !fn(k, r.values[k]) {
			return
		}
	}
}

// MarshalJSON writes the record as a JSON object in key order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshaling field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order. Numbers decode as
// json.Number and nested objects as *Record.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return err
	}
	rec, ok := v.(*Record)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", v)
	}
	*r = *rec
	return nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		rec := NewRecord()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", kt)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			rec.Put(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return rec, nil
	case '[':
		list := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}
