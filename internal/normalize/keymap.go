package normalize

import (
	"strings"

	"bkcnorm/internal/booking"
	"bkcnorm/internal/domain"
)

// KeyPair maps an internal field name to its external name.
type KeyPair struct {
	Internal string
	External string
}

// KeyMap renames fields to their external names. It is immutable after
// construction and safe for concurrent use.
type KeyMap struct {
	pairs []KeyPair
	exact map[string]string
	lower map[string]string
}

// NewKeyMap builds a KeyMap from ordered pairs. Pairs with an empty side are
// dropped; a later pair for the same internal name replaces an earlier one.
func NewKeyMap(pairs []KeyPair) (*KeyMap, error) {
	m := &KeyMap{
		exact: make(map[string]string, len(pairs)),
		lower: make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		if p.Internal == "" || p.External == "" {
			continue
		}
		if _, seen := m.exact[p.Internal]; !seen {
			m.pairs = append(m.pairs, p)
		} else {
			for i := range m.pairs {
				if m.pairs[i].Internal == p.Internal {
					m.pairs[i].External = p.External
				}
			}
		}
		m.exact[p.Internal] = p.External
		m.lower[strings.ToLower(p.Internal)] = p.External
	}
	if len(m.exact) == 0 {
		return nil, domain.ErrMissingKeyMap
	}
	return m, nil
}

// Pairs returns the mapping in configuration order.
func (m *KeyMap) Pairs() []KeyPair {
	out := make([]KeyPair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

// External returns the external name for key. An exact match wins over a
// case-insensitive one.
func (m *KeyMap) External(key string) (string, bool) {
	if ext, ok := m.exact[key]; ok {
		return ext, true
	}
	ext, ok := m.lower[strings.ToLower(key)]
	return ext, ok
}

// Rename returns the external name for key, or key itself when unmapped.
func (m *KeyMap) Rename(key string) string {
	if ext, ok := m.External(key); ok {
		return ext
	}
	return key
}

// Apply returns a copy of v with every mapping key renamed, at any depth.
// Records and maps keep their structure and order; lists keep their order;
// scalars are returned as is.
func (m *KeyMap) Apply(v any) any {
	switch t := v.(type) {
	case *booking.Record:
		if t == nil {
			return t
		}
		out := booking.NewRecord()
		t.Range(func(key string, val any) bool {
			out.Put(m.Rename(key), m.Apply(val))
			return true
		})
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for key, val := range t {
			out[m.Rename(key)] = m.Apply(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = m.Apply(val)
		}
		return out
	default:
		return v
	}
}
