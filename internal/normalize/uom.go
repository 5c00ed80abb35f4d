package normalize

import (
	"strings"

	"bkcnorm/internal/domain"
)

// UOMEntry lists the synonyms of one canonical unit code. Synonyms come from
// configuration and may contain non-string values, which are ignored.
type UOMEntry struct {
	Code     string
	Synonyms []any
}

// UOMTable is the ordered canonical code -> synonyms table.
type UOMTable []UOMEntry

// UOMCanonicalizer maps free-text unit synonyms to canonical codes. It is
// immutable after construction and safe for concurrent use.
type UOMCanonicalizer struct {
	reverse map[string]string
}

// NewUOMCanonicalizer inverts table into a synonym -> code map. When a synonym
// is listed under several codes the first code in table order wins.
func NewUOMCanonicalizer(table UOMTable) (*UOMCanonicalizer, error) {
	if len(table) == 0 {
		return nil, domain.ErrMissingUOMTable
	}
	reverse := make(map[string]string)
	for _, entry := range table {
		code := strings.TrimSpace(entry.Code)
		if code == "" {
			continue
		}
		for _, syn := range entry.Synonyms {
			s, ok := syn.(string)
			if !ok {
				continue
			}
			key := FoldKey(s)
			if key == "" {
				continue
			}
			if _, exists := reverse[key]; !exists {
				reverse[key] = code
			}
		}
	}
	if len(reverse) == 0 {
		return nil, domain.ErrMissingUOMTable
	}
	return &UOMCanonicalizer{reverse: reverse}, nil
}

// Lookup returns the canonical code for raw and whether a synonym matched.
func (c *UOMCanonicalizer) Lookup(raw string) (string, bool) {
	code, ok := c.reverse[FoldKey(raw)]
	return code, ok
}

// Canonicalize returns the canonical code for raw, or raw unchanged when no
// synonym matches.
func (c *UOMCanonicalizer) Canonicalize(raw string) string {
	if code, ok := c.Lookup(raw); ok {
		return code
	}
	return raw
}

// Len returns the number of registered synonyms.
func (c *UOMCanonicalizer) Len() int {
	return len(c.reverse)
}
