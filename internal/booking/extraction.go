package booking

import (
	"bytes"
	"fmt"

	"bkcnorm/internal/domain"
)

// ParseExtraction decodes the text returned by the extraction model into a
// Record. The model tends to wrap its JSON in Markdown fences or surround it
// with prose, so everything outside the outermost braces is dropped.
func ParseExtraction(raw []byte) (*Record, error) {
	body := bytes.TrimSpace(raw)
	start := bytes.IndexByte(body, '{')
	end := bytes.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no object found (raw: %s)", domain.ErrInvalidExtraction, truncate(body, 200))
	}

	rec := NewRecord()
	if err := rec.UnmarshalJSON(body[start : end+1]); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidExtraction, err)
	}
	return rec, nil
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
