package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"bkcnorm/internal/pipeline"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer wraps csv.Writer for exporting normalized bookings as CSV.
type Writer struct {
	csv     *csv.Writer
	columns []string
}

// NewWriter creates a Writer that writes the given payload columns to w.
func NewWriter(w io.Writer, columns []string) *Writer {
	return &Writer{csv: csv.NewWriter(w), columns: columns}
}

// WriteHeader writes the column names followed by the fallback column.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(pipeline.Header(w.columns))
}

// WriteResults writes one row per result. Nil results are skipped.
func (w *Writer) WriteResults(results []*pipeline.Result) error {
	for _, res := range results {
		if res == nil || res.Payload == nil {
			continue
		}
		if err := w.csv.Write(res.Row(w.columns)); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Write writes a complete CSV document (BOM, header, rows) to out.
func Write(out io.Writer, columns []string, results []*pipeline.Result) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out, columns)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteResults(results); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "bookings"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
