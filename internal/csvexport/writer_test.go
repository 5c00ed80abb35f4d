package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bkcnorm/internal/booking"
	"bkcnorm/internal/pipeline"
)

var testColumns = []string{"booking_number", "etd", "container_no", "container_size_type"}

func testResult(fields map[string]string, order []string, fallbacks ...string) *pipeline.Result {
	payload := booking.NewRecord()
	for _, k := range order {
		payload.Put(k, fields[k])
	}
	res := &pipeline.Result{Payload: payload}
	for _, f := range fallbacks {
		res.Report.Outcomes = append(res.Report.Outcomes, pipeline.Outcome{Stage: "date", Field: f, Status: pipeline.StatusFallback})
	}
	return res
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, testColumns)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 5)
	assert.Equal(t, "booking_number", row[0])
	assert.Equal(t, pipeline.FallbackColumn, row[4])
}

func TestWriteResults(t *testing.T) {
	res := testResult(map[string]string{
		"booking_number":      "CMAUSIJ0340893",
		"etd":                 "11/08/2021",
		"container_no":        "MAEU1234567",
		"container_size_type": "FCL40",
		"remarks":             "not exported",
	}, []string{"remarks", "container_size_type", "etd", "booking_number", "container_no"})
	bad := testResult(map[string]string{"booking_number": "B2, with comma"}, []string{"booking_number"}, "Departure Date", "Container number", "Departure Date")

	var buf bytes.Buffer
	w := NewWriter(&buf, testColumns)
	require.NoError(t, w.WriteResults([]*pipeline.Result{res, nil, bad}))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"CMAUSIJ0340893", "11/08/2021", "MAEU1234567", "FCL40", ""}, rows[0])
	assert.Equal(t, []string{"B2, with comma", "", "", "", "Departure Date, Container number"}, rows[1])
}

func TestWrite_IncludesBOM(t *testing.T) {
	var buf bytes.Buffer
	res := testResult(map[string]string{"etd": "01/02/2022"}, []string{"etd"})

	require.NoError(t, Write(&buf, testColumns, []*pipeline.Result{res}))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "01/02/2022", rows[1][1])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Maersk Bookings Aug", "Maersk_Bookings_Aug"},
		{"special chars", "BKC 2024-25 / Q3 (Oct–Dec)", "BKC_2024-25_Q3_Oct_Dec"},
		{"unicode", "बुकिंग Bookings", "Bookings"},
		{"hyphens and underscores preserved", "my-export_2025", "my-export_2025"},
		{"consecutive underscores collapsed", "test___export", "test_export"},
		{"leading/trailing cleaned", "  hello  ", "hello"},
		{
			"long name truncated",
			"abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-extra",
			"abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrs",
		},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "Maersk_Bookings_"+today+".csv", BuildFilename("Maersk Bookings", "csv"))
	assert.Equal(t, "bookings_"+today+".xlsx", BuildFilename("", "xlsx"))
}
