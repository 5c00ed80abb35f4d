package normalize_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bkcnorm/internal/booking"
	"bkcnorm/internal/normalize"
)

func TestStringifyNumbers_Record(t *testing.T) {
	rec := booking.NewRecord()
	require.NoError(t, json.Unmarshal([]byte(`{
		"Gross Weight": 11720,
		"Number of Packages": 1.5,
		"HBL_No": "",
		"Flag": true,
		"Missing": null,
		"Lines": [1, {"qty": 2e3}, ["3"]]
	}`), rec))

	out := normalize.StringifyNumbers(rec)
	require.Same(t, rec, out)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Gross Weight": "11720",
		"Number of Packages": "1.5",
		"HBL_No": "",
		"Flag": true,
		"Missing": null,
		"Lines": ["1", {"qty": "2e3"}, ["3"]]
	}`, string(b))
}

func TestStringifyNumbers_RecordCaseVariantKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"number then string", `{"Extra": 1, "extra": "keep me"}`, `{"Extra": "1", "extra": "keep me"}`},
		{"string then number", `{"extra": "keep me", "EXTRA": 2.5}`, `{"extra": "keep me", "EXTRA": "2.5"}`},
		{"both numbers", `{"Qty": 1, "qty": 2}`, `{"Qty": "1", "qty": "2"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := booking.NewRecord()
			require.NoError(t, json.Unmarshal([]byte(tt.in), rec))

			normalize.StringifyNumbers(rec)

			b, err := json.Marshal(rec)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
			assert.Equal(t, 2, rec.Len())
		})
	}
}

func TestStringifyNumbers_GoValues(t *testing.T) {
	in := map[string]any{
		"int":   7,
		"int64": int64(-3),
		"uint8": uint8(9),
		"float": 2.25,
		"whole": float64(40),
		"str":   "40",
		"list":  []any{float32(0.5), "x"},
	}

	out := normalize.StringifyNumbers(in).(map[string]any)

	assert.Equal(t, "7", out["int"])
	assert.Equal(t, "-3", out["int64"])
	assert.Equal(t, "9", out["uint8"])
	assert.Equal(t, "2.25", out["float"])
	assert.Equal(t, "40", out["whole"])
	assert.Equal(t, "40", out["str"])
	assert.Equal(t, []any{"0.5", "x"}, out["list"])
}

func TestStringifyNumbers_TopLevelScalar(t *testing.T) {
	assert.Equal(t, "12", normalize.StringifyNumbers(12))
	assert.Equal(t, "abc", normalize.StringifyNumbers("abc"))
	assert.Nil(t, normalize.StringifyNumbers(nil))
}
