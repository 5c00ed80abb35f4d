package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bkcnorm/internal/booking"
	"bkcnorm/internal/pipeline"
	"bkcnorm/internal/service"
)

func TestInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}

	files, err := inputFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}, files)

	single, err := inputFiles(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	assert.Len(t, single, 1)

	_, err = inputFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestWritePayload(t *testing.T) {
	dir := t.TempDir()
	*outDir = dir

	payload := booking.NewRecord()
	payload.Put("booking_number", "CMAUSIJ0340893")
	payload.Put("etd", "11/08/2021")
	item := service.BatchItem{Result: &pipeline.Result{Payload: payload}}

	require.NoError(t, writePayload(filepath.Join("in", "booking-1.json"), item))

	data, err := os.ReadFile(filepath.Join(dir, "booking-1.normalized.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"booking_number":"CMAUSIJ0340893","etd":"11/08/2021"}`, string(data))
}
