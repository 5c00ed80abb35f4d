package domain

import "errors"

var (
	ErrMissingKeyMap           = errors.New("key name mapping is missing or empty")
	ErrMissingUOMTable         = errors.New("unit of measure table is missing or empty")
	ErrInvalidExtraction       = errors.New("extraction output is not a JSON object")
	ErrInvalidBatch            = errors.New("batch body is not a JSON array")
	ErrEmptyBatch              = errors.New("batch contains no records")
	ErrBatchTooLarge           = errors.New("batch exceeds the maximum number of records")
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
	ErrUnknownSchema           = errors.New("unknown compulsory field schema")
	ErrUnparseableDate         = errors.New("unparseable date")
	ErrPortNotResolved         = errors.New("port code not resolved")
)
