package internal

import "errors"

var (
	// ErrMalformedDate is returned when a date field is not a zero-padded YYYY-MM-DD calendar date
	ErrMalformedDate = errors.New("malformed date")

	// ErrSchemaMismatch is returned when an imported document matches neither supported shape
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrInvalidSlot is returned for unknown contract/line values or disallowed combinations
	ErrInvalidSlot = errors.New("invalid contract/line slot")

	ErrUnknownStatus   = errors.New("unknown status")
	ErrDatasetNotFound = errors.New("dataset not found")
)
