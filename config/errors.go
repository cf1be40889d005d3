package config

import "errors"

var (
	// ErrMissingValue is returned when a required setting is empty.
	ErrMissingValue = errors.New("missing required value")

	// ErrInvalidSplitRatio is returned when the split ratio is not strictly between 0 and 1.
	ErrInvalidSplitRatio = errors.New("split ratio must be between 0 and 1")

	// ErrPathConflict is returned when two outputs resolve to the same file.
	ErrPathConflict = errors.New("output paths conflict")
)
