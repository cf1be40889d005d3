package dataset

import "errors"

var (
	// ErrEmptySource is returned when the source has no header or no data rows.
	ErrEmptySource = errors.New("source has no data rows")

	// ErrNoHeader is returned when the header row has no usable columns.
	ErrNoHeader = errors.New("source has no header columns")

	// ErrInvalidEncoding is returned when a cell is not valid UTF-8.
	ErrInvalidEncoding = errors.New("source is not valid UTF-8")

	// ErrInvalidRatio is returned when a split ratio is not strictly between 0 and 1.
	ErrInvalidRatio = errors.New("split ratio must be between 0 and 1")
)
