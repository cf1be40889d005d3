package ingestion

import "errors"

var (
	// ErrLoaderRequired is returned when WithLoader is given a nil loader.
	ErrLoaderRequired = errors.New("document loader required")

	// ErrSourceRequired is returned when Run has neither a source nor a source path.
	ErrSourceRequired = errors.New("record source required")
)
