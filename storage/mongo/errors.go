package mongo

import "errors"

var (
	// ErrInsecureTransport is returned for connection strings that disable
	// TLS or certificate verification.
	ErrInsecureTransport = errors.New("connection string disables verified TLS")

	// ErrInvalidCABundle is returned when the CA file holds no usable certificates.
	ErrInvalidCABundle = errors.New("no certificates found in CA bundle")

	// ErrMissingTarget is returned when the database or collection name is empty.
	ErrMissingTarget = errors.New("database and collection names are required")

	// ErrEmptyCollection is returned when an exported collection holds no documents.
	ErrEmptyCollection = errors.New("collection has no documents")
)
