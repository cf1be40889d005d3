// Package mongo loads record batches into MongoDB and exports collections
// back into batches.
//
// Every connection is made over TLS verified against the system roots or a
// caller-supplied PEM bundle. Connection strings that ask for plaintext or
// for relaxed certificate checks are refused rather than honored.
//
// Loader.Load inserts a whole batch with one ordered InsertMany. If the
// server rejects the bulk write part way through, the documents written
// before the failure stay in the collection; the call still reports a
// single LoadError and makes no attempt to clean up.
package mongo
