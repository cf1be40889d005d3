package storage

import (
	"context"

	"github.com/poiesic/netingest/core"
)

// DocumentLoader bulk-inserts a batch into a document database collection.
type DocumentLoader interface {
	// Load inserts every record of batch into database/collection at uri as a
	// single bulk operation and returns the number of documents inserted.
	// A fresh connection is opened and closed per call.
	// Failures are returned as a LoadError.
	Load(ctx context.Context, uri string, batch core.Batch, database, collection string) (int, error)
}

// ArtifactRepository records the descriptors produced by ingestion runs.
// Implementations must be thread-safe.
type ArtifactRepository interface {
	// SaveArtifact stores a descriptor and assigns its Sequence.
	// Saving a RunID that already exists replaces the earlier descriptor.
	SaveArtifact(ctx context.Context, artifact *core.ArtifactDescriptor) (*core.ArtifactDescriptor, error)

	// GetArtifact retrieves the descriptor of a run.
	// Returns ErrNotFound if the run is unknown.
	GetArtifact(ctx context.Context, runID string) (*core.ArtifactDescriptor, error)

	// LatestArtifact returns the most recently saved descriptor.
	// Returns ErrNotFound if nothing has been saved.
	LatestArtifact(ctx context.Context) (*core.ArtifactDescriptor, error)

	// ListArtifacts returns up to limit descriptors, most recent first.
	// A limit <= 0 returns all of them.
	ListArtifacts(ctx context.Context, limit int) ([]*core.ArtifactDescriptor, error)

	// Close releases resources held by the repository.
	Close() error
}
