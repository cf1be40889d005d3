package badger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/netingest/core"
	"github.com/poiesic/netingest/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) *ArtifactRepository {
	t.Helper()
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func descriptor(runID string) *core.ArtifactDescriptor {
	return &core.ArtifactDescriptor{
		RunID:            runID,
		FeatureStorePath: "Artifacts/" + runID + "/data_ingestion/feature_store/phisingData.csv",
		TrainFilePath:    "Artifacts/" + runID + "/data_ingestion/ingested/train.csv",
		TestFilePath:     "Artifacts/" + runID + "/data_ingestion/ingested/test.csv",
		Columns:          []string{"a", "b", "c"},
		TotalRows:        10,
		TrainRows:        8,
		TestRows:         2,
		SplitRatio:       0.2,
		Seed:             42,
		SourceDigest:     "abc123",
		CreatedAt:        time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveArtifact_RoundTrip(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	in := descriptor("run-1")
	saved, err := repo.SaveArtifact(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, saved.Sequence)
	assert.Zero(t, in.Sequence, "input must not be mutated")

	got, err := repo.GetArtifact(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, saved.Sequence, got.Sequence)
	assert.Equal(t, in.TrainFilePath, got.TrainFilePath)
	assert.Equal(t, in.TestFilePath, got.TestFilePath)
	assert.Equal(t, in.Columns, got.Columns)
	assert.Equal(t, 8, got.TrainRows)
	assert.Equal(t, 2, got.TestRows)
	assert.True(t, in.CreatedAt.Equal(got.CreatedAt))
}

func TestSaveArtifact_SetsCreatedAt(t *testing.T) {
	repo := setupRepository(t)

	in := descriptor("run-1")
	in.CreatedAt = time.Time{}
	saved, err := repo.SaveArtifact(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestSaveArtifact_StoredValueMatchesReturned(t *testing.T) {
	repo := setupRepository(t)

	in := descriptor("run-1")
	in.CreatedAt = time.Date(2026, 10, 19, 12, 0, 0, 123456789, time.UTC)
	saved, err := repo.SaveArtifact(context.Background(), in)
	require.NoError(t, err)

	got, err := repo.LatestArtifact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	assert.Equal(t, 123456000, got.CreatedAt.Nanosecond())
}

func TestSaveArtifact_Invalid(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.SaveArtifact(context.Background(), nil)
	assert.True(t, errors.Is(err, storage.ErrInvalidArtifact))

	_, err = repo.SaveArtifact(context.Background(), &core.ArtifactDescriptor{})
	assert.True(t, errors.Is(err, storage.ErrInvalidArtifact))
}

func TestSaveArtifact_ReplacesSameRun(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	first, err := repo.SaveArtifact(ctx, descriptor("run-1"))
	require.NoError(t, err)

	again := descriptor("run-1")
	again.TestRows = 3
	second, err := repo.SaveArtifact(ctx, again)
	require.NoError(t, err)
	assert.Greater(t, second.Sequence, first.Sequence)

	all, err := repo.ListArtifacts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 3, all[0].TestRows)
}

func TestGetArtifact_NotFound(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.GetArtifact(context.Background(), "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestLatestArtifact(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.LatestArtifact(ctx)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	for i := 1; i <= 3; i++ {
		_, err := repo.SaveArtifact(ctx, descriptor(fmt.Sprintf("run-%d", i)))
		require.NoError(t, err)
	}

	latest, err := repo.LatestArtifact(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-3", latest.RunID)
}

func TestListArtifacts_MostRecentFirst(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := repo.SaveArtifact(ctx, descriptor(fmt.Sprintf("run-%d", i)))
		require.NoError(t, err)
	}

	all, err := repo.ListArtifacts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, a := range all {
		assert.Equal(t, fmt.Sprintf("run-%d", 5-i), a.RunID)
	}

	limited, err := repo.ListArtifacts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "run-5", limited[0].RunID)
	assert.Equal(t, "run-4", limited[1].RunID)
}

func TestArtifactRepository_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	repo, err := NewArtifactRepository(backend)
	require.NoError(t, err)
	first, err := repo.SaveArtifact(ctx, descriptor("run-1"))
	require.NoError(t, err)
	require.NoError(t, repo.Close())
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	repo, err = NewArtifactRepository(backend)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.GetArtifact(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, first.Sequence, got.Sequence)

	second, err := repo.SaveArtifact(ctx, descriptor("run-2"))
	require.NoError(t, err)
	assert.Greater(t, second.Sequence, first.Sequence)
}

func TestArtifactRepository_Closed(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Close())
	require.NoError(t, backend.Close())

	_, err = repo.GetArtifact(context.Background(), "run-1")
	assert.True(t, errors.Is(err, storage.ErrStorageClosed))

	_, err = repo.ListArtifacts(context.Background(), 0)
	assert.True(t, errors.Is(err, storage.ErrStorageClosed))
}
