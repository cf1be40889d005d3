package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/netingest/config"
	"github.com/poiesic/netingest/core"
	"github.com/poiesic/netingest/dataset"
	"github.com/poiesic/netingest/storage"
	"github.com/poiesic/netingest/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLoader implements storage.DocumentLoader for testing
type testLoader struct {
	calls      int
	uri        string
	database   string
	collection string
	batch      core.Batch
	err        error
}

func (l *testLoader) Load(ctx context.Context, uri string, batch core.Batch, database, collection string) (int, error) {
	l.calls++
	l.uri = uri
	l.batch = batch
	l.database = database
	l.collection = collection
	if l.err != nil {
		return 0, l.err
	}
	return batch.Len(), nil
}

// testRegistry implements storage.ArtifactRepository and always fails writes
type testRegistry struct {
	storage.ArtifactRepository
}

func (r *testRegistry) SaveArtifact(ctx context.Context, a *core.ArtifactDescriptor) (*core.ArtifactDescriptor, error) {
	return nil, storage.ErrStorageClosed
}

// testSource implements Source for testing
type testSource struct {
	batch core.Batch
	err   error
}

func (s *testSource) Read(ctx context.Context) (core.Batch, error) {
	return s.batch, s.err
}

var fixedTime = time.Date(2026, 10, 19, 9, 30, 15, 0, time.UTC)

func writeSource(t *testing.T, rows int) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("a,b,c\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "%d,%d,%d\n", i, i%2, -1)
	}
	path := filepath.Join(t.TempDir(), "phisingData.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))
	return path
}

func ingestionConfig(t *testing.T, source string) config.IngestionConfig {
	t.Helper()
	tp := config.NewTrainingPipelineConfig(filepath.Join(t.TempDir(), "Artifacts"), fixedTime)
	return config.NewIngestionConfig(tp, config.WithSourcePath(source))
}

func setupPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedTime })}, opts...)
	p, err := NewPipeline(opts...)
	require.NoError(t, err)
	return p
}

func TestNewPipeline(t *testing.T) {
	p, err := NewPipeline()
	require.NoError(t, err)
	assert.NotNil(t, p.loader)
	assert.NotNil(t, p.logger)
	assert.Nil(t, p.registry)

	_, err = NewPipeline(WithLoader(nil))
	assert.ErrorIs(t, err, ErrLoaderRequired)
}

func TestRun_SplitsTenRows(t *testing.T) {
	p := setupPipeline(t)
	cfg := ingestionConfig(t, writeSource(t, 10))

	desc, err := p.Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, cfg.RunID, desc.RunID)
	assert.Equal(t, cfg.TrainPath, desc.TrainFilePath)
	assert.Equal(t, cfg.TestPath, desc.TestFilePath)
	assert.Equal(t, cfg.FeatureStorePath, desc.FeatureStorePath)
	assert.Equal(t, []string{"a", "b", "c"}, desc.Columns)
	assert.Equal(t, 10, desc.TotalRows)
	assert.Equal(t, 8, desc.TrainRows)
	assert.Equal(t, 2, desc.TestRows)
	assert.NotEmpty(t, desc.SourceDigest)
	assert.True(t, fixedTime.Equal(desc.CreatedAt))

	feature, err := dataset.Convert(desc.FeatureStorePath)
	require.NoError(t, err)
	assert.Equal(t, 10, feature.Len())

	train, err := dataset.Convert(desc.TrainFilePath)
	require.NoError(t, err)
	test, err := dataset.Convert(desc.TestFilePath)
	require.NoError(t, err)
	assert.Equal(t, 8, train.Len())
	assert.Equal(t, 2, test.Len())

	// Every source row lands in exactly one split.
	seen := make(map[any]int)
	for _, b := range []core.Batch{train, test} {
		for _, r := range b.Records {
			v, ok := r.Get("a")
			require.True(t, ok)
			seen[v]++
		}
	}
	assert.Len(t, seen, 10)
	for v, n := range seen {
		assert.Equal(t, 1, n, "row %v", v)
	}
}

func TestRun_Idempotent(t *testing.T) {
	p := setupPipeline(t)
	cfg := ingestionConfig(t, writeSource(t, 25))

	first, err := p.Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	trainBefore, err := os.ReadFile(first.TrainFilePath)
	require.NoError(t, err)

	second, err := p.Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	trainAfter, err := os.ReadFile(second.TrainFilePath)
	require.NoError(t, err)

	assert.Equal(t, first.TrainRows, second.TrainRows)
	assert.Equal(t, first.TestRows, second.TestRows)
	assert.Equal(t, first.SourceDigest, second.SourceDigest)
	assert.Equal(t, trainBefore, trainAfter)
}

func TestRun_CustomSource(t *testing.T) {
	p := setupPipeline(t)
	cfg := ingestionConfig(t, "")
	src := &testSource{batch: core.Batch{
		Columns: []string{"x"},
		Records: []core.Record{
			{{Name: "x", Value: int64(1)}},
			{{Name: "x", Value: int64(2)}},
			{{Name: "x", Value: nil}},
		},
	}}

	desc, err := p.Run(context.Background(), cfg, src)
	require.NoError(t, err)
	assert.Equal(t, 3, desc.TotalRows)
	assert.Equal(t, 1, desc.TestRows)
	assert.Equal(t, 2, desc.TrainRows)
}

func TestRun_MissingSource(t *testing.T) {
	p := setupPipeline(t)
	cfg := ingestionConfig(t, filepath.Join(t.TempDir(), "missing.csv"))

	desc, err := p.Run(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, desc)
	assert.True(t, errors.Is(err, core.ErrConversion))
	assert.Equal(t, core.StageExtract, core.StageOf(err))

	_, statErr := os.Stat(cfg.FeatureStorePath)
	assert.True(t, os.IsNotExist(statErr), "no outputs should be written")
}

func TestRun_NoSourceConfigured(t *testing.T) {
	p := setupPipeline(t)
	_, err := p.Run(context.Background(), ingestionConfig(t, ""), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceRequired))
	assert.Equal(t, core.KindConfig, core.KindOf(err))
}

func TestRun_SourceErrorIsWrapped(t *testing.T) {
	p := setupPipeline(t)
	_, err := p.Run(context.Background(), ingestionConfig(t, ""), &testSource{err: errors.New("boom")})
	require.Error(t, err)
	assert.Equal(t, core.KindConversion, core.KindOf(err))
	assert.Equal(t, core.StageExtract, core.StageOf(err))
}

func TestRun_InvalidConfig(t *testing.T) {
	p := setupPipeline(t)
	cfg := ingestionConfig(t, writeSource(t, 10))
	cfg.SplitRatio = 1.5

	_, err := p.Run(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfig))
	assert.Equal(t, core.StageConfig, core.StageOf(err))
}

func TestRun_PersistFailure(t *testing.T) {
	p := setupPipeline(t)
	cfg := ingestionConfig(t, writeSource(t, 10))

	// A file where the ingested directory should be blocks the train write.
	ingested := filepath.Dir(cfg.TrainPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(ingested), 0755))
	require.NoError(t, os.WriteFile(ingested, []byte("x"), 0644))

	_, err := p.Run(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrPersistence))
	assert.Equal(t, core.StagePersist, core.StageOf(err))

	// The feature store written before the failure stays in place.
	_, statErr := os.Stat(cfg.FeatureStorePath)
	assert.NoError(t, statErr)
}

func TestRun_RecordsArtifact(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	p := setupPipeline(t, WithRegistry(repo))
	cfg := ingestionConfig(t, writeSource(t, 10))

	desc, err := p.Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.NotZero(t, desc.Sequence)

	latest, err := repo.LatestArtifact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, desc.RunID, latest.RunID)
	assert.Equal(t, desc.TrainFilePath, latest.TrainFilePath)
}

func TestRun_RegistryFailure(t *testing.T) {
	p := setupPipeline(t, WithRegistry(&testRegistry{}))
	_, err := p.Run(context.Background(), ingestionConfig(t, writeSource(t, 10)), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrPersistence))
	assert.True(t, errors.Is(err, storage.ErrStorageClosed))
	assert.Equal(t, core.StageRegister, core.StageOf(err))
}

func etlConfig(source string) config.ETLConfig {
	return config.ETLConfig{
		SourcePath:     source,
		ConnectionURI:  "mongodb+srv://user:pw@cluster0.example.net/",
		DatabaseName:   "TONU_db",
		CollectionName: "NetworkData",
	}
}

func TestRunETL(t *testing.T) {
	loader := &testLoader{}
	p := setupPipeline(t, WithLoader(loader))

	n, err := p.RunETL(context.Background(), etlConfig(writeSource(t, 2)))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, "TONU_db", loader.database)
	assert.Equal(t, "NetworkData", loader.collection)
	assert.Equal(t, []string{"a", "b", "c"}, loader.batch.Columns)
}

func TestRunETL_LoaderFailure(t *testing.T) {
	loader := &testLoader{err: errors.New("server selection timeout")}
	p := setupPipeline(t, WithLoader(loader))

	_, err := p.RunETL(context.Background(), etlConfig(writeSource(t, 2)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrLoad))
	assert.Equal(t, core.StageLoad, core.StageOf(err))
	assert.Contains(t, err.Error(), "server selection timeout")
}

func TestRunETL_MissingFile(t *testing.T) {
	loader := &testLoader{}
	p := setupPipeline(t, WithLoader(loader))

	_, err := p.RunETL(context.Background(), etlConfig(filepath.Join(t.TempDir(), "missing.csv")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConversion))
	assert.Zero(t, loader.calls)
}

func TestRunETL_InvalidConfig(t *testing.T) {
	loader := &testLoader{}
	p := setupPipeline(t, WithLoader(loader))

	cfg := etlConfig(writeSource(t, 2))
	cfg.ConnectionURI = ""
	_, err := p.RunETL(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfig))
	assert.Zero(t, loader.calls)
}
