package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/netingest/config"
	"github.com/poiesic/netingest/core"
	"github.com/poiesic/netingest/dataset"
	"github.com/poiesic/netingest/storage"
	"github.com/poiesic/netingest/storage/mongo"
)

// Pipeline runs ingestion and ETL workflows.
type Pipeline struct {
	loader   storage.DocumentLoader
	registry storage.ArtifactRepository
	clock    func() time.Time
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithLoader sets the loader used by RunETL.
// Default is a MongoDB loader using the pipeline's logger.
func WithLoader(loader storage.DocumentLoader) Option {
	return func(p *Pipeline) error {
		if loader == nil {
			return ErrLoaderRequired
		}
		p.loader = loader
		return nil
	}
}

// WithRegistry records every descriptor produced by Run.
// Without a registry descriptors are only returned to the caller.
func WithRegistry(registry storage.ArtifactRepository) Option {
	return func(p *Pipeline) error {
		p.registry = registry
		return nil
	}
}

// WithClock sets the time source for descriptor timestamps.
// Default is time.Now.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) error {
		if clock != nil {
			p.clock = clock
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if p.loader == nil {
		p.loader = mongo.NewLoader(mongo.WithLogger(p.logger))
	}
	return p, nil
}

// Run executes one ingestion run: extract, export the feature store, split
// and persist the train and test files. A nil src reads cfg.SourcePath.
func (p *Pipeline) Run(ctx context.Context, cfg config.IngestionConfig, src Source) (*core.ArtifactDescriptor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		if cfg.SourcePath == "" {
			return nil, core.Wrap(core.KindConfig, core.StageConfig, ErrSourceRequired)
		}
		src = NewFileSource(cfg.SourcePath)
	}
	logger := p.logger.With("run_id", cfg.RunID)
	logger.Info("starting data ingestion", "split_ratio", cfg.SplitRatio, "seed", cfg.Seed)

	batch, err := src.Read(ctx)
	if err != nil {
		logger.Error("extract failed", "stage", core.StageExtract, "err", err)
		return nil, core.Wrap(core.KindConversion, core.StageExtract, err)
	}
	logger.Info("extracted records", "stage", core.StageExtract, "records", batch.Len(), "columns", len(batch.Columns))

	if err := dataset.WriteCSV(core.StageExport, cfg.FeatureStorePath, batch); err != nil {
		logger.Error("feature store export failed", "stage", core.StageExport, "err", err)
		return nil, err
	}
	digest, err := dataset.Digest(cfg.FeatureStorePath)
	if err != nil {
		return nil, err
	}
	logger.Info("exported feature store", "stage", core.StageExport, "path", cfg.FeatureStorePath)

	train, test, err := dataset.Split(batch, cfg.SplitRatio, cfg.Seed)
	if err != nil {
		return nil, err
	}
	logger.Info("split records", "stage", core.StageSplit, "train", train.Len(), "test", test.Len())

	if err := dataset.WriteCSV(core.StagePersist, cfg.TrainPath, train); err != nil {
		logger.Error("writing train file failed", "stage", core.StagePersist, "err", err)
		return nil, err
	}
	if err := dataset.WriteCSV(core.StagePersist, cfg.TestPath, test); err != nil {
		logger.Error("writing test file failed", "stage", core.StagePersist, "err", err)
		return nil, err
	}

	desc := &core.ArtifactDescriptor{
		RunID:            cfg.RunID,
		FeatureStorePath: cfg.FeatureStorePath,
		TrainFilePath:    cfg.TrainPath,
		TestFilePath:     cfg.TestPath,
		Columns:          batch.Columns,
		TotalRows:        batch.Len(),
		TrainRows:        train.Len(),
		TestRows:         test.Len(),
		SplitRatio:       cfg.SplitRatio,
		Seed:             cfg.Seed,
		SourceDigest:     digest,
		CreatedAt:        p.clock().UTC(),
	}
	if desc.RunID == "" {
		desc.RunID = desc.CreatedAt.Format(config.RunIDLayout)
	}

	if p.registry != nil {
		saved, err := p.registry.SaveArtifact(ctx, desc)
		if err != nil {
			logger.Error("recording artifact failed", "stage", core.StageRegister, "err", err)
			return nil, core.Wrap(core.KindPersistence, core.StageRegister, err)
		}
		desc = saved
	}

	logger.Info("data ingestion complete", "artifact", desc.String())
	return desc, nil
}

// RunETL converts the source CSV and loads every record into the configured
// collection. It returns the number of documents inserted.
func (p *Pipeline) RunETL(ctx context.Context, cfg config.ETLConfig) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	logger := p.logger.With("database", cfg.DatabaseName, "collection", cfg.CollectionName)

	batch, err := dataset.Convert(cfg.SourcePath)
	if err != nil {
		logger.Error("conversion failed", "stage", core.StageExtract, "err", err)
		return 0, err
	}
	logger.Info("converted records", "stage", core.StageExtract, "records", batch.Len(), "source", cfg.SourcePath)

	n, err := p.loader.Load(ctx, cfg.ConnectionURI, batch, cfg.DatabaseName, cfg.CollectionName)
	if err != nil {
		logger.Error("load failed", "stage", core.StageLoad, "err", err)
		return 0, core.Wrap(core.KindLoad, core.StageLoad, err)
	}
	logger.Info("etl complete", "stage", core.StageLoad, "inserted", n)
	return n, nil
}
