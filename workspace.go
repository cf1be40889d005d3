// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package netingest

import (
	"log/slog"

	"github.com/poiesic/netingest/ingestion"
	"github.com/poiesic/netingest/storage"
	"github.com/poiesic/netingest/storage/badger"
	"github.com/poiesic/netingest/storage/mongo"
)

// Workspace ties the artifact registry to the pipelines that feed it.
type Workspace struct {
	backend   *badger.Backend
	registry  *badger.ArtifactRepository
	mongoOpts []mongo.Option
	logger    *slog.Logger
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	logger    *slog.Logger
	mongoOpts []mongo.Option
}

// WithLogger sets the logger handed to the registry and every pipeline.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) WorkspaceOption {
	return func(o *workspaceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMongoOptions configures the MongoDB connections made by pipelines and
// collection sources, e.g. mongo.WithCAFile.
func WithMongoOptions(opts ...mongo.Option) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.mongoOpts = append(o.mongoOpts, opts...)
	}
}

// NewWorkspace opens the artifact registry at registryDir. An empty
// registryDir keeps the registry in memory for the life of the Workspace.
func NewWorkspace(registryDir string, opts ...WorkspaceOption) (*Workspace, error) {
	options := &workspaceOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(registryDir, registryDir == "", badger.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	registry, err := badger.NewArtifactRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Workspace{
		backend:   backend,
		registry:  registry,
		mongoOpts: append([]mongo.Option{mongo.WithLogger(options.logger)}, options.mongoOpts...),
		logger:    options.logger,
	}, nil
}

func (w *Workspace) Close() error {
	if err := w.registry.Close(); err != nil {
		w.logger.Error("error closing artifact registry", "err", err)
		return err
	}
	if err := w.backend.Close(); err != nil {
		w.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (w *Workspace) Registry() storage.ArtifactRepository {
	return w.registry
}

// NewIngestionPipeline returns a pipeline that records its artifacts in the
// workspace registry and loads through MongoDB. opts are applied last.
func (w *Workspace) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	base := []ingestion.Option{
		ingestion.WithLogger(w.logger),
		ingestion.WithRegistry(w.registry),
		ingestion.WithLoader(mongo.NewLoader(w.mongoOpts...)),
	}
	return ingestion.NewPipeline(append(base, opts...)...)
}

// NewCollectionSource exports database.collection at uri as an ingestion source.
func (w *Workspace) NewCollectionSource(uri, database, collection string) *mongo.CollectionSource {
	return mongo.NewCollectionSource(uri, database, collection, w.mongoOpts...)
}
