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


// Package storage provides the storage abstraction layer for netingest.
//
// Two kinds of storage sit behind these interfaces:
//
//   - DocumentLoader: the document database a dataset is bulk-loaded into
//     (implemented by storage/mongo)
//   - ArtifactRepository: a local registry of artifact descriptors produced by
//     ingestion runs (implemented by storage/badger)
//
// # Usage
//
// Open a registry and record a run:
//
//	backend, err := badger.OpenBackend("/path/to/registry", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	repo, err := badger.NewArtifactRepository(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
//	saved, err := repo.SaveArtifact(ctx, artifact)
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryRepository()
//
// # Errors
//
// Lookups return ErrNotFound for unknown keys. Write failures surfaced to
// the pipeline are wrapped as core.PipelineError with KindPersistence.
//
// # Context Support
//
// All repository methods accept context.Context. Pass context.Background()
// for operations without specific timeout requirements.
package storage
