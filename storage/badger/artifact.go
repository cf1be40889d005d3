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


package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/netingest/core"
	"github.com/poiesic/netingest/storage"
)

type ArtifactRepository struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.ArtifactRepository = (*ArtifactRepository)(nil)

func NewArtifactRepository(backend *Backend) (*ArtifactRepository, error) {
	seq, err := backend.GetSequence(artifactSeq)
	if err != nil {
		return nil, err
	}
	return &ArtifactRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

func (r *ArtifactRepository) Close() error {
	return r.seq.Release()
}

func (r *ArtifactRepository) nextSequence() (uint64, error) {
	next, err := r.seq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if next == 0 {
		return r.seq.Next()
	}
	return next, nil
}

func (r *ArtifactRepository) SaveArtifact(ctx context.Context, artifact *core.ArtifactDescriptor) (*core.ArtifactDescriptor, error) {
	if artifact == nil || artifact.RunID == "" {
		return nil, fmt.Errorf("%w: run id is required", storage.ErrInvalidArtifact)
	}
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	saved := *artifact
	saved.Columns = slices.Clone(artifact.Columns)
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now().UTC()
	}
	// Stored timestamps keep microsecond precision.
	saved.CreatedAt = saved.CreatedAt.Truncate(time.Microsecond)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		runKey := makeArtifactRunKey(saved.RunID)

		// A re-recorded run replaces its earlier descriptor
		item, err := tx.Get(runKey)
		switch {
		case err == nil:
			var oldSeq uint64
			if err := item.Value(func(val []byte) error {
				var ok bool
				oldSeq, ok = decodeSeq(val)
				if !ok {
					return storage.ErrSerializationFailed
				}
				return nil
			}); err != nil {
				return err
			}
			if err := tx.Delete(makeArtifactKey(oldSeq)); err != nil {
				return err
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		seq, err := r.nextSequence()
		if err != nil {
			return err
		}
		saved.Sequence = seq

		if err := tx.Set(makeArtifactKey(seq), storage.MarshalArtifact(&saved)); err != nil {
			return err
		}
		if err := tx.Set(runKey, encodeSeq(seq)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ArtifactRepository) GetArtifact(ctx context.Context, runID string) (*core.ArtifactDescriptor, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var artifact *core.ArtifactDescriptor
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeArtifactRunKey(runID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		var seq uint64
		if err := item.Value(func(val []byte) error {
			var ok bool
			seq, ok = decodeSeq(val)
			if !ok {
				return storage.ErrSerializationFailed
			}
			return nil
		}); err != nil {
			return err
		}

		item, err = tx.Get(makeArtifactKey(seq))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		artifact, err = unmarshalArtifact(item)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

func (r *ArtifactRepository) LatestArtifact(ctx context.Context) (*core.ArtifactDescriptor, error) {
	artifacts, err := r.ListArtifacts(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(artifacts) == 0 {
		return nil, storage.ErrNotFound
	}
	return artifacts[0], nil
}

func (r *ArtifactRepository) ListArtifacts(ctx context.Context, limit int) ([]*core.ArtifactDescriptor, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var artifacts []*core.ArtifactDescriptor
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(artifactRecordPrefix + ":")
		for iter.Seek(makeArtifactSeekEnd()); iter.Valid(); iter.Next() {
			if limit > 0 && len(artifacts) >= limit {
				break
			}
			item := iter.Item()
			if !bytes.HasPrefix(item.Key(), prefix) {
				break
			}
			artifact, err := unmarshalArtifact(item)
			if err != nil {
				return err
			}
			artifacts = append(artifacts, artifact)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func unmarshalArtifact(item *badger.Item) (*core.ArtifactDescriptor, error) {
	var artifact *core.ArtifactDescriptor
	err := item.Value(func(val []byte) error {
		var err error
		artifact, err = storage.UnmarshalArtifact(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return artifact, nil
}
