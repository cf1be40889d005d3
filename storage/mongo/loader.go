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


package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/netingest/core"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Loader inserts record batches into a MongoDB collection.
type Loader struct {
	conn connector
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	return &Loader{conn: newConnector(opts)}
}

// Load connects to uri, inserts every record of batch into
// database.collection as one ordered InsertMany and returns the number of
// documents the server acknowledged. An empty batch returns 0 without
// connecting.
func (l *Loader) Load(ctx context.Context, uri string, batch core.Batch, database, collection string) (int, error) {
	if database == "" || collection == "" {
		return 0, core.Wrap(core.KindConfig, core.StageLoad, ErrMissingTarget)
	}
	if err := CheckURI(uri); err != nil {
		return 0, core.Wrap(core.KindConfig, core.StageLoad, err)
	}
	if err := core.ValidateBatch(batch); err != nil {
		return 0, core.Wrap(core.KindLoad, core.StageLoad, err)
	}
	if batch.Len() == 0 {
		l.conn.logger.Info("nothing to load", "database", database, "collection", collection)
		return 0, nil
	}

	client, err := l.conn.connect(ctx, uri, core.KindLoad, core.StageLoad)
	if err != nil {
		return 0, err
	}
	defer l.conn.disconnect(client)

	coll := client.Database(database).Collection(collection)
	res, err := coll.InsertMany(ctx, toDocuments(batch), options.InsertMany().SetOrdered(true))
	if err != nil {
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) {
			// Ordered inserts stop at the first failure; everything before
			// its index is already committed. InsertedIDs lists all
			// attempted IDs, so it cannot be used as the count here.
			inserted := 0
			if len(bwe.WriteErrors) > 0 {
				inserted = bwe.WriteErrors[0].Index
			}
			l.conn.logger.Error("bulk insert stopped part way",
				"database", database,
				"collection", collection,
				"write_errors", len(bwe.WriteErrors),
				"inserted", inserted,
				"total", batch.Len())
		}
		return 0, core.Wrap(core.KindLoad, core.StageLoad, fmt.Errorf("insert into %s.%s: %w", database, collection, err))
	}

	l.conn.logger.Info("loaded records",
		"database", database,
		"collection", collection,
		"count", len(res.InsertedIDs))
	return len(res.InsertedIDs), nil
}

// Load is a convenience wrapper around NewLoader(opts...).Load.
func Load(ctx context.Context, uri string, batch core.Batch, database, collection string, opts ...Option) (int, error) {
	return NewLoader(opts...).Load(ctx, uri, batch, database, collection)
}
