package mongo

import (
	"context"
	"fmt"

	"github.com/poiesic/netingest/core"
	"go.mongodb.org/mongo-driver/bson"
)

// CollectionSource reads a whole collection back as a batch, the way the
// ingestion stage exports its raw data.
type CollectionSource struct {
	uri        string
	database   string
	collection string
	conn       connector
}

// NewCollectionSource creates a source for database.collection at uri.
func NewCollectionSource(uri, database, collection string, opts ...Option) *CollectionSource {
	return &CollectionSource{
		uri:        uri,
		database:   database,
		collection: collection,
		conn:       newConnector(opts),
	}
}

// Read fetches every document in the collection.
func (s *CollectionSource) Read(ctx context.Context) (core.Batch, error) {
	if s.database == "" || s.collection == "" {
		return core.Batch{}, core.Wrap(core.KindConfig, core.StageExtract, ErrMissingTarget)
	}

	client, err := s.conn.connect(ctx, s.uri, core.KindConversion, core.StageExtract)
	if err != nil {
		return core.Batch{}, err
	}
	defer s.conn.disconnect(client)

	cursor, err := client.Database(s.database).Collection(s.collection).Find(ctx, bson.D{})
	if err != nil {
		return core.Batch{}, core.Wrap(core.KindConversion, core.StageExtract, fmt.Errorf("find: %w", err))
	}
	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return core.Batch{}, core.Wrap(core.KindConversion, core.StageExtract, fmt.Errorf("decode: %w", err))
	}
	if len(docs) == 0 {
		return core.Batch{}, core.Wrap(core.KindConversion, core.StageExtract,
			fmt.Errorf("%w: %s.%s", ErrEmptyCollection, s.database, s.collection))
	}

	batch := toBatch(docs)
	s.conn.logger.Info("exported collection",
		"database", s.database,
		"collection", s.collection,
		"records", batch.Len(),
		"columns", len(batch.Columns))
	return batch, nil
}
