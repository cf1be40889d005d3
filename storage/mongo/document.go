package mongo

import (
	"fmt"
	"math"
	"slices"

	"github.com/poiesic/netingest/core"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const idField = "_id"

// missingMarker is the string the exported CSVs historically used for gaps.
const missingMarker = "na"

// toDocument renders a record as an ordered BSON document. Integers that fit
// in 32 bits are stored as int32, missing values as null.
func toDocument(r core.Record) bson.D {
	doc := make(bson.D, 0, len(r))
	for _, f := range r {
		doc = append(doc, bson.E{Key: f.Name, Value: toBSONValue(f.Value)})
	}
	return doc
}

func toBSONValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case int64:
		if val >= math.MinInt32 && val <= math.MaxInt32 {
			return int32(val)
		}
		return val
	case int:
		return toBSONValue(int64(val))
	case float64:
		if math.IsNaN(val) {
			return nil
		}
		return val
	default:
		return val
	}
}

func toDocuments(b core.Batch) []any {
	docs := make([]any, len(b.Records))
	for i, r := range b.Records {
		docs[i] = toDocument(r)
	}
	return docs
}

// toBatch flattens exported documents into a batch. Columns are the union of
// document keys in first-seen order, with _id dropped. Absent keys and the
// "na" marker both become nil.
func toBatch(docs []bson.D) core.Batch {
	var columns []string
	seen := make(map[string]struct{})
	for _, doc := range docs {
		for _, e := range doc {
			if e.Key == idField {
				continue
			}
			if _, ok := seen[e.Key]; ok {
				continue
			}
			seen[e.Key] = struct{}{}
			columns = append(columns, e.Key)
		}
	}

	records := make([]core.Record, len(docs))
	for i, doc := range docs {
		values := make(map[string]any, len(doc))
		for _, e := range doc {
			values[e.Key] = e.Value
		}
		rec := make(core.Record, len(columns))
		for j, col := range columns {
			rec[j] = core.Field{Name: col, Value: fromBSONValue(values[col])}
		}
		records[i] = rec
	}
	return core.Batch{Columns: slices.Clip(columns), Records: records}
}

func fromBSONValue(v any) any {
	switch val := v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return nil
	case int32:
		return int64(val)
	case int64:
		return val
	case float64:
		if math.IsNaN(val) {
			return nil
		}
		return val
	case string:
		if val == missingMarker {
			return nil
		}
		return val
	case bool:
		return val
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.Decimal128:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
