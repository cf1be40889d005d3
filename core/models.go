package core

import (
	"fmt"
	"strings"
	"time"
)

// Field is one named cell of a Record.
// Value is nil, int64, float64 or string.
type Field struct {
	Name  string
	Value any
}

// Record is one row of the source table as an ordered column-to-value
// mapping. Field order matches the header order of the source.
type Record []Field

// Get returns the value stored under name and whether it was present.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns the column names of the record in order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// Batch is the whole dataset of one run. Records keep source row order.
type Batch struct {
	Columns []string
	Records []Record
}

// Len returns the number of records in the batch.
func (b Batch) Len() int {
	return len(b.Records)
}

// Subset returns a batch sharing b's columns that holds the records at the
// given indices, in index order.
func (b Batch) Subset(indices []int) Batch {
	records := make([]Record, len(indices))
	for i, idx := range indices {
		records[i] = b.Records[idx]
	}
	return Batch{Columns: b.Columns, Records: records}
}

// ArtifactDescriptor describes the files produced by one ingestion run.
type ArtifactDescriptor struct {
	Sequence         uint64    `json:"sequence"`
	RunID            string    `json:"run_id"`
	FeatureStorePath string    `json:"feature_store_path"`
	TrainFilePath    string    `json:"train_file_path"`
	TestFilePath     string    `json:"test_file_path"`
	Columns          []string  `json:"columns"`
	TotalRows        int       `json:"total_rows"`
	TrainRows        int       `json:"train_rows"`
	TestRows         int       `json:"test_rows"`
	SplitRatio       float64   `json:"split_ratio"`
	Seed             uint64    `json:"seed"`
	SourceDigest     string    `json:"source_digest"`
	CreatedAt        time.Time `json:"created_at"`
}

func (a *ArtifactDescriptor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ArtifactDescriptor(run_id=%s", a.RunID)
	fmt.Fprintf(&sb, ", train_file_path=%s, test_file_path=%s", a.TrainFilePath, a.TestFilePath)
	fmt.Fprintf(&sb, ", feature_store_path=%s", a.FeatureStorePath)
	fmt.Fprintf(&sb, ", rows=%d train=%d test=%d)", a.TotalRows, a.TrainRows, a.TestRows)
	return sb.String()
}
