// Package dataset converts delimited text files into record batches and
// writes batches back out.
//
// Convert reads a comma-separated file with a header row into a core.Batch,
// one record per data row. Columns are typed as a whole: a column whose
// non-missing cells are all integers holds int64 values, one whose cells are
// all numeric holds float64 values, and anything else stays string. The usual
// missing-value tokens (empty, NA, NaN, null, ...) become nil.
//
// WriteCSV is the inverse, Split partitions a batch into train and test
// subsets with a seeded shuffle, and Digest fingerprints a written file.
//
// All failures are returned as *core.PipelineError.
package dataset
