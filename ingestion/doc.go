// Package ingestion provides pipeline orchestration for network security datasets.
//
// The Pipeline type runs the two workflows of the data layer:
//   - Run reads a source, exports a feature store snapshot, splits it into
//     train and test files and returns an artifact descriptor
//   - RunETL converts a CSV file and bulk-loads it into MongoDB
//
// Both run synchronously and stop at the first failing step. Files written by
// earlier steps are left in place. Every error returned is a
// *core.PipelineError naming the step that failed.
package ingestion
