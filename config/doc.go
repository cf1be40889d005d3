// Package config holds the value objects describing a pipeline run.
//
// TrainingPipelineConfig roots a run in a timestamped artifact directory,
// IngestionConfig derives the feature store, train and test locations from
// it, and ETLConfig names the file and collection of a database load. All of
// them are plain values: build once, pass by value, never mutate.
//
// Settings is the input shape accepted from the outside (YAML file, flags,
// environment). It is converted into the entities above once per run.
package config
