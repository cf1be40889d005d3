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


package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/netingest/core"
)

const (
	DefaultPipelineName     = "NetworkSecurity"
	DefaultArtifactDir      = "Artifacts"
	DefaultFeatureStoreFile = "phisingData.csv"
	DefaultTrainFile        = "train.csv"
	DefaultTestFile         = "test.csv"
	DefaultSplitRatio       = 0.2
	DefaultSeed             = 42
	DefaultDatabase         = "TONU_db"
	DefaultCollection       = "NetworkData"
	DefaultLogDir           = "Logs"

	dataIngestionDirName = "data_ingestion"
	featureStoreDirName  = "feature_store"
	ingestedDirName      = "ingested"

	// RunIDLayout formats the per-run artifact directory segment.
	RunIDLayout = "01_02_2006_15_04_05"
)

// TrainingPipelineConfig locates the artifacts of one pipeline run.
type TrainingPipelineConfig struct {
	PipelineName string
	ArtifactName string
	ArtifactDir  string
	Timestamp    time.Time
}

// NewTrainingPipelineConfig roots a run under baseDir in a directory named
// after ts.
func NewTrainingPipelineConfig(baseDir string, ts time.Time) TrainingPipelineConfig {
	if baseDir == "" {
		baseDir = DefaultArtifactDir
	}
	return TrainingPipelineConfig{
		PipelineName: DefaultPipelineName,
		ArtifactName: filepath.Base(baseDir),
		ArtifactDir:  filepath.Join(baseDir, ts.Format(RunIDLayout)),
		Timestamp:    ts,
	}
}

// RunID identifies the run by its timestamp segment.
func (c TrainingPipelineConfig) RunID() string {
	return c.Timestamp.Format(RunIDLayout)
}

// IngestionConfig describes where one ingestion run reads from and writes to.
type IngestionConfig struct {
	RunID            string
	SourcePath       string
	DatabaseName     string
	CollectionName   string
	IngestionDir     string
	FeatureStorePath string
	TrainPath        string
	TestPath         string
	SplitRatio       float64
	Seed             uint64
}

// IngestionOption adjusts an IngestionConfig while it is being built.
type IngestionOption func(*IngestionConfig)

func WithSourcePath(path string) IngestionOption {
	return func(c *IngestionConfig) {
		c.SourcePath = path
	}
}

func WithCollection(database, collection string) IngestionOption {
	return func(c *IngestionConfig) {
		c.DatabaseName = database
		c.CollectionName = collection
	}
}

func WithSplitRatio(ratio float64) IngestionOption {
	return func(c *IngestionConfig) {
		c.SplitRatio = ratio
	}
}

func WithSeed(seed uint64) IngestionOption {
	return func(c *IngestionConfig) {
		c.Seed = seed
	}
}

// NewIngestionConfig derives the ingestion layout from the run's artifact
// directory:
//
//	<artifact dir>/data_ingestion/feature_store/phisingData.csv
//	<artifact dir>/data_ingestion/ingested/train.csv
//	<artifact dir>/data_ingestion/ingested/test.csv
func NewIngestionConfig(tp TrainingPipelineConfig, opts ...IngestionOption) IngestionConfig {
	dir := filepath.Join(tp.ArtifactDir, dataIngestionDirName)
	cfg := IngestionConfig{
		RunID:            tp.RunID(),
		IngestionDir:     dir,
		FeatureStorePath: filepath.Join(dir, featureStoreDirName, DefaultFeatureStoreFile),
		TrainPath:        filepath.Join(dir, ingestedDirName, DefaultTrainFile),
		TestPath:         filepath.Join(dir, ingestedDirName, DefaultTestFile),
		SplitRatio:       DefaultSplitRatio,
		Seed:             DefaultSeed,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Validate checks that every output location is set and the split ratio is
// usable. SourcePath and the collection pair are checked by whichever source
// reads them.
func (c IngestionConfig) Validate() error {
	if strings.TrimSpace(c.FeatureStorePath) == "" {
		return core.Wrapf(core.KindConfig, core.StageConfig, "%w: feature store path", ErrMissingValue)
	}
	if strings.TrimSpace(c.TrainPath) == "" {
		return core.Wrapf(core.KindConfig, core.StageConfig, "%w: train path", ErrMissingValue)
	}
	if strings.TrimSpace(c.TestPath) == "" {
		return core.Wrapf(core.KindConfig, core.StageConfig, "%w: test path", ErrMissingValue)
	}
	if c.TrainPath == c.TestPath {
		return core.Wrapf(core.KindConfig, core.StageConfig, "%w: train and test paths are both %s", ErrPathConflict, c.TrainPath)
	}
	if !(c.SplitRatio > 0 && c.SplitRatio < 1) {
		return core.Wrapf(core.KindConfig, core.StageConfig, "%w: got %v", ErrInvalidSplitRatio, c.SplitRatio)
	}
	return nil
}

// ETLConfig describes one CSV-to-database load.
type ETLConfig struct {
	SourcePath     string
	ConnectionURI  string
	DatabaseName   string
	CollectionName string
}

func (c ETLConfig) Validate() error {
	if strings.TrimSpace(c.SourcePath) == "" {
		return core.Wrapf(core.KindConfig, core.StageConfig, "%w: source path", ErrMissingValue)
	}
	if strings.TrimSpace(c.ConnectionURI) == "" {
		return core.Wrapf(core.KindConfig, core.StageConfig, "%w: connection URI", ErrMissingValue)
	}
	if strings.TrimSpace(c.DatabaseName) == "" {
		return core.Wrapf(core.KindConfig, core.StageConfig, "%w: database name", ErrMissingValue)
	}
	if strings.TrimSpace(c.CollectionName) == "" {
		return core.Wrapf(core.KindConfig, core.StageConfig, "%w: collection name", ErrMissingValue)
	}
	return nil
}
