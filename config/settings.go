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
	"bytes"
	"errors"
	"io"
	"os"
	"time"

	"github.com/poiesic/netingest/core"
	"gopkg.in/yaml.v3"
)

// Settings are the raw run inputs supplied by the caller, typically a YAML
// file overridden by command-line flags and environment variables.
type Settings struct {
	// SourceFile is the comma-separated dataset to ingest.
	SourceFile string `yaml:"source_file"`

	// MongoURL is the MongoDB connection string. Usually supplied through
	// MONGO_DB_URL rather than written to a file.
	MongoURL string `yaml:"mongo_url"`

	// TLSCAFile optionally points at a PEM bundle used instead of the system
	// roots to verify the database certificate.
	TLSCAFile string `yaml:"tls_ca_file"`

	// Default: "TONU_db"
	Database string `yaml:"database"`

	// Default: "NetworkData"
	Collection string `yaml:"collection"`

	// ArtifactDir is the base directory; each run writes below a
	// timestamped subdirectory.
	ArtifactDir string `yaml:"artifact_dir"`

	// SplitRatio is the fraction of records held out for test.
	// Default: 0.2
	SplitRatio float64 `yaml:"split_ratio"`

	// Seed drives the shuffle before splitting.
	// Default: 42
	Seed uint64 `yaml:"seed"`

	// RegistryDir, when set, is a badger directory recording every
	// produced artifact descriptor.
	RegistryDir string `yaml:"registry_dir"`

	// LogDir receives one log file per run.
	// Default: "Logs"
	LogDir string `yaml:"log_dir"`
}

func DefaultSettings() Settings {
	return Settings{
		Database:    DefaultDatabase,
		Collection:  DefaultCollection,
		ArtifactDir: DefaultArtifactDir,
		SplitRatio:  DefaultSplitRatio,
		Seed:        DefaultSeed,
		LogDir:      DefaultLogDir,
	}
}

// LoadSettings reads YAML settings from path on top of DefaultSettings.
// Unknown keys are rejected.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, core.Wrap(core.KindConfig, core.StageConfig, err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML settings on top of DefaultSettings.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, core.Wrap(core.KindConfig, core.StageConfig, err)
	}
	return s, nil
}

// IngestionConfig builds the ingestion config for a run started at ts.
func (s Settings) IngestionConfig(ts time.Time) IngestionConfig {
	tp := NewTrainingPipelineConfig(s.ArtifactDir, ts)
	return NewIngestionConfig(tp,
		WithSourcePath(s.SourceFile),
		WithCollection(s.Database, s.Collection),
		WithSplitRatio(s.SplitRatio),
		WithSeed(s.Seed),
	)
}

// ETLConfig builds the database load config.
func (s Settings) ETLConfig() ETLConfig {
	return ETLConfig{
		SourcePath:     s.SourceFile,
		ConnectionURI:  s.MongoURL,
		DatabaseName:   s.Database,
		CollectionName: s.Collection,
	}
}
