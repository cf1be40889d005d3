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


package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/netingest"
	"github.com/poiesic/netingest/config"
	"github.com/poiesic/netingest/ingestion"
	"github.com/poiesic/netingest/runlog"
	"github.com/poiesic/netingest/storage/mongo"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "netingest",
		Usage: "Network security dataset ingestion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-dir",
				Usage: "Directory receiving one log file per run",
				Value: config.DefaultLogDir,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML settings file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "push",
				Usage:  "Load a CSV file into a MongoDB collection",
				Action: pushCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Path to the CSV file to load",
					},
				}, mongoFlags()...),
			},
			{
				Name:   "ingest",
				Usage:  "Export a dataset into feature store, train and test files",
				Action: ingestCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Path to the CSV file to ingest",
					},
					&cli.BoolFlag{
						Name:  "from-mongo",
						Usage: "Read the configured MongoDB collection instead of a CSV file",
					},
					&cli.StringFlag{
						Name:  "artifact-dir",
						Usage: "Base directory for run artifacts",
						Value: config.DefaultArtifactDir,
					},
					&cli.Float64Flag{
						Name:  "split-ratio",
						Usage: "Fraction of records held out for test",
						Value: config.DefaultSplitRatio,
					},
					&cli.Uint64Flag{
						Name:  "seed",
						Usage: "Seed for the shuffle before splitting",
						Value: config.DefaultSeed,
					},
					&cli.StringFlag{
						Name:  "registry",
						Usage: "Path to the BadgerDB artifact registry directory",
					},
				}, mongoFlags()...),
			},
			{
				Name:   "artifacts",
				Usage:  "List recorded ingestion artifacts, most recent first",
				Action: artifactsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "registry",
						Usage:    "Path to the BadgerDB artifact registry directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of artifacts to show (0 for all)",
						Value: 10,
					},
					&cli.StringFlag{
						Name:  "run",
						Usage: "Show only the artifact of this run ID",
					},
				},
			},
		},
	}
}

func mongoFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "mongo-url",
			Usage:   "MongoDB connection string",
			EnvVars: []string{"MONGO_DB_URL"},
		},
		&cli.StringFlag{
			Name:  "tls-ca-file",
			Usage: "PEM bundle used instead of the system roots to verify MongoDB",
		},
		&cli.StringFlag{
			Name:  "database",
			Usage: "MongoDB database name",
			Value: config.DefaultDatabase,
		},
		&cli.StringFlag{
			Name:  "collection",
			Usage: "MongoDB collection name",
			Value: config.DefaultCollection,
		},
	}
}

// loadSettings reads --config when given, then applies every flag the user
// set explicitly, environment variables included.
func loadSettings(c *cli.Context) (config.Settings, error) {
	s := config.DefaultSettings()
	if path := c.String("config"); path != "" {
		var err error
		if s, err = config.LoadSettings(path); err != nil {
			return config.Settings{}, err
		}
	}

	stringFlags := map[string]*string{
		"source":       &s.SourceFile,
		"mongo-url":    &s.MongoURL,
		"tls-ca-file":  &s.TLSCAFile,
		"database":     &s.Database,
		"collection":   &s.Collection,
		"artifact-dir": &s.ArtifactDir,
		"registry":     &s.RegistryDir,
		"log-dir":      &s.LogDir,
	}
	for name, dst := range stringFlags {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	if c.IsSet("split-ratio") {
		s.SplitRatio = c.Float64("split-ratio")
	}
	if c.IsSet("seed") {
		s.Seed = c.Uint64("seed")
	}
	return s, nil
}

func mongoOptions(s config.Settings, logger *slog.Logger) []mongo.Option {
	opts := []mongo.Option{mongo.WithLogger(logger)}
	if s.TLSCAFile != "" {
		opts = append(opts, mongo.WithCAFile(s.TLSCAFile))
	}
	return opts
}

// openRunLog starts the log file for a run beginning at ts.
func openRunLog(c *cli.Context, s config.Settings, ts time.Time) (*slog.Logger, io.Closer, error) {
	level, err := runlog.ParseLevel(c.String("log-level"))
	if err != nil {
		return nil, nil, err
	}
	return runlog.New(s.LogDir, level, ts)
}

func pushCommand(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}
	cfg := s.ETLConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := openRunLog(c, s, time.Now())
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer closer.Close()

	pipeline, err := ingestion.NewPipeline(
		ingestion.WithLogger(logger),
		ingestion.WithLoader(mongo.NewLoader(mongoOptions(s, logger)...)),
	)
	if err != nil {
		return err
	}

	n, err := pipeline.RunETL(c.Context, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Inserted %d records into %s.%s\n", n, cfg.DatabaseName, cfg.CollectionName)
	return nil
}

func ingestCommand(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}
	ts := time.Now()
	cfg := s.IngestionConfig(ts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := openRunLog(c, s, ts)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer closer.Close()

	ws, err := netingest.NewWorkspace(s.RegistryDir,
		netingest.WithLogger(logger),
		netingest.WithMongoOptions(mongoOptions(s, logger)...))
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer ws.Close()

	pipeline, err := ws.NewIngestionPipeline()
	if err != nil {
		return err
	}

	var src ingestion.Source
	if c.Bool("from-mongo") {
		if s.MongoURL == "" {
			return fmt.Errorf("--from-mongo requires --mongo-url or MONGO_DB_URL")
		}
		src = ws.NewCollectionSource(s.MongoURL, s.Database, s.Collection)
	}

	desc, err := pipeline.Run(c.Context, cfg, src)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, desc.String())
	return nil
}

func artifactsCommand(c *cli.Context) error {
	ws, err := netingest.NewWorkspace(c.String("registry"))
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer ws.Close()

	if runID := c.String("run"); runID != "" {
		desc, err := ws.Registry().GetArtifact(c.Context, runID)
		if err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}
		fmt.Fprintln(c.App.Writer, desc.String())
		return nil
	}

	limit := c.Int("limit")
	if limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	descs, err := ws.Registry().ListArtifacts(c.Context, limit)
	if err != nil {
		return err
	}
	if len(descs) == 0 {
		fmt.Fprintln(c.App.Writer, "No artifacts recorded")
		return nil
	}
	for _, d := range descs {
		fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\n", d.Sequence, d.CreatedAt.Format(time.RFC3339), d)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	level, err := runlog.ParseLevel(c.String("log-level"))
	if err != nil {
		return err
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
