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


package runlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

// FileLayout names a run's log file after the time it started.
const FileLayout = "2006_01_02__15Hr_04m_05s"

// ParseLevel maps debug, info, warn or error (any case) to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w %q: must be one of debug, info, warn, error", ErrInvalidLevel, s)
	}
}

// FileName returns the log file name for a run started at t.
func FileName(t time.Time) string {
	return t.Format(FileLayout) + ".log"
}

type options struct {
	console io.Writer
}

// Option configures New.
type Option func(*options)

// WithConsole replaces stderr as the console destination. Passing nil logs
// to the file only.
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.console = w
	}
}

// New opens dir/FileName(now) and returns a logger writing to it and to
// the console. The caller must Close the returned closer when the run ends.
func New(dir string, level slog.Level, now time.Time, opts ...Option) (*slog.Logger, io.Closer, error) {
	o := options{console: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	path := filepath.Join(dir, FileName(now))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	handlers := []slog.Handler{slog.NewTextHandler(f, handlerOpts)}
	if o.console != nil {
		handlers = append(handlers, slog.NewTextHandler(o.console, handlerOpts))
	}

	logger := slog.New(slogmulti.Fanout(handlers...)).With("log_file", filepath.Base(path))
	return logger, f, nil
}
