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


package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// Failure classes. Every PipelineError unwraps to exactly one of these.
var (
	// ErrConversion indicates the source dataset could not be read or converted.
	ErrConversion = errors.New("conversion error")

	// ErrLoad indicates a database connection, authentication or insert failure.
	ErrLoad = errors.New("load error")

	// ErrPersistence indicates a filesystem or registry write failure.
	ErrPersistence = errors.New("persistence error")

	// ErrConfig indicates invalid or missing configuration values.
	ErrConfig = errors.New("config error")
)

// Kind classifies a PipelineError.
type Kind int

const (
	KindUnknown Kind = iota
	KindConversion
	KindLoad
	KindPersistence
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindConversion:
		return "ConversionError"
	case KindLoad:
		return "LoadError"
	case KindPersistence:
		return "PersistenceError"
	case KindConfig:
		return "ConfigError"
	default:
		return "UnknownError"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConversion:
		return ErrConversion
	case KindLoad:
		return ErrLoad
	case KindPersistence:
		return ErrPersistence
	case KindConfig:
		return ErrConfig
	default:
		return nil
	}
}

// Stage names the pipeline step a failure originated in.
type Stage string

const (
	StageConfig   Stage = "config"
	StageExtract  Stage = "extract"
	StageLoad     Stage = "load"
	StageExport   Stage = "export"
	StageSplit    Stage = "split"
	StagePersist  Stage = "persist"
	StageRegister Stage = "register"
)

// PipelineError is the only error type that crosses component boundaries.
// It carries the failure class, the stage it was raised in, the underlying
// cause and the source location of the call that wrapped it.
type PipelineError struct {
	Kind     Kind
	Stage    Stage
	Err      error
	File     string
	Line     int
	Function string
}

func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("%s in stage %q: %v", e.Kind, e.Stage, e.Err)
	if e.File != "" {
		msg += fmt.Sprintf(" [%s:%d]", filepath.Base(e.File), e.Line)
	}
	return msg
}

// Unwrap exposes both the class sentinel and the underlying cause, so
// errors.Is matches either of them.
func (e *PipelineError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Wrap annotates err with a kind, a stage and the caller's location.
// A nil err yields nil. An error that already is a *PipelineError is
// returned unchanged so the origin of a failure is preserved as it
// propagates up the call chain.
func Wrap(kind Kind, stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return err
	}
	return newPipelineError(kind, stage, err, 2)
}

// Wrapf is Wrap for a cause built from a format string. %w is honored.
func Wrapf(kind Kind, stage Stage, format string, args ...any) error {
	return newPipelineError(kind, stage, fmt.Errorf(format, args...), 2)
}

func newPipelineError(kind Kind, stage Stage, err error, skip int) *PipelineError {
	pe := &PipelineError{
		Kind:  kind,
		Stage: stage,
		Err:   err,
	}
	if pc, file, line, ok := runtime.Caller(skip); ok {
		pe.File = file
		pe.Line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			pe.Function = fn.Name()
		}
	}
	return pe
}

// KindOf reports the Kind of the first PipelineError in err's chain.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// StageOf reports the Stage of the first PipelineError in err's chain.
func StageOf(err error) Stage {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}
