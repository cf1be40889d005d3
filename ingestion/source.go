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


package ingestion

import (
	"context"

	"github.com/poiesic/netingest/core"
	"github.com/poiesic/netingest/dataset"
)

// Source produces the batch an ingestion run works on.
type Source interface {
	Read(ctx context.Context) (core.Batch, error)
}

// FileSource reads a comma-separated file with a header row.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Read(ctx context.Context) (core.Batch, error) {
	if err := ctx.Err(); err != nil {
		return core.Batch{}, core.Wrap(core.KindConversion, core.StageExtract, err)
	}
	return dataset.Convert(s.Path)
}
