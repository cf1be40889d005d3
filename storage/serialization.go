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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/netingest/core"
)

// ArtifactDescriptorMUS serializes artifact descriptors in field order.
// CreatedAt is stored as unix microseconds.
var ArtifactDescriptorMUS = artifactDescriptorMUS{}

type artifactDescriptorMUS struct{}

func (s artifactDescriptorMUS) Marshal(v core.ArtifactDescriptor, bs []byte) (n int) {
	n = varint.Uint64.Marshal(v.Sequence, bs)
	n += ord.String.Marshal(v.RunID, bs[n:])
	n += ord.String.Marshal(v.FeatureStorePath, bs[n:])
	n += ord.String.Marshal(v.TrainFilePath, bs[n:])
	n += ord.String.Marshal(v.TestFilePath, bs[n:])
	n += varint.Int.Marshal(len(v.Columns), bs[n:])
	for _, c := range v.Columns {
		n += ord.String.Marshal(c, bs[n:])
	}
	n += varint.Int.Marshal(v.TotalRows, bs[n:])
	n += varint.Int.Marshal(v.TrainRows, bs[n:])
	n += varint.Int.Marshal(v.TestRows, bs[n:])
	n += raw.Float64.Marshal(v.SplitRatio, bs[n:])
	n += varint.Uint64.Marshal(v.Seed, bs[n:])
	n += ord.String.Marshal(v.SourceDigest, bs[n:])
	n += varint.Int64.Marshal(v.CreatedAt.UnixMicro(), bs[n:])
	return
}

func (s artifactDescriptorMUS) Unmarshal(bs []byte) (v core.ArtifactDescriptor, n int, err error) {
	var n1 int
	v.Sequence, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	for _, dst := range []*string{&v.RunID, &v.FeatureStorePath, &v.TrainFilePath, &v.TestFilePath} {
		*dst, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}

	var count int
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	// Every column takes at least one byte, so a larger count is corrupt.
	if count < 0 || count > len(bs)-n {
		err = fmt.Errorf("%w: column count %d", ErrSerializationFailed, count)
		return
	}
	if count > 0 {
		v.Columns = make([]string, count)
		for i := range v.Columns {
			v.Columns[i], n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}

	for _, dst := range []*int{&v.TotalRows, &v.TrainRows, &v.TestRows} {
		*dst, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.SplitRatio, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Seed, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceDigest, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt = time.UnixMicro(micros).UTC()
	return
}

func (s artifactDescriptorMUS) Size(v core.ArtifactDescriptor) (size int) {
	size = varint.Uint64.Size(v.Sequence)
	size += ord.String.Size(v.RunID)
	size += ord.String.Size(v.FeatureStorePath)
	size += ord.String.Size(v.TrainFilePath)
	size += ord.String.Size(v.TestFilePath)
	size += varint.Int.Size(len(v.Columns))
	for _, c := range v.Columns {
		size += ord.String.Size(c)
	}
	size += varint.Int.Size(v.TotalRows)
	size += varint.Int.Size(v.TrainRows)
	size += varint.Int.Size(v.TestRows)
	size += raw.Float64.Size(v.SplitRatio)
	size += varint.Uint64.Size(v.Seed)
	size += ord.String.Size(v.SourceDigest)
	return size + varint.Int64.Size(v.CreatedAt.UnixMicro())
}

func (s artifactDescriptorMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// MarshalArtifact serializes an ArtifactDescriptor to bytes.
func MarshalArtifact(artifact *core.ArtifactDescriptor) []byte {
	buf := make([]byte, ArtifactDescriptorMUS.Size(*artifact))
	ArtifactDescriptorMUS.Marshal(*artifact, buf)
	return buf
}

// UnmarshalArtifact deserializes an ArtifactDescriptor from bytes.
func UnmarshalArtifact(data []byte) (*core.ArtifactDescriptor, error) {
	artifact, n, err := ArtifactDescriptorMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return &artifact, nil
}
