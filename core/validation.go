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
)

// ErrMisalignedRecord indicates a record whose fields do not line up with
// the batch columns.
var ErrMisalignedRecord = errors.New("record does not match batch columns")

// ValidateBatch checks the structural invariant every Batch must hold before
// it is written or loaded:
//   - each record has exactly one field per column
//   - field names appear in column order
//
// Cell contents are not inspected.
func ValidateBatch(b Batch) error {
	for i, rec := range b.Records {
		if len(rec) != len(b.Columns) {
			return fmt.Errorf("%w: record %d has %d fields, want %d",
				ErrMisalignedRecord, i, len(rec), len(b.Columns))
		}
		for j, f := range rec {
			if f.Name != b.Columns[j] {
				return fmt.Errorf("%w: record %d field %d is %q, want %q",
					ErrMisalignedRecord, i, j, f.Name, b.Columns[j])
			}
		}
	}
	return nil
}
