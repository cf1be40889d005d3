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


package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/netingest/core"
)

// Cells matching one of these (after trimming) are read as missing values.
var missingTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

var indexHeader = regexp.MustCompile(`^Unnamed: \d+$`)

type columnKind int

const (
	columnInt columnKind = iota
	columnFloat
	columnString
)

// Convert reads the delimited file at path into a Batch.
// On any failure it returns a ConversionError and an empty Batch.
func Convert(path string) (core.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Batch{}, core.Wrap(core.KindConversion, core.StageExtract, err)
	}
	defer f.Close()

	batch, err := ConvertReader(f)
	if err != nil {
		var pe *core.PipelineError
		if errors.As(err, &pe) {
			pe.Err = fmt.Errorf("%s: %w", path, pe.Err)
		}
		return core.Batch{}, err
	}
	return batch, nil
}

// ConvertReader reads comma-separated text with a header row from r.
func ConvertReader(r io.Reader) (core.Batch, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return core.Batch{}, core.Wrap(core.KindConversion, core.StageExtract, err)
	}
	if len(rows) == 0 {
		return core.Batch{}, core.Wrap(core.KindConversion, core.StageExtract, ErrEmptySource)
	}

	header := rows[0]
	data := rows[1:]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if err := checkEncoding(rows); err != nil {
		return core.Batch{}, err
	}

	// A leading unnamed column is a positional index left behind by whoever
	// wrote the file.
	if len(header) > 0 && isIndexHeader(header[0]) {
		header = header[1:]
		for i := range data {
			data[i] = data[i][1:]
		}
	}
	if len(header) == 0 {
		return core.Batch{}, core.Wrap(core.KindConversion, core.StageExtract, ErrNoHeader)
	}
	if len(data) == 0 {
		return core.Batch{}, core.Wrap(core.KindConversion, core.StageExtract, ErrEmptySource)
	}

	columns := dedupeHeaders(header)
	kinds := make([]columnKind, len(columns))
	for c := range columns {
		kinds[c] = inferColumn(data, c)
	}

	records := make([]core.Record, len(data))
	for i, row := range data {
		rec := make(core.Record, len(columns))
		for c, name := range columns {
			rec[c] = core.Field{Name: name, Value: parseCell(row[c], kinds[c])}
		}
		records[i] = rec
	}

	return core.Batch{Columns: columns, Records: records}, nil
}

// checkEncoding reports the first cell that is not valid UTF-8. Rows are
// numbered from 1 with the header as row 1.
func checkEncoding(rows [][]string) error {
	for i, row := range rows {
		for j, cell := range row {
			if !utf8.ValidString(cell) {
				return core.Wrapf(core.KindConversion, core.StageExtract,
					"%w: row %d column %d", ErrInvalidEncoding, i+1, j+1)
			}
		}
	}
	return nil
}

func isIndexHeader(h string) bool {
	h = strings.TrimSpace(h)
	return h == "" || indexHeader.MatchString(h)
}

// dedupeHeaders renames repeated headers to name.1, name.2, ...
func dedupeHeaders(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))
	for i, h := range header {
		name := h
		for used[name] {
			counts[h]++
			name = fmt.Sprintf("%s.%d", h, counts[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func isMissing(cell string) bool {
	_, ok := missingTokens[strings.TrimSpace(cell)]
	return ok
}

func inferColumn(rows [][]string, c int) columnKind {
	kind := columnInt
	for _, row := range rows {
		cell := row[c]
		if isMissing(cell) {
			continue
		}
		trimmed := strings.TrimSpace(cell)
		if kind == columnInt {
			if _, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
				continue
			}
			kind = columnFloat
		}
		if _, ok := parseFloat(trimmed); ok {
			continue
		}
		return columnString
	}
	return kind
}

func parseFloat(s string) (float64, bool) {
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseCell(cell string, kind columnKind) any {
	if isMissing(cell) {
		return nil
	}
	trimmed := strings.TrimSpace(cell)
	switch kind {
	case columnInt:
		v, _ := strconv.ParseInt(trimmed, 10, 64)
		return v
	case columnFloat:
		v, _ := parseFloat(trimmed)
		return v
	default:
		return cell
	}
}
