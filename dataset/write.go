package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/poiesic/netingest/core"
)

// WriteCSV writes b to path as comma-separated text with a header row,
// replacing any existing file. Parent directories are created as needed.
// The file is written to a temporary sibling first and renamed into place,
// so readers never observe a half-written file.
// Failures are reported as PersistenceError tagged with stage.
func WriteCSV(stage core.Stage, path string, b core.Batch) error {
	if err := core.ValidateBatch(b); err != nil {
		return core.Wrap(core.KindPersistence, stage, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return core.Wrap(core.KindPersistence, stage, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return core.Wrap(core.KindPersistence, stage, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(b.Columns); err != nil {
		return core.Wrap(core.KindPersistence, stage, err)
	}
	row := make([]string, len(b.Columns))
	for _, rec := range b.Records {
		for i, f := range rec {
			row[i] = FormatValue(f.Value)
		}
		if err := w.Write(row); err != nil {
			return core.Wrap(core.KindPersistence, stage, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return core.Wrap(core.KindPersistence, stage, err)
	}

	if err := tmp.Chmod(0644); err != nil {
		return core.Wrap(core.KindPersistence, stage, err)
	}
	if err := tmp.Close(); err != nil {
		return core.Wrap(core.KindPersistence, stage, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return core.Wrap(core.KindPersistence, stage, err)
	}
	committed = true
	return nil
}

// FormatValue renders a cell the way it is written to delimited output.
// Whole floats keep a trailing ".0" so the column reads back as float.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e16 {
			return strconv.FormatFloat(t, 'f', 1, 64)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		if t {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(t)
	}
}
