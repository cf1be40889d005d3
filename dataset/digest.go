package dataset

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/netingest/core"
)

// Digest returns the hex BLAKE2b-256 sum of the file at path. Two runs over
// an unchanged source produce the same digest for their feature store.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", core.Wrap(core.KindPersistence, core.StageExport, err)
	}
	defer f.Close()

	h, _ := blake2b.New(32, nil) // 32 bytes = 256 bits
	if _, err := io.Copy(h, f); err != nil {
		return "", core.Wrap(core.KindPersistence, core.StageExport, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
