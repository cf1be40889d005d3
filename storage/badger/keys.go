package badger

import (
	"encoding/binary"
)

const (
	artifactRecordPrefix = "artrec"
	artifactRunPrefix    = "artrun"
	artifactSeq          = "artseq"
)

// makeArtifactKey orders descriptors by sequence. BigEndian keeps the
// lexicographic key order equal to numeric order.
func makeArtifactKey(seq uint64) []byte {
	prefix := artifactRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeArtifactSeekEnd sorts after every artifact key.
func makeArtifactSeekEnd() []byte {
	return makeArtifactKey(^uint64(0))
}

func makeArtifactRunKey(runID string) []byte {
	return []byte(artifactRunPrefix + ":" + runID)
}

func encodeSeq(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}

func decodeSeq(val []byte) (uint64, bool) {
	if len(val) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(val), true
}
