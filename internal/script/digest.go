package script

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest fingerprints a flat list state. The runner compares the digests of
// the incremental and rebuilt states; only the first 8 bytes of the
// BLAKE2b-256 sum are kept.
func Digest(items []int) string {
	buf := binary.AppendUvarint(nil, uint64(len(items)))
	for _, item := range items {
		buf = binary.AppendVarint(buf, int64(item))
	}
	sum := blake2b.Sum256(buf)
	return hex.EncodeToString(sum[:8])
}
