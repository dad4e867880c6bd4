// Package checksum produces short content digests for collection
// entity tags. The digest only needs to detect stale reads, so a fast
// non-cryptographic hash is enough.
package checksum

import (
	"encoding/hex"
	"hash/fnv"
)

// Sum returns the hex-encoded 64-bit FNV-1a digest of data.
func Sum(data []byte) string {
	h := fnv.New64a()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
