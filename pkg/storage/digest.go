package storage

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// DigestPrefix tags content digests with their algorithm.
const DigestPrefix = "blake3:"

// Digest accumulates a BLAKE3 hash of everything written to it, typically
// as the second half of an io.TeeReader wrapped around an upload.
type Digest struct {
	h *blake3.Hasher
}

// NewDigest creates an empty Digest.
func NewDigest() *Digest {
	return &Digest{h: blake3.New()}
}

func (d *Digest) Write(p []byte) (int, error) {
	return d.h.Write(p)
}

// Sum returns the prefixed hex digest of the bytes written so far.
func (d *Digest) Sum() string {
	return DigestPrefix + hex.EncodeToString(d.h.Sum(nil))
}

// DigestBytes returns the prefixed hex BLAKE3 digest of data.
func DigestBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return DigestPrefix + hex.EncodeToString(sum[:])
}
