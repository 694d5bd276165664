// Package cryptox contains the server's small cryptographic helpers.
package cryptox

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// DigestSize is the length in bytes of a code digest.
const DigestSize = blake2b.Size256

// CodeHasher derives deterministic digests of one-time codes so they are not
// stored in plain text. Digests are keyed BLAKE2b MACs over "phone:code";
// without the server pepper they cannot be recomputed.
type CodeHasher struct {
	key [blake2b.Size256]byte
}

// NewCodeHasher returns a CodeHasher bound to the given server pepper.
// Peppers of any length are accepted.
func NewCodeHasher(pepper string) *CodeHasher {
	return &CodeHasher{key: blake2b.Sum256([]byte(pepper))}
}

// Hash returns the hex-encoded digest of code for phone. Equal inputs
// always produce equal output, so the digest can be used in an exact-match
// lookup.
func (h *CodeHasher) Hash(phone, code string) string {
	mac, err := blake2b.New256(h.key[:])
	if err != nil {
		// Only reachable with a key longer than 64 bytes.
		panic(err)
	}
	mac.Write([]byte(phone))
	mac.Write([]byte{':'})
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}
