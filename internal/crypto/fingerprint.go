package crypto

import (
	"crypto/subtle"
	"encoding/hex"
	"hash"
)

// Fingerprint computes the fingerprint of encoded public key material:
// the configured hash over the encoding, truncated to 128 bits and
// hex-encoded. Imported and locally generated keys go through the same
// path so fingerprint comparison is symmetric regardless of origin.
func Fingerprint(publicKey []byte, h func() hash.Hash) string {
	d := h()
	d.Write(publicKey)
	sum := d.Sum(nil)
	return hex.EncodeToString(sum[:FingerprintSize])
}

// ConstantTimeEqual compares two strings in constant time. It is used for
// fingerprint and digest comparison to avoid timing side channels.
func ConstantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
