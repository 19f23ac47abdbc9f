// Package integrity computes and verifies the tamper-evidence digest over
// encrypted message envelopes. The digest is computed over a canonical
// serialization of every envelope field except the digest itself, and must
// validate before any other field is trusted.
package integrity

import (
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strings"
	"time"
)

// Fields is the canonical set of envelope fields covered by the digest,
// in digest order.
type Fields struct {
	ID             string
	EncryptedData  string
	EncryptedKey   string
	IV             string
	AuthTag        string
	Algorithm      string
	KeyFingerprint string
	Timestamp      time.Time
}

// fieldSeparator joins canonical fields. Envelope fields are base64url or
// UUID strings and can never contain it.
const fieldSeparator = "\n"

// canonical serializes the fields in a stable order with the timestamp
// normalized to UTC RFC 3339.
func canonical(f Fields) string {
	return strings.Join([]string{
		f.ID,
		f.EncryptedData,
		f.EncryptedKey,
		f.IV,
		f.AuthTag,
		f.Algorithm,
		f.KeyFingerprint,
		f.Timestamp.UTC().Format(time.RFC3339Nano),
	}, fieldSeparator)
}

// Digest computes the integrity digest with the given hash function.
func Digest(f Fields, h func() hash.Hash) string {
	d := h()
	d.Write([]byte(canonical(f)))
	return hex.EncodeToString(d.Sum(nil))
}

// Verify recomputes the digest and compares it in constant time.
func Verify(f Fields, digest string, h func() hash.Hash) bool {
	expected := Digest(f, h)
	if len(expected) != len(digest) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(digest)) == 1
}
