package crypto

import "encoding/base64"

// ToBase64URL encodes bytes to URL-safe base64 without padding.
// All envelope byte fields use this encoding.
func ToBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// FromBase64URL decodes URL-safe base64 without padding. Decoding is
// strict: non-zero trailing padding bits are rejected, so every byte
// sequence has exactly one accepted encoding and envelope fields cannot
// be aliased by an equivalent-but-different string.
func FromBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.Strict().DecodeString(s)
}
