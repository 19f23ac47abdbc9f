package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// randReader is the random source used for key and nonce generation.
// It defaults to crypto/rand but can be overridden for testing.
var randReader io.Reader = rand.Reader

// NewContentKey generates a random 256-bit content key.
func NewContentKey() ([]byte, error) {
	return RandomBytes(ContentKeySize)
}

// NewNonce generates a random nonce of the given size.
func NewNonce(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidNonceSize
	}
	return RandomBytes(size)
}

// RandomBytes returns n bytes from the package random source.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}
