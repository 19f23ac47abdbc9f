package crypto

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// DeriveContentKey derives a 256-bit content key from a KEM shared secret.
//
// The derivation uses:
//   - IKM: the KEM shared secret
//   - Salt: SHA-256 hash of the KEM ciphertext
//   - Info: the content context string
//
// Binding the KEM ciphertext into the salt ties the derived key to this
// specific encapsulation.
func DeriveContentKey(sharedSecret, kemCiphertext []byte, h func() hash.Hash) ([]byte, error) {
	saltHash := sha256.Sum256(kemCiphertext)

	reader := hkdf.New(h, sharedSecret, saltHash[:], []byte(HKDFContext))
	key := make([]byte, ContentKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive content key: %w", err)
	}
	return key, nil
}

// StretchChannelSecret derives a channel's shared secret from fresh entropy,
// a random salt, and the sorted participant fingerprints.
//
// PBKDF2 with a configurable iteration count makes bulk derivation
// deliberately slow. The entropy input means the secret cannot be
// reconstructed from the participant list alone.
func StretchChannelSecret(entropy, salt []byte, fingerprints []string, iterations int, h func() hash.Hash) []byte {
	material := make([]byte, 0, len(entropy)+len(ChannelContext)+len(fingerprints)*2*FingerprintSize)
	material = append(material, entropy...)
	material = append(material, []byte(ChannelContext)...)
	material = append(material, []byte(strings.Join(fingerprints, ","))...)

	return pbkdf2.Key(material, salt, iterations, ContentKeySize, h)
}
