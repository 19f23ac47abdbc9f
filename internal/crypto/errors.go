package crypto

import "errors"

var (
	// ErrInvalidKeySize is returned when a symmetric key size is invalid.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when the nonce size is invalid.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrInvalidPublicKey is returned when public key material cannot be parsed.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrInvalidPrivateKey is returned when private key material cannot be parsed.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrUnwrapFailed is returned when a wrapped content key cannot be
	// recovered. The cause (padding, key material) is deliberately not
	// distinguished.
	ErrUnwrapFailed = errors.New("key unwrap failed")

	// ErrAuthenticationFailed is returned when AEAD decryption rejects the
	// ciphertext or tag.
	ErrAuthenticationFailed = errors.New("message authentication failed")

	// ErrUnsupportedAlgorithm is returned for unrecognized algorithm identifiers.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
)
