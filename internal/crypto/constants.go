package crypto

const (
	// HKDFContext is the context string used in HKDF key derivation
	// for domain separation.
	HKDFContext = "e2ee:content:v1"

	// ChannelContext is the context string mixed into channel secret
	// stretching for domain separation from content keys.
	ChannelContext = "e2ee:channel:v1"

	// ContentKeySize is the size of per-message content keys in bytes
	// (256 bits, shared by both AEAD algorithms).
	ContentKeySize = 32

	// GCMNonceSize is the nonce size for AES-256-GCM in bytes.
	GCMNonceSize = 12
	// XChaChaNonceSize is the nonce size for XChaCha20-Poly1305 in bytes.
	XChaChaNonceSize = 24
	// TagSize is the authentication tag size for both AEAD algorithms in bytes.
	TagSize = 16

	// FingerprintSize is the number of digest bytes kept for a public-key
	// fingerprint (128 bits).
	FingerprintSize = 16

	// MLKEMPublicKeySize is the size of an ML-KEM-768 public key in bytes.
	MLKEMPublicKeySize = 1184
	// MLKEMSecretKeySize is the size of an ML-KEM-768 secret key in bytes.
	MLKEMSecretKeySize = 2400
	// MLKEMCiphertextSize is the size of an ML-KEM-768 ciphertext in bytes.
	MLKEMCiphertextSize = 1088
	// MLKEMSharedKeySize is the size of the shared secret from ML-KEM-768 in bytes.
	MLKEMSharedKeySize = 32
)

// AEAD algorithm identifiers as they appear in envelope fields.
const (
	AlgorithmAESGCM  = "aes-256-gcm"
	AlgorithmXChaCha = "xchacha20-poly1305"
)
