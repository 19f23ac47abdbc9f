// Package crypto provides the cryptographic primitives for the hybrid
// encryption engine: key-pair generation and content-key wrapping,
// authenticated encryption, key derivation, and public-key fingerprints.
//
// # Algorithm Suite
//
// The package supports the following algorithms:
//
//   - RSA-OAEP (2048/3072/4096 bit): classical key wrap for per-message
//     content keys. OAEP padding with a configurable hash; textbook RSA is
//     never used.
//
//   - ML-KEM-768 (NIST FIPS 203): post-quantum key encapsulation. In this
//     mode the content key is derived from the encapsulated shared secret
//     with HKDF, and the wrapped-key field carries the KEM ciphertext.
//
//   - AES-256-GCM and XChaCha20-Poly1305: authenticated encryption (AEAD)
//     for message payloads. Ciphertext and authentication tag are kept as
//     separate envelope fields.
//
//   - HKDF (RFC 5869): derivation of content keys from KEM shared secrets
//     with domain separation.
//
//   - PBKDF2: deliberately slow stretching of channel secrets with a
//     configurable iteration count.
//
// # Critical Security Notes
//
// AEAD nonces MUST be unique for each encryption with the same key. Nonce
// reuse completely breaks the security of both supported ciphers. Always
// obtain nonces from [NewNonce]; never reuse or derive them.
//
// Unwrap failures are reported through a single error value regardless of
// whether the underlying failure was padding- or key-related, so that the
// engine cannot be used as a padding oracle.
package crypto
