package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"hash"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// KeyWrapper generates asymmetric key pairs and wraps per-message content
// keys under them. Key material crosses this boundary in its encoded form
// (PEM for RSA, base64url for ML-KEM) so the engine can treat it as opaque.
type KeyWrapper interface {
	// GenerateKeyPair returns a fresh key pair as encoded strings.
	GenerateKeyPair() (publicKey, privateKey string, err error)
	// Wrap produces a fresh content key together with its wrapped form
	// under the given encoded public key.
	Wrap(publicKey string) (contentKey, wrapped []byte, err error)
	// Unwrap recovers the content key from its wrapped form using the
	// encoded private key. Failures are reported as ErrUnwrapFailed
	// without distinguishing the cause.
	Unwrap(privateKey string, wrapped []byte) ([]byte, error)
}

// PEM block types for RSA key material.
const (
	pemTypePublicKey  = "PUBLIC KEY"
	pemTypePrivateKey = "PRIVATE KEY"
)

// rsaWrapper wraps content keys with RSA-OAEP.
type rsaWrapper struct {
	bits int
	hash func() hash.Hash
}

// NewRSAWrapper returns a KeyWrapper using RSA-OAEP with the given modulus
// size and OAEP hash.
func NewRSAWrapper(bits int, h func() hash.Hash) KeyWrapper {
	return &rsaWrapper{bits: bits, hash: h}
}

func (w *rsaWrapper) GenerateKeyPair() (string, string, error) {
	priv, err := rsa.GenerateKey(randReader, w.bits)
	if err != nil {
		return "", "", fmt.Errorf("generate RSA key: %w", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", "", fmt.Errorf("marshal private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("marshal public key: %w", err)
	}

	pubPEM := pem.EncodeToMemory(&pem.Block{Type: pemTypePublicKey, Bytes: pubDER})
	privPEM := pem.EncodeToMemory(&pem.Block{Type: pemTypePrivateKey, Bytes: privDER})
	return string(pubPEM), string(privPEM), nil
}

func (w *rsaWrapper) Wrap(publicKey string) ([]byte, []byte, error) {
	pub, err := parseRSAPublicKey(publicKey)
	if err != nil {
		return nil, nil, err
	}

	contentKey, err := NewContentKey()
	if err != nil {
		return nil, nil, err
	}

	wrapped, err := rsa.EncryptOAEP(w.hash(), rand.Reader, pub, contentKey, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("wrap content key: %w", err)
	}
	return contentKey, wrapped, nil
}

func (w *rsaWrapper) Unwrap(privateKey string, wrapped []byte) ([]byte, error) {
	priv, err := parseRSAPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	contentKey, err := rsa.DecryptOAEP(w.hash(), rand.Reader, priv, wrapped, nil)
	if err != nil {
		// Single error for all padding/key failures.
		return nil, ErrUnwrapFailed
	}
	return contentKey, nil
}

func parseRSAPublicKey(encoded string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(encoded))
	if block == nil || block.Type != pemTypePublicKey {
		return nil, ErrInvalidPublicKey
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, ErrInvalidPublicKey
	}
	return pub, nil
}

func parseRSAPrivateKey(encoded string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(encoded))
	if block == nil || block.Type != pemTypePrivateKey {
		return nil, ErrInvalidPrivateKey
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrInvalidPrivateKey
	}
	return priv, nil
}

// kemWrapper wraps content keys with ML-KEM-768 encapsulation. The wrapped
// value is the KEM ciphertext; the content key is derived from the
// encapsulated shared secret with HKDF.
type kemWrapper struct {
	hash func() hash.Hash
}

// NewKEMWrapper returns a KeyWrapper using ML-KEM-768 with the given HKDF hash.
func NewKEMWrapper(h func() hash.Hash) KeyWrapper {
	return &kemWrapper{hash: h}
}

func (w *kemWrapper) GenerateKeyPair() (string, string, error) {
	pub, priv, err := mlkem768.GenerateKeyPair(randReader)
	if err != nil {
		return "", "", fmt.Errorf("generate ML-KEM key: %w", err)
	}

	// MarshalBinary never fails for valid keys from GenerateKeyPair
	pubBytes, _ := pub.MarshalBinary()
	privBytes, _ := priv.MarshalBinary()
	return ToBase64URL(pubBytes), ToBase64URL(privBytes), nil
}

func (w *kemWrapper) Wrap(publicKey string) ([]byte, []byte, error) {
	pubBytes, err := FromBase64URL(publicKey)
	if err != nil || len(pubBytes) != MLKEMPublicKeySize {
		return nil, nil, ErrInvalidPublicKey
	}

	var pub mlkem768.PublicKey
	pub.Unpack(pubBytes)

	kemCiphertext := make([]byte, MLKEMCiphertextSize)
	sharedSecret := make([]byte, MLKEMSharedKeySize)
	pub.EncapsulateTo(kemCiphertext, sharedSecret, nil)

	contentKey, err := DeriveContentKey(sharedSecret, kemCiphertext, w.hash)
	if err != nil {
		return nil, nil, err
	}
	return contentKey, kemCiphertext, nil
}

func (w *kemWrapper) Unwrap(privateKey string, wrapped []byte) ([]byte, error) {
	privBytes, err := FromBase64URL(privateKey)
	if err != nil || len(privBytes) != MLKEMSecretKeySize {
		return nil, ErrInvalidPrivateKey
	}
	if len(wrapped) != MLKEMCiphertextSize {
		return nil, ErrUnwrapFailed
	}

	var priv mlkem768.PrivateKey
	if err := priv.Unpack(privBytes); err != nil {
		return nil, ErrInvalidPrivateKey
	}

	sharedSecret := make([]byte, MLKEMSharedKeySize)
	priv.DecapsulateTo(sharedSecret, wrapped)

	return DeriveContentKey(sharedSecret, wrapped, w.hash)
}
