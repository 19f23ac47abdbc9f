package e2ee

import (
	"time"

	"github.com/correlate000/e2ee-go/internal/integrity"
)

// EncryptedMessage is the self-contained envelope produced by every
// encryption operation. All binary fields are base64url encoded without
// padding. A message carries everything needed for decryption except the
// private key material itself.
type EncryptedMessage struct {
	// ID uniquely identifies the message.
	ID string `json:"id"`

	// EncryptedData is the AEAD ciphertext of the payload.
	EncryptedData string `json:"encryptedData"`

	// EncryptedKey is the wrapped content key. Empty for channel messages,
	// whose key is the channel's shared secret.
	EncryptedKey string `json:"encryptedKey,omitempty"`

	// IV is the nonce used for the AEAD operation. Fresh per message.
	IV string `json:"iv"`

	// AuthTag is the AEAD authentication tag.
	AuthTag string `json:"authTag"`

	// Algorithm names the symmetric cipher that produced EncryptedData.
	Algorithm string `json:"algorithm"`

	// KeyFingerprint identifies the recipient key the content key was
	// wrapped for. For channel messages it carries the channel ID instead,
	// binding the message to its channel.
	KeyFingerprint string `json:"keyFingerprint"`

	// Timestamp is the UTC creation time of the envelope.
	Timestamp time.Time `json:"timestamp"`

	// Integrity is the hex digest over all fields above.
	Integrity string `json:"integrity"`
}

// integrityFields maps the envelope onto the canonical digest input.
func (m *EncryptedMessage) integrityFields() integrity.Fields {
	return integrity.Fields{
		ID:             m.ID,
		EncryptedData:  m.EncryptedData,
		EncryptedKey:   m.EncryptedKey,
		IV:             m.IV,
		AuthTag:        m.AuthTag,
		Algorithm:      m.Algorithm,
		KeyFingerprint: m.KeyFingerprint,
		Timestamp:      m.Timestamp,
	}
}
