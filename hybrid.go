package e2ee

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/correlate000/e2ee-go/internal/crypto"
	"github.com/correlate000/e2ee-go/internal/integrity"
)

// EncryptForRecipient encrypts plaintext for a single recipient. A fresh
// content key is wrapped under the recipient's active public key; the
// payload is sealed with the configured cipher under a fresh nonce. The
// returned envelope is bound to the recipient by key fingerprint.
func (e *Engine) EncryptForRecipient(plaintext, recipientEntityID string) (*EncryptedMessage, error) {
	start := time.Now()

	kp, ok := e.keys.Get(recipientEntityID)
	if !ok {
		return nil, &KeyLookupError{EntityID: recipientEntityID}
	}
	if kp.Expired(e.now()) {
		return nil, &KeyLookupError{EntityID: recipientEntityID, Expired: true}
	}

	contentKey, wrapped, err := e.wrapper.Wrap(kp.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("wrap content key for %q: %w", recipientEntityID, err)
	}

	msg, err := e.seal(plaintext, contentKey, "", kp.Fingerprint)
	if err != nil {
		return nil, err
	}
	msg.EncryptedKey = crypto.ToBase64URL(wrapped)
	msg.Integrity = integrity.Digest(msg.integrityFields(), e.hashFn)

	e.metrics.recordEncryption(time.Since(start))
	e.log.Debug().
		Str("message_id", msg.ID).
		Str("recipient", recipientEntityID).
		Str("algorithm", msg.Algorithm).
		Msg("message encrypted")
	return msg, nil
}

// DecryptFromRecipient decrypts a message addressed to the given entity.
// The envelope's integrity digest is verified before any key material is
// touched; only then is the content key unwrapped and the payload opened.
// A message whose fingerprint matches a superseded key still decrypts as
// long as that key remains in the rotation history.
func (e *Engine) DecryptFromRecipient(msg *EncryptedMessage, recipientEntityID string) (string, error) {
	if msg == nil {
		return "", &ValidationError{Errors: []string{"message must not be nil"}}
	}
	start := time.Now()

	if !integrity.Verify(msg.integrityFields(), msg.Integrity, e.hashFn) {
		return "", e.failDecrypt(msg.ID, "integrity", ErrIntegrityViolation)
	}

	kp, ok := e.keys.Get(recipientEntityID)
	if !ok {
		e.metrics.recordFailedDecryption()
		return "", fmt.Errorf("%w for entity %q", ErrPrivateKeyNotFound, recipientEntityID)
	}
	if !crypto.ConstantTimeEqual(kp.Fingerprint, msg.KeyFingerprint) {
		// The active key does not match; the message may predate a rotation.
		prev, found := e.keys.GetByFingerprint(recipientEntityID, msg.KeyFingerprint)
		if !found {
			e.metrics.recordFailedDecryption()
			return "", fmt.Errorf("%w: fingerprint %s", ErrRecipientMismatch, msg.KeyFingerprint)
		}
		kp = prev
	}
	if !kp.CanDecrypt() {
		e.metrics.recordFailedDecryption()
		return "", fmt.Errorf("%w for entity %q", ErrPrivateKeyNotFound, recipientEntityID)
	}

	wrapped, err := crypto.FromBase64URL(msg.EncryptedKey)
	if err != nil {
		return "", e.failDecrypt(msg.ID, "decode", ErrAuthenticationFailed)
	}
	contentKey, err := e.wrapper.Unwrap(kp.PrivateKey, wrapped)
	if err != nil {
		return "", e.failDecrypt(msg.ID, "unwrap", ErrKeyUnwrapFailed)
	}

	plaintext, err := e.open(msg, contentKey)
	if err != nil {
		return "", err
	}

	e.metrics.recordDecryption(time.Since(start))
	e.log.Debug().
		Str("message_id", msg.ID).
		Str("recipient", recipientEntityID).
		Msg("message decrypted")
	return plaintext, nil
}

// seal builds an envelope around the AEAD output. The integrity digest is
// left for the caller, who may still set EncryptedKey.
func (e *Engine) seal(plaintext string, contentKey []byte, encryptedKey, fingerprint string) (*EncryptedMessage, error) {
	nonce, err := crypto.NewNonce(e.nonceSize())
	if err != nil {
		return nil, err
	}
	ciphertext, tag, err := crypto.Seal(string(e.cfg.algorithm), contentKey, nonce, []byte(plaintext), nil)
	if err != nil {
		return nil, err
	}

	return &EncryptedMessage{
		ID:             uuid.New().String(),
		EncryptedData:  crypto.ToBase64URL(ciphertext),
		EncryptedKey:   encryptedKey,
		IV:             crypto.ToBase64URL(nonce),
		AuthTag:        crypto.ToBase64URL(tag),
		Algorithm:      string(e.cfg.algorithm),
		KeyFingerprint: fingerprint,
		Timestamp:      e.now().UTC(),
	}, nil
}

// open decodes the envelope's binary fields and opens the payload with the
// message's own algorithm. Integrity must already have been verified.
func (e *Engine) open(msg *EncryptedMessage, contentKey []byte) (string, error) {
	ciphertext, err := crypto.FromBase64URL(msg.EncryptedData)
	if err != nil {
		return "", e.failDecrypt(msg.ID, "decode", ErrAuthenticationFailed)
	}
	nonce, err := crypto.FromBase64URL(msg.IV)
	if err != nil {
		return "", e.failDecrypt(msg.ID, "decode", ErrAuthenticationFailed)
	}
	tag, err := crypto.FromBase64URL(msg.AuthTag)
	if err != nil {
		return "", e.failDecrypt(msg.ID, "decode", ErrAuthenticationFailed)
	}

	plaintext, err := crypto.Open(msg.Algorithm, contentKey, nonce, ciphertext, tag, nil)
	if err != nil {
		return "", e.failDecrypt(msg.ID, "aead", ErrAuthenticationFailed)
	}
	return string(plaintext), nil
}

// failDecrypt records the failure and wraps the sentinel so callers see a
// uniform error string.
func (e *Engine) failDecrypt(messageID, stage string, sentinel error) error {
	e.metrics.recordFailedDecryption()
	e.log.Debug().
		Str("message_id", messageID).
		Str("stage", stage).
		Msg("decryption failed")
	return &DecryptionError{Stage: stage, Err: sentinel}
}
