package e2ee

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrKeyGeneration is returned when the underlying RNG or algorithm
	// fails during key pair generation. No partial key pair is ever stored.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrRecipientKeyNotFound is returned when no key pair is registered
	// for the recipient entity.
	ErrRecipientKeyNotFound = errors.New("recipient key not found")

	// ErrRecipientKeyExpired is returned when the recipient's key pair
	// has passed its expiry.
	ErrRecipientKeyExpired = errors.New("recipient key expired")

	// ErrPrivateKeyNotFound is returned when decryption requires private
	// key material the entity does not hold.
	ErrPrivateKeyNotFound = errors.New("private key not found")

	// ErrRecipientMismatch is returned when a message's key fingerprint
	// does not match any key held by the decrypting entity.
	ErrRecipientMismatch = errors.New("message not addressed to this recipient")

	// ErrKeyUnwrapFailed is returned when the wrapped content key cannot
	// be recovered. The message deliberately does not reveal whether the
	// failure was padding- or key-related.
	ErrKeyUnwrapFailed = errors.New("key unwrap failed")

	// ErrAuthenticationFailed is returned when the authenticated cipher
	// rejects the ciphertext or tag.
	ErrAuthenticationFailed = errors.New("message authentication failed")

	// ErrIntegrityViolation is returned when the envelope's integrity
	// digest does not validate against recomputation.
	ErrIntegrityViolation = errors.New("message integrity check failed")

	// ErrChannelNotFound is returned when no channel exists for the
	// given identifier.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrChannelExists is returned when a channel identifier is already taken.
	ErrChannelExists = errors.New("channel already exists")

	// ErrChannelInactive is returned for any cipher operation against a
	// deactivated channel. Deactivation is permanent.
	ErrChannelInactive = errors.New("channel is inactive")

	// ErrChannelUnauthorized is returned when the calling entity is not a
	// participant of the channel.
	ErrChannelUnauthorized = errors.New("entity is not a channel participant")

	// ErrChannelMismatch is returned when a message was produced for a
	// different channel than the one it is being decrypted against.
	ErrChannelMismatch = errors.New("message bound to a different channel")
)

// EngineError is implemented by all engine errors.
type EngineError interface {
	error
	EngineError() // marker method
}

// KeyLookupError reports a failed key pair lookup. It matches
// ErrRecipientKeyNotFound or ErrRecipientKeyExpired depending on whether
// the entity had a stale entry.
type KeyLookupError struct {
	EntityID string
	Expired  bool
}

func (e *KeyLookupError) Error() string {
	if e.Expired {
		return fmt.Sprintf("key pair for entity %q has expired", e.EntityID)
	}
	return fmt.Sprintf("no key pair registered for entity %q", e.EntityID)
}

// Is implements errors.Is for sentinel error matching.
func (e *KeyLookupError) Is(target error) bool {
	if e.Expired {
		return target == ErrRecipientKeyExpired
	}
	return target == ErrRecipientKeyNotFound
}

// EngineError implements the EngineError interface.
func (e *KeyLookupError) EngineError() {}

// DecryptionError reports a failed decryption. Its message is uniform
// across integrity, unwrap, and authentication failures so callers cannot
// be used as a decryption oracle; programmatic handling goes through
// errors.Is with the wrapped sentinel, and Stage is recorded for internal
// logging only.
type DecryptionError struct {
	Stage string // "integrity", "decode", "unwrap", "aead"
	Err   error
}

func (e *DecryptionError) Error() string {
	return "decryption failed"
}

// Unwrap returns the sentinel classifying the failure.
func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// EngineError implements the EngineError interface.
func (e *DecryptionError) EngineError() {}

// ChannelAuthError reports a channel authorization failure: the caller is
// not a participant, or the channel has been deactivated.
type ChannelAuthError struct {
	ChannelID string
	EntityID  string
	Err       error
}

func (e *ChannelAuthError) Error() string {
	return fmt.Sprintf("channel %s: %v", e.ChannelID, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *ChannelAuthError) Unwrap() error {
	return e.Err
}

// EngineError implements the EngineError interface.
func (e *ChannelAuthError) EngineError() {}

// ValidationError contains one or more input validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Errors)
}

// EngineError implements the EngineError interface.
func (e *ValidationError) EngineError() {}
