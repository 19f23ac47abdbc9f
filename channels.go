package e2ee

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/correlate000/e2ee-go/internal/channelstore"
	"github.com/correlate000/e2ee-go/internal/crypto"
	"github.com/correlate000/e2ee-go/internal/integrity"
)

// SecureChannel is the public view of a channel. The shared secret is
// deliberately absent; it never leaves the engine.
type SecureChannel struct {
	ChannelID    string    `json:"channelId"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
	LastUsed     time.Time `json:"lastUsed"`
	MessageCount int64     `json:"messageCount"`
	IsActive     bool      `json:"isActive"`
}

func channelView(ch *channelstore.Channel) *SecureChannel {
	return &SecureChannel{
		ChannelID:    ch.ChannelID,
		Participants: append([]string(nil), ch.Participants...),
		CreatedAt:    ch.CreatedAt,
		LastUsed:     ch.LastUsed,
		MessageCount: ch.MessageCount,
		IsActive:     ch.Active,
	}
}

// CreateChannel establishes a secure channel for two or more participants.
// Every participant must hold a registered, unexpired key. The channel
// secret is stretched from fresh entropy, a random salt, and the sorted
// participant key fingerprints, so it cannot be reproduced from the
// participant list alone.
func (e *Engine) CreateChannel(participants []string, opts ...ChannelOption) (*SecureChannel, error) {
	var cfg channelConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	members := dedupeSorted(participants)
	if len(members) < 2 {
		return nil, &ValidationError{Errors: []string{"a channel requires at least two distinct participants"}}
	}
	for _, m := range members {
		if m == "" {
			return nil, &ValidationError{Errors: []string{"participant IDs must not be empty"}}
		}
	}

	now := e.now()
	fingerprints := make([]string, 0, len(members))
	for _, m := range members {
		kp, ok := e.keys.Get(m)
		if !ok {
			return nil, &KeyLookupError{EntityID: m}
		}
		if kp.Expired(now) {
			return nil, &KeyLookupError{EntityID: m, Expired: true}
		}
		fingerprints = append(fingerprints, kp.Fingerprint)
	}

	entropy, err := crypto.RandomBytes(crypto.ContentKeySize)
	if err != nil {
		return nil, err
	}
	salt, err := crypto.RandomBytes(e.cfg.saltLength)
	if err != nil {
		return nil, err
	}
	secret := crypto.StretchChannelSecret(entropy, salt, fingerprints, e.cfg.iterations, e.hashFn)

	channelID := cfg.channelID
	if channelID == "" {
		channelID = "channel-" + uuid.New().String()
	}

	ch := &channelstore.Channel{
		ChannelID:    channelID,
		Participants: members,
		SharedSecret: secret,
		Salt:         salt,
		CreatedAt:    now,
		LastUsed:     now,
		Active:       true,
	}
	if !e.channels.Put(ch) {
		return nil, fmt.Errorf("%w: %s", ErrChannelExists, channelID)
	}

	e.log.Info().
		Str("channel_id", channelID).
		Strs("participants", members).
		Msg("channel created")
	return channelView(ch), nil
}

// EncryptForChannel encrypts plaintext under a channel's shared secret.
// The sender must be a participant of an active channel. The envelope's
// key fingerprint slot carries the channel ID, binding the message to
// this channel; no key wrapping is involved.
func (e *Engine) EncryptForChannel(plaintext, channelID, senderEntityID string) (*EncryptedMessage, error) {
	start := time.Now()

	ch, err := e.authorizedChannel(channelID, senderEntityID)
	if err != nil {
		return nil, err
	}

	msg, err := e.seal(plaintext, ch.SharedSecret, "", channelID)
	if err != nil {
		return nil, err
	}
	msg.Integrity = integrity.Digest(msg.integrityFields(), e.hashFn)

	e.channels.Touch(channelID, e.now())
	e.metrics.recordEncryption(time.Since(start))
	e.log.Debug().
		Str("message_id", msg.ID).
		Str("channel_id", channelID).
		Str("sender", senderEntityID).
		Msg("channel message encrypted")
	return msg, nil
}

// DecryptFromChannel decrypts a channel message for a participant. The
// message must be bound to this exact channel; a message produced for any
// other channel is rejected before its integrity is even checked.
func (e *Engine) DecryptFromChannel(msg *EncryptedMessage, channelID, recipientEntityID string) (string, error) {
	if msg == nil {
		return "", &ValidationError{Errors: []string{"message must not be nil"}}
	}
	start := time.Now()

	ch, err := e.authorizedChannel(channelID, recipientEntityID)
	if err != nil {
		e.metrics.recordFailedDecryption()
		return "", err
	}
	if !crypto.ConstantTimeEqual(msg.KeyFingerprint, channelID) {
		e.metrics.recordFailedDecryption()
		return "", fmt.Errorf("%w: message carries %s", ErrChannelMismatch, msg.KeyFingerprint)
	}

	if !integrity.Verify(msg.integrityFields(), msg.Integrity, e.hashFn) {
		return "", e.failDecrypt(msg.ID, "integrity", ErrIntegrityViolation)
	}

	plaintext, err := e.open(msg, ch.SharedSecret)
	if err != nil {
		return "", err
	}

	e.channels.Touch(channelID, e.now())
	e.metrics.recordDecryption(time.Since(start))
	e.log.Debug().
		Str("message_id", msg.ID).
		Str("channel_id", channelID).
		Str("recipient", recipientEntityID).
		Msg("channel message decrypted")
	return plaintext, nil
}

// DeactivateChannel permanently disables a channel. The record survives
// for audit, but no further cipher operation is permitted and there is no
// reactivation.
func (e *Engine) DeactivateChannel(channelID string) error {
	if !e.channels.Deactivate(channelID) {
		return fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}
	e.log.Info().Str("channel_id", channelID).Msg("channel deactivated")
	return nil
}

// Channel returns the public view of a channel, active or not.
func (e *Engine) Channel(channelID string) (*SecureChannel, error) {
	ch, ok := e.channels.Get(channelID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}
	return channelView(ch), nil
}

// authorizedChannel resolves a channel and checks that it is active and
// that the entity participates in it.
func (e *Engine) authorizedChannel(channelID, entityID string) (*channelstore.Channel, error) {
	ch, ok := e.channels.Get(channelID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}
	if !ch.Active {
		return nil, &ChannelAuthError{ChannelID: channelID, EntityID: entityID, Err: ErrChannelInactive}
	}
	if !ch.HasParticipant(entityID) {
		return nil, &ChannelAuthError{ChannelID: channelID, EntityID: entityID, Err: ErrChannelUnauthorized}
	}
	return ch, nil
}

func dedupeSorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	j := 0
	for i, v := range out {
		if i == 0 || v != out[j-1] {
			out[j] = v
			j++
		}
	}
	return out[:j]
}
