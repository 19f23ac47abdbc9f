package e2ee

import (
	"fmt"
	"hash"
	"time"

	"github.com/rs/zerolog"

	"github.com/correlate000/e2ee-go/internal/channelstore"
	"github.com/correlate000/e2ee-go/internal/crypto"
	"github.com/correlate000/e2ee-go/internal/keystore"
)

// KeyPair is a managed key pair. The private key is never serialized.
type KeyPair = keystore.KeyPair

// Engine is the hybrid encryption engine. It owns the key registry, the
// channel registry, and the operation metrics, and is safe for concurrent
// use. Create one with New.
type Engine struct {
	cfg      engineConfig
	hashFn   func() hash.Hash
	wrapper  crypto.KeyWrapper
	keys     *keystore.Store
	channels *channelstore.Store
	metrics  *metricsCollector
	log      zerolog.Logger
}

// New creates an engine with the given options.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	hashFn, _ := cfg.hash.hashFunc()

	var wrapper crypto.KeyWrapper
	switch cfg.keyWrap {
	case KeyWrapMLKEM768:
		wrapper = crypto.NewKEMWrapper(hashFn)
	default:
		wrapper = crypto.NewRSAWrapper(cfg.rsaKeySize, hashFn)
	}

	return &Engine{
		cfg:      cfg,
		hashFn:   hashFn,
		wrapper:  wrapper,
		keys:     keystore.New(cfg.historySize),
		channels: channelstore.New(),
		metrics:  newMetricsCollector(),
		log:      cfg.logger,
	}, nil
}

func (e *Engine) now() time.Time {
	return e.cfg.clock()
}

// nonceSize returns the nonce length for the configured cipher. The
// algorithm was validated at construction, so the lookup cannot fail for
// the engine's own configuration.
func (e *Engine) nonceSize() int {
	if e.cfg.ivLength > 0 {
		return e.cfg.ivLength
	}
	n, _ := crypto.NonceSize(string(e.cfg.algorithm))
	return n
}

// GenerateKeyPair creates and registers a key pair for the entity,
// replacing any existing one. The previous active key, if any, is retained
// in the bounded rotation history so recent messages stay decryptable.
// A non-positive expirationDays applies the configured default TTL.
func (e *Engine) GenerateKeyPair(entityID string, expirationDays int) (*KeyPair, error) {
	if entityID == "" {
		return nil, &ValidationError{Errors: []string{"entity ID must not be empty"}}
	}
	days := expirationDays
	if days <= 0 {
		days = e.cfg.keyTTLDays
	}

	pub, priv, err := e.wrapper.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	now := e.now()
	kp := &KeyPair{
		EntityID:    entityID,
		PublicKey:   pub,
		PrivateKey:  priv,
		Fingerprint: crypto.Fingerprint([]byte(pub), e.hashFn),
		CreatedAt:   now,
		ExpiresAt:   now.AddDate(0, 0, days),
	}
	e.keys.Put(kp)
	e.metrics.recordRotation(now)

	e.log.Info().
		Str("entity_id", entityID).
		Str("fingerprint", kp.Fingerprint).
		Time("expires_at", kp.ExpiresAt).
		Msg("key pair generated")

	out := *kp
	return &out, nil
}

// RotateKeyPair replaces the entity's key pair with a freshly generated
// one under the default TTL. The superseded key moves into the rotation
// history; messages already encrypted under it remain decryptable until
// the history evicts it.
func (e *Engine) RotateKeyPair(entityID string) (*KeyPair, error) {
	old, hadOld := e.keys.Get(entityID)

	kp, err := e.GenerateKeyPair(entityID, 0)
	if err != nil {
		return nil, err
	}
	if hadOld {
		e.log.Info().
			Str("entity_id", entityID).
			Str("old_fingerprint", old.Fingerprint).
			Str("new_fingerprint", kp.Fingerprint).
			Msg("key pair rotated")
	}
	return kp, nil
}

// ImportPublicKey registers another entity's public key for encryption.
// The imported entry carries no private key, so messages cannot be
// decrypted as this entity. The key is parsed on first use; malformed
// material surfaces as an encryption error.
func (e *Engine) ImportPublicKey(entityID, publicKey string, expirationDays int) error {
	var errs []string
	if entityID == "" {
		errs = append(errs, "entity ID must not be empty")
	}
	if publicKey == "" {
		errs = append(errs, "public key must not be empty")
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	days := expirationDays
	if days <= 0 {
		days = e.cfg.keyTTLDays
	}
	now := e.now()
	kp := &KeyPair{
		EntityID:    entityID,
		PublicKey:   publicKey,
		Fingerprint: crypto.Fingerprint([]byte(publicKey), e.hashFn),
		CreatedAt:   now,
		ExpiresAt:   now.AddDate(0, 0, days),
	}
	e.keys.Put(kp)

	e.log.Debug().
		Str("entity_id", entityID).
		Str("fingerprint", kp.Fingerprint).
		Msg("public key imported")
	return nil
}

// LookupPublicKey returns the entity's active public key.
func (e *Engine) LookupPublicKey(entityID string) (string, bool) {
	kp, ok := e.keys.Get(entityID)
	if !ok {
		return "", false
	}
	return kp.PublicKey, true
}

// VerifyFingerprint reports whether the entity's active key matches the
// expected fingerprint. The comparison is constant-time.
func (e *Engine) VerifyFingerprint(entityID, fingerprint string) bool {
	kp, ok := e.keys.Get(entityID)
	if !ok {
		return false
	}
	return crypto.ConstantTimeEqual(kp.Fingerprint, fingerprint)
}

// PurgeExpired removes key pairs whose expiry is at or before now and
// returns how many active keys were dropped. A zero now uses the engine
// clock.
func (e *Engine) PurgeExpired(now time.Time) int {
	if now.IsZero() {
		now = e.now()
	}
	removed := e.keys.PurgeExpired(now)
	if removed > 0 {
		e.log.Info().Int("removed", removed).Msg("expired keys purged")
	}
	return removed
}

// ExportPublicKeys returns the active public key of every registered
// entity, keyed by entity ID. Private keys and rotation history are
// never exported.
func (e *Engine) ExportPublicKeys() map[string]string {
	return e.keys.Export()
}

// Metrics returns a snapshot of the engine's operation counters.
func (e *Engine) Metrics() EncryptionMetrics {
	return e.metrics.Snapshot()
}
