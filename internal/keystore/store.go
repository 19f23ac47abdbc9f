// Package keystore is the in-memory authoritative registry of asymmetric
// key pairs, keyed by entity identifier.
//
// The store owns all KeyPair records. Readers receive copies, so an
// in-flight encryption that already obtained a key snapshot is not affected
// by a concurrent rotation of the same entity. Rotation moves the superseded
// key into a small bounded history indexed by fingerprint, so messages
// encrypted just before a rotation remain decryptable until the old key
// ages out.
package keystore

import (
	"sync"
	"time"
)

// KeyPair represents one entity's asymmetric identity.
//
// PublicKey and PrivateKey hold opaque encoded key material (PEM or
// base64url depending on the wrap algorithm). PrivateKey is empty for
// imported external identities.
type KeyPair struct {
	EntityID    string    `json:"entityId"`
	PublicKey   string    `json:"publicKey"`
	PrivateKey  string    `json:"-"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Expired reports whether the key pair's lifetime has passed.
func (k *KeyPair) Expired(now time.Time) bool {
	return k.ExpiresAt.Before(now)
}

// CanDecrypt reports whether the key pair holds private key material.
func (k *KeyPair) CanDecrypt() bool {
	return k.PrivateKey != ""
}

func (k *KeyPair) clone() *KeyPair {
	c := *k
	return &c
}

// Store is the key pair registry. All access is serialized through one
// lock over the maps; records never escape by reference.
type Store struct {
	mu          sync.RWMutex
	active      map[string]*KeyPair   // entity ID -> current key pair
	history     map[string][]*KeyPair // entity ID -> superseded keys, newest first
	historySize int
}

// New creates an empty store keeping up to historySize superseded keys
// per entity. A historySize of zero disables rotation history.
func New(historySize int) *Store {
	if historySize < 0 {
		historySize = 0
	}
	return &Store{
		active:      make(map[string]*KeyPair),
		history:     make(map[string][]*KeyPair),
		historySize: historySize,
	}
}

// Put registers kp as the entity's active key pair, superseding any prior
// entry. The superseded key is pushed onto the entity's history ring.
// An entity has at most one active key pair at a time.
func (s *Store) Put(kp *KeyPair) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.active[kp.EntityID]; ok && s.historySize > 0 {
		ring := append([]*KeyPair{old}, s.history[kp.EntityID]...)
		if len(ring) > s.historySize {
			ring = ring[:s.historySize]
		}
		s.history[kp.EntityID] = ring
	}
	s.active[kp.EntityID] = kp.clone()
}

// Get returns a snapshot of the entity's active key pair.
func (s *Store) Get(entityID string) (*KeyPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kp, ok := s.active[entityID]
	if !ok {
		return nil, false
	}
	return kp.clone(), true
}

// GetByFingerprint returns the entity's key pair with the given
// fingerprint, checking the active key first and then the rotation
// history.
func (s *Store) GetByFingerprint(entityID, fingerprint string) (*KeyPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if kp, ok := s.active[entityID]; ok && kp.Fingerprint == fingerprint {
		return kp.clone(), true
	}
	for _, kp := range s.history[entityID] {
		if kp.Fingerprint == fingerprint {
			return kp.clone(), true
		}
	}
	return nil, false
}

// PurgeExpired removes every active entry whose expiry is before now and
// prunes expired history entries. It returns the number of active entries
// removed. The iteration works on a snapshot of the key set so a purge
// never observes a half-updated map.
func (s *Store) PurgeExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}

	removed := 0
	for _, id := range ids {
		if s.active[id].Expired(now) {
			delete(s.active, id)
			removed++
		}
	}

	for id, ring := range s.history {
		kept := ring[:0]
		for _, kp := range ring {
			if !kp.Expired(now) {
				kept = append(kept, kp)
			}
		}
		if len(kept) == 0 {
			delete(s.history, id)
			continue
		}
		s.history[id] = kept
	}

	return removed
}

// Export returns the public key material of every active entry, keyed by
// entity identifier.
func (s *Store) Export() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.active))
	for id, kp := range s.active {
		out[id] = kp.PublicKey
	}
	return out
}

// Len returns the number of active entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}
