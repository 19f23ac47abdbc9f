// Package channelstore is the in-memory registry of secure channels: the
// shared cryptographic context for closed participant groups.
//
// The store owns all channel records, including the shared secrets. Readers
// receive copies. Deactivation is a soft delete: the record (and its secret)
// survives for audit, but no cipher operation is permitted against a
// deactivated channel and there is no way to reactivate one.
package channelstore

import (
	"sync"
	"time"
)

// Channel is a secure channel record.
type Channel struct {
	ChannelID    string
	Participants []string // sorted, deduplicated entity IDs
	SharedSecret []byte
	Salt         []byte
	CreatedAt    time.Time
	LastUsed     time.Time
	MessageCount int64
	Active       bool
}

// HasParticipant reports whether entityID belongs to the channel.
func (c *Channel) HasParticipant(entityID string) bool {
	for _, p := range c.Participants {
		if p == entityID {
			return true
		}
	}
	return false
}

func (c *Channel) clone() *Channel {
	out := *c
	out.Participants = append([]string(nil), c.Participants...)
	out.SharedSecret = append([]byte(nil), c.SharedSecret...)
	out.Salt = append([]byte(nil), c.Salt...)
	return &out
}

// Store is the channel registry.
type Store struct {
	mu       sync.RWMutex
	channels map[string]*Channel
}

// New creates an empty channel store.
func New() *Store {
	return &Store{channels: make(map[string]*Channel)}
}

// Put registers a channel. It reports false when the channel ID is
// already taken.
func (s *Store) Put(ch *Channel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.channels[ch.ChannelID]; exists {
		return false
	}
	s.channels[ch.ChannelID] = ch.clone()
	return true
}

// Get returns a snapshot of the channel record.
func (s *Store) Get(channelID string) (*Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, ok := s.channels[channelID]
	if !ok {
		return nil, false
	}
	return ch.clone(), true
}

// Touch records a successful cipher operation against the channel,
// updating its last-used timestamp and message counter.
func (s *Store) Touch(channelID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.channels[channelID]; ok {
		ch.LastUsed = now
		ch.MessageCount++
	}
}

// Deactivate marks the channel inactive. The operation is irreversible
// through this API. It reports whether the channel existed.
func (s *Store) Deactivate(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.channels[channelID]
	if !ok {
		return false
	}
	ch.Active = false
	return true
}

// Len returns the number of registered channels, active or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels)
}
