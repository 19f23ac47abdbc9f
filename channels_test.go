package e2ee

import (
	"errors"
	"sort"
	"testing"
	"time"
)

// newChannelEngine registers key pairs for the given entities.
func newChannelEngine(t *testing.T, entities ...string) *Engine {
	t.Helper()

	eng := newTestEngine(t)
	for _, id := range entities {
		if _, err := eng.GenerateKeyPair(id, 0); err != nil {
			t.Fatalf("GenerateKeyPair(%s): %v", id, err)
		}
	}
	return eng
}

func TestCreateChannel(t *testing.T) {
	t.Parallel()
	eng := newChannelEngine(t, "alice", "bob", "carol")

	ch, err := eng.CreateChannel([]string{"carol", "alice", "bob", "alice"})
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	if ch.ChannelID == "" {
		t.Error("channel ID missing")
	}
	if !ch.IsActive {
		t.Error("new channel not active")
	}
	if ch.MessageCount != 0 {
		t.Errorf("MessageCount = %d, want 0", ch.MessageCount)
	}

	want := []string{"alice", "bob", "carol"}
	if len(ch.Participants) != len(want) || !sort.StringsAreSorted(ch.Participants) {
		t.Errorf("Participants = %v, want sorted %v", ch.Participants, want)
	}
	for i, p := range want {
		if ch.Participants[i] != p {
			t.Errorf("Participants = %v, want %v", ch.Participants, want)
			break
		}
	}
}

func TestCreateChannel_ExplicitID(t *testing.T) {
	t.Parallel()
	eng := newChannelEngine(t, "alice", "bob")

	ch, err := eng.CreateChannel([]string{"alice", "bob"}, WithChannelID("team-42"))
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	if ch.ChannelID != "team-42" {
		t.Errorf("ChannelID = %q, want team-42", ch.ChannelID)
	}

	_, err = eng.CreateChannel([]string{"alice", "bob"}, WithChannelID("team-42"))
	if !errors.Is(err, ErrChannelExists) {
		t.Errorf("error = %v, want ErrChannelExists", err)
	}
}

func TestCreateChannel_Validation(t *testing.T) {
	t.Parallel()
	eng := newChannelEngine(t, "alice", "bob")

	var verr *ValidationError
	if _, err := eng.CreateChannel([]string{"alice"}); !errors.As(err, &verr) {
		t.Errorf("single participant: error = %v, want ValidationError", err)
	}
	if _, err := eng.CreateChannel([]string{"alice", "alice"}); !errors.As(err, &verr) {
		t.Errorf("duplicate-only participants: error = %v, want ValidationError", err)
	}
	if _, err := eng.CreateChannel([]string{"alice", ""}); !errors.As(err, &verr) {
		t.Errorf("empty participant: error = %v, want ValidationError", err)
	}
	if _, err := eng.CreateChannel([]string{"alice", "nobody"}); !errors.Is(err, ErrRecipientKeyNotFound) {
		t.Errorf("unregistered participant: error = %v, want ErrRecipientKeyNotFound", err)
	}
}

func TestCreateChannel_ExpiredParticipant(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	eng := newTestEngine(t, WithClock(clock))

	if _, err := eng.GenerateKeyPair("alice", 30); err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if _, err := eng.GenerateKeyPair("bob", 1); err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	now = now.AddDate(0, 0, 2)

	_, err := eng.CreateChannel([]string{"alice", "bob"})
	if !errors.Is(err, ErrRecipientKeyExpired) {
		t.Errorf("error = %v, want ErrRecipientKeyExpired", err)
	}
}

func TestChannelRoundTrip(t *testing.T) {
	t.Parallel()
	eng := newChannelEngine(t, "alice", "bob", "carol")

	ch, err := eng.CreateChannel([]string{"alice", "bob", "carol"})
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}

	msg, err := eng.EncryptForChannel("team update", ch.ChannelID, "alice")
	if err != nil {
		t.Fatalf("EncryptForChannel: %v", err)
	}
	if msg.EncryptedKey != "" {
		t.Error("channel message carries a wrapped key")
	}
	if msg.KeyFingerprint != ch.ChannelID {
		t.Errorf("KeyFingerprint = %q, want channel ID %q", msg.KeyFingerprint, ch.ChannelID)
	}

	for _, member := range []string{"alice", "bob", "carol"} {
		got, err := eng.DecryptFromChannel(msg, ch.ChannelID, member)
		if err != nil {
			t.Fatalf("DecryptFromChannel(%s): %v", member, err)
		}
		if got != "team update" {
			t.Errorf("plaintext for %s = %q, want %q", member, got, "team update")
		}
	}
}

func TestChannel_NonParticipant(t *testing.T) {
	t.Parallel()
	eng := newChannelEngine(t, "alice", "bob", "dave")

	ch, err := eng.CreateChannel([]string{"alice", "bob"})
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}

	if _, err := eng.EncryptForChannel("hi", ch.ChannelID, "dave"); !errors.Is(err, ErrChannelUnauthorized) {
		t.Errorf("encrypt: error = %v, want ErrChannelUnauthorized", err)
	}

	msg, err := eng.EncryptForChannel("hi", ch.ChannelID, "alice")
	if err != nil {
		t.Fatalf("EncryptForChannel: %v", err)
	}
	if _, err := eng.DecryptFromChannel(msg, ch.ChannelID, "dave"); !errors.Is(err, ErrChannelUnauthorized) {
		t.Errorf("decrypt: error = %v, want ErrChannelUnauthorized", err)
	}
}

func TestChannel_UnknownChannel(t *testing.T) {
	t.Parallel()
	eng := newChannelEngine(t, "alice")

	if _, err := eng.EncryptForChannel("hi", "no-such-channel", "alice"); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("error = %v, want ErrChannelNotFound", err)
	}
}

func TestChannel_Deactivate(t *testing.T) {
	t.Parallel()
	eng := newChannelEngine(t, "alice", "bob")

	ch, err := eng.CreateChannel([]string{"alice", "bob"})
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	msg, err := eng.EncryptForChannel("before", ch.ChannelID, "alice")
	if err != nil {
		t.Fatalf("EncryptForChannel: %v", err)
	}

	if err := eng.DeactivateChannel(ch.ChannelID); err != nil {
		t.Fatalf("DeactivateChannel: %v", err)
	}

	if _, err := eng.EncryptForChannel("after", ch.ChannelID, "alice"); !errors.Is(err, ErrChannelInactive) {
		t.Errorf("encrypt: error = %v, want ErrChannelInactive", err)
	}
	if _, err := eng.DecryptFromChannel(msg, ch.ChannelID, "bob"); !errors.Is(err, ErrChannelInactive) {
		t.Errorf("decrypt: error = %v, want ErrChannelInactive", err)
	}

	// The record survives deactivation for audit.
	view, err := eng.Channel(ch.ChannelID)
	if err != nil {
		t.Fatalf("Channel: %v", err)
	}
	if view.IsActive {
		t.Error("channel still active after deactivation")
	}

	if err := eng.DeactivateChannel("no-such-channel"); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("error = %v, want ErrChannelNotFound", err)
	}
}

func TestChannel_CrossChannelReplay(t *testing.T) {
	t.Parallel()
	eng := newChannelEngine(t, "alice", "bob")

	ch1, err := eng.CreateChannel([]string{"alice", "bob"}, WithChannelID("channel-one"))
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	if _, err := eng.CreateChannel([]string{"alice", "bob"}, WithChannelID("channel-two")); err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}

	msg, err := eng.EncryptForChannel("bound to one", ch1.ChannelID, "alice")
	if err != nil {
		t.Fatalf("EncryptForChannel: %v", err)
	}

	_, err = eng.DecryptFromChannel(msg, "channel-two", "bob")
	if !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("error = %v, want ErrChannelMismatch", err)
	}
}

func TestChannel_TamperedMessage(t *testing.T) {
	t.Parallel()
	eng := newChannelEngine(t, "alice", "bob")

	ch, err := eng.CreateChannel([]string{"alice", "bob"})
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	msg, err := eng.EncryptForChannel("payload", ch.ChannelID, "alice")
	if err != nil {
		t.Fatalf("EncryptForChannel: %v", err)
	}
	msg.EncryptedData = corruptField(msg.EncryptedData)

	_, err = eng.DecryptFromChannel(msg, ch.ChannelID, "bob")
	if !errors.Is(err, ErrIntegrityViolation) {
		t.Errorf("error = %v, want ErrIntegrityViolation", err)
	}
}

func TestChannel_UsageCounters(t *testing.T) {
	t.Parallel()
	eng := newChannelEngine(t, "alice", "bob")

	ch, err := eng.CreateChannel([]string{"alice", "bob"})
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}

	msg, err := eng.EncryptForChannel("one", ch.ChannelID, "alice")
	if err != nil {
		t.Fatalf("EncryptForChannel: %v", err)
	}
	if _, err := eng.DecryptFromChannel(msg, ch.ChannelID, "bob"); err != nil {
		t.Fatalf("DecryptFromChannel: %v", err)
	}

	view, err := eng.Channel(ch.ChannelID)
	if err != nil {
		t.Fatalf("Channel: %v", err)
	}
	if view.MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", view.MessageCount)
	}
	if view.LastUsed.Before(view.CreatedAt) {
		t.Error("LastUsed not updated")
	}
}
