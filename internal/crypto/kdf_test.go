package crypto

import (
	"bytes"
	"crypto/sha256"
	"testing"
)

func TestDeriveContentKey_Deterministic(t *testing.T) {
	secret := bytes.Repeat([]byte{0x42}, MLKEMSharedKeySize)
	ct := bytes.Repeat([]byte{0x17}, MLKEMCiphertextSize)

	a, err := DeriveContentKey(secret, ct, sha256.New)
	if err != nil {
		t.Fatalf("DeriveContentKey: %v", err)
	}
	b, err := DeriveContentKey(secret, ct, sha256.New)
	if err != nil {
		t.Fatalf("DeriveContentKey: %v", err)
	}

	if !bytes.Equal(a, b) {
		t.Error("same inputs produced different keys")
	}
	if len(a) != ContentKeySize {
		t.Errorf("key length = %d, want %d", len(a), ContentKeySize)
	}
}

func TestDeriveContentKey_BindsCiphertext(t *testing.T) {
	secret := bytes.Repeat([]byte{0x42}, MLKEMSharedKeySize)
	ct1 := bytes.Repeat([]byte{0x01}, MLKEMCiphertextSize)
	ct2 := bytes.Repeat([]byte{0x02}, MLKEMCiphertextSize)

	a, _ := DeriveContentKey(secret, ct1, sha256.New)
	b, _ := DeriveContentKey(secret, ct2, sha256.New)
	if bytes.Equal(a, b) {
		t.Error("different KEM ciphertexts produced the same content key")
	}
}

func TestStretchChannelSecret(t *testing.T) {
	entropy := bytes.Repeat([]byte{0xAA}, 32)
	salt := bytes.Repeat([]byte{0xBB}, 16)
	fps := []string{"fp-alice", "fp-bob", "fp-carol"}

	a := StretchChannelSecret(entropy, salt, fps, 1000, sha256.New)
	b := StretchChannelSecret(entropy, salt, fps, 1000, sha256.New)
	if !bytes.Equal(a, b) {
		t.Error("same inputs produced different secrets")
	}
	if len(a) != ContentKeySize {
		t.Errorf("secret length = %d, want %d", len(a), ContentKeySize)
	}

	// Every input contributes to the result.
	if bytes.Equal(a, StretchChannelSecret(bytes.Repeat([]byte{0xAC}, 32), salt, fps, 1000, sha256.New)) {
		t.Error("entropy change did not change the secret")
	}
	if bytes.Equal(a, StretchChannelSecret(entropy, bytes.Repeat([]byte{0xBC}, 16), fps, 1000, sha256.New)) {
		t.Error("salt change did not change the secret")
	}
	if bytes.Equal(a, StretchChannelSecret(entropy, salt, []string{"fp-alice", "fp-bob"}, 1000, sha256.New)) {
		t.Error("participant change did not change the secret")
	}
	if bytes.Equal(a, StretchChannelSecret(entropy, salt, fps, 2000, sha256.New)) {
		t.Error("iteration change did not change the secret")
	}
}
