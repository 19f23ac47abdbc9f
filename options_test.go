package e2ee

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{"defaults", nil, false},
		{"xchacha", []Option{WithAlgorithm(AlgorithmXChaCha)}, false},
		{"mlkem", []Option{WithKeyWrap(KeyWrapMLKEM768)}, false},
		{"sha384", []Option{WithHashAlgorithm(HashSHA384)}, false},
		{"sha512", []Option{WithHashAlgorithm(HashSHA512)}, false},
		{"rsa 4096", []Option{WithRSAKeySize(4096)}, false},
		{"explicit gcm iv", []Option{WithIVLength(12)}, false},
		{"explicit xchacha iv", []Option{WithAlgorithm(AlgorithmXChaCha), WithIVLength(24)}, false},
		{"history disabled", []Option{WithKeyHistorySize(0)}, false},
		{"unknown algorithm", []Option{WithAlgorithm("des")}, true},
		{"unknown key wrap", []Option{WithKeyWrap("pgp")}, true},
		{"unknown hash", []Option{WithHashAlgorithm("md5")}, true},
		{"odd rsa size", []Option{WithRSAKeySize(1024)}, true},
		{"low iterations", []Option{WithKeyDerivationIterations(10)}, true},
		{"short salt", []Option{WithSaltLength(4)}, true},
		{"iv mismatch", []Option{WithIVLength(24)}, true},
		{"bad tag length", []Option{WithTagLength(12)}, true},
		{"zero ttl", []Option{WithDefaultKeyTTL(0)}, true},
		{"negative history", []Option{WithKeyHistorySize(-1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.opts...)
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Errorf("New: %v", err)
			}
		})
	}
}

func TestWithClock(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	eng := newTestEngine(t, WithClock(func() time.Time { return fixed }))

	kp, err := eng.GenerateKeyPair("alice", 0)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if !kp.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", kp.CreatedAt, fixed)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("E2EE_ALGORITHM", string(AlgorithmXChaCha))
	t.Setenv("E2EE_KEY_WRAP", string(KeyWrapMLKEM768))
	t.Setenv("E2EE_HASH_ALGORITHM", string(HashSHA512))
	t.Setenv("E2EE_KDF_ITERATIONS", "200000")
	t.Setenv("E2EE_SALT_LENGTH", "32")
	t.Setenv("E2EE_KEY_TTL_DAYS", "90")
	t.Setenv("E2EE_KEY_HISTORY_SIZE", "5")

	cfg := defaultConfig()
	for _, opt := range ConfigFromEnv() {
		opt(&cfg)
	}

	if cfg.algorithm != AlgorithmXChaCha {
		t.Errorf("algorithm = %q, want %q", cfg.algorithm, AlgorithmXChaCha)
	}
	if cfg.keyWrap != KeyWrapMLKEM768 {
		t.Errorf("keyWrap = %q, want %q", cfg.keyWrap, KeyWrapMLKEM768)
	}
	if cfg.hash != HashSHA512 {
		t.Errorf("hash = %q, want %q", cfg.hash, HashSHA512)
	}
	if cfg.iterations != 200000 {
		t.Errorf("iterations = %d, want 200000", cfg.iterations)
	}
	if cfg.saltLength != 32 {
		t.Errorf("saltLength = %d, want 32", cfg.saltLength)
	}
	if cfg.keyTTLDays != 90 {
		t.Errorf("keyTTLDays = %d, want 90", cfg.keyTTLDays)
	}
	if cfg.historySize != 5 {
		t.Errorf("historySize = %d, want 5", cfg.historySize)
	}
}

func TestConfigFromEnv_Unset(t *testing.T) {
	t.Setenv("E2EE_ALGORITHM", "")
	t.Setenv("E2EE_KDF_ITERATIONS", "not-a-number")

	cfg := defaultConfig()
	for _, opt := range ConfigFromEnv() {
		opt(&cfg)
	}

	if cfg.algorithm != AlgorithmAESGCM {
		t.Errorf("algorithm = %q, want default %q", cfg.algorithm, AlgorithmAESGCM)
	}
	if cfg.iterations != defaultIterations {
		t.Errorf("iterations = %d, want default %d", cfg.iterations, defaultIterations)
	}
}

func TestEngineErrorMarker(t *testing.T) {
	t.Parallel()

	errs := []error{
		&KeyLookupError{EntityID: "x"},
		&DecryptionError{Stage: "aead", Err: ErrAuthenticationFailed},
		&ChannelAuthError{ChannelID: "c", EntityID: "x", Err: ErrChannelInactive},
		&ValidationError{Errors: []string{"bad"}},
	}
	for _, err := range errs {
		if _, ok := err.(EngineError); !ok {
			t.Errorf("%T does not implement EngineError", err)
		}
	}
}
