package e2ee

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/correlate000/e2ee-go/internal/crypto"
)

// Algorithm selects the symmetric cipher used for message payloads.
type Algorithm string

const (
	// AlgorithmAESGCM uses AES-256 in Galois/Counter Mode.
	AlgorithmAESGCM Algorithm = crypto.AlgorithmAESGCM
	// AlgorithmXChaCha uses XChaCha20-Poly1305 with an extended nonce.
	AlgorithmXChaCha Algorithm = crypto.AlgorithmXChaCha
)

// KeyWrap selects the asymmetric scheme used to protect per-message
// content keys.
type KeyWrap string

const (
	// KeyWrapRSAOAEP wraps content keys with RSA-OAEP.
	KeyWrapRSAOAEP KeyWrap = "rsa-oaep"
	// KeyWrapMLKEM768 derives content keys via ML-KEM-768 encapsulation.
	KeyWrapMLKEM768 KeyWrap = "ml-kem-768"
)

// HashAlgorithm selects the digest used for fingerprints, integrity
// digests, and key derivation.
type HashAlgorithm string

const (
	// HashSHA256 uses SHA-256.
	HashSHA256 HashAlgorithm = "sha256"
	// HashSHA384 uses SHA-384.
	HashSHA384 HashAlgorithm = "sha384"
	// HashSHA512 uses SHA-512.
	HashSHA512 HashAlgorithm = "sha512"
)

const (
	defaultRSAKeySize  = 2048
	defaultIterations  = 600000
	defaultSaltLength  = 16
	defaultTagLength   = crypto.TagSize
	defaultKeyTTLDays  = 365
	defaultHistorySize = 3
)

// engineConfig holds configuration for the engine.
type engineConfig struct {
	algorithm   Algorithm
	keyWrap     KeyWrap
	rsaKeySize  int
	hash        HashAlgorithm
	iterations  int
	saltLength  int
	ivLength    int // 0 means derived from the algorithm
	tagLength   int
	keyTTLDays  int
	historySize int
	logger      zerolog.Logger
	clock       func() time.Time
}

// channelConfig holds configuration for channel creation.
type channelConfig struct {
	channelID string
}

// Option configures the engine.
type Option func(*engineConfig)

// ChannelOption configures channel creation.
type ChannelOption func(*channelConfig)

func defaultConfig() engineConfig {
	return engineConfig{
		algorithm:   AlgorithmAESGCM,
		keyWrap:     KeyWrapRSAOAEP,
		rsaKeySize:  defaultRSAKeySize,
		hash:        HashSHA256,
		iterations:  defaultIterations,
		saltLength:  defaultSaltLength,
		tagLength:   defaultTagLength,
		keyTTLDays:  defaultKeyTTLDays,
		historySize: defaultHistorySize,
		logger:      zerolog.Nop(),
		clock:       time.Now,
	}
}

// WithAlgorithm sets the symmetric cipher.
// Default: AlgorithmAESGCM
func WithAlgorithm(alg Algorithm) Option {
	return func(c *engineConfig) {
		c.algorithm = alg
	}
}

// WithKeyWrap sets the asymmetric key wrap scheme.
// Default: KeyWrapRSAOAEP
func WithKeyWrap(kw KeyWrap) Option {
	return func(c *engineConfig) {
		c.keyWrap = kw
	}
}

// WithRSAKeySize sets the RSA modulus size in bits. Only used with
// KeyWrapRSAOAEP. Accepted values: 2048, 3072, 4096.
// Default: 2048
func WithRSAKeySize(bits int) Option {
	return func(c *engineConfig) {
		c.rsaKeySize = bits
	}
}

// WithHashAlgorithm sets the digest used across the engine.
// Default: HashSHA256
func WithHashAlgorithm(h HashAlgorithm) Option {
	return func(c *engineConfig) {
		c.hash = h
	}
}

// WithKeyDerivationIterations sets the PBKDF2 iteration count for channel
// secret stretching. Higher values slow brute-force attacks at the cost
// of channel creation latency.
// Default: 600000
func WithKeyDerivationIterations(n int) Option {
	return func(c *engineConfig) {
		c.iterations = n
	}
}

// WithSaltLength sets the salt length in bytes for channel secret derivation.
// Default: 16
func WithSaltLength(n int) Option {
	return func(c *engineConfig) {
		c.saltLength = n
	}
}

// WithIVLength sets the nonce length in bytes. Must match the length the
// selected cipher requires; the zero value selects it automatically.
func WithIVLength(n int) Option {
	return func(c *engineConfig) {
		c.ivLength = n
	}
}

// WithTagLength sets the authentication tag length in bytes. Both supported
// ciphers produce 16-byte tags.
// Default: 16
func WithTagLength(n int) Option {
	return func(c *engineConfig) {
		c.tagLength = n
	}
}

// WithDefaultKeyTTL sets the default key pair lifetime in days, applied
// when GenerateKeyPair is called without an explicit expiry.
// Default: 365
func WithDefaultKeyTTL(days int) Option {
	return func(c *engineConfig) {
		c.keyTTLDays = days
	}
}

// WithKeyHistorySize sets how many superseded key pairs are retained per
// entity after rotation, allowing messages encrypted under recent keys to
// remain decryptable. Zero disables history.
// Default: 3
func WithKeyHistorySize(n int) Option {
	return func(c *engineConfig) {
		c.historySize = n
	}
}

// WithLogger sets the logger. The engine logs nothing by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithClock sets the time source. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *engineConfig) {
		c.clock = clock
	}
}

// WithChannelID sets an explicit channel identifier instead of a
// generated one.
func WithChannelID(id string) ChannelOption {
	return func(c *channelConfig) {
		c.channelID = id
	}
}

// ConfigFromEnv builds options from E2EE_* environment variables. A .env
// file in the working directory is loaded first if present. Unset
// variables leave the corresponding defaults in place.
//
// Recognized variables: E2EE_ALGORITHM, E2EE_KEY_WRAP, E2EE_HASH_ALGORITHM,
// E2EE_RSA_KEY_SIZE, E2EE_KDF_ITERATIONS, E2EE_SALT_LENGTH,
// E2EE_KEY_TTL_DAYS, E2EE_KEY_HISTORY_SIZE.
func ConfigFromEnv() []Option {
	_ = godotenv.Load()

	var opts []Option
	if v := os.Getenv("E2EE_ALGORITHM"); v != "" {
		opts = append(opts, WithAlgorithm(Algorithm(v)))
	}
	if v := os.Getenv("E2EE_KEY_WRAP"); v != "" {
		opts = append(opts, WithKeyWrap(KeyWrap(v)))
	}
	if v := os.Getenv("E2EE_HASH_ALGORITHM"); v != "" {
		opts = append(opts, WithHashAlgorithm(HashAlgorithm(v)))
	}
	if n, ok := envInt("E2EE_RSA_KEY_SIZE"); ok {
		opts = append(opts, WithRSAKeySize(n))
	}
	if n, ok := envInt("E2EE_KDF_ITERATIONS"); ok {
		opts = append(opts, WithKeyDerivationIterations(n))
	}
	if n, ok := envInt("E2EE_SALT_LENGTH"); ok {
		opts = append(opts, WithSaltLength(n))
	}
	if n, ok := envInt("E2EE_KEY_TTL_DAYS"); ok {
		opts = append(opts, WithDefaultKeyTTL(n))
	}
	if n, ok := envInt("E2EE_KEY_HISTORY_SIZE"); ok {
		opts = append(opts, WithKeyHistorySize(n))
	}
	return opts
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// hashFunc returns the constructor for the configured digest.
func (h HashAlgorithm) hashFunc() (func() hash.Hash, bool) {
	switch h {
	case HashSHA256:
		return sha256.New, true
	case HashSHA384:
		return sha512.New384, true
	case HashSHA512:
		return sha512.New, true
	default:
		return nil, false
	}
}

// validate checks the configuration for internal consistency.
func (c *engineConfig) validate() error {
	var errs []string

	switch c.algorithm {
	case AlgorithmAESGCM, AlgorithmXChaCha:
	default:
		errs = append(errs, fmt.Sprintf("unsupported algorithm %q", c.algorithm))
	}
	switch c.keyWrap {
	case KeyWrapRSAOAEP, KeyWrapMLKEM768:
	default:
		errs = append(errs, fmt.Sprintf("unsupported key wrap %q", c.keyWrap))
	}
	if _, ok := c.hash.hashFunc(); !ok {
		errs = append(errs, fmt.Sprintf("unsupported hash algorithm %q", c.hash))
	}
	switch c.rsaKeySize {
	case 2048, 3072, 4096:
	default:
		errs = append(errs, fmt.Sprintf("RSA key size must be 2048, 3072, or 4096, got %d", c.rsaKeySize))
	}
	if c.iterations < 1000 {
		errs = append(errs, fmt.Sprintf("key derivation iterations must be at least 1000, got %d", c.iterations))
	}
	if c.saltLength < 8 {
		errs = append(errs, fmt.Sprintf("salt length must be at least 8 bytes, got %d", c.saltLength))
	}
	if c.ivLength != 0 {
		if want, err := crypto.NonceSize(string(c.algorithm)); err == nil && c.ivLength != want {
			errs = append(errs, fmt.Sprintf("IV length %d does not match the %d required by %s", c.ivLength, want, c.algorithm))
		}
	}
	if c.tagLength != crypto.TagSize {
		errs = append(errs, fmt.Sprintf("tag length must be %d bytes, got %d", crypto.TagSize, c.tagLength))
	}
	if c.keyTTLDays < 1 {
		errs = append(errs, fmt.Sprintf("key TTL must be at least 1 day, got %d", c.keyTTLDays))
	}
	if c.historySize < 0 {
		errs = append(errs, fmt.Sprintf("key history size must not be negative, got %d", c.historySize))
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
