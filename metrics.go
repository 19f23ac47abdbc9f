package e2ee

import (
	"sync"
	"time"
)

// EncryptionMetrics is a point-in-time snapshot of engine activity.
// TotalMessages counts successful encryptions; the cumulative durations
// cover successful operations only, while FailedDecryptions counts every
// decryption attempt that returned an error.
type EncryptionMetrics struct {
	TotalMessages     int64         `json:"totalMessages"`
	EncryptionTime    time.Duration `json:"encryptionTime"`
	DecryptionTime    time.Duration `json:"decryptionTime"`
	KeyRotations      int64         `json:"keyRotations"`
	FailedDecryptions int64         `json:"failedDecryptions"`
	LastRotation      time.Time     `json:"lastRotation"`
}

// metricsCollector accumulates counters behind a mutex so cipher
// operations on different goroutines never race.
type metricsCollector struct {
	mu sync.Mutex
	m  EncryptionMetrics
}

func newMetricsCollector() *metricsCollector {
	return &metricsCollector{}
}

func (c *metricsCollector) recordEncryption(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m.TotalMessages++
	c.m.EncryptionTime += d
}

func (c *metricsCollector) recordDecryption(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m.DecryptionTime += d
}

func (c *metricsCollector) recordFailedDecryption() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m.FailedDecryptions++
}

func (c *metricsCollector) recordRotation(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m.KeyRotations++
	c.m.LastRotation = at
}

// Snapshot returns a copy of the current counters.
func (c *metricsCollector) Snapshot() EncryptionMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m
}
