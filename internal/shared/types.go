package shared

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

func NewID(prefix string) string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return prefix + hex.EncodeToString(b)
}

type BackoffConfig struct {
	Initial     time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

// NormalizeDeviceID trims whitespace around a device identifier. Case is
// preserved; case folding only happens on registry fallback lookups.
func NormalizeDeviceID(id string) string {
	return strings.TrimSpace(id)
}
