package security

import (
	"crypto/rand"
	"testing"
	"time"
)

// NewTestTokenCodec returns a TokenCodec with random keys and the given ttl,
// for use in tests only.
func NewTestTokenCodec(t *testing.T, ttl time.Duration) *TokenCodec {
	t.Helper()
	signing := make([]byte, 32)
	encryption := make([]byte, 32)
	if _, err := rand.Read(signing); err != nil {
		t.Fatalf("generate signing key: %v", err)
	}
	if _, err := rand.Read(encryption); err != nil {
		t.Fatalf("generate encryption key: %v", err)
	}
	codec, err := NewTokenCodec(signing, encryption, ttl)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return codec
}
