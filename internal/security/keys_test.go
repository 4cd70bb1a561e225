package security

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func TestDecodeEncryptionKey_Hex(t *testing.T) {
	key := bytes.Repeat([]byte{0xab}, 32)
	got, err := DecodeEncryptionKey(hex.EncodeToString(key))
	if err != nil {
		t.Fatalf("DecodeEncryptionKey: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Error("decoded hex key mismatch")
	}
}

func TestDecodeEncryptionKey_Base64(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	for _, s := range []string{
		base64.StdEncoding.EncodeToString(key),
		base64.RawURLEncoding.EncodeToString(key),
	} {
		got, err := DecodeEncryptionKey(s)
		if err != nil {
			t.Fatalf("DecodeEncryptionKey(%q): %v", s, err)
		}
		if !bytes.Equal(got, key) {
			t.Errorf("decoded key mismatch for %q", s)
		}
	}
}

func TestDecodeEncryptionKey_Raw(t *testing.T) {
	raw := strings.Repeat("k", 32)
	got, err := DecodeEncryptionKey(raw)
	if err != nil {
		t.Fatalf("DecodeEncryptionKey: %v", err)
	}
	if string(got) != raw {
		t.Error("raw key mismatch")
	}
}

func TestDecodeEncryptionKey_Invalid(t *testing.T) {
	for _, s := range []string{"", "short", strings.Repeat("x", 31)} {
		if _, err := DecodeEncryptionKey(s); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("DecodeEncryptionKey(%q): got %v, want ErrInvalidKey", s, err)
		}
	}
}
