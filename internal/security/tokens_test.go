package security

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTestTokenCodec(t, 7*24*time.Hour)
	token, expiresAt, err := codec.Issue("user-1", "Member")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}
	if until := time.Until(expiresAt); until < 6*24*time.Hour || until > 7*24*time.Hour {
		t.Errorf("expiry %v not ~7 days out", expiresAt)
	}
	userID, role, err := codec.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if userID != "user-1" || role != "Member" {
		t.Errorf("claims = (%q, %q), want (user-1, Member)", userID, role)
	}
}

func TestTokenCodec_OpaqueOutput(t *testing.T) {
	codec := NewTestTokenCodec(t, time.Hour)
	token, _, err := codec.Issue("user-1", "Admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	// The encrypted token must not look like a bare JWT.
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not base64url: %v", err)
	}
	if string(raw[:3]) == "eyJ" {
		t.Error("token payload appears to be an unencrypted JWT")
	}
}

func TestTokenCodec_TamperedByte(t *testing.T) {
	codec := NewTestTokenCodec(t, time.Hour)
	token, _, err := codec.Issue("user-1", "Member")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	raw, _ := base64.RawURLEncoding.DecodeString(token)
	for _, i := range []int{0, len(raw) / 2, len(raw) - 1} {
		flipped := append([]byte(nil), raw...)
		flipped[i] ^= 0x01
		_, _, err := codec.Validate(base64.RawURLEncoding.EncodeToString(flipped))
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate with byte %d flipped: got %v, want ErrInvalidToken", i, err)
		}
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	codec := NewTestTokenCodec(t, time.Nanosecond)
	token, _, err := codec.Issue("user-1", "Member")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, _, err := codec.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate expired token: got %v, want ErrInvalidToken", err)
	}
}

func TestTokenCodec_WrongKeys(t *testing.T) {
	issuer := NewTestTokenCodec(t, time.Hour)
	verifier := NewTestTokenCodec(t, time.Hour)
	token, _, err := issuer.Issue("user-1", "Member")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := verifier.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate with different keys: got %v, want ErrInvalidToken", err)
	}
}

func TestTokenCodec_Garbage(t *testing.T) {
	codec := NewTestTokenCodec(t, time.Hour)
	for _, tok := range []string{"", "not-a-token", "!!!", "AAAA"} {
		if _, _, err := codec.Validate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate(%q): got %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestNewTokenCodec_BadKeys(t *testing.T) {
	if _, err := NewTokenCodec(nil, make([]byte, 32), time.Hour); err == nil {
		t.Error("empty signing key should fail")
	}
	if _, err := NewTokenCodec([]byte("secret"), make([]byte, 16), time.Hour); err == nil {
		t.Error("16-byte encryption key should fail for AES-256")
	}
}
