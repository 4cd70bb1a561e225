package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, tampered with,
	// or expired. Every validation failure collapses into this single error
	// so callers cannot distinguish the cause.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// SessionClaims holds the JWT claims carried by a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// TokenCodec issues and validates double-wrapped session tokens: the claims
// are signed into an HS256 JWT, then the compact JWT is encrypted with
// AES-256-GCM before leaving the server. The signature gives integrity and
// expiry; the outer encryption hides the claim structure from token holders
// and adds a second key that must be compromised.
type TokenCodec struct {
	signingKey []byte
	aead       cipher.AEAD
	ttl        time.Duration
}

// NewTokenCodec returns a TokenCodec that signs with signingKey and encrypts
// with the 32-byte encryptionKey. ttl is the token lifetime from issuance.
func NewTokenCodec(signingKey, encryptionKey []byte, ttl time.Duration) (*TokenCodec, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("security: signing key is required")
	}
	if len(encryptionKey) != aesKeyLen {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	return &TokenCodec{signingKey: signingKey, aead: aead, ttl: ttl}, nil
}

// Issue signs claims for the given user and role, encrypts the signed token,
// and returns the opaque token string and its expiry time.
func (c *TokenCodec) Issue(userID, role string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(c.ttl)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Role:   role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
	if err != nil {
		return "", time.Time{}, err
	}
	sealed, err := c.seal([]byte(signed))
	if err != nil {
		return "", time.Time{}, err
	}
	return sealed, expiresAt, nil
}

// Validate decrypts the opaque token, then verifies the inner signature and
// expiry. Returns the userID and role, or ErrInvalidToken for any failure:
// garbled ciphertext, bad signature, expired token, or malformed claims.
func (c *TokenCodec) Validate(opaque string) (userID, role string, err error) {
	plaintext, err := c.open(opaque)
	if err != nil || len(plaintext) == 0 {
		return "", "", ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(string(plaintext), &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.signingKey, nil
	})
	if err != nil {
		return "", "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.UserID == "" || claims.Role == "" {
		return "", "", ErrInvalidToken
	}
	return claims.UserID, claims.Role, nil
}

// seal encrypts plaintext with a fresh nonce and returns
// base64url(nonce || ciphertext).
func (c *TokenCodec) seal(plaintext []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *TokenCodec) open(opaque string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(opaque)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if len(raw) < c.aead.NonceSize() {
		return nil, ErrInvalidToken
	}
	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return plaintext, nil
}
