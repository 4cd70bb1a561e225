package security

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrInvalidKey is returned when a configured key cannot be decoded to the required length.
var ErrInvalidKey = errors.New("invalid key")

// aesKeyLen is the required AES-256 key length in bytes.
const aesKeyLen = 32

// DecodeEncryptionKey decodes the token encryption key from config. s may be
// 64 hex characters, standard or URL-safe base64 of 32 bytes, or the raw
// 32-byte string itself.
func DecodeEncryptionKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidKey
	}
	if len(s) == hex.EncodedLen(aesKeyLen) {
		if b, err := hex.DecodeString(s); err == nil {
			return b, nil
		}
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(s); err == nil && len(b) == aesKeyLen {
			return b, nil
		}
	}
	if len(s) == aesKeyLen {
		return []byte(s), nil
	}
	return nil, ErrInvalidKey
}
