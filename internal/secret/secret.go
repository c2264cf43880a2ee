// Package secret encrypts short free-text fields at rest with Fernet tokens.
package secret

import (
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

// ErrInvalidToken is returned when a token fails verification with every known key.
var ErrInvalidToken = errors.New("invalid or tampered token")

// Box seals and opens strings. A nil *Box passes values through unchanged, so callers
// can run without a configured key.
type Box struct {
	keys []*fernet.Key
}

// NewBox builds a Box from base64 encoded Fernet keys. The first key encrypts; all of
// them are tried when decrypting. With no keys NewBox returns nil.
func NewBox(encodedKeys ...string) (*Box, error) {
	var keys []*fernet.Key
	for _, k := range encodedKeys {
		if k == "" {
			continue
		}
		key, err := fernet.DecodeKey(k)
		if err != nil {
			return nil, fmt.Errorf("failed to decode fernet key: %w", err)
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	return &Box{keys: keys}, nil
}

// GenerateKey returns a new random key in its encoded form.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", fmt.Errorf("failed to generate fernet key: %w", err)
	}
	return k.Encode(), nil
}

// Seal encrypts plain. Empty strings stay empty.
func (b *Box) Seal(plain string) (string, error) {
	if b == nil || plain == "" {
		return plain, nil
	}
	tok, err := fernet.EncryptAndSign([]byte(plain), b.keys[0])
	if err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}
	return string(tok), nil
}

// Open decrypts a token produced by Seal.
func (b *Box) Open(token string) (string, error) {
	if b == nil || token == "" {
		return token, nil
	}
	msg := fernet.VerifyAndDecrypt([]byte(token), 0, b.keys)
	if msg == nil {
		return "", ErrInvalidToken
	}
	return string(msg), nil
}
