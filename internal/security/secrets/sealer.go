// Package secrets seals secret provider properties before they reach the database.
package secrets

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// sealedPrefix marks a sealed value; the suffix is base64(nonce || ciphertext).
const sealedPrefix = "sealed:v1:"

var (
	ErrInvalidKey     = errors.New("secrets: invalid encryption key")
	ErrInvalidPayload = errors.New("secrets: invalid sealed payload")
	ErrDecryption     = errors.New("secrets: decryption failed")
)

// Sealer encrypts and decrypts single string values.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a 256-bit XChaCha20-Poly1305 key from any non-empty string.
func NewSealer(key string) (*Sealer, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrInvalidKey
	}
	sum := sha256.Sum256([]byte(key))
	aead, err := chacha20poly1305.NewX(sum[:])
	if err != nil {
		return nil, fmt.Errorf("init xchacha20-poly1305: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext with a fresh random nonce.
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	encoded, ok := strings.CutPrefix(sealed, sealedPrefix)
	if !ok {
		return "", ErrInvalidPayload
	}
	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil || len(raw) < s.aead.NonceSize()+s.aead.Overhead() {
		return "", ErrInvalidPayload
	}
	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plaintext), nil
}

// IsSealed reports whether v looks like a sealed value.
func IsSealed(v string) bool {
	return strings.HasPrefix(v, sealedPrefix)
}

// SecretKeyResolver returns the secret property keys of a provider class.
type SecretKeyResolver interface {
	SecretKeys(providerClass string) []string
}

// PropertyCodec seals and opens the secret properties of a config.
type PropertyCodec struct {
	sealer  *Sealer
	secrets SecretKeyResolver
}

// NewPropertyCodec builds a codec.
func NewPropertyCodec(sealer *Sealer, secrets SecretKeyResolver) *PropertyCodec {
	return &PropertyCodec{sealer: sealer, secrets: secrets}
}

// Encode returns a copy of props with non-empty secret values sealed.
// props holds plaintext, so a value that merely looks sealed is sealed too.
func (c *PropertyCodec) Encode(providerClass string, props map[string]string) (map[string]string, error) {
	out := maps.Clone(props)
	if out == nil {
		out = map[string]string{}
	}
	for _, key := range c.secrets.SecretKeys(providerClass) {
		v := out[key]
		if v == "" {
			continue
		}
		sealed, err := c.sealer.Seal(v)
		if err != nil {
			return nil, fmt.Errorf("seal property %s: %w", key, err)
		}
		out[key] = sealed
	}
	return out, nil
}

// Decode returns a copy of stored with the secret values opened. Properties
// that are not secret are returned as stored.
func (c *PropertyCodec) Decode(providerClass string, stored map[string]string) (map[string]string, error) {
	out := maps.Clone(stored)
	if out == nil {
		out = map[string]string{}
	}
	for _, key := range c.secrets.SecretKeys(providerClass) {
		v := out[key]
		if !IsSealed(v) {
			continue
		}
		plain, err := c.sealer.Open(v)
		if err != nil {
			return nil, fmt.Errorf("open property %s of %s: %w", key, providerClass, err)
		}
		out[key] = plain
	}
	return out, nil
}
