// Package keys loads and validates the two symmetric keys used to seal payloads.
// Keys come from process configuration as base64 strings and are exposed as opaque
// handles which never print their value. A missing, placeholder or malformed key
// fails closed with ErrNotConfigured or ErrMalformed.
package keys

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Size is the required length of a decoded key, in bytes
const Size = 32

// Errors
var (
	ErrNotConfigured = errors.New("key not configured")
	ErrMalformed     = errors.New("key malformed")
)

// placeholders are example values shipped in sample configs, treated as "not configured"
var placeholders = []string{
	"your_strong_base64_encoded_aes_256_key_here",
	"your_strong_base64_encoded_hmac_secret_key_here",
	"changeme",
	"change_me",
	"change-me",
	"placeholder",
	"secret",
	"example",
}

// Key is an opaque 256-bit secret
type Key struct {
	raw [Size]byte
	ok  bool
}

// Bytes returns a copy of the key material
func (k Key) Bytes() []byte {
	res := make([]byte, Size)
	copy(res, k.raw[:])
	return res
}

// Valid reports whether the key was loaded
func (k Key) Valid() bool { return k.ok }

// String hides the key from logs and error messages
func (k Key) String() string { return "[REDACTED]" }

// GoString hides the key from %#v
func (k Key) GoString() string { return "[REDACTED]" }

// Set holds both keys. They are independent and never derived from each other.
type Set struct {
	Encryption Key
	Signing    Key
}

// Source provides keys on demand
type Source interface {
	Load() (Set, error)
}

// Config is a Source backed by base64-encoded values from flags or env
type Config struct {
	EncryptionKey string
	SigningKey    string
}

// Load validates and decodes both keys
func (c Config) Load() (Set, error) {
	return Load(c.EncryptionKey, c.SigningKey)
}

// Load decodes and validates the encryption and signing keys
func Load(encryptionKey, signingKey string) (Set, error) {
	enc, err := parse(encryptionKey)
	if err != nil {
		return Set{}, fmt.Errorf("encryption key: %w", err)
	}
	sign, err := parse(signingKey)
	if err != nil {
		return Set{}, fmt.Errorf("signing key: %w", err)
	}
	if subtle.ConstantTimeCompare(enc.raw[:], sign.raw[:]) == 1 {
		return Set{}, fmt.Errorf("encryption and signing keys must differ: %w", ErrMalformed)
	}
	return Set{Encryption: enc, Signing: sign}, nil
}

// Generate makes a fresh random key in its transport (base64) encoding
func Generate() (string, error) {
	buf := make([]byte, Size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not read from random: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

func parse(val string) (Key, error) {
	val = strings.TrimSpace(val)
	if val == "" || isPlaceholder(val) {
		return Key{}, ErrNotConfigured
	}

	decoded, err := base64.StdEncoding.DecodeString(val)
	if err != nil {
		return Key{}, fmt.Errorf("not valid base64: %w", ErrMalformed)
	}
	if len(decoded) != Size {
		return Key{}, fmt.Errorf("want %d bytes, got %d: %w", Size, len(decoded), ErrMalformed)
	}

	zero := make([]byte, Size)
	if subtle.ConstantTimeCompare(decoded, zero) == 1 {
		return Key{}, ErrNotConfigured // all-zero key is a template value
	}

	res := Key{ok: true}
	copy(res.raw[:], decoded)
	return res, nil
}

func isPlaceholder(val string) bool {
	lv := strings.ToLower(val)
	if strings.HasPrefix(lv, "your_") || strings.HasPrefix(lv, "<") {
		return true
	}
	for _, p := range placeholders {
		if lv == p {
			return true
		}
	}
	return false
}
