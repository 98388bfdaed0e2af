// Package crypt provides AES-256-GCM encryption and HMAC-SHA256 signing used to seal payloads.
// Both operate on keys.Key handles and never see the base64 form of keys.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/qrseal/qrseal/app/keys"
)

// GCM parameters
const (
	NonceSize = 12
	TagSize   = 16
)

// Errors
var (
	ErrEncrypt = errors.New("encryption failed")
	ErrDecrypt = errors.New("decryption failed")
)

// Sealed is the output of AES-GCM with the auth tag detached from the ciphertext
type Sealed struct {
	Nonce      []byte
	Ciphertext []byte
	Tag        []byte
}

// AESGCM encrypts with AES-256-GCM and a random 96-bit nonce per call
type AESGCM struct {
	Rand io.Reader // crypto/rand.Reader if nil
}

// Encrypt seals plaintext with a fresh nonce
func (a AESGCM) Encrypt(key keys.Key, plaintext []byte) (Sealed, error) {
	aead, err := a.aead(key)
	if err != nil {
		return Sealed{}, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	rnd := a.Rand
	if rnd == nil {
		rnd = rand.Reader
	}
	nonce := make([]byte, NonceSize)
	if _, err = io.ReadFull(rnd, nonce); err != nil {
		return Sealed{}, fmt.Errorf("%w: could not read from random: %v", ErrEncrypt, err)
	}

	out := aead.Seal(nil, nonce, plaintext, nil) // ciphertext || tag
	split := len(out) - TagSize
	return Sealed{Nonce: nonce, Ciphertext: out[:split], Tag: out[split:]}, nil
}

// Decrypt opens sealed data. Any wrong key, nonce, tag or ciphertext gives ErrDecrypt.
func (a AESGCM) Decrypt(key keys.Key, s Sealed) ([]byte, error) {
	if len(s.Nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce size %d", ErrDecrypt, len(s.Nonce))
	}
	if len(s.Tag) != TagSize {
		return nil, fmt.Errorf("%w: tag size %d", ErrDecrypt, len(s.Tag))
	}

	aead, err := a.aead(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	buf := make([]byte, 0, len(s.Ciphertext)+TagSize)
	buf = append(buf, s.Ciphertext...)
	buf = append(buf, s.Tag...)
	res, err := aead.Open(nil, s.Nonce, buf, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return res, nil
}

func (a AESGCM) aead(key keys.Key) (cipher.AEAD, error) {
	if !key.Valid() {
		return nil, errors.New("key not loaded")
	}
	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
