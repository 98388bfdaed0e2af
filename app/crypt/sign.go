package crypt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/qrseal/qrseal/app/keys"
)

// HMAC signs text with HMAC-SHA256
type HMAC struct{}

// Sign returns raw 32-byte mac of span
func (HMAC) Sign(key keys.Key, span string) []byte {
	mac := hmac.New(sha256.New, key.Bytes())
	mac.Write([]byte(span))
	return mac.Sum(nil)
}

// Verify recomputes the mac of span and compares its base64 form with signature in constant time.
// Comparing the text, not decoded bytes, rejects any non-canonical encoding of the signature.
func (h HMAC) Verify(key keys.Key, span, signature string) bool {
	if !key.Valid() {
		return false
	}
	expected := base64.StdEncoding.EncodeToString(h.Sign(key, span))
	return hmac.Equal([]byte(expected), []byte(signature))
}
