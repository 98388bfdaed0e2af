package payload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Delimiter separates token segments
const Delimiter = "$"

// ErrFormat returned for any token which is not 4 non-empty base64 segments
var ErrFormat = errors.New("invalid token format")

// token format: base64(nonce)$base64(authTag)$base64(ciphertext)$base64(signature)
// signature covers the exact text "nonce$authTag$ciphertext" as it appears in the token
const segmentsCount = 4

var enc = base64.StdEncoding

// Segments is a decoded wire token. It keeps the received text of the signed span
// and of the signature, so the signature can be checked against exactly what was sent.
type Segments struct {
	Nonce      []byte
	AuthTag    []byte
	Ciphertext []byte
	Signature  []byte

	span string
	sig  string
}

// SignedSpan returns the received "nonce$authTag$ciphertext" text, byte for byte
func (s Segments) SignedSpan() string { return s.span }

// SignatureText returns the received base64 signature segment
func (s Segments) SignatureText() string { return s.sig }

// SignedSpan builds the signed span for the encode direction
func SignedSpan(nonce, authTag, ciphertext []byte) string {
	return enc.EncodeToString(nonce) + Delimiter + enc.EncodeToString(authTag) + Delimiter + enc.EncodeToString(ciphertext)
}

// Encode makes the wire token. Each value is base64 encoded independently and joined with "$".
func Encode(nonce, authTag, ciphertext, signature []byte) string {
	return SignedSpan(nonce, authTag, ciphertext) + Delimiter + enc.EncodeToString(signature)
}

// Decode splits token into exactly 4 non-empty segments and decodes them.
// No trimming or other normalization is done.
func Decode(token string) (Segments, error) {
	parts := strings.Split(token, Delimiter)
	if len(parts) != segmentsCount {
		return Segments{}, fmt.Errorf("%w: expected %d segments, got %d", ErrFormat, segmentsCount, len(parts))
	}

	decoded := make([][]byte, segmentsCount)
	for i, p := range parts {
		if p == "" {
			return Segments{}, fmt.Errorf("%w: segment %d is empty", ErrFormat, i)
		}
		b, err := enc.DecodeString(p)
		if err != nil {
			return Segments{}, fmt.Errorf("%w: segment %d: %v", ErrFormat, i, err)
		}
		decoded[i] = b
	}

	return Segments{
		Nonce:      decoded[0],
		AuthTag:    decoded[1],
		Ciphertext: decoded[2],
		Signature:  decoded[3],
		span:       token[:strings.LastIndex(token, Delimiter)],
		sig:        parts[3],
	}, nil
}
