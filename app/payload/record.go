// Package payload defines the canonical record sealed into a QR code and the
// wire format of the resulting token. Nothing here touches keys or ciphers.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind of the sealed content
type Kind string

// enum of all content kinds
const (
	KindURL  Kind = "url"
	KindText Kind = "text"
)

// ShortIDLen is the length of the human-shareable identifier
const ShortIDLen = 6

// Errors
var (
	ErrBadKind         = errors.New("unknown content kind")
	ErrMalformedRecord = errors.New("malformed record")
)

var shortIDRe = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// Record is the canonical plaintext of a single generated code.
// It is immutable; a new generation always gets a new ID.
type Record struct {
	Content   string    `json:"content"`
	Kind      Kind      `json:"type"`
	ID        uuid.UUID `json:"uuid"`
	ShortID   string    `json:"shortId"`
	CreatedAt int64     `json:"timestamp"` // epoch millis
}

// ParseKind converts string to Kind
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindURL, KindText:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrBadKind)
}

// Compose makes a new record with fresh id and current timestamp.
// Content is copied as-is, url shape is not checked here.
func Compose(content string, kind Kind) Record {
	return compose(content, kind, uuid.New(), time.Now())
}

func compose(content string, kind Kind, id uuid.UUID, now time.Time) Record {
	return Record{
		Content:   content,
		Kind:      kind,
		ID:        id,
		ShortID:   ShortIDOf(id),
		CreatedAt: now.UnixMilli(),
	}
}

// ShortIDOf returns the first 6 hex chars of id, upper-cased
func ShortIDOf(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:ShortIDLen])
}

// IsShortID checks if s has the short identifier shape
func IsShortID(s string) bool {
	return shortIDRe.MatchString(s)
}

// Created returns creation time
func (r Record) Created() time.Time {
	return time.UnixMilli(r.CreatedAt)
}

// Marshal serializes record to its canonical JSON form
func (r Record) Marshal() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return data, nil
}

// Unmarshal parses and validates canonical JSON form of the record
func Unmarshal(data []byte) (Record, error) {
	var res struct {
		Content   *string `json:"content"`
		Kind      Kind    `json:"type"`
		ID        string  `json:"uuid"`
		ShortID   string  `json:"shortId"`
		CreatedAt int64   `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if res.Content == nil {
		return Record{}, fmt.Errorf("%w: no content", ErrMalformedRecord)
	}
	if _, err := ParseKind(string(res.Kind)); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	id, err := uuid.Parse(res.ID)
	if err != nil {
		return Record{}, fmt.Errorf("%w: bad uuid: %v", ErrMalformedRecord, err)
	}
	if res.ShortID != ShortIDOf(id) {
		return Record{}, fmt.Errorf("%w: short id %q does not match uuid", ErrMalformedRecord, res.ShortID)
	}

	return Record{Content: *res.Content, Kind: res.Kind, ID: id, ShortID: res.ShortID, CreatedAt: res.CreatedAt}, nil
}

// Peek extracts uuid and shortId from decrypted bytes without validating the record.
// Returns empty strings if data is not a JSON object.
func Peek(data []byte) (id, shortID string) {
	var res struct {
		ID      string `json:"uuid"`
		ShortID string `json:"shortId"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return "", ""
	}
	return res.ID, res.ShortID
}
