// Package store keeps generated codes and the verification log in SQLite.
// It stores sealed tokens only and never sees the plaintext content of a code.
package store

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotFound     = errors.New("code not found")
	ErrAmbiguous    = errors.New("short id matches more than one code")
	ErrSaveRejected = errors.New("can't save code")
	ErrLoadRejected = errors.New("can't load code")
)

// Status of a saved code
type Status string

// enum of code statuses
const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Code is a saved, sealed code owned by a user
type Code struct {
	ID        string    `json:"uuid"`
	ShortID   string    `json:"shortId"`
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	Kind      string    `json:"type"`
	Token     string    `json:"token"`
	Status    Status    `json:"status"`
	Scans     int       `json:"scans"`
	CreatedAt time.Time `json:"createdAt"`
}

// VerificationEvent is a single verification attempt, successful or not
type VerificationEvent struct {
	ID        int64     `json:"id"`
	CodeID    string    `json:"uuid,omitempty"`
	ShortID   string    `json:"shortId,omitempty"`
	Outcome   string    `json:"outcome"` // "success" or an error kind
	Client    string    `json:"client"`  // hashed client ip
	CreatedAt time.Time `json:"createdAt"`
}
