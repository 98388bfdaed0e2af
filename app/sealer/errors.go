package sealer

import (
	"errors"
	"fmt"
)

// Kind is a stable, machine-readable error kind
type Kind string

// enum of all error kinds reported by Sealer
const (
	KindConfig            Kind = "config_error"
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidStructure  Kind = "invalid_structure"
	KindTampered          Kind = "tampered"
	KindDecryptionFailed  Kind = "decryption_failed"
	KindMalformedContent  Kind = "malformed_content"
	KindLookupUnresolved  Kind = "lookup_unresolved"
	KindAssessmentRefused Kind = "assessment_refused"
	KindAssessmentFailed  Kind = "assessment_failed"
	KindEncryptionFailed  Kind = "encryption_failed"
)

// Error is a terminal failure of generation or verification.
// ID and ShortID are diagnostics only, filled for tampered tokens when the payload could still be read,
// and for unresolved lookups. Raw holds decrypted bytes of malformed content.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	ID      string
	ShortID string
	Raw     []byte
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns kind of err, empty if err is not (and does not wrap) *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func fail(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}
