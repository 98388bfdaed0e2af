// Package sealer turns user content into sealed wire tokens and verifies them back.
// Generation composes a record, encrypts it with AES-GCM and signs the encrypted span with HMAC.
// Verification runs a fixed pipeline: classify, key check, decode, signature check, decrypt, parse.
// Every failure is a terminal *Error with a stable Kind. Keys are re-read from keys.Source on each call
// and never stored in Sealer.
package sealer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/qrseal/qrseal/app/assess"
	"github.com/qrseal/qrseal/app/crypt"
	"github.com/qrseal/qrseal/app/keys"
	"github.com/qrseal/qrseal/app/payload"
)

//go:generate moq -out crypter_mock.go -fmt goimports . Crypter
//go:generate moq -out signer_mock.go -fmt goimports . Signer
//go:generate moq -out assessor_mock.go -fmt goimports . Assessor
//go:generate moq -out resolver_mock.go -fmt goimports . Resolver

// Sealer generates and verifies sealed tokens
type Sealer struct {
	Params
	keys     keys.Source
	crypt    Crypter
	signer   Signer
	assessor Assessor
	resolver Resolver
}

// Params to customize sealer
type Params struct {
	AssessTimeout time.Duration
}

// Crypter wraps AEAD encryption
type Crypter interface {
	Encrypt(key keys.Key, plaintext []byte) (crypt.Sealed, error)
	Decrypt(key keys.Key, s crypt.Sealed) ([]byte, error)
}

// Signer wraps keyed signature of the signed span
type Signer interface {
	Sign(key keys.Key, span string) []byte
	Verify(key keys.Key, span, signature string) bool
}

// Assessor checks destination url before generation
type Assessor interface {
	Assess(ctx context.Context, destination string) (assess.Verdict, error)
}

// Resolver maps a short id to a stored token
type Resolver interface {
	Resolve(ctx context.Context, shortID string) (token string, err error)
}

// GenerateReq is a request to seal content
type GenerateReq struct {
	Content string
	Kind    payload.Kind
}

// Generated is a result of successful generation
type Generated struct {
	Record  payload.Record
	Token   string
	Verdict *assess.Verdict // nil for text kind
}

// Verification is a result of successful verification
type Verification struct {
	Record       payload.Record
	Token        string
	ResolvedFrom string // short id, if the token was looked up
}

// New makes Sealer. Assessor and resolver may be nil: url generation then fails with
// KindAssessmentFailed and short ids are always KindLookupUnresolved.
func New(src keys.Source, crypter Crypter, signer Signer, assessor Assessor, resolver Resolver, params Params) *Sealer {
	if params.AssessTimeout == 0 {
		params.AssessTimeout = 15 * time.Second
	}
	log.Printf("[INFO] created sealer with %+v, assessor %v, resolver %v", params, assessor != nil, resolver != nil)

	return &Sealer{
		Params:   params,
		keys:     src,
		crypt:    crypter,
		signer:   signer,
		assessor: assessor,
		resolver: resolver,
	}
}

// Ready reports whether keys are configured and valid
func (s *Sealer) Ready() error {
	if _, err := s.keys.Load(); err != nil {
		return fail(KindConfig, "keys are not configured", err)
	}
	return nil
}

// Generate seals content into a wire token. Nothing is persisted here.
func (s *Sealer) Generate(ctx context.Context, req GenerateReq) (*Generated, error) {
	ks, err := s.keys.Load()
	if err != nil {
		log.Printf("[ERROR] generation refused, %v", err)
		return nil, fail(KindConfig, "keys are not configured", err)
	}

	if strings.TrimSpace(req.Content) == "" {
		return nil, fail(KindInvalidInput, "content is empty", nil)
	}
	if _, err = payload.ParseKind(string(req.Kind)); err != nil {
		return nil, fail(KindInvalidInput, "bad content type", err)
	}

	var verdict *assess.Verdict
	if req.Kind == payload.KindURL {
		v, e := s.assess(ctx, req.Content)
		if e != nil {
			return nil, e
		}
		verdict = &v
	}

	rec := payload.Compose(req.Content, req.Kind)
	plain, err := rec.Marshal()
	if err != nil {
		return nil, fail(KindEncryptionFailed, "can't serialize record", err)
	}

	sealed, err := s.crypt.Encrypt(ks.Encryption, plain)
	if err != nil {
		log.Printf("[ERROR] can't encrypt record %s, %v", rec.ShortID, err)
		return nil, fail(KindEncryptionFailed, "can't encrypt record", err)
	}

	span := payload.SignedSpan(sealed.Nonce, sealed.Tag, sealed.Ciphertext)
	sig := s.signer.Sign(ks.Signing, span)
	token := payload.Encode(sealed.Nonce, sealed.Tag, sealed.Ciphertext, sig)

	log.Printf("[DEBUG] generated %s code %s", rec.Kind, rec.ShortID)
	return &Generated{Record: rec, Token: token, Verdict: verdict}, nil
}

// assess runs the assessor with timeout. Refusal and failure are both terminal.
func (s *Sealer) assess(ctx context.Context, destination string) (assess.Verdict, error) {
	if s.assessor == nil {
		return assess.Verdict{}, fail(KindAssessmentFailed, "no content assessor configured", nil)
	}

	actx, cancel := context.WithTimeout(ctx, s.AssessTimeout)
	defer cancel()

	v, err := s.assessor.Assess(actx, destination)
	if err != nil {
		if errors.Is(actx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			log.Printf("[WARN] assessment timed out after %v", s.AssessTimeout)
			return assess.Verdict{}, fail(KindAssessmentFailed, "assessment timed out", err)
		}
		log.Printf("[WARN] assessment failed, %v", err)
		return assess.Verdict{}, fail(KindAssessmentFailed, "assessment failed", err)
	}
	if !v.Permits() {
		log.Printf("[INFO] generation refused by assessor, %s", v.SafetyAssessment)
		return v, &Error{Kind: KindAssessmentRefused, Message: "destination refused: " + v.SafetyAssessment}
	}
	return v, nil
}

// Verify runs the verification pipeline over input, which is either a wire token or a short id.
// Steps never reorder and no step runs after a failed one.
func (s *Sealer) Verify(ctx context.Context, input string) (*Verification, error) {
	token, resolvedFrom := input, ""
	if payload.IsShortID(input) {
		t, err := s.resolve(ctx, input)
		if err != nil {
			return nil, err
		}
		token, resolvedFrom = t, input
	}

	ks, err := s.keys.Load()
	if err != nil {
		log.Printf("[ERROR] verification refused, %v", err)
		return nil, fail(KindConfig, "keys are not configured", err)
	}

	seg, err := payload.Decode(token)
	if err != nil {
		log.Printf("[DEBUG] rejected token, %v", err)
		return nil, fail(KindInvalidStructure, "not a valid sealed code", err)
	}

	sealed := crypt.Sealed{Nonce: seg.Nonce, Ciphertext: seg.Ciphertext, Tag: seg.AuthTag}

	if !s.signer.Verify(ks.Signing, seg.SignedSpan(), seg.SignatureText()) {
		e := &Error{Kind: KindTampered, Message: "signature mismatch, code was modified or forged"}
		// diagnostics only, the result stays tampered
		if plain, derr := s.crypt.Decrypt(ks.Encryption, sealed); derr == nil {
			e.ID, e.ShortID = payload.Peek(plain)
		}
		log.Printf("[WARN] tampered token, id=%q short=%q", e.ID, e.ShortID)
		return nil, e
	}

	plain, err := s.crypt.Decrypt(ks.Encryption, sealed)
	if err != nil {
		log.Printf("[WARN] can't decrypt signed token, %v", err)
		return nil, fail(KindDecryptionFailed, "can't decrypt code", err)
	}

	rec, err := payload.Unmarshal(plain)
	if err != nil {
		log.Printf("[WARN] decrypted content is malformed, %v", err)
		e := fail(KindMalformedContent, "decrypted content is not a valid record", err)
		e.Raw = plain
		return nil, e
	}

	log.Printf("[DEBUG] verified %s code %s", rec.Kind, rec.ShortID)
	return &Verification{Record: rec, Token: token, ResolvedFrom: resolvedFrom}, nil
}

func (s *Sealer) resolve(ctx context.Context, shortID string) (string, error) {
	unresolved := func(msg string, err error) error {
		e := fail(KindLookupUnresolved, msg, err)
		e.ShortID = shortID
		return e
	}

	if s.resolver == nil {
		return "", unresolved("short id lookup is not available", nil)
	}
	token, err := s.resolver.Resolve(ctx, shortID)
	if err != nil {
		log.Printf("[INFO] can't resolve short id %s, %v", shortID, err)
		return "", unresolved(fmt.Sprintf("can't resolve short id %s", shortID), err)
	}
	if payload.IsShortID(token) {
		return "", unresolved("resolver returned a short id", nil) // no recursive lookups
	}
	return token, nil
}
