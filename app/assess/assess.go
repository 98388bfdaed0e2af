// Package assess provides content-safety assessors for destination URLs.
// Remote calls an external assessment service over HTTP, Static applies a fixed local policy.
package assess

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
)

// Action suggested by the assessor
type Action string

// enum of all actions
const (
	ActionAllow   Action = "allow"
	ActionRewrite Action = "rewrite"
	ActionRefuse  Action = "refuse"
)

// Errors
var (
	ErrBadVerdict = errors.New("bad verdict")
	ErrRemote     = errors.New("remote assessor failed")
)

// Verdict of a single assessment
type Verdict struct {
	SafetyAssessment string `json:"safetyAssessment"`
	ContentSummary   string `json:"contentSummary"`
	SuggestedAction  Action `json:"suggestedAction"`
}

// Permits reports whether generation may proceed. Rewrite permits, content is used unchanged.
func (v Verdict) Permits() bool {
	return v.SuggestedAction == ActionAllow || v.SuggestedAction == ActionRewrite
}

func (v Verdict) validate() error {
	switch v.SuggestedAction {
	case ActionAllow, ActionRewrite, ActionRefuse:
		return nil
	}
	return fmt.Errorf("%w: unknown action %q", ErrBadVerdict, v.SuggestedAction)
}

// Remote posts {"destinationUrl": ...} to URL and expects a Verdict as JSON response
type Remote struct {
	URL    string
	Token  string // optional bearer token
	Client *http.Client
}

// maxResponse limits the verdict body read from the remote service
const maxResponse = 64 * 1024

// Assess asks the remote service about destination. The caller is responsible for timeout via ctx.
func (r *Remote) Assess(ctx context.Context, destination string) (Verdict, error) {
	body, err := json.Marshal(struct {
		DestinationURL string `json:"destinationUrl"`
	}{DestinationURL: destination})
	if err != nil {
		return Verdict{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("make request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}

	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("%w: status %d", ErrRemote, resp.StatusCode)
	}

	var v Verdict
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxResponse)).Decode(&v); err != nil {
		return Verdict{}, fmt.Errorf("%w: can't decode response: %v", ErrBadVerdict, err)
	}
	if err = v.validate(); err != nil {
		return Verdict{}, err
	}
	log.Printf("[DEBUG] assessed %s, action %s", hostOf(destination), v.SuggestedAction)
	return v, nil
}

// Static is a local policy: refuse hosts from Deny (and their subdomains), otherwise return Action
type Static struct {
	Action Action // allow if empty
	Deny   []string
}

// Assess applies the policy to destination
func (s Static) Assess(_ context.Context, destination string) (Verdict, error) {
	host := hostOf(destination)
	for _, d := range s.Deny {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return Verdict{
				SafetyAssessment: "destination host is on the deny list",
				ContentSummary:   host,
				SuggestedAction:  ActionRefuse,
			}, nil
		}
	}

	action := s.Action
	if action == "" {
		action = ActionAllow
	}
	v := Verdict{SafetyAssessment: "not assessed, local policy", ContentSummary: host, SuggestedAction: action}
	if err := v.validate(); err != nil {
		return Verdict{}, err
	}
	return v, nil
}

func hostOf(destination string) string {
	u, err := url.Parse(destination)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
