package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"golang.org/x/crypto/bcrypt"
)

const ownerKey ctxKey = "owner"

// dummyHash is compared against when the user is unknown, so both branches cost one bcrypt check
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// parseUsers makes user->bcrypt hash map from "name:hash" pairs
func parseUsers(pairs []string) (map[string]string, error) {
	res := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, hash, ok := strings.Cut(strings.TrimSpace(p), ":")
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("invalid user %q, expected name:bcrypt-hash", p)
		}
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("invalid bcrypt hash for user %q: %w", name, err)
		}
		res[name] = hash
	}
	return res, nil
}

// checkBasicAuth validates basic auth credentials and returns the authenticated owner
func (s *Server) checkBasicAuth(r *http.Request) (string, bool) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return "", false
	}

	hash := dummyHash
	known := 0
	for name, h := range s.users {
		if subtle.ConstantTimeCompare([]byte(username), []byte(name)) == 1 {
			hash, known = []byte(h), 1
		}
	}

	// bcrypt check runs for unknown users too
	passwordCorrect := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
	if known == 0 || !passwordCorrect {
		return "", false
	}
	return username, true
}

// authMiddleware requires basic auth and puts the owner to request context
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, ok := s.checkBasicAuth(r)
		if !ok {
			log.Printf("[WARN] unauthorized request to %s from %s", r.URL.Path, GetHashedIP(r))
			w.Header().Set("WWW-Authenticate", `Basic realm="qrseal", charset="UTF-8"`)
			_ = rest.EncodeJSON(w, http.StatusUnauthorized, rest.JSON{"error": "unauthorized", "message": "authorization required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey, owner)))
	})
}

// getOwner returns authenticated owner from request context
func getOwner(r *http.Request) string {
	if owner, ok := r.Context().Value(ownerKey).(string); ok {
		return owner
	}
	return ""
}
