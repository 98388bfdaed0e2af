package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// helper to generate bcrypt hash for testing
func testBcryptHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestServer_parseUsers(t *testing.T) {
	hash := testBcryptHash(t, "secret123")

	t.Run("valid users", func(t *testing.T) {
		users, err := parseUsers([]string{"alice:" + hash, " bob:" + hash + " "})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"alice": hash, "bob": hash}, users)
	})

	t.Run("empty list", func(t *testing.T) {
		users, err := parseUsers(nil)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	tbl := []struct {
		name string
		pair string
	}{
		{"no separator", "alice"},
		{"no name", ":" + hash},
		{"no hash", "alice:"},
		{"plain password", "alice:secret123"},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseUsers([]string{tt.pair})
			assert.Error(t, err)
		})
	}
}

func TestServer_checkBasicAuth(t *testing.T) {
	srv, err := New(nil, nil, nil, nil, Config{IPSalt: "s", Users: []string{"alice:" + testBcryptHash(t, "secret123")}})
	require.NoError(t, err)

	tbl := []struct {
		name     string
		user     string
		password string
		noAuth   bool
		owner    string
		ok       bool
	}{
		{name: "valid credentials", user: "alice", password: "secret123", owner: "alice", ok: true},
		{name: "wrong password", user: "alice", password: "wrong"},
		{name: "unknown user", user: "bob", password: "secret123"},
		{name: "empty password", user: "alice", password: ""},
		{name: "no auth header", noAuth: true},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if !tt.noAuth {
				req.SetBasicAuth(tt.user, tt.password)
			}
			owner, ok := srv.checkBasicAuth(req)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.owner, owner)
		})
	}
}

func TestServer_authMiddleware(t *testing.T) {
	srv, err := New(nil, nil, nil, nil, Config{IPSalt: "s", Users: []string{"alice:" + testBcryptHash(t, "secret123")}})
	require.NoError(t, err)

	var gotOwner string
	h := srv.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner = getOwner(r)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("authorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/codes", http.NoBody)
		req.SetBasicAuth("alice", "secret123")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "alice", gotOwner)
	})

	t.Run("unauthorized", func(t *testing.T) {
		gotOwner = ""
		req := httptest.NewRequest(http.MethodGet, "/api/v1/codes", http.NoBody)
		req.SetBasicAuth("alice", "bad")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Header().Get("WWW-Authenticate"), `Basic realm="qrseal"`)
		assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error":"unauthorized","message":"authorization required"}`, rr.Body.String())
		assert.Empty(t, gotOwner)
	})
}

func TestServer_getOwner(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	assert.Empty(t, getOwner(req))
}
