// Package auth is the admin credential gate: one configured email/password
// pair, opaque bearer tokens, nothing resembling a user model.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

type Gate struct {
	email    string
	password string
	ttl      time.Duration

	mu     sync.Mutex
	tokens map[string]time.Time // token -> expiry
}

func NewGate(email, password string, ttl time.Duration) *Gate {
	return &Gate{
		email:    strings.ToLower(strings.TrimSpace(email)),
		password: password,
		ttl:      ttl,
		tokens:   make(map[string]time.Time),
	}
}

// Enabled reports whether credentials are configured at all. A gate without
// credentials rejects every login.
func (g *Gate) Enabled() bool {
	return g.email != "" && g.password != ""
}

// Login checks the pair (email case-insensitive and trimmed, password exact)
// and issues a session token on success.
func (g *Gate) Login(email, password string) (string, bool) {
	if !g.Enabled() {
		return "", false
	}

	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(email))), []byte(g.email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
	if !emailOK || !passOK {
		return "", false
	}

	token := newToken()
	g.mu.Lock()
	g.tokens[token] = time.Now().Add(g.ttl)
	g.mu.Unlock()
	return token, true
}

func (g *Gate) Logout(token string) {
	g.mu.Lock()
	delete(g.tokens, token)
	g.mu.Unlock()
}

func (g *Gate) Valid(token string) bool {
	if token == "" {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	expiry, ok := g.tokens[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(g.tokens, token)
		return false
	}
	return true
}

func newToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is unrecoverable for a login
		panic(err)
	}
	return hex.EncodeToString(b)
}
