package auth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

const tokenBytes = 32 // 256 bits of entropy

type tokenEntry struct {
	userID    int64
	expiresAt time.Time
}

// TokenManager issues and resolves opaque bearer tokens held in process
// memory. Tokens expire after the configured TTL; expired entries are
// dropped lazily on lookup.
type TokenManager struct {
	mu     sync.Mutex
	tokens map[string]tokenEntry
	ttl    time.Duration
}

// NewTokenManager creates a token manager with the given token lifetime.
func NewTokenManager(ttl time.Duration) *TokenManager {
	return &TokenManager{
		tokens: make(map[string]tokenEntry),
		ttl:    ttl,
	}
}

// Issue creates a new bearer token for the user.
func (m *TokenManager) Issue(userID int64) (string, error) {
	token, err := generateSecureToken(tokenBytes)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = tokenEntry{userID: userID, expiresAt: time.Now().Add(m.ttl)}
	return token, nil
}

// Resolve returns the user id a live token belongs to.
func (m *TokenManager) Resolve(token string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.tokens[token]
	if !ok {
		return 0, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.tokens, token)
		return 0, false
	}
	return entry.userID, true
}

// Revoke invalidates a token. Revoking an unknown token is a no-op.
func (m *TokenManager) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
}

// RevokeUser invalidates every token issued to the user.
func (m *TokenManager) RevokeUser(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, entry := range m.tokens {
		if entry.userID == userID {
			delete(m.tokens, token)
		}
	}
}

// generateSecureToken generates a cryptographically secure random token.
func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
