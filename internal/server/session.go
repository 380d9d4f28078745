// Package server hosts the websocket gateway that feeds player actions into
// the engine and pushes renders and hand views back out.
package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shoukanhq/shoukan-server-go/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AccountFinder resolves a player account for authentication.
type AccountFinder interface {
	Find(ctx context.Context, userID string) (*repository.Account, error)
}

// Session is one authenticated gateway connection lease.
type Session struct {
	Token     string
	UserID    string
	Name      string
	ExpiresAt time.Time
}

// Expired reports whether the lease has lapsed.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SessionManager authenticates players against their stored bcrypt hash and
// issues opaque session tokens.
type SessionManager struct {
	logger   *zap.Logger
	accounts AccountFinder
	ttl      time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates the session store.
func NewSessionManager(accounts AccountFinder, ttl time.Duration, logger *zap.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		logger:   logger,
		accounts: accounts,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Authenticate verifies a player's password and issues a session token.
func (m *SessionManager) Authenticate(ctx context.Context, userID, password string) (*Session, error) {
	acc, err := m.accounts.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("authenticate %s: %w", userID, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("authenticate %s: invalid credentials", userID)
	}

	sess := &Session{
		Token:     uuid.NewString(),
		UserID:    acc.UserID,
		Name:      acc.Name,
		ExpiresAt: time.Now().Add(m.ttl),
	}
	m.mu.Lock()
	m.sessions[sess.Token] = sess
	m.mu.Unlock()

	m.logger.Debug("session issued", zap.String("user_id", acc.UserID))
	return sess, nil
}

// Get resolves a token to its session, if still valid.
func (m *SessionManager) Get(token string) (*Session, bool) {
	m.mu.RLock()
	sess, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok || sess.Expired() {
		return nil, false
	}
	return sess, true
}

// CleanupExpired periodically drops lapsed sessions until ctx is cancelled.
func (m *SessionManager) CleanupExpired(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			for token, sess := range m.sessions {
				if sess.Expired() {
					delete(m.sessions, token)
				}
			}
			m.mu.Unlock()
		}
	}
}

// CloseAll drops every session, used during shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*Session)
}

// HashPassword produces a bcrypt hash for account provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
