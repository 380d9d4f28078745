package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shoukanhq/shoukan-server-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeAccounts struct {
	accounts map[string]*repository.Account
}

func (f *fakeAccounts) Find(_ context.Context, userID string) (*repository.Account, error) {
	acc, ok := f.accounts[userID]
	if !ok {
		return nil, fmt.Errorf("account %s not found", userID)
	}
	return acc, nil
}

func newFakeAccounts(t *testing.T) *fakeAccounts {
	t.Helper()
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	return &fakeAccounts{accounts: map[string]*repository.Account{
		"alice": {UserID: "alice", Name: "Alice", PasswordHash: hash},
	}}
}

func TestAuthenticateIssuesToken(t *testing.T) {
	m := NewSessionManager(newFakeAccounts(t), time.Hour, zaptest.NewLogger(t))

	sess, err := m.Authenticate(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "alice", sess.UserID)
	assert.Equal(t, "Alice", sess.Name)

	got, ok := m.Get(sess.Token)
	require.True(t, ok)
	assert.Same(t, sess, got)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	m := NewSessionManager(newFakeAccounts(t), time.Hour, zaptest.NewLogger(t))

	_, err := m.Authenticate(context.Background(), "alice", "wrong")
	assert.Error(t, err)

	_, err = m.Authenticate(context.Background(), "mallory", "hunter2")
	assert.Error(t, err)
}

func TestGetRejectsExpiredSession(t *testing.T) {
	m := NewSessionManager(newFakeAccounts(t), time.Hour, zaptest.NewLogger(t))
	sess, err := m.Authenticate(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	sess.ExpiresAt = time.Now().Add(-time.Second)
	_, ok := m.Get(sess.Token)
	assert.False(t, ok)

	_, ok = m.Get("no-such-token")
	assert.False(t, ok)
}

func TestCloseAllDropsSessions(t *testing.T) {
	m := NewSessionManager(newFakeAccounts(t), time.Hour, zaptest.NewLogger(t))
	sess, err := m.Authenticate(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	m.CloseAll()
	_, ok := m.Get(sess.Token)
	assert.False(t, ok)
}
