package game

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shoukanhq/shoukan-server-go/internal/game/card"
	"github.com/shoukanhq/shoukan-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeDecks serves decks from a map; absent players fail to load.
type fakeDecks struct {
	decks map[string][]card.Template
}

func (f *fakeDecks) Deck(_ context.Context, userID string) ([]card.Template, error) {
	deck, ok := f.decks[userID]
	if !ok {
		return nil, fmt.Errorf("player %s has no active deck", userID)
	}
	return deck, nil
}

// fakeRegistry is an in-memory MatchRegistry that records its claims.
type fakeRegistry struct {
	mu     sync.Mutex
	active map[string]string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{active: make(map[string]string)}
}

func (r *fakeRegistry) Acquire(_ context.Context, userID, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[userID]; ok {
		return fmt.Errorf("player %s already has an active match", userID)
	}
	r.active[userID] = matchID
	return nil
}

func (r *fakeRegistry) Release(_ context.Context, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, userID)
}

func (r *fakeRegistry) claimed(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[userID]
	return ok
}

func newTestEngine(t *testing.T, registry MatchRegistry) *ShoukanEngine {
	t.Helper()
	deck := uniformDeck(30, vanillaSenshi("grunt", 2, 1000, 800))
	decks := &fakeDecks{decks: map[string][]card.Template{
		"alice": deck,
		"bob":   deck,
	}}
	return NewShoukanEngine(Ports{Decks: decks}, registry, MatchConfig{Seed: 11}, zaptest.NewLogger(t))
}

func TestCreateMatchClaimsBothPlayers(t *testing.T) {
	reg := newFakeRegistry()
	e := newTestEngine(t, reg)

	m, err := e.CreateMatch(context.Background(), "alice", "Alice", "bob", "Bob")
	require.NoError(t, err)
	assert.Equal(t, 1, e.ActiveMatches())
	assert.True(t, reg.claimed("alice"))
	assert.True(t, reg.claimed("bob"))

	got, ok := e.Get(m.ID())
	require.True(t, ok)
	assert.Same(t, m, got)

	byUser, ok := e.MatchFor("bob")
	require.True(t, ok)
	assert.Same(t, m, byUser)
}

func TestCreateMatchRejectsBusyPlayer(t *testing.T) {
	reg := newFakeRegistry()
	e := newTestEngine(t, reg)

	_, err := e.CreateMatch(context.Background(), "alice", "Alice", "bob", "Bob")
	require.NoError(t, err)

	_, err = e.CreateMatch(context.Background(), "alice", "Alice", "bob", "Bob")
	require.Error(t, err)
	assert.Equal(t, 1, e.ActiveMatches())
}

func TestCreateMatchDeckFailureReleasesClaims(t *testing.T) {
	reg := newFakeRegistry()
	e := newTestEngine(t, reg)

	_, err := e.CreateMatch(context.Background(), "alice", "Alice", "mallory", "Mallory")
	require.Error(t, err)
	assert.Equal(t, 0, e.ActiveMatches())
	assert.False(t, reg.claimed("alice"), "a failed creation must free both seats")
	assert.False(t, reg.claimed("mallory"))

	// The seats are reusable immediately.
	_, err = e.CreateMatch(context.Background(), "alice", "Alice", "bob", "Bob")
	require.NoError(t, err)
}

func TestSubmitResolvesSeatFromIdentity(t *testing.T) {
	e := newTestEngine(t, newFakeRegistry())
	m, err := e.CreateMatch(context.Background(), "alice", "Alice", "bob", "Bob")
	require.NoError(t, err)

	res := e.Submit(context.Background(), m.ID(), "alice", Action{Kind: ActionDraw, TargetSlot: -1})
	require.NoError(t, res.Err)

	res = e.Submit(context.Background(), m.ID(), "bob", Action{Kind: ActionDraw, TargetSlot: -1})
	requireRejected(t, res, ErrNotYourTurn)

	res = e.Submit(context.Background(), m.ID(), "mallory", Action{Kind: ActionDraw, TargetSlot: -1})
	requireRejected(t, res, ErrNotYourTurn)

	res = e.Submit(context.Background(), "no-such-match", "alice", Action{Kind: ActionDraw, TargetSlot: -1})
	requireRejected(t, res, ErrMatchClosed)
}

func TestMatchEndReleasesClaims(t *testing.T) {
	reg := newFakeRegistry()
	e := newTestEngine(t, reg)
	m, err := e.CreateMatch(context.Background(), "alice", "Alice", "bob", "Bob")
	require.NoError(t, err)

	res := e.Submit(context.Background(), m.ID(), "alice", Action{Kind: ActionForfeit, TargetSlot: -1})
	require.NoError(t, res.Err)
	res = e.Submit(context.Background(), m.ID(), "alice", Action{Kind: ActionForfeit, TargetSlot: -1})
	require.NoError(t, res.Err)

	require.Eventually(t, func() bool {
		return e.ActiveMatches() == 0 && !reg.claimed("alice") && !reg.claimed("bob")
	}, time.Second, 10*time.Millisecond)

	report := m.EndReport()
	require.NotNil(t, report)
	assert.Equal(t, OutcomeForfeit, report.Outcome)
}

func TestSinglePlayerCreateClaimsOnce(t *testing.T) {
	reg := newFakeRegistry()
	e := newTestEngine(t, reg)

	m, err := e.CreateMatch(context.Background(), "alice", "Alice", "alice", "Alice")
	require.NoError(t, err)
	assert.True(t, reg.claimed("alice"))

	side, ok := m.SideOf("alice")
	require.True(t, ok)
	assert.Equal(t, rules.SideTop, side)
}
