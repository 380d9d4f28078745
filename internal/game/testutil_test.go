package game

import (
	"testing"

	"github.com/shoukanhq/shoukan-server-go/internal/game/card"
	"github.com/shoukanhq/shoukan-server-go/internal/game/rules"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func vanillaSenshi(id string, mp, atk, def int) card.Template {
	return card.Template{ID: id, Name: id, Class: card.ClassSenshi, ManaCost: mp, Attack: atk, Defense: def}
}

func vanillaEvogear(id string, mp, atk, def int) card.Template {
	return card.Template{ID: id, Name: id, Class: card.ClassEvogear, ManaCost: mp, Attack: atk, Defense: def}
}

func uniformDeck(n int, tpl card.Template) []card.Template {
	deck := make([]card.Template, n)
	for i := range deck {
		deck[i] = tpl
	}
	return deck
}

// newTestMatch builds a deterministic two-player match with uniform decks and
// null ports. The match loop is not started; tests drive handle directly
// unless they need the full queue semantics.
func newTestMatch(t *testing.T, cfg MatchConfig) *Match {
	t.Helper()
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	deck := uniformDeck(30, vanillaSenshi("grunt", 2, 1000, 800))
	m, err := NewMatch("match-test",
		Seat{UserID: "alice", Name: "Alice", Deck: deck},
		Seat{UserID: "bob", Name: "Bob", Deck: deck},
		Ports{}, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return m
}

// giveCard injects a card instance straight into a side's hand.
func giveCard(m *Match, side rules.Side, tpl card.Template) (int, *card.Card) {
	h := m.hands[side]
	c := card.New(tpl)
	c.Zone = card.ZoneHand
	h.hand = append(h.hand, c)
	return len(h.hand) - 1, c
}

// putFront sets up an established front-slot card that may act this turn.
func putFront(t *testing.T, m *Match, side rules.Side, slot int, tpl card.Template) *card.Card {
	t.Helper()
	c := card.New(tpl)
	require.NoError(t, m.arena.SetTop(side, slot, c))
	c.Flags.Summoned = false
	c.Flags.Available = true
	return c
}

func mustHandle(t *testing.T, m *Match, act Action) SubmitResult {
	t.Helper()
	res := m.handle(act)
	require.NoError(t, res.Err)
	return res
}
