package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/shoukanhq/shoukan-server-go/internal/game/card"
	"github.com/shoukanhq/shoukan-server-go/internal/game/rules"
)

// StateChecksum computes a deterministic SHA-256 over the match's mutable
// state: turn state, both hands' resources and zone contents, and the arena.
// Two calls over an unchanged match produce identical checksums, which lets
// tests prove that rejected actions mutate nothing.
func (m *Match) StateChecksum() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "TURN:%d|%s|%s\n",
		m.turns.TurnNumber(), m.turns.ActiveSide(), m.turns.CurrentPhase())

	for _, side := range rules.Sides {
		h := m.hands[side]
		fmt.Fprintf(&buf, "HAND:%s|%s|%d|%d|%d|%t|%d\n",
			side, h.UserID(), h.HP(), h.MP(), h.DrawsLeft(), h.ForfeitArmed(), h.RevivalCharges())
		writeCards(&buf, "H", h.Cards())
		writeCards(&buf, "D", deckPrefix(h))
		writeCards(&buf, "G", h.Graveyard())
		writeCards(&buf, "X", h.Discard())

		for _, col := range m.arena.Columns(side) {
			fmt.Fprintf(&buf, "SLOT:%s|%d|%t\n", side, col.Index, col.Locked())
			writeCard(&buf, "T", col.Top())
			writeCard(&buf, "B", col.Bottom())
		}
	}

	writeCard(&buf, "F", m.arena.Field())

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// deckPrefix exposes the deck order without copying; included whole because
// draw order is part of match state.
func deckPrefix(h *Hand) []*card.Card {
	return h.deck
}

func writeCards(buf *bytes.Buffer, tag string, cards []*card.Card) {
	for _, c := range cards {
		writeCard(buf, tag, c)
	}
}

func writeCard(buf *bytes.Buffer, tag string, c *card.Card) {
	if c == nil {
		return
	}
	fmt.Fprintf(buf, "%s:%s|%s|%s|%d|%d|%d|%d|%t|%t|%t|%t|%t|%d\n",
		tag, c.InstanceID, c.ID, c.Zone,
		c.ActiveAttack(), c.ActiveDefense(), c.MPCost(), c.HPCost(),
		c.Flags.Available, c.Flags.Solid, c.Flags.FaceDown, c.Flags.Defending, c.Flags.Summoned,
		len(c.Equipments))
}
