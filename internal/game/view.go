package game

import (
	"github.com/shoukanhq/shoukan-server-go/internal/game/card"
	"github.com/shoukanhq/shoukan-server-go/internal/game/rules"
)

// CardView is the public projection of a card. Face-down cards belonging to
// the opponent are masked.
type CardView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Class     string `json:"class"`
	Attack    int    `json:"attack"`
	Defense   int    `json:"defense"`
	ManaCost  int    `json:"mana_cost"`
	BloodCost int    `json:"blood_cost"`
	FaceDown  bool   `json:"face_down"`
	Defending bool   `json:"defending"`
	Available bool   `json:"available"`
	Summoned  bool   `json:"summoned"`
	Equipped  int    `json:"equipped"`
}

// SlotView is one column of the battlefield.
type SlotView struct {
	Index  int       `json:"index"`
	Top    *CardView `json:"top,omitempty"`
	Bottom *CardView `json:"bottom,omitempty"`
	Locked bool      `json:"locked"`
}

// SideView is one seat's public state.
type SideView struct {
	UserID         string         `json:"user_id"`
	Name           string         `json:"name"`
	HP             int            `json:"hp"`
	MP             int            `json:"mp"`
	HandCount      int            `json:"hand_count"`
	DeckCount      int            `json:"deck_count"`
	GraveyardCount int            `json:"graveyard_count"`
	DiscardCount   int            `json:"discard_count"`
	Slots          []SlotView     `json:"slots"`
	Locks          map[string]int `json:"locks,omitempty"`
	ForfeitArmed   bool           `json:"forfeit_armed"`
	RevivalCharges int            `json:"revival_charges"`
}

// MatchView is the full public projection handed to the renderer.
type MatchView struct {
	MatchID    string              `json:"match_id"`
	Turn       int                 `json:"turn"`
	Phase      string              `json:"phase"`
	ActiveSide string              `json:"active_side"`
	Field      *CardView           `json:"field,omitempty"`
	Sides      map[string]SideView `json:"sides"`
	Transcript []string            `json:"transcript,omitempty"`
}

// HandView is one player's private hand projection.
type HandView struct {
	UserID    string     `json:"user_id"`
	HP        int        `json:"hp"`
	MP        int        `json:"mp"`
	DrawsLeft int        `json:"draws_left"`
	Cards     []CardView `json:"cards"`
}

func cardView(c *card.Card, maskFaceDown bool) *CardView {
	if c == nil {
		return nil
	}
	if maskFaceDown && c.Flags.FaceDown {
		return &CardView{ID: c.InstanceID, Name: "???", FaceDown: true, Defending: true}
	}
	return &CardView{
		ID:        c.InstanceID,
		Name:      c.Name,
		Class:     c.Class.String(),
		Attack:    c.ActiveAttack(),
		Defense:   c.ActiveDefense(),
		ManaCost:  c.MPCost(),
		BloodCost: c.HPCost(),
		FaceDown:  c.Flags.FaceDown,
		Defending: c.Flags.Defending,
		Available: c.Flags.Available,
		Summoned:  c.Flags.Summoned,
		Equipped:  len(c.Equipments),
	}
}

// View builds the public match projection. Face-down field cards are always
// masked; hand contents are never included here. It reads live state: callers
// outside the match loop must go through ViewSnapshot while the loop runs.
func (m *Match) View() MatchView {
	view := MatchView{
		MatchID:    m.id,
		Turn:       m.turns.TurnNumber(),
		Phase:      m.turns.CurrentPhase().String(),
		ActiveSide: m.turns.ActiveSide().String(),
		Field:      cardView(m.arena.Field(), false),
		Sides:      make(map[string]SideView, 2),
		Transcript: m.transcript.Tail(5),
	}
	for _, side := range rules.Sides {
		h := m.hands[side]
		sv := SideView{
			UserID:         h.UserID(),
			Name:           h.Name(),
			HP:             h.HP(),
			MP:             h.MP(),
			HandCount:      len(h.Cards()),
			DeckCount:      h.DeckSize(),
			GraveyardCount: len(h.Graveyard()),
			DiscardCount:   len(h.Discard()),
			ForfeitArmed:   h.ForfeitArmed(),
			RevivalCharges: h.RevivalCharges(),
		}
		if snap := h.Locks().Snapshot(); len(snap) > 0 {
			sv.Locks = make(map[string]int, len(snap))
			for kind, turns := range snap {
				sv.Locks[string(kind)] = turns
			}
		}
		for _, col := range m.arena.Columns(side) {
			sv.Slots = append(sv.Slots, SlotView{
				Index:  col.Index,
				Top:    cardView(col.Top(), true),
				Bottom: cardView(col.Bottom(), true),
				Locked: col.Locked(),
			})
		}
		view.Sides[side.String()] = sv
	}
	return view
}

// HandViewFor builds the private hand projection for one side. Like View it
// reads live state; external readers use HandSnapshot.
func (m *Match) HandViewFor(side rules.Side) HandView {
	h := m.hands[side]
	hv := HandView{
		UserID:    h.UserID(),
		HP:        h.HP(),
		MP:        h.MP(),
		DrawsLeft: h.DrawsLeft(),
	}
	for _, c := range h.Cards() {
		hv.Cards = append(hv.Cards, *cardView(c, false))
	}
	return hv
}
