package game

import (
	"fmt"
	"math/rand"

	"github.com/shoukanhq/shoukan-server-go/internal/game/card"
	"github.com/shoukanhq/shoukan-server-go/internal/game/locks"
	"github.com/shoukanhq/shoukan-server-go/internal/game/rules"
)

// DefaultMPCurve is the per-turn mana restoration applied at the start of a
// side's turn when the side has no custom curve.
func DefaultMPCurve(turn int) int {
	return 5
}

// Hand is one side's resource and zone manager: life, mana, drawn cards,
// draw pile, graveyard and the pending-discard buffer.
type Hand struct {
	side   rules.Side
	userID string
	name   string

	hp     int
	baseHP int
	mp     int

	hand      []*card.Card
	deck      []*card.Card
	graveyard []*card.Card
	discard   []*card.Card

	locks        *locks.Set
	forfeitArmed bool
	drawsLeft    int
	regen        int // per-turn HP delta applied at turn start

	mpCurve func(turn int) int

	revivalCharges  int
	revivalCooldown int
}

// NewHand builds one side's hand from a deck of templates. The deck is
// instantiated into fresh card instances and shuffled with the supplied rng.
func NewHand(side rules.Side, userID, name string, templates []card.Template, baseHP, deckMin, revivals int, rng *rand.Rand) (*Hand, error) {
	if len(templates) < deckMin {
		return nil, fmt.Errorf("deck for %s has %d cards, need at least %d", userID, len(templates), deckMin)
	}

	deck := make([]*card.Card, 0, len(templates))
	for _, tpl := range templates {
		deck = append(deck, card.New(tpl))
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	return &Hand{
		side:           side,
		userID:         userID,
		name:           name,
		hp:             baseHP,
		baseHP:         baseHP,
		deck:           deck,
		locks:          locks.NewSet(),
		drawsLeft:      1,
		mpCurve:        DefaultMPCurve,
		revivalCharges: revivals,
	}, nil
}

// Side returns the seat this hand belongs to.
func (h *Hand) Side() rules.Side { return h.side }

// UserID returns the owning player's identity.
func (h *Hand) UserID() string { return h.userID }

// Name returns the owning player's display name.
func (h *Hand) Name() string { return h.name }

// HP returns the side's current life total.
func (h *Hand) HP() int { return h.hp }

// MP returns the side's current mana pool.
func (h *Hand) MP() int { return h.mp }

// Cards returns the ordered hand contents.
func (h *Hand) Cards() []*card.Card { return h.hand }

// DeckSize returns the number of cards left in the draw pile.
func (h *Hand) DeckSize() int { return len(h.deck) }

// Graveyard returns the permanent discard pile.
func (h *Hand) Graveyard() []*card.Card { return h.graveyard }

// Discard returns the pending-graveyard buffer.
func (h *Hand) Discard() []*card.Card { return h.discard }

// Locks returns the side's active lock set.
func (h *Hand) Locks() *locks.Set { return h.locks }

// DrawsLeft returns the remaining manual draw budget for this turn.
func (h *Hand) DrawsLeft() int { return h.drawsLeft }

// ForfeitArmed reports whether the side has pressed forfeit once already.
func (h *Hand) ForfeitArmed() bool { return h.forfeitArmed }

// ModHP applies a life delta, clamped so HP never goes negative.
// It returns the delta actually applied.
func (h *Hand) ModHP(delta int) int {
	next := h.hp + delta
	if next < 0 {
		next = 0
	}
	applied := next - h.hp
	h.hp = next
	return applied
}

// ModMP applies a mana delta, clamped so MP never goes negative.
// It returns the delta actually applied.
func (h *Hand) ModMP(delta int) int {
	next := h.mp + delta
	if next < 0 {
		next = 0
	}
	applied := next - h.mp
	h.mp = next
	return applied
}

// GainTurnMP restores mana for the given turn number per the side's curve.
func (h *Hand) GainTurnMP(turn int) int {
	curve := h.mpCurve
	if curve == nil {
		curve = DefaultMPCurve
	}
	return h.ModMP(curve(turn))
}

// SetMPCurve overrides the side's mana gain curve.
func (h *Hand) SetMPCurve(curve func(turn int) int) {
	if curve != nil {
		h.mpCurve = curve
	}
}

// SetRegen adjusts the per-turn HP delta applied at turn start. Negative
// values degenerate.
func (h *Hand) SetRegen(delta int) { h.regen = delta }

// Regen returns the side's per-turn HP delta.
func (h *Hand) Regen() int { return h.regen }

// Draw moves up to n cards from the top of the deck into the hand.
// An empty deck is a silent no-op; drawing never fails.
func (h *Hand) Draw(n int) []*card.Card {
	drawn := make([]*card.Card, 0, n)
	for i := 0; i < n && len(h.deck) > 0; i++ {
		c := h.deck[0]
		h.deck = h.deck[1:]
		c.Zone = card.ZoneHand
		h.hand = append(h.hand, c)
		drawn = append(drawn, c)
	}
	return drawn
}

// OpeningDraw performs the match-start draw. If the top n cards contain no
// senshi but the deck holds one, the first senshi in the pile is moved into
// the draw head so the opener is playable.
func (h *Hand) OpeningDraw(n int) []*card.Card {
	if n > len(h.deck) {
		n = len(h.deck)
	}
	hasSenshi := false
	for i := 0; i < n; i++ {
		if h.deck[i].IsSenshi() {
			hasSenshi = true
			break
		}
	}
	if !hasSenshi {
		for i := n; i < len(h.deck); i++ {
			if h.deck[i].IsSenshi() {
				h.deck[0], h.deck[i] = h.deck[i], h.deck[0]
				break
			}
		}
	}
	return h.Draw(n)
}

// UseDraw consumes one manual draw from the per-turn budget.
func (h *Hand) UseDraw() (*card.Card, error) {
	if h.drawsLeft <= 0 {
		return nil, reject(ErrNoDrawsLeft)
	}
	if len(h.deck) == 0 {
		return nil, reject(ErrDeckEmpty)
	}
	h.drawsLeft--
	return h.Draw(1)[0], nil
}

// GrantDraws adds to the per-turn manual draw budget.
func (h *Hand) GrantDraws(n int) {
	if n > 0 {
		h.drawsLeft += n
	}
}

// CheckCosts verifies affordability without mutating anything. Blood costs
// must be strictly less than current HP; mana costs at most current MP.
func (h *Hand) CheckCosts(c *card.Card) error {
	if c.MPCost() > h.mp {
		return reject(ErrInsufficientMP, c.MPCost(), h.mp)
	}
	if hpCost := c.HPCost(); hpCost > 0 && hpCost >= h.hp {
		return reject(ErrInsufficientHP, hpCost, h.hp)
	}
	return nil
}

// PayCosts deducts a card's costs. Callers must have passed CheckCosts in
// the same critical section; payment and state change commit together.
func (h *Hand) PayCosts(c *card.Card) {
	h.ModMP(-c.MPCost())
	h.ModHP(-c.HPCost())
}

// CheckHalfCosts verifies affordability at the sacrifice discount.
func (h *Hand) CheckHalfCosts(c *card.Card) error {
	if mp := card.HalfCost(c.MPCost()); mp > h.mp {
		return reject(ErrInsufficientMP, mp, h.mp)
	}
	if hp := card.HalfCost(c.HPCost()); hp > 0 && hp >= h.hp {
		return reject(ErrInsufficientHP, hp, h.hp)
	}
	return nil
}

// PayHalfCosts deducts a card's costs at the sacrifice discount.
func (h *Hand) PayHalfCosts(c *card.Card) {
	h.ModMP(-card.HalfCost(c.MPCost()))
	h.ModHP(-card.HalfCost(c.HPCost()))
}

// HandCard returns the hand card at the given index.
func (h *Hand) HandCard(i int) (*card.Card, error) {
	if i < 0 || i >= len(h.hand) {
		return nil, reject(ErrInvalidHand, i)
	}
	return h.hand[i], nil
}

// TakeFromHand atomically removes a hand card so it can enter another zone.
// The caller is responsible for placing it and setting its new zone tag.
func (h *Hand) TakeFromHand(c *card.Card) bool {
	for i, cur := range h.hand {
		if cur == c {
			h.hand = append(h.hand[:i], h.hand[i+1:]...)
			return true
		}
	}
	return false
}

// ToDiscard moves a card into the pending-discard buffer.
func (h *Hand) ToDiscard(c *card.Card) {
	h.detach(c)
	c.Zone = card.ZoneDiscard
	h.discard = append(h.discard, c)
}

// ToGraveyard moves a card into the graveyard, resetting its runtime state.
// Field detachment is the arena's job and must happen first.
func (h *Hand) ToGraveyard(c *card.Card) {
	h.detach(c)
	c.Reset()
	c.Zone = card.ZoneGraveyard
	h.graveyard = append(h.graveyard, c)
}

// ReturnToHand moves a card from play back into the hand, resetting its
// runtime state. Persistent field cards take this path when replaced.
func (h *Hand) ReturnToHand(c *card.Card) {
	h.detach(c)
	c.Reset()
	c.Zone = card.ZoneHand
	h.hand = append(h.hand, c)
}

// detach removes a card from whichever hand-owned container currently holds
// it, keyed off its zone tag. Field zones hold no hand container.
func (h *Hand) detach(c *card.Card) {
	remove := func(list []*card.Card) []*card.Card {
		for i, cur := range list {
			if cur == c {
				return append(list[:i], list[i+1:]...)
			}
		}
		return list
	}
	switch c.Zone {
	case card.ZoneDeck:
		h.deck = remove(h.deck)
	case card.ZoneHand:
		h.hand = remove(h.hand)
	case card.ZoneDiscard:
		h.discard = remove(h.discard)
	case card.ZoneGraveyard:
		h.graveyard = remove(h.graveyard)
	}
}

// FlushDiscard moves every discarded card into the graveyard and clears the
// buffer. Called once per turn end.
func (h *Hand) FlushDiscard() int {
	n := len(h.discard)
	for _, c := range h.discard {
		c.Reset()
		c.Zone = card.ZoneGraveyard
		h.graveyard = append(h.graveyard, c)
	}
	h.discard = h.discard[:0]
	return n
}

// PruneHand discards hand cards beyond the capacity, oldest first.
// Returns the number of cards swept.
func (h *Hand) PruneHand(capacity int) int {
	pruned := 0
	for len(h.hand) > capacity {
		c := h.hand[0]
		h.hand = h.hand[1:]
		c.Zone = card.ZoneDiscard
		h.discard = append(h.discard, c)
		pruned++
	}
	return pruned
}

// ArmForfeit sets the two-step forfeit confirmation flag. Returns false if
// it was already armed (the second press should end the match).
func (h *Hand) ArmForfeit() bool {
	if h.forfeitArmed {
		return false
	}
	h.forfeitArmed = true
	return true
}

// DisarmForfeit clears the forfeit confirmation, done at each turn change.
func (h *Hand) DisarmForfeit() { h.forfeitArmed = false }

// TryRevival intercepts a death if a charge is available and off cooldown:
// HP is set to 1 and the cooldown starts. Returns true when intercepted.
func (h *Hand) TryRevival(cooldown int) bool {
	if h.hp > 0 || h.revivalCharges <= 0 || h.revivalCooldown > 0 {
		return false
	}
	h.revivalCharges--
	h.revivalCooldown = cooldown
	h.hp = 1
	return true
}

// RevivalCharges returns the remaining death interceptions.
func (h *Hand) RevivalCharges() int { return h.revivalCharges }

// StartTurn resets the per-turn side state: draw budget, forfeit flag, mana
// per curve, regen, and cooldown/lock timers.
func (h *Hand) StartTurn(turn int) {
	h.forfeitArmed = false
	h.drawsLeft = 1
	h.GainTurnMP(turn)
	if h.regen != 0 {
		h.ModHP(h.regen)
	}
	if h.revivalCooldown > 0 {
		h.revivalCooldown--
	}
	h.locks.Tick()
}
