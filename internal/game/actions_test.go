package game

import (
	"testing"

	"github.com/shoukanhq/shoukan-server-go/internal/game/card"
	"github.com/shoukanhq/shoukan-server-go/internal/game/locks"
	"github.com/shoukanhq/shoukan-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireRejected(t *testing.T, res SubmitResult, key string) {
	t.Helper()
	require.Error(t, res.Err)
	rej, ok := AsReject(res.Err)
	require.True(t, ok, "expected a keyed rejection, got %v", res.Err)
	assert.Equal(t, key, rej.Key)
}

func TestPlaceSenshiPaysCostAndOccupiesSlot(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	h := m.hands[rules.SideTop]
	require.Equal(t, 5, h.MP())
	handBefore := len(h.Cards())

	res := mustHandle(t, m, Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: 0, SlotIndex: 2, TargetSlot: -1})
	assert.True(t, res.ResendHand)
	assert.Equal(t, 3, h.MP())
	assert.Len(t, h.Cards(), handBefore-1)

	col, _ := m.arena.At(rules.SideTop, 2)
	c := col.Top()
	require.NotNil(t, c)
	assert.Equal(t, card.ZoneFront, c.Zone)
	assert.True(t, c.Flags.Summoned)
	assert.True(t, c.Flags.Solid)
}

func TestPlaceFaceDownForcesDefense(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	mustHandle(t, m, Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: 0, SlotIndex: 0, TargetSlot: -1, FaceDown: true})

	col, _ := m.arena.At(rules.SideTop, 0)
	c := col.Top()
	require.NotNil(t, c)
	assert.True(t, c.Flags.FaceDown)
	assert.True(t, c.Flags.Defending)
}

func TestPlaceSupportPosition(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	mustHandle(t, m, Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: 0, SlotIndex: 1, TargetSlot: -1, NotCombat: true})

	col, _ := m.arena.At(rules.SideTop, 1)
	require.NotNil(t, col.Bottom())
	assert.Nil(t, col.Top())
	assert.Equal(t, card.ZoneSupport, col.Bottom().Zone)
}

func TestPlaceRejectionsLeaveStateUntouched(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	idx, _ := giveCard(m, rules.SideTop, vanillaSenshi("titan", 9, 3000, 2500))
	before := m.StateChecksum()

	res := m.handle(Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: idx, SlotIndex: 0, TargetSlot: -1})
	requireRejected(t, res, ErrInsufficientMP)
	assert.Equal(t, before, m.StateChecksum(), "a rejected action must not change any state")
}

func TestPlaceRejectsNonSenshi(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	idx, _ := giveCard(m, rules.SideTop, vanillaEvogear("blade", 1, 500, 0))
	res := m.handle(Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: idx, SlotIndex: 0, TargetSlot: -1})
	requireRejected(t, res, ErrNotSenshi)
}

func TestPlaceRejectsWhileSummonLocked(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	m.hands[rules.SideTop].Locks().Apply(locks.KindSummon, 1)
	res := m.handle(Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: 0, SlotIndex: 0, TargetSlot: -1})
	requireRejected(t, res, ErrSummonLocked)
}

func TestPlaceDemandsSacrificeCost(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	h := m.hands[rules.SideTop]
	tribute := putFront(t, m, rules.SideTop, 1, vanillaSenshi("fodder", 1, 400, 400))
	titan := vanillaSenshi("titan", 2, 2400, 1600)
	titan.SacrificeCost = 1
	idx, c := giveCard(m, rules.SideTop, titan)
	before := m.StateChecksum()

	// No tribute named: rejected before anything changes.
	res := m.handle(Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: idx, SlotIndex: 0, TargetSlot: -1})
	requireRejected(t, res, ErrSacrificeNeeded)
	assert.Equal(t, before, m.StateChecksum())

	// An empty tribute slot is rejected too.
	res = m.handle(Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: idx, SlotIndex: 0, TargetSlot: -1, Sacrifices: []int{2}})
	requireRejected(t, res, ErrSlotEmpty)
	assert.Equal(t, before, m.StateChecksum())

	mustHandle(t, m, Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: idx, SlotIndex: 0, TargetSlot: -1, Sacrifices: []int{1}})
	assert.Equal(t, card.ZoneGraveyard, tribute.Zone)
	assert.Contains(t, h.Graveyard(), tribute)
	assert.Equal(t, 3, h.MP(), "the mana cost is still paid on top of the tribute")

	col, _ := m.arena.At(rules.SideTop, 0)
	assert.Same(t, c, col.Top())
	freed, _ := m.arena.At(rules.SideTop, 1)
	assert.False(t, freed.HasTop())
}

func TestPlaceSacrificeFreesTheTargetSlot(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	tribute := putFront(t, m, rules.SideTop, 0, vanillaSenshi("fodder", 1, 400, 400))
	titan := vanillaSenshi("titan", 2, 2400, 1600)
	titan.SacrificeCost = 1
	idx, c := giveCard(m, rules.SideTop, titan)

	// Tributing the card in the destination slot summons onto it.
	mustHandle(t, m, Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: idx, SlotIndex: 0, TargetSlot: -1, Sacrifices: []int{0}})
	col, _ := m.arena.At(rules.SideTop, 0)
	assert.Same(t, c, col.Top())
	assert.Equal(t, card.ZoneGraveyard, tribute.Zone)
}

func TestPlaceRejectsDuplicateTributeSlots(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	putFront(t, m, rules.SideTop, 0, vanillaSenshi("fodder", 1, 400, 400))
	titan := vanillaSenshi("titan", 2, 2400, 1600)
	titan.SacrificeCost = 2
	idx, _ := giveCard(m, rules.SideTop, titan)

	res := m.handle(Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: idx, SlotIndex: 1, TargetSlot: -1, Sacrifices: []int{0, 0}})
	requireRejected(t, res, ErrInvalidSlot)
}

func TestEquipAttachesToFrontCard(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	target := putFront(t, m, rules.SideTop, 0, vanillaSenshi("champ", 2, 1000, 800))
	idx, eq := giveCard(m, rules.SideTop, vanillaEvogear("blade", 2, 500, 0))

	mustHandle(t, m, Action{Kind: ActionEquip, Side: rules.SideTop, HandIndex: idx, SlotIndex: 0, TargetSlot: -1})
	require.Len(t, target.Equipments, 1)
	assert.Same(t, eq, target.Equipments[0])
	assert.Equal(t, card.ZoneSupport, eq.Zone)
	assert.Equal(t, 1500, target.ActiveAttack())
	assert.Equal(t, 3, m.hands[rules.SideTop].MP())
}

func TestEquipRejectsEmptySlotAndLimit(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	idx, _ := giveCard(m, rules.SideTop, vanillaEvogear("blade", 0, 500, 0))
	res := m.handle(Action{Kind: ActionEquip, Side: rules.SideTop, HandIndex: idx, SlotIndex: 0, TargetSlot: -1})
	requireRejected(t, res, ErrSlotEmpty)

	target := putFront(t, m, rules.SideTop, 0, vanillaSenshi("champ", 2, 1000, 800))
	for i := 0; i < maxEquipments; i++ {
		target.Equipments = append(target.Equipments, card.New(vanillaEvogear("old", 0, 100, 0)))
	}
	res = m.handle(Action{Kind: ActionEquip, Side: rules.SideTop, HandIndex: idx, SlotIndex: 0, TargetSlot: -1})
	requireRejected(t, res, ErrEquipLimit)
}

func TestPlaceFieldReplacesPrevious(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	idx1, f1 := giveCard(m, rules.SideTop, card.Template{ID: "f1", Name: "F1", Class: card.ClassField, FieldAttackPct: 120})
	mustHandle(t, m, Action{Kind: ActionPlaceField, Side: rules.SideTop, HandIndex: idx1, TargetSlot: -1})
	assert.Same(t, f1, m.arena.Field())

	idx2, f2 := giveCard(m, rules.SideTop, card.Template{ID: "f2", Name: "F2", Class: card.ClassField, FieldDefensePct: 130})
	mustHandle(t, m, Action{Kind: ActionPlaceField, Side: rules.SideTop, HandIndex: idx2, TargetSlot: -1})
	assert.Same(t, f2, m.arena.Field())

	grave := m.hands[rules.SideTop].Graveyard()
	require.Len(t, grave, 1)
	assert.Same(t, f1, grave[0])
}

func TestPersistentFieldReturnsToOwnerHand(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	h := m.hands[rules.SideTop]
	idx1, p := giveCard(m, rules.SideTop, card.Template{ID: "p", Name: "P", Class: card.ClassField, Persistent: true})
	mustHandle(t, m, Action{Kind: ActionPlaceField, Side: rules.SideTop, HandIndex: idx1, TargetSlot: -1})

	idx2, f := giveCard(m, rules.SideBottom, card.Template{ID: "f", Name: "F", Class: card.ClassField})
	mustHandle(t, m, Action{Kind: ActionNext, Side: rules.SideTop, TargetSlot: -1})
	mustHandle(t, m, Action{Kind: ActionPlaceField, Side: rules.SideBottom, HandIndex: idx2, TargetSlot: -1})

	assert.Same(t, f, m.arena.Field())
	assert.Equal(t, card.ZoneHand, p.Zone, "a replaced persistent field goes home, not to limbo")
	assert.Contains(t, h.Cards(), p)
	assert.Empty(t, h.Graveyard())
}

func TestFlipRevealsAndTogglesStance(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	c := putFront(t, m, rules.SideTop, 0, vanillaSenshi("champ", 2, 1000, 800))
	c.Flags.FaceDown = true
	c.Flags.Defending = true

	mustHandle(t, m, Action{Kind: ActionFlip, Side: rules.SideTop, SlotIndex: 0, TargetSlot: -1})
	assert.False(t, c.Flags.FaceDown)
	assert.False(t, c.Flags.Defending)

	mustHandle(t, m, Action{Kind: ActionFlip, Side: rules.SideTop, SlotIndex: 0, TargetSlot: -1})
	assert.True(t, c.Flags.Defending)

	mustHandle(t, m, Action{Kind: ActionFlip, Side: rules.SideTop, SlotIndex: 0, TargetSlot: -1})
	assert.False(t, c.Flags.Defending)
}

func TestPromoteAction(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	support := card.New(vanillaSenshi("backup", 2, 600, 900))
	require.NoError(t, m.arena.SetBottom(rules.SideTop, 0, support))

	mustHandle(t, m, Action{Kind: ActionPromote, Side: rules.SideTop, SlotIndex: 0, TargetSlot: -1})
	col, _ := m.arena.At(rules.SideTop, 0)
	assert.Same(t, support, col.Top())
	assert.Nil(t, col.Bottom())
}

func TestSacrificePaysHalfCost(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	c := putFront(t, m, rules.SideTop, 0, vanillaSenshi("victim", 4, 1000, 800))
	eq := card.New(vanillaEvogear("blade", 0, 300, 0))
	c.Equipments = append(c.Equipments, eq)

	h := m.hands[rules.SideTop]
	require.Equal(t, 5, h.MP())

	mustHandle(t, m, Action{Kind: ActionSacrifice, Side: rules.SideTop, SlotIndex: 0, TargetSlot: -1})
	assert.Equal(t, 3, h.MP(), "sacrifice costs half the mana cost, floored")

	col, _ := m.arena.At(rules.SideTop, 0)
	assert.Nil(t, col.Top())
	assert.Len(t, h.Graveyard(), 2, "card and its equipment go to the graveyard")
}

func TestDiscardBuffersUntilTurnEnd(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	h := m.hands[rules.SideTop]
	c := h.Cards()[0]

	mustHandle(t, m, Action{Kind: ActionDiscard, Side: rules.SideTop, HandIndex: 0, TargetSlot: -1})
	assert.Equal(t, card.ZoneDiscard, c.Zone)
	require.Len(t, h.Discard(), 1)
	assert.Empty(t, h.Graveyard())

	mustHandle(t, m, Action{Kind: ActionNext, Side: rules.SideTop, TargetSlot: -1})
	assert.Empty(t, h.Discard())
	require.Len(t, h.Graveyard(), 1)
	assert.Equal(t, card.ZoneGraveyard, c.Zone)
}

func TestDrawBudgetIsOnePerTurn(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	h := m.hands[rules.SideTop]
	before := len(h.Cards())

	mustHandle(t, m, Action{Kind: ActionDraw, Side: rules.SideTop, TargetSlot: -1})
	assert.Len(t, h.Cards(), before+1)

	res := m.handle(Action{Kind: ActionDraw, Side: rules.SideTop, TargetSlot: -1})
	requireRejected(t, res, ErrNoDrawsLeft)
}

func TestAttackRequiresCombatPhase(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	putFront(t, m, rules.SideTop, 0, vanillaSenshi("champ", 2, 1000, 800))
	res := m.handle(Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: -1})
	requireRejected(t, res, ErrWrongPhase)
}

func TestPlacementRejectedDuringCombat(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})
	res := m.handle(Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: 0, SlotIndex: 0, TargetSlot: -1})
	requireRejected(t, res, ErrWrongPhase)
}

func TestCombatAdvanceIsIdempotent(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})
	require.Equal(t, rules.PhaseCombat, m.turns.CurrentPhase())
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})
	assert.Equal(t, rules.PhaseCombat, m.turns.CurrentPhase())
}

func TestDirectAttackHitsThePlayer(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	attacker := putFront(t, m, rules.SideTop, 0, vanillaSenshi("champ", 2, 1000, 800))
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})

	mustHandle(t, m, Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: -1})
	assert.Equal(t, 4000, m.hands[rules.SideBottom].HP())
	assert.False(t, attacker.Flags.Available, "a card attacks once per turn")

	res := m.handle(Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: -1})
	requireRejected(t, res, ErrAlreadyActed)
}

func TestDirectAttackRequiresAnOpening(t *testing.T) {
	m := newTestMatch(t, MatchConfig{Columns: 1})
	putFront(t, m, rules.SideTop, 0, vanillaSenshi("champ", 2, 1000, 800))
	putFront(t, m, rules.SideBottom, 0, vanillaSenshi("wall", 2, 500, 2000))
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})

	res := m.handle(Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: -1})
	requireRejected(t, res, ErrNoOpening)
}

func TestAttackOnEmptyTargetColumnIsDirect(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	putFront(t, m, rules.SideTop, 0, vanillaSenshi("champ", 2, 1000, 800))
	putFront(t, m, rules.SideBottom, 0, vanillaSenshi("wall", 2, 500, 2000))
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})

	target := 3
	mustHandle(t, m, Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: target})
	assert.Equal(t, 4000, m.hands[rules.SideBottom].HP())
}

func TestAttackDestroysWeakerDefender(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	putFront(t, m, rules.SideTop, 0, vanillaSenshi("champ", 2, 1500, 800))
	defender := putFront(t, m, rules.SideBottom, 1, vanillaSenshi("prey", 2, 800, 600))
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})

	mustHandle(t, m, Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: 1})
	assert.Equal(t, card.ZoneGraveyard, defender.Zone)
	assert.Equal(t, 4300, m.hands[rules.SideBottom].HP(), "excess damage carries through an open defender")

	col, _ := m.arena.At(rules.SideBottom, 1)
	assert.Nil(t, col.Top())
}

func TestAttackClashDestroysBothWithoutPlayerDamage(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	attacker := putFront(t, m, rules.SideTop, 0, vanillaSenshi("mirror-a", 2, 1000, 800))
	defender := putFront(t, m, rules.SideBottom, 0, vanillaSenshi("mirror-b", 2, 1000, 800))
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})

	mustHandle(t, m, Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: 0})
	assert.Equal(t, card.ZoneGraveyard, attacker.Zone)
	assert.Equal(t, card.ZoneGraveyard, defender.Zone)
	assert.Contains(t, m.hands[rules.SideTop].Graveyard(), attacker)
	assert.Contains(t, m.hands[rules.SideBottom].Graveyard(), defender)
	assert.Equal(t, 5000, m.hands[rules.SideTop].HP(), "a clash costs neither player any life")
	assert.Equal(t, 5000, m.hands[rules.SideBottom].HP())

	for _, side := range rules.Sides {
		col, _ := m.arena.At(side, 0)
		assert.Nil(t, col.Top())
	}
}

func TestFailedAttackBackfires(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	attacker := putFront(t, m, rules.SideTop, 0, vanillaSenshi("runt", 2, 800, 600))
	putFront(t, m, rules.SideBottom, 1, vanillaSenshi("giant", 2, 1200, 900))
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})

	mustHandle(t, m, Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: 1})
	assert.Equal(t, card.ZoneGraveyard, attacker.Zone)
	assert.Equal(t, 4600, m.hands[rules.SideTop].HP(), "the shortfall damages the attacker's own side")
	assert.Equal(t, 5000, m.hands[rules.SideBottom].HP())
}

func TestAttackRevealsFaceDownDefender(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	putFront(t, m, rules.SideTop, 0, vanillaSenshi("runt", 2, 800, 600))
	defender := putFront(t, m, rules.SideBottom, 1, vanillaSenshi("trap", 2, 300, 1200))
	defender.Flags.FaceDown = true
	defender.Flags.Defending = true
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})

	mustHandle(t, m, Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: 1})
	assert.False(t, defender.Flags.FaceDown, "the attack reveals the defender")
	assert.True(t, defender.Flags.Defending)
	assert.Equal(t, card.ZoneFront, defender.Zone, "a winning defender survives")
}

func TestAttackCrushesSupportAndHitsDirect(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	putFront(t, m, rules.SideTop, 0, vanillaSenshi("champ", 2, 1000, 800))
	support := card.New(vanillaSenshi("backup", 2, 2000, 2000))
	require.NoError(t, m.arena.SetBottom(rules.SideBottom, 1, support))
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})

	mustHandle(t, m, Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: 1})
	assert.Equal(t, card.ZoneGraveyard, support.Zone)
	assert.Equal(t, 4000, m.hands[rules.SideBottom].HP())
}

func TestFaceDownCardCannotAttack(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	c := putFront(t, m, rules.SideTop, 0, vanillaSenshi("champ", 2, 1000, 800))
	c.Flags.FaceDown = true
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})

	res := m.handle(Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: -1})
	requireRejected(t, res, ErrFaceDownAttack)
}

func TestSummonedCardCannotAttackThisTurn(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	mustHandle(t, m, Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: 0, SlotIndex: 0, TargetSlot: -1})
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})

	res := m.handle(Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: -1})
	requireRejected(t, res, ErrSummonedTurn)
}

func TestAttackLockBlocksAttacks(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	putFront(t, m, rules.SideTop, 0, vanillaSenshi("champ", 2, 1000, 800))
	m.hands[rules.SideTop].Locks().Apply(locks.KindAttack, 1)
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})

	res := m.handle(Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: -1})
	requireRejected(t, res, ErrAttackLocked)
}

func TestNotYourTurnRejected(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	res := m.handle(Action{Kind: ActionDraw, Side: rules.SideBottom, TargetSlot: -1})
	requireRejected(t, res, ErrNotYourTurn)
}

func TestEndTurnRotatesAndRefreshes(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	placed := putFront(t, m, rules.SideBottom, 0, vanillaSenshi("sleeper", 2, 1000, 800))
	placed.Flags.Available = false
	placed.Flags.Summoned = true

	mustHandle(t, m, Action{Kind: ActionNext, Side: rules.SideTop, TargetSlot: -1})
	assert.Equal(t, rules.SideBottom, m.turns.ActiveSide())
	assert.Equal(t, 2, m.turns.TurnNumber())
	assert.Equal(t, rules.PhasePlan, m.turns.CurrentPhase())
	assert.Equal(t, 5, m.hands[rules.SideBottom].MP())
	assert.True(t, placed.Flags.Available, "the incoming side's cards refresh")
	assert.False(t, placed.Flags.Summoned)
}

func TestTurnStartEffectsFire(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	regen := vanillaSenshi("healer", 2, 600, 900)
	regen.EffectID = "regen/turn-start"
	putFront(t, m, rules.SideBottom, 0, regen)

	m.hands[rules.SideBottom].ModHP(-500)
	mustHandle(t, m, Action{Kind: ActionNext, Side: rules.SideTop, TargetSlot: -1})
	assert.Equal(t, 4550, m.hands[rules.SideBottom].HP(), "turn-start regen fires for the incoming side")
}

func TestOnSummonEffectFiresOnlyFaceUp(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	drain := vanillaSenshi("leech", 2, 600, 400)
	drain.EffectID = "drain/on-summon"

	idx, _ := giveCard(m, rules.SideTop, drain)
	mustHandle(t, m, Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: idx, SlotIndex: 0, TargetSlot: -1})
	assert.Equal(t, 4900, m.hands[rules.SideBottom].HP())

	idx2, _ := giveCard(m, rules.SideTop, drain)
	mustHandle(t, m, Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: idx2, SlotIndex: 1, TargetSlot: -1, FaceDown: true})
	assert.Equal(t, 4900, m.hands[rules.SideBottom].HP(), "face-down placement must not fire the summon hook")
}

func TestOnDefeatEffectFires(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	sting := vanillaSenshi("kappa", 2, 300, 400)
	sting.EffectID = "sting/on-defeat"
	putFront(t, m, rules.SideTop, 0, vanillaSenshi("champ", 2, 1500, 800))
	putFront(t, m, rules.SideBottom, 1, sting)
	mustHandle(t, m, Action{Kind: ActionCombat, Side: rules.SideTop, TargetSlot: -1})

	mustHandle(t, m, Action{Kind: ActionAttack, Side: rules.SideTop, SlotIndex: 0, TargetSlot: 1})
	// 200 sting against the attacking side, 1200 carried damage against the owner.
	assert.Equal(t, 4800, m.hands[rules.SideTop].HP())
	assert.Equal(t, 3800, m.hands[rules.SideBottom].HP())
}

func TestEffectLockSuppressesHooks(t *testing.T) {
	m := newTestMatch(t, MatchConfig{})
	m.hands[rules.SideTop].Locks().Apply(locks.KindEffect, 1)
	drain := vanillaSenshi("leech", 2, 600, 400)
	drain.EffectID = "drain/on-summon"
	idx, _ := giveCard(m, rules.SideTop, drain)

	mustHandle(t, m, Action{Kind: ActionPlace, Side: rules.SideTop, HandIndex: idx, SlotIndex: 0, TargetSlot: -1})
	assert.Equal(t, 5000, m.hands[rules.SideBottom].HP(), "locked effects must not fire")
}
