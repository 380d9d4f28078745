package game

import (
	"fmt"

	"github.com/shoukanhq/shoukan-server-go/internal/game/card"
	"github.com/shoukanhq/shoukan-server-go/internal/game/locks"
	"github.com/shoukanhq/shoukan-server-go/internal/game/rules"
)

// ActionKind identifies a player action. Each kind is legal only in its
// declared phases and carries its arguments in the Action struct.
type ActionKind int

const (
	ActionPlace ActionKind = iota
	ActionEquip
	ActionPlaceField
	ActionFlip
	ActionPromote
	ActionSacrifice
	ActionDiscard
	ActionAttack
	ActionDraw
	ActionCombat // advance PLAN -> COMBAT; no-op when already in COMBAT
	ActionNext   // end the turn
	ActionForfeit
)

var actionNames = map[ActionKind]string{
	ActionPlace:      "PLACE",
	ActionEquip:      "EQUIP",
	ActionPlaceField: "FIELD",
	ActionFlip:       "FLIP",
	ActionPromote:    "PROMOTE",
	ActionSacrifice:  "SACRIFICE",
	ActionDiscard:    "DISCARD",
	ActionAttack:     "ATTACK",
	ActionDraw:       "DRAW",
	ActionCombat:     "COMBAT",
	ActionNext:       "NEXT",
	ActionForfeit:    "FORFEIT",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ACTION_%d", int(k))
}

// ParseActionKind resolves an action name as carried on the wire.
func ParseActionKind(name string) (ActionKind, bool) {
	for kind, n := range actionNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}

// Action is one validated, typed player request.
type Action struct {
	Kind       ActionKind
	Side       rules.Side
	HandIndex  int
	SlotIndex  int
	TargetSlot int // -1 = no target (direct attack)
	Defending  bool
	FaceDown   bool
	NotCombat  bool  // place into the support position
	Sacrifices []int // front slots tributed when the placed card has a sacrifice cost
}

type actionHandler struct {
	phases map[rules.Phase]bool // nil = legal in any phase
	apply  func(*Match, Action) (bool, error)
}

func (h actionHandler) allowed(p rules.Phase) bool {
	return h.phases == nil || h.phases[p]
}

// buildActionTable constructs the dispatch table once per match. Placement
// and resource actions are PLAN-only; attacking is COMBAT-only.
func buildActionTable() map[ActionKind]actionHandler {
	plan := map[rules.Phase]bool{rules.PhasePlan: true}
	combat := map[rules.Phase]bool{rules.PhaseCombat: true}
	return map[ActionKind]actionHandler{
		ActionPlace:      {phases: plan, apply: (*Match).applyPlace},
		ActionEquip:      {phases: plan, apply: (*Match).applyEquip},
		ActionPlaceField: {phases: plan, apply: (*Match).applyPlaceField},
		ActionFlip:       {phases: plan, apply: (*Match).applyFlip},
		ActionPromote:    {phases: plan, apply: (*Match).applyPromote},
		ActionSacrifice:  {phases: plan, apply: (*Match).applySacrifice},
		ActionDiscard:    {phases: plan, apply: (*Match).applyDiscard},
		ActionDraw:       {phases: plan, apply: (*Match).applyDraw},
		ActionAttack:     {phases: combat, apply: (*Match).applyAttack},
		ActionCombat:     {apply: (*Match).applyCombat},
		ActionNext:       {apply: (*Match).applyNext},
		ActionForfeit:    {apply: (*Match).applyForfeit},
	}
}

// applyPlace moves a senshi from hand to a front or support position.
// Every precondition is checked before any mutation.
func (m *Match) applyPlace(act Action) (bool, error) {
	h := m.hands[act.Side]
	if h.Locks().Active(locks.KindSummon) {
		return false, reject(ErrSummonLocked)
	}
	c, err := h.HandCard(act.HandIndex)
	if err != nil {
		return false, err
	}
	if !c.IsSenshi() {
		return false, reject(ErrNotSenshi, c.Name)
	}
	if !c.Flags.Available {
		return false, reject(ErrUnavailable, c.Name)
	}
	if err := h.CheckCosts(c); err != nil {
		return false, err
	}
	tributes, err := m.placeTributes(act, c)
	if err != nil {
		return false, err
	}
	col, err := m.arena.At(act.Side, act.SlotIndex)
	if err != nil {
		return false, err
	}
	if col.Locked() {
		return false, reject(ErrSlotLocked, act.SlotIndex)
	}
	if act.NotCombat {
		if col.HasBottom() {
			return false, reject(ErrSlotOccupied, act.SlotIndex)
		}
	} else if top := col.Top(); top != nil && !containsCard(tributes, top) {
		// A tributed front card frees its own slot for the summon.
		return false, reject(ErrSlotOccupied, act.SlotIndex)
	}

	h.PayCosts(c)
	for _, t := range tributes {
		m.arena.Remove(t)
		for _, eq := range t.Equipments {
			h.ToGraveyard(eq)
		}
		h.ToGraveyard(t)
		m.publish(rules.Event{Type: rules.EventCardSacrificed, Side: act.Side, CardID: t.InstanceID})
		m.say("event/sacrificed", h.Name(), t.Name)
	}
	h.TakeFromHand(c)
	if act.NotCombat {
		_ = m.arena.SetBottom(act.Side, act.SlotIndex, c)
	} else {
		_ = m.arena.SetTop(act.Side, act.SlotIndex, c)
	}
	c.Flags.FaceDown = act.FaceDown
	c.Flags.Defending = act.Defending || act.FaceDown
	c.Flags.Summoned = true

	m.publish(rules.Event{Type: rules.EventCardPlaced, Side: act.Side, CardID: c.InstanceID, Amount: act.SlotIndex})
	if act.FaceDown {
		m.say("event/placed_face_down", h.Name(), act.SlotIndex+1)
	} else {
		m.say("event/placed", h.Name(), c.Name, act.SlotIndex+1)
		// Entering the field face-up emits the on-enter signal.
		m.fireEffect(act.Side, c, card.TriggerOnSummon)
	}
	return true, nil
}

// placeTributes validates the tribute payment for a summon that demands one:
// exactly SacCost distinct front slots of the acting side, each occupied.
// Validation only; the tributes fall when the summon commits.
func (m *Match) placeTributes(act Action, c *card.Card) ([]*card.Card, error) {
	need := c.SacCost()
	if need == 0 {
		return nil, nil
	}
	if len(act.Sacrifices) != need {
		return nil, reject(ErrSacrificeNeeded, c.Name, need)
	}
	tributes := make([]*card.Card, 0, need)
	seen := make(map[int]bool, need)
	for _, idx := range act.Sacrifices {
		if seen[idx] {
			return nil, reject(ErrInvalidSlot, idx)
		}
		seen[idx] = true
		tcol, err := m.arena.At(act.Side, idx)
		if err != nil {
			return nil, err
		}
		t := tcol.Top()
		if t == nil {
			return nil, reject(ErrSlotEmpty, idx)
		}
		tributes = append(tributes, t)
	}
	return tributes, nil
}

func containsCard(list []*card.Card, c *card.Card) bool {
	for _, cur := range list {
		if cur == c {
			return true
		}
	}
	return false
}

// applyEquip attaches an evogear from hand to a front-slot senshi.
func (m *Match) applyEquip(act Action) (bool, error) {
	h := m.hands[act.Side]
	c, err := h.HandCard(act.HandIndex)
	if err != nil {
		return false, err
	}
	if !c.IsEvogear() {
		return false, reject(ErrNotEvogear, c.Name)
	}
	if !c.Flags.Available {
		return false, reject(ErrUnavailable, c.Name)
	}
	if err := h.CheckCosts(c); err != nil {
		return false, err
	}
	col, err := m.arena.At(act.Side, act.SlotIndex)
	if err != nil {
		return false, err
	}
	target := col.Top()
	if target == nil {
		return false, reject(ErrSlotEmpty, act.SlotIndex)
	}
	if len(target.Equipments) >= maxEquipments {
		return false, reject(ErrEquipLimit, target.Name)
	}

	h.PayCosts(c)
	h.TakeFromHand(c)
	c.Zone = card.ZoneSupport
	c.Slot = act.SlotIndex
	c.Flags.Solid = true
	target.Equipments = append(target.Equipments, c)

	m.publish(rules.Event{Type: rules.EventCardEquipped, Side: act.Side, CardID: c.InstanceID, TargetID: target.InstanceID})
	m.say("event/equipped", h.Name(), c.Name, target.Name)
	m.fireEffect(act.Side, c, card.TriggerOnSummon)
	return true, nil
}

// applyPlaceField replaces the arena's active field card. Always legal
// regardless of slot state; the previous field goes to its owner's graveyard,
// or back to its owner's hand when flagged persistent.
func (m *Match) applyPlaceField(act Action) (bool, error) {
	h := m.hands[act.Side]
	c, err := h.HandCard(act.HandIndex)
	if err != nil {
		return false, err
	}
	if !c.IsField() {
		return false, reject(ErrNotField, c.Name)
	}
	if !c.Flags.Available {
		return false, reject(ErrUnavailable, c.Name)
	}

	prevOwner := m.arena.FieldOwner()
	h.TakeFromHand(c)
	c.Zone = card.ZoneFront
	c.Slot = -1
	c.Flags.Solid = true
	if prev := m.arena.SetField(act.Side, c); prev != nil {
		if prev.Persistent {
			m.hands[prevOwner].ReturnToHand(prev)
		} else {
			m.hands[prevOwner].ToGraveyard(prev)
		}
	}

	m.publish(rules.Event{Type: rules.EventFieldChanged, Side: act.Side, CardID: c.InstanceID})
	m.say("event/field_changed", h.Name(), c.Name)
	return true, nil
}

// applyFlip turns a face-down card face-up, or toggles an open card between
// attack and defense stance. No cost.
func (m *Match) applyFlip(act Action) (bool, error) {
	col, err := m.arena.At(act.Side, act.SlotIndex)
	if err != nil {
		return false, err
	}
	c := col.Top()
	if c == nil {
		return false, reject(ErrSlotEmpty, act.SlotIndex)
	}

	if c.Flags.FaceDown {
		c.Flags.FaceDown = false
		c.Flags.Defending = false
		m.publish(rules.Event{Type: rules.EventCardFlipped, Side: act.Side, CardID: c.InstanceID})
		m.say("event/flipped_up", m.hands[act.Side].Name(), c.Name)
		m.fireEffect(act.Side, c, card.TriggerOnFlip)
		return false, nil
	}

	c.Flags.Defending = !c.Flags.Defending
	m.publish(rules.Event{Type: rules.EventCardFlipped, Side: act.Side, CardID: c.InstanceID})
	if c.Flags.Defending {
		m.say("event/stance_defense", m.hands[act.Side].Name(), c.Name)
	} else {
		m.say("event/stance_attack", m.hands[act.Side].Name(), c.Name)
	}
	return false, nil
}

// applyPromote moves a support card to the front of its column.
func (m *Match) applyPromote(act Action) (bool, error) {
	c, err := m.arena.Promote(act.Side, act.SlotIndex)
	if err != nil {
		return false, err
	}
	m.publish(rules.Event{Type: rules.EventCardPromoted, Side: act.Side, CardID: c.InstanceID})
	m.say("event/promoted", m.hands[act.Side].Name(), c.Name)
	return false, nil
}

// applySacrifice removes an owned front card to the graveyard at half its
// normal HP/MP cost, floored.
func (m *Match) applySacrifice(act Action) (bool, error) {
	h := m.hands[act.Side]
	col, err := m.arena.At(act.Side, act.SlotIndex)
	if err != nil {
		return false, err
	}
	c := col.Top()
	if c == nil {
		return false, reject(ErrSlotEmpty, act.SlotIndex)
	}
	if err := h.CheckHalfCosts(c); err != nil {
		return false, err
	}

	h.PayHalfCosts(c)
	m.arena.Remove(c)
	for _, eq := range c.Equipments {
		h.ToGraveyard(eq)
	}
	h.ToGraveyard(c)

	m.publish(rules.Event{Type: rules.EventCardSacrificed, Side: act.Side, CardID: c.InstanceID})
	m.say("event/sacrificed", h.Name(), c.Name)
	return false, nil
}

// applyDiscard moves a hand card into the pending-discard buffer.
func (m *Match) applyDiscard(act Action) (bool, error) {
	h := m.hands[act.Side]
	c, err := h.HandCard(act.HandIndex)
	if err != nil {
		return false, err
	}
	h.ToDiscard(c)
	m.publish(rules.Event{Type: rules.EventCardDiscarded, Side: act.Side, CardID: c.InstanceID})
	m.say("event/discarded", h.Name(), c.Name)
	return true, nil
}

// applyDraw consumes one manual draw from the per-turn budget.
func (m *Match) applyDraw(act Action) (bool, error) {
	h := m.hands[act.Side]
	c, err := h.UseDraw()
	if err != nil {
		return false, err
	}
	m.publish(rules.Event{Type: rules.EventCardDrawn, Side: act.Side, CardID: c.InstanceID})
	m.say("event/drew", h.Name())
	return true, nil
}

// applyAttack resolves one attack from a front card against an opposing
// slot, or directly against the opposing player.
func (m *Match) applyAttack(act Action) (bool, error) {
	h := m.hands[act.Side]
	if h.Locks().Active(locks.KindAttack) {
		return false, reject(ErrAttackLocked)
	}
	col, err := m.arena.At(act.Side, act.SlotIndex)
	if err != nil {
		return false, err
	}
	attacker := col.Top()
	if attacker == nil {
		return false, reject(ErrSlotEmpty, act.SlotIndex)
	}
	if attacker.Flags.FaceDown {
		return false, reject(ErrFaceDownAttack, act.SlotIndex)
	}
	if attacker.Flags.Summoned {
		return false, reject(ErrSummonedTurn, attacker.Name)
	}
	if !attacker.Flags.Available {
		return false, reject(ErrAlreadyActed, attacker.Name)
	}

	enemy := act.Side.Other()
	var defender *card.Card
	defenderSupport := false
	if act.TargetSlot >= 0 {
		tcol, err := m.arena.At(enemy, act.TargetSlot)
		if err != nil {
			return false, err
		}
		switch {
		case tcol.HasTop():
			defender = tcol.Top()
		case tcol.HasBottom():
			defender = tcol.Bottom()
			defenderSupport = true
		}
		// An empty target column is an undefended opening: direct attack.
	} else if !m.arena.HasUndefendedSlot(enemy) {
		return false, reject(ErrNoOpening)
	}

	atkPct, defPct := m.arena.CombatModifiers()
	out := ResolveCombat(attacker, defender, defenderSupport, atkPct, defPct)

	attacker.Flags.Available = false
	if defender != nil && !defenderSupport && defender.Flags.FaceDown {
		// The attack reveals a face-down defender.
		defender.Flags.FaceDown = false
		defender.Flags.Defending = true
	}

	m.publish(rules.Event{Type: rules.EventAttackDeclared, Side: act.Side, CardID: attacker.InstanceID, Amount: out.AttackValue})
	switch {
	case out.Clash:
		m.say("event/clash", attacker.Name, defender.Name)
		m.publish(rules.Event{Type: rules.EventClash, Side: act.Side, CardID: attacker.InstanceID, TargetID: defender.InstanceID})
	case defender == nil:
		m.say("event/direct_attack", h.Name(), attacker.Name, out.DamageToDefender)
	case defenderSupport:
		m.say("event/support_crushed", attacker.Name, defender.Name, out.DamageToDefender)
	case out.DefenderDestroyed:
		m.say("event/attack_won", attacker.Name, defender.Name, out.DamageToDefender)
	case out.AttackerDestroyed:
		m.say("event/attack_failed", attacker.Name, defender.Name, out.DamageToAttacker)
	}

	if out.DefenderDestroyed {
		m.destroy(enemy, defender)
	}
	if out.AttackerDestroyed {
		m.destroy(act.Side, attacker)
	} else {
		m.fireEffect(act.Side, attacker, card.TriggerOnAttack)
	}
	if out.DamageToDefender > 0 {
		m.hands[enemy].ModHP(-out.DamageToDefender)
		m.publish(rules.Event{Type: rules.EventLifeChanged, Side: enemy, Amount: -out.DamageToDefender})
		if out.Direct {
			m.publish(rules.Event{Type: rules.EventDirectDamage, Side: enemy, Amount: out.DamageToDefender})
		}
	}
	if out.DamageToAttacker > 0 {
		m.hands[act.Side].ModHP(-out.DamageToAttacker)
		m.publish(rules.Event{Type: rules.EventLifeChanged, Side: act.Side, Amount: -out.DamageToAttacker})
	}
	return false, nil
}

// applyCombat advances PLAN to COMBAT. Idempotent: a second call without an
// intervening turn change is a no-op.
func (m *Match) applyCombat(act Action) (bool, error) {
	if m.turns.AdvancePhase() {
		m.publish(rules.Event{Type: rules.EventPhaseChanged, Side: act.Side})
		m.say("event/combat_phase", m.hands[act.Side].Name())
	}
	return false, nil
}

// applyNext ends the turn.
func (m *Match) applyNext(act Action) (bool, error) {
	m.endTurn()
	return true, nil
}

// applyForfeit implements the two-step surrender: the first press arms the
// confirmation flag, the second ends the match as the requester's loss.
func (m *Match) applyForfeit(act Action) (bool, error) {
	h := m.hands[act.Side]
	if h.ArmForfeit() {
		m.publish(rules.Event{Type: rules.EventForfeitArmed, Side: act.Side})
		m.say("event/forfeit_armed", h.Name())
		return false, nil
	}
	m.say("event/forfeited", h.Name())
	m.finishLoss(act.Side, OutcomeForfeit)
	return false, nil
}
