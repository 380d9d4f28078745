package rules

import "fmt"

// Phase represents the two sub-phases of a Shoukan turn.
type Phase int

const (
	PhasePlan Phase = iota
	PhaseCombat
)

var phaseNames = map[Phase]string{
	PhasePlan:   "PLAN",
	PhaseCombat: "COMBAT",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Side identifies one of the two seats in a match.
type Side int

const (
	SideTop Side = iota
	SideBottom
)

var sideNames = map[Side]string{
	SideTop:    "TOP",
	SideBottom: "BOTTOM",
}

func (s Side) String() string {
	if name, ok := sideNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SIDE_%d", int(s))
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideTop {
		return SideBottom
	}
	return SideTop
}

// Sides lists both seats in the fixed evaluation order used for win checks.
var Sides = []Side{SideTop, SideBottom}

// TurnManager tracks the turn number, active side and current phase.
// In single-player mode the same seat keeps the turn forever.
type TurnManager struct {
	turnNumber   int
	activeSide   Side
	phase        Phase
	singlePlayer bool
}

// NewTurnManager creates a turn manager starting at turn 1, PLAN phase.
func NewTurnManager(first Side, singlePlayer bool) *TurnManager {
	return &TurnManager{
		turnNumber:   1,
		activeSide:   first,
		phase:        PhasePlan,
		singlePlayer: singlePlayer,
	}
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int { return tm.turnNumber }

// ActiveSide returns the side whose turn it is.
func (tm *TurnManager) ActiveSide() Side { return tm.activeSide }

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase { return tm.phase }

// SinglePlayer reports whether the match is a self-match.
func (tm *TurnManager) SinglePlayer() bool { return tm.singlePlayer }

// AdvancePhase moves from PLAN to COMBAT. Calling it while already in COMBAT
// is a no-op; the return value reports whether the phase actually changed.
func (tm *TurnManager) AdvancePhase() bool {
	if tm.phase == PhaseCombat {
		return false
	}
	tm.phase = PhaseCombat
	return true
}

// EndTurn rotates the active side (derived from turn parity in two-player
// matches), increments the turn number and re-enters PLAN.
func (tm *TurnManager) EndTurn() {
	tm.turnNumber++
	if !tm.singlePlayer {
		tm.activeSide = tm.activeSide.Other()
	}
	tm.phase = PhasePlan
}
