package game

import (
	"errors"
	"fmt"
)

// Locale keys for every recoverable input rejection. The engine never emits
// display text for these; callers resolve the key through a Localizer.
const (
	ErrMatchClosed     = "error/match_closed"
	ErrNotYourTurn     = "error/not_your_turn"
	ErrWrongPhase      = "error/wrong_phase"
	ErrInvalidHand     = "error/invalid_hand_index"
	ErrInvalidSlot     = "error/invalid_slot_index"
	ErrNotSenshi       = "error/not_a_senshi"
	ErrNotEvogear      = "error/not_an_evogear"
	ErrNotField        = "error/not_a_field"
	ErrUnavailable     = "error/card_unavailable"
	ErrInsufficientMP  = "error/insufficient_mp"
	ErrInsufficientHP  = "error/insufficient_hp"
	ErrSlotOccupied    = "error/slot_occupied"
	ErrSlotLocked      = "error/slot_locked"
	ErrSlotEmpty       = "error/slot_empty"
	ErrEquipLimit      = "error/equip_limit"
	ErrSacrificeNeeded = "error/sacrifice_needed"
	ErrNoDrawsLeft     = "error/no_draws_left"
	ErrDeckEmpty       = "error/deck_empty"
	ErrNoOpening       = "error/no_opening"
	ErrSummonedTurn    = "error/summoned_this_turn"
	ErrSummonLocked    = "error/summon_locked"
	ErrAttackLocked    = "error/attack_locked"
	ErrFaceDownAttack  = "error/face_down_cannot_attack"
	ErrCannotPromote   = "error/cannot_promote"
	ErrAlreadyActed    = "error/already_acted"
	ErrFatal           = "error/fatal"
)

// Reject is a recoverable input rejection. It carries a locale key plus
// positional arguments and guarantees the triggering action mutated nothing.
type Reject struct {
	Key  string
	Args []any
}

func (r *Reject) Error() string {
	if len(r.Args) == 0 {
		return r.Key
	}
	return fmt.Sprintf("%s %v", r.Key, r.Args)
}

func reject(key string, args ...any) error {
	return &Reject{Key: key, Args: args}
}

// AsReject unwraps an error into a Reject, if it is one.
func AsReject(err error) (*Reject, bool) {
	var r *Reject
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
