package game

import (
	"github.com/shoukanhq/shoukan-server-go/internal/game/card"
	"github.com/shoukanhq/shoukan-server-go/internal/game/locks"
	"github.com/shoukanhq/shoukan-server-go/internal/game/rules"
)

// SlotColumn is one battlefield position: at most one front card with at
// most one support card underneath it, plus an optional placement lock.
type SlotColumn struct {
	Side  rules.Side
	Index int

	top    *card.Card
	bottom *card.Card
	lock   locks.Lock
}

// Top returns the front card, or nil.
func (sc *SlotColumn) Top() *card.Card { return sc.top }

// Bottom returns the support card, or nil.
func (sc *SlotColumn) Bottom() *card.Card { return sc.bottom }

// HasTop reports whether the front position is occupied.
func (sc *SlotColumn) HasTop() bool { return sc.top != nil }

// HasBottom reports whether the support position is occupied.
func (sc *SlotColumn) HasBottom() bool { return sc.bottom != nil }

// Locked reports whether the column currently rejects placement.
func (sc *SlotColumn) Locked() bool { return sc.lock.Active() }

// ApplyLock installs a placement lock for the given number of owner turns,
// or permanently with locks.Permanent.
func (sc *SlotColumn) ApplyLock(turns int) {
	if turns == 0 {
		return
	}
	if sc.lock.Turns == locks.Permanent {
		return
	}
	if turns == locks.Permanent || turns > sc.lock.Turns {
		sc.lock = locks.Lock{Turns: turns}
	}
}

// Arena is the battlefield: both sides' slot columns plus the single shared
// field-modifier card. Created once at match start, mutated for the whole
// match, never recreated.
type Arena struct {
	columns map[rules.Side][]*SlotColumn

	field      *card.Card
	fieldOwner rules.Side
}

// NewArena creates an arena with the given number of columns per side.
func NewArena(columnsPerSide int) *Arena {
	a := &Arena{columns: make(map[rules.Side][]*SlotColumn, 2)}
	for _, side := range rules.Sides {
		cols := make([]*SlotColumn, columnsPerSide)
		for i := range cols {
			cols[i] = &SlotColumn{Side: side, Index: i}
		}
		a.columns[side] = cols
	}
	return a
}

// Columns returns one side's slot columns in order.
func (a *Arena) Columns(side rules.Side) []*SlotColumn { return a.columns[side] }

// At returns the column at the given index for a side.
func (a *Arena) At(side rules.Side, index int) (*SlotColumn, error) {
	cols := a.columns[side]
	if index < 0 || index >= len(cols) {
		return nil, reject(ErrInvalidSlot, index)
	}
	return cols[index], nil
}

// Field returns the active field-modifier card, or nil.
func (a *Arena) Field() *card.Card { return a.field }

// FieldOwner returns the side that placed the active field card.
func (a *Arena) FieldOwner() rules.Side { return a.fieldOwner }

// SetTop places a card into a column's front position. The position must be
// free and the column unlocked; the card's slot back-reference and solid
// flag are updated together with the slot.
func (a *Arena) SetTop(side rules.Side, index int, c *card.Card) error {
	col, err := a.At(side, index)
	if err != nil {
		return err
	}
	if col.Locked() {
		return reject(ErrSlotLocked, index)
	}
	if col.HasTop() {
		return reject(ErrSlotOccupied, index)
	}
	col.top = c
	c.Zone = card.ZoneFront
	c.Slot = index
	c.Flags.Solid = true
	return nil
}

// SetBottom places a card into a column's support position.
func (a *Arena) SetBottom(side rules.Side, index int, c *card.Card) error {
	col, err := a.At(side, index)
	if err != nil {
		return err
	}
	if col.Locked() {
		return reject(ErrSlotLocked, index)
	}
	if col.HasBottom() {
		return reject(ErrSlotOccupied, index)
	}
	col.bottom = c
	c.Zone = card.ZoneSupport
	c.Slot = index
	c.Flags.Solid = true
	return nil
}

// Promote moves a column's support card to the front position. Rejected
// unless the front is empty and a support card exists.
func (a *Arena) Promote(side rules.Side, index int) (*card.Card, error) {
	col, err := a.At(side, index)
	if err != nil {
		return nil, err
	}
	if col.HasTop() || !col.HasBottom() {
		return nil, reject(ErrCannotPromote, index)
	}
	c := col.bottom
	col.bottom = nil
	col.top = c
	c.Zone = card.ZoneFront
	return c, nil
}

// Remove detaches a card from its slot, clearing the bidirectional
// references. The caller then moves the card to its next zone.
func (a *Arena) Remove(c *card.Card) {
	if !c.OnField() || c.Slot < 0 {
		return
	}
	for _, side := range rules.Sides {
		cols := a.columns[side]
		if c.Slot >= len(cols) {
			continue
		}
		col := cols[c.Slot]
		if col.top == c {
			col.top = nil
			c.Slot = -1
			return
		}
		if col.bottom == c {
			col.bottom = nil
			c.Slot = -1
			return
		}
	}
}

// SetField replaces the active field card and returns the previous one. The
// caller routes it to its next zone: graveyard normally, back to its owner's
// hand when flagged persistent. A card must never be left without a zone.
func (a *Arena) SetField(side rules.Side, c *card.Card) (previous *card.Card) {
	previous = a.field
	a.field = c
	a.fieldOwner = side
	return previous
}

// CombatModifiers returns the active field's attack and defense percentages
// (100/100 when no field is active). Multipliers apply at combat-resolution
// time only.
func (a *Arena) CombatModifiers() (atkPct, defPct int) {
	if a.field == nil {
		return 100, 100
	}
	atkPct, defPct = a.field.FieldAttackPct, a.field.FieldDefensePct
	if atkPct <= 0 {
		atkPct = 100
	}
	if defPct <= 0 {
		defPct = 100
	}
	return atkPct, defPct
}

// HasUndefendedSlot reports whether a side has at least one column without a
// front card, which makes direct attacks against that side legal.
func (a *Arena) HasUndefendedSlot(side rules.Side) bool {
	for _, col := range a.columns[side] {
		if !col.HasTop() {
			return true
		}
	}
	return false
}

// FrontCards returns all front cards for a side.
func (a *Arena) FrontCards(side rules.Side) []*card.Card {
	var out []*card.Card
	for _, col := range a.columns[side] {
		if col.top != nil {
			out = append(out, col.top)
		}
	}
	return out
}

// TickLocks advances one side's column locks by one owner turn.
func (a *Arena) TickLocks(side rules.Side) {
	for _, col := range a.columns[side] {
		col.lock = col.lock.Tick()
	}
}
