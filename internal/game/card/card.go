package card

import (
	"fmt"

	"github.com/google/uuid"
)

// Class represents the broad category a card belongs to.
type Class int

const (
	ClassSenshi  Class = iota // creature, placeable on a front or support slot
	ClassEvogear              // equipment, attaches to a front-slot senshi
	ClassField                // field modifier, one active per arena
)

var classNames = map[Class]string{
	ClassSenshi:  "SENSHI",
	ClassEvogear: "EVOGEAR",
	ClassField:   "FIELD",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CLASS_%d", int(c))
}

// Zone identifies the single zone a card currently occupies.
// A card is a member of exactly one zone at any time.
type Zone int

const (
	ZoneDeck Zone = iota
	ZoneHand
	ZoneFront
	ZoneSupport
	ZoneDiscard
	ZoneGraveyard
)

var zoneNames = map[Zone]string{
	ZoneDeck:      "DECK",
	ZoneHand:      "HAND",
	ZoneFront:     "FRONT",
	ZoneSupport:   "SUPPORT",
	ZoneDiscard:   "DISCARD",
	ZoneGraveyard: "GRAVEYARD",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("ZONE_%d", int(z))
}

// Template is the immutable per-catalog definition a card instance is built from.
type Template struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Class         Class  `yaml:"-"`
	ClassName     string `yaml:"class"`
	ManaCost      int    `yaml:"mana_cost"`
	BloodCost     int    `yaml:"blood_cost"`
	SacrificeCost int    `yaml:"sacrifice_cost"`
	Attack        int    `yaml:"attack"`
	Defense       int    `yaml:"defense"`
	EffectID      string `yaml:"effect,omitempty"`

	// Field-only combat modifiers, in percent (100 = neutral).
	FieldAttackPct  int `yaml:"field_attack_pct,omitempty"`
	FieldDefensePct int `yaml:"field_defense_pct,omitempty"`

	// Persistent field cards survive being replaced instead of going to the graveyard.
	Persistent bool `yaml:"persistent,omitempty"`
}

// Flags holds the mutable per-match booleans of a card instance.
type Flags struct {
	Available bool // may be played from hand, or may still act this turn on the field
	Solid     bool // field-bound; exempt from hand-capacity pruning
	FaceDown  bool
	Defending bool
	Summoned  bool // entered the field this turn; cannot attack yet
}

// Card is a single per-match instance of a template. Instances are never
// shared across matches; they are mutated in place as they move between zones.
type Card struct {
	InstanceID string
	Template

	Flags Flags
	Zone  Zone
	Slot  int // column index when on the field, -1 otherwise

	// Stat adjustments from equipment and effects.
	AttackMod  int
	DefenseMod int
	CostMod    int

	// Equipment attached to this senshi while it holds a front slot.
	Equipments []*Card
}

// New instantiates a template into a fresh deck-zone card.
func New(tpl Template) *Card {
	return &Card{
		InstanceID: uuid.NewString(),
		Template:   tpl,
		Flags:      Flags{Available: true},
		Zone:       ZoneDeck,
		Slot:       -1,
	}
}

// Reset clears all runtime state so the card can be recycled between zones.
// The template is untouched.
func (c *Card) Reset() {
	c.Flags = Flags{Available: true}
	c.Slot = -1
	c.AttackMod = 0
	c.DefenseMod = 0
	c.CostMod = 0
	c.Equipments = nil
}

// IsSenshi reports whether the card is a creature.
func (c *Card) IsSenshi() bool { return c.Class == ClassSenshi }

// IsEvogear reports whether the card is equipment.
func (c *Card) IsEvogear() bool { return c.Class == ClassEvogear }

// IsField reports whether the card is a field modifier.
func (c *Card) IsField() bool { return c.Class == ClassField }

// OnField reports whether the card currently occupies a battlefield slot.
func (c *Card) OnField() bool { return c.Zone == ZoneFront || c.Zone == ZoneSupport }

// ActiveAttack returns the card's offensive value including equipment and modifiers.
func (c *Card) ActiveAttack() int {
	v := c.Attack + c.AttackMod
	for _, eq := range c.Equipments {
		v += eq.Attack
	}
	if v < 0 {
		return 0
	}
	return v
}

// ActiveDefense returns the card's defensive value including equipment and modifiers.
func (c *Card) ActiveDefense() int {
	v := c.Defense + c.DefenseMod
	for _, eq := range c.Equipments {
		v += eq.Defense
	}
	if v < 0 {
		return 0
	}
	return v
}

// ActiveValue returns the value a defender contributes to combat: its defense
// while defending or face-down, its attack otherwise.
func (c *Card) ActiveValue() int {
	if c.Flags.Defending || c.Flags.FaceDown {
		return c.ActiveDefense()
	}
	return c.ActiveAttack()
}
