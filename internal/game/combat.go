package game

import (
	"github.com/shoukanhq/shoukan-server-go/internal/game/card"
)

// CombatOutcome is the result of resolving one attack. It names what was
// destroyed and what player damage each side takes; the match controller
// applies it through the hands' clamped modifiers.
type CombatOutcome struct {
	Direct bool // attack connected with the defending player directly
	Clash  bool // attacker and defender values were equal

	AttackerDestroyed bool
	DefenderDestroyed bool

	// Player damage to the defending side's HP.
	DamageToDefender int
	// Player damage to the attacking side's own HP (failed attack shortfall).
	DamageToAttacker int

	AttackValue  int
	DefenseValue int
}

// ResolveCombat computes the outcome of an attack. It is a pure function of
// its inputs and mutates nothing.
//
// atkPct and defPct are the active field multipliers in percent (100 =
// neutral), applied at resolution time.
//
// Rules:
//   - No defender: the full attack value lands on the defending player.
//   - Support defender: destroyed outright, attack counts as a direct hit.
//   - Front defender: attack is compared against the defender's active value
//     (defense while defending or face-down, attack otherwise). A greater
//     attack destroys the defender, with excess carrying through only against
//     a non-defending card. A lesser attack destroys the attacker and the
//     shortfall damages the attacking side's own HP. Equal values destroy
//     both cards with no player damage.
func ResolveCombat(attacker, defender *card.Card, defenderIsSupport bool, atkPct, defPct int) CombatOutcome {
	atk := applyPct(attacker.ActiveAttack(), atkPct)

	if defender == nil {
		return CombatOutcome{
			Direct:           true,
			DamageToDefender: atk,
			AttackValue:      atk,
		}
	}

	if defenderIsSupport {
		// Support cards cannot block: the card dies and the hit goes through.
		return CombatOutcome{
			Direct:            true,
			DefenderDestroyed: true,
			DamageToDefender:  atk,
			AttackValue:       atk,
		}
	}

	def := defender.ActiveValue()
	if defender.Flags.Defending || defender.Flags.FaceDown {
		def = applyPct(def, defPct)
	} else {
		def = applyPct(def, atkPct)
	}

	out := CombatOutcome{AttackValue: atk, DefenseValue: def}
	switch {
	case atk > def:
		out.DefenderDestroyed = true
		if !defender.Flags.Defending && !defender.Flags.FaceDown {
			out.DamageToDefender = atk - def
		}
	case atk < def:
		out.AttackerDestroyed = true
		out.DamageToAttacker = def - atk
	default:
		out.Clash = true
		out.AttackerDestroyed = true
		out.DefenderDestroyed = true
	}
	return out
}

func applyPct(v, pct int) int {
	if pct == 100 || pct <= 0 {
		return v
	}
	return v * pct / 100
}
