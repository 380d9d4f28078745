package card

import (
	"fmt"
	"sync"
)

// Trigger identifies the moment an effect hook fires.
type Trigger int

const (
	TriggerOnSummon Trigger = iota
	TriggerOnFlip
	TriggerOnDefeat
	TriggerOnAttack
	TriggerOnTurnStart
)

var triggerNames = map[Trigger]string{
	TriggerOnSummon:    "ON_SUMMON",
	TriggerOnFlip:      "ON_FLIP",
	TriggerOnDefeat:    "ON_DEFEAT",
	TriggerOnAttack:    "ON_ATTACK",
	TriggerOnTurnStart: "ON_TURN_START",
}

func (t Trigger) String() string {
	if name, ok := triggerNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TRIGGER_%d", int(t))
}

// EffectContext is the uniform surface an effect acts through. The match
// controller populates the callbacks; effects never reach into match state
// directly.
type EffectContext struct {
	Trigger Trigger
	Self    *Card

	OwnerHP func(delta int)
	OwnerMP func(delta int)
	EnemyHP func(delta int)
	Draw    func(n int)
	Report  func(format string, args ...any)
}

// Effect is a scripted card hook. Effects are best-effort: a returned error
// (or a panic, recovered by the caller) skips the effect's consequences but
// never undoes the structural action that triggered it.
type Effect func(*EffectContext) error

var (
	effectsMu sync.RWMutex
	effects   = map[string]Effect{}
)

// RegisterEffect binds an effect ID to its implementation. Later
// registrations of the same ID replace earlier ones.
func RegisterEffect(id string, fn Effect) {
	if id == "" || fn == nil {
		return
	}
	effectsMu.Lock()
	defer effectsMu.Unlock()
	effects[id] = fn
}

// LookupEffect resolves an effect ID to its implementation.
func LookupEffect(id string) (Effect, bool) {
	effectsMu.RLock()
	defer effectsMu.RUnlock()
	fn, ok := effects[id]
	return fn, ok
}

func init() {
	// Baseline effect library. Catalog files reference these by ID.
	RegisterEffect("drain/on-summon", func(ctx *EffectContext) error {
		if ctx.Trigger != TriggerOnSummon {
			return nil
		}
		ctx.EnemyHP(-100)
		ctx.OwnerHP(100)
		ctx.Report("%s drains 100 HP on summon", ctx.Self.Name)
		return nil
	})

	RegisterEffect("draw/on-summon", func(ctx *EffectContext) error {
		if ctx.Trigger != TriggerOnSummon {
			return nil
		}
		ctx.Draw(1)
		ctx.Report("%s lets its owner draw a card", ctx.Self.Name)
		return nil
	})

	RegisterEffect("regen/turn-start", func(ctx *EffectContext) error {
		if ctx.Trigger != TriggerOnTurnStart {
			return nil
		}
		ctx.OwnerHP(50)
		return nil
	})

	RegisterEffect("degen/turn-start", func(ctx *EffectContext) error {
		if ctx.Trigger != TriggerOnTurnStart {
			return nil
		}
		ctx.OwnerHP(-50)
		return nil
	})

	RegisterEffect("sting/on-defeat", func(ctx *EffectContext) error {
		if ctx.Trigger != TriggerOnDefeat {
			return nil
		}
		ctx.EnemyHP(-200)
		ctx.Report("%s stings for 200 as it falls", ctx.Self.Name)
		return nil
	})
}
