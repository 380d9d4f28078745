// Package locale resolves stable message keys into display text. The engine
// only ever produces keys plus positional arguments; all wording lives here.
package locale

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Bundle maps message keys to fmt templates.
type Bundle struct {
	messages map[string]string
}

// NewBundle wraps a key/template map.
func NewBundle(messages map[string]string) *Bundle {
	if messages == nil {
		messages = map[string]string{}
	}
	return &Bundle{messages: messages}
}

// LoadBundle reads a YAML file of key/template pairs, layered over the
// built-in defaults so partial bundles stay usable.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locale bundle %s: %w", path, err)
	}
	loaded := map[string]string{}
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse locale bundle %s: %w", path, err)
	}
	merged := make(map[string]string, len(defaultMessages)+len(loaded))
	for k, v := range defaultMessages {
		merged[k] = v
	}
	for k, v := range loaded {
		merged[k] = v
	}
	return NewBundle(merged), nil
}

// Default returns the built-in English bundle.
func Default() *Bundle {
	merged := make(map[string]string, len(defaultMessages))
	for k, v := range defaultMessages {
		merged[k] = v
	}
	return NewBundle(merged)
}

// Localize resolves a key with positional arguments. Unknown keys fall back
// to the key itself so missing translations never hide information.
func (b *Bundle) Localize(key string, args ...any) string {
	tpl, ok := b.messages[key]
	if !ok {
		if len(args) == 0 {
			return key
		}
		return fmt.Sprintf("%s %v", key, args)
	}
	if len(args) == 0 {
		return tpl
	}
	return fmt.Sprintf(tpl, args...)
}

var defaultMessages = map[string]string{
	// Rejections
	"error/match_closed":           "This match is already over.",
	"error/not_your_turn":          "It is not your turn.",
	"error/wrong_phase":            "You cannot do that during the %s phase.",
	"error/invalid_hand_index":     "There is no card at hand position %d.",
	"error/invalid_slot_index":     "There is no slot %d.",
	"error/not_a_senshi":           "%s is not a senshi.",
	"error/not_an_evogear":         "%s is not an evogear.",
	"error/not_a_field":            "%s is not a field card.",
	"error/card_unavailable":       "%s cannot be used right now.",
	"error/insufficient_mp":        "You need %d MP but only have %d.",
	"error/insufficient_hp":        "That would cost %d HP but you only have %d.",
	"error/slot_occupied":          "Slot %d is already occupied.",
	"error/slot_locked":            "Slot %d is locked.",
	"error/slot_empty":             "Slot %d is empty.",
	"error/equip_limit":            "%s already carries the maximum equipment.",
	"error/sacrifice_needed":       "Summoning %s demands %d sacrifices from your field.",
	"error/no_draws_left":          "You have no draws left this turn.",
	"error/deck_empty":             "Your deck is empty.",
	"error/no_opening":             "There is no opening for a direct attack.",
	"error/summoned_this_turn":     "%s was summoned this turn and cannot attack yet.",
	"error/summon_locked":          "You cannot place cards while your summons are locked.",
	"error/attack_locked":          "You cannot attack while your attacks are locked.",
	"error/face_down_cannot_attack": "A face-down card cannot attack.",
	"error/cannot_promote":         "Slot %d has nothing to promote.",
	"error/already_acted":          "%s has already acted this turn.",
	"error/fatal":                  "Something went wrong; the action was not applied.",

	// Gateway
	"error/auth_required":  "Authentication required.",
	"error/unknown_op":     "Unknown operation %q.",
	"error/unknown_action": "Unknown action %q.",

	// Events
	"event/placed":           "%s placed %s on slot %d.",
	"event/placed_face_down": "%s placed a card face-down on slot %d.",
	"event/equipped":         "%s equipped %s to %s.",
	"event/field_changed":    "%s changed the field to %s.",
	"event/flipped_up":       "%s flipped %s face-up.",
	"event/stance_defense":   "%s switched %s to defense.",
	"event/stance_attack":    "%s switched %s to attack.",
	"event/promoted":         "%s promoted %s to the front.",
	"event/sacrificed":       "%s sacrificed %s.",
	"event/discarded":        "%s discarded %s.",
	"event/drew":             "%s drew a card.",
	"event/clash":            "%s and %s clashed and were both destroyed.",
	"event/direct_attack":    "%s attacked directly with %s for %d damage.",
	"event/support_crushed":  "%s crushed the support %s and hit for %d damage.",
	"event/attack_won":       "%s destroyed %s (%d damage carried through).",
	"event/attack_failed":    "%s fell to %s; the failed attack cost its owner %d HP.",
	"event/combat_phase":     "%s entered the combat phase.",
	"event/turn_started":     "%s begins turn %d.",
	"event/forfeit_armed":    "%s is about to forfeit. Repeat to confirm.",
	"event/forfeited":        "%s forfeited the match.",
	"event/timeout":          "%s ran out of time.",
	"event/revival":          "%s refused to fall and stands at 1 HP!",
	"event/defeated":         "%s has been defeated.",
}
