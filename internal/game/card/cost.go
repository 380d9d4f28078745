package card

// MPCost returns the mana cost to play the card, floored at zero.
func (c *Card) MPCost() int {
	v := c.ManaCost + c.CostMod
	if v < 0 {
		return 0
	}
	return v
}

// HPCost returns the blood cost to play the card. Blood costs are never
// reduced below zero by modifiers.
func (c *Card) HPCost() int {
	if c.BloodCost < 0 {
		return 0
	}
	return c.BloodCost
}

// SacCost returns how many on-field sacrifices the card demands when played.
func (c *Card) SacCost() int {
	if c.SacrificeCost < 0 {
		return 0
	}
	return c.SacrificeCost
}

// HalfCost computes the discounted cost used when a card is sacrificed from
// the field: half its normal cost, floored.
func HalfCost(v int) int {
	if v <= 0 {
		return 0
	}
	return v / 2
}
