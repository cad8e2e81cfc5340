package crime

import (
	"fmt"
	"time"

	"github.com/undercity/undercity-engine/internal/domain/errors"
)

// Catalog holds the crime definitions for one guild. Admin setters
// validate before mutating; a rejected update leaves the catalog
// untouched.
type Catalog struct {
	defs map[ID]Definition
}

// NewCatalog builds a catalog seeded with the builtin crime table.
func NewCatalog() *Catalog {
	return &Catalog{defs: Defaults()}
}

// NewCatalogFrom builds a catalog from stored per-guild definitions,
// falling back to builtin defaults for crime types the store does not
// know about yet.
func NewCatalogFrom(stored map[ID]Definition) *Catalog {
	defs := Defaults()
	for id, def := range stored {
		defs[id] = def
	}
	return &Catalog{defs: defs}
}

// Lookup returns the definition for a crime type. Disabled crimes are
// still returned; callers decide whether disabled is acceptable.
func (c *Catalog) Lookup(id ID) (Definition, error) {
	def, ok := c.defs[id]
	if !ok {
		return Definition{}, errors.ErrUnknownCrime
	}
	return def, nil
}

// Definitions returns a copy of the full crime table.
func (c *Catalog) Definitions() map[ID]Definition {
	out := make(map[ID]Definition, len(c.defs))
	for id, def := range c.defs {
		out[id] = def
	}
	return out
}

// SetSuccessRate updates the base success rate, range [0.0, 1.0].
func (c *Catalog) SetSuccessRate(id ID, rate float64) error {
	def, ok := c.defs[id]
	if !ok {
		return errors.ErrUnknownCrime
	}
	if rate < 0.0 || rate > 1.0 {
		return errors.NewValidationError("INVALID_SUCCESS_RATE",
			fmt.Sprintf("success rate must be between 0.0 and 1.0, got %v", rate))
	}
	def.SuccessRate = rate
	c.defs[id] = def
	return nil
}

// SetRewardRange updates the absolute reward range, requiring
// 0 <= min <= max.
func (c *Catalog) SetRewardRange(id ID, min, max int64) error {
	def, ok := c.defs[id]
	if !ok {
		return errors.ErrUnknownCrime
	}
	if min < 0 {
		return errors.NewValidationError("INVALID_REWARD_RANGE", "minimum reward must not be negative")
	}
	if min > max {
		return errors.NewValidationError("INVALID_REWARD_RANGE",
			fmt.Sprintf("minimum reward %d exceeds maximum %d", min, max))
	}
	def.MinReward = min
	def.MaxReward = max
	c.defs[id] = def
	return nil
}

// SetCooldown updates the per-actor cooldown between attempts.
func (c *Catalog) SetCooldown(id ID, cooldown time.Duration) error {
	def, ok := c.defs[id]
	if !ok {
		return errors.ErrUnknownCrime
	}
	if cooldown < 0 {
		return errors.NewValidationError("INVALID_COOLDOWN", "cooldown must not be negative")
	}
	def.Cooldown = cooldown
	c.defs[id] = def
	return nil
}

// SetJailTime updates the sentence served on failure.
func (c *Catalog) SetJailTime(id ID, jailTime time.Duration) error {
	def, ok := c.defs[id]
	if !ok {
		return errors.ErrUnknownCrime
	}
	if jailTime < 0 {
		return errors.NewValidationError("INVALID_JAIL_TIME", "jail time must not be negative")
	}
	def.JailTime = jailTime
	c.defs[id] = def
	return nil
}

// SetFineMultiplier updates the fine multiplier applied to MaxReward.
func (c *Catalog) SetFineMultiplier(id ID, multiplier float64) error {
	def, ok := c.defs[id]
	if !ok {
		return errors.ErrUnknownCrime
	}
	if multiplier < 0 {
		return errors.NewValidationError("INVALID_FINE_MULTIPLIER", "fine multiplier must not be negative")
	}
	def.FineMultiplier = multiplier
	c.defs[id] = def
	return nil
}

// SetEnabled toggles a crime type on or off.
func (c *Catalog) SetEnabled(id ID, enabled bool) error {
	def, ok := c.defs[id]
	if !ok {
		return errors.ErrUnknownCrime
	}
	def.Enabled = enabled
	c.defs[id] = def
	return nil
}
