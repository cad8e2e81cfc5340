// Package guild holds per-guild admin-mutable engine settings.
package guild

import (
	"github.com/undercity/undercity-engine/internal/domain/errors"
)

// Settings are the global knobs one guild's admins control. Crime-type
// parameters live in the crime catalog; these apply across all crimes.
type Settings struct {
	// BailMultiplier prices bail at ceil(multiplier x remaining minutes).
	BailMultiplier float64 `json:"bail_cost_multiplier"`
	AllowBail      bool    `json:"allow_bail"`

	// MinStealBalance protects poor actors from being targeted.
	MinStealBalance int64 `json:"min_steal_balance"`
	// MaxStealAmount caps any single targeted haul.
	MaxStealAmount int64 `json:"max_steal_amount"`

	// EnableEvents toggles the random modifier events during crimes.
	EnableEvents bool `json:"enable_random_events"`

	// NotifyCost overrides the price of the release-notification perk.
	NotifyCost int64 `json:"notify_cost"`
}

// DefaultSettings returns the settings a guild starts with.
func DefaultSettings() Settings {
	return Settings{
		BailMultiplier:  0.35,
		AllowBail:       true,
		MinStealBalance: 100,
		MaxStealAmount:  1000,
		EnableEvents:    true,
		NotifyCost:      10000,
	}
}

// Validate rejects malformed admin input.
func (s Settings) Validate() error {
	if s.BailMultiplier < 0 {
		return errors.NewValidationError("INVALID_BAIL_MULTIPLIER", "bail multiplier must not be negative")
	}
	if s.MinStealBalance < 0 {
		return errors.NewValidationError("INVALID_STEAL_BOUNDS", "minimum steal balance must not be negative")
	}
	if s.MaxStealAmount < 0 {
		return errors.NewValidationError("INVALID_STEAL_BOUNDS", "maximum steal amount must not be negative")
	}
	if s.NotifyCost < 0 {
		return errors.NewValidationError("INVALID_NOTIFY_COST", "notify cost must not be negative")
	}
	return nil
}
