package crime

import (
	"fmt"
	"time"

	"github.com/undercity/undercity-engine/internal/domain/errors"
)

// Scenario is one outcome script for the random crime type. When drawn,
// its parameters replace the catalog definition for that attempt only.
type Scenario struct {
	Name           string        `json:"name"`
	Risk           Risk          `json:"risk"`
	MinReward      int64         `json:"min_reward"`
	MaxReward      int64         `json:"max_reward"`
	SuccessRate    float64       `json:"success_rate"`
	JailTime       time.Duration `json:"jail_time"`
	FineMultiplier float64       `json:"fine_multiplier"`
	AttemptText    string        `json:"attempt_text"`
	SuccessText    string        `json:"success_text"`
	FailText       string        `json:"fail_text"`
}

// Validate checks a guild-submitted custom scenario.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return errors.NewValidationError("INVALID_SCENARIO", "scenario name is required")
	}
	switch s.Risk {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		return errors.NewValidationError("INVALID_SCENARIO",
			fmt.Sprintf("unknown risk level %q", s.Risk))
	}
	if s.MinReward < 0 || s.MinReward > s.MaxReward {
		return errors.NewValidationError("INVALID_SCENARIO", "reward range must satisfy 0 <= min <= max")
	}
	if s.SuccessRate <= 0 || s.SuccessRate > 1 {
		return errors.NewValidationError("INVALID_SCENARIO", "success rate must be in (0.0, 1.0]")
	}
	if s.JailTime <= 0 {
		return errors.NewValidationError("INVALID_SCENARIO", "jail time must be positive")
	}
	if s.FineMultiplier < 0 {
		return errors.NewValidationError("INVALID_SCENARIO", "fine multiplier must not be negative")
	}
	return nil
}

// Apply overlays the scenario's parameters onto a definition for a
// single attempt.
func (s Scenario) Apply(def Definition) Definition {
	def.MinReward = s.MinReward
	def.MaxReward = s.MaxReward
	def.SuccessRate = s.SuccessRate
	def.JailTime = s.JailTime
	def.Risk = s.Risk
	def.FineMultiplier = s.FineMultiplier
	return def
}

// Canned success-rate tiers shared by the builtin scenarios.
const (
	scenarioRateHigh   = 0.75
	scenarioRateMedium = 0.50
	scenarioRateLow    = 0.30
)

// BuiltinScenarios returns the builtin random-crime scenario pool.
// Guild-defined custom scenarios are appended to this list at draw time.
func BuiltinScenarios() []Scenario {
	out := make([]Scenario, len(builtinScenarios))
	copy(out, builtinScenarios)
	return out
}

var builtinScenarios = []Scenario{
	{
		Name:           "ice_cream_heist",
		Risk:           RiskLow,
		MinReward:      100,
		MaxReward:      300,
		SuccessRate:    scenarioRateHigh,
		JailTime:       3 * time.Minute,
		FineMultiplier: 0.3,
		AttemptText:    "{user} sneaks into the ice cream shop after hours...",
		SuccessText:    "{user} raided the ice cream vault and made {amount} {currency}! Free ice cream for everyone!",
		FailText:       "{user} slipped on a banana split and got caught by the night guard!",
	},
	{
		Name:           "cat_burglar",
		Risk:           RiskMedium,
		MinReward:      400,
		MaxReward:      800,
		SuccessRate:    scenarioRateMedium,
		JailTime:       10 * time.Minute,
		FineMultiplier: 0.4,
		AttemptText:    "{user} scales the mansion wall to steal the prized cat statue...",
		SuccessText:    "{user} purrfectly executed the heist and stole the golden cat statue, earning {amount} {currency}!",
		FailText:       "{user} was caught when the real cats triggered the alarm system!",
	},
	{
		Name:           "train_robbery",
		Risk:           RiskHigh,
		MinReward:      500,
		MaxReward:      2500,
		SuccessRate:    scenarioRateLow,
		JailTime:       20 * time.Minute,
		FineMultiplier: 0.5,
		AttemptText:    "{user} jumps onto the moving train carrying valuable cargo...",
		SuccessText:    "{user} pulled off a classic train robbery and escaped with {amount} {currency}!",
		FailText:       "{user} got caught between train cars and was arrested at the next station!",
	},
	{
		Name:           "casino_con",
		Risk:           RiskHigh,
		MinReward:      800,
		MaxReward:      2500,
		SuccessRate:    scenarioRateLow,
		JailTime:       15 * time.Minute,
		FineMultiplier: 0.45,
		AttemptText:    "{user} approaches the casino with their master plan...",
		SuccessText:    "{user} conned the casino and walked away with {amount} {currency}!",
		FailText:       "{user} was caught counting cards and was thrown out by security!",
	},
	{
		Name:           "food_truck_heist",
		Risk:           RiskLow,
		MinReward:      200,
		MaxReward:      500,
		SuccessRate:    scenarioRateHigh,
		JailTime:       5 * time.Minute,
		FineMultiplier: 0.35,
		AttemptText:    "{user} sneaks up to the famous food truck at midnight...",
		SuccessText:    "{user} stole the secret recipe and a truck full of tacos, making {amount} {currency}!",
		FailText:       "{user} was caught with their hands in the salsa jar!",
	},
	{
		Name:           "art_gallery_heist",
		Risk:           RiskHigh,
		MinReward:      900,
		MaxReward:      2800,
		SuccessRate:    scenarioRateLow,
		JailTime:       25 * time.Minute,
		FineMultiplier: 0.48,
		AttemptText:    "{user} infiltrates the art gallery during a fancy exhibition...",
		SuccessText:    "{user} swapped the real painting with a forgery and sold it for {amount} {currency}!",
		FailText:       "{user} tripped the laser security system and got caught red-handed!",
	},
	{
		Name:           "candy_store_raid",
		Risk:           RiskLow,
		MinReward:      150,
		MaxReward:      400,
		SuccessRate:    scenarioRateHigh,
		JailTime:       4 * time.Minute,
		FineMultiplier: 0.32,
		AttemptText:    "{user} sneaks into the candy store with an empty backpack...",
		SuccessText:    "{user} filled their bag with premium chocolates and rare candies, worth {amount} {currency}!",
		FailText:       "{user} got stuck in the gummy bear display and was caught by the owner!",
	},
}
