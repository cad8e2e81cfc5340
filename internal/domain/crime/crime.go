package crime

import (
	"time"

	"github.com/shopspring/decimal"
)

// ID identifies a crime type.
type ID string

const (
	Pickpocket ID = "pickpocket"
	Mugging    ID = "mugging"
	RobStore   ID = "rob_store"
	BankHeist  ID = "bank_heist"
	Random     ID = "random"
)

// Risk classifies how dangerous a crime is. It drives narrative pacing
// and is substituted by the drawn scenario for the random crime type.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
	RiskRandom Risk = "random"
)

// Definition holds the configurable parameters of one crime type.
// A Definition is immutable for the duration of a resolution; admin
// setters on the Catalog produce a replacement copy.
type Definition struct {
	ID             ID            `json:"id"`
	RequiresTarget bool          `json:"requires_target"`
	MinReward      int64         `json:"min_reward"`
	MaxReward      int64         `json:"max_reward"`
	SuccessRate    float64       `json:"success_rate"`
	Cooldown       time.Duration `json:"cooldown"`
	JailTime       time.Duration `json:"jail_time"`
	Risk           Risk          `json:"risk"`
	Enabled        bool          `json:"enabled"`
	FineMultiplier float64       `json:"fine_multiplier"`

	// Targeted crimes steal a uniformly drawn percentage of the target's
	// balance instead of rolling the absolute reward range.
	MinStealPct float64 `json:"min_steal_percentage,omitempty"`
	MaxStealPct float64 `json:"max_steal_percentage,omitempty"`
}

// Fine returns the fine charged when this crime fails, floored to a
// whole credit: floor(MaxReward * FineMultiplier).
func (d Definition) Fine() int64 {
	return decimal.NewFromInt(d.MaxReward).
		Mul(decimal.NewFromFloat(d.FineMultiplier)).
		Floor().IntPart()
}

// Defaults returns the builtin crime table. Callers receive a fresh map
// they may mutate per guild.
func Defaults() map[ID]Definition {
	defs := make(map[ID]Definition, len(builtinDefinitions))
	for id, def := range builtinDefinitions {
		defs[id] = def
	}
	return defs
}

var builtinDefinitions = map[ID]Definition{
	Pickpocket: {
		ID:             Pickpocket,
		RequiresTarget: true,
		MinReward:      150,
		MaxReward:      500,
		SuccessRate:    0.6,
		Cooldown:       5 * time.Minute,
		JailTime:       30 * time.Minute,
		Risk:           RiskLow,
		Enabled:        true,
		FineMultiplier: 0.35,
		MinStealPct:    0.01,
		MaxStealPct:    0.10,
	},
	Mugging: {
		ID:             Mugging,
		RequiresTarget: true,
		MinReward:      400,
		MaxReward:      1500,
		SuccessRate:    0.6,
		Cooldown:       10 * time.Minute,
		JailTime:       45 * time.Minute,
		Risk:           RiskMedium,
		Enabled:        true,
		FineMultiplier: 0.4,
		MinStealPct:    0.15,
		MaxStealPct:    0.25,
	},
	RobStore: {
		ID:             RobStore,
		RequiresTarget: false,
		MinReward:      500,
		MaxReward:      2000,
		SuccessRate:    0.5,
		Cooldown:       6 * time.Hour,
		JailTime:       45 * time.Minute,
		Risk:           RiskMedium,
		Enabled:        true,
		FineMultiplier: 0.4,
	},
	BankHeist: {
		ID:             BankHeist,
		RequiresTarget: false,
		MinReward:      1500,
		MaxReward:      5000,
		SuccessRate:    0.4,
		Cooldown:       24 * time.Hour,
		JailTime:       2 * time.Hour,
		Risk:           RiskHigh,
		Enabled:        true,
		FineMultiplier: 0.4,
	},
	// Parameters of the random crime are placeholders; the drawn scenario
	// overrides reward range, success rate, jail time, fine and risk.
	Random: {
		ID:             Random,
		RequiresTarget: false,
		MinReward:      100,
		MaxReward:      3000,
		SuccessRate:    0.5,
		Cooldown:       time.Hour,
		JailTime:       10 * time.Minute,
		Risk:           RiskRandom,
		Enabled:        true,
		FineMultiplier: 0.5,
	},
}
