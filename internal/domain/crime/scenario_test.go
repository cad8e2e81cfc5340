package crime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validScenario() Scenario {
	return Scenario{
		Name:           "dockyard_smuggle",
		Risk:           RiskMedium,
		MinReward:      200,
		MaxReward:      600,
		SuccessRate:    0.5,
		JailTime:       10 * time.Minute,
		FineMultiplier: 0.4,
		AttemptText:    "{user} slips past the dockyard fence...",
		SuccessText:    "{user} made off with {amount} {currency}!",
		FailText:       "{user} got caught between two shipping crates!",
	}
}

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scenario)
		ok     bool
	}{
		{"valid", func(*Scenario) {}, true},
		{"missing name", func(s *Scenario) { s.Name = "" }, false},
		{"bad risk", func(s *Scenario) { s.Risk = "extreme" }, false},
		{"random risk not allowed", func(s *Scenario) { s.Risk = RiskRandom }, false},
		{"min above max", func(s *Scenario) { s.MinReward = 700 }, false},
		{"zero success rate", func(s *Scenario) { s.SuccessRate = 0 }, false},
		{"rate above one", func(s *Scenario) { s.SuccessRate = 1.01 }, false},
		{"zero jail time", func(s *Scenario) { s.JailTime = 0 }, false},
		{"negative fine", func(s *Scenario) { s.FineMultiplier = -0.1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScenario()
			tt.mutate(&s)
			err := s.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestScenarioApply(t *testing.T) {
	base := Definition{
		ID:             Random,
		MinReward:      100,
		MaxReward:      3000,
		SuccessRate:    0.5,
		Cooldown:       time.Hour,
		JailTime:       10 * time.Minute,
		Risk:           RiskRandom,
		FineMultiplier: 0.5,
		Enabled:        true,
	}
	s := validScenario()

	def := s.Apply(base)
	assert.Equal(t, s.MinReward, def.MinReward)
	assert.Equal(t, s.MaxReward, def.MaxReward)
	assert.Equal(t, s.SuccessRate, def.SuccessRate)
	assert.Equal(t, s.JailTime, def.JailTime)
	assert.Equal(t, s.Risk, def.Risk)
	assert.Equal(t, s.FineMultiplier, def.FineMultiplier)

	// The scenario does not touch identity or cooldown.
	assert.Equal(t, Random, def.ID)
	assert.Equal(t, time.Hour, def.Cooldown)
	assert.True(t, def.Enabled)
}

func TestBuiltinScenariosValid(t *testing.T) {
	scenarios := BuiltinScenarios()
	require.NotEmpty(t, scenarios)

	seen := make(map[string]bool)
	for _, s := range scenarios {
		assert.NoError(t, s.Validate(), s.Name)
		assert.False(t, seen[s.Name], "duplicate scenario name %s", s.Name)
		seen[s.Name] = true
	}
}

func TestEventPools(t *testing.T) {
	for _, id := range []ID{Pickpocket, Mugging, RobStore, BankHeist} {
		pool := EventPool(id)
		assert.NotEmpty(t, pool, string(id))
		for _, ev := range pool {
			assert.NotEmpty(t, ev.Name)
			assert.NotEmpty(t, ev.Text)
		}
	}
	// The random crime gets its variance from scenarios, not events.
	assert.Empty(t, EventPool(Random))
}

func TestModifierEventChanceDelta(t *testing.T) {
	ev := ModifierEvent{ChanceBonus: 0.2, ChancePenalty: 0.05}
	assert.InDelta(t, 0.15, ev.ChanceDelta(), 1e-9)
}
