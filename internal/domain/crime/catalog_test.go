package crime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undercity/undercity-engine/internal/domain/errors"
)

func TestCatalogLookup(t *testing.T) {
	catalog := NewCatalog()

	def, err := catalog.Lookup(Pickpocket)
	require.NoError(t, err)
	assert.Equal(t, Pickpocket, def.ID)
	assert.True(t, def.RequiresTarget)
	assert.Equal(t, int64(150), def.MinReward)
	assert.Equal(t, int64(500), def.MaxReward)

	_, err = catalog.Lookup("arson")
	assert.ErrorIs(t, err, errors.ErrUnknownCrime)
}

func TestCatalogSetSuccessRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		wantErr bool
	}{
		{"valid", 0.8, false},
		{"zero", 0.0, false},
		{"one", 1.0, false},
		{"negative", -0.1, true},
		{"above one", 1.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := NewCatalog()
			err := catalog.SetSuccessRate(Mugging, tt.rate)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidation(err))
				// Rejected update leaves the old value.
				def, _ := catalog.Lookup(Mugging)
				assert.Equal(t, 0.6, def.SuccessRate)
				return
			}
			require.NoError(t, err)
			def, _ := catalog.Lookup(Mugging)
			assert.Equal(t, tt.rate, def.SuccessRate)
		})
	}
}

func TestCatalogSetRewardRange(t *testing.T) {
	catalog := NewCatalog()

	require.NoError(t, catalog.SetRewardRange(BankHeist, 1000, 8000))
	def, _ := catalog.Lookup(BankHeist)
	assert.Equal(t, int64(1000), def.MinReward)
	assert.Equal(t, int64(8000), def.MaxReward)

	err := catalog.SetRewardRange(BankHeist, 500, 100)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	err = catalog.SetRewardRange(BankHeist, -1, 100)
	require.Error(t, err)

	// Failed updates leave the previous range untouched.
	def, _ = catalog.Lookup(BankHeist)
	assert.Equal(t, int64(1000), def.MinReward)
	assert.Equal(t, int64(8000), def.MaxReward)
}

func TestCatalogSetDurations(t *testing.T) {
	catalog := NewCatalog()

	require.NoError(t, catalog.SetCooldown(RobStore, time.Hour))
	require.NoError(t, catalog.SetJailTime(RobStore, 90*time.Minute))
	def, _ := catalog.Lookup(RobStore)
	assert.Equal(t, time.Hour, def.Cooldown)
	assert.Equal(t, 90*time.Minute, def.JailTime)

	assert.Error(t, catalog.SetCooldown(RobStore, -time.Second))
	assert.Error(t, catalog.SetJailTime(RobStore, -time.Second))
}

func TestCatalogSetEnabled(t *testing.T) {
	catalog := NewCatalog()
	require.NoError(t, catalog.SetEnabled(BankHeist, false))
	def, _ := catalog.Lookup(BankHeist)
	assert.False(t, def.Enabled)
}

func TestCatalogFromStoredOverlay(t *testing.T) {
	stored := map[ID]Definition{
		Pickpocket: {
			ID:          Pickpocket,
			MinReward:   1,
			MaxReward:   2,
			SuccessRate: 0.9,
			Enabled:     true,
		},
	}
	catalog := NewCatalogFrom(stored)

	def, err := catalog.Lookup(Pickpocket)
	require.NoError(t, err)
	assert.Equal(t, 0.9, def.SuccessRate)

	// Types the store does not know about fall back to defaults.
	def, err = catalog.Lookup(BankHeist)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), def.MinReward)
}

func TestDefinitionFine(t *testing.T) {
	def := Definition{MaxReward: 501, FineMultiplier: 0.35}
	// floor(501 * 0.35) = floor(175.35)
	assert.Equal(t, int64(175), def.Fine())

	def = Definition{MaxReward: 2000, FineMultiplier: 0.4}
	assert.Equal(t, int64(800), def.Fine())
}
