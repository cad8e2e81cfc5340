package jail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteBail(t *testing.T) {
	tests := []struct {
		name       string
		remaining  time.Duration
		multiplier float64
		want       int64
	}{
		{"whole minutes", 30 * time.Minute, 0.35, 11},   // ceil(10.5)
		{"exact product", 20 * time.Minute, 0.5, 10},    // ceil(10.0)
		{"partial minute", 90 * time.Second, 0.35, 1},   // ceil(0.525)
		{"long sentence", 24 * time.Hour, 0.35, 504},    // ceil(1440*0.35)
		{"zero multiplier", 30 * time.Minute, 0.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := QuoteBail(tt.remaining, tt.multiplier)
			assert.Equal(t, tt.want, quote.Cost)
			assert.Equal(t, tt.remaining, quote.Remaining)
			assert.Equal(t, tt.multiplier, quote.Multiplier)
		})
	}
}

func TestBreakScenarios(t *testing.T) {
	scenarios := BreakScenarios()
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		assert.NotEmpty(t, s.Name)
		assert.Greater(t, s.BaseChance, 0.0, s.Name)
		assert.Less(t, s.BaseChance, 1.0, s.Name)
		// Every storyline must supply enough events for the largest
		// draw of four.
		assert.GreaterOrEqual(t, len(s.Events), 4, s.Name)
		for _, ev := range s.Events {
			assert.NotEmpty(t, ev.Text, s.Name)
		}
	}
}

func TestBreakScenariosReturnsCopy(t *testing.T) {
	first := BreakScenarios()
	first[0].BaseChance = 0.99
	assert.NotEqual(t, 0.99, BreakScenarios()[0].BaseChance)
}
