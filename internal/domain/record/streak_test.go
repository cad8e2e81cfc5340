package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStreakUpdate(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	var s Streak

	assert.Equal(t, 1, s.Update(true, now))
	assert.Equal(t, 2, s.Update(true, now.Add(time.Hour)))
	assert.Equal(t, 3, s.Update(true, now.Add(2*time.Hour)))

	// Failure resets the count.
	assert.Equal(t, 0, s.Update(false, now.Add(3*time.Hour)))
	assert.Equal(t, 1, s.Update(true, now.Add(4*time.Hour)))
}

func TestStreakWindowExpiry(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	var s Streak

	s.Update(true, now)
	s.Update(true, now.Add(time.Hour))
	assert.Equal(t, 2, s.Count)

	// More than the window since the last attempt: success starts over
	// at one instead of continuing.
	count := s.Update(true, now.Add(time.Hour).Add(StreakWindow).Add(time.Second))
	assert.Equal(t, 1, count)
}

func TestStreakMultiplier(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, 1.0},
		{1, 1.05},
		{3, 1.15},
		{5, 1.25},
		{6, 1.25},
		{100, 1.25},
	}
	for _, tt := range tests {
		s := Streak{Count: tt.count}
		assert.InDelta(t, tt.want, s.Multiplier(), 1e-9, "count %d", tt.count)
	}
}
