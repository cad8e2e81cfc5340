package record

import "time"

// StreakWindow is the inactivity window after which a streak resets.
const StreakWindow = 24 * time.Hour

// Streak counts consecutive successful attempts inside the inactivity
// window and derives a reward multiplier from the count.
type Streak struct {
	Count       int   `json:"count"`
	LastAttempt int64 `json:"last_attempt"`
}

// Update feeds one resolved attempt into the streak. A failure, or more
// than StreakWindow since the previous attempt, resets the count; a
// success within the window increments it. Returns the new count.
func (s *Streak) Update(success bool, now time.Time) int {
	expired := s.LastAttempt != 0 && now.Sub(time.Unix(s.LastAttempt, 0)) > StreakWindow
	s.LastAttempt = now.Unix()
	if !success || expired {
		if !success {
			s.Count = 0
			return 0
		}
		s.Count = 1
		return 1
	}
	s.Count++
	return s.Count
}

// Multiplier returns the reward multiplier for the current streak:
// 1.0 + 0.05 per consecutive success, capped at 1.25 from streak 5.
func (s Streak) Multiplier() float64 {
	bonus := float64(s.Count) * 0.05
	if bonus > 0.25 {
		bonus = 0.25
	}
	return 1.0 + bonus
}
