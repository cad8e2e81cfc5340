// Package testutil provides deterministic test doubles for the engine:
// a scripted randomness source and a recording notifier.
package testutil

import (
	"context"
	"sync"
)

// ScriptedSource replays queued draws so resolution outcomes are exact.
// Exhausted queues fall back to fixed values: 0.5 for floats, 0 for
// ints, so a test only scripts the draws it cares about.
type ScriptedSource struct {
	Floats []float64
	Ints   []int

	mu sync.Mutex
	fi int
	ii int
}

func (s *ScriptedSource) nextFloat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fi >= len(s.Floats) {
		return 0.5
	}
	v := s.Floats[s.fi]
	s.fi++
	return v
}

func (s *ScriptedSource) nextInt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ii >= len(s.Ints) {
		return 0
	}
	v := s.Ints[s.ii]
	s.ii++
	return v
}

func (s *ScriptedSource) Float64() float64 { return s.nextFloat() }

func (s *ScriptedSource) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.nextInt() % n
}

func (s *ScriptedSource) Int64Between(min, max int64) int64 {
	if min >= max {
		return min
	}
	v := min + int64(s.nextInt())
	if v > max {
		return max
	}
	return v
}

func (s *ScriptedSource) FloatBetween(min, max float64) float64 {
	if min >= max {
		return min
	}
	return min + s.nextFloat()*(max-min)
}

// Notification is one recorded notifier delivery.
type Notification struct {
	Guild string
	Actor string
	Text  string
}

// RecordingNotifier captures notifications for assertions.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (n *RecordingNotifier) Notify(_ context.Context, guildID, actorID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{Guild: guildID, Actor: actorID, Text: text})
	return nil
}

// Sent returns a copy of the recorded notifications.
func (n *RecordingNotifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.sent))
	copy(out, n.sent)
	return out
}
