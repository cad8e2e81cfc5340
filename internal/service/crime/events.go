package crime

import (
	"context"
	"time"

	crimedomain "github.com/undercity/undercity-engine/internal/domain/crime"
	"github.com/undercity/undercity-engine/internal/domain/errors"
	"github.com/undercity/undercity-engine/internal/infrastructure/random"
)

// cascadeOdds is the draw schedule for modifier events: the first event
// always fires, each later one only if the previous draw succeeded.
var cascadeOdds = [4]float64{1.0, 0.75, 0.50, 0.10}

// eventDelay paces the reveal of each drawn event.
const eventDelay = 2 * time.Second

// AppliedEvent is one drawn modifier event together with the credit
// delta actually committed, after shortfall clamping.
type AppliedEvent struct {
	Event        crimedomain.ModifierEvent `json:"event"`
	CreditsDelta int64                     `json:"credits_delta"`
}

// eventEffects accumulates what a run of modifier events did to the
// attempt. Chance deltas add; reward and jail multipliers compound.
type eventEffects struct {
	applied     []AppliedEvent
	chanceDelta float64
	rewardMult  float64
	jailMult    float64
}

// drawEvents samples the cascade from pool without replacement. The
// cascade stops at the first failed draw or when the pool runs dry.
func drawEvents(pool []crimedomain.ModifierEvent, rng random.Source) []crimedomain.ModifierEvent {
	remaining := make([]crimedomain.ModifierEvent, len(pool))
	copy(remaining, pool)

	var drawn []crimedomain.ModifierEvent
	for _, odds := range cascadeOdds {
		if len(remaining) == 0 {
			break
		}
		if rng.Float64() >= odds {
			break
		}
		i := rng.IntN(len(remaining))
		drawn = append(drawn, remaining[i])
		remaining[i] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return drawn
}

// applyEvents commits each drawn event in order. Credit deltas hit the
// ledger immediately; penalties are clamped to the available balance. A
// cancelled context aborts the attempt, keeping the deltas committed so
// far but nothing else.
func (s *Service) applyEvents(ctx context.Context, guildID, actorID string, events []crimedomain.ModifierEvent) (eventEffects, error) {
	effects := eventEffects{rewardMult: 1.0, jailMult: 1.0}
	for _, ev := range events {
		if s.cfg.Pacing {
			if err := s.clk.Sleep(ctx, eventDelay); err != nil {
				return effects, errors.NewAbortedError("attempt abandoned").WithCause(err)
			}
		}

		effects.chanceDelta += ev.ChanceDelta()
		if ev.RewardMultiplier > 0 {
			effects.rewardMult *= ev.RewardMultiplier
		}
		if ev.JailMultiplier > 0 {
			effects.jailMult *= ev.JailMultiplier
		}

		var delta int64
		if ev.CreditsBonus > 0 {
			if err := s.bank.Deposit(ctx, guildID, actorID, ev.CreditsBonus); err != nil {
				return effects, err
			}
			delta = ev.CreditsBonus
		}
		if ev.CreditsPenalty > 0 {
			taken, err := withdrawUpTo(ctx, s.bank, guildID, actorID, ev.CreditsPenalty)
			if err != nil {
				return effects, err
			}
			delta -= taken
		}
		effects.applied = append(effects.applied, AppliedEvent{Event: ev, CreditsDelta: delta})
	}
	return effects, nil
}
