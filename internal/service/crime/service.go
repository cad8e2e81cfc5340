// Package crime resolves crime attempts end to end: preconditions,
// scenario substitution, modifier events, the success roll and the
// commit of rewards, fines and sentences. All per-actor state changes
// happen inside the actor's single-writer section.
package crime

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	crimedomain "github.com/undercity/undercity-engine/internal/domain/crime"
	"github.com/undercity/undercity-engine/internal/domain/errors"
	"github.com/undercity/undercity-engine/internal/domain/guild"
	"github.com/undercity/undercity-engine/internal/domain/inventory"
	"github.com/undercity/undercity-engine/internal/domain/record"
	"github.com/undercity/undercity-engine/internal/infrastructure/clock"
	"github.com/undercity/undercity-engine/internal/infrastructure/ledger"
	"github.com/undercity/undercity-engine/internal/infrastructure/random"
	"github.com/undercity/undercity-engine/internal/infrastructure/repository"
	"github.com/undercity/undercity-engine/internal/infrastructure/store"
	"github.com/undercity/undercity-engine/internal/metrics"
)

// Success chance bounds applied once, after all modifiers.
const (
	minSuccessChance = 0.05
	maxSuccessChance = 1.0
)

// Config carries the engine-level resolution knobs.
type Config struct {
	// Pacing inserts narrative delays between events and before the
	// final roll.
	Pacing bool
}

// Service is the crime resolver.
type Service struct {
	repo    *repository.Manager
	bank    ledger.Ledger
	clk     clock.Clock
	rng     random.Source
	jailer  JailKeeper
	gate    TargetGate
	logger  *slog.Logger
	metrics *metrics.Collector
	cfg     Config
}

// NewService wires the resolver. gate and collector may be nil.
func NewService(
	repo *repository.Manager,
	bank ledger.Ledger,
	clk clock.Clock,
	rng random.Source,
	jailer JailKeeper,
	gate TargetGate,
	logger *slog.Logger,
	collector *metrics.Collector,
	cfg Config,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		bank:    bank,
		clk:     clk,
		rng:     rng,
		jailer:  jailer,
		gate:    gate,
		logger:  logger,
		metrics: collector,
		cfg:     cfg,
	}
}

// Outcome reports one resolved crime attempt.
type Outcome struct {
	AttemptID uuid.UUID             `json:"attempt_id"`
	Crime     crimedomain.ID        `json:"crime"`
	Risk      crimedomain.Risk      `json:"risk"`
	Scenario  *crimedomain.Scenario `json:"scenario,omitempty"`
	Events    []AppliedEvent        `json:"events,omitempty"`

	FinalChance float64 `json:"final_chance"`
	Success     bool    `json:"success"`

	// Amount is the reward credited on success; Fine and JailTime are
	// the penalty charged on failure.
	Amount   int64         `json:"amount,omitempty"`
	Target   string        `json:"target,omitempty"`
	Fine     int64         `json:"fine,omitempty"`
	JailTime time.Duration `json:"jail_time,omitempty"`

	StreakCount      int     `json:"streak_count"`
	StreakMultiplier float64 `json:"streak_multiplier"`

	Narration string `json:"narration,omitempty"`
}

// Attempt resolves one crime attempt for an actor. Targeted crimes lock
// both actor and target, in sorted order, so reciprocal attempts cannot
// deadlock.
func (s *Service) Attempt(ctx context.Context, guildID, actorID string, id crimedomain.ID, targetID string) (*Outcome, error) {
	locks := []string{store.ActorLockName(guildID, actorID)}
	if targetID != "" && targetID != actorID {
		locks = append(locks, store.ActorLockName(guildID, targetID))
		sort.Strings(locks)
	}

	var outcome *Outcome
	err := s.withLocks(ctx, locks, func(ctx context.Context) error {
		var err error
		outcome, err = s.resolve(ctx, guildID, actorID, id, targetID)
		return err
	})
	return outcome, err
}

func (s *Service) withLocks(ctx context.Context, names []string, fn func(ctx context.Context) error) error {
	if len(names) == 0 {
		return fn(ctx)
	}
	return s.repo.WithLock(ctx, names[0], func(ctx context.Context) error {
		return s.withLocks(ctx, names[1:], fn)
	})
}

// resolve runs the attempt inside the guarded section.
func (s *Service) resolve(ctx context.Context, guildID, actorID string, id crimedomain.ID, targetID string) (*Outcome, error) {
	settings, err := s.repo.LoadSettings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.repo.LoadCatalog(ctx, guildID)
	if err != nil {
		return nil, err
	}
	def, err := catalog.Lookup(id)
	if err != nil {
		return nil, err
	}
	if !def.Enabled {
		return nil, errors.ErrCrimeDisabled
	}

	now := s.clk.Now()
	rec, err := s.repo.LoadRecord(ctx, guildID, actorID, now)
	if err != nil {
		return nil, err
	}
	if rec.JailRemaining(now) > 0 {
		return nil, errors.ErrActorJailed
	}
	if rec.CooldownRemaining(string(id), def.Cooldown, now) > 0 {
		return nil, errors.ErrCooldownActive
	}

	if def.RequiresTarget {
		if err := s.checkTarget(ctx, guildID, actorID, targetID, rec, def, settings, now); err != nil {
			return nil, err
		}
	} else if targetID != "" {
		return nil, errors.NewValidationError("TARGET_NOT_ALLOWED",
			fmt.Sprintf("crime %s does not take a target", id))
	}

	outcome := &Outcome{AttemptID: uuid.New(), Crime: id, Target: targetID}

	// The random crime draws a scenario that replaces its parameters
	// for this attempt only.
	var scenario *crimedomain.Scenario
	if id == crimedomain.Random {
		scenario, err = s.drawScenario(ctx, guildID)
		if err != nil {
			return nil, err
		}
		def = scenario.Apply(def)
		outcome.Scenario = scenario
	}
	outcome.Risk = def.Risk

	chance := def.SuccessRate
	effects := eventEffects{rewardMult: 1.0, jailMult: 1.0}
	if settings.EnableEvents {
		if pool := crimedomain.EventPool(id); len(pool) > 0 {
			drawn := drawEvents(pool, s.rng)
			effects, err = s.applyEvents(ctx, guildID, actorID, drawn)
			if err != nil {
				return nil, err
			}
			outcome.Events = effects.applied
		}
	}
	chance += effects.chanceDelta
	if inventory.HasActiveItem(rec, inventory.ItemLuckyCharm, now) {
		chance += inventory.LuckyCharmBonus
	}
	if chance < minSuccessChance {
		chance = minSuccessChance
	}
	if chance > maxSuccessChance {
		chance = maxSuccessChance
	}
	outcome.FinalChance = chance

	if s.cfg.Pacing {
		if err := s.clk.Sleep(ctx, suspenseDelay(def.Risk)); err != nil {
			return nil, errors.NewAbortedError("attempt abandoned").WithCause(err)
		}
	}

	success := s.rng.Float64() < chance
	outcome.Success = success
	outcome.StreakCount = rec.Streak.Update(success, now)
	outcome.StreakMultiplier = rec.Streak.Multiplier()

	if success {
		if err := s.commitSuccess(ctx, guildID, actorID, targetID, def, settings, rec, effects, outcome, now); err != nil {
			return nil, err
		}
	} else {
		if err := s.commitFailure(ctx, guildID, actorID, def, rec, effects, outcome, now); err != nil {
			return nil, err
		}
	}

	rec.TouchCooldown(string(id), now)
	if err := s.repo.SaveRecord(ctx, guildID, actorID, rec); err != nil {
		return nil, err
	}

	s.metrics.RecordAttempt(string(id), success, chance)
	s.logger.Info("crime resolved",
		slog.String("guild", guildID),
		slog.String("actor", actorID),
		slog.String("crime", string(id)),
		slog.Bool("success", success),
		slog.Float64("chance", chance),
		slog.Int64("amount", outcome.Amount),
		slog.Int64("fine", outcome.Fine))
	return outcome, nil
}

// checkTarget validates a targeted crime's victim.
func (s *Service) checkTarget(ctx context.Context, guildID, actorID, targetID string, rec *record.CriminalRecord, def crimedomain.Definition, settings guild.Settings, now time.Time) error {
	if targetID == "" {
		return errors.NewValidationError("TARGET_REQUIRED",
			fmt.Sprintf("crime %s requires a target", def.ID))
	}
	if targetID == actorID {
		return errors.NewValidationError("TARGET_SELF", "cannot target yourself")
	}
	if s.gate != nil {
		automated, err := s.gate.IsAutomated(ctx, guildID, targetID)
		if err != nil {
			return err
		}
		if automated {
			return errors.NewValidationError("TARGET_AUTOMATED", "cannot target automated accounts")
		}
	}
	if rec.LastTarget == targetID {
		return errors.NewPreconditionError("TARGET_REPEAT", "cannot target the same actor twice in a row")
	}

	targetRec, err := s.repo.LoadRecord(ctx, guildID, targetID, now)
	if err != nil {
		return err
	}
	if targetRec.Jailed(now) {
		return errors.NewPreconditionError("TARGET_JAILED", "target is in jail")
	}

	balance, err := s.bank.GetBalance(ctx, guildID, targetID)
	if err != nil {
		return err
	}
	if balance < stealThreshold(settings, def) {
		return errors.NewPreconditionError("TARGET_TOO_POOR", "target does not hold enough credits")
	}
	return nil
}

// stealThreshold is the minimum balance a target must hold: the guild
// floor or the crime's minimum reward, whichever is higher.
func stealThreshold(settings guild.Settings, def crimedomain.Definition) int64 {
	threshold := settings.MinStealBalance
	if def.MinReward > threshold {
		threshold = def.MinReward
	}
	return threshold
}

// commitSuccess credits the reward. Targeted crimes steal a drawn
// percentage of the target's balance; untargeted crimes roll the
// absolute reward range. Streak and event multipliers stack before the
// final floor.
func (s *Service) commitSuccess(ctx context.Context, guildID, actorID, targetID string, def crimedomain.Definition, settings guild.Settings, rec *record.CriminalRecord, effects eventEffects, outcome *Outcome, now time.Time) error {
	totalMult := decimal.NewFromFloat(rec.Streak.Multiplier()).
		Mul(decimal.NewFromFloat(effects.rewardMult))

	if def.RequiresTarget {
		balance, err := s.bank.GetBalance(ctx, guildID, targetID)
		if err != nil {
			return err
		}
		// Re-verify after the events ran; the target may have spent or
		// lost credits in the meantime.
		if balance < stealThreshold(settings, def) {
			return errors.NewPreconditionError("TARGET_INELIGIBLE", "target no longer holds enough credits")
		}

		pct := s.rng.FloatBetween(def.MinStealPct, def.MaxStealPct)
		raw := decimal.NewFromInt(balance).
			Mul(decimal.NewFromFloat(pct)).
			Floor().IntPart()
		if raw > def.MaxReward {
			raw = def.MaxReward
		}
		if settings.MaxStealAmount > 0 && raw > settings.MaxStealAmount {
			raw = settings.MaxStealAmount
		}
		amount := decimal.NewFromInt(raw).Mul(totalMult).Floor().IntPart()
		if amount > balance {
			amount = balance
		}

		if err := transfer(ctx, s.bank, guildID, targetID, actorID, amount); err != nil {
			return err
		}

		targetRec, err := s.repo.LoadRecord(ctx, guildID, targetID, now)
		if err != nil {
			return err
		}
		targetRec.StolenBy += amount
		if err := s.repo.SaveRecord(ctx, guildID, targetID, targetRec); err != nil {
			return err
		}

		rec.RecordHeist(amount, true)
		rec.LastTarget = targetID
		outcome.Amount = amount
	} else {
		base := s.rng.Int64Between(def.MinReward, def.MaxReward)
		amount := decimal.NewFromInt(base).Mul(totalMult).Floor().IntPart()
		if err := s.bank.Deposit(ctx, guildID, actorID, amount); err != nil {
			return err
		}
		rec.RecordHeist(amount, false)
		outcome.Amount = amount
	}

	if outcome.Scenario != nil {
		outcome.Narration = narrate(outcome.Scenario.SuccessText, actorID, outcome.Amount)
	}
	s.metrics.RecordReward(string(def.ID), outcome.Amount)
	return nil
}

// commitFailure charges the fine and sentences the actor. An actor who
// cannot cover the fine loses everything they have and serves double
// jail time.
func (s *Service) commitFailure(ctx context.Context, guildID, actorID string, def crimedomain.Definition, rec *record.CriminalRecord, effects eventEffects, outcome *Outcome, now time.Time) error {
	fine := def.Fine()
	balance, err := s.bank.GetBalance(ctx, guildID, actorID)
	if err != nil {
		return err
	}

	sentence := time.Duration(float64(def.JailTime) * effects.jailMult)
	paid := fine
	if balance >= fine {
		if fine > 0 {
			if err := s.bank.Withdraw(ctx, guildID, actorID, fine); err != nil {
				return err
			}
		}
	} else {
		paid, err = withdrawUpTo(ctx, s.bank, guildID, actorID, fine)
		if err != nil {
			return err
		}
		sentence *= 2
	}

	rec.FailedCrimes++
	rec.FinesPaid += paid
	outcome.Fine = paid
	outcome.JailTime = s.jailer.Imprison(rec, guildID, actorID, sentence, now)

	if outcome.Scenario != nil {
		outcome.Narration = narrate(outcome.Scenario.FailText, actorID, 0)
	}
	s.metrics.RecordFine(paid)
	return nil
}

// drawScenario picks a random-crime scenario from the builtin pool plus
// the guild's custom ones.
func (s *Service) drawScenario(ctx context.Context, guildID string) (*crimedomain.Scenario, error) {
	custom, err := s.repo.LoadScenarios(ctx, guildID)
	if err != nil {
		return nil, err
	}
	pool := append(crimedomain.BuiltinScenarios(), custom...)
	scenario := pool[s.rng.IntN(len(pool))]
	return &scenario, nil
}

// suspenseDelay is the pause before the final roll, longer for riskier
// crimes.
func suspenseDelay(risk crimedomain.Risk) time.Duration {
	switch risk {
	case crimedomain.RiskLow:
		return 4 * time.Second
	case crimedomain.RiskHigh:
		return 6 * time.Second
	default:
		return 5 * time.Second
	}
}

// narrate fills a scenario text template.
func narrate(text, actorID string, amount int64) string {
	out := strings.ReplaceAll(text, "{user}", actorID)
	out = strings.ReplaceAll(out, "{amount}", fmt.Sprintf("%d", amount))
	out = strings.ReplaceAll(out, "{currency}", "credits")
	return out
}
