// Package jailing drives the jail state machine: sentencing, bail,
// jailbreaks, instant-release items and release notifications.
package jailing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/undercity/undercity-engine/internal/domain/errors"
	"github.com/undercity/undercity-engine/internal/domain/inventory"
	"github.com/undercity/undercity-engine/internal/domain/jail"
	"github.com/undercity/undercity-engine/internal/domain/record"
	"github.com/undercity/undercity-engine/internal/infrastructure/clock"
	"github.com/undercity/undercity-engine/internal/infrastructure/ledger"
	"github.com/undercity/undercity-engine/internal/infrastructure/random"
	"github.com/undercity/undercity-engine/internal/infrastructure/repository"
	"github.com/undercity/undercity-engine/internal/metrics"
)

// Notifier delivers out-of-band messages to actors, such as the jail
// release ping. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, guildID, actorID, text string) error
}

// Config carries the engine-level jailing knobs.
type Config struct {
	// JailbreakEnabled gates the jailbreak operation globally.
	JailbreakEnabled bool
	// Pacing inserts narrative delays between jailbreak events.
	Pacing bool
}

// breakEventDelay paces the jailbreak event reveal.
const breakEventDelay = 2 * time.Second

// Service owns all jail-sentence transitions. Release-notification
// timers are tracked per (guild, actor); scheduling a new one cancels
// any pending timer for the same actor.
type Service struct {
	repo     *repository.Manager
	bank     ledger.Ledger
	clk      clock.Clock
	rng      random.Source
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Collector
	cfg      Config

	mu     sync.Mutex
	tasks  map[string]*releaseTask
	closed bool
}

// releaseTask is one pending release-notification timer.
type releaseTask struct {
	cancel context.CancelFunc
}

// NewService wires the jailing service. notifier and collector may be
// nil; notifications and metrics are then skipped.
func NewService(
	repo *repository.Manager,
	bank ledger.Ledger,
	clk clock.Clock,
	rng random.Source,
	notifier Notifier,
	logger *slog.Logger,
	collector *metrics.Collector,
	cfg Config,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		bank:     bank,
		clk:      clk,
		rng:      rng,
		notifier: notifier,
		logger:   logger,
		metrics:  collector,
		cfg:      cfg,
		tasks:    make(map[string]*releaseTask),
	}
}

// Stop cancels every pending release-notification timer. The service
// must not be used after Stop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for key, task := range s.tasks {
		task.cancel()
		delete(s.tasks, key)
	}
}

// Imprison sentences an actor on an already-loaded record. The caller
// holds the actor's lock and persists the record afterwards. Returns
// the applied sentence, after any perk reduction.
func (s *Service) Imprison(rec *record.CriminalRecord, guildID, actorID string, sentence time.Duration, now time.Time) time.Duration {
	applied := sentence
	if inventory.HasPerk(rec, inventory.PerkJailReducer) {
		applied = time.Duration(float64(sentence) * inventory.SentenceReductionFactor)
	}
	rec.OriginalSentence = int64(sentence / time.Second)
	rec.JailUntil = now.Add(applied).Unix()
	rec.AttemptedJailbreak = false

	if rec.NotifyOnRelease && inventory.HasPerk(rec, inventory.PerkNotifyPing) {
		s.scheduleRelease(guildID, actorID, applied)
	}
	s.logger.Info("actor jailed",
		slog.String("guild", guildID),
		slog.String("actor", actorID),
		slog.Duration("sentence", applied))
	return applied
}

// Remaining reports the remaining sentence, persisting the lazy clear
// of an elapsed one.
func (s *Service) Remaining(ctx context.Context, guildID, actorID string) (time.Duration, error) {
	var remaining time.Duration
	err := s.repo.WithActorLock(ctx, guildID, actorID, func(ctx context.Context) error {
		rec, err := s.repo.LoadRecord(ctx, guildID, actorID, s.clk.Now())
		if err != nil {
			return err
		}
		remaining = rec.JailRemaining(s.clk.Now())
		return s.repo.SaveRecord(ctx, guildID, actorID, rec)
	})
	return remaining, err
}

// QuoteBail prices an early release at the current instant.
func (s *Service) QuoteBail(ctx context.Context, guildID, actorID string) (jail.BailQuote, error) {
	settings, err := s.repo.LoadSettings(ctx, guildID)
	if err != nil {
		return jail.BailQuote{}, err
	}
	if !settings.AllowBail {
		return jail.BailQuote{}, errors.ErrBailDisabled
	}
	remaining, err := s.Remaining(ctx, guildID, actorID)
	if err != nil {
		return jail.BailQuote{}, err
	}
	if remaining <= 0 {
		return jail.BailQuote{}, errors.ErrNotJailed
	}
	return jail.QuoteBail(remaining, settings.BailMultiplier), nil
}

// BailResult reports a completed bail payment.
type BailResult struct {
	Cost       int64         `json:"cost"`
	Served     time.Duration `json:"served"`
	NewBalance int64         `json:"new_balance"`
}

// PayBail buys an early release. The cost is quoted from the remaining
// sentence inside the guarded section, so the charge always matches the
// release it buys. Bail requires full solvency; there is no partial
// payment.
func (s *Service) PayBail(ctx context.Context, guildID, actorID string) (*BailResult, error) {
	settings, err := s.repo.LoadSettings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !settings.AllowBail {
		return nil, errors.ErrBailDisabled
	}

	var result *BailResult
	err = s.repo.WithActorLock(ctx, guildID, actorID, func(ctx context.Context) error {
		now := s.clk.Now()
		rec, err := s.repo.LoadRecord(ctx, guildID, actorID, now)
		if err != nil {
			return err
		}
		remaining := rec.JailRemaining(now)
		if remaining <= 0 {
			return errors.ErrNotJailed
		}
		quote := jail.QuoteBail(remaining, settings.BailMultiplier)

		ok, err := s.bank.CanSpend(ctx, guildID, actorID, quote.Cost)
		if err != nil {
			return err
		}
		if !ok {
			return errors.NewInsufficientFundsError(
				fmt.Sprintf("bail costs %d credits", quote.Cost))
		}
		if err := s.bank.Withdraw(ctx, guildID, actorID, quote.Cost); err != nil {
			return err
		}

		served := time.Duration(rec.OriginalSentence)*time.Second - remaining
		rec.BailPaid += quote.Cost
		rec.ClearJail()
		if err := s.repo.SaveRecord(ctx, guildID, actorID, rec); err != nil {
			return err
		}
		s.cancelRelease(guildID, actorID)

		balance, err := s.bank.GetBalance(ctx, guildID, actorID)
		if err != nil {
			return err
		}
		s.metrics.RecordBail(quote.Cost)
		s.logger.Info("bail paid",
			slog.String("guild", guildID),
			slog.String("actor", actorID),
			slog.Int64("cost", quote.Cost))
		result = &BailResult{Cost: quote.Cost, Served: served, NewBalance: balance}
		return nil
	})
	return result, err
}

// AppliedBreakEvent is one drawn jailbreak event with the credit delta
// actually committed, after shortfall clamping.
type AppliedBreakEvent struct {
	Event        jail.BreakEvent `json:"event"`
	CreditsDelta int64           `json:"credits_delta"`
}

// BreakResult reports a resolved jailbreak attempt.
type BreakResult struct {
	Scenario  jail.BreakScenario  `json:"scenario"`
	Events    []AppliedBreakEvent `json:"events"`
	Chance    float64             `json:"chance"`
	Success   bool                `json:"success"`
	Remaining time.Duration       `json:"remaining"`
	Narration string              `json:"narration"`
}

// AttemptJailbreak rolls one escape attempt. Each sentence allows
// exactly one; the attempt is burned before any event resolves, so an
// abandoned attempt still counts. Failure doubles the remaining
// sentence as measured when the attempt started.
func (s *Service) AttemptJailbreak(ctx context.Context, guildID, actorID string) (*BreakResult, error) {
	if !s.cfg.JailbreakEnabled {
		return nil, errors.NewPreconditionError("JAILBREAK_DISABLED", "jailbreaks are disabled")
	}

	var result *BreakResult
	err := s.repo.WithActorLock(ctx, guildID, actorID, func(ctx context.Context) error {
		now := s.clk.Now()
		rec, err := s.repo.LoadRecord(ctx, guildID, actorID, now)
		if err != nil {
			return err
		}
		remaining := rec.JailRemaining(now)
		if remaining <= 0 {
			return errors.ErrNotJailed
		}
		if rec.AttemptedJailbreak {
			return errors.ErrJailbreakUsed
		}

		// Burn the attempt before resolving anything.
		rec.AttemptedJailbreak = true
		if err := s.repo.SaveRecord(ctx, guildID, actorID, rec); err != nil {
			return err
		}

		scenarios := jail.BreakScenarios()
		scenario := scenarios[s.rng.IntN(len(scenarios))]
		chance := scenario.BaseChance

		count := 2 + s.rng.IntN(3)
		drawn := drawBreakEvents(scenario.Events, count, s.rng)

		applied := make([]AppliedBreakEvent, 0, len(drawn))
		for _, ev := range drawn {
			if s.cfg.Pacing {
				if err := s.clk.Sleep(ctx, breakEventDelay); err != nil {
					return errors.NewAbortedError("jailbreak abandoned").WithCause(err)
				}
			}
			chance += ev.ChanceBonus - ev.ChancePenalty

			var delta int64
			if ev.CurrencyBonus > 0 {
				if err := s.bank.Deposit(ctx, guildID, actorID, ev.CurrencyBonus); err != nil {
					return err
				}
				delta = ev.CurrencyBonus
			}
			if ev.CurrencyPenalty > 0 {
				taken, err := withdrawUpTo(ctx, s.bank, guildID, actorID, ev.CurrencyPenalty)
				if err != nil {
					return err
				}
				delta -= taken
			}
			applied = append(applied, AppliedBreakEvent{Event: ev, CreditsDelta: delta})
		}
		chance = clampChance(chance)

		success := s.rng.Float64() < chance
		narration := scenario.FailText
		if success {
			rec.ClearJail()
			rec.AttemptedJailbreak = false
			s.cancelRelease(guildID, actorID)
			narration = scenario.SuccessText
		} else {
			// Doubling the sentence: the clock restarts with twice what
			// was left when the attempt began.
			rec.JailUntil = now.Add(2 * remaining).Unix()
		}
		if err := s.repo.SaveRecord(ctx, guildID, actorID, rec); err != nil {
			return err
		}

		out := &BreakResult{
			Scenario:  scenario,
			Events:    applied,
			Chance:    chance,
			Success:   success,
			Narration: strings.ReplaceAll(narration, "{user}", actorID),
		}
		if !success {
			out.Remaining = 2 * remaining
		}
		s.metrics.RecordJailbreak(success)
		s.logger.Info("jailbreak attempted",
			slog.String("guild", guildID),
			slog.String("actor", actorID),
			slog.String("scenario", scenario.Name),
			slog.Bool("success", success),
			slog.Float64("chance", chance))
		result = out
		return nil
	})
	return result, err
}

// UseGetOutFree spends a get-out-of-jail-free item for an instant
// release.
func (s *Service) UseGetOutFree(ctx context.Context, guildID, actorID string) error {
	return s.repo.WithActorLock(ctx, guildID, actorID, func(ctx context.Context) error {
		now := s.clk.Now()
		rec, err := s.repo.LoadRecord(ctx, guildID, actorID, now)
		if err != nil {
			return err
		}
		if rec.JailRemaining(now) <= 0 {
			return errors.ErrNotJailed
		}
		if err := inventory.ConsumeUse(rec, inventory.ItemGetOutFree); err != nil {
			return err
		}
		rec.ClearJail()
		if err := s.repo.SaveRecord(ctx, guildID, actorID, rec); err != nil {
			return err
		}
		s.cancelRelease(guildID, actorID)
		s.logger.Info("instant release used",
			slog.String("guild", guildID),
			slog.String("actor", actorID))
		return nil
	})
}

// SetNotifyOnRelease toggles the release ping. Requires the notify
// perk. Enabling while jailed schedules the pending notification;
// disabling cancels it.
func (s *Service) SetNotifyOnRelease(ctx context.Context, guildID, actorID string, enabled bool) error {
	return s.repo.WithActorLock(ctx, guildID, actorID, func(ctx context.Context) error {
		now := s.clk.Now()
		rec, err := s.repo.LoadRecord(ctx, guildID, actorID, now)
		if err != nil {
			return err
		}
		if !inventory.HasPerk(rec, inventory.PerkNotifyPing) {
			return errors.NewPreconditionError("PERK_REQUIRED", "release notifications require the notify perk")
		}
		rec.NotifyOnRelease = enabled
		if err := s.repo.SaveRecord(ctx, guildID, actorID, rec); err != nil {
			return err
		}
		if remaining := rec.JailRemaining(now); enabled && remaining > 0 {
			s.scheduleRelease(guildID, actorID, remaining)
		} else if !enabled {
			s.cancelRelease(guildID, actorID)
		}
		return nil
	})
}

func taskKey(guildID, actorID string) string {
	return guildID + "/" + actorID
}

// scheduleRelease arms the release notification, replacing any pending
// timer for the same actor.
func (s *Service) scheduleRelease(guildID, actorID string, in time.Duration) {
	if s.notifier == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	key := taskKey(guildID, actorID)
	if prev, ok := s.tasks[key]; ok {
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	task := &releaseTask{cancel: cancel}
	s.tasks[key] = task
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			if s.tasks[key] == task {
				delete(s.tasks, key)
			}
			s.mu.Unlock()
		}()
		if err := s.clk.Sleep(ctx, in); err != nil {
			return
		}
		text := fmt.Sprintf("%s has been released from jail", actorID)
		if err := s.notifier.Notify(ctx, guildID, actorID, text); err != nil {
			s.logger.Warn("release notification failed",
				slog.String("guild", guildID),
				slog.String("actor", actorID),
				slog.String("error", err.Error()))
		}
	}()
}

// cancelRelease drops any pending release notification for the actor.
func (s *Service) cancelRelease(guildID, actorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := taskKey(guildID, actorID)
	if task, ok := s.tasks[key]; ok {
		task.cancel()
		delete(s.tasks, key)
	}
}

// drawBreakEvents samples count events without replacement.
func drawBreakEvents(pool []jail.BreakEvent, count int, rng random.Source) []jail.BreakEvent {
	remaining := make([]jail.BreakEvent, len(pool))
	copy(remaining, pool)
	if count > len(remaining) {
		count = len(remaining)
	}
	drawn := make([]jail.BreakEvent, 0, count)
	for i := 0; i < count; i++ {
		j := rng.IntN(len(remaining))
		drawn = append(drawn, remaining[j])
		remaining[j] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return drawn
}

// clampChance bounds an escape chance so no attempt is ever certain in
// either direction.
func clampChance(chance float64) float64 {
	if chance < 0.05 {
		return 0.05
	}
	if chance > 0.95 {
		return 0.95
	}
	return chance
}

// withdrawUpTo debits at most amount, clamped to the available balance.
// Returns the amount actually taken.
func withdrawUpTo(ctx context.Context, bank ledger.Ledger, guildID, actorID string, amount int64) (int64, error) {
	balance, err := bank.GetBalance(ctx, guildID, actorID)
	if err != nil {
		return 0, err
	}
	take := amount
	if take > balance {
		take = balance
	}
	if take <= 0 {
		return 0, nil
	}
	if err := bank.Withdraw(ctx, guildID, actorID, take); err != nil {
		return 0, err
	}
	return take, nil
}
