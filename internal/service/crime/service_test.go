package crime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	crimedomain "github.com/undercity/undercity-engine/internal/domain/crime"
	"github.com/undercity/undercity-engine/internal/domain/errors"
	"github.com/undercity/undercity-engine/internal/domain/guild"
	"github.com/undercity/undercity-engine/internal/domain/inventory"
	"github.com/undercity/undercity-engine/internal/infrastructure/clock"
	"github.com/undercity/undercity-engine/internal/infrastructure/ledger"
	"github.com/undercity/undercity-engine/internal/infrastructure/repository"
	"github.com/undercity/undercity-engine/internal/infrastructure/store"
	"github.com/undercity/undercity-engine/internal/service/jailing"
	"github.com/undercity/undercity-engine/internal/testutil"
)

type fixture struct {
	svc  *Service
	jail *jailing.Service
	repo *repository.Manager
	bank ledger.Ledger
	clk  *clock.Fake
	rng  *testutil.ScriptedSource
}

// newFixture builds a memory-backed engine. Modifier events are off by
// default so tests script only the rolls they assert on.
func newFixture(t *testing.T, balances map[string]int64) *fixture {
	t.Helper()
	ctx := context.Background()

	repo := repository.New(store.NewMemoryStore(), guild.DefaultSettings())
	settings := guild.DefaultSettings()
	settings.EnableEvents = false
	require.NoError(t, repo.SaveSettings(ctx, "g", settings))

	bank := ledger.NewMemoryLedgerWith(balances)
	clk := clock.NewFake(time.Unix(1_000_000, 0))
	rng := &testutil.ScriptedSource{}

	jailSvc := jailing.NewService(repo, bank, clk, rng, nil, nil, nil,
		jailing.Config{JailbreakEnabled: true})
	t.Cleanup(jailSvc.Stop)

	svc := NewService(repo, bank, clk, rng, jailSvc, nil, nil, nil, Config{})
	return &fixture{svc: svc, jail: jailSvc, repo: repo, bank: bank, clk: clk, rng: rng}
}

func (f *fixture) enableEvents(t *testing.T) {
	t.Helper()
	settings := guild.DefaultSettings()
	settings.EnableEvents = true
	require.NoError(t, f.repo.SaveSettings(context.Background(), "g", settings))
}

func TestAttemptUntargetedSuccess(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 0})
	ctx := context.Background()

	// Roll 0.3 < 0.5 succeeds; base reward 500 + 100 = 600; first
	// success starts a streak of 1 -> x1.05 -> floor(630).
	f.rng.Floats = []float64{0.3}
	f.rng.Ints = []int{100}

	outcome, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, int64(630), outcome.Amount)
	assert.Equal(t, 1, outcome.StreakCount)
	assert.InDelta(t, 1.05, outcome.StreakMultiplier, 1e-9)
	assert.InDelta(t, 0.5, outcome.FinalChance, 1e-9)

	balance, _ := f.bank.GetBalance(ctx, "g", "alice")
	assert.Equal(t, int64(630), balance)

	rec, err := f.repo.LoadRecord(ctx, "g", "alice", f.clk.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.SuccessfulCrimes)
	assert.Equal(t, int64(630), rec.CreditsEarned)
	assert.Equal(t, int64(630), rec.LargestHeist)
	assert.Positive(t, rec.LastAttempts[string(crimedomain.RobStore)])
}

func TestAttemptFailureFinesAndJails(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 1000})
	ctx := context.Background()

	// Roll 0.9 >= 0.5 fails. Fine floor(2000*0.4) = 800.
	f.rng.Floats = []float64{0.9}

	outcome, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, int64(800), outcome.Fine)
	assert.Equal(t, 45*time.Minute, outcome.JailTime)
	assert.Equal(t, 0, outcome.StreakCount)

	balance, _ := f.bank.GetBalance(ctx, "g", "alice")
	assert.Equal(t, int64(200), balance)

	remaining, err := f.jail.Remaining(ctx, "g", "alice")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, remaining)

	rec, _ := f.repo.LoadRecord(ctx, "g", "alice", f.clk.Now())
	assert.Equal(t, int64(1), rec.FailedCrimes)
	assert.Equal(t, int64(800), rec.FinesPaid)
}

func TestAttemptInsolventFailureDoublesJail(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 100})
	ctx := context.Background()

	f.rng.Floats = []float64{0.9}

	outcome, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	// The whole balance goes, and the sentence doubles.
	assert.Equal(t, int64(100), outcome.Fine)
	assert.Equal(t, 90*time.Minute, outcome.JailTime)

	balance, _ := f.bank.GetBalance(ctx, "g", "alice")
	assert.Zero(t, balance)
}

func TestAttemptRejectedWhileJailed(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 1000})
	ctx := context.Background()

	f.rng.Floats = []float64{0.9}
	_, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	require.NoError(t, err)

	_, err = f.svc.Attempt(ctx, "g", "alice", crimedomain.BankHeist, "")
	assert.ErrorIs(t, err, errors.ErrActorJailed)
}

func TestAttemptRejectedOnCooldown(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 0})
	ctx := context.Background()

	f.rng.Floats = []float64{0.3}
	f.rng.Ints = []int{0}
	_, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	require.NoError(t, err)

	_, err = f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	assert.ErrorIs(t, err, errors.ErrCooldownActive)

	// The cooldown expires with time.
	f.clk.Advance(6 * time.Hour)
	f.rng.Floats = append(f.rng.Floats, 0.3)
	f.rng.Ints = append(f.rng.Ints, 0)
	_, err = f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	assert.NoError(t, err)
}

func TestAttemptDisabledCrime(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.svc.SetEnabled(ctx, "g", crimedomain.RobStore, false))
	_, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	assert.ErrorIs(t, err, errors.ErrCrimeDisabled)

	_, err = f.svc.Attempt(ctx, "g", "alice", "arson", "")
	assert.ErrorIs(t, err, errors.ErrUnknownCrime)
}

func TestAttemptTargetedSuccess(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 0, "g/bob": 10000})
	ctx := context.Background()

	// Roll 0.1 succeeds; percentage draw 1.0 -> max steal pct 0.10 ->
	// raw floor(10000*0.10) = 1000, capped at max reward 500, then
	// streak x1.05 -> 525.
	f.rng.Floats = []float64{0.1, 1.0}

	outcome, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.Pickpocket, "bob")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, int64(525), outcome.Amount)
	assert.Equal(t, "bob", outcome.Target)

	aliceBalance, _ := f.bank.GetBalance(ctx, "g", "alice")
	bobBalance, _ := f.bank.GetBalance(ctx, "g", "bob")
	assert.Equal(t, int64(525), aliceBalance)
	assert.Equal(t, int64(9475), bobBalance)

	rec, _ := f.repo.LoadRecord(ctx, "g", "alice", f.clk.Now())
	assert.Equal(t, "bob", rec.LastTarget)
	assert.Equal(t, int64(525), rec.StolenFrom)

	bobRec, _ := f.repo.LoadRecord(ctx, "g", "bob", f.clk.Now())
	assert.Equal(t, int64(525), bobRec.StolenBy)
}

func TestAttemptTargetValidation(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 0, "g/bob": 10000, "g/poor": 50})
	ctx := context.Background()

	_, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.Pickpocket, "")
	assert.True(t, errors.IsValidation(err), "missing target")

	_, err = f.svc.Attempt(ctx, "g", "alice", crimedomain.Pickpocket, "alice")
	assert.True(t, errors.IsValidation(err), "self target")

	_, err = f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "bob")
	assert.True(t, errors.IsValidation(err), "target on untargeted crime")

	// Below max(guild floor 100, crime min reward 150).
	_, err = f.svc.Attempt(ctx, "g", "alice", crimedomain.Pickpocket, "poor")
	assert.True(t, errors.IsPrecondition(err), "poor target")
}

func TestAttemptCannotRepeatTarget(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 0, "g/bob": 10000, "g/carol": 10000})
	ctx := context.Background()

	f.rng.Floats = []float64{0.1, 1.0}
	_, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.Pickpocket, "bob")
	require.NoError(t, err)

	f.clk.Advance(10 * time.Minute)
	_, err = f.svc.Attempt(ctx, "g", "alice", crimedomain.Pickpocket, "bob")
	assert.True(t, errors.IsPrecondition(err), "same target twice in a row")

	// A different target is fine.
	f.rng.Floats = append(f.rng.Floats, 0.1, 1.0)
	_, err = f.svc.Attempt(ctx, "g", "alice", crimedomain.Pickpocket, "carol")
	assert.NoError(t, err)
}

func TestAttemptJailedTargetRejected(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 0, "g/bob": 10000})
	ctx := context.Background()

	// Jail bob first.
	f.rng.Floats = []float64{0.9}
	_, err := f.svc.Attempt(ctx, "g", "bob", crimedomain.RobStore, "")
	require.NoError(t, err)

	_, err = f.svc.Attempt(ctx, "g", "alice", crimedomain.Pickpocket, "bob")
	assert.True(t, errors.IsPrecondition(err))
}

func TestChanceClamping(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 0})
	ctx := context.Background()

	// Floor: rate 0 still leaves a 5% chance.
	require.NoError(t, f.svc.SetSuccessRate(ctx, "g", crimedomain.RobStore, 0.0))
	f.rng.Floats = []float64{0.9}
	outcome, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	require.NoError(t, err)
	assert.InDelta(t, 0.05, outcome.FinalChance, 1e-9)

	// Ceiling: rate 1.0 plus a lucky charm stays at 1.0.
	f.clk.Advance(48 * time.Hour)
	require.NoError(t, f.svc.SetSuccessRate(ctx, "g", crimedomain.BankHeist, 1.0))
	now := f.clk.Now()
	rec, err := f.repo.LoadRecord(ctx, "g", "alice", now)
	require.NoError(t, err)
	require.NoError(t, inventory.GrantItem(rec, inventory.ItemLuckyCharm, now))
	require.NoError(t, f.repo.SaveRecord(ctx, "g", "alice", rec))

	f.rng.Floats = append(f.rng.Floats, 0.5)
	f.rng.Ints = append(f.rng.Ints, 0)
	outcome, err = f.svc.Attempt(ctx, "g", "alice", crimedomain.BankHeist, "")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, outcome.FinalChance, 1e-9)
	assert.True(t, outcome.Success)
}

func TestEventCreditPenaltyClampsToBalance(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 30})
	f.enableEvents(t)
	ctx := context.Background()

	// Cascade: the first draw fires (0.0), the second fails (0.9 >=
	// 0.75). Event index 9 is the dropped-loot penalty of 200; only
	// the held 30 is taken. Roll 0.99 fails the attempt.
	f.rng.Floats = []float64{0.0, 0.9, 0.99}
	f.rng.Ints = []int{9}
	outcome, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	require.NoError(t, err)
	require.Len(t, outcome.Events, 1)
	assert.Equal(t, int64(-30), outcome.Events[0].CreditsDelta)

	// The penalty emptied the account before the failed roll, so the
	// fine finds nothing and the sentence doubles.
	assert.Equal(t, int64(0), outcome.Fine)
	assert.Equal(t, 90*time.Minute, outcome.JailTime)
}

func TestEventMultipliersCompound(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 0})
	f.enableEvents(t)
	ctx := context.Background()

	// Two events: index 2 (open_register, x1.4 reward) then, after the
	// swap, index 2 again picks dropped_loot... script explicit draws:
	// first 0.0 fires, second 0.5 < 0.75 fires, third 0.9 >= 0.50
	// stops. Draw open_register (index 2) then broken_camera (index 0).
	f.rng.Floats = []float64{0.0, 0.5, 0.9, 0.3}
	f.rng.Ints = []int{2, 0, 0}

	outcome, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	require.NoError(t, err)
	require.Len(t, outcome.Events, 2)
	assert.True(t, outcome.Success)

	// chance 0.5 + 0.2 (broken_camera) = 0.7; reward 500 x1.4 x1.05
	// streak = floor(735).
	assert.InDelta(t, 0.7, outcome.FinalChance, 1e-9)
	assert.Equal(t, int64(735), outcome.Amount)
}

func TestRandomCrimeUsesScenario(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 1000})
	ctx := context.Background()

	// Scenario index 0 is the ice cream heist: rate 0.75, jail 3m,
	// fine floor(300*0.3) = 90. Roll 0.8 fails.
	f.rng.Ints = []int{0}
	f.rng.Floats = []float64{0.8}

	outcome, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.Random, "")
	require.NoError(t, err)
	require.NotNil(t, outcome.Scenario)
	assert.Equal(t, "ice_cream_heist", outcome.Scenario.Name)
	assert.False(t, outcome.Success)
	assert.Equal(t, int64(90), outcome.Fine)
	assert.Equal(t, 3*time.Minute, outcome.JailTime)
	assert.Contains(t, outcome.Narration, "alice")

	// The substitution was for that attempt only.
	defs, err := f.svc.Catalog(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, 0.5, defs[crimedomain.Random].SuccessRate)
	assert.Equal(t, 10*time.Minute, defs[crimedomain.Random].JailTime)
}

func TestCustomScenarioDrawable(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 0})
	ctx := context.Background()

	custom := crimedomain.Scenario{
		Name:           "sewer_dive",
		Risk:           crimedomain.RiskLow,
		MinReward:      10,
		MaxReward:      20,
		SuccessRate:    0.9,
		JailTime:       time.Minute,
		FineMultiplier: 0.1,
		AttemptText:    "{user} dives in...",
		SuccessText:    "{user} surfaces with {amount} {currency}!",
		FailText:       "{user} got stuck!",
	}
	require.NoError(t, f.svc.AddScenario(ctx, "g", custom))

	builtins := len(crimedomain.BuiltinScenarios())
	f.rng.Ints = []int{builtins, 0}
	f.rng.Floats = []float64{0.1}

	outcome, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.Random, "")
	require.NoError(t, err)
	require.NotNil(t, outcome.Scenario)
	assert.Equal(t, "sewer_dive", outcome.Scenario.Name)
	assert.True(t, outcome.Success)
}

func TestAddScenarioRejectsDuplicates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	dup := crimedomain.BuiltinScenarios()[0]
	err := f.svc.AddScenario(ctx, "g", dup)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
}

func TestStreakMultiplierGrows(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 0})
	ctx := context.Background()

	require.NoError(t, f.svc.SetCooldown(ctx, "g", crimedomain.RobStore, 0))

	var last *Outcome
	for i := 0; i < 3; i++ {
		f.rng.Floats = append(f.rng.Floats, 0.1)
		f.rng.Ints = append(f.rng.Ints, 0)
		var err error
		last, err = f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, last.StreakCount)
	assert.InDelta(t, 1.15, last.StreakMultiplier, 1e-9)
	// floor(500 * 1.15)
	assert.Equal(t, int64(575), last.Amount)
}

func TestAttemptAbortedOnCancelledContext(t *testing.T) {
	repo := repository.New(store.NewMemoryStore(), guild.DefaultSettings())
	settings := guild.DefaultSettings()
	settings.EnableEvents = false
	require.NoError(t, repo.SaveSettings(context.Background(), "g", settings))

	bank := ledger.NewMemoryLedgerWith(map[string]int64{"g/alice": 1000})
	clk := clock.NewFake(time.Unix(1_000_000, 0))
	rng := &testutil.ScriptedSource{Floats: []float64{0.9}}
	jailSvc := jailing.NewService(repo, bank, clk, rng, nil, nil, nil, jailing.Config{})
	t.Cleanup(jailSvc.Stop)
	svc := NewService(repo, bank, clk, rng, jailSvc, nil, nil, nil, Config{Pacing: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAborted))

	// Nothing committed: no cooldown, no fine, no jail.
	rec, err := repo.LoadRecord(context.Background(), "g", "alice", clk.Now())
	require.NoError(t, err)
	assert.Empty(t, rec.LastAttempts)
	balance, _ := bank.GetBalance(context.Background(), "g", "alice")
	assert.Equal(t, int64(1000), balance)
}

func TestStatusReportsState(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 1000})
	ctx := context.Background()

	f.rng.Floats = []float64{0.9}
	_, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	require.NoError(t, err)

	status, err := f.svc.Status(ctx, "g", "alice")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, status.JailRemaining)
	assert.Equal(t, 6*time.Hour, status.Cooldowns[crimedomain.RobStore])
	assert.Equal(t, int64(200), status.Balance)
	assert.Equal(t, int64(1), status.Record.FailedCrimes)
}

func TestLeaderboard(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 0, "g/bob": 0})
	ctx := context.Background()

	f.rng.Floats = []float64{0.1}
	f.rng.Ints = []int{0}
	_, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	require.NoError(t, err)

	f.rng.Floats = append(f.rng.Floats, 0.1)
	f.rng.Ints = append(f.rng.Ints, 1000)
	_, err = f.svc.Attempt(ctx, "g", "bob", crimedomain.RobStore, "")
	require.NoError(t, err)

	entries, err := f.svc.Leaderboard(ctx, "g", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].Actor)
	assert.Equal(t, "alice", entries[1].Actor)

	entries, err = f.svc.Leaderboard(ctx, "g", 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWipeActorClearsDanglingTargets(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 0, "g/bob": 10000})
	ctx := context.Background()

	f.rng.Floats = []float64{0.1, 1.0}
	_, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.Pickpocket, "bob")
	require.NoError(t, err)

	require.NoError(t, f.svc.WipeActor(ctx, "g", "bob"))

	rec, err := f.repo.LoadRecord(ctx, "g", "alice", f.clk.Now())
	require.NoError(t, err)
	assert.Empty(t, rec.LastTarget)

	// Bob's record is gone; the balance is the ledger's business.
	bobRec, err := f.repo.LoadRecord(ctx, "g", "bob", f.clk.Now())
	require.NoError(t, err)
	assert.Zero(t, bobRec.StolenBy)
	bobBalance, _ := f.bank.GetBalance(ctx, "g", "bob")
	assert.Equal(t, int64(9475), bobBalance)
}

func TestWipeGuild(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 0})
	ctx := context.Background()

	f.rng.Floats = []float64{0.1}
	f.rng.Ints = []int{0}
	_, err := f.svc.Attempt(ctx, "g", "alice", crimedomain.RobStore, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.WipeGuild(ctx, "g"))

	rec, err := f.repo.LoadRecord(ctx, "g", "alice", f.clk.Now())
	require.NoError(t, err)
	assert.Zero(t, rec.SuccessfulCrimes)

	// Settings return to defaults, so events are on again.
	settings, err := f.svc.Settings(ctx, "g")
	require.NoError(t, err)
	assert.True(t, settings.EnableEvents)
}

func TestBuyItem(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 20000})
	ctx := context.Background()

	require.NoError(t, f.svc.BuyItem(ctx, "g", "alice", inventory.PerkJailReducer))

	balance, _ := f.bank.GetBalance(ctx, "g", "alice")
	assert.Zero(t, balance)

	rec, _ := f.repo.LoadRecord(ctx, "g", "alice", f.clk.Now())
	assert.True(t, inventory.HasPerk(rec, inventory.PerkJailReducer))

	// Broke now: the next purchase is rejected without granting.
	err := f.svc.BuyItem(ctx, "g", "alice", inventory.ItemLuckyCharm)
	assert.True(t, errors.IsInsufficientFunds(err))

	err = f.svc.BuyItem(ctx, "g", "alice", "nonsense")
	assert.True(t, errors.IsValidation(err))
}

func TestBuyNotifyPerkUsesGuildPrice(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 500})
	ctx := context.Background()

	_, err := f.svc.UpdateSettings(ctx, "g", func(s *guild.Settings) error {
		s.NotifyCost = 500
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.BuyItem(ctx, "g", "alice", inventory.PerkNotifyPing))

	balance, _ := f.bank.GetBalance(ctx, "g", "alice")
	assert.Zero(t, balance)
	rec, _ := f.repo.LoadRecord(ctx, "g", "alice", f.clk.Now())
	assert.True(t, rec.NotifyOnRelease)
}

func TestAdminSettersPersist(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.svc.SetSuccessRate(ctx, "g", crimedomain.Mugging, 0.8))
	require.NoError(t, f.svc.SetFineMultiplier(ctx, "g", crimedomain.Mugging, 0.5))

	defs, err := f.svc.Catalog(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, 0.8, defs[crimedomain.Mugging].SuccessRate)
	assert.Equal(t, 0.5, defs[crimedomain.Mugging].FineMultiplier)

	// Rejected values change nothing.
	assert.Error(t, f.svc.SetSuccessRate(ctx, "g", crimedomain.Mugging, 1.5))
	defs, _ = f.svc.Catalog(ctx, "g")
	assert.Equal(t, 0.8, defs[crimedomain.Mugging].SuccessRate)
}
