package jailing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undercity/undercity-engine/internal/domain/errors"
	"github.com/undercity/undercity-engine/internal/domain/guild"
	"github.com/undercity/undercity-engine/internal/domain/inventory"
	"github.com/undercity/undercity-engine/internal/infrastructure/clock"
	"github.com/undercity/undercity-engine/internal/infrastructure/ledger"
	"github.com/undercity/undercity-engine/internal/infrastructure/repository"
	"github.com/undercity/undercity-engine/internal/infrastructure/store"
	"github.com/undercity/undercity-engine/internal/testutil"
)

type fixture struct {
	svc  *Service
	repo *repository.Manager
	bank ledger.Ledger
	clk  *clock.Fake
	rng  *testutil.ScriptedSource
}

func newFixture(t *testing.T, balances map[string]int64) *fixture {
	t.Helper()
	repo := repository.New(store.NewMemoryStore(), guild.DefaultSettings())
	bank := ledger.NewMemoryLedgerWith(balances)
	clk := clock.NewFake(time.Unix(1_000_000, 0))
	rng := &testutil.ScriptedSource{}
	svc := NewService(repo, bank, clk, rng, nil, nil, nil, Config{JailbreakEnabled: true})
	t.Cleanup(svc.Stop)
	return &fixture{svc: svc, repo: repo, bank: bank, clk: clk, rng: rng}
}

// jailActor puts an actor in jail directly through the record.
func (f *fixture) jailActor(t *testing.T, guildID, actorID string, sentence time.Duration) {
	t.Helper()
	ctx := context.Background()
	now := f.clk.Now()
	rec, err := f.repo.LoadRecord(ctx, guildID, actorID, now)
	require.NoError(t, err)
	f.svc.Imprison(rec, guildID, actorID, sentence, now)
	require.NoError(t, f.repo.SaveRecord(ctx, guildID, actorID, rec))
}

func TestImprisonAppliesPerkReduction(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	now := f.clk.Now()

	rec, err := f.repo.LoadRecord(ctx, "g", "alice", now)
	require.NoError(t, err)
	require.NoError(t, inventory.GrantPerk(rec, inventory.PerkJailReducer))

	applied := f.svc.Imprison(rec, "g", "alice", 100*time.Minute, now)
	assert.Equal(t, 80*time.Minute, applied)
	assert.Equal(t, now.Add(80*time.Minute).Unix(), rec.JailUntil)
	// The original sentence is kept pre-reduction.
	assert.Equal(t, int64(100*60), rec.OriginalSentence)
	assert.False(t, rec.AttemptedJailbreak)
}

func TestRemainingLazyClears(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.jailActor(t, "g", "alice", 30*time.Minute)

	remaining, err := f.svc.Remaining(ctx, "g", "alice")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, remaining)

	f.clk.Advance(31 * time.Minute)
	remaining, err = f.svc.Remaining(ctx, "g", "alice")
	require.NoError(t, err)
	assert.Zero(t, remaining)

	// The clear was persisted, not just computed.
	rec, err := f.repo.LoadRecord(ctx, "g", "alice", f.clk.Now())
	require.NoError(t, err)
	assert.Zero(t, rec.JailUntil)
}

func TestPayBail(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 100})
	ctx := context.Background()

	f.jailActor(t, "g", "alice", 30*time.Minute)

	// ceil(0.35 * 30) = 11
	quote, err := f.svc.QuoteBail(ctx, "g", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(11), quote.Cost)

	result, err := f.svc.PayBail(ctx, "g", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(11), result.Cost)
	assert.Equal(t, int64(89), result.NewBalance)

	remaining, err := f.svc.Remaining(ctx, "g", "alice")
	require.NoError(t, err)
	assert.Zero(t, remaining)

	rec, err := f.repo.LoadRecord(ctx, "g", "alice", f.clk.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(11), rec.BailPaid)
}

func TestPayBailRequiresSolvency(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 5})
	ctx := context.Background()

	f.jailActor(t, "g", "alice", 30*time.Minute)

	_, err := f.svc.PayBail(ctx, "g", "alice")
	require.Error(t, err)
	assert.True(t, errors.IsInsufficientFunds(err))

	// Nothing was charged and the sentence stands.
	balance, _ := f.bank.GetBalance(ctx, "g", "alice")
	assert.Equal(t, int64(5), balance)
	remaining, _ := f.svc.Remaining(ctx, "g", "alice")
	assert.Equal(t, 30*time.Minute, remaining)
}

func TestPayBailNotJailed(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 100})
	_, err := f.svc.PayBail(context.Background(), "g", "alice")
	assert.ErrorIs(t, err, errors.ErrNotJailed)
}

func TestPayBailDisabled(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 100})
	ctx := context.Background()

	settings := guild.DefaultSettings()
	settings.AllowBail = false
	require.NoError(t, f.repo.SaveSettings(ctx, "g", settings))

	f.jailActor(t, "g", "alice", 30*time.Minute)
	_, err := f.svc.PayBail(ctx, "g", "alice")
	assert.ErrorIs(t, err, errors.ErrBailDisabled)
}

func TestJailbreakSuccessReleases(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 1000})
	ctx := context.Background()

	f.jailActor(t, "g", "alice", 60*time.Minute)

	// Scenario 0 (Tunnel Escape, base 0.35); draw 2 events (IntN(3)=0).
	// First draw takes index 0 (tools, +0.15) and the last event
	// (shovel, -150 credits) swaps into slot 0, so the second draw
	// takes it. Chance 0.50; roll 0.1 succeeds.
	f.rng.Ints = []int{0, 0, 0, 0}
	f.rng.Floats = []float64{0.1}

	result, err := f.svc.AttemptJailbreak(ctx, "g", "alice")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Tunnel Escape", result.Scenario.Name)
	assert.Len(t, result.Events, 2)
	assert.InDelta(t, 0.50, result.Chance, 1e-9)

	remaining, err := f.svc.Remaining(ctx, "g", "alice")
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestJailbreakFailureDoublesRemaining(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 1000})
	ctx := context.Background()

	f.jailActor(t, "g", "alice", 60*time.Minute)

	f.rng.Ints = []int{0, 0, 0, 0}
	f.rng.Floats = []float64{0.99} // roll fails

	result, err := f.svc.AttemptJailbreak(ctx, "g", "alice")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 120*time.Minute, result.Remaining)

	remaining, err := f.svc.Remaining(ctx, "g", "alice")
	require.NoError(t, err)
	assert.Equal(t, 120*time.Minute, remaining)

	// One attempt per sentence, even after the penalty extension.
	_, err = f.svc.AttemptJailbreak(ctx, "g", "alice")
	assert.ErrorIs(t, err, errors.ErrJailbreakUsed)
}

func TestJailbreakEventsMoveCurrency(t *testing.T) {
	f := newFixture(t, map[string]int64{"g/alice": 100})
	ctx := context.Background()

	f.jailActor(t, "g", "alice", 60*time.Minute)

	// Scenario 0, two events: index 2 is the credit pouch (+200), then
	// index 2 of the shrunk pool. After drawing index 2 the last event
	// (shovel, -150) swaps into slot 2, so the second draw takes it.
	f.rng.Ints = []int{0, 0, 2, 2}
	f.rng.Floats = []float64{0.99}

	result, err := f.svc.AttemptJailbreak(ctx, "g", "alice")
	require.NoError(t, err)
	require.Len(t, result.Events, 2)
	assert.Equal(t, int64(200), result.Events[0].CreditsDelta)
	assert.Equal(t, int64(-150), result.Events[1].CreditsDelta)

	balance, _ := f.bank.GetBalance(ctx, "g", "alice")
	assert.Equal(t, int64(150), balance)
}

func TestJailbreakRequiresJail(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.AttemptJailbreak(context.Background(), "g", "alice")
	assert.ErrorIs(t, err, errors.ErrNotJailed)
}

func TestJailbreakDisabled(t *testing.T) {
	repo := repository.New(store.NewMemoryStore(), guild.DefaultSettings())
	svc := NewService(repo, ledger.NewMemoryLedger(), clock.NewFake(time.Unix(1_000_000, 0)),
		&testutil.ScriptedSource{}, nil, nil, nil, Config{JailbreakEnabled: false})
	t.Cleanup(svc.Stop)

	_, err := svc.AttemptJailbreak(context.Background(), "g", "alice")
	require.Error(t, err)
	assert.True(t, errors.IsPrecondition(err))
}

func TestUseGetOutFree(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	now := f.clk.Now()

	rec, err := f.repo.LoadRecord(ctx, "g", "alice", now)
	require.NoError(t, err)
	require.NoError(t, inventory.GrantItem(rec, inventory.ItemGetOutFree, now))
	require.NoError(t, f.repo.SaveRecord(ctx, "g", "alice", rec))

	f.jailActor(t, "g", "alice", 60*time.Minute)

	require.NoError(t, f.svc.UseGetOutFree(ctx, "g", "alice"))
	remaining, err := f.svc.Remaining(ctx, "g", "alice")
	require.NoError(t, err)
	assert.Zero(t, remaining)

	// The single use is spent.
	f.jailActor(t, "g", "alice", 60*time.Minute)
	err = f.svc.UseGetOutFree(ctx, "g", "alice")
	assert.True(t, errors.IsPrecondition(err))
}

func TestSetNotifyOnReleaseRequiresPerk(t *testing.T) {
	f := newFixture(t, nil)
	err := f.svc.SetNotifyOnRelease(context.Background(), "g", "alice", true)
	require.Error(t, err)
	assert.True(t, errors.IsPrecondition(err))
}

func TestReleaseNotificationDelivered(t *testing.T) {
	repo := repository.New(store.NewMemoryStore(), guild.DefaultSettings())
	clk := clock.NewFake(time.Unix(1_000_000, 0))
	notifier := &testutil.RecordingNotifier{}
	svc := NewService(repo, ledger.NewMemoryLedger(), clk, &testutil.ScriptedSource{},
		notifier, nil, nil, Config{JailbreakEnabled: true})
	t.Cleanup(svc.Stop)

	ctx := context.Background()
	now := clk.Now()
	rec, err := repo.LoadRecord(ctx, "g", "alice", now)
	require.NoError(t, err)
	require.NoError(t, inventory.GrantPerk(rec, inventory.PerkNotifyPing))
	rec.NotifyOnRelease = true

	svc.Imprison(rec, "g", "alice", time.Minute, now)
	require.NoError(t, repo.SaveRecord(ctx, "g", "alice", rec))

	// The fake clock's Sleep returns immediately, so the scheduled
	// notification fires right away.
	assert.Eventually(t, func() bool {
		return len(notifier.Sent()) == 1
	}, time.Second, 5*time.Millisecond)

	sent := notifier.Sent()
	assert.Equal(t, "g", sent[0].Guild)
	assert.Equal(t, "alice", sent[0].Actor)
}

func TestPayBailCancelsNotification(t *testing.T) {
	// A real clock keeps the scheduled timer parked so the cancellation
	// path is observable.
	repo := repository.New(store.NewMemoryStore(), guild.DefaultSettings())
	bank := ledger.NewMemoryLedgerWith(map[string]int64{"g/alice": 1000})
	clk := clock.NewSystem()
	notifier := &testutil.RecordingNotifier{}
	svc := NewService(repo, bank, clk, &testutil.ScriptedSource{},
		notifier, nil, nil, Config{JailbreakEnabled: true})
	t.Cleanup(svc.Stop)

	ctx := context.Background()
	now := clk.Now()
	rec, err := repo.LoadRecord(ctx, "g", "alice", now)
	require.NoError(t, err)
	require.NoError(t, inventory.GrantPerk(rec, inventory.PerkNotifyPing))
	rec.NotifyOnRelease = true

	svc.Imprison(rec, "g", "alice", time.Hour, now)
	require.NoError(t, repo.SaveRecord(ctx, "g", "alice", rec))

	_, err = svc.PayBail(ctx, "g", "alice")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, notifier.Sent())
}
