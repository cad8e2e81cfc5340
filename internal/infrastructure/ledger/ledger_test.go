package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedgerWith(map[string]int64{"g/alice": 500})

	balance, err := l.GetBalance(ctx, "g", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)

	// Absent accounts hold zero.
	balance, err = l.GetBalance(ctx, "g", "bob")
	require.NoError(t, err)
	assert.Zero(t, balance)

	ok, err := l.CanSpend(ctx, "g", "alice", 500)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = l.CanSpend(ctx, "g", "alice", 501)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Withdraw(ctx, "g", "alice", 200))
	balance, _ = l.GetBalance(ctx, "g", "alice")
	assert.Equal(t, int64(300), balance)

	// A shortfall debits nothing.
	err = l.Withdraw(ctx, "g", "alice", 301)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	balance, _ = l.GetBalance(ctx, "g", "alice")
	assert.Equal(t, int64(300), balance)

	require.NoError(t, l.Deposit(ctx, "g", "bob", 50))
	balance, _ = l.GetBalance(ctx, "g", "bob")
	assert.Equal(t, int64(50), balance)

	assert.Error(t, l.Withdraw(ctx, "g", "alice", -1))
	assert.Error(t, l.Deposit(ctx, "g", "alice", -1))
}
