package ledger

import (
	"context"
	"fmt"
	"sync"
)

// memoryLedger is an in-process Ledger for tests and single-node runs.
type memoryLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger() Ledger {
	return &memoryLedger{balances: make(map[string]int64)}
}

// NewMemoryLedgerWith seeds balances from a map of "guild/actor" keys.
func NewMemoryLedgerWith(seed map[string]int64) Ledger {
	l := &memoryLedger{balances: make(map[string]int64, len(seed))}
	for key, balance := range seed {
		l.balances[key] = balance
	}
	return l
}

func accountKey(guild, actor string) string {
	return guild + "/" + actor
}

func (l *memoryLedger) GetBalance(ctx context.Context, guild, actor string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[accountKey(guild, actor)], nil
}

func (l *memoryLedger) CanSpend(ctx context.Context, guild, actor string, amount int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[accountKey(guild, actor)] >= amount, nil
}

func (l *memoryLedger) Withdraw(ctx context.Context, guild, actor string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("withdraw amount must not be negative: %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	key := accountKey(guild, actor)
	if l.balances[key] < amount {
		return ErrInsufficientFunds
	}
	l.balances[key] -= amount
	return nil
}

func (l *memoryLedger) Deposit(ctx context.Context, guild, actor string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("deposit amount must not be negative: %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[accountKey(guild, actor)] += amount
	return nil
}
