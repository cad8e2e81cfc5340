// Package ledger abstracts the external balance ledger. The engine
// never assumes multi-account atomicity; transfers are compensated at
// the service layer.
package ledger

import (
	"context"

	"github.com/undercity/undercity-engine/internal/domain/errors"
)

// Ledger is the balance ledger contract.
type Ledger interface {
	// GetBalance returns the current balance; absent accounts hold 0.
	GetBalance(ctx context.Context, guild, actor string) (int64, error)
	// CanSpend reports whether the actor holds at least amount.
	CanSpend(ctx context.Context, guild, actor string, amount int64) (bool, error)
	// Withdraw debits amount. Fails with an insufficient-funds error
	// when amount exceeds the balance; partial debits never happen.
	Withdraw(ctx context.Context, guild, actor string, amount int64) error
	// Deposit credits amount.
	Deposit(ctx context.Context, guild, actor string, amount int64) error
}

// ErrInsufficientFunds is what Withdraw returns on a shortfall.
var ErrInsufficientFunds = errors.ErrInsufficientFunds
