package crime

import (
	"context"

	"github.com/undercity/undercity-engine/internal/domain/errors"
	"github.com/undercity/undercity-engine/internal/infrastructure/ledger"
)

// transfer moves credits between two actors. The ledger offers no
// multi-account atomicity, so a failed credit is compensated by
// refunding the debit.
func transfer(ctx context.Context, bank ledger.Ledger, guildID, from, to string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	if err := bank.Withdraw(ctx, guildID, from, amount); err != nil {
		return err
	}
	if err := bank.Deposit(ctx, guildID, to, amount); err != nil {
		if refundErr := bank.Deposit(ctx, guildID, from, amount); refundErr != nil {
			return errors.NewInternalError("transfer credit failed and refund failed").WithCause(refundErr)
		}
		return errors.NewInternalError("transfer credit failed, debit refunded").WithCause(err)
	}
	return nil
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
