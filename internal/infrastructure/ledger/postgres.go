package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// postgresLedger implements Ledger on Postgres. Each debit is a single
// conditional UPDATE so a row can never go negative, matching the
// external ledger's InsufficientFunds contract.
type postgresLedger struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Schema for the balances table:
//
//	CREATE TABLE IF NOT EXISTS balances (
//	    guild_id TEXT NOT NULL,
//	    actor_id TEXT NOT NULL,
//	    balance  BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
//	    PRIMARY KEY (guild_id, actor_id)
//	);

// NewPostgresLedger connects a ledger to an existing pool.
func NewPostgresLedger(pool *pgxpool.Pool, logger *zap.Logger) (Ledger, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &postgresLedger{pool: pool, logger: logger}, nil
}

func (l *postgresLedger) GetBalance(ctx context.Context, guild, actor string) (int64, error) {
	var balance int64
	err := l.pool.QueryRow(ctx,
		`SELECT balance FROM balances WHERE guild_id = $1 AND actor_id = $2`,
		guild, actor,
	).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		l.logger.Error("balance query failed",
			zap.String("guild", guild), zap.String("actor", actor), zap.Error(err))
		return 0, fmt.Errorf("querying balance: %w", err)
	}
	return balance, nil
}

func (l *postgresLedger) CanSpend(ctx context.Context, guild, actor string, amount int64) (bool, error) {
	balance, err := l.GetBalance(ctx, guild, actor)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

func (l *postgresLedger) Withdraw(ctx context.Context, guild, actor string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("withdraw amount must not be negative: %d", amount)
	}
	if amount == 0 {
		return nil
	}
	tag, err := l.pool.Exec(ctx,
		`UPDATE balances SET balance = balance - $3
		 WHERE guild_id = $1 AND actor_id = $2 AND balance >= $3`,
		guild, actor, amount,
	)
	if err != nil {
		l.logger.Error("withdraw failed",
			zap.String("guild", guild), zap.String("actor", actor),
			zap.Int64("amount", amount), zap.Error(err))
		return fmt.Errorf("withdrawing credits: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func (l *postgresLedger) Deposit(ctx context.Context, guild, actor string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("deposit amount must not be negative: %d", amount)
	}
	if amount == 0 {
		return nil
	}
	_, err := l.pool.Exec(ctx,
		`INSERT INTO balances (guild_id, actor_id, balance) VALUES ($1, $2, $3)
		 ON CONFLICT (guild_id, actor_id) DO UPDATE SET balance = balances.balance + $3`,
		guild, actor, amount,
	)
	if err != nil {
		l.logger.Error("deposit failed",
			zap.String("guild", guild), zap.String("actor", actor),
			zap.Int64("amount", amount), zap.Error(err))
		return fmt.Errorf("depositing credits: %w", err)
	}
	return nil
}
