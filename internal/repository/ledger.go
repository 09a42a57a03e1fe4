package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/pkg/db"
)

// LedgerRepository stores per-(user, community) balances.
// Rows are created on first touch with the starting balance.
type LedgerRepository struct {
	db              db.Querier
	startingBalance int64
}

// NewLedgerRepository creates a new LedgerRepository instance.
func NewLedgerRepository(q db.Querier, startingBalance int64) *LedgerRepository {
	return &LedgerRepository{db: q, startingBalance: startingBalance}
}

// WithTx returns a copy of the repository bound to tx.
func (r *LedgerRepository) WithTx(tx pgx.Tx) *LedgerRepository {
	return &LedgerRepository{db: tx, startingBalance: r.startingBalance}
}

// StartingBalance is the balance every new account starts with.
func (r *LedgerRepository) StartingBalance() int64 {
	return r.startingBalance
}

// GetBalance returns the balance, creating the account if it does not exist.
func (r *LedgerRepository) GetBalance(ctx context.Context, key model.AccountKey) (int64, error) {
	// DO UPDATE with a no-op so RETURNING yields the existing row too
	const query = `
		INSERT INTO users (user_id, community_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, community_id)
		DO UPDATE SET balance = users.balance
		RETURNING balance
	`

	var balance int64
	err := r.db.QueryRow(ctx, query, key.UserID, key.CommunityID, r.startingBalance).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// AddBalance applies balance += delta in one statement and returns the new balance.
// A missing account is created at starting balance + delta. No floor is enforced.
func (r *LedgerRepository) AddBalance(ctx context.Context, key model.AccountKey, delta int64) (int64, error) {
	const query = `
		INSERT INTO users (user_id, community_id, balance)
		VALUES ($1, $2, $3 + $4)
		ON CONFLICT (user_id, community_id)
		DO UPDATE SET balance = users.balance + $4, updated_at = NOW()
		RETURNING balance
	`

	var balance int64
	err := r.db.QueryRow(ctx, query, key.UserID, key.CommunityID, r.startingBalance, delta).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}
	return balance, nil
}

// Withdraw subtracts amount only if the balance covers it.
// Returns ErrInsufficientBalance and leaves the row untouched otherwise.
func (r *LedgerRepository) Withdraw(ctx context.Context, key model.AccountKey, amount int64) (int64, error) {
	if _, err := r.GetBalance(ctx, key); err != nil {
		return 0, err
	}

	const query = `
		UPDATE users
		SET balance = balance - $3, updated_at = NOW()
		WHERE user_id = $1 AND community_id = $2 AND balance >= $3
		RETURNING balance
	`

	var balance int64
	err := r.db.QueryRow(ctx, query, key.UserID, key.CommunityID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInsufficientBalance
		}
		return 0, fmt.Errorf("failed to withdraw: %w", err)
	}
	return balance, nil
}

// TopBalances returns the richest accounts of a community.
func (r *LedgerRepository) TopBalances(ctx context.Context, communityID int64, limit int) ([]*model.Account, error) {
	const query = `
		SELECT user_id, community_id, balance, updated_at
		FROM users
		WHERE community_id = $1
		ORDER BY balance DESC, user_id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, communityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top balances: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.UserID, &a.CommunityID, &a.Balance, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}
