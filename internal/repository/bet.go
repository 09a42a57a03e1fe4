package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/pkg/db"
)

// BetRepository handles stakes placed on events.
type BetRepository struct {
	db db.Querier
}

// NewBetRepository creates a new BetRepository instance.
func NewBetRepository(q db.Querier) *BetRepository {
	return &BetRepository{db: q}
}

// WithTx returns a copy of the repository bound to tx.
func (r *BetRepository) WithTx(tx pgx.Tx) *BetRepository {
	return &BetRepository{db: tx}
}

// Create inserts a bet and fills in its ID.
func (r *BetRepository) Create(ctx context.Context, b *model.Bet) error {
	const query = `
		INSERT INTO bets (user_id, community_id, event_id, choice, amount, coeff)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, b.UserID, b.CommunityID, b.EventID, b.Choice, b.Amount, b.Coeff).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}
	return nil
}

// DeleteByEvent removes every bet of an event and returns them.
func (r *BetRepository) DeleteByEvent(ctx context.Context, communityID, eventID int64) ([]*model.Bet, error) {
	const query = `
		DELETE FROM bets
		WHERE community_id = $1 AND event_id = $2
		RETURNING id, user_id, community_id, event_id, choice, amount, coeff, created_at
	`

	rows, err := r.db.Query(ctx, query, communityID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete bets: %w", err)
	}
	defer rows.Close()

	var bets []*model.Bet
	for rows.Next() {
		var b model.Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.CommunityID, &b.EventID, &b.Choice, &b.Amount, &b.Coeff, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &b)
	}
	return bets, rows.Err()
}

// Pools sums stakes per option of an event.
func (r *BetRepository) Pools(ctx context.Context, communityID, eventID int64) ([]*model.OptionPool, error) {
	const query = `
		SELECT choice, COUNT(*) AS bets, COALESCE(SUM(amount), 0)::BIGINT AS total
		FROM bets
		WHERE community_id = $1 AND event_id = $2
		GROUP BY choice
		ORDER BY choice
	`

	rows, err := r.db.Query(ctx, query, communityID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum bets: %w", err)
	}
	defer rows.Close()

	var pools []*model.OptionPool
	for rows.Next() {
		var p model.OptionPool
		if err := rows.Scan(&p.Choice, &p.Bets, &p.Total); err != nil {
			return nil, fmt.Errorf("failed to scan bet pool: %w", err)
		}
		pools = append(pools, &p)
	}
	return pools, rows.Err()
}
