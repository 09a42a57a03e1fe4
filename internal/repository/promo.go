package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/pkg/db"
)

// PromoRepository handles promo codes and their redemptions.
type PromoRepository struct {
	db db.Querier
}

// NewPromoRepository creates a new PromoRepository instance.
func NewPromoRepository(q db.Querier) *PromoRepository {
	return &PromoRepository{db: q}
}

// WithTx returns a copy of the repository bound to tx.
func (r *PromoRepository) WithTx(tx pgx.Tx) *PromoRepository {
	return &PromoRepository{db: tx}
}

// Create inserts a promo code. Returns ErrPromoExists on a duplicate code.
func (r *PromoRepository) Create(ctx context.Context, p *model.PromoCode) error {
	const query = `
		INSERT INTO promo_codes (code, reward, expires_at, created_by, max_uses)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query, p.Code, p.Reward, p.ExpiresAt, p.CreatedBy, p.MaxUses).Scan(&p.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrPromoExists
		}
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	return nil
}

// GetForUpdate loads a code and row-locks it until the transaction ends,
// so concurrent redemptions of one code count uses one at a time.
func (r *PromoRepository) GetForUpdate(ctx context.Context, code string) (*model.PromoCode, error) {
	const query = `
		SELECT code, reward, expires_at, created_by, max_uses, created_at
		FROM promo_codes
		WHERE code = $1
		FOR UPDATE
	`

	var p model.PromoCode
	err := r.db.QueryRow(ctx, query, code).Scan(&p.Code, &p.Reward, &p.ExpiresAt, &p.CreatedBy, &p.MaxUses, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	return &p, nil
}

// Delete removes a code and its redemptions. Returns false if it did not exist.
func (r *PromoRepository) Delete(ctx context.Context, code string) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM promo_codes WHERE code = $1`, code)
	if err != nil {
		return false, fmt.Errorf("failed to delete promo code: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// List returns all codes with their redemption counts.
func (r *PromoRepository) List(ctx context.Context) ([]*model.PromoCode, error) {
	const query = `
		SELECT p.code, p.reward, p.expires_at, p.created_by, p.max_uses, p.created_at,
		       COUNT(r.id) AS uses
		FROM promo_codes p
		LEFT JOIN promo_redemptions r ON r.code = p.code
		GROUP BY p.code
		ORDER BY p.created_at, p.code
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	defer rows.Close()

	var promos []*model.PromoCode
	for rows.Next() {
		var p model.PromoCode
		if err := rows.Scan(&p.Code, &p.Reward, &p.ExpiresAt, &p.CreatedBy, &p.MaxUses, &p.CreatedAt, &p.Uses); err != nil {
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}
		promos = append(promos, &p)
	}
	return promos, rows.Err()
}

// CountRedemptions returns how many times a code was redeemed in total.
func (r *PromoRepository) CountRedemptions(ctx context.Context, code string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM promo_redemptions WHERE code = $1`, code).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count redemptions: %w", err)
	}
	return n, nil
}

// HasRedeemed reports whether the account already used the code.
func (r *PromoRepository) HasRedeemed(ctx context.Context, code string, key model.AccountKey) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM promo_redemptions
			WHERE code = $1 AND user_id = $2 AND community_id = $3
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, code, key.UserID, key.CommunityID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check redemption: %w", err)
	}
	return exists, nil
}

// InsertRedemption records a redemption. The unique constraint on
// (code, user_id, community_id) is what rejects a second one: ErrAlreadyRedeemed.
func (r *PromoRepository) InsertRedemption(ctx context.Context, code string, key model.AccountKey) error {
	const query = `
		INSERT INTO promo_redemptions (code, user_id, community_id)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(ctx, query, code, key.UserID, key.CommunityID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAlreadyRedeemed
		}
		return fmt.Errorf("failed to insert redemption: %w", err)
	}
	return nil
}
