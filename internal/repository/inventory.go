package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/pkg/db"
)

// InventoryRepository handles owned item quantities and one-time purchase markers.
type InventoryRepository struct {
	db db.Querier
}

// NewInventoryRepository creates a new InventoryRepository instance.
func NewInventoryRepository(q db.Querier) *InventoryRepository {
	return &InventoryRepository{db: q}
}

// WithTx returns a copy of the repository bound to tx.
func (r *InventoryRepository) WithTx(tx pgx.Tx) *InventoryRepository {
	return &InventoryRepository{db: tx}
}

// ========== Quantities ==========

// AddItem adds qty to the owned quantity, creating the row if needed.
func (r *InventoryRepository) AddItem(ctx context.Context, key model.AccountKey, itemID int64, qty int) (int, error) {
	const query = `
		INSERT INTO inventory (user_id, community_id, item_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, community_id, item_id)
		DO UPDATE SET quantity = inventory.quantity + $4, updated_at = NOW()
		RETURNING quantity
	`

	var quantity int
	err := r.db.QueryRow(ctx, query, key.UserID, key.CommunityID, itemID, qty).Scan(&quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to add item: %w", err)
	}
	return quantity, nil
}

// RemoveItem takes qty away. It fails with ErrInsufficientQuantity, changing
// nothing, when fewer than qty are owned. The row is deleted at zero.
func (r *InventoryRepository) RemoveItem(ctx context.Context, key model.AccountKey, itemID int64, qty int) (int, error) {
	const query = `
		UPDATE inventory
		SET quantity = quantity - $4, updated_at = NOW()
		WHERE user_id = $1 AND community_id = $2 AND item_id = $3 AND quantity > $4
		RETURNING quantity
	`

	var quantity int
	err := r.db.QueryRow(ctx, query, key.UserID, key.CommunityID, itemID, qty).Scan(&quantity)
	if err == nil {
		return quantity, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to remove item: %w", err)
	}

	// exact quantity: the row goes away instead of reaching zero
	const deleteQuery = `
		DELETE FROM inventory
		WHERE user_id = $1 AND community_id = $2 AND item_id = $3 AND quantity = $4
	`
	result, err := r.db.Exec(ctx, deleteQuery, key.UserID, key.CommunityID, itemID, qty)
	if err != nil {
		return 0, fmt.Errorf("failed to remove item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return 0, ErrInsufficientQuantity
	}
	return 0, nil
}

// Quantity returns how many of an item the account owns.
func (r *InventoryRepository) Quantity(ctx context.Context, key model.AccountKey, itemID int64) (int, error) {
	const query = `
		SELECT quantity FROM inventory
		WHERE user_id = $1 AND community_id = $2 AND item_id = $3
	`

	var quantity int
	err := r.db.QueryRow(ctx, query, key.UserID, key.CommunityID, itemID).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get item quantity: %w", err)
	}
	return quantity, nil
}

// List returns an account's inventory with item names.
func (r *InventoryRepository) List(ctx context.Context, key model.AccountKey) ([]*model.InventoryEntry, error) {
	const query = `
		SELECT i.user_id, i.community_id, i.item_id, s.name, i.quantity
		FROM inventory i
		JOIN shop_items s ON s.item_id = i.item_id
		WHERE i.user_id = $1 AND i.community_id = $2
		ORDER BY s.name
	`

	rows, err := r.db.Query(ctx, query, key.UserID, key.CommunityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var entries []*model.InventoryEntry
	for rows.Next() {
		var e model.InventoryEntry
		if err := rows.Scan(&e.UserID, &e.CommunityID, &e.ItemID, &e.ItemName, &e.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// ========== One-time purchases ==========

// MarkOneTimePurchase records that the account bought a one-time item.
// The primary key decides races: a second marker yields ErrAlreadyPurchased.
func (r *InventoryRepository) MarkOneTimePurchase(ctx context.Context, key model.AccountKey, itemID int64) error {
	const query = `
		INSERT INTO one_time_purchases (user_id, community_id, item_id)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(ctx, query, key.UserID, key.CommunityID, itemID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAlreadyPurchased
		}
		return fmt.Errorf("failed to record one-time purchase: %w", err)
	}
	return nil
}

// HasOneTimePurchase reports whether the marker exists.
func (r *InventoryRepository) HasOneTimePurchase(ctx context.Context, key model.AccountKey, itemID int64) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM one_time_purchases
			WHERE user_id = $1 AND community_id = $2 AND item_id = $3
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, key.UserID, key.CommunityID, itemID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check one-time purchase: %w", err)
	}
	return exists, nil
}
