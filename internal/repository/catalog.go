package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/pkg/db"
)

const shopItemColumns = `item_id, community_id, name, description, price, kind, role_ref, one_time, created_at`

// CatalogRepository handles shop item definitions.
type CatalogRepository struct {
	db db.Querier
}

// NewCatalogRepository creates a new CatalogRepository instance.
func NewCatalogRepository(q db.Querier) *CatalogRepository {
	return &CatalogRepository{db: q}
}

// WithTx returns a copy of the repository bound to tx.
func (r *CatalogRepository) WithTx(tx pgx.Tx) *CatalogRepository {
	return &CatalogRepository{db: tx}
}

func scanShopItem(row pgx.Row) (*model.ShopItem, error) {
	var item model.ShopItem
	err := row.Scan(
		&item.ID,
		&item.CommunityID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Kind,
		&item.RoleID,
		&item.OneTime,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new item and fills in its ID.
// Returns ErrItemExists when the community already has an item with that name.
func (r *CatalogRepository) Create(ctx context.Context, item *model.ShopItem) error {
	const query = `
		INSERT INTO shop_items (community_id, name, description, price, kind, role_ref, one_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING item_id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		item.CommunityID,
		item.Name,
		item.Description,
		item.Price,
		item.Kind,
		item.RoleID,
		item.OneTime,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrItemExists
		}
		return fmt.Errorf("failed to create shop item: %w", err)
	}
	return nil
}

// Get returns an item of a community.
func (r *CatalogRepository) Get(ctx context.Context, communityID, itemID int64) (*model.ShopItem, error) {
	query := `SELECT ` + shopItemColumns + ` FROM shop_items WHERE item_id = $1 AND community_id = $2`

	item, err := scanShopItem(r.db.QueryRow(ctx, query, itemID, communityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get shop item: %w", err)
	}
	return item, nil
}

// List returns the catalog of a community ordered by ID.
func (r *CatalogRepository) List(ctx context.Context, communityID int64) ([]*model.ShopItem, error) {
	query := `SELECT ` + shopItemColumns + ` FROM shop_items WHERE community_id = $1 ORDER BY item_id`

	rows, err := r.db.Query(ctx, query, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shop items: %w", err)
	}
	defer rows.Close()

	var items []*model.ShopItem
	for rows.Next() {
		item, err := scanShopItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Delete removes an item. Inventory rows and one-time purchase markers go
// with it through ON DELETE CASCADE. Returns false if nothing was deleted.
func (r *CatalogRepository) Delete(ctx context.Context, communityID, itemID int64) (bool, error) {
	const query = `DELETE FROM shop_items WHERE item_id = $1 AND community_id = $2`

	result, err := r.db.Exec(ctx, query, itemID, communityID)
	if err != nil {
		return false, fmt.Errorf("failed to delete shop item: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
