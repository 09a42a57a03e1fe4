package service

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/pkg/db"
	"discord-economy-bot/internal/repository"
	"discord-economy-bot/internal/shop"
)

// RoleGranter assigns a guild role to a member.
type RoleGranter interface {
	GrantRole(ctx context.Context, communityID, userID, roleID int64) error
}

// PurchaseResult describes a completed purchase.
type PurchaseResult struct {
	Item     *model.ShopItem
	Quantity int
	Total    int64
	Balance  int64
	Owned    int
	// RoleGranted is false when a role item's role could not be assigned.
	// The purchase itself still stands.
	RoleGranted bool
}

// ShopService handles the community catalog and member inventories.
type ShopService struct {
	runner    db.TxRunner
	catalog   *repository.CatalogRepository
	inventory *repository.InventoryRepository
	ledger    *repository.LedgerRepository
	roles     RoleGranter
}

// NewShopService creates a new ShopService instance. roles may be nil, in
// which case role items are sold without a role grant.
func NewShopService(
	runner db.TxRunner,
	catalog *repository.CatalogRepository,
	inventory *repository.InventoryRepository,
	ledger *repository.LedgerRepository,
	roles RoleGranter,
) *ShopService {
	return &ShopService{
		runner:    runner,
		catalog:   catalog,
		inventory: inventory,
		ledger:    ledger,
		roles:     roles,
	}
}

// CreateItem validates and stores a new listing. item.ID is set on success.
func (s *ShopService) CreateItem(ctx context.Context, item *model.ShopItem) error {
	shop.Normalize(item)
	if err := shop.Validate(item); err != nil {
		return err
	}
	return s.catalog.Create(ctx, item)
}

// DeleteItem removes a listing together with everyone's copies of it.
// Deleting a missing item is not an error; the bool reports whether one existed.
func (s *ShopService) DeleteItem(ctx context.Context, communityID, itemID int64) (bool, error) {
	return s.catalog.Delete(ctx, communityID, itemID)
}

// List returns the community's catalog.
func (s *ShopService) List(ctx context.Context, communityID int64) ([]*model.ShopItem, error) {
	return s.catalog.List(ctx, communityID)
}

// Inventory returns what a member owns.
func (s *ShopService) Inventory(ctx context.Context, key model.AccountKey) ([]*model.InventoryEntry, error) {
	return s.inventory.List(ctx, key)
}

// Purchase buys qty of an item. The debit, the inventory credit and the
// one-time marker commit in one transaction. The role grant runs after
// commit and never undoes the purchase.
func (s *ShopService) Purchase(ctx context.Context, key model.AccountKey, itemID int64, qty int) (*PurchaseResult, error) {
	if err := shop.ValidateQuantity(qty); err != nil {
		return nil, err
	}

	res := &PurchaseResult{Quantity: qty}
	err := db.InTx(ctx, s.runner, func(tx pgx.Tx) error {
		inventory := s.inventory.WithTx(tx)

		item, err := s.catalog.WithTx(tx).Get(ctx, key.CommunityID, itemID)
		if err != nil {
			return err
		}
		res.Item = item

		if item.OneTime {
			if qty > 1 {
				return ErrOneTimeQuantity
			}
			owned, err := inventory.HasOneTimePurchase(ctx, key, item.ID)
			if err != nil {
				return err
			}
			if owned {
				return ErrAlreadyPurchased
			}
		}

		if item.Price > math.MaxInt64/int64(qty) {
			return ErrAmountTooLarge
		}
		res.Total = item.Price * int64(qty)

		if res.Balance, err = s.ledger.WithTx(tx).Withdraw(ctx, key, res.Total); err != nil {
			return err
		}
		if res.Owned, err = inventory.AddItem(ctx, key, item.ID, qty); err != nil {
			return err
		}
		if item.OneTime {
			// The primary key on one_time_purchases settles concurrent buyers.
			return inventory.MarkOneTimePurchase(ctx, key, item.ID)
		}
		return nil
	})
	if err != nil {
		if IsUserError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to purchase item: %w", err)
	}

	audit(key, -res.Total, res.Balance, model.ReasonShopPurchase)

	if res.Item.Kind == model.ItemKindRole && res.Item.RoleID != nil && s.roles != nil {
		if err := s.roles.GrantRole(ctx, key.CommunityID, key.UserID, *res.Item.RoleID); err != nil {
			log.Warn().Err(err).
				Int64("user_id", key.UserID).
				Int64("community_id", key.CommunityID).
				Int64("role_id", *res.Item.RoleID).
				Msg("Role grant failed after purchase")
		} else {
			res.RoleGranted = true
		}
	}

	return res, nil
}

// GrantItem adds qty of an item to a member without charging them.
func (s *ShopService) GrantItem(ctx context.Context, key model.AccountKey, itemID int64, qty int) (int, error) {
	if err := shop.ValidateQuantity(qty); err != nil {
		return 0, err
	}
	if _, err := s.catalog.Get(ctx, key.CommunityID, itemID); err != nil {
		return 0, err
	}
	return s.inventory.AddItem(ctx, key, itemID, qty)
}

// RevokeItem takes qty of an item away. It fails when the member owns fewer.
func (s *ShopService) RevokeItem(ctx context.Context, key model.AccountKey, itemID int64, qty int) (int, error) {
	if err := shop.ValidateQuantity(qty); err != nil {
		return 0, err
	}
	if _, err := s.catalog.Get(ctx, key.CommunityID, itemID); err != nil {
		return 0, err
	}
	return s.inventory.RemoveItem(ctx, key, itemID, qty)
}
