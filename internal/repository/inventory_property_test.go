package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"pgregory.net/rapid"

	"discord-economy-bot/internal/pkg/db/dbtest"
)

// TestInventoryQuantityProperty checks random add/remove sequences against
// a plain counter: removals never go below zero and fail without changing
// anything when too few are owned.
func TestInventoryQuantityProperty(t *testing.T) {
	pool := dbtest.Setup(t)
	repo := NewInventoryRepository(pool)
	item := createItem(t, pool, 10, "Token", false)
	ctx := context.Background()

	var nextUser atomic.Int64

	rapid.Check(t, func(rt *rapid.T) {
		k := key(nextUser.Add(1), 10)
		owned := 0

		ops := rapid.IntRange(1, 20).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			qty := rapid.IntRange(1, 5).Draw(rt, "qty")

			if rapid.Bool().Draw(rt, "add") {
				got, err := repo.AddItem(ctx, k, item.ID, qty)
				if err != nil {
					rt.Fatalf("add: %v", err)
				}
				owned += qty
				if got != owned {
					rt.Fatalf("after add: got %d, want %d", got, owned)
				}
				continue
			}

			got, err := repo.RemoveItem(ctx, k, item.ID, qty)
			if qty > owned {
				if !errors.Is(err, ErrInsufficientQuantity) {
					rt.Fatalf("remove %d of %d: expected ErrInsufficientQuantity, got %v", qty, owned, err)
				}
			} else {
				if err != nil {
					rt.Fatalf("remove: %v", err)
				}
				owned -= qty
				if got != owned {
					rt.Fatalf("after remove: got %d, want %d", got, owned)
				}
			}

			stored, err := repo.Quantity(ctx, k, item.ID)
			if err != nil {
				rt.Fatalf("quantity: %v", err)
			}
			if stored != owned {
				rt.Fatalf("stored %d, want %d", stored, owned)
			}
		}
	})
}
