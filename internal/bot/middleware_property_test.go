package bot

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"discord-economy-bot/internal/config"
	"discord-economy-bot/internal/handler"
	"discord-economy-bot/internal/handler/handlertest"
)

// A member is an admin exactly when listed in the config or holding the
// Administrator permission.
func TestIsAdminProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOfN(rapid.Int64Range(1, 1_000_000), 0, 10).Draw(t, "adminIDs")
		cfg := &config.Config{Admin: config.AdminConfig{IDs: ids}}

		userID := rapid.Int64Range(1, 1_000_000).Draw(t, "userID")
		perms := rapid.Int64Range(0, 1<<40).Draw(t, "permissions")

		listed := false
		for _, id := range ids {
			if id == userID {
				listed = true
			}
		}
		want := listed || perms&discordgo.PermissionAdministrator != 0

		if got := IsAdmin(cfg, userID, perms); got != want {
			t.Fatalf("IsAdmin(%d, %b) = %v, want %v (admins %v)", userID, perms, got, want, ids)
		}
	})
}

// The admin gate never lets a non-admin reach the handler.
func TestAdminMiddlewareProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := &config.Config{Admin: config.AdminConfig{IDs: []int64{1}}}
		userID := rapid.Int64Range(1, 5).Draw(t, "userID")
		perms := rapid.SampledFrom([]int64{0, discordgo.PermissionAdministrator, discordgo.PermissionManageMessages}).Draw(t, "permissions")

		reached := false
		h := AdminMiddleware(cfg)(func(handler.Context) error {
			reached = true
			return nil
		})

		c := handlertest.New("settle", userID, 10)
		c.Perms = perms
		err := h(c)

		if IsAdmin(cfg, userID, perms) {
			if err != nil || !reached {
				t.Fatalf("admin %d was rejected: %v", userID, err)
			}
			return
		}
		if !errors.Is(err, handler.ErrPermissionDenied) || reached {
			t.Fatalf("non-admin %d reached the handler", userID)
		}
	})
}

func TestErrorMiddleware(t *testing.T) {
	c := handlertest.New("pay", 2, 10)
	h := Chain(func(handler.Context) error { return handler.ErrPermissionDenied }, ErrorMiddleware())

	require.NoError(t, h(c))
	require.Len(t, c.Replies(), 1)
	assert.Equal(t, "⛔ This command is for admins only.", c.Last().Content)
	assert.True(t, c.Last().Ephemeral)

	c = handlertest.New("pay", 2, 10)
	h = Chain(func(handler.Context) error { return errors.New("db down") }, ErrorMiddleware())
	require.NoError(t, h(c))
	assert.Equal(t, genericFailure, c.Last().Content)

	c = handlertest.New("pay", 2, 10)
	h = Chain(func(handler.Context) error { return nil }, ErrorMiddleware())
	require.NoError(t, h(c))
	assert.Empty(t, c.Replies())
}

func TestRecoveryMiddleware(t *testing.T) {
	c := handlertest.New("slots", 2, 10)
	h := Chain(func(handler.Context) error { panic("boom") }, RecoveryMiddleware(), ErrorMiddleware(), LoggingMiddleware())

	assert.NotPanics(t, func() {
		assert.NoError(t, h(c))
	})
	require.Len(t, c.Replies(), 1)
	assert.Equal(t, genericFailure, c.Last().Content)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) MiddlewareFunc {
		return func(next handler.HandlerFunc) handler.HandlerFunc {
			return func(c handler.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}
	h := Chain(func(handler.Context) error {
		order = append(order, "handler")
		return nil
	}, mw("outer"), mw("inner"))

	require.NoError(t, h(handlertest.New("x", 1, 1)))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
