package shop

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discord-economy-bot/internal/model"
)

func roleID(id int64) *int64 { return &id }

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		item model.ShopItem
		want error
	}{
		{"plain item", model.ShopItem{Name: "Cookie", Price: 5, Kind: model.ItemKindGeneric}, nil},
		{"role item", model.ShopItem{Name: "VIP", Price: 500, Kind: model.ItemKindRole, RoleID: roleID(7)}, nil},
		{"empty name", model.ShopItem{Price: 5, Kind: model.ItemKindGeneric}, ErrEmptyName},
		{"long name", model.ShopItem{Name: strings.Repeat("x", MaxNameLength+1), Price: 5, Kind: model.ItemKindGeneric}, ErrNameTooLong},
		{"zero price", model.ShopItem{Name: "Cookie", Kind: model.ItemKindGeneric}, ErrInvalidPrice},
		{"negative price", model.ShopItem{Name: "Cookie", Price: -1, Kind: model.ItemKindGeneric}, ErrInvalidPrice},
		{"role without role", model.ShopItem{Name: "VIP", Price: 5, Kind: model.ItemKindRole}, ErrRoleRequired},
		{"item with role", model.ShopItem{Name: "VIP", Price: 5, Kind: model.ItemKindGeneric, RoleID: roleID(7)}, ErrRoleNotAllowed},
		{"unknown kind", model.ShopItem{Name: "VIP", Price: 5, Kind: "badge"}, ErrInvalidKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.item)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	item := model.ShopItem{Name: "  Cookie \n", Description: " tasty "}
	Normalize(&item)
	assert.Equal(t, "Cookie", item.Name)
	assert.Equal(t, "tasty", item.Description)
	assert.Equal(t, model.ItemKindGeneric, item.Kind)
}

func TestFormatCatalog(t *testing.T) {
	assert.Contains(t, FormatCatalog(nil), "empty")

	out := FormatCatalog([]*model.ShopItem{
		{ID: 1, Name: "Cookie", Price: 5, Kind: model.ItemKindGeneric},
		{ID: 2, Name: "VIP", Price: 500, Kind: model.ItemKindRole, RoleID: roleID(99), OneTime: true, Description: "shiny"},
	})
	assert.Contains(t, out, "**Cookie** (#1) - 5 💰")
	assert.Contains(t, out, "one-time")
	assert.Contains(t, out, "<@&99>")
	assert.Contains(t, out, "> shiny")
}

func TestFormatInventory(t *testing.T) {
	assert.Contains(t, FormatInventory(nil), "empty")
	out := FormatInventory([]*model.InventoryEntry{{ItemName: "Cookie", Quantity: 3}})
	assert.Contains(t, out, "Cookie × 3")
}

func TestBuildBuyMenu(t *testing.T) {
	assert.Nil(t, BuildBuyMenu(nil))

	items := make([]*model.ShopItem, 30)
	for i := range items {
		items[i] = &model.ShopItem{ID: int64(i + 1), Name: "Item", Price: 1, Kind: model.ItemKindGeneric}
	}
	rows := BuildBuyMenu(items)
	require.Len(t, rows, 1)

	row, ok := rows[0].(discordgo.ActionsRow)
	require.True(t, ok)
	menu, ok := row.Components[0].(discordgo.SelectMenu)
	require.True(t, ok)
	assert.Equal(t, CustomIDBuy, menu.CustomID)
	assert.Len(t, menu.Options, maxMenuOptions)
	assert.Equal(t, "1", menu.Options[0].Value)
}

func TestParseBuyValue(t *testing.T) {
	id, err := ParseBuyValue([]string{"42"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range [][]string{nil, {"1", "2"}, {"abc"}, {"0"}, {"-3"}} {
		_, err := ParseBuyValue(bad)
		assert.Error(t, err, "%v", bad)
	}
}
