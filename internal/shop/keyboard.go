package shop

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"discord-economy-bot/internal/model"
)

// CustomIDBuy is the component ID of the purchase menu. The selected value
// is the item ID.
const CustomIDBuy = "shop:buy"

// maxMenuOptions is Discord's limit on select menu entries.
const maxMenuOptions = 25

// BuildBuyMenu creates the purchase select menu shown under the catalog.
// It returns nil when there is nothing to buy.
func BuildBuyMenu(items []*model.ShopItem) []discordgo.MessageComponent {
	if len(items) == 0 {
		return nil
	}
	if len(items) > maxMenuOptions {
		items = items[:maxMenuOptions]
	}

	options := make([]discordgo.SelectMenuOption, 0, len(items))
	for _, item := range items {
		options = append(options, discordgo.SelectMenuOption{
			Label:       truncate(item.Name, 100),
			Value:       strconv.FormatInt(item.ID, 10),
			Description: truncate(fmt.Sprintf("%s %d coins", Emoji(item.Kind), item.Price), 100),
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    CustomIDBuy,
					Placeholder: "Buy one…",
					Options:     options,
				},
			},
		},
	}
}

// ParseBuyValue extracts the item ID from a purchase menu selection.
func ParseBuyValue(values []string) (int64, error) {
	if len(values) != 1 {
		return 0, fmt.Errorf("expected one selection, got %d", len(values))
	}
	id, err := strconv.ParseInt(strings.TrimSpace(values[0]), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", values[0])
	}
	return id, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
