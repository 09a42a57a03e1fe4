// Package shop holds the catalog rules of a community shop: what makes a
// valid listing and how listings are presented.
package shop

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"discord-economy-bot/internal/model"
)

// MaxNameLength bounds item names so they fit a select menu label.
const MaxNameLength = 80

// Validation errors for new catalog items.
var (
	ErrEmptyName       = errors.New("item name must not be empty")
	ErrNameTooLong     = errors.New("item name is too long")
	ErrInvalidPrice    = errors.New("item price must be positive")
	ErrInvalidKind     = errors.New("item kind must be item or role")
	ErrRoleRequired    = errors.New("role items need a role")
	ErrRoleNotAllowed  = errors.New("only role items can carry a role")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Normalize trims the listing's text fields in place.
func Normalize(item *model.ShopItem) {
	item.Name = strings.TrimSpace(item.Name)
	item.Description = strings.TrimSpace(item.Description)
	if item.Kind == "" {
		item.Kind = model.ItemKindGeneric
	}
}

// Validate checks a listing before it is stored.
func Validate(item *model.ShopItem) error {
	if item.Name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(item.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if item.Price <= 0 {
		return ErrInvalidPrice
	}
	switch item.Kind {
	case model.ItemKindRole:
		if item.RoleID == nil {
			return ErrRoleRequired
		}
	case model.ItemKindGeneric:
		if item.RoleID != nil {
			return ErrRoleNotAllowed
		}
	default:
		return ErrInvalidKind
	}
	return nil
}

// ValidateQuantity checks a purchase, grant or revoke quantity.
func ValidateQuantity(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Emoji returns the listing icon for an item kind.
func Emoji(kind model.ItemKind) string {
	if kind == model.ItemKindRole {
		return "🎖️"
	}
	return "📦"
}

// FormatItem renders one catalog line.
func FormatItem(item *model.ShopItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s **%s** (#%d) - %d 💰", Emoji(item.Kind), item.Name, item.ID, item.Price)
	if item.OneTime {
		sb.WriteString(" · one-time")
	}
	if item.RoleID != nil {
		fmt.Fprintf(&sb, " · <@&%d>", *item.RoleID)
	}
	if item.Description != "" {
		sb.WriteString("\n> ")
		sb.WriteString(item.Description)
	}
	return sb.String()
}

// FormatCatalog renders the full shop listing.
func FormatCatalog(items []*model.ShopItem) string {
	if len(items) == 0 {
		return "🛒 The shop is empty."
	}
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, "🛒 **Shop**")
	for _, item := range items {
		lines = append(lines, FormatItem(item))
	}
	return strings.Join(lines, "\n")
}

// FormatInventory renders a user's owned items.
func FormatInventory(entries []*model.InventoryEntry) string {
	if len(entries) == 0 {
		return "🎒 Your inventory is empty."
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "🎒 **Inventory**")
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("• %s × %d", e.ItemName, e.Quantity))
	}
	return strings.Join(lines, "\n")
}
