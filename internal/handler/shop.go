package handler

import (
	"fmt"
	"strings"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/service"
	"discord-economy-bot/internal/shop"
)

// ShopHandler handles the catalog, purchases and inventories.
type ShopHandler struct {
	shop *service.ShopService
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(shopService *service.ShopService) *ShopHandler {
	return &ShopHandler{shop: shopService}
}

// HandleShop handles /shop: the catalog plus a one-click purchase menu.
func (h *ShopHandler) HandleShop(c Context) error {
	items, err := h.shop.List(c.Ctx(), c.CommunityID())
	if err != nil {
		return err
	}
	return c.Reply(&Message{
		Content:    shop.FormatCatalog(items),
		Components: shop.BuildBuyMenu(items),
	})
}

// HandleInventory handles /inventory.
func (h *ShopHandler) HandleInventory(c Context) error {
	entries, err := h.shop.Inventory(c.Ctx(), c.Key())
	if err != nil {
		return err
	}
	return replyEphemeral(c, shop.FormatInventory(entries))
}

// HandleBuy handles /buy <item_id> [quantity].
func (h *ShopHandler) HandleBuy(c Context) error {
	itemID, err := intOption(c, "item_id")
	if err != nil {
		return err
	}
	return h.buy(c, itemID, quantityOption(c))
}

// HandleBuyMenu handles a selection in the purchase menu.
func (h *ShopHandler) HandleBuyMenu(c Context) error {
	itemID, err := shop.ParseBuyValue(c.Values())
	if err != nil {
		return userError("That selection is no longer valid.")
	}
	return h.buy(c, itemID, 1)
}

func (h *ShopHandler) buy(c Context, itemID int64, qty int) error {
	res, err := h.shop.Purchase(c.Ctx(), c.Key(), itemID, qty)
	if err != nil {
		return err
	}
	return replyEphemeral(c, FormatPurchase(res))
}

// FormatPurchase renders a purchase confirmation.
func FormatPurchase(res *service.PurchaseResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🛍️ Bought **%s** × %d for %s.\n", res.Item.Name, res.Quantity, coins(res.Total))
	fmt.Fprintf(&sb, "You now own %d. Balance: %s", res.Owned, coins(res.Balance))
	if res.Item.Kind == model.ItemKindRole && res.Item.RoleID != nil {
		if res.RoleGranted {
			fmt.Fprintf(&sb, "\n🎭 Role <@&%d> granted.", *res.Item.RoleID)
		} else {
			sb.WriteString("\n⚠️ The role could not be assigned. Ask an admin to add it.")
		}
	}
	return sb.String()
}

// HandleCreateItem handles /create_item <name> <price> [description] [one_time].
func (h *ShopHandler) HandleCreateItem(c Context) error {
	item, err := itemFromOptions(c)
	if err != nil {
		return err
	}
	item.Kind = model.ItemKindGeneric
	return h.create(c, item)
}

// HandleCreateRoleItem handles /create_role_item <name> <price> <role> [description] [one_time].
func (h *ShopHandler) HandleCreateRoleItem(c Context) error {
	item, err := itemFromOptions(c)
	if err != nil {
		return err
	}
	roleID, ok := c.Role("role")
	if !ok {
		return shop.ErrRoleRequired
	}
	item.Kind = model.ItemKindRole
	item.RoleID = &roleID
	return h.create(c, item)
}

func (h *ShopHandler) create(c Context, item *model.ShopItem) error {
	if err := h.shop.CreateItem(c.Ctx(), item); err != nil {
		return err
	}
	return reply(c, "✅ Added to the shop:\n"+shop.FormatItem(item))
}

func itemFromOptions(c Context) (*model.ShopItem, error) {
	name, err := stringOption(c, "name")
	if err != nil {
		return nil, err
	}
	price, err := intOption(c, "price")
	if err != nil {
		return nil, err
	}
	description, _ := c.String("description")
	oneTime, _ := c.Bool("one_time")

	return &model.ShopItem{
		CommunityID: c.CommunityID(),
		Name:        name,
		Description: description,
		Price:       price,
		OneTime:     oneTime,
	}, nil
}

// HandleDeleteItem handles /delete_item <item_id>.
func (h *ShopHandler) HandleDeleteItem(c Context) error {
	itemID, err := intOption(c, "item_id")
	if err != nil {
		return err
	}
	deleted, err := h.shop.DeleteItem(c.Ctx(), c.CommunityID(), itemID)
	if err != nil {
		return err
	}
	if !deleted {
		return service.ErrItemNotFound
	}
	return reply(c, fmt.Sprintf("🗑️ Item #%d removed from the shop and from every inventory.", itemID))
}

// HandleGiveItem handles /give_item <user> <item_id> [quantity].
func (h *ShopHandler) HandleGiveItem(c Context) error {
	target, itemID, err := itemAdjustOptions(c)
	if err != nil {
		return err
	}
	qty := quantityOption(c)
	owned, err := h.shop.GrantItem(c.Ctx(), model.AccountKey{UserID: target.ID, CommunityID: c.CommunityID()}, itemID, qty)
	if err != nil {
		return err
	}
	return reply(c, fmt.Sprintf("✅ Gave %d × item #%d to %s. They now own %d.", qty, itemID, target.Mention(), owned))
}

// HandleRemoveItem handles /remove_item <user> <item_id> [quantity].
func (h *ShopHandler) HandleRemoveItem(c Context) error {
	target, itemID, err := itemAdjustOptions(c)
	if err != nil {
		return err
	}
	qty := quantityOption(c)
	owned, err := h.shop.RevokeItem(c.Ctx(), model.AccountKey{UserID: target.ID, CommunityID: c.CommunityID()}, itemID, qty)
	if err != nil {
		return err
	}
	return reply(c, fmt.Sprintf("✅ Took %d × item #%d from %s. They now own %d.", qty, itemID, target.Mention(), owned))
}

func itemAdjustOptions(c Context) (*User, int64, error) {
	target, err := userOption(c, "user")
	if err != nil {
		return nil, 0, err
	}
	itemID, err := intOption(c, "item_id")
	if err != nil {
		return nil, 0, err
	}
	return target, itemID, nil
}
