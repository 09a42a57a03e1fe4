// Package model defines the data models for the economy bot.
package model

import "time"

// AccountKey identifies a balance: one user inside one community.
type AccountKey struct {
	UserID      int64
	CommunityID int64
}

// Account is a row of the users table.
type Account struct {
	UserID      int64     `db:"user_id"`
	CommunityID int64     `db:"community_id"`
	Balance     int64     `db:"balance"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Key returns the account's ledger key.
func (a *Account) Key() AccountKey {
	return AccountKey{UserID: a.UserID, CommunityID: a.CommunityID}
}

// ItemKind distinguishes plain items from items that grant a guild role.
type ItemKind string

const (
	ItemKindGeneric ItemKind = "item"
	ItemKindRole    ItemKind = "role"
)

// ShopItem is a catalog entry of a community shop.
type ShopItem struct {
	ID          int64     `db:"item_id"`
	CommunityID int64     `db:"community_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Price       int64     `db:"price"`
	Kind        ItemKind  `db:"kind"`
	RoleID      *int64    `db:"role_ref"`
	OneTime     bool      `db:"one_time"`
	CreatedAt   time.Time `db:"created_at"`
}

// InventoryEntry is an owned quantity of a shop item.
type InventoryEntry struct {
	UserID      int64  `db:"user_id"`
	CommunityID int64  `db:"community_id"`
	ItemID      int64  `db:"item_id"`
	ItemName    string `db:"name"`
	Quantity    int    `db:"quantity"`
}

// PromoCode is a bonus grant redeemable once per user and community.
type PromoCode struct {
	Code      string     `db:"code"`
	Reward    int64      `db:"reward"`
	ExpiresAt *time.Time `db:"expires_at"`
	CreatedBy int64      `db:"created_by"`
	MaxUses   *int       `db:"max_uses"`
	CreatedAt time.Time  `db:"created_at"`
	// Uses is filled by listing queries only.
	Uses int `db:"uses"`
}

// Expired reports whether the code is past its expiry at now.
func (p *PromoCode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// Exhausted reports whether uses has reached the code's limit.
func (p *PromoCode) Exhausted(uses int) bool {
	return p.MaxUses != nil && uses >= *p.MaxUses
}

// Ledger change reasons, used for the audit log line.
const (
	ReasonStartingBalance = "starting_balance"
	ReasonTransfer        = "transfer"
	ReasonAdminGive       = "admin_give"
	ReasonAdminRemove     = "admin_remove"
	ReasonShopPurchase    = "shop_purchase"
	ReasonPromo           = "promo"
	ReasonEventBet        = "event_bet"
	ReasonEventPayout     = "event_payout"
	ReasonSlotStake       = "slot_stake"
	ReasonSlotPayout      = "slot_payout"
	ReasonRouletteStake   = "roulette_stake"
	ReasonRoulettePayout  = "roulette_payout"
	ReasonBombsStake      = "bombs_stake"
	ReasonBombsPayout     = "bombs_payout"
)
