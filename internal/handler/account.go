package handler

import (
	"fmt"
	"strings"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/service"
)

// AccountHandler handles balance lookups and the help text.
type AccountHandler struct {
	ledger *service.LedgerService
	games  *service.GameService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledger *service.LedgerService, games *service.GameService) *AccountHandler {
	return &AccountHandler{
		ledger: ledger,
		games:  games,
	}
}

// HandleBalance handles /balance [user].
// Looking up an account that never played shows the starting balance.
func (h *AccountHandler) HandleBalance(c Context) error {
	target := c.Sender()
	if u, ok := c.User("user"); ok {
		target = u
	}
	if target.Bot {
		return userError("Bots do not have a balance.")
	}

	key := model.AccountKey{UserID: target.ID, CommunityID: c.CommunityID()}
	balance, err := h.ledger.Balance(c.Ctx(), key)
	if err != nil {
		return err
	}

	if target.ID == c.Sender().ID {
		return reply(c, fmt.Sprintf("💰 Your balance: %s", coins(balance)))
	}
	return reply(c, fmt.Sprintf("💰 Balance of %s: %s", target.Mention(), coins(balance)))
}

// HandleHelp handles /help.
func (h *AccountHandler) HandleHelp(c Context) error {
	return replyEphemeral(c, HelpText(h.games))
}

// HelpText lists the commands. Games are read from the registry so a new
// game shows up without touching this text.
func HelpText(games *service.GameService) string {
	var sb strings.Builder
	sb.WriteString("📖 **Commands**\n\n")
	sb.WriteString("**Economy**\n")
	sb.WriteString("`/balance [user]` - show a balance\n")
	sb.WriteString("`/pay <user> <amount>` - send coins\n")
	sb.WriteString("`/top` - richest members\n")
	sb.WriteString("`/promo <code>` - redeem a promo code\n\n")

	sb.WriteString("**Shop**\n")
	sb.WriteString("`/shop` - browse the catalog\n")
	sb.WriteString("`/buy <item_id> [quantity]` - buy an item\n")
	sb.WriteString("`/inventory` - your items\n\n")

	sb.WriteString("**Betting**\n")
	sb.WriteString("`/events [event_id]` - open events\n")
	sb.WriteString("`/bet <event_id> <option> <amount>` - place a bet\n\n")

	sb.WriteString("**Games**\n")
	if games != nil {
		for _, g := range games.Games() {
			fmt.Fprintf(&sb, "`/%s` - %s (min %d)\n", g.Command(), g.Description(), g.MinBet())
		}
		fmt.Fprintf(&sb, "`/bombs <bet> [bombs]` - open cells, cash out before you hit a bomb (min %d)\n", games.BombsMinBet())
	}

	sb.WriteString("\n**Admin**\n")
	sb.WriteString("`/give` `/remove` `/create_item` `/create_role_item` `/delete_item` `/give_item` `/remove_item`\n")
	sb.WriteString("`/create_promo` `/delete_promo` `/list_promos`\n")
	sb.WriteString("`/create_match` `/create_mvp` `/create_total` `/lock` `/unlock` `/settle`")
	return sb.String()
}
