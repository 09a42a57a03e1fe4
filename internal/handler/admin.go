package handler

import (
	"fmt"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/service"
)

// AdminHandler handles the admin balance commands. The bot puts every
// admin command behind the admin gate, handlers do not check again.
type AdminHandler struct {
	ledger *service.LedgerService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ledger *service.LedgerService) *AdminHandler {
	return &AdminHandler{ledger: ledger}
}

// HandleGive handles /give <user> <amount>.
func (h *AdminHandler) HandleGive(c Context) error {
	target, amount, err := adjustOptions(c)
	if err != nil {
		return err
	}

	balance, err := h.ledger.Give(c.Ctx(), model.AccountKey{UserID: target.ID, CommunityID: c.CommunityID()}, amount)
	if err != nil {
		return err
	}
	return reply(c, fmt.Sprintf("✅ Gave %s to %s. New balance: %s", coins(amount), target.Mention(), coins(balance)))
}

// HandleRemove handles /remove <user> <amount>. The balance may go negative.
func (h *AdminHandler) HandleRemove(c Context) error {
	target, amount, err := adjustOptions(c)
	if err != nil {
		return err
	}

	balance, err := h.ledger.Remove(c.Ctx(), model.AccountKey{UserID: target.ID, CommunityID: c.CommunityID()}, amount)
	if err != nil {
		return err
	}
	return reply(c, fmt.Sprintf("✅ Removed %s from %s. New balance: %s", coins(amount), target.Mention(), coins(balance)))
}

func adjustOptions(c Context) (*User, int64, error) {
	target, err := userOption(c, "user")
	if err != nil {
		return nil, 0, err
	}
	amount, err := intOption(c, "amount")
	if err != nil {
		return nil, 0, err
	}
	if target.Bot {
		return nil, 0, userError("Bots do not have a balance.")
	}
	return target, amount, nil
}
