package handler

import (
	"fmt"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/service"
)

// TransferHandler handles /pay.
type TransferHandler struct {
	transfer *service.TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transfer *service.TransferService) *TransferHandler {
	return &TransferHandler{transfer: transfer}
}

// HandlePay handles /pay <user> <amount>.
func (h *TransferHandler) HandlePay(c Context) error {
	recipient, err := userOption(c, "user")
	if err != nil {
		return err
	}
	amount, err := intOption(c, "amount")
	if err != nil {
		return err
	}
	if recipient.Bot {
		return service.ErrBotRecipient
	}

	to := model.AccountKey{UserID: recipient.ID, CommunityID: c.CommunityID()}
	res, err := h.transfer.Transfer(c.Ctx(), c.Key(), to, amount)
	if err != nil {
		return err
	}

	return reply(c, fmt.Sprintf(
		"💸 %s sent %s to %s.\nYour balance: %s",
		c.Sender().Mention(), coins(amount), recipient.Mention(), coins(res.FromBalance),
	))
}
