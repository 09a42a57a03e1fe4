package handler

import (
	"fmt"
	"strings"
	"time"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/service"
)

// PromoHandler handles promo code redemption and administration.
type PromoHandler struct {
	promos *service.PromoService
}

// NewPromoHandler creates a new PromoHandler.
func NewPromoHandler(promos *service.PromoService) *PromoHandler {
	return &PromoHandler{promos: promos}
}

// HandlePromo handles /promo <code>.
func (h *PromoHandler) HandlePromo(c Context) error {
	code, err := stringOption(c, "code")
	if err != nil {
		return err
	}
	res, err := h.promos.Redeem(c.Ctx(), code, c.Key())
	if err != nil {
		return err
	}
	return replyEphemeral(c, fmt.Sprintf("🎁 Code redeemed: %s added. Balance: %s", coins(res.Reward), coins(res.Balance)))
}

// HandleCreatePromo handles /create_promo <code> <reward> [expires] [max_uses].
// expires is UTC in the form YYYY-MM-DD HH:MM.
func (h *PromoHandler) HandleCreatePromo(c Context) error {
	code, err := stringOption(c, "code")
	if err != nil {
		return err
	}
	reward, err := intOption(c, "reward")
	if err != nil {
		return err
	}

	p := &model.PromoCode{
		Code:      code,
		Reward:    reward,
		CreatedBy: c.Sender().ID,
	}
	if raw, ok := c.String("expires"); ok {
		if p.ExpiresAt, err = service.ParseExpiry(raw); err != nil {
			return err
		}
	}
	if v, ok := c.Int("max_uses"); ok {
		uses := int(v)
		p.MaxUses = &uses
	}

	if err := h.promos.Create(c.Ctx(), p); err != nil {
		return err
	}
	return replyEphemeral(c, "✅ Promo code created:\n"+FormatPromo(p))
}

// HandleDeletePromo handles /delete_promo <code>.
func (h *PromoHandler) HandleDeletePromo(c Context) error {
	code, err := stringOption(c, "code")
	if err != nil {
		return err
	}
	deleted, err := h.promos.Delete(c.Ctx(), code)
	if err != nil {
		return err
	}
	if !deleted {
		return service.ErrPromoNotFound
	}
	return replyEphemeral(c, fmt.Sprintf("🗑️ Promo code `%s` deleted.", strings.TrimSpace(code)))
}

// HandleListPromos handles /list_promos.
func (h *PromoHandler) HandleListPromos(c Context) error {
	codes, err := h.promos.List(c.Ctx())
	if err != nil {
		return err
	}
	return replyEphemeral(c, FormatPromoList(codes))
}

// FormatPromo renders one code with its limits.
func FormatPromo(p *model.PromoCode) string {
	uses := fmt.Sprintf("%d", p.Uses)
	if p.MaxUses != nil {
		uses += fmt.Sprintf("/%d", *p.MaxUses)
	}
	expires := "never"
	if p.ExpiresAt != nil {
		expires = p.ExpiresAt.UTC().Format(service.PromoExpiryLayout) + " UTC"
	}
	return fmt.Sprintf("`%s` - %s · uses %s · expires %s", p.Code, coins(p.Reward), uses, expires)
}

// FormatPromoList renders every code, expired ones marked.
func FormatPromoList(codes []*model.PromoCode) string {
	if len(codes) == 0 {
		return "🎟️ No promo codes."
	}

	now := time.Now()
	var sb strings.Builder
	sb.WriteString("🎟️ **Promo codes**\n")
	for _, p := range codes {
		sb.WriteString("• ")
		sb.WriteString(FormatPromo(p))
		if p.Expired(now) {
			sb.WriteString(" ⌛")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
