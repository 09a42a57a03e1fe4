package handler_test

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discord-economy-bot/internal/game/bombs"
	"discord-economy-bot/internal/handler"
	"discord-economy-bot/internal/handler/handlertest"
	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/service"
)

type fixedDraw struct{ f float64 }

func (fixedDraw) Intn(int) int { return 0 }
func (d fixedDraw) Float64() float64 { return d.f }

func newSession(t *testing.T, bombCount int) *bombs.Session {
	t.Helper()
	sess, err := bombs.NewSession(fixedDraw{f: 0}, model.AccountKey{UserID: 7, CommunityID: 1}, 100, bombCount, 0, time.Now())
	require.NoError(t, err)
	return sess
}

func TestBombsCustomID(t *testing.T) {
	id := uuid.New()

	gotID, cell, cashOut, err := handler.ParseBombsCustomID(handler.BombsCellID(id, bombs.Cell{Row: 2, Col: 1}))
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, bombs.Cell{Row: 2, Col: 1}, cell)
	assert.False(t, cashOut)

	gotID, _, cashOut, err = handler.ParseBombsCustomID(handler.BombsCashOutID(id))
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.True(t, cashOut)

	for _, bad := range []string{
		"shop:buy",
		"bombs:not-a-uuid:0:0",
		"bombs:" + id.String(),
		"bombs:" + id.String() + ":x:1",
		"bombs:" + id.String() + ":0:1:2",
		"bombs:" + id.String() + ":cash",
	} {
		_, _, _, err := handler.ParseBombsCustomID(bad)
		assert.Error(t, err, bad)
	}
}

func buttons(components []discordgo.MessageComponent) []discordgo.Button {
	var out []discordgo.Button
	for _, row := range components {
		for _, c := range row.(discordgo.ActionsRow).Components {
			out = append(out, c.(discordgo.Button))
		}
	}
	return out
}

func TestBombsBoard_InProgress(t *testing.T) {
	sess := newSession(t, 3)

	btns := buttons(handler.BombsBoard(sess))
	require.Len(t, btns, bombs.Cells+1)
	for _, b := range btns[:bombs.Cells] {
		assert.Equal(t, "❓", b.Label)
		assert.False(t, b.Disabled)
	}
	cashOut := btns[bombs.Cells]
	assert.Equal(t, "Cash out x1.00", cashOut.Label)
	assert.Equal(t, handler.BombsCashOutID(sess.ID), cashOut.CustomID)
	assert.Contains(t, handler.BombsStatus(sess), "Cash out now for 100")
}

func TestBombsBoard_Lost(t *testing.T) {
	sess := newSession(t, 3)

	var bomb bombs.Cell
	for i := 0; i < bombs.Cells; i++ {
		c := bombs.Cell{Row: i / bombs.Size, Col: i % bombs.Size}
		if sess.IsBomb(c) {
			bomb = c
			break
		}
	}
	_, err := sess.Reveal(sess.Owner, bomb, time.Now())
	require.NoError(t, err)

	exploded, bombsShown, crystals := 0, 0, 0
	for _, b := range buttons(handler.BombsBoard(sess)) {
		assert.True(t, b.Disabled)
		switch b.Label {
		case "💥":
			exploded++
		case "💣":
			bombsShown++
		case "💎":
			crystals++
		}
	}
	assert.Equal(t, 1, exploded)
	assert.Equal(t, 2, bombsShown)
	assert.Equal(t, 6, crystals)
	assert.Contains(t, handler.BombsStatus(sess), "Boom")
}

func TestHandleBombsButton_StaleButton(t *testing.T) {
	h := handler.NewGameHandler(nil, 3)
	c := handlertest.New("bombs:garbage", 1, 1)

	err := h.HandleBombsButton(c)
	var ue *handler.UserError
	assert.True(t, errors.As(err, &ue))
	assert.Empty(t, c.Replies())
}

func TestHandlePay_RejectsBots(t *testing.T) {
	h := handler.NewTransferHandler(nil)

	c := handlertest.New("pay", 1, 1)
	c.Users["user"] = &handler.User{ID: 2, Bot: true}
	c.Ints["amount"] = 10
	assert.ErrorIs(t, h.HandlePay(c), service.ErrBotRecipient)

	c = handlertest.New("pay", 1, 1)
	c.Ints["amount"] = 10
	var ue *handler.UserError
	assert.True(t, errors.As(h.HandlePay(c), &ue))
}

func TestHandleBuyMenu_BadSelection(t *testing.T) {
	h := handler.NewShopHandler(nil)
	c := handlertest.New("shop:buy", 1, 1)
	c.Selected = []string{"abc"}

	var ue *handler.UserError
	assert.True(t, errors.As(h.HandleBuyMenu(c), &ue))
}

func TestFormatEvent(t *testing.T) {
	ev := &model.Event{
		ID:    3,
		Title: "⚔️ NaVi vs G2",
		Options: map[string]model.EventOption{
			"navi": {Name: "NaVi", Coeff: decimal.RequireFromString("1.85")},
			"g2":   {Name: "G2", Coeff: decimal.RequireFromString("2.1")},
		},
		Rosters: map[string]string{"NaVi": "s1mple, b1t"},
	}

	assert.Equal(t,
		"🟢 **#3 ⚔️ NaVi vs G2**\n• `g2` G2 - x2.1\n• `navi` NaVi - x1.85 (s1mple, b1t)",
		handler.FormatEvent(ev))

	ev.Locked = true
	d := &service.EventDetails{Event: ev, Pools: map[string]*model.OptionPool{
		"navi": {Choice: "navi", Bets: 2, Total: 150},
	}}
	out := handler.FormatEventDetails(d)
	assert.Contains(t, out, "🔒")
	assert.Contains(t, out, "`navi`: **150** 💰 in 2 bet(s)")

	assert.Equal(t, "📅 No events right now.", handler.FormatEventList(nil))
}

func TestFormatSettlement(t *testing.T) {
	res := &service.SettleResult{
		Event:  &model.Event{Title: "⭐ Final"},
		Winner: model.EventOption{Name: "ZywOo", Coeff: decimal.RequireFromString("2.4")},
		Payouts: []service.Payout{
			{UserID: 5, Stake: 10, Amount: 24},
		},
		Bets: 3,
	}
	out := handler.FormatSettlement(res)
	assert.Contains(t, out, "Winner: **ZywOo** (x2.4)")
	assert.Contains(t, out, "<@5> staked 10 and wins **24** 💰")
	assert.Contains(t, out, "1 of 3 bet(s) paid.")

	res.Payouts = nil
	assert.Contains(t, handler.FormatSettlement(res), "Nobody backed the winner. 3 bet(s) lost.")
}

func TestFormatPromo(t *testing.T) {
	uses := 5
	exp := time.Date(2030, 1, 2, 15, 4, 0, 0, time.UTC)
	p := &model.PromoCode{Code: "SPRING", Reward: 50, MaxUses: &uses, ExpiresAt: &exp, Uses: 2}
	assert.Equal(t, "`SPRING` - **50** 💰 · uses 2/5 · expires 2030-01-02 15:04 UTC", handler.FormatPromo(p))

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	list := handler.FormatPromoList([]*model.PromoCode{p, {Code: "OLD", Reward: 1, ExpiresAt: &old}})
	assert.Contains(t, list, "`OLD` - **1** 💰 · uses 0 · expires 2020-01-01 00:00 UTC ⌛")
	assert.Equal(t, "🎟️ No promo codes.", handler.FormatPromoList(nil))
}

func TestFormatLeaderboard(t *testing.T) {
	out := handler.FormatLeaderboard([]*model.Account{
		{UserID: 1, Balance: 900},
		{UserID: 2, Balance: 500},
		{UserID: 3, Balance: 100},
		{UserID: 4, Balance: -5},
	})
	assert.Equal(t, "🏆 **Leaderboard**\n🥇 <@1> - **900** 💰\n🥈 <@2> - **500** 💰\n🥉 <@3> - **100** 💰\n4. <@4> - **-5** 💰", out)
	assert.Equal(t, "🏆 Nobody has a balance yet.", handler.FormatLeaderboard(nil))
}

func TestFormatPurchase(t *testing.T) {
	role := int64(77)
	res := &service.PurchaseResult{
		Item:     &model.ShopItem{Name: "VIP", Kind: model.ItemKindRole, RoleID: &role},
		Quantity: 1, Total: 20, Balance: 80, Owned: 1,
	}
	assert.Contains(t, handler.FormatPurchase(res), "could not be assigned")

	res.RoleGranted = true
	assert.Contains(t, handler.FormatPurchase(res), "Role <@&77> granted.")
}

func TestHelpText(t *testing.T) {
	text := handler.HelpText(nil)
	assert.Contains(t, text, "`/pay <user> <amount>`")
	assert.Contains(t, text, "`/settle`")
}
