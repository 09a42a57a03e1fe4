package handler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/service"
)

// EventHandler handles the betting events.
type EventHandler struct {
	events *service.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// HandleEvents handles /events [event_id].
func (h *EventHandler) HandleEvents(c Context) error {
	if id, ok := c.Int("event_id"); ok {
		d, err := h.events.Get(c.Ctx(), c.CommunityID(), id)
		if err != nil {
			return err
		}
		return reply(c, FormatEventDetails(d))
	}

	events, err := h.events.List(c.Ctx(), c.CommunityID())
	if err != nil {
		return err
	}
	return reply(c, FormatEventList(events))
}

// HandleBet handles /bet <event_id> <option> <amount>.
func (h *EventHandler) HandleBet(c Context) error {
	eventID, err := intOption(c, "event_id")
	if err != nil {
		return err
	}
	choice, err := stringOption(c, "option")
	if err != nil {
		return err
	}
	amount, err := intOption(c, "amount")
	if err != nil {
		return err
	}

	res, err := h.events.PlaceBet(c.Ctx(), c.Key(), eventID, choice, amount)
	if err != nil {
		return err
	}
	return reply(c, fmt.Sprintf(
		"🎫 %s bet %s on **%s** (x%s) in event #%d.\nBalance: %s",
		c.Sender().Mention(), coins(amount), res.Option.Name, res.Bet.Coeff.String(), eventID, coins(res.Balance),
	))
}

// HandleCreateMatch handles /create_match.
func (h *EventHandler) HandleCreateMatch(c Context) error {
	var in service.MatchInput
	var err error
	if in.Team1, err = stringOption(c, "team1"); err != nil {
		return err
	}
	if in.Team2, err = stringOption(c, "team2"); err != nil {
		return err
	}
	in.Roster1, _ = c.String("roster1")
	in.Roster2, _ = c.String("roster2")
	if in.Coeff1, err = coefficientOption(c, "coeff1"); err != nil {
		return err
	}
	if in.Coeff2, err = coefficientOption(c, "coeff2"); err != nil {
		return err
	}

	ev, err := h.events.CreateMatch(c.Ctx(), c.CommunityID(), in)
	if err != nil {
		return err
	}
	return h.created(c, ev)
}

// HandleCreateMVP handles /create_mvp <title> <options>.
func (h *EventHandler) HandleCreateMVP(c Context) error {
	title, err := stringOption(c, "title")
	if err != nil {
		return err
	}
	data, err := stringOption(c, "options")
	if err != nil {
		return err
	}

	ev, err := h.events.CreateMVP(c.Ctx(), c.CommunityID(), title, data)
	if err != nil {
		return err
	}
	return h.created(c, ev)
}

// HandleCreateTotal handles /create_total <description> <coeff_over> <coeff_under>.
func (h *EventHandler) HandleCreateTotal(c Context) error {
	description, err := stringOption(c, "description")
	if err != nil {
		return err
	}
	over, err := coefficientOption(c, "coeff_over")
	if err != nil {
		return err
	}
	under, err := coefficientOption(c, "coeff_under")
	if err != nil {
		return err
	}

	ev, err := h.events.CreateTotal(c.Ctx(), c.CommunityID(), description, over, under)
	if err != nil {
		return err
	}
	return h.created(c, ev)
}

func (h *EventHandler) created(c Context, ev *model.Event) error {
	return reply(c, fmt.Sprintf("📢 New event!\n%s\nBet with `/bet %d <option> <amount>`", FormatEvent(ev), ev.ID))
}

// HandleLock handles /lock <event_id>.
func (h *EventHandler) HandleLock(c Context) error {
	eventID, err := intOption(c, "event_id")
	if err != nil {
		return err
	}
	if err := h.events.Lock(c.Ctx(), c.CommunityID(), eventID); err != nil {
		return err
	}
	return reply(c, fmt.Sprintf("🔒 Betting on event #%d is closed.", eventID))
}

// HandleUnlock handles /unlock <event_id>.
func (h *EventHandler) HandleUnlock(c Context) error {
	eventID, err := intOption(c, "event_id")
	if err != nil {
		return err
	}
	if err := h.events.Unlock(c.Ctx(), c.CommunityID(), eventID); err != nil {
		return err
	}
	return reply(c, fmt.Sprintf("🔓 Betting on event #%d is open again.", eventID))
}

// HandleSettle handles /settle <event_id> <winner>.
func (h *EventHandler) HandleSettle(c Context) error {
	eventID, err := intOption(c, "event_id")
	if err != nil {
		return err
	}
	winner, err := stringOption(c, "winner")
	if err != nil {
		return err
	}

	res, err := h.events.Settle(c.Ctx(), c.CommunityID(), eventID, winner)
	if err != nil {
		return err
	}
	return reply(c, FormatSettlement(res))
}

func coefficientOption(c Context, name string) (decimal.Decimal, error) {
	raw, err := stringOption(c, name)
	if err != nil {
		return decimal.Zero, err
	}
	return service.ParseCoefficient(raw)
}

// FormatEvent renders an event with its options and rosters.
func FormatEvent(ev *model.Event) string {
	var sb strings.Builder
	status := "🟢"
	if ev.Locked {
		status = "🔒"
	}
	fmt.Fprintf(&sb, "%s **#%d %s**\n", status, ev.ID, ev.Title)
	for _, k := range ev.OptionKeys() {
		opt := ev.Options[k]
		fmt.Fprintf(&sb, "• `%s` %s - x%s", k, opt.Name, opt.Coeff.String())
		if roster := ev.Rosters[opt.Name]; roster != "" {
			fmt.Fprintf(&sb, " (%s)", roster)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatEventList renders the open and locked events of a community.
func FormatEventList(events []*model.Event) string {
	if len(events) == 0 {
		return "📅 No events right now."
	}
	var sb strings.Builder
	sb.WriteString("📅 **Events**\n")
	for _, ev := range events {
		status := "🟢"
		if ev.Locked {
			status = "🔒"
		}
		fmt.Fprintf(&sb, "%s #%d %s (%d options)\n", status, ev.ID, ev.Title, len(ev.Options))
	}
	sb.WriteString("Use `/events <event_id>` for the details.")
	return sb.String()
}

// FormatEventDetails renders an event followed by the stakes on each option.
func FormatEventDetails(d *service.EventDetails) string {
	var sb strings.Builder
	sb.WriteString(FormatEvent(d.Event))

	if len(d.Pools) == 0 {
		sb.WriteString("\n\nNo bets yet.")
		return sb.String()
	}

	keys := make([]string, 0, len(d.Pools))
	for k := range d.Pools {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString("\n\n**Stakes**")
	for _, k := range keys {
		p := d.Pools[k]
		fmt.Fprintf(&sb, "\n• `%s`: %s in %d bet(s)", k, coins(p.Total), p.Bets)
	}
	return sb.String()
}

// FormatSettlement renders the settlement announcement.
func FormatSettlement(res *service.SettleResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏁 **%s** settled. Winner: **%s** (x%s)\n", res.Event.Title, res.Winner.Name, res.Winner.Coeff.String())
	if res.Winners() == 0 {
		fmt.Fprintf(&sb, "Nobody backed the winner. %d bet(s) lost.", res.Bets)
		return sb.String()
	}
	for _, p := range res.Payouts {
		fmt.Fprintf(&sb, "• %s staked %d and wins %s\n", mention(p.UserID), p.Stake, coins(p.Amount))
	}
	fmt.Fprintf(&sb, "%d of %d bet(s) paid.", res.Winners(), res.Bets)
	return sb.String()
}
