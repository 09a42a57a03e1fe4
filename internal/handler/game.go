package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"discord-economy-bot/internal/game"
	"discord-economy-bot/internal/game/bombs"
	"discord-economy-bot/internal/service"
)

// BombsPrefix starts the custom ID of every bombs board button:
// bombs:<session>:<row>:<col> or bombs:<session>:cashout.
const BombsPrefix = "bombs:"

const bombsCashOut = "cashout"

// GameHandler handles the chance games.
type GameHandler struct {
	games        *service.GameService
	defaultBombs int
}

// NewGameHandler creates a new GameHandler. defaultBombs is used when
// /bombs is called without a bomb count.
func NewGameHandler(games *service.GameService, defaultBombs int) *GameHandler {
	if defaultBombs < bombs.MinBombs || defaultBombs > bombs.MaxBombs {
		defaultBombs = bombs.DefaultBombs
	}
	return &GameHandler{
		games:        games,
		defaultBombs: defaultBombs,
	}
}

// HandleSlots handles /slots <bet>.
func (h *GameHandler) HandleSlots(c Context) error {
	bet, err := intOption(c, "bet")
	if err != nil {
		return err
	}
	return h.play(c, "slots", bet, nil)
}

// HandleRoulette handles /roulette <bet> <choice>.
func (h *GameHandler) HandleRoulette(c Context) error {
	bet, err := intOption(c, "bet")
	if err != nil {
		return err
	}
	choice, err := stringOption(c, "choice")
	if err != nil {
		return err
	}
	return h.play(c, "roulette", bet, map[string]any{"choice": choice})
}

func (h *GameHandler) play(c Context, command string, bet int64, params map[string]any) error {
	res, err := h.games.Play(c.Ctx(), c.Key(), command, bet, params)
	if err != nil {
		return err
	}
	return reply(c, fmt.Sprintf(
		"🎰 **%s** · %s · bet %d\n%s\n\nNet %s · Balance: %s",
		res.Game.Name(), c.Sender().Mention(), bet, res.Result.Description, signed(res.Net()), coins(res.Balance),
	))
}

// HandleBombs handles /bombs <bet> [bombs] and posts the board.
func (h *GameHandler) HandleBombs(c Context) error {
	bet, err := intOption(c, "bet")
	if err != nil {
		return err
	}
	count := h.defaultBombs
	if v, ok := c.Int("bombs"); ok {
		count = int(v)
	}

	sess, balance, err := h.games.StartBombs(c.Ctx(), c.Key(), bet, count)
	if err != nil {
		return err
	}
	return c.Reply(&Message{
		Content:    BombsStatus(sess) + fmt.Sprintf("\nBalance: %s", coins(balance)),
		Components: BombsBoard(sess),
	})
}

// HandleBombsButton handles a click on a bombs board.
func (h *GameHandler) HandleBombsButton(c Context) error {
	id, cell, cashOut, err := ParseBombsCustomID(c.Command())
	if err != nil {
		return userError("That button is no longer valid.")
	}

	var move *service.BombsMove
	if cashOut {
		move, err = h.games.CashOutBombs(c.Ctx(), c.Key(), id)
	} else {
		move, err = h.games.RevealBombs(c.Ctx(), c.Key(), id, cell)
	}
	if err != nil {
		if service.IsSessionGone(err) {
			return userError("This game is over. Start a new one with /bombs.")
		}
		return err
	}

	content := BombsStatus(move.Session)
	if move.Outcome.State == bombs.Won {
		content += fmt.Sprintf("\nBalance: %s", coins(move.Balance))
	}
	return c.Update(&Message{
		Content:    content,
		Components: BombsBoard(move.Session),
	})
}

// BombsCellID is the custom ID of one board cell.
func BombsCellID(id uuid.UUID, cell bombs.Cell) string {
	return fmt.Sprintf("%s%s:%d:%d", BombsPrefix, id, cell.Row, cell.Col)
}

// BombsCashOutID is the custom ID of the cash-out button.
func BombsCashOutID(id uuid.UUID) string {
	return BombsPrefix + id.String() + ":" + bombsCashOut
}

var errBadCustomID = errors.New("malformed bombs custom id")

// ParseBombsCustomID reverses BombsCellID and BombsCashOutID.
func ParseBombsCustomID(customID string) (id uuid.UUID, cell bombs.Cell, cashOut bool, err error) {
	rest, ok := strings.CutPrefix(customID, BombsPrefix)
	if !ok {
		return id, cell, false, errBadCustomID
	}
	parts := strings.Split(rest, ":")

	id, err = uuid.Parse(parts[0])
	if err != nil {
		return id, cell, false, errBadCustomID
	}

	switch {
	case len(parts) == 2 && parts[1] == bombsCashOut:
		return id, cell, true, nil
	case len(parts) == 3:
		row, rerr := strconv.Atoi(parts[1])
		col, cerr := strconv.Atoi(parts[2])
		if rerr != nil || cerr != nil {
			return id, cell, false, errBadCustomID
		}
		return id, bombs.Cell{Row: row, Col: col}, false, nil
	default:
		return id, cell, false, errBadCustomID
	}
}

// BombsBoard renders the 3×3 grid plus the cash-out row. A finished board
// shows every cell and has all buttons disabled.
func BombsBoard(sess *bombs.Session) []discordgo.MessageComponent {
	over := sess.State != bombs.InProgress
	rows := make([]discordgo.MessageComponent, 0, bombs.Size+1)

	for r := 0; r < bombs.Size; r++ {
		buttons := make([]discordgo.MessageComponent, 0, bombs.Size)
		for col := 0; col < bombs.Size; col++ {
			cell := bombs.Cell{Row: r, Col: col}
			label, style := cellFace(sess, cell)
			buttons = append(buttons, discordgo.Button{
				Label:    label,
				Style:    style,
				CustomID: BombsCellID(sess.ID, cell),
				Disabled: over || sess.IsRevealed(cell),
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}

	rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{
			Label:    fmt.Sprintf("Cash out x%s", sess.Coefficient().StringFixed(2)),
			Style:    discordgo.SuccessButton,
			CustomID: BombsCashOutID(sess.ID),
			Disabled: over,
		},
	}})
	return rows
}

func cellFace(sess *bombs.Session, cell bombs.Cell) (string, discordgo.ButtonStyle) {
	if !sess.IsRevealed(cell) {
		return "❓", discordgo.SecondaryButton
	}
	if !sess.IsBomb(cell) {
		return "💎", discordgo.PrimaryButton
	}
	if sess.Exploded != nil && *sess.Exploded == cell {
		return "💥", discordgo.DangerButton
	}
	return "💣", discordgo.DangerButton
}

// BombsStatus is the text above the board.
func BombsStatus(sess *bombs.Session) string {
	head := fmt.Sprintf("💣 **Bombs** · %s · bet %d · %d bomb(s)\n💎 %d/%d found · x%s",
		mention(sess.Owner.UserID), sess.Bet, sess.BombCount,
		sess.Found, sess.CrystalsTotal, sess.Coefficient().StringFixed(2))

	switch sess.State {
	case bombs.Won:
		if sess.AutoWin {
			return head + fmt.Sprintf("\n🏆 Every crystal found! You win %s", coins(sess.Payout))
		}
		return head + fmt.Sprintf("\n✅ Cashed out for %s", coins(sess.Payout))
	case bombs.Lost:
		return head + fmt.Sprintf("\n💥 Boom! You lost %d.", sess.Bet)
	default:
		return head + fmt.Sprintf("\nCash out now for %d, or keep digging.", game.Payout(sess.Bet, sess.Coefficient()))
	}
}
