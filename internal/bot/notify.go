package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"discord-economy-bot/internal/model"
)

// Notifier sends settlement notices by direct message. Members with DMs
// closed simply do not get one.
type Notifier struct {
	session *discordgo.Session
}

// NewNotifier creates a Notifier on the given session.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{session: session}
}

// NotifyPayout tells a winner how much their bet paid.
func (n *Notifier) NotifyPayout(ctx context.Context, userID int64, ev *model.Event, payout int64) error {
	ch, err := n.session.UserChannelCreate(strconv.FormatInt(userID, 10), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	if _, err := n.session.ChannelMessageSend(ch.ID, PayoutNotice(ev, payout), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send DM: %w", err)
	}
	return nil
}

// PayoutNotice is the text of the settlement DM.
func PayoutNotice(ev *model.Event, payout int64) string {
	return fmt.Sprintf("🏆 Your bet on **%s** (event #%d) won! **%d** 💰 were added to your balance.", ev.Title, ev.ID, payout)
}

// RoleGranter assigns purchased roles.
type RoleGranter struct {
	session *discordgo.Session
}

// NewRoleGranter creates a RoleGranter on the given session.
func NewRoleGranter(session *discordgo.Session) *RoleGranter {
	return &RoleGranter{session: session}
}

// GrantRole adds a role to a guild member. It fails when the bot's own
// role sits below the granted one.
func (g *RoleGranter) GrantRole(ctx context.Context, communityID, userID, roleID int64) error {
	err := g.session.GuildMemberRoleAdd(
		strconv.FormatInt(communityID, 10),
		strconv.FormatInt(userID, 10),
		strconv.FormatInt(roleID, 10),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}
	return nil
}
