package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"

	"discord-economy-bot/internal/handler"
	"discord-economy-bot/internal/model"
)

// interactionContext adapts one Discord interaction to handler.Context.
type interactionContext struct {
	ctx       context.Context
	s         *discordgo.Session
	i         *discordgo.InteractionCreate
	sender    *handler.User
	community int64
	perms     int64
	command   string
	options   map[string]*discordgo.ApplicationCommandInteractionDataOption
	resolved  *discordgo.ApplicationCommandInteractionDataResolved
	values    []string

	mu        sync.Mutex
	responded bool
}

var _ handler.Context = (*interactionContext)(nil)

// newContext reads the sender, the community and the options out of an
// interaction. Interactions outside a guild are rejected.
func newContext(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*interactionContext, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return nil, errNotInGuild
	}
	community, err := parseID(i.GuildID)
	if err != nil {
		return nil, err
	}
	sender, err := toUser(i.Member.User)
	if err != nil {
		return nil, err
	}

	c := &interactionContext{
		ctx:       ctx,
		s:         s,
		i:         i,
		sender:    sender,
		community: community,
		perms:     i.Member.Permissions,
		options:   make(map[string]*discordgo.ApplicationCommandInteractionDataOption),
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		c.command = data.Name
		c.resolved = data.Resolved
		for _, opt := range data.Options {
			c.options[opt.Name] = opt
		}
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		c.command = data.CustomID
		c.values = data.Values
	default:
		return nil, fmt.Errorf("unsupported interaction type %v", i.Type)
	}
	return c, nil
}

func parseID(id string) (int64, error) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", id, err)
	}
	return v, nil
}

func toUser(u *discordgo.User) (*handler.User, error) {
	id, err := parseID(u.ID)
	if err != nil {
		return nil, err
	}
	name := u.GlobalName
	if name == "" {
		name = u.Username
	}
	return &handler.User{ID: id, Name: name, Bot: u.Bot}, nil
}

func (c *interactionContext) Ctx() context.Context { return c.ctx }
func (c *interactionContext) Sender() *handler.User { return c.sender }
func (c *interactionContext) CommunityID() int64 { return c.community }
func (c *interactionContext) Permissions() int64 { return c.perms }
func (c *interactionContext) Command() string { return c.command }
func (c *interactionContext) Values() []string { return c.values }

func (c *interactionContext) Key() model.AccountKey {
	return model.AccountKey{UserID: c.sender.ID, CommunityID: c.community}
}

// Discord sends every number as a JSON number, so integers arrive as float64.
func (c *interactionContext) Int(name string) (int64, bool) {
	opt, ok := c.options[name]
	if !ok {
		return 0, false
	}
	switch v := opt.Value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func (c *interactionContext) String(name string) (string, bool) {
	opt, ok := c.options[name]
	if !ok {
		return "", false
	}
	v, ok := opt.Value.(string)
	return v, ok
}

func (c *interactionContext) Bool(name string) (bool, bool) {
	opt, ok := c.options[name]
	if !ok {
		return false, false
	}
	v, ok := opt.Value.(bool)
	return v, ok
}

func (c *interactionContext) User(name string) (*handler.User, bool) {
	raw, ok := c.String(name)
	if !ok {
		return nil, false
	}
	if c.resolved != nil {
		if u, ok := c.resolved.Users[raw]; ok {
			user, err := toUser(u)
			return user, err == nil
		}
	}
	id, err := parseID(raw)
	if err != nil {
		return nil, false
	}
	return &handler.User{ID: id}, true
}

func (c *interactionContext) Role(name string) (int64, bool) {
	raw, ok := c.String(name)
	if !ok {
		return 0, false
	}
	id, err := parseID(raw)
	return id, err == nil
}

func (c *interactionContext) Reply(msg *handler.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var flags discordgo.MessageFlags
	if msg.Ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	if c.responded {
		_, err := c.s.FollowupMessageCreate(c.i.Interaction, true, &discordgo.WebhookParams{
			Content:         msg.Content,
			Components:      msg.Components,
			Flags:           flags,
			AllowedMentions: noPings(),
		}, discordgo.WithContext(c.ctx))
		return err
	}

	err := c.s.InteractionRespond(c.i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         msg.Content,
			Components:      msg.Components,
			Flags:           flags,
			AllowedMentions: noPings(),
		},
	}, discordgo.WithContext(c.ctx))
	if err == nil {
		c.responded = true
	}
	return err
}

func (c *interactionContext) Update(msg *handler.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.s.InteractionRespond(c.i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:         msg.Content,
			Components:      msg.Components,
			AllowedMentions: noPings(),
		},
	}, discordgo.WithContext(c.ctx))
	if err == nil {
		c.responded = true
	}
	return err
}

// Mentions render as names but never notify anyone.
func noPings() *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
}
