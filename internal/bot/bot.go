// Package bot connects the handlers to Discord: it registers the slash
// commands, routes interactions and renders handler errors.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-economy-bot/internal/config"
	"discord-economy-bot/internal/handler"
	"discord-economy-bot/internal/service"
	"discord-economy-bot/internal/shop"
)

// HandlerTimeout bounds one interaction's work.
const HandlerTimeout = 10 * time.Second

var errNotInGuild = errors.New("interaction outside a guild")

// Bot wraps the discordgo session with the routing table.
type Bot struct {
	session    *discordgo.Session
	cfg        *config.Config
	middleware []MiddlewareFunc
	commands   map[string]handler.HandlerFunc
	components []componentRoute

	ctx    context.Context
	cancel context.CancelFunc
}

type componentRoute struct {
	prefix string
	h      handler.HandlerFunc
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config   *config.Config
	Session  *discordgo.Session
	Ledger   *service.LedgerService
	Transfer *service.TransferService
	Ranking  *service.RankingService
	Shop     *service.ShopService
	Promo    *service.PromoService
	Events   *service.EventService
	Games    *service.GameService
}

// NewSession creates the Discord session. It does not connect.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	return s, nil
}

// New creates a new Bot and registers the handlers.
func New(deps *Dependencies) *Bot {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		session:  deps.Session,
		cfg:      deps.Config,
		commands: make(map[string]handler.HandlerFunc),
		ctx:      ctx,
		cancel:   cancel,
	}

	b.Use(RecoveryMiddleware(), ErrorMiddleware(), LoggingMiddleware())
	b.registerHandlers(deps)

	if b.session != nil {
		b.session.AddHandler(b.onInteraction)
		b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
			log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("Connected to Discord")
		})
	}
	return b
}

// Use adds middleware to every route registered afterwards.
func (b *Bot) Use(mws ...MiddlewareFunc) {
	b.middleware = append(b.middleware, mws...)
}

// Handle registers a slash command handler.
func (b *Bot) Handle(name string, h handler.HandlerFunc, mws ...MiddlewareFunc) {
	b.commands[name] = Chain(h, append(append([]MiddlewareFunc{}, b.middleware...), mws...)...)
}

// HandleComponent registers a handler for components whose custom ID
// starts with prefix.
func (b *Bot) HandleComponent(prefix string, h handler.HandlerFunc) {
	b.components = append(b.components, componentRoute{prefix: prefix, h: Chain(h, b.middleware...)})
}

func (b *Bot) registerHandlers(deps *Dependencies) {
	account := handler.NewAccountHandler(deps.Ledger, deps.Games)
	transfer := handler.NewTransferHandler(deps.Transfer)
	admin := handler.NewAdminHandler(deps.Ledger)
	ranking := handler.NewRankingHandler(deps.Ranking)
	shopHandler := handler.NewShopHandler(deps.Shop)
	promo := handler.NewPromoHandler(deps.Promo)
	events := handler.NewEventHandler(deps.Events)
	games := handler.NewGameHandler(deps.Games, b.cfg.Games.Bombs.DefaultBombs)

	adminOnly := AdminMiddleware(b.cfg)

	b.Handle("help", account.HandleHelp)
	b.Handle("balance", account.HandleBalance)
	b.Handle("pay", transfer.HandlePay)
	b.Handle("top", ranking.HandleTop)
	b.Handle("give", admin.HandleGive, adminOnly)
	b.Handle("remove", admin.HandleRemove, adminOnly)

	b.Handle("shop", shopHandler.HandleShop)
	b.Handle("inventory", shopHandler.HandleInventory)
	b.Handle("buy", shopHandler.HandleBuy)
	b.Handle("create_item", shopHandler.HandleCreateItem, adminOnly)
	b.Handle("create_role_item", shopHandler.HandleCreateRoleItem, adminOnly)
	b.Handle("delete_item", shopHandler.HandleDeleteItem, adminOnly)
	b.Handle("give_item", shopHandler.HandleGiveItem, adminOnly)
	b.Handle("remove_item", shopHandler.HandleRemoveItem, adminOnly)

	b.Handle("promo", promo.HandlePromo)
	b.Handle("create_promo", promo.HandleCreatePromo, adminOnly)
	b.Handle("delete_promo", promo.HandleDeletePromo, adminOnly)
	b.Handle("list_promos", promo.HandleListPromos, adminOnly)

	b.Handle("events", events.HandleEvents)
	b.Handle("bet", events.HandleBet)
	b.Handle("create_match", events.HandleCreateMatch, adminOnly)
	b.Handle("create_mvp", events.HandleCreateMVP, adminOnly)
	b.Handle("create_total", events.HandleCreateTotal, adminOnly)
	b.Handle("lock", events.HandleLock, adminOnly)
	b.Handle("unlock", events.HandleUnlock, adminOnly)
	b.Handle("settle", events.HandleSettle, adminOnly)

	b.Handle("slots", games.HandleSlots)
	b.Handle("roulette", games.HandleRoulette)
	b.Handle("bombs", games.HandleBombs)

	b.HandleComponent(shop.CustomIDBuy, shopHandler.HandleBuyMenu)
	b.HandleComponent(handler.BombsPrefix, games.HandleBombsButton)
}

// route finds the handler of a slash command or a component custom ID.
func (b *Bot) route(i *discordgo.InteractionCreate) handler.HandlerFunc {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return b.commands[i.ApplicationCommandData().Name]
	case discordgo.InteractionMessageComponent:
		id := i.MessageComponentData().CustomID
		for _, r := range b.components {
			if strings.HasPrefix(id, r.prefix) {
				return r.h
			}
		}
	}
	return nil
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h := b.route(i)
	if h == nil {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, HandlerTimeout)
	defer cancel()

	c, err := newContext(ctx, s, i)
	if err != nil {
		if errors.Is(err, errNotInGuild) {
			respondPlain(s, i, "This bot only works inside a server.")
			return
		}
		log.Error().Err(err).Msg("Failed to read interaction")
		return
	}
	_ = h(c)
}

func respondPlain(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Debug().Err(err).Msg("Failed to respond")
	}
}

// Start connects to Discord and registers the slash commands, in the
// configured guilds or globally when none are set.
func (b *Bot) Start() error {
	log.Info().Msg("Starting bot...")
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}

	appID := b.session.State.User.ID
	guilds := b.cfg.Bot.GuildIDs
	if len(guilds) == 0 {
		guilds = []string{""}
	}
	for _, guildID := range guilds {
		cmds, err := b.session.ApplicationCommandBulkOverwrite(appID, guildID, Commands())
		if err != nil {
			_ = b.session.Close()
			return fmt.Errorf("failed to register commands in guild %q: %w", guildID, err)
		}
		log.Info().Str("guild_id", guildID).Int("commands", len(cmds)).Msg("Slash commands registered")
	}
	return nil
}

// Stop cancels in-flight handlers and disconnects.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.cancel()
	if err := b.session.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close Discord session")
	}
}
