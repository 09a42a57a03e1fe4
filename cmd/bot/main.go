// Package main is the entry point for the Discord economy bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"discord-economy-bot/internal/api"
	"discord-economy-bot/internal/bot"
	"discord-economy-bot/internal/config"
	"discord-economy-bot/internal/game"
	"discord-economy-bot/internal/game/bombs"
	"discord-economy-bot/internal/game/roulette"
	"discord-economy-bot/internal/game/slot"
	"discord-economy-bot/internal/jobs"
	"discord-economy-bot/internal/pkg/db"
	"discord-economy-bot/internal/pkg/lock"
	"discord-economy-bot/internal/repository"
	"discord-economy-bot/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var configPath string

	root := &cobra.Command{
		Use:          "economy-bot",
		Short:        "Discord community economy bot",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config", "directory holding config.yaml")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Connect to Discord and serve commands",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd.Context(), configPath)
			},
		},
		newMigrateCmd(&configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Exiting")
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withMigrator := func(fn func(*db.Migrator) error) error {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		mg, err := db.NewMigrator(cfg.Database.DSN())
		if err != nil {
			return err
		}
		defer mg.Close()
		return fn(mg)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(*cobra.Command, []string) error {
				return withMigrator((*db.Migrator).Up)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(*cobra.Command, []string) error {
				return withMigrator((*db.Migrator).Down)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(func(mg *db.Migrator) error {
					version, dirty, err := mg.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
					return nil
				})
			},
		},
	)
	return cmd
}

func run(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log.Info().Msg("Configuration loaded successfully")

	pool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := db.MigrateUp(cfg.Database.DSN()); err != nil {
		return err
	}

	session, err := bot.NewSession(cfg.Bot.Token)
	if err != nil {
		return err
	}

	// Repositories
	ledgerRepo := repository.NewLedgerRepository(pool.Pool, cfg.Economy.StartingBalance)
	catalogRepo := repository.NewCatalogRepository(pool.Pool)
	inventoryRepo := repository.NewInventoryRepository(pool.Pool)
	promoRepo := repository.NewPromoRepository(pool.Pool)
	eventRepo := repository.NewEventRepository(pool.Pool)
	betRepo := repository.NewBetRepository(pool.Pool)

	// Games
	rng := game.NewRNG(time.Now().UnixNano())
	registry := game.NewRegistry()
	for _, g := range []game.Game{
		slot.New(&slot.Config{MinBet: cfg.Economy.MinBet, RNG: rng}),
		roulette.New(&roulette.Config{MinBet: cfg.Economy.MinBet, RNG: rng}),
	} {
		if err := registry.Register(g); err != nil {
			return fmt.Errorf("failed to register game: %w", err)
		}
	}
	log.Info().
		Int("game_count", registry.Count()).
		Strs("games", registry.Commands()).
		Msg("Games registered")

	games := service.NewGameService(
		pool.Pool,
		ledgerRepo,
		registry,
		game.NewRetentionTracker(),
		lock.NewAccountLock(),
		bombs.NewStore(),
		rng,
		service.GameConfig{
			BombsMinBet:      cfg.Economy.MinBet,
			BombsIdleTimeout: cfg.Games.Bombs.IdleTimeout,
		},
	)
	ranking := service.NewRankingService(ledgerRepo, cfg.Economy.TopLimit)

	deps := &bot.Dependencies{
		Config:   cfg,
		Session:  session,
		Ledger:   service.NewLedgerService(ledgerRepo),
		Transfer: service.NewTransferService(pool.Pool, ledgerRepo),
		Ranking:  ranking,
		Shop: service.NewShopService(pool.Pool, catalogRepo, inventoryRepo, ledgerRepo,
			bot.NewRoleGranter(session)),
		Promo: service.NewPromoService(pool.Pool, promoRepo, ledgerRepo),
		Events: service.NewEventService(pool.Pool, eventRepo, betRepo, ledgerRepo,
			bot.NewNotifier(session), cfg.Economy.MinBet),
		Games: games,
	}

	scheduler := jobs.NewScheduler(games, cfg.Games.Bombs.SweepSchedule)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	if cfg.HTTP.Enabled {
		srv := api.New(pool, games, ranking)
		go func() {
			log.Info().Str("addr", cfg.HTTP.Addr).Msg("Ops server listening")
			if err := srv.ListenAndServe(ctx, cfg.HTTP.Addr); err != nil {
				log.Error().Err(err).Msg("Ops server failed")
			}
		}()
	}

	discordBot := bot.New(deps)
	if err := discordBot.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info().Msg("Received shutdown signal")

	discordBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
	return nil
}
