// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Database DatabaseConfig `mapstructure:"database"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Economy  EconomyConfig  `mapstructure:"economy"`
	Games    GamesConfig    `mapstructure:"games"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
}

// BotConfig holds Discord bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
	// GuildIDs restricts slash command registration to these guilds.
	// Empty means global registration.
	GuildIDs []string `mapstructure:"guild_ids"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// EconomyConfig holds ledger and wagering limits.
type EconomyConfig struct {
	StartingBalance int64 `mapstructure:"starting_balance"`
	MinBet          int64 `mapstructure:"min_bet"`
	TopLimit        int   `mapstructure:"top_limit"`
}

// GamesConfig holds game-specific configuration.
type GamesConfig struct {
	Bombs BombsConfig `mapstructure:"bombs"`
}

// BombsConfig holds risk-ladder configuration.
type BombsConfig struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
	DefaultBombs  int           `mapstructure:"default_bombs"`
}

// HTTPConfig holds the ops HTTP server configuration.
type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. BOT_TOKEN, DATABASE_HOST, ECONOMY_MIN_BET
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Bot token has no default but must be bindable from BOT_TOKEN
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.guild_ids", []string{})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "economy")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "economy")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("economy.starting_balance", 100)
	v.SetDefault("economy.min_bet", 10)
	v.SetDefault("economy.top_limit", 10)

	v.SetDefault("games.bombs.idle_timeout", "10m")
	v.SetDefault("games.bombs.sweep_schedule", "@every 1m")
	v.SetDefault("games.bombs.default_bombs", 3)

	v.SetDefault("http.enabled", true)
	v.SetDefault("http.addr", ":8080")

	v.SetDefault("log.level", "info")
}

// Validate rejects configurations the economy cannot run with.
func (c *Config) Validate() error {
	if c.Economy.StartingBalance < 0 {
		return fmt.Errorf("economy.starting_balance must not be negative")
	}
	if c.Economy.MinBet <= 0 {
		return fmt.Errorf("economy.min_bet must be positive")
	}
	if c.Games.Bombs.DefaultBombs < 1 || c.Games.Bombs.DefaultBombs > 8 {
		return fmt.Errorf("games.bombs.default_bombs must be between 1 and 8")
	}
	if c.Games.Bombs.IdleTimeout <= 0 {
		return fmt.Errorf("games.bombs.idle_timeout must be positive")
	}
	return nil
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}
