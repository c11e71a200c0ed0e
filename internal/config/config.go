// /internal/config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/keshon/tts-bot/internal/botlist"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("[INFO] No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken          string   `env:"DISCORD_TOKEN,required,notEmpty"`
	DiscordGuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	InitSlashCommands     bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	TopGGToken         string        `env:"TOP_GG_TOKEN"`
	DiscordBotsGGToken string        `env:"DISCORD_BOTS_GG_TOKEN"`
	BotsOnDiscordToken string        `env:"BOTS_ON_DISCORD_TOKEN"`
	BotListHTTPTimeout time.Duration `env:"BOTLIST_HTTP_TIMEOUT" envDefault:"10s"`
}

// New reads the configuration from the environment.
func New() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.BotListHTTPTimeout <= 0 {
		return nil, fmt.Errorf("BOTLIST_HTTP_TIMEOUT must be positive, got %v", cfg.BotListHTTPTimeout)
	}
	return &cfg, nil
}

// RedisOptions returns connection options for the guild settings store.
func (c *Config) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// BotListTokens returns the bot directory credentials. Directories without
// a token are disabled.
func (c *Config) BotListTokens() botlist.Tokens {
	return botlist.Tokens{
		TopGG:         c.TopGGToken,
		DiscordBotsGG: c.DiscordBotsGGToken,
		BotsOnDiscord: c.BotsOnDiscordToken,
	}
}
