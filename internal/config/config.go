package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken        string `envconfig:"BOT_TOKEN" required:"true"`
	BroadcastChatID int64  `envconfig:"BROADCAST_CHAT_ID" default:"0"` // mirror target for confirmations; 0 disables
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`      // debug|info|warn|error
	HTTPAddr        string `envconfig:"HTTP_ADDR" default:":8080"`     // healthz
}

// Load reads a local .env (if present) and then environment variables into
// Config. A missing BOT_TOKEN is the only fatal condition.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
