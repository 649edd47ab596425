// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/joho/godotenv"
)

// Config is the process configuration. Every id is a Discord snowflake.
type Config struct {
	DiscordToken    string `env:"FSB_DISCORD_TOKEN,required,notEmpty"`
	ServerID        string `env:"FSB_SERVER_ID,required,notEmpty"`
	VoiceChannelID  string `env:"FSB_VOICE_CHANNEL_ID,required,notEmpty"`
	StatusChannelID string `env:"FSB_STATUS_CHANNEL_ID,required,notEmpty"`
	MasterID        string `env:"FSB_MASTER_PERMISSION_ID,required,notEmpty"`
	BotID           string `env:"FSB_MY_ID,required,notEmpty"`

	CommandPrefix string        `env:"FSB_COMMAND_PREFIX" envDefault:"!"`
	SoundDir      string        `env:"FSB_SOUND_DIR" envDefault:"."`
	HelloSounds   int           `env:"FSB_HELLO_SOUNDS" envDefault:"7"`
	AnnounceDelay time.Duration `env:"FSB_ANNOUNCE_DELAY" envDefault:"500ms"`
	SourceURL     string        `env:"FSB_SOURCE_URL" envDefault:"https://github.com/TorstenCScholz/fs-bot"`

	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	DatabaseURL string `env:"DATABASE_URL"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE" envDefault:"fs-bot.log"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"10"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
}

// Load reads an optional .env file, then the environment. A missing .env is fine;
// missing or malformed required values are not.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	ids := []struct{ key, value string }{
		{"FSB_SERVER_ID", c.ServerID},
		{"FSB_VOICE_CHANNEL_ID", c.VoiceChannelID},
		{"FSB_STATUS_CHANNEL_ID", c.StatusChannelID},
		{"FSB_MASTER_PERMISSION_ID", c.MasterID},
		{"FSB_MY_ID", c.BotID},
	}

	var errs []error
	for _, id := range ids {
		if _, err := snowflake.Parse(id.value); err != nil {
			errs = append(errs, fmt.Errorf("%s is not a valid id (%q): %w", id.key, id.value, err))
		}
	}
	if c.CommandPrefix == "" {
		errs = append(errs, errors.New("FSB_COMMAND_PREFIX must not be empty"))
	}
	if c.HelloSounds < 1 {
		errs = append(errs, fmt.Errorf("FSB_HELLO_SOUNDS must be at least 1, got %d", c.HelloSounds))
	}
	if c.AnnounceDelay < 0 {
		errs = append(errs, fmt.Errorf("FSB_ANNOUNCE_DELAY must not be negative, got %s", c.AnnounceDelay))
	}
	return errors.Join(errs...)
}
