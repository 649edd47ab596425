// Package bot assembles a session from configuration: storage, sounds,
// commands, announcer and roster around a given platform connection.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fs-bot/internal/announce"
	"fs-bot/internal/audio"
	"fs-bot/internal/command"
	"fs-bot/internal/command/seen"
	"fs-bot/internal/command/sound"
	"fs-bot/internal/command/voice"
	"fs-bot/internal/config"
	"fs-bot/internal/platform"
	"fs-bot/internal/roster"
	"fs-bot/internal/session"
	"fs-bot/internal/storage"
	"fs-bot/internal/storage/postgres"
	"fs-bot/pkg/retrylimit"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const commandTimeout = 30 * time.Second

// Bot is a ready-to-run session plus the resources it must release.
type Bot struct {
	Session  *session.Session
	Commands *command.Registry

	store  storage.UserStore
	logger zerolog.Logger
}

// New wires everything around conn. Sounds are played through sink.
func New(ctx context.Context, cfg *config.Config, conn platform.Platform, sink audio.Sink, logger zerolog.Logger) (*Bot, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	users := roster.New(store, conn, clock, logger)
	sounds := audio.NewSoundboard(audio.NewLibrary(cfg.SoundDir), sink, logger)

	announcer := announce.New(conn, sounds, users, announce.Options{
		StatusChannelID: cfg.StatusChannelID,
		Delay:           cfg.AnnounceDelay,
		HelloSounds:     cfg.HelloSounds,
		Clock:           clock,
	}, logger)

	registry := command.NewRegistry(command.MasterAuthorizer(cfg.MasterID), logger)
	if err := RegisterCommands(registry, sounds, users); err != nil {
		store.Close()
		return nil, err
	}

	sess := session.New(session.Config{
		ServerID:       cfg.ServerID,
		VoiceChannelID: cfg.VoiceChannelID,
		BotID:          cfg.BotID,
		MasterID:       cfg.MasterID,
		Prefix:         cfg.CommandPrefix,
		SourceURL:      cfg.SourceURL,
		Retry:          retrylimit.DefaultRetryConfig(),
		Limiter:        retrylimit.NewAdaptiveLimiter(1, 0.2, 2, 0.2, 0.5),
	}, conn, registry, announcer, users, logger)

	return &Bot{
		Session:  sess,
		Commands: registry,
		store:    store,
		logger:   logger,
	}, nil
}

// RegisterCommands adds the chat commands, each guarded by a timeout and
// panic recovery.
func RegisterCommands(registry *command.Registry, sounds sound.Soundboard, users seen.Lookup) error {
	mws := []command.Middleware{command.WithTimeout(commandTimeout), command.WithRecover()}
	err := registry.Register(
		command.Apply(&sound.PlayCommand{Sounds: sounds}, mws...),
		command.Apply(&voice.VoiceCommand{}, mws...),
		command.Apply(&seen.SeenCommand{Users: users}, mws...),
	)
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	return nil
}

// OpenStore returns the Postgres store when DATABASE_URL is set and the JSON
// file store otherwise. The schema is created if missing.
func OpenStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.UserStore, error) {
	var (
		store storage.UserStore
		err   error
	)
	if cfg.DatabaseURL != "" {
		logger.Info().Msg("Using PostgreSQL user store")
		store, err = postgres.Open(ctx, cfg.DatabaseURL)
	} else {
		logger.Info().Str("path", cfg.StoragePath).Msg("Using file user store")
		store, err = storage.New(cfg.StoragePath, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}

	if err := store.CreateSchemaIfAbsent(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return store, nil
}

// Run runs the session until it ends.
func (b *Bot) Run(ctx context.Context) error {
	return b.Session.Run(ctx)
}

// Close releases the user store.
func (b *Bot) Close() error {
	return b.store.Close()
}

// ExitCode maps the result of Run to the process exit status.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	return 1
}

var _ io.Closer = (*Bot)(nil)
