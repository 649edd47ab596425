// cmd/discord/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fs-bot/internal/bot"
	"fs-bot/internal/config"
	"fs-bot/internal/discord"
	"fs-bot/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		return 1
	}

	logger, logCloser := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	defer logCloser.Close()

	logger.Info().Msg("Starting fs-bot")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := discord.New(cfg.DiscordToken, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create Discord client")
		return 1
	}

	b, err := bot.New(ctx, cfg, client, client, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to set up bot")
		return 1
	}
	defer b.Close()

	err = b.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Bot stopped")
	} else {
		logger.Info().Msg("Bot exited cleanly")
	}
	return bot.ExitCode(err)
}
