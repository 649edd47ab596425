// Command cli runs the bot against the terminal instead of Discord. Chat lines
// are read from stdin; see package console for the simulated events.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fs-bot/internal/bot"
	"fs-bot/internal/config"
	"fs-bot/internal/console"
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

	// Keep stdout for the conversation.
	logger, logCloser := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Console:    os.Stderr,
	})
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn := console.New(os.Stdin, os.Stdout, console.Options{
		ServerID:       cfg.ServerID,
		VoiceChannelID: cfg.VoiceChannelID,
		UserID:         cfg.MasterID,
	})

	b, err := bot.New(ctx, cfg, conn, conn, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to set up bot")
		return 1
	}
	defer b.Close()

	// End of input ends the session.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-conn.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	err = b.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Session ended")
	}
	return bot.ExitCode(err)
}
