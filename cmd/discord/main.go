// cmd/discord/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/keshon/tts-bot/internal/config"
	"github.com/keshon/tts-bot/internal/discord"
	"github.com/keshon/tts-bot/internal/storage"
)

const appName = "tts-bot"

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Println("[ERR]", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Discord text-to-speech bot",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(newRunCmd(), newBroadcastCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve commands until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}
}

func newBroadcastCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "broadcast",
		Short: "Post the bot's statistics to the configured bot lists once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			if err := discord.BroadcastStats(ctx, cfg); err != nil {
				return err
			}
			log.Println("[DONE] Stats broadcast finished")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "give up after this long")
	return cmd
}

func runBot(parent context.Context) error {
	log.Printf("[INFO] Starting %v bot...", appName)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		return err
	}

	store, err := storage.New(ctx, cfg.RedisOptions())
	if err != nil {
		return err
	}
	defer store.Close()

	bot := discord.NewBot(cfg, store)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
			return err
		}
	}

	log.Println("[INFO] Discord bot exited cleanly")
	return nil
}
