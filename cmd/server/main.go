// Command server runs the Ravic Joias storefront API and its maintenance
// tasks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/config"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Ravic Joias storefront and back-office API",
	Long: `Ravic Joias storefront and back-office API.

Without a subcommand the HTTP server is started (same as "server serve").

Configuration comes from .env files (current directory, its parent and the
repository root) and the environment; see README for the keys.`,
	SilenceUsage: true,
	RunE:         serveCommand,
}

func main() {
	rootCmd.AddCommand(newServeCommand(), newMigrateCommand(), newCreateAdminCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the root logger.
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat), nil
}
