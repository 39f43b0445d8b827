// Command chopsticks plays the hand game in a terminal or serves it over
// websockets.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tkahng/chopsticks/config"
	"github.com/tkahng/chopsticks/store"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, store.Config{
		Backend:    a.cfg.Store,
		SavePath:   a.cfg.SavePath,
		RedisURL:   a.cfg.RedisURL,
		SQLitePath: a.cfg.SQLitePath,
		Logger:     a.logger,
	})
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	a := &app{}
	cfg, loadErr := config.Load()
	a.cfg = cfg

	rootCmd := &cobra.Command{
		Use:   "chopsticks",
		Short: "Play chopsticks, the two player finger counting game",
		Long: `chopsticks is a hot-seat game of sticks for two players.

Play it in the terminal, or serve it over websockets for a remote shell.
Matches can be saved to a JSON file, SQLite, Redis or kept in memory.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if loadErr != nil {
				return loadErr
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			a.logger = a.cfg.NewLogger(cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.cfg.Store, "store", a.cfg.Store, "Save backend: file, memory, redis, sqlite (env: CHOPSTICKS_STORE)")
	rootCmd.PersistentFlags().StringVar(&a.cfg.SavePath, "save-path", a.cfg.SavePath, "JSON save file for the file store (env: CHOPSTICKS_SAVE_PATH)")
	rootCmd.PersistentFlags().StringVar(&a.cfg.RedisURL, "redis-url", a.cfg.RedisURL, "Redis URL for the redis store (env: CHOPSTICKS_REDIS_URL)")
	rootCmd.PersistentFlags().StringVar(&a.cfg.SQLitePath, "sqlite-path", a.cfg.SQLitePath, "Database path for the sqlite store (env: CHOPSTICKS_SQLITE_PATH)")
	rootCmd.PersistentFlags().StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "Log level: debug, info, warn, error (env: CHOPSTICKS_LOG_LEVEL)")

	// Add subcommands
	rootCmd.AddCommand(newPlayCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newSavesCmd(a))

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
