package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordchain/internal/config"
)

var (
	verbose     bool
	storageFlag string
	dbPath      string
	version     = "dev"

	// cfg is filled in PersistentPreRunE for every subcommand.
	cfg config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wordchain",
	Short: "Word-chain game server and terminal client",
	Long: `Play a word chain against the computer.

Each word must start with the last letter of the previous one, must be in the
vocabulary and may not repeat. The computer answers immediately; the game ends
when it cannot answer or you run out of time.

Quick Start:
  wordchain serve                 # HTTP API on $PORT
  wordchain play --name Alice     # play in the terminal
  wordchain vocab import words.yaml --storage sqlite`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("storage") {
			c.StorageBackend = storageFlag
		}
		if cmd.Flags().Changed("db") {
			c.DatabasePath = dbPath
		}
		if verbose {
			c.LogLevel = zerolog.LevelDebugValue
		}
		if err := c.Validate(); err != nil {
			return err
		}
		zerolog.SetGlobalLevel(c.Level())
		cfg = c
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&storageFlag, "storage", "", "Storage backend: memory or sqlite (overrides STORAGE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DATABASE_PATH)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
