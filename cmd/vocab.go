package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordchain/internal/config"
	"github.com/robalobadob/wordchain/internal/game"
	"github.com/robalobadob/wordchain/internal/store"
	"github.com/robalobadob/wordchain/internal/words"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Manage the word list",
}

var vocabImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a YAML word list into the SQLite vocabulary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.StorageBackend != config.BackendSQLite {
			return fmt.Errorf("vocab import needs --storage sqlite (got %q)", cfg.StorageBackend)
		}
		entries, err := words.LoadFile(args[0])
		if err != nil {
			return err
		}
		db, err := store.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.UpsertWords(cmd.Context(), entries)
		if err != nil {
			return err
		}
		log.Info().Int("words", n).Str("file", args[0]).Msg("imported vocabulary")
		fmt.Fprintf(cmd.OutOrStdout(), "imported %s words from %s\n", countStyle.Render(fmt.Sprint(n)), args[0])
		return nil
	},
}

var vocabStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count vocabulary words per category",
	RunE: func(cmd *cobra.Command, args []string) error {
		var stats map[game.Category]int
		if cfg.StorageBackend == config.BackendSQLite {
			db, err := store.OpenSQLite(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()
			if stats, err = db.WordStats(cmd.Context()); err != nil {
				return err
			}
		} else {
			vocab, err := words.Init(cfg.WordsFile)
			if err != nil {
				return err
			}
			stats = vocab.Stats()
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render("Vocabulary"))
		total := 0
		for _, c := range game.Categories {
			fmt.Fprintf(out, "  %-8s %s\n", c, countStyle.Render(fmt.Sprint(stats[c])))
			total += stats[c]
		}
		fmt.Fprintf(out, "  %-8s %s\n", "total", countStyle.Render(fmt.Sprint(total)))
		return nil
	},
}

func init() {
	vocabCmd.AddCommand(vocabImportCmd, vocabStatsCmd)
	rootCmd.AddCommand(vocabCmd)
}
