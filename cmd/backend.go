package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordchain/internal/config"
	"github.com/robalobadob/wordchain/internal/game"
	"github.com/robalobadob/wordchain/internal/httpserver"
	"github.com/robalobadob/wordchain/internal/ranking"
	"github.com/robalobadob/wordchain/internal/store"
	"github.com/robalobadob/wordchain/internal/words"
)

// backend is the engine plus everything it was built from.
type backend struct {
	engine *game.Engine
	board  httpserver.Leaderboard
	close  func() error
}

// openBackend wires stores and vocabulary for the configured storage backend.
// A new SQLite database is seeded from WORDS_FILE or the embedded word list.
func openBackend(ctx context.Context, c config.Config, opts ...game.Option) (*backend, error) {
	switch c.StorageBackend {
	case config.BackendSQLite:
		db, err := store.OpenSQLite(c.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", c.DatabasePath, err)
		}
		if err := seedVocabulary(ctx, db, c.WordsFile); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Str("path", c.DatabasePath).Msg("using sqlite storage")
		return &backend{
			engine: game.NewEngine(db, db, db, opts...),
			board:  ranking.NewStore(db.DB()),
			close:  db.Close,
		}, nil

	default:
		vocab, err := words.Init(c.WordsFile)
		if err != nil {
			return nil, fmt.Errorf("load word list: %w", err)
		}
		mem := store.NewMemory()
		log.Info().Int("words", vocab.Len()).Msg("using in-memory storage")
		return &backend{
			engine: game.NewEngine(vocab, mem, mem, opts...),
			board:  mem,
			close:  func() error { return nil },
		}, nil
	}
}

// seedVocabulary fills an empty words table.
func seedVocabulary(ctx context.Context, db *store.SQLite, path string) error {
	n, err := db.WordCount(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	vocab, err := words.Init(path)
	if err != nil {
		return fmt.Errorf("load word list: %w", err)
	}
	written, err := db.UpsertWords(ctx, vocab.Entries())
	if err != nil {
		return fmt.Errorf("seed vocabulary: %w", err)
	}
	log.Info().Int("words", written).Msg("seeded vocabulary")
	return nil
}
