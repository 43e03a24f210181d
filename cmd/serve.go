package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordchain/internal/httpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := openBackend(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = be.close() }()

		srv := httpserver.New(cfg, be.engine, be.board)
		log.Info().Str("addr", cfg.Addr()).Str("storage", cfg.StorageBackend).Msg("starting wordchain server")
		return srv.Start(cfg.Addr())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
