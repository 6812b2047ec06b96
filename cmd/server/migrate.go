package main

import (
	"errors"

	"github.com/dkeye/Meet/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		setupLogger(cfg.Mode, cfg.LogLevel)
		if cfg.Store.Driver == "memory" {
			return errors.New("migrate needs store.driver sqlite or mysql")
		}
		_, closeFn, err := openStore(cmd.Context(), cfg.Store, true)
		if err != nil {
			return err
		}
		closeFn()
		log.Info().Str("driver", cfg.Store.Driver).Msg("migration complete")
		return nil
	},
}
