package main

import (
	"github.com/spf13/cobra"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/db"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/logging"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			gdb, err := db.Open(cfg.DatabaseDSN, logging.Component(logger, "db"))
			if err != nil {
				return err
			}
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			if err := db.Migrate(gdb.WithContext(cmd.Context()), cfg.OrderTables...); err != nil {
				return err
			}
			logger.Info().Strs("order_tables", cfg.OrderTables).Msg("migrations applied")
			return nil
		},
	}
}
