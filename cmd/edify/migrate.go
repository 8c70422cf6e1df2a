package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/config"
	"github.com/edify-labs/edify/internal/db"
	"github.com/edify-labs/edify/internal/logging"
)

func newMigrateCmd() *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			database, err := db.New(ctx, cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if status {
				version, err := db.Status(ctx, database, cfg.DB.Driver)
				if err != nil {
					return err
				}
				log.Info("schema version", zap.Int64("version", version))
				return nil
			}

			if err := db.Migrate(ctx, database, cfg.DB.Driver); err != nil {
				return err
			}
			log.Info("migrations complete", zap.String("driver", cfg.DB.Driver))
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "print the applied schema version instead of migrating")
	return cmd
}
