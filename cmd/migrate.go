package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, _, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()
		log.Info("schema migrated", zap.String("driver", cfg.DBDriver))
		return nil
	},
}
