package cmd

import (
	"fmt"
	"os"

	"restaurant/configs"
	"restaurant/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:          "restaurant",
	Short:        "Restaurant ordering API",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// Execute runs the CLI; with no subcommand it serves.
func Execute() {
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"serve"})
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads config, builds the logger and opens the migrated database.
func bootstrap() (*configs.Config, *zap.Logger, *gorm.DB, error) {
	cfg := configs.LoadConfig()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := configs.ConnectionDB(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := configs.SetupDatabase(db); err != nil {
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return cfg, log, db, nil
}
