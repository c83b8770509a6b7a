package cmd

import (
	"restaurant/configs"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the admin account and default menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		if err := configs.SeedAdmin(db, cfg, log); err != nil {
			return err
		}
		return configs.SeedMenu(db, log)
	},
}
