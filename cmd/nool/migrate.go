package main

import (
	"fmt"

	"github.com/Sudarsan9786/nool-erp/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply or roll back the SQL schema",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}

		db, err := migrations.Open(cfg.Database.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		switch direction {
		case "down":
			err = migrations.Down(db)
		case "status":
			err = migrations.Status(db)
		default:
			err = migrations.Up(db)
		}
		if err != nil {
			return fmt.Errorf("migrate %s: %w", direction, err)
		}
		zapLogger.Info("Migrations finished", zap.String("direction", direction))
		return nil
	},
}
