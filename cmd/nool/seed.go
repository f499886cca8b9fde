package main

import (
	"fmt"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/repository"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo vendors, materials and users",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := initDatabase(cfg.Database, logger.Warn)
		if err != nil {
			return err
		}
		if err := entity.AutoMigrate(db); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}

		seeder := service.NewSeedService(repository.NewRepositories(db), zapLogger)
		report, err := seeder.All(cmd.Context())
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		zapLogger.Info("Seed finished",
			zap.Int("vendors", report.Vendors),
			zap.Int("materials", report.Materials),
			zap.Int("users", report.Users),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d vendors, %d materials, %d users\n",
			report.Vendors, report.Materials, report.Users)
		return nil
	},
}
