package main

import (
	"context"
	"fmt"

	"github.com/enfinitus/onboarding/internal/config"
	"github.com/enfinitus/onboarding/internal/migration"
	"github.com/enfinitus/onboarding/internal/observability"
	"github.com/enfinitus/onboarding/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and reference data, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		var log *zap.Logger
		app := fx.New(
			config.Module,
			observability.Module,
			db.Module,
			migration.Module,
			fx.Populate(&log),
			fx.NopLogger,
		)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := app.Start(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied")
		return app.Stop(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
