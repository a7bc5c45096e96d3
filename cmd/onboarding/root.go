package main

import (
	"fmt"

	"github.com/enfinitus/onboarding/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:          "onboarding",
	Short:        "Energy contract onboarding service",
	Long:         "Imports funnel orders as contract drafts, verifies them in the background and activates approved supply contracts.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// fail fast on a production config that enables the memory store
		if _, err := config.Provide(); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}
