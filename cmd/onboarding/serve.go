package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/activation"
	"github.com/enfinitus/onboarding/internal/audit"
	"github.com/enfinitus/onboarding/internal/campaign"
	"github.com/enfinitus/onboarding/internal/clock"
	"github.com/enfinitus/onboarding/internal/config"
	"github.com/enfinitus/onboarding/internal/contract"
	"github.com/enfinitus/onboarding/internal/customer"
	"github.com/enfinitus/onboarding/internal/events"
	"github.com/enfinitus/onboarding/internal/lock"
	"github.com/enfinitus/onboarding/internal/margin"
	"github.com/enfinitus/onboarding/internal/migration"
	"github.com/enfinitus/onboarding/internal/observability"
	"github.com/enfinitus/onboarding/internal/onboarding"
	"github.com/enfinitus/onboarding/internal/opsedit"
	"github.com/enfinitus/onboarding/internal/pricing"
	"github.com/enfinitus/onboarding/internal/ratelimit"
	"github.com/enfinitus/onboarding/internal/scheduler"
	"github.com/enfinitus/onboarding/internal/server"
	"github.com/enfinitus/onboarding/internal/tariff"
	"github.com/enfinitus/onboarding/internal/verification"
	"github.com/enfinitus/onboarding/internal/voucher"
	"github.com/enfinitus/onboarding/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, verification worker and maintenance scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(appOptions()...)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// appOptions assembles the full service graph.
func appOptions() []fx.Option {
	return []fx.Option{
		// core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		lock.Module,
		ratelimit.Module,
		events.Module,
		migration.Module,

		// domains
		tariff.Module,
		customer.Module,
		campaign.Module,
		voucher.Module,
		margin.Module,
		pricing.Module,
		audit.Module,
		contract.Module,
		verification.Module,
		onboarding.Module,
		opsedit.Module,
		activation.Module,

		// background and transport
		scheduler.Module,
		server.Module,
	}
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
