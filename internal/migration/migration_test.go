package migration

import (
	"context"
	"testing"

	campaigndomain "github.com/enfinitus/onboarding/internal/campaign/domain"
	"github.com/enfinitus/onboarding/internal/config"
	margindomain "github.com/enfinitus/onboarding/internal/margin/domain"
	"github.com/enfinitus/onboarding/internal/seed"
	voucherdomain "github.com/enfinitus/onboarding/internal/voucher/domain"
	"github.com/enfinitus/onboarding/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_MemoryStoreIsSeededOnce(t *testing.T) {
	conn, err := db.OpenMemory(t.Name())
	require.NoError(t, err)

	cfg := config.Config{StoreMode: config.StoreModeMemory, DBType: "postgres"}
	require.NoError(t, Migrate(conn, cfg))

	for _, model := range Models() {
		assert.True(t, conn.Migrator().HasTable(model))
	}

	ctx := context.Background()
	require.NoError(t, seed.EnsureReferenceData(ctx, conn))
	require.NoError(t, seed.EnsureReferenceData(ctx, conn))

	var campaigns, vouchers, margins int64
	require.NoError(t, conn.Model(&campaigndomain.Campaign{}).Count(&campaigns).Error)
	require.NoError(t, conn.Model(&voucherdomain.Voucher{}).Where("voucher_code = ?", seed.WelcomeVoucher).Count(&vouchers).Error)
	require.NoError(t, conn.Model(&margindomain.Margin{}).Where("funnel_id = ?", seed.DefaultFunnelID).Count(&margins).Error)
	assert.EqualValues(t, 3, campaigns)
	assert.EqualValues(t, 1, vouchers)
	assert.EqualValues(t, 3, margins)
}

func TestRunMigrations_RequiresHandle(t *testing.T) {
	assert.Error(t, RunMigrations(nil))
	assert.Error(t, AutoMigrate(nil))
}
