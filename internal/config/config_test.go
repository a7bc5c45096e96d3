package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"database in production", Config{Environment: "production", StoreMode: StoreModeDatabase}, nil},
		{"memory in development", Config{Environment: "development", StoreMode: StoreModeMemory, DegradedFallback: true}, nil},
		{"memory in production", Config{Environment: "Production", StoreMode: StoreModeMemory}, ErrMemoryStoreInProduction},
		{"fallback in production", Config{Environment: "production", StoreMode: StoreModeDatabase, DegradedFallback: true}, ErrDegradedFallbackInProduction},
		{"unknown store mode", Config{StoreMode: "file"}, ErrInvalidStoreMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), tt.want)
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("STORE_MODE", "MEMORY")
	t.Setenv("DEGRADED_FALLBACK", "yes")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("VERIFICATION_APPROVE_RATIO", "0.5")
	t.Setenv("TARIFF_CACHE_TTL", "1m")

	cfg := Load()

	assert.True(t, cfg.UseMemoryStore())
	assert.True(t, cfg.DegradedFallback)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 0.5, cfg.Verification.ApproveRatio)
	assert.Equal(t, "1m0s", cfg.TariffCacheTTL.String())
}

func TestTariffMappingHolder_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{TariffMappingPath: filepath.Join(dir, "missing.yml")}

	holder, err := NewTariffMappingHolder(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	m := holder.Get()
	assert.Equal(t, "GREEN", m.Aliases["oeko"])
	assert.Equal(t, "fix-12", m.CampaignKeys["STANDARD"])
}

func TestTariffMappingHolder_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "onboarding.yml")
	content := `
tariffs:
  aliases:
    basic: standard
    nature: green
  campaignKeys:
    STANDARD: basic-24
    GREEN: nature-24
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	holder, err := NewTariffMappingHolder(Config{TariffMappingPath: path}, zaptest.NewLogger(t))
	require.NoError(t, err)

	m := holder.Get()
	assert.Equal(t, "STANDARD", m.Aliases["basic"])
	assert.Equal(t, "GREEN", m.Aliases["nature"])
	assert.Equal(t, "basic-24", m.CampaignKeys["STANDARD"])
}

func TestTariffMappingHolder_RejectsMissingCampaignKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "onboarding.yml")
	content := `
tariffs:
  aliases:
    heat: heatpump
  campaignKeys:
    STANDARD: fix-12
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := NewTariffMappingHolder(Config{TariffMappingPath: path}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
