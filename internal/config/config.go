package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	// StoreMode selects the record store: "database" or the in-process "memory" store.
	StoreMode string
	// DegradedFallback lets an import continue on the in-process store when the
	// primary store reports a connectivity failure.
	DegradedFallback bool

	TariffFeedURL     string
	TariffFeedTimeout time.Duration
	TariffCacheTTL    time.Duration
	TariffMappingPath string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string
	KafkaTopic   string

	ImportRateLimit RateLimitConfig

	Verification VerificationConfig

	SagaRecoveryThreshold time.Duration
}

// RateLimitConfig throttles contract imports per client. A zero rate disables it.
type RateLimitConfig struct {
	Rate  float64
	Burst int
}

type VerificationConfig struct {
	Workers        int
	ApproveRatio   float64
	SweepInterval  time.Duration
	StaleThreshold time.Duration
	JobTimeout     time.Duration
}

const (
	StoreModeDatabase = "database"
	StoreModeMemory   = "memory"
)

var (
	ErrMemoryStoreInProduction      = errors.New("memory store is not allowed in production")
	ErrDegradedFallbackInProduction = errors.New("degraded fallback is not allowed in production")
	ErrInvalidStoreMode             = errors.New("invalid store mode")
)

var Module = fx.Module("config",
	fx.Provide(Provide),
	fx.Provide(NewTariffMappingHolder),
)

// Provide loads and validates configuration for fx.
func Provide() (Config, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:      getenv("APP_SERVICE", "onboarding"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint: strings.TrimSpace(getenv("OTLP_ENDPOINT", "")),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "onboarding"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		StoreMode:        strings.ToLower(getenv("STORE_MODE", StoreModeDatabase)),
		DegradedFallback: getenvBool("DEGRADED_FALLBACK", false),

		TariffFeedURL:     strings.TrimSpace(getenv("TARIFF_FEED_URL", "")),
		TariffFeedTimeout: getenvDuration("TARIFF_FEED_TIMEOUT", 5*time.Second),
		TariffCacheTTL:    getenvDuration("TARIFF_CACHE_TTL", 15*time.Minute),
		TariffMappingPath: strings.TrimSpace(getenv("TARIFF_MAPPING_PATH", "")),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		KafkaBrokers: splitList(getenv("KAFKA_BROKERS", "")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "contract-events"),

		ImportRateLimit: RateLimitConfig{
			Rate:  getenvFloat("IMPORT_RATE_LIMIT", 0),
			Burst: getenvInt("IMPORT_RATE_BURST", 20),
		},

		Verification: VerificationConfig{
			Workers:        getenvInt("VERIFICATION_WORKERS", 4),
			ApproveRatio:   getenvFloat("VERIFICATION_APPROVE_RATIO", 0.9),
			SweepInterval:  getenvDuration("VERIFICATION_SWEEP_INTERVAL", 30*time.Second),
			StaleThreshold: getenvDuration("VERIFICATION_STALE_THRESHOLD", 5*time.Minute),
			JobTimeout:     getenvDuration("VERIFICATION_JOB_TIMEOUT", 30*time.Second),
		},

		SagaRecoveryThreshold: getenvDuration("SAGA_RECOVERY_THRESHOLD", 10*time.Minute),
	}
}

// Validate rejects combinations that must never reach production.
func (c Config) Validate() error {
	switch c.StoreMode {
	case StoreModeDatabase, StoreModeMemory:
	default:
		return ErrInvalidStoreMode
	}
	if !c.IsProduction() {
		return nil
	}
	if c.StoreMode == StoreModeMemory {
		return ErrMemoryStoreInProduction
	}
	if c.DegradedFallback {
		return ErrDegradedFallbackInProduction
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func (c Config) UseMemoryStore() bool {
	return c.StoreMode == StoreModeMemory
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
