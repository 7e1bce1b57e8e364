package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Application
	AppName  string
	AppEnv   string
	AppURL   string
	Port     string
	Timezone *time.Location

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Goal policy
	MaxActiveGoals   int
	DeleteWindowDays int
	MinCommitment    decimal.Decimal
	MaxCommitment    decimal.Decimal
	MaxStartLeadDays int
	MaxDurationDays  int

	// Settlement rate limit per client
	SettlementRateLimit  int
	SettlementRateWindow time.Duration

	// Payment
	PaymentProvider    string // "polar", "stripe" or "dev"
	SettlementCurrency string
	DevDeclinePayments bool
	// Payment - Polar
	PolarAPIKey              string
	PolarWebhookSecret       string
	PolarSandboxMode         bool
	PolarSettlementProductID string
	// Payment - Stripe
	StripeSecretKey     string
	StripeWebhookSecret string

	// Observability (optional)
	SentryDSN      string
	MetricsEnabled bool
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:  envString("APP_NAME", "cmeetit"),
		AppEnv:   envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:   envString("APP_URL", "http://localhost:8090"),
		Port:     envString("PORT", "8090"),
		Timezone: envLocation("APP_TIMEZONE", time.UTC),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/cmeetit.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Goal policy
		MaxActiveGoals:   envInt("GOAL_MAX_ACTIVE", 5),
		DeleteWindowDays: envInt("GOAL_DELETE_WINDOW_DAYS", 3),
		MinCommitment:    envDecimal("GOAL_MIN_COMMITMENT", decimal.NewFromInt(3)),
		MaxCommitment:    envDecimal("GOAL_MAX_COMMITMENT", decimal.NewFromInt(500)),
		MaxStartLeadDays: envInt("GOAL_MAX_START_LEAD_DAYS", 14),
		MaxDurationDays:  envInt("GOAL_MAX_DURATION_DAYS", 365),

		SettlementRateLimit:  envInt("SETTLEMENT_RATE_LIMIT", 5),
		SettlementRateWindow: envDuration("SETTLEMENT_RATE_WINDOW", time.Minute),

		// Payment (provider selection and configuration)
		PaymentProvider:          envString("PAYMENT_PROVIDER", "stripe"),
		SettlementCurrency:       envString("SETTLEMENT_CURRENCY", "usd"),
		DevDeclinePayments:       envBool("DEV_DECLINE_PAYMENTS", false),
		PolarAPIKey:              envString("POLAR_API_KEY", ""),
		PolarWebhookSecret:       envString("POLAR_WEBHOOK_SECRET", ""),
		PolarSandboxMode:         envBool("POLAR_SANDBOX_MODE", envString("APP_ENV", "development") == "development"),
		PolarSettlementProductID: envString("POLAR_SETTLEMENT_PRODUCT_ID", ""),
		StripeSecretKey:          envString("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:      envString("STRIPE_WEBHOOK_SECRET", ""),

		// Observability
		SentryDSN:      envString("SENTRY_DSN", ""),
		MetricsEnabled: envBool("METRICS_ENABLED", true),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures a real payment provider is configured for production deployments.
// Development allows the dev provider for local testing.
func validateProduction(cfg *Config) {
	if cfg.PaymentProvider == "dev" {
		slog.Error("production deployment requires a real PAYMENT_PROVIDER",
			"hint", "set APP_ENV=development for local testing with the dev provider")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		slog.Warn("config invalid decimal, using default", "key", key, "value", v, "default", def.String())
		return def
	}
	return d
}

func envLocation(key string, def *time.Location) *time.Location {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	loc, err := time.LoadLocation(v)
	if err != nil {
		slog.Warn("config invalid timezone, using default", "key", key, "value", v, "default", def.String())
		return def
	}
	return loc
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets and credentials are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:  c.AppName,
		AppEnv:   c.AppEnv,
		AppURL:   c.AppURL,
		Port:     c.Port,
		Timezone: c.Timezone,

		DBDriver: c.DBDriver,

		JWTExpiry: c.JWTExpiry,

		MaxActiveGoals:   c.MaxActiveGoals,
		DeleteWindowDays: c.DeleteWindowDays,
		MinCommitment:    c.MinCommitment,
		MaxCommitment:    c.MaxCommitment,
		MaxStartLeadDays: c.MaxStartLeadDays,
		MaxDurationDays:  c.MaxDurationDays,

		SettlementRateLimit:  c.SettlementRateLimit,
		SettlementRateWindow: c.SettlementRateWindow,

		PaymentProvider:    c.PaymentProvider,
		SettlementCurrency: c.SettlementCurrency,
		PolarSandboxMode:   c.PolarSandboxMode,

		MetricsEnabled: c.MetricsEnabled,
	}
}
