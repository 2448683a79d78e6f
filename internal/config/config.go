package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/stayware/leasing-service/internal/utils"
)

const (
	OrganizationName    = "Stayware"
	LDConnectionTimeout = 5 * time.Second

	defaultLeaseCronSpec   = "0 0 * * *" // daily at midnight
	defaultInvoiceCronSpec = "0 0 1 * *" // first of month at midnight
)

type Config struct {
	AppName string
	AppPort string
	Env     string

	DatabaseURL string

	PortalURL string

	SendgridAPIKey    string
	SendgridFromEmail string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromPhone   string

	JWTPublicKeyPEM string

	LeaseCronSpec   string
	InvoiceCronSpec string

	// Feature-flag snapshots
	LDFlag_SeedDBWithTestData bool
	LDFlag_CORSHighSecurity   bool
}

// LoadConfig reads .env (when present), then required env vars with
// fatal-on-missing semantics, then snapshots LaunchDarkly flags.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Debug("No .env file found, relying on process environment")
	}

	cfg := &Config{
		AppName: mustEnv("APP_NAME"),
		AppPort: mustEnv("APP_PORT"),
		Env:     mustEnv("ENV"),

		DatabaseURL: mustEnv("DATABASE_URL"),

		PortalURL: mustEnv("PORTAL_URL"),

		SendgridAPIKey:    mustEnv("SENDGRID_API_KEY"),
		SendgridFromEmail: mustEnv("SENDGRID_FROM_EMAIL"),
		TwilioAccountSID:  mustEnv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   mustEnv("TWILIO_AUTH_TOKEN"),
		TwilioFromPhone:   mustEnv("TWILIO_FROM_PHONE"),

		JWTPublicKeyPEM: mustEnv("JWT_PUBLIC_KEY_PEM"),

		LeaseCronSpec:   envOr("LEASE_CRON_TIME", defaultLeaseCronSpec),
		InvoiceCronSpec: envOr("INVOICE_CRON_TIME", defaultInvoiceCronSpec),
	}

	cfg.loadFeatureFlags()
	return cfg
}

func (c *Config) loadFeatureFlags() {
	sdkKey := os.Getenv("LD_SDK_KEY")
	if sdkKey == "" {
		utils.Logger.Warn("LD_SDK_KEY not set, feature flags default to off")
		return
	}

	ldClient, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	defer ldClient.Close()
	if !ldClient.Initialized() {
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}

	ctx := ldcontext.NewWithKind("service", c.AppName)

	c.LDFlag_SeedDBWithTestData, err = ldClient.BoolVariation("seed_db_with_test_data", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("seed_db_with_test_data flag error")
	}
	c.LDFlag_CORSHighSecurity, err = ldClient.BoolVariation("cors_high_security", ctx, true)
	if err != nil {
		utils.Logger.WithError(err).Fatal("cors_high_security flag error")
	}

	utils.Logger.Debugf("Feature flags: seed_db_with_test_data=%v cors_high_security=%v",
		c.LDFlag_SeedDBWithTestData, c.LDFlag_CORSHighSecurity)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		utils.Logger.Fatalf("%s env var is missing", key)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
