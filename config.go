package auth

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting the package recognizes.
// The pre-auth and session codecs use separate signing secrets so a leaked
// pre-auth token can never be replayed as a session credential.
type Config struct {
	SessionSecret string        `env:"AUTH_SESSION_SECRET,required"`
	PreAuthSecret string        `env:"AUTH_PREAUTH_SECRET,required"`
	SessionTTL    time.Duration `env:"AUTH_SESSION_TTL" envDefault:"1h"`
	PreAuthTTL    time.Duration `env:"AUTH_PREAUTH_TTL" envDefault:"5m"`

	// DebugSecret enables the debug bypass when set. Leave empty in any
	// shared environment.
	DebugSecret string `env:"AUTH_DEBUG_SECRET"`

	CookieName string `env:"AUTH_COOKIE_NAME" envDefault:"wsession"`
	Issuer     string `env:"AUTH_ISSUER" envDefault:"go-tenant-auth"`

	// TenantSetting is the Postgres setting name row-filtering policies
	// read via current_setting().
	TenantSetting string `env:"AUTH_TENANT_SETTING" envDefault:"app.workspace_id"`

	DatabaseURL string `env:"DATABASE_URL"`
}

// LoadConfig reads configuration from the environment. A .env file is
// optional and mainly for local development.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse auth configuration")
	}

	return cfg, nil
}

// DebugBypassEnabled reports whether the environment carries a bypass secret.
func (c *Config) DebugBypassEnabled() bool {
	return c.DebugSecret != ""
}
