package config // config loads application configuration from environment variables

import (
	"log"
	"os"
	"time"

	"github.com/iliyamo/studio-project-hub/internal/utils"
)

// Config holds all runtime configuration. Secrets and database
// coordinates are required; TTLs, hash cost and token binding strings
// carry defaults.
type Config struct {
	Env  string
	Port string

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	AccessSecret   string
	RefreshSecret  string
	AccessTTLDays  int
	RefreshTTLDays int
	BcryptCost     int
	Issuer         string
	Audience       string
}

// Load reads configuration from environment variables. Missing required
// variables abort startup with a fatal log message.
func Load() Config {
	return Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8080"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		AccessSecret:   must("ACCESS_TOKEN_SECRET"),
		RefreshSecret:  must("REFRESH_TOKEN_SECRET"),
		AccessTTLDays:  envInt("ACCESS_TOKEN_TTL_DAYS", 7),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:     envInt("BCRYPT_COST", utils.DefaultBcryptCost),
		Issuer:         envStr("JWT_ISSUER", "studio-project-hub"),
		Audience:       envStr("JWT_AUDIENCE", "studio-project-app"),
	}
}

// TokenConfig derives the token settings used by the issuer/verifier.
func (c Config) TokenConfig() utils.TokenConfig {
	return utils.TokenConfig{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		Issuer:        c.Issuer,
		Audience:      c.Audience,
		AccessTTL:     time.Duration(c.AccessTTLDays) * 24 * time.Hour,
		RefreshTTL:    time.Duration(c.RefreshTTLDays) * 24 * time.Hour,
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
