package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig configures the fixed-window attempt cap applied to
// the login and registration endpoints. Limit attempts are allowed per
// Window per key; the key is derived per KeyStrategy.
type RateLimitConfig struct {
	Enabled     bool
	Limit       int
	Window      time.Duration
	KeyStrategy string
	Prefix      string
}

// LoadRateLimitConfig reads the rate-limit settings from environment
// variables, clamping nonsensical values back to usable ones.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:     envBool("RATE_LIMIT_ENABLED", true),
		Limit:       envInt("RATE_LIMIT_MAX_ATTEMPTS", 10),
		Window:      envDur("RATE_LIMIT_WINDOW", time.Minute),
		KeyStrategy: envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:      envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Limit < 1 {
		cfg.Limit = 1
	}
	if cfg.Window < time.Second {
		cfg.Window = time.Second
	}
	return cfg
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}
