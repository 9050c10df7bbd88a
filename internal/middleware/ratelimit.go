package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/studio-project-hub/internal/config"
)

// NewFixedWindow returns middleware that caps requests per key per
// fixed time window using a redis counter. Intended for the login and
// registration endpoints, where unbounded attempts enable credential
// stuffing. The limiter degrades open: a redis outage disables the cap
// instead of taking authentication down with it.
func NewFixedWindow(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	windowSecs := int64(cfg.Window / time.Second)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now().Unix()
			window := now / windowSecs
			key := buildRateKey(cfg, c) + ":" + strconv.FormatInt(window, 10)

			ctx := c.Request().Context()
			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				c.Logger().Warnf("ratelimit: redis error for key=%s: %v", key, err)
				return next(c)
			}
			if n == 1 {
				// Two windows keeps the key around long enough for the
				// Retry-After computation below to stay truthful.
				rdb.Expire(ctx, key, 2*cfg.Window)
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				retry := (window+1)*windowSecs - now
				if retry < 1 {
					retry = 1
				}
				c.Response().Header().Set("Retry-After", strconv.FormatInt(retry, 10))
				return c.JSON(429, echo.Map{
					"error":       "RATE_LIMITED",
					"message":     "too many attempts, slow down",
					"retry_after": retry,
				})
			}
			return next(c)
		}
	}
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", currentUserID(c))
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", currentUserID(c))
	default: // ip_route
		parts = append(parts, "ip", ip, "route", route)
	}
	return strings.Join(parts, ":")
}
