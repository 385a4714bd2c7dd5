package config

import "fmt"

// Validate reports the first setting the server cannot start without.
func (c Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("missing required env %s", "SESSION_SECRET")
	}
	if c.DatabaseDriver != "sqlite" && c.DatabaseURL == "" {
		return fmt.Errorf("missing required env %s", "DATABASE_URL")
	}
	if c.SessionBackend == "redis" && c.RedisAddr == "" {
		return fmt.Errorf("missing required env %s", "REDIS_ADDR")
	}
	switch c.SessionBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	return nil
}
