package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the dashboard
// gateway.
type Config struct {
	HTTPPort        int
	RemoteBaseURL   string
	RemoteTimeout   time.Duration
	SessionDSN      string
	SessionTTL      time.Duration
	AdminKeyHash    string
	ContactCacheTTL time.Duration
	LogLevel        string
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values and reporting localized error messages for missing entries.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		RemoteTimeout:   15 * time.Second,
		SessionDSN:      "file:dashboard.db?_foreign_keys=on",
		SessionTTL:      8 * time.Hour,
		ContactCacheTTL: 60 * time.Second,
		LogLevel:        "info",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("DASHBOARD_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "DASHBOARD_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if baseURL := strings.TrimSpace(os.Getenv("DASHBOARD_REMOTE_BASE_URL")); baseURL == "" {
		missing = append(missing, "DASHBOARD_REMOTE_BASE_URL")
	} else {
		cfg.RemoteBaseURL = strings.TrimRight(baseURL, "/")
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("DASHBOARD_REMOTE_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "DASHBOARD_REMOTE_TIMEOUT")
		} else {
			cfg.RemoteTimeout = timeout
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("DASHBOARD_SESSION_DSN")); dsn != "" {
		cfg.SessionDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("DASHBOARD_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "DASHBOARD_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	cfg.AdminKeyHash = strings.TrimSpace(os.Getenv("DASHBOARD_ADMIN_KEY_HASH"))

	if cacheValue := strings.TrimSpace(os.Getenv("DASHBOARD_CONTACT_CACHE_TTL")); cacheValue != "" {
		ttl, err := time.ParseDuration(cacheValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "DASHBOARD_CONTACT_CACHE_TTL")
		} else {
			cfg.ContactCacheTTL = ttl
		}
	}

	if level := strings.TrimSpace(os.Getenv("DASHBOARD_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("variables d'environnement requises manquantes : %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("valeurs de variables d'environnement invalides : %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
