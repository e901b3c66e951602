// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultHTTPAddr         = ":8080"
	DefaultCORSOrigin       = "http://localhost:3000"
	DefaultCacheStaleTime   = 5 * time.Minute
	DefaultAlertWarningDays = 3
	DefaultAlertUrgentDays  = 5
	DefaultTimezone         = "America/Bogota"
	DefaultDigestHour       = 9
	DefaultOTelExporter     = "none"
)

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL string

	HTTPAddr           string
	APIToken           string
	CORSAllowedOrigins []string

	TelegramBotToken     string
	WhitelistedUserIDs   []int64
	WhitelistedUsernames []string

	GeminiAPIKey string

	RedisURL       string
	CacheStaleTime time.Duration

	AlertWarningDays   int
	AlertUrgentDays    int
	Timezone           string
	UseStoreAggregates bool

	DailyDigestEnabled bool
	DigestHour         int

	LogLevel  string
	LogFormat string

	OTelExporter string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		HTTPAddr:           envOr("HTTP_ADDR", DefaultHTTPAddr),
		APIToken:           os.Getenv("API_TOKEN"),
		CORSAllowedOrigins: splitList(envOr("CORS_ALLOWED_ORIGINS", DefaultCORSOrigin)),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		RedisURL:           os.Getenv("REDIS_URL"),
		CacheStaleTime:     DefaultCacheStaleTime,
		AlertWarningDays:   DefaultAlertWarningDays,
		AlertUrgentDays:    DefaultAlertUrgentDays,
		Timezone:           envOr("CRM_TIMEZONE", DefaultTimezone),
		UseStoreAggregates: parseBool(os.Getenv("USE_STORE_AGGREGATES")),
		DailyDigestEnabled: parseBool(os.Getenv("DAILY_DIGEST_ENABLED")),
		DigestHour:         DefaultDigestHour,
		LogLevel:           envOr("LOG_LEVEL", "info"),
		LogFormat:          envOr("LOG_FORMAT", "console"),
		OTelExporter:       strings.ToLower(envOr("OTEL_EXPORTER", DefaultOTelExporter)),
	}

	var errs []string

	if v := os.Getenv("CACHE_STALE_TIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Sprintf("CACHE_STALE_TIME must be a positive duration, got %q", v))
		} else {
			cfg.CacheStaleTime = d
		}
	}

	cfg.AlertWarningDays = parseIntEnv("ALERT_WARNING_DAYS", DefaultAlertWarningDays, 1, 365, &errs)
	cfg.AlertUrgentDays = parseIntEnv("ALERT_URGENT_DAYS", DefaultAlertUrgentDays, 1, 365, &errs)
	cfg.DigestHour = parseIntEnv("DIGEST_HOUR", DefaultDigestHour, 0, 23, &errs)

	for idStr := range strings.SplitSeq(os.Getenv("WHITELISTED_USER_IDS"), ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		cfg.WhitelistedUserIDs = append(cfg.WhitelistedUserIDs, id)
	}

	for username := range strings.SplitSeq(os.Getenv("WHITELISTED_USERNAMES"), ",") {
		username = strings.TrimPrefix(strings.TrimSpace(username), "@")
		if username == "" {
			continue
		}
		cfg.WhitelistedUsernames = append(cfg.WhitelistedUsernames, username)
	}

	// Validate required configuration.
	errs = append(errs, cfg.problems()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return cfg, nil
}

// DatabaseURLFromEnv returns DATABASE_URL for commands that need nothing else.
func DatabaseURLFromEnv() (string, error) {
	_ = godotenv.Load()

	url := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if url == "" {
		return "", fmt.Errorf("DATABASE_URL is required")
	}
	return url, nil
}

// problems lists every missing or inconsistent setting.
func (c *Config) problems() []string {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if c.APIToken == "" {
		errs = append(errs, "API_TOKEN is required")
	}

	if c.TelegramBotToken != "" && len(c.WhitelistedUserIDs) == 0 && len(c.WhitelistedUsernames) == 0 {
		errs = append(errs, "at least one whitelisted user (WHITELISTED_USER_IDS or WHITELISTED_USERNAMES) is required when TELEGRAM_BOT_TOKEN is set")
	}

	if c.AlertWarningDays > c.AlertUrgentDays {
		errs = append(errs, fmt.Sprintf("ALERT_WARNING_DAYS (%d) must not exceed ALERT_URGENT_DAYS (%d)", c.AlertWarningDays, c.AlertUrgentDays))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("CRM_TIMEZONE %q is not a valid IANA zone", c.Timezone))
	}

	switch c.OTelExporter {
	case "none", "stdout", "otlp-grpc", "otlp-http":
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER must be one of none, stdout, otlp-grpc, otlp-http, got %q", c.OTelExporter))
	}

	return errs
}

// Location returns the configured CRM time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BotEnabled reports whether the Telegram bot should run.
func (c *Config) BotEnabled() bool {
	return c.TelegramBotToken != ""
}

// IsUserWhitelisted checks if a Telegram user ID or username is in the whitelist.
// Returns true if either the user ID or username is whitelisted.
func (c *Config) IsUserWhitelisted(userID int64, username string) bool {
	if slices.Contains(c.WhitelistedUserIDs, userID) {
		return true
	}

	// Check username whitelist (case-insensitive)
	if username != "" {
		username = strings.TrimPrefix(username, "@")
		for _, whitelisted := range c.WhitelistedUsernames {
			if strings.EqualFold(whitelisted, username) {
				return true
			}
		}
	}

	return false
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func parseIntEnv(key string, fallback, lo, hi int, errs *[]string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		*errs = append(*errs, fmt.Sprintf("%s must be an integer between %d and %d, got %q", key, lo, hi, v))
		return fallback
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
