package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL     string
	HTTPAddr        string
	LogLevel        string
	Environment     string
	Location        *time.Location // Used to format observation times in replies
	ShutdownTimeout time.Duration
	CatalogPath     string // Empty means the embedded catalog

	ObservationTimeout  time.Duration
	ObservationCacheTTL time.Duration
	RedisAddr           string
	RedisPassword       string
	RedisDB             int

	CronSpecWeatherRefresh string
	RefreshTimeout         time.Duration
	OpenWeatherAPIKey      string
	OpenWeatherBaseURL     string

	TelegramToken       string // Empty disables the Telegram bot
	TelegramAlertChatID int64  // 0 disables alert broadcasts
	TelegramAdminID     int64  // Telegram user allowed to run /refresh and /zones

	GeminiAPIKey string // Empty disables image analysis
	GeminiModel  string

	TwilioAccountSID string
	TwilioAuthToken  string

	PersistReports  bool
	ChatDefaultZone string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.HTTPAddr = envOrDefault("HTTP_ADDR", ":8080")

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	tz := envOrDefault("TIMEZONE", "Africa/Nairobi")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	cfg.CatalogPath = os.Getenv("CATALOG_PATH")

	if cfg.ObservationTimeout, err = parseDuration("OBSERVATION_TIMEOUT", "2s"); err != nil {
		return nil, err
	}
	if cfg.ObservationCacheTTL, err = parseDuration("OBSERVATION_CACHE_TTL", "5m"); err != nil {
		return nil, err
	}
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		cfg.RedisDB, err = strconv.Atoi(v)
		if err != nil || cfg.RedisDB < 0 {
			return nil, fmt.Errorf("invalid REDIS_DB: %q", v)
		}
	}

	cfg.CronSpecWeatherRefresh = envOrDefault("CRON_SPEC_WEATHER_REFRESH", "0 * * * *") // Default: top of every hour
	if cfg.RefreshTimeout, err = parseDuration("REFRESH_TIMEOUT", "5m"); err != nil {
		return nil, err
	}
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = envOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather")

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if v := os.Getenv("TELEGRAM_ALERT_CHAT_ID"); v != "" {
		cfg.TelegramAlertChatID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALERT_CHAT_ID: %w", err)
		}
	}
	if v := os.Getenv("TELEGRAM_ADMIN_ID"); v != "" {
		cfg.TelegramAdminID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_ID: %w", err)
		}
	}
	if cfg.TelegramAlertChatID != 0 && cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_ALERT_CHAT_ID is set but TELEGRAM_TOKEN is not")
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = envOrDefault("GEMINI_MODEL", "gemini-2.0-flash")

	cfg.TwilioAccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.TwilioAuthToken = os.Getenv("TWILIO_AUTH_TOKEN")

	if v := os.Getenv("PERSIST_REPORTS"); v != "" {
		cfg.PersistReports, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PERSIST_REPORTS: %w", err)
		}
	}
	cfg.ChatDefaultZone = envOrDefault("CHAT_DEFAULT_ZONE", "mathare")

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
