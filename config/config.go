package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort int

	DBDriver    string
	DatabaseURL string

	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool

	AdminAPIKey    string
	GoogleClientID string
	CORSOrigins    []string

	SMTP SMTPConfig
	SMS  SMSConfig

	SeedFile string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type SMSConfig struct {
	Username string
	APIKey   string
	Endpoint string
}

// Load reads the environment, after merging a .env file when one exists.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.Any("err", err))
	}

	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),

		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=handmade port=5432 sslmode=disable"),

		JWTSecret:    getEnv("JWT_SECRET", "change-me"),
		SessionTTL:   getEnvDuration("SESSION_TTL", 72*time.Hour),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),

		AdminAPIKey:    os.Getenv("ADMIN_API_KEY"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		SMS: SMSConfig{
			Username: os.Getenv("SMS_USERNAME"),
			APIKey:   os.Getenv("SMS_API_KEY"),
			Endpoint: getEnv("SMS_ENDPOINT", "https://api.sandbox.africastalking.com/version1/messaging"),
		},

		SeedFile: os.Getenv("SEED_FILE"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
