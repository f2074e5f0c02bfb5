package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DB_USERNAME string
	DB_PASSWORD string
	DB_HOST     string
	DB_PORT     string
	DB_NAME     string
	DISABLE_TLS string

	PORT            string
	ALLOWED_HEADERS string
	PUBLIC_BASE_URL string

	// Local accounts. Required; the authenticator refuses to start without it.
	JWT_SECRET string

	// Hosted identity provider (Clerk or any OIDC issuer)
	CLERK_ISSUER       string
	CLERK_AUDIENCE     string
	OIDC_CLIENT_ID     string
	OIDC_CLIENT_SECRET string
	OIDC_CALLBACK_URL  string
	STATE_SECRET       string

	// File storage
	STORAGE_BACKEND         string
	SUPABASE_URL            string
	SUPABASE_SERVICE_KEY    string
	SUPABASE_PROFILE_BUCKET string
	SUPABASE_RESUME_BUCKET  string
	UPLOAD_DIR              string

	// Rate limiting
	REDIS_ADDR            string
	REDIS_PASSWORD        string
	RATE_LIMIT_PER_MINUTE int
	// Reverse proxies whose X-Forwarded-For is trusted, as IPs
	TRUSTED_PROXIES []string

	// Otel
	OTEL_EXPORTER_OTLP_ENDPOINT string
}

func ReadConfig() *Config {
	rateLimit := 30
	if raw := os.Getenv("RATE_LIMIT_PER_MINUTE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			rateLimit = n
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")

	return &Config{
		DB_USERNAME: os.Getenv("DB_USERNAME"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_HOST:     getEnvOrDefault("DB_HOST", "localhost"),
		DB_PORT:     getEnvOrDefault("DB_PORT", "5432"),
		DB_NAME:     getEnvOrDefault("DB_NAME", "FreshersJob"),
		DISABLE_TLS: os.Getenv("DISABLE_TLS"),

		PORT:            getEnvOrDefault("PORT", "5000"),
		ALLOWED_HEADERS: getEnvOrDefault("ALLOWED_HEADERS", "Content-Type, Authorization"),
		PUBLIC_BASE_URL: getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:5000"),

		JWT_SECRET: jwtSecret,

		CLERK_ISSUER:       os.Getenv("CLERK_ISSUER"),
		CLERK_AUDIENCE:     os.Getenv("CLERK_AUDIENCE"),
		OIDC_CLIENT_ID:     os.Getenv("OIDC_CLIENT_ID"),
		OIDC_CLIENT_SECRET: os.Getenv("OIDC_CLIENT_SECRET"),
		OIDC_CALLBACK_URL:  os.Getenv("OIDC_CALLBACK_URL"),
		STATE_SECRET:       getEnvOrDefault("STATE_SECRET", jwtSecret),

		STORAGE_BACKEND:         getEnvOrDefault("STORAGE_BACKEND", "disk"),
		SUPABASE_URL:            os.Getenv("SUPABASE_URL"),
		SUPABASE_SERVICE_KEY:    os.Getenv("SUPABASE_SERVICE_KEY"),
		SUPABASE_PROFILE_BUCKET: getEnvOrDefault("SUPABASE_PROFILE_BUCKET", "Profilephoto"),
		SUPABASE_RESUME_BUCKET:  getEnvOrDefault("SUPABASE_RESUME_BUCKET", "Resume"),
		UPLOAD_DIR:              getEnvOrDefault("UPLOAD_DIR", "./uploads"),

		REDIS_ADDR:            os.Getenv("REDIS_ADDR"),
		REDIS_PASSWORD:        os.Getenv("REDIS_PASSWORD"),
		RATE_LIMIT_PER_MINUTE: rateLimit,
		TRUSTED_PROXIES:       splitList(os.Getenv("TRUSTED_PROXIES")),

		OTEL_EXPORTER_OTLP_ENDPOINT: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

// ProviderAuthEnabled reports whether tokens from the hosted identity provider are accepted.
func (c *Config) ProviderAuthEnabled() bool {
	return c.CLERK_ISSUER != ""
}

func (c *Config) DSN() string {
	str := "postgresql://" + c.DB_USERNAME + ":" + c.DB_PASSWORD + "@" + c.DB_HOST + ":" + c.DB_PORT + "/" + c.DB_NAME
	if c.DISABLE_TLS == "true" {
		str = str + "?sslmode=disable"
	}
	return str
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
