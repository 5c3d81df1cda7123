package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Supabase (PostgREST data plane + GoTrue identity)
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// Auth
	JWTSecret              string
	LocalAdminEnabled      bool
	LocalAdminUser         string
	LocalAdminPasswordHash string // bcrypt
	LocalTokenTTL          time.Duration

	// Billing (PIX merchant identity for generated charges)
	PixKey          string
	PixMerchantName string
	PixMerchantCity string

	// Analytics ingestion
	AnalyticsBatchSize     int
	AnalyticsFlushInterval time.Duration

	// Geolocation
	GeoAPIURL string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		JWTSecret:              getEnv("JWT_SECRET", "edgeadmin-default-dev-secret-change-me"),
		LocalAdminEnabled:      getEnv("LOCAL_ADMIN_ENABLED", "false") == "true",
		LocalAdminUser:         getEnv("LOCAL_ADMIN_USER", "admin"),
		LocalAdminPasswordHash: getEnv("LOCAL_ADMIN_PASSWORD_HASH", ""),
		LocalTokenTTL:          getEnvDuration("LOCAL_TOKEN_TTL", 1*time.Hour),

		PixKey:          getEnv("PIX_KEY", ""),
		PixMerchantName: getEnv("PIX_MERCHANT_NAME", "EdgeAdmin"),
		PixMerchantCity: getEnv("PIX_MERCHANT_CITY", "Sao Paulo"),

		AnalyticsBatchSize:     getEnvInt("ANALYTICS_BATCH_SIZE", 200),
		AnalyticsFlushInterval: getEnvDuration("ANALYTICS_FLUSH_INTERVAL", 5*time.Second),

		GeoAPIURL: getEnv("GEO_API_URL", "http://ip-api.com"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
