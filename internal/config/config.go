package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the companion API server settings.
type Config struct {
	// Server
	Port string
	Env  string

	// CORS
	AllowedOrigin string

	// Optional backing services
	DatabaseURL   string
	DBMaxConns    int
	DBMinConns    int
	RedisURL      string
	MigrationsDir string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int

	// Generation defaults
	DefaultTemperature float32
	DefaultMaxLength   int
	MaxNewTokens       int

	// Rate limiting on /ask, requests per minute per client IP
	AskRateLimit int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "10000"),
		Env:                  getEnvOrDefault("ENV", "development"),
		AllowedOrigin:        getEnvOrDefault("ALLOWED_ORIGIN", "*"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DBMaxConns:           getEnvAsIntOrDefault("DB_MAX_CONNS", 4),
		DBMinConns:           getEnvAsIntOrDefault("DB_MIN_CONNS", 0),
		RedisURL:             os.Getenv("REDIS_URL"),
		MigrationsDir:        getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		DefaultTemperature:   getEnvAsFloatOrDefault("DEFAULT_TEMPERATURE", 0.7),
		DefaultMaxLength:     getEnvAsIntOrDefault("DEFAULT_MAX_LENGTH", 512),
		MaxNewTokens:         getEnvAsIntOrDefault("MAX_NEW_TOKENS", 256),
		AskRateLimit:         getEnvAsIntOrDefault("ASK_RATE_LIMIT", 30),
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float32) float32 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 32)
	if err != nil {
		return defaultVal
	}
	return float32(f)
}
