package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AI service selector values.
const (
	ServiceClaude = "claude"
	ServiceOpenAI = "openai"
	ServiceLocal  = "local"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	AIServiceType     string
	AIAPIKey          string
	AIModelName       string
	AIBaseURL         string
	AITimeout         time.Duration
	AIRateLimitPerSec int

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	CacheTTL       time.Duration
	MaxUploadSize  int64

	CSVOutputPath string
	LogMode       string
	MetricsAddr   string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "reviews"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "reviews123"),
		PostgresDB:       getEnv("POSTGRES_DB", "review_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		AIServiceType:     strings.ToLower(getEnv("AI_SERVICE_TYPE", ServiceClaude)),
		AIAPIKey:          strings.TrimSpace(os.Getenv("AI_API_KEY")),
		AIModelName:       getEnv("AI_MODEL_NAME", ""),
		AIBaseURL:         getEnv("AI_BASE_URL", ""),
		AITimeout:         getEnvDuration("AI_TIMEOUT_SECONDS", 15*time.Second),
		AIRateLimitPerSec: getEnvInt("AI_RATE_LIMIT_PER_SEC", 5),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 1),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 0),
		MaxRetries:     getEnvInt("MAX_RETRIES", 2),
		CacheTTL:       time.Duration(getEnvInt("ANALYSIS_CACHE_TTL_MINUTES", 30)) * time.Minute,
		MaxUploadSize:  int64(getEnvInt("MAX_UPLOAD_SIZE", 5*1024*1024)),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/reviews.csv"),
		LogMode:       getEnv("LOG_MODE", "development"),
		MetricsAddr:   getEnv("METRICS_ADDR", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration reads a whole number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if n := getEnvInt(key, 0); n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
