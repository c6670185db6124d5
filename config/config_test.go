package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"AI_SERVICE_TYPE", "AI_API_KEY", "AI_TIMEOUT_SECONDS", "MAX_CONCURRENCY", "POSTGRES_HOST"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ServiceClaude, cfg.AIServiceType)
	assert.Empty(t, cfg.AIAPIKey)
	assert.Equal(t, 15*time.Second, cfg.AITimeout)
	assert.Equal(t, 1, cfg.MaxConcurrency)
	assert.Equal(t, "localhost", cfg.PostgresHost)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("AI_SERVICE_TYPE", "OpenAI")
	t.Setenv("AI_API_KEY", "  sk-test  ")
	t.Setenv("AI_TIMEOUT_SECONDS", "30")
	t.Setenv("MAX_CONCURRENCY", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, ServiceOpenAI, cfg.AIServiceType)
	assert.Equal(t, "sk-test", cfg.AIAPIKey)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, 1, cfg.MaxConcurrency)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "reviews", PostgresSSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=reviews sslmode=disable", cfg.DSN())
}
