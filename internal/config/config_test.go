package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, 1000, cfg.GeminiMaxOutputTokens)
	assert.InDelta(t, 0.7, cfg.GeminiTemperature, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.GeminiTimeout)
	assert.Equal(t, 4096, cfg.PromptMaxTokens)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10*time.Minute, cfg.QuestionCacheTTL)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.IsProd())
	assert.False(t, cfg.IsDev())
	assert.True(t, cfg.QuestionCacheEnabled())
}

func TestEnvHelpers(t *testing.T) {
	assert.True(t, Config{AppEnv: "dev"}.IsDev())
	assert.True(t, Config{AppEnv: "PROD"}.IsProd())
	assert.True(t, Config{AppEnv: "test"}.IsTest())
	assert.False(t, Config{}.QuestionCacheEnabled())
}

func TestGetAIBackoffConfig_TestModeShortens(t *testing.T) {
	cfg := Config{
		AppEnv:                   "test",
		AIBackoffMaxElapsedTime:  90 * time.Second,
		AIBackoffInitialInterval: 2 * time.Second,
		AIBackoffMaxInterval:     20 * time.Second,
		AIBackoffMultiplier:      1.5,
	}
	maxElapsed, initial, maxInterval, mult := cfg.GetAIBackoffConfig()
	assert.Equal(t, 5*time.Second, maxElapsed)
	assert.Equal(t, 100*time.Millisecond, initial)
	assert.Equal(t, time.Second, maxInterval)
	assert.InDelta(t, 2.0, mult, 1e-9)

	cfg.AppEnv = "prod"
	maxElapsed, initial, _, _ = cfg.GetAIBackoffConfig()
	assert.Equal(t, 90*time.Second, maxElapsed)
	assert.Equal(t, 2*time.Second, initial)
}
