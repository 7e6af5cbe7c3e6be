package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHAT_MESSAGE_LIMIT", "")
	t.Setenv("AI_STREAM_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, 14, cfg.Ai.ChatMessageLimit)
	assert.Equal(t, time.Duration(0), cfg.Ai.StreamTimeout)
	assert.Equal(t, "cl100k_base", cfg.Ai.TokenEncoding)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHAT_MESSAGE_LIMIT", "20")
	t.Setenv("AI_STREAM_TIMEOUT", "90s")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, 20, cfg.Ai.ChatMessageLimit)
	assert.Equal(t, 90*time.Second, cfg.Ai.StreamTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("FLAG_ON", "true")
	t.Setenv("FLAG_GARBAGE", "maybe")

	assert.True(t, getEnvAsBool("FLAG_ON", false))
	assert.True(t, getEnvAsBool("FLAG_GARBAGE", true))
	assert.False(t, getEnvAsBool("FLAG_UNSET_FOR_TEST", false))
}
