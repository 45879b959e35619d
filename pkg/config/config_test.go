package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := Defaults()

	assert.Equal(t, "8080", s.HTTPPort)
	assert.Equal(t, "redis://localhost:6379/0", s.RedisURL)
	assert.Equal(t, "https://api.openai.com/v1", s.OpenAIBaseURL)
	assert.Equal(t, 120*time.Second, s.LLMTimeout)
	assert.Equal(t, 10, s.RateLimitMaxSessions)
	assert.Equal(t, 3600, s.RateLimitWindowSeconds)
	assert.Equal(t, 3, s.MaxDebateRounds)
	assert.Equal(t, "gpt-4o", s.ArchitectModel)
	assert.Equal(t, "gpt-4o-mini", s.CostAnalyzerModel)

	require.NoError(t, s.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MAX_DEBATE_ROUNDS", "5")
	t.Setenv("LLM_TIMEOUT_SECONDS", "30")
	t.Setenv("ARCHITECT_MODEL", "gpt-4o-mini")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", s.HTTPPort)
	assert.Equal(t, "sk-test", s.OpenAIAPIKey)
	assert.Equal(t, 5, s.MaxDebateRounds)
	assert.Equal(t, 30*time.Second, s.LLMTimeout)
	assert.Equal(t, "gpt-4o-mini", s.ArchitectModel)
	// untouched values keep defaults
	assert.Equal(t, "gpt-4o", s.DocumentationModel)
}

func TestLoadRejectsBadInteger(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX_SESSIONS", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_MAX_SESSIONS")
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"debate rounds too low", func(s *Settings) { s.MaxDebateRounds = 0 }},
		{"debate rounds too high", func(s *Settings) { s.MaxDebateRounds = 6 }},
		{"zero rate limit", func(s *Settings) { s.RateLimitMaxSessions = 0 }},
		{"zero window", func(s *Settings) { s.RateLimitWindowSeconds = 0 }},
		{"zero timeout", func(s *Settings) { s.LLMTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}
