// Package config holds the runtime configuration for the ArchAdvisor
// orchestrator, loaded from environment variables with typed defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Settings is the full runtime configuration.
type Settings struct {
	// HTTP server
	HTTPPort string

	// Backing store
	RedisURL string

	// LLM endpoint (OpenAI-compatible chat completions)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	LLMTimeout    time.Duration

	// Rate limiting (sessions per client fingerprint)
	RateLimitMaxSessions   int
	RateLimitWindowSeconds int

	// Per-agent model selection
	ArchitectModel      string
	DevilsAdvocateModel string
	CostAnalyzerModel   string
	DocumentationModel  string

	// Debate bounds
	MaxDebateRounds int
}

// Defaults returns the built-in settings used when no environment
// overrides are present.
func Defaults() *Settings {
	return &Settings{
		HTTPPort:               "8080",
		RedisURL:               "redis://localhost:6379/0",
		OpenAIBaseURL:          "https://api.openai.com/v1",
		LLMTimeout:             120 * time.Second,
		RateLimitMaxSessions:   10,
		RateLimitWindowSeconds: 3600,
		ArchitectModel:         "gpt-4o",
		DevilsAdvocateModel:    "gpt-4o",
		CostAnalyzerModel:      "gpt-4o-mini",
		DocumentationModel:     "gpt-4o",
		MaxDebateRounds:        3,
	}
}

// Load builds Settings from the environment on top of Defaults.
func Load() (*Settings, error) {
	s := Defaults()

	s.HTTPPort = getEnv("HTTP_PORT", s.HTTPPort)
	s.RedisURL = getEnv("REDIS_URL", s.RedisURL)
	s.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	s.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", s.OpenAIBaseURL)

	var err error
	if s.RateLimitMaxSessions, err = getEnvInt("RATE_LIMIT_MAX_SESSIONS", s.RateLimitMaxSessions); err != nil {
		return nil, err
	}
	if s.RateLimitWindowSeconds, err = getEnvInt("RATE_LIMIT_WINDOW_SECONDS", s.RateLimitWindowSeconds); err != nil {
		return nil, err
	}
	if s.MaxDebateRounds, err = getEnvInt("MAX_DEBATE_ROUNDS", s.MaxDebateRounds); err != nil {
		return nil, err
	}
	timeoutSecs, err := getEnvInt("LLM_TIMEOUT_SECONDS", int(s.LLMTimeout/time.Second))
	if err != nil {
		return nil, err
	}
	s.LLMTimeout = time.Duration(timeoutSecs) * time.Second

	s.ArchitectModel = getEnv("ARCHITECT_MODEL", s.ArchitectModel)
	s.DevilsAdvocateModel = getEnv("DEVILS_ADVOCATE_MODEL", s.DevilsAdvocateModel)
	s.CostAnalyzerModel = getEnv("COST_ANALYZER_MODEL", s.CostAnalyzerModel)
	s.DocumentationModel = getEnv("DOCUMENTATION_MODEL", s.DocumentationModel)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks bounds that would otherwise surface as confusing
// runtime behavior much later.
func (s *Settings) Validate() error {
	if s.MaxDebateRounds < 1 || s.MaxDebateRounds > 5 {
		return fmt.Errorf("MAX_DEBATE_ROUNDS must be in [1,5], got %d", s.MaxDebateRounds)
	}
	if s.RateLimitMaxSessions < 1 {
		return fmt.Errorf("RATE_LIMIT_MAX_SESSIONS must be positive, got %d", s.RateLimitMaxSessions)
	}
	if s.RateLimitWindowSeconds < 1 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive, got %d", s.RateLimitWindowSeconds)
	}
	if s.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT_SECONDS must be positive, got %v", s.LLMTimeout)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q: %w", key, v, err)
	}
	return n, nil
}
