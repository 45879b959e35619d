// Package agent implements the four LLM agents of the design pipeline:
// architect, devil's advocate, cost analyzer, and documentation writer.
// Each agent owns its prompts and output parsing; the Runner executes
// them with retries, cost tracking, and event emission.
package agent

import "github.com/archadvisor/archadvisor/pkg/models"

// Agent is one pipeline participant. Implementations are stateless;
// everything they need comes from the session state.
type Agent interface {
	Name() string
	Role() string
	Model() string
	Temperature() float64
	MaxTokens() int
	SystemPrompt() string
	// BuildUserMessage renders the user prompt from the current state.
	BuildUserMessage(state *models.SessionState) string
	// Summarize produces the one-line progress summary from parsed output.
	Summarize(parsed map[string]any) string
}

// profile carries the per-agent identity and sampling parameters shared
// by all implementations.
type profile struct {
	name        string
	role        string
	model       string
	temperature float64
	maxTokens   int
}

func (p profile) Name() string         { return p.name }
func (p profile) Role() string         { return p.role }
func (p profile) Model() string        { return p.model }
func (p profile) Temperature() float64 { return p.temperature }
func (p profile) MaxTokens() int       { return p.maxTokens }
