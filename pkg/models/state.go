// Package models defines the shared session state passed between workflow
// nodes and persisted in the session store.
package models

import "time"

// Status is the session lifecycle phase.
type Status string

const (
	StatusInitializing      Status = "initializing"
	StatusRetrievingContext Status = "retrieving_context"
	StatusDesigning         Status = "designing"
	StatusValidating        Status = "validating"
	StatusReviewing         Status = "reviewing"
	StatusRevising          Status = "revising"
	StatusCosting           Status = "costing"
	StatusDocumenting       Status = "documenting"
	StatusComplete          Status = "complete"
	StatusError             Status = "error"
	StatusCancelled         Status = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError || s == StatusCancelled
}

// AgentMessage records a single agent execution.
type AgentMessage struct {
	Agent           string  `json:"agent"`
	Role            string  `json:"role"`
	Summary         string  `json:"summary"`
	RawOutput       string  `json:"raw_output"`
	Timestamp       string  `json:"timestamp"`
	DurationSeconds float64 `json:"duration_seconds"`
	Model           string  `json:"model"`
	CostUSD         float64 `json:"cost_usd"`
}

// MermaidDiagram is one rendered diagram attached to the final document.
type MermaidDiagram struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	MermaidCode string `json:"mermaid_code"`
}

// Preferences are the caller-supplied knobs for a session.
type Preferences struct {
	CloudProvider   string `json:"cloud_provider,omitempty"`
	MaxDebateRounds int    `json:"max_debate_rounds,omitempty"`
	DetailLevel     string `json:"detail_level,omitempty"`
}

// SessionState is the full workflow state. Every node reads what it needs
// and writes its outputs back; the whole document is persisted after each
// node completes.
type SessionState struct {
	// Input
	Requirements string      `json:"requirements"`
	Preferences  Preferences `json:"preferences"`
	SessionID    string      `json:"session_id"`

	// Retrieved context
	SimilarArchitectures []string `json:"similar_architectures"`

	// Agent outputs (raw JSON strings as produced by the agents)
	CurrentDesign    string `json:"current_design,omitempty"`
	ReviewFindings   string `json:"review_findings,omitempty"`
	CostAnalysis     string `json:"cost_analysis,omitempty"`
	FinalDocument    string `json:"final_document,omitempty"`
	RenderedMarkdown string `json:"rendered_markdown,omitempty"`

	MermaidDiagrams []MermaidDiagram `json:"mermaid_diagrams"`

	Messages []AgentMessage `json:"messages"`

	// Validation
	ValidationReport string   `json:"validation_report,omitempty"`
	ValidationPassed *bool    `json:"validation_passed,omitempty"`
	ValidationScore  *float64 `json:"validation_score,omitempty"`
	ValidationRound  int      `json:"validation_round"`

	// Control flow
	DebateRound     int    `json:"debate_round"`
	MaxDebateRounds int    `json:"max_debate_rounds"`
	Status          Status `json:"status"`

	Errors []string `json:"errors"`

	// Metadata
	StartedAt    string `json:"started_at"`
	CompletedAt  string `json:"completed_at,omitempty"`
	TotalCostUSD float64 `json:"total_cost_usd"`

	// Ownership filter for session listing. Not part of the original
	// workflow state but persisted alongside it.
	ClientFingerprint string `json:"client_fingerprint,omitempty"`
}

// NewSessionState creates the initial state for a new session.
func NewSessionState(sessionID, requirements string, prefs Preferences) *SessionState {
	maxRounds := prefs.MaxDebateRounds
	if maxRounds == 0 {
		maxRounds = 3
	}
	return &SessionState{
		Requirements:         requirements,
		Preferences:          prefs,
		SessionID:            sessionID,
		SimilarArchitectures: []string{},
		MermaidDiagrams:      []MermaidDiagram{},
		Messages:             []AgentMessage{},
		ValidationRound:      0,
		DebateRound:          0,
		MaxDebateRounds:      maxRounds,
		Status:               StatusInitializing,
		Errors:               []string{},
		StartedAt:            time.Now().UTC().Format(time.RFC3339),
		TotalCostUSD:         0,
	}
}
