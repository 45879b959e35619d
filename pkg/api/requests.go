package api

// SessionPreferences are the optional generation knobs on session
// creation. Zero values are filled in by applyDefaults before use.
type SessionPreferences struct {
	CloudProvider   string `json:"cloud_provider" binding:"omitempty,oneof=aws gcp azure all"`
	MaxDebateRounds int    `json:"max_debate_rounds" binding:"omitempty,min=1,max=5"`
	OutputFormat    string `json:"output_format" binding:"omitempty,oneof=markdown pdf"`
	DetailLevel     string `json:"detail_level" binding:"omitempty,oneof=brief detailed comprehensive"`
}

func (p *SessionPreferences) applyDefaults() {
	if p.CloudProvider == "" {
		p.CloudProvider = "all"
	}
	if p.MaxDebateRounds == 0 {
		p.MaxDebateRounds = 3
	}
	if p.OutputFormat == "" {
		p.OutputFormat = "markdown"
	}
	if p.DetailLevel == "" {
		p.DetailLevel = "detailed"
	}
}

// CreateSessionRequest is the body of POST /api/v1/sessions.
type CreateSessionRequest struct {
	Requirements string             `json:"requirements" binding:"required,min=50,max=10000"`
	Preferences  SessionPreferences `json:"preferences"`
}

// CancelSessionRequest is the optional body of POST /api/v1/sessions/:id/cancel.
type CancelSessionRequest struct {
	Reason string `json:"reason"`
}
