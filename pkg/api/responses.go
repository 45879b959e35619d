package api

// CreateSessionResponse acknowledges an accepted session.
type CreateSessionResponse struct {
	SessionID                string  `json:"session_id"`
	Status                   string  `json:"status"`
	CreatedAt                string  `json:"created_at"`
	WebSocketURL             string  `json:"websocket_url"`
	EstimatedDurationSeconds int     `json:"estimated_duration_seconds"`
	EstimatedCostUSD         float64 `json:"estimated_cost_usd"`
}

// AgentMessageResponse is a single agent message in session history.
type AgentMessageResponse struct {
	Agent           string  `json:"agent"`
	Role            string  `json:"role"`
	Summary         string  `json:"summary"`
	Timestamp       string  `json:"timestamp"`
	DurationSeconds float64 `json:"duration_seconds"`
	Model           string  `json:"model"`
	CostUSD         float64 `json:"cost_usd"`
}

// SessionProgress reports where in the pipeline a session currently is.
type SessionProgress struct {
	CurrentAgent   string `json:"current_agent,omitempty"`
	DebateRound    int    `json:"debate_round"`
	StepsCompleted int    `json:"steps_completed"`
	TotalSteps     int    `json:"total_steps"`
}

// SessionStatusResponse is the full session status with conversation
// history.
type SessionStatusResponse struct {
	SessionID    string                 `json:"session_id"`
	Status       string                 `json:"status"`
	Progress     SessionProgress        `json:"progress"`
	Messages     []AgentMessageResponse `json:"messages"`
	CostSoFarUSD float64                `json:"cost_so_far_usd"`
	CreatedAt    string                 `json:"created_at"`
	CompletedAt  string                 `json:"completed_at,omitempty"`
}

// DiagramOutput is one generated architecture diagram.
type DiagramOutput struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	MermaidCode string `json:"mermaid_code"`
}

// SessionOutputMetadata describes the generation run.
type SessionOutputMetadata struct {
	TotalDurationSeconds float64  `json:"total_duration_seconds"`
	TotalCostUSD         float64  `json:"total_cost_usd"`
	DebateRounds         int      `json:"debate_rounds"`
	ModelsUsed           []string `json:"models_used"`
}

// SessionOutputResponse is the final architecture document payload.
type SessionOutputResponse struct {
	SessionID string                `json:"session_id"`
	Format    string                `json:"format"`
	Document  string                `json:"document"`
	Diagrams  []DiagramOutput       `json:"diagrams"`
	Metadata  SessionOutputMetadata `json:"metadata"`
}

// CancelResponse acknowledges a cancellation.
type CancelResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// HealthDependency is the health of a single backing service.
type HealthDependency struct {
	Status    string  `json:"status"`
	LatencyMS float64 `json:"latency_ms,omitempty"`
	Message   string  `json:"message,omitempty"`
}

// HealthResponse is the system health report.
type HealthResponse struct {
	Status        string                      `json:"status"`
	Version       string                      `json:"version"`
	UptimeSeconds float64                     `json:"uptime_seconds"`
	Dependencies  map[string]HealthDependency `json:"dependencies"`
}

// TemplateResponse is one sample requirements template.
type TemplateResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Complexity   string `json:"complexity"`
}
