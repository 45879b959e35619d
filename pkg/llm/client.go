// Package llm provides the chat-completion client used by all agents.
// The only implementation speaks the OpenAI-compatible completions API,
// which also covers Azure OpenAI and local gateways behind a custom
// base URL.
package llm

import "context"

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes a single completion call.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// JSONMode asks the provider to constrain output to a JSON object.
	JSONMode bool
}

// Response carries the completion text plus token usage for cost
// accounting.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// Client executes chat completions.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
