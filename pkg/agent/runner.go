package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/archadvisor/archadvisor/pkg/bus"
	"github.com/archadvisor/archadvisor/pkg/llm"
	"github.com/archadvisor/archadvisor/pkg/models"
)

const (
	maxAttempts      = 3
	retryInitialWait = 2 * time.Second
	retryMaxWait     = 30 * time.Second
)

// Result is the outcome of one agent execution.
type Result struct {
	Output       map[string]any
	Raw          string
	Summary      string
	Duration     time.Duration
	InputTokens  int
	OutputTokens int
	CostUSD      float64

	agent string
	role  string
	model string
}

// Message converts the result into the session transcript entry.
func (r *Result) Message() models.AgentMessage {
	return models.AgentMessage{
		Agent:           r.agent,
		Role:            r.role,
		Summary:         r.Summary,
		RawOutput:       r.Raw,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		DurationSeconds: round2(r.Duration.Seconds()),
		Model:           r.model,
		CostUSD:         round4(r.CostUSD),
	}
}

// Runner executes agents against an LLM client with retries and event
// emission.
type Runner struct {
	client llm.Client
}

func NewRunner(client llm.Client) *Runner {
	return &Runner{client: client}
}

// Run executes one agent: build prompts, call the LLM with retries,
// parse the response, and emit progress events. emit may be nil when no
// listener cares about progress.
func (r *Runner) Run(ctx context.Context, a Agent, state *models.SessionState, emit func(bus.Event)) (*Result, error) {
	start := time.Now()

	if emit != nil {
		emit(bus.AgentStarted(a.Name(), a.Role(), fmt.Sprintf("%s is analyzing the architecture...", a.Role())))
	}

	result, err := r.execute(ctx, a, state, emit)
	if err != nil {
		slog.Error("Agent failed",
			"agent", a.Name(),
			"error", err,
			"duration_seconds", round2(time.Since(start).Seconds()),
		)
		if emit != nil {
			emit(bus.Error(fmt.Sprintf("%s encountered an error: %v", a.Role(), err), false))
		}
		return nil, err
	}

	result.Duration = time.Since(start)
	result.Summary = a.Summarize(result.Output)

	if emit != nil {
		emit(bus.AgentCompleted(a.Name(), result.Summary, result.Duration, round4(result.CostUSD)))
	}

	slog.Info("Agent completed",
		"agent", a.Name(),
		"model", a.Model(),
		"duration_seconds", round2(result.Duration.Seconds()),
		"input_tokens", result.InputTokens,
		"output_tokens", result.OutputTokens,
		"cost_usd", round4(result.CostUSD),
	)

	return result, nil
}

func (r *Runner) execute(ctx context.Context, a Agent, state *models.SessionState, emit func(bus.Event)) (*Result, error) {
	req := llm.Request{
		Model: a.Model(),
		Messages: []llm.Message{
			{Role: "system", Content: a.SystemPrompt()},
			{Role: "user", Content: a.BuildUserMessage(state)},
		},
		Temperature: a.Temperature(),
		MaxTokens:   a.MaxTokens(),
	}

	if emit != nil {
		emit(bus.AgentThinking(a.Name(), fmt.Sprintf("%s is processing...", a.Role())))
	}

	resp, err := r.callWithRetry(ctx, a.Name(), req)
	if err != nil {
		return nil, err
	}

	parsed, err := ParseLoose(a.Name(), resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s response: %w", a.Name(), err)
	}

	return &Result{
		Output:       parsed,
		Raw:          resp.Content,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		CostUSD:      EstimateCost(a.Model(), resp.InputTokens, resp.OutputTokens),
		agent:        a.Name(),
		role:         a.Role(),
		model:        a.Model(),
	}, nil
}

// callWithRetry makes up to maxAttempts LLM calls with exponential
// backoff between failures.
func (r *Runner) callWithRetry(ctx context.Context, agentName string, req llm.Request) (*llm.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialWait
	bo.MaxInterval = retryMaxWait
	bo.MaxElapsedTime = 0

	var resp *llm.Response
	op := func() error {
		var err error
		resp, err = r.client.Complete(ctx, req)
		return err
	}
	notify := func(err error, wait time.Duration) {
		slog.Warn("LLM call retrying", "agent", agentName, "wait", wait, "error", err)
	}

	err := backoff.RetryNotify(op, backoff.WithMaxRetries(backoff.WithContext(bo, ctx), maxAttempts-1), notify)
	if err != nil {
		return nil, fmt.Errorf("llm call for %s: %w", agentName, err)
	}
	return resp, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
