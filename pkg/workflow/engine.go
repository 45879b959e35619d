// Package workflow runs the multi-agent design pipeline: a directed
// graph of agent and validator nodes with two bounded revision loops.
// State is checkpointed to the session store after every node so
// observers always see fresh progress.
package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/archadvisor/archadvisor/pkg/agent"
	"github.com/archadvisor/archadvisor/pkg/bus"
	"github.com/archadvisor/archadvisor/pkg/config"
	"github.com/archadvisor/archadvisor/pkg/llm"
	"github.com/archadvisor/archadvisor/pkg/models"
	"github.com/archadvisor/archadvisor/pkg/session"
	"github.com/archadvisor/archadvisor/pkg/validation"
)

const checkpointTimeout = 5 * time.Second

// Engine executes the workflow graph for one session at a time. Safe
// for concurrent use across sessions; each Run owns its state.
type Engine struct {
	runner    *agent.Runner
	validator *validation.Engine
	store     *session.Store
	bus       *bus.Bus

	architect      *agent.Architect
	devilsAdvocate *agent.DevilsAdvocate
	costAnalyzer   *agent.CostAnalyzer
	documentation  *agent.Documentation
}

func NewEngine(cfg *config.Settings, client llm.Client, store *session.Store, eventBus *bus.Bus) *Engine {
	return &Engine{
		runner:         agent.NewRunner(client),
		validator:      validation.NewEngine(),
		store:          store,
		bus:            eventBus,
		architect:      agent.NewArchitect(cfg),
		devilsAdvocate: agent.NewDevilsAdvocate(cfg),
		costAnalyzer:   agent.NewCostAnalyzer(cfg),
		documentation:  agent.NewDocumentation(cfg),
	}
}

// Run walks the graph from retrieve_context to completion, mutating and
// checkpointing state as it goes. Cancellation via ctx marks the
// session cancelled; node failures mark it errored. The final state is
// always returned.
func (e *Engine) Run(ctx context.Context, state *models.SessionState) *models.SessionState {
	slog.Info("Workflow started",
		"session_id", state.SessionID,
		"requirements_length", len(state.Requirements),
	)

	emit := e.bus.Callback(state.SessionID)
	graph := e.graph()
	current := nodeRetrieveContext

	for current != nodeEnd {
		if err := ctx.Err(); err != nil {
			return e.finishCancelled(state)
		}

		n := graph[current]
		if err := n.run(ctx, state, emit); err != nil {
			// Cancellation during a node surfaces as that node's error;
			// it is still a cancellation, not a failure.
			if ctx.Err() != nil {
				return e.finishCancelled(state)
			}
			return e.finishFailed(state, emit, err)
		}
		e.checkpoint(state)

		if n.route != nil {
			current = n.routes[n.route(state)]
		} else {
			current = n.next
		}
	}

	emit(bus.SessionComplete(
		sessionDuration(state),
		roundCost(state.TotalCostUSD),
		state.DebateRound,
		"/api/v1/sessions/"+state.SessionID+"/output",
	))

	slog.Info("Workflow completed",
		"session_id", state.SessionID,
		"debate_rounds", state.DebateRound,
		"total_cost_usd", roundCost(state.TotalCostUSD),
		"status", state.Status,
	)
	return state
}

func (e *Engine) finishCancelled(state *models.SessionState) *models.SessionState {
	slog.Info("Workflow cancelled", "session_id", state.SessionID)
	state.Status = models.StatusCancelled
	state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	e.checkpoint(state)
	return state
}

func (e *Engine) finishFailed(state *models.SessionState, emit func(bus.Event), err error) *models.SessionState {
	slog.Error("Workflow failed", "session_id", state.SessionID, "error", err)
	emit(bus.Error("Workflow failed: "+err.Error(), false))

	state.Status = models.StatusError
	state.Errors = append(state.Errors, err.Error())
	state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	e.checkpoint(state)
	return state
}

// checkpoint persists the full state. Uses a detached context so a
// cancelled workflow can still record its final status.
func (e *Engine) checkpoint(state *models.SessionState) {
	ctx, cancel := context.WithTimeout(context.Background(), checkpointTimeout)
	defer cancel()

	err := e.store.Update(ctx, state.SessionID, func(st *models.SessionState) {
		*st = *state
	})
	if err != nil {
		slog.Warn("Session checkpoint failed", "session_id", state.SessionID, "error", err)
	}
}

func sessionDuration(state *models.SessionState) time.Duration {
	started, err1 := time.Parse(time.RFC3339, state.StartedAt)
	completed, err2 := time.Parse(time.RFC3339, state.CompletedAt)
	if err1 != nil || err2 != nil {
		return 0
	}
	return completed.Sub(started)
}

func roundCost(v float64) float64 {
	return float64(int64(v*10000+0.5)) / 10000
}
