package bus

import "time"

// Event is one streamed workflow event. Events are schemaless JSON
// objects with at least "type" and "timestamp" keys; constructors below
// build the known shapes.
type Event map[string]any

// Type returns the event's type tag.
func (e Event) Type() string {
	t, _ := e["type"].(string)
	return t
}

func newEvent(typ string, fields map[string]any) Event {
	ev := Event{
		"type":      typ,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		ev[k] = v
	}
	return ev
}

// AgentStarted is emitted when an agent begins processing.
func AgentStarted(agent, label, message string) Event {
	return newEvent("agent_started", map[string]any{
		"agent":       agent,
		"agent_label": label,
		"message":     message,
	})
}

// AgentThinking is emitted mid-run to show progress.
func AgentThinking(agent, message string) Event {
	return newEvent("agent_thinking", map[string]any{
		"agent":   agent,
		"message": message,
	})
}

// AgentCompleted is emitted when an agent finishes.
func AgentCompleted(agent, summary string, duration time.Duration, costUSD float64) Event {
	return newEvent("agent_completed", map[string]any{
		"agent":            agent,
		"summary":          summary,
		"duration_seconds": duration.Seconds(),
		"cost_usd":         costUSD,
	})
}

// WorkflowProgress reports overall pipeline position.
func WorkflowProgress(step, totalSteps int, status, message string) Event {
	return newEvent("workflow_progress", map[string]any{
		"step":        step,
		"total_steps": totalSteps,
		"status":      status,
		"message":     message,
	})
}

// DebateRoundStarted is emitted when a review round begins.
func DebateRoundStarted(round, maxRounds int, message string) Event {
	return newEvent("debate_round_started", map[string]any{
		"round":      round,
		"max_rounds": maxRounds,
		"message":    message,
	})
}

// FindingDiscovered reports one issue found by review or validation.
func FindingDiscovered(agent, severity, category, component, summary string) Event {
	return newEvent("finding_discovered", map[string]any{
		"agent":     agent,
		"severity":  severity,
		"category":  category,
		"component": component,
		"summary":   summary,
	})
}

// DebateRoundCompleted summarizes a finished review round.
func DebateRoundCompleted(round, total, critical, resolved int, nextAction string) Event {
	return newEvent("debate_round_completed", map[string]any{
		"round":             round,
		"findings_total":    total,
		"findings_critical": critical,
		"findings_resolved": resolved,
		"next_action":       nextAction,
	})
}

// SessionComplete is the terminal success event.
func SessionComplete(duration time.Duration, totalCostUSD float64, debateRounds int, outputURL string) Event {
	return newEvent("session_complete", map[string]any{
		"duration_seconds": duration.Seconds(),
		"total_cost_usd":   totalCostUSD,
		"debate_rounds":    debateRounds,
		"output_url":       outputURL,
	})
}

// SessionCancelled is emitted when a session is cancelled by the client.
func SessionCancelled(message string) Event {
	return newEvent("session_cancelled", map[string]any{
		"message": message,
	})
}

// Error reports a failure. Recoverable errors keep the session alive.
func Error(message string, recoverable bool) Event {
	return newEvent("error", map[string]any{
		"message":     message,
		"recoverable": recoverable,
	})
}
