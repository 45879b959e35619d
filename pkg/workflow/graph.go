package workflow

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/archadvisor/archadvisor/pkg/bus"
	"github.com/archadvisor/archadvisor/pkg/models"
)

// Node names. The graph below is the whole pipeline:
//
//	retrieve_context → architect_design → validator
//	    ├── revise → architect_revise_validation → validator (max 2 loops)
//	    └── pass_to_da / force_proceed → devils_advocate_review
//	            ├── revise → architect_revise → devils_advocate_review (max rounds)
//	            └── proceed → cost_analysis → generate_docs → end
const (
	nodeRetrieveContext           = "retrieve_context"
	nodeArchitectDesign           = "architect_design"
	nodeValidator                 = "validator"
	nodeArchitectReviseValidation = "architect_revise_validation"
	nodeDevilsAdvocateReview      = "devils_advocate_review"
	nodeArchitectRevise           = "architect_revise"
	nodeCostAnalysis              = "cost_analysis"
	nodeGenerateDocs              = "generate_docs"
	nodeEnd                       = ""
)

// maxValidationRounds caps the validator revision loop to prevent
// infinite cycling; the gate force-proceeds afterwards.
const maxValidationRounds = 2

type nodeFunc func(ctx context.Context, state *models.SessionState, emit func(bus.Event)) error

type routerFunc func(state *models.SessionState) string

// node is one graph vertex: either an unconditional edge (next) or a
// conditional router with its route table.
type node struct {
	run    nodeFunc
	next   string
	route  routerFunc
	routes map[string]string
}

func (e *Engine) graph() map[string]node {
	return map[string]node{
		nodeRetrieveContext: {run: e.retrieveContext, next: nodeArchitectDesign},
		nodeArchitectDesign: {run: e.architectDesign, next: nodeValidator},
		nodeValidator: {
			run:   e.validatorNode,
			route: routeAfterValidation,
			routes: map[string]string{
				"pass_to_da":    nodeDevilsAdvocateReview,
				"revise":        nodeArchitectReviseValidation,
				"force_proceed": nodeDevilsAdvocateReview,
			},
		},
		nodeArchitectReviseValidation: {run: e.architectReviseValidation, next: nodeValidator},
		nodeDevilsAdvocateReview: {
			run:   e.devilsAdvocateReview,
			route: routeAfterReview,
			routes: map[string]string{
				"revise":  nodeArchitectRevise,
				"proceed": nodeCostAnalysis,
			},
		},
		nodeArchitectRevise: {run: e.architectRevise, next: nodeDevilsAdvocateReview},
		nodeCostAnalysis:    {run: e.costAnalysis, next: nodeGenerateDocs},
		nodeGenerateDocs:    {run: e.generateDocs, next: nodeEnd},
	}
}

// routeAfterValidation decides where a validated design goes: to the
// reviewer on pass, back to the architect on fail, or forced onward
// once the revision cap is hit.
func routeAfterValidation(state *models.SessionState) string {
	passed := state.ValidationPassed == nil || *state.ValidationPassed

	if passed {
		slog.Info("Validation routing", "decision", "pass_to_da", "round", state.ValidationRound, "session_id", state.SessionID)
		return "pass_to_da"
	}
	if state.ValidationRound >= maxValidationRounds {
		slog.Warn("Validation max rounds reached", "round", state.ValidationRound, "session_id", state.SessionID)
		return "force_proceed"
	}
	slog.Info("Validation routing", "decision", "revise", "round", state.ValidationRound, "session_id", state.SessionID)
	return "revise"
}

// routeAfterReview decides whether the architect-reviewer debate
// continues. The debate ends at the round cap, when the reviewer found
// no criticals or recommends proceeding, or when its output cannot be
// parsed.
func routeAfterReview(state *models.SessionState) string {
	if state.DebateRound >= state.MaxDebateRounds {
		slog.Info("Debate max rounds reached", "round", state.DebateRound, "max", state.MaxDebateRounds, "session_id", state.SessionID)
		return "proceed"
	}

	var findings struct {
		SeveritySummary       map[string]int `json:"severity_summary"`
		ProceedRecommendation string         `json:"proceed_recommendation"`
	}
	if err := json.Unmarshal([]byte(state.ReviewFindings), &findings); err != nil {
		slog.Warn("Debate routing parse error", "error", err, "session_id", state.SessionID)
		return "proceed"
	}

	critical := findings.SeveritySummary["critical"]
	recommendation := findings.ProceedRecommendation
	if recommendation == "" {
		recommendation = "revise_recommended"
	}

	if critical == 0 || recommendation == "proceed" {
		slog.Info("Debate proceeding", "round", state.DebateRound, "critical", critical, "recommendation", recommendation, "session_id", state.SessionID)
		return "proceed"
	}

	slog.Info("Debate continuing", "round", state.DebateRound, "critical", critical, "recommendation", recommendation, "session_id", state.SessionID)
	return "revise"
}
