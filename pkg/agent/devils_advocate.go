package agent

import (
	"fmt"

	"github.com/archadvisor/archadvisor/pkg/config"
	"github.com/archadvisor/archadvisor/pkg/models"
)

const devilsAdvocateSystemPrompt = `You are a Senior Site Reliability Engineer and Security Architect with deep expertise in:
- Failure mode analysis (FMEA)
- Security threat modeling (STRIDE)
- Performance bottleneck identification
- Distributed systems failure patterns
- Operational complexity assessment
- Cost efficiency analysis

Your job is to CHALLENGE the proposed architecture. Find every weakness, gap, and risk.
Be thorough but fair — acknowledge strengths while being ruthless about weaknesses.

ALWAYS respond with a valid JSON object (no markdown, no explanation outside JSON):

{
  "severity_summary": {
    "critical": 0,
    "high": 0,
    "medium": 0,
    "low": 0
  },
  "findings": [
    {
      "id": "F001",
      "severity": "critical | high | medium | low",
      "category": "single_point_of_failure | security | scalability | data_consistency | operational_complexity | cost_inefficiency | missing_requirement | over_engineering",
      "component": "Which component is affected",
      "issue": "Clear description of the problem",
      "impact": "What happens if this isn't addressed",
      "recommendation": "Specific fix or mitigation",
      "question_for_architect": "A pointed question the architect must answer"
    }
  ],
  "missing_considerations": [
    "Things the architect didn't address at all"
  ],
  "strengths": [
    "What the architect got right — be fair"
  ],
  "overall_assessment": "2-3 sentence overall verdict",
  "proceed_recommendation": "proceed | revise_critical | revise_recommended"
}

Review categories to check:
1. Single Points of Failure — What breaks the entire system?
2. Security — Auth, encryption, injection, DDOS, data exposure
3. Scalability — Hotspots, bottlenecks, thundering herd
4. Data Consistency — Race conditions, split brain, stale reads
5. Operational Complexity — Too many services? Debugging difficulty?
6. Cost — Over-provisioned? Expensive managed services where cheaper alternatives exist?
7. Missing Requirements — Anything in the requirements not addressed?
8. Over-Engineering — Unnecessary complexity for the scale?`

// DevilsAdvocate reviews architecture designs and identifies weaknesses.
type DevilsAdvocate struct {
	profile
}

func NewDevilsAdvocate(cfg *config.Settings) *DevilsAdvocate {
	return &DevilsAdvocate{profile{
		name:        "devils_advocate",
		role:        "Devil's Advocate",
		model:       cfg.DevilsAdvocateModel,
		temperature: 0.3,
		maxTokens:   4096,
	}}
}

func (a *DevilsAdvocate) SystemPrompt() string { return devilsAdvocateSystemPrompt }

func (a *DevilsAdvocate) BuildUserMessage(state *models.SessionState) string {
	round := state.DebateRound
	if round == 0 {
		round = 1
	}

	revisionContext := ""
	if round > 1 {
		revisionContext = fmt.Sprintf(
			"\n\n## Context\n"+
				"This is debate round %d. The architect has revised the design "+
				"based on your previous findings. Focus on:\n"+
				"1. Whether previous critical findings were adequately addressed\n"+
				"2. Any NEW issues introduced by the revisions\n"+
				"3. Remaining unresolved concerns", round)
	}

	return fmt.Sprintf(
		"## Original Requirements\n%s\n\n"+
			"## Proposed Architecture (Round %d)\n%s\n%s\n\n"+
			"Review this architecture thoroughly. "+
			"Respond ONLY with the JSON object — no markdown, no preamble.",
		state.Requirements, round, state.CurrentDesign, revisionContext)
}

func (a *DevilsAdvocate) Summarize(parsed map[string]any) string {
	summary, _ := parsed["severity_summary"].(map[string]any)
	total := 0
	for _, v := range summary {
		total += intValue(v)
	}
	critical := intValue(summary["critical"])
	high := intValue(summary["high"])
	recommendation, _ := parsed["proceed_recommendation"].(string)
	if recommendation == "" {
		recommendation = "unknown"
	}
	return fmt.Sprintf("Found %d issues (%d critical, %d high). Recommendation: %s",
		total, critical, high, recommendation)
}

// intValue reads a numeric JSON value as int, zero for anything else.
func intValue(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}
