package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/archadvisor/archadvisor/pkg/config"
	"github.com/archadvisor/archadvisor/pkg/models"
)

const documentationSystemPrompt = `You are a Senior Technical Writer specializing in software architecture documentation. You create clear, comprehensive, and well-structured architecture documents that serve both executives and engineers.

Given the final architecture design, debate history, and cost analysis, produce a complete architecture document in Markdown format.

Your output should be a JSON object with the document sections:

{
  "title": "Architecture document title",
  "executive_summary": "3-5 sentence summary for leadership — what, why, and key metrics",
  "sections": [
    {
      "heading": "Section heading",
      "level": 1,
      "content": "Markdown content for this section"
    }
  ],
  "diagrams": [
    {
      "type": "component | sequence | deployment | er",
      "title": "Diagram title",
      "mermaid_code": "Valid Mermaid diagram code"
    }
  ],
  "decision_log": [
    {
      "id": "ADR-001",
      "title": "Decision title",
      "status": "accepted | revised | deferred",
      "context": "Why this decision was needed",
      "decision": "What was decided",
      "consequences": "Positive and negative consequences"
    }
  ]
}

Required sections (in order) — EVERY section is MANDATORY and must have substantial content:

1. **Executive Summary** — 3-5 sentences for leadership with key metrics (users, throughput, cost range)
2. **Architecture Overview** — Style justification, high-level description, include component diagram reference
3. **Component Deep Dive** — For EACH component include:
   - For custom services: at least 3 API endpoints with method, path, request/response schemas; data models with field names and types; scaling strategy with specific numbers; technology justification
   - For third-party managed services (SES, Twilio, FCM, Stripe, etc.): integration pattern, failure handling strategy, cost per unit, and SLA
4. **Data Flow** — Sequence diagrams for at least 2 key user flows with step-by-step descriptions
5. **Infrastructure & Deployment** — Regions, containerization, CI/CD, deployment strategy details
6. **Cost Analysis** — Present costs in TWO tables:
   (a) Summary table by provider and tier: | Tier | AWS | GCP | Azure |
   (b) Detailed breakdown table by service category: | Category | Service | Specs | Monthly USD |
   Include the top 3 cost optimization tips with estimated savings percentages.
   A pre-formatted cost table is provided in the input — include it directly.
7. **Security Architecture** — Authentication method, authorization model, encryption (at rest + in transit), secrets management, network security (VPC, security groups), compliance considerations
8. **Tradeoff Log** — For EACH debate round: what the Devil's Advocate found, how the Architect responded, and the outcome. Use the debate history provided.
9. **Reliability & Validation** — Include the design validation score, composite availability calculation (show the math: ServiceA(99.99%) x ServiceB(99.9%) = X%), SLA targets, and any unresolved validation findings
10. **Risk Register** — Markdown table with columns: Risk, Severity, Likelihood, Mitigation, Owner. At least 5 risks.
11. **Architecture Decision Records** — At least 3 ADRs in the decision_log array

CRITICAL RULES:
- ALL 11 SECTIONS ARE MANDATORY. If you skip a section, the document fails review. If running low on space, make each section briefer rather than dropping sections entirely.
- ALWAYS generate a deployment Mermaid diagram showing regions, AZs, and traffic routing — infer it from the deployment config even if the architecture design doesn't include one.
- You MUST produce at least 3 diagrams: component, sequence, and deployment.

Use Mermaid syntax for all diagrams. Make the document professional and ready for engineering review.
Respond ONLY with the JSON object — no markdown wrapping.`

// Documentation produces the polished HLD/LLD architecture document.
type Documentation struct {
	profile
}

func NewDocumentation(cfg *config.Settings) *Documentation {
	return &Documentation{profile{
		name:        "documentation",
		role:        "Documentation",
		model:       cfg.DocumentationModel,
		temperature: 0.4,
		maxTokens:   16000,
	}}
}

func (a *Documentation) SystemPrompt() string { return documentationSystemPrompt }

// BuildUserMessage assembles the full documentation prompt: final
// design, review, pre-formatted cost tables, validation math, and the
// complete debate history.
func (a *Documentation) BuildUserMessage(state *models.SessionState) string {
	debateHistory := buildDebateHistory(state.Messages)
	costSection := preformatCostTables(state.CostAnalysis)
	validationInfo := buildValidationInfo(state)

	return fmt.Sprintf(
		"## Original Requirements\n%s\n\n"+
			"## Final Architecture Design\n%s\n\n"+
			"## Devil's Advocate Review\n%s\n\n"+
			"%s\n"+
			"%s"+
			"%s\n\n"+
			"Produce a comprehensive architecture document covering ALL 11 required sections with substantial detail. "+
			"Include Mermaid diagrams for component, sequence, AND deployment views. "+
			"Respond ONLY with the JSON object — no markdown wrapping.",
		state.Requirements, state.CurrentDesign, state.ReviewFindings,
		costSection, validationInfo, debateHistory)
}

func (a *Documentation) Summarize(parsed map[string]any) string {
	sections, _ := parsed["sections"].([]any)
	diagrams, _ := parsed["diagrams"].([]any)
	adrs, _ := parsed["decision_log"].([]any)
	return fmt.Sprintf("Generated document with %d sections, %d diagrams, %d ADRs.",
		len(sections), len(diagrams), len(adrs))
}

// buildDebateHistory renders the transcript. Reviewer and validator
// entries carry their raw output so the writer can quote findings.
func buildDebateHistory(messages []models.AgentMessage) string {
	if len(messages) == 0 {
		return ""
	}
	entries := make([]string, 0, len(messages))
	for _, msg := range messages {
		if (msg.Agent == "devils_advocate" || msg.Agent == "validator") && msg.RawOutput != "" {
			entries = append(entries, fmt.Sprintf("### %s\n**Summary**: %s\n**Full Output**:\n%s",
				msg.Role, msg.Summary, msg.RawOutput))
		} else {
			entries = append(entries, fmt.Sprintf("### %s\n%s", msg.Role, msg.Summary))
		}
	}
	return "\n\n## Debate History\n" + strings.Join(entries, "\n\n")
}

// buildValidationInfo surfaces the validation score and, when present,
// the composite availability math the writer must reproduce.
func buildValidationInfo(state *models.SessionState) string {
	if state.ValidationScore == nil {
		return ""
	}
	status := "FAILED"
	if state.ValidationPassed != nil && *state.ValidationPassed {
		status = "PASSED"
	}
	compositeMath := extractCompositeAvailability(state.ValidationReport)
	return fmt.Sprintf(
		"\n\n## Design Validation\n"+
			"Score: %v/100 | %s\n"+
			"%s\n"+
			"Full report: %s\n"+
			"IMPORTANT: Include a 'Reliability & Validation' section with this score, "+
			"the composite availability math shown above, and any unresolved findings.",
		*state.ValidationScore, status, compositeMath, state.ValidationReport)
}

// extractCompositeAvailability pulls the composite-availability finding
// out of the validation report, falling back to the score breakdown.
func extractCompositeAvailability(validationReport string) string {
	if validationReport == "" {
		return ""
	}
	var report struct {
		Errors []struct {
			Code     string `json:"code"`
			Message  string `json:"message"`
			Evidence string `json:"evidence"`
		} `json:"errors"`
		ScoreBreakdown map[string]float64 `json:"score_breakdown"`
	}
	if err := json.Unmarshal([]byte(validationReport), &report); err != nil {
		return ""
	}
	for _, e := range report.Errors {
		if e.Code == "AVAIL_COMPOSITE_BELOW_TARGET" {
			return fmt.Sprintf(
				"**Composite Availability Calculation**: %s\nEvidence: %s\n"+
					"IMPORTANT: Include this exact calculation in the Reliability & Validation section.",
				e.Message, e.Evidence)
		}
	}
	if len(report.ScoreBreakdown) > 0 {
		return fmt.Sprintf("**Score Breakdown**: Reliability=%v/30, Scalability=%v/25, Consistency=%v/15, Security=%v/15, Operational=%v/15",
			report.ScoreBreakdown["reliability"], report.ScoreBreakdown["scalability"],
			report.ScoreBreakdown["consistency"], report.ScoreBreakdown["security"],
			report.ScoreBreakdown["operational"])
	}
	return ""
}

// preformatCostTables turns the cost analyzer's JSON into Markdown
// tables so the LLM only has to include them verbatim.
func preformatCostTables(costJSON string) string {
	if costJSON == "" {
		return "## Cost Analysis Data\n\nNo cost data available."
	}

	var costData map[string]any
	if err := json.Unmarshal([]byte(costJSON), &costData); err != nil {
		return fmt.Sprintf("## Cost Analysis Data\n\n```json\n%s\n```", costJSON)
	}

	lines := []string{"## Cost Analysis Data (include BOTH tables in the document)\n"}
	tiers, _ := costData["scale_tiers"].([]any)
	if len(tiers) > 0 {
		lines = append(lines, formatSummaryTable(tiers)...)
		lines = append(lines, formatBreakdownTable(tiers)...)
	}
	lines = append(lines, formatTipsAndRecommendation(costData)...)

	raw := costJSON
	if len(raw) > 3000 {
		raw = raw[:3000]
	}
	lines = append(lines, fmt.Sprintf("\nFull raw cost data for reference:\n```json\n%s\n```", raw))

	return strings.Join(lines, "\n")
}

func formatSummaryTable(tiers []any) []string {
	lines := []string{
		"### Summary by Provider and Tier\n",
		"| Tier | AWS | GCP | Azure |",
	}
	for _, t := range tiers {
		tier, _ := t.(map[string]any)
		name, _ := tier["tier_name"].(string)
		if name == "" {
			name = "?"
		}
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s |",
			name,
			formatCostCell(providerTotal(tier, "aws")),
			formatCostCell(providerTotal(tier, "gcp")),
			formatCostCell(providerTotal(tier, "azure"))))
	}
	return lines
}

func formatBreakdownTable(tiers []any) []string {
	lines := []string{"\n### Detailed Breakdown (Startup Tier — AWS)\n"}
	startup, _ := tiers[0].(map[string]any)
	aws, _ := startup["aws"].(map[string]any)
	breakdown, _ := aws["breakdown"].([]any)
	if len(breakdown) == 0 {
		return lines
	}

	lines = append(lines,
		"| Category | Service | Specs | Monthly USD |",
		"|----------|---------|-------|-------------|")
	for _, b := range breakdown {
		item, _ := b.(map[string]any)
		monthly := item["monthly_usd"]
		if monthly == nil {
			monthly = "N/A"
		}
		lines = append(lines, fmt.Sprintf("| %v | %v | %v | $%v |",
			orEmpty(item["category"]), orEmpty(item["service"]), orEmpty(item["specs"]), monthly))
	}
	return lines
}

func formatTipsAndRecommendation(costData map[string]any) []string {
	var lines []string

	tips, _ := costData["cost_optimization_tips"].([]any)
	if len(tips) > 0 {
		lines = append(lines, "\n### Cost Optimization Tips\n")
		for i, t := range tips {
			tip, _ := t.(map[string]any)
			savings := tip["estimated_savings_percent"]
			if savings == nil {
				savings = "?"
			}
			tradeoff := tip["tradeoff"]
			if tradeoff == nil {
				tradeoff = "N/A"
			}
			lines = append(lines, fmt.Sprintf("%d. **%v** — ~%v%% savings (Tradeoff: %v)",
				i+1, orEmpty(tip["tip"]), savings, tradeoff))
		}
	}

	cheapest, _ := costData["cheapest_path"].(map[string]any)
	if len(cheapest) > 0 {
		provider, _ := cheapest["provider"].(string)
		if provider == "" {
			provider = "N/A"
		}
		reasoning, _ := cheapest["reasoning"].(string)
		costRange := cheapest["estimated_monthly_range"]
		if costRange == nil {
			costRange = "N/A"
		}
		lines = append(lines,
			fmt.Sprintf("\n**Recommended Provider**: %s — %s", strings.ToUpper(provider), reasoning),
			fmt.Sprintf("**Estimated Range**: %v", costRange))
	}

	return lines
}

func providerTotal(tier map[string]any, provider string) any {
	p, _ := tier[provider].(map[string]any)
	total, ok := p["total_monthly_usd"]
	if !ok {
		return "N/A"
	}
	return total
}

// formatCostCell renders numeric costs as dollar amounts with thousands
// separators; anything else passes through as text.
func formatCostCell(value any) string {
	switch v := value.(type) {
	case float64:
		if v == float64(int64(v)) {
			return "$" + commaSeparated(int64(v))
		}
		return fmt.Sprintf("$%s", strconv.FormatFloat(v, 'f', -1, 64))
	case int:
		return "$" + commaSeparated(int64(v))
	}
	return fmt.Sprintf("%v", value)
}

func commaSeparated(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}

func orEmpty(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
