package agent

import (
	"fmt"
	"strings"
)

// RenderMarkdown turns the documentation agent's structured output into
// the final Markdown document. The workflow injects validation_score,
// validation_passed, validation_summary, validation_verdict, and
// validation_findings into the parsed output before rendering so the
// document always carries the validator's view.
func RenderMarkdown(parsed map[string]any) string {
	var lines []string

	title, _ := parsed["title"].(string)
	if title == "" {
		title = "Architecture Document"
	}
	lines = append(lines, fmt.Sprintf("# %s\n", title))

	if execSummary, _ := parsed["executive_summary"].(string); execSummary != "" {
		lines = append(lines, fmt.Sprintf("## Executive Summary\n\n%s\n", execSummary))
	}

	for _, s := range asList(parsed["sections"]) {
		section, _ := s.(map[string]any)
		level := intValue(section["level"])
		if level == 0 {
			level = 2
		}
		heading, _ := section["heading"].(string)
		content, _ := section["content"].(string)
		lines = append(lines, fmt.Sprintf("%s %s\n\n%s\n", strings.Repeat("#", level+1), heading, content))
	}

	lines = renderDiagrams(lines, parsed)
	lines = renderValidation(lines, parsed)
	lines = renderADRs(lines, parsed)

	return strings.Join(lines, "\n")
}

func renderDiagrams(lines []string, parsed map[string]any) []string {
	diagrams := asList(parsed["diagrams"])
	if len(diagrams) == 0 {
		return lines
	}
	lines = append(lines, "## Architecture Diagrams\n")
	for _, d := range diagrams {
		diagram, _ := d.(map[string]any)
		lines = append(lines,
			fmt.Sprintf("### %v\n", diagram["title"]),
			fmt.Sprintf("```mermaid\n%v\n```\n", diagram["mermaid_code"]))
	}
	return lines
}

func renderValidation(lines []string, parsed map[string]any) []string {
	score, ok := parsed["validation_score"]
	if !ok || score == nil {
		return lines
	}

	status := "FAILED"
	if passed, _ := parsed["validation_passed"].(bool); passed {
		status = "PASSED"
	}

	lines = append(lines, "## Design Validation\n")
	lines = append(lines, fmt.Sprintf("**Score**: %v/100 | **Status**: %s\n", score, status))

	if summary, _ := parsed["validation_summary"].(map[string]any); len(summary) > 0 {
		lines = append(lines,
			"### Severity Breakdown\n",
			"| Severity | Count |",
			"|----------|-------|")
		for _, sev := range []string{"critical", "high", "medium", "low"} {
			if count := intValue(summary[sev]); count > 0 {
				lines = append(lines, fmt.Sprintf("| %s | %d |", strings.ToUpper(sev), count))
			}
		}
		lines = append(lines, "")
	}

	if findings := asList(parsed["validation_findings"]); len(findings) > 0 {
		lines = append(lines,
			"### Critical & High Findings\n",
			"| Severity | Finding | Source |",
			"|----------|---------|--------|")
		for _, f := range findings {
			finding, _ := f.(map[string]any)
			sev, _ := finding["severity"].(string)
			msg, _ := finding["message"].(string)
			if len(msg) > 120 {
				msg = msg[:120]
			}
			source := "General"
			if category, _ := finding["category"].(string); category == "domain_pattern" {
				if evidence, _ := finding["evidence"].(string); evidence != "" {
					source = evidence
				} else {
					source = "—"
				}
			}
			lines = append(lines, fmt.Sprintf("| %s | %s | %s |", strings.ToUpper(sev), msg, source))
		}
		lines = append(lines, "")
	}

	if verdict, _ := parsed["validation_verdict"].(string); verdict != "" {
		lines = append(lines, fmt.Sprintf("> %s\n", verdict))
	}

	return lines
}

// renderADRs appends the decision log unless a section already contains
// ADR entries inline.
func renderADRs(lines []string, parsed map[string]any) []string {
	decisions := asList(parsed["decision_log"])
	if len(decisions) == 0 {
		return lines
	}
	var sectionsText strings.Builder
	for _, s := range asList(parsed["sections"]) {
		section, _ := s.(map[string]any)
		content, _ := section["content"].(string)
		sectionsText.WriteString(content)
		sectionsText.WriteString(" ")
	}
	if strings.Contains(sectionsText.String(), "ADR-") {
		return lines
	}

	lines = append(lines, "## Architecture Decision Records\n")
	for _, d := range decisions {
		adr, _ := d.(map[string]any)
		lines = append(lines,
			fmt.Sprintf("### %v: %v\n", adr["id"], adr["title"]),
			fmt.Sprintf("**Status**: %v\n", adr["status"]),
			fmt.Sprintf("**Context**: %v\n", adr["context"]),
			fmt.Sprintf("**Decision**: %v\n", adr["decision"]),
			fmt.Sprintf("**Consequences**: %v\n", adr["consequences"]))
	}
	return lines
}

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}
