package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func docOutput() map[string]any {
	return map[string]any{
		"title":             "URL Shortener Architecture",
		"executive_summary": "A globally distributed URL shortener serving 10K RPS.",
		"sections": []any{
			map[string]any{"heading": "Architecture Overview", "level": float64(1), "content": "Event-driven core."},
			map[string]any{"heading": "Data Flow", "level": float64(2), "content": "Reads hit the cache first."},
		},
		"diagrams": []any{
			map[string]any{"type": "component", "title": "Component View", "mermaid_code": "graph TD\nA-->B"},
		},
		"decision_log": []any{
			map[string]any{
				"id": "ADR-001", "title": "Use Redis for hot keys", "status": "accepted",
				"context": "Read-heavy traffic", "decision": "Cache-aside with Redis",
				"consequences": "Extra invalidation path",
			},
		},
	}
}

func TestRenderMarkdownFullDocument(t *testing.T) {
	md := RenderMarkdown(docOutput())

	assert.True(t, strings.HasPrefix(md, "# URL Shortener Architecture\n"))
	assert.Contains(t, md, "## Executive Summary\n\nA globally distributed URL shortener")
	// level maps to heading depth: level 1 -> ##, level 2 -> ###
	assert.Contains(t, md, "## Architecture Overview\n\nEvent-driven core.")
	assert.Contains(t, md, "### Data Flow\n\nReads hit the cache first.")
	assert.Contains(t, md, "## Architecture Diagrams")
	assert.Contains(t, md, "```mermaid\ngraph TD\nA-->B\n```")
	assert.Contains(t, md, "### ADR-001: Use Redis for hot keys")
	assert.Contains(t, md, "**Status**: accepted")
}

func TestRenderMarkdownDefaultsTitleAndLevel(t *testing.T) {
	md := RenderMarkdown(map[string]any{
		"sections": []any{map[string]any{"heading": "Only Section", "content": "body"}},
	})

	assert.True(t, strings.HasPrefix(md, "# Architecture Document\n"))
	assert.Contains(t, md, "### Only Section")
}

func TestRenderMarkdownValidationSection(t *testing.T) {
	out := docOutput()
	out["validation_score"] = float64(85)
	out["validation_passed"] = true
	out["validation_summary"] = map[string]any{"critical": float64(0), "high": float64(2), "medium": float64(1), "low": float64(0)}
	out["validation_verdict"] = "PASS — Good design with minor improvements needed (score: 85/100)."
	out["validation_findings"] = []any{
		map[string]any{"severity": "high", "message": "No autoscaling configured", "category": "scalability"},
		map[string]any{"severity": "high", "message": "Missing idempotency keys", "category": "domain_pattern", "evidence": "Domain: Payments"},
	}

	md := RenderMarkdown(out)

	assert.Contains(t, md, "## Design Validation")
	assert.Contains(t, md, "**Score**: 85/100 | **Status**: PASSED")
	assert.Contains(t, md, "| HIGH | 2 |")
	// zero-count severities are omitted from the breakdown
	assert.NotContains(t, md, "| CRITICAL | 0 |")
	assert.Contains(t, md, "| HIGH | No autoscaling configured | General |")
	assert.Contains(t, md, "| HIGH | Missing idempotency keys | Domain: Payments |")
	assert.Contains(t, md, "> PASS — Good design with minor improvements needed")
}

func TestRenderMarkdownOmitsValidationWhenAbsent(t *testing.T) {
	md := RenderMarkdown(docOutput())
	assert.NotContains(t, md, "## Design Validation")
}

func TestRenderMarkdownSkipsADRSectionWhenInline(t *testing.T) {
	out := docOutput()
	out["sections"] = []any{
		map[string]any{"heading": "Decisions", "level": float64(1), "content": "See ADR-001 above."},
	}

	md := RenderMarkdown(out)

	assert.NotContains(t, md, "## Architecture Decision Records")
}
