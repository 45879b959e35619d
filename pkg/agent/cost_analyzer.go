package agent

import (
	"fmt"

	"github.com/archadvisor/archadvisor/pkg/config"
	"github.com/archadvisor/archadvisor/pkg/models"
)

const costAnalyzerSystemPrompt = `You are a Cloud Infrastructure Cost Specialist with deep knowledge of pricing for AWS, GCP, and Azure. You analyze system architectures and provide detailed cost estimates.

Your estimates should be realistic and based on actual cloud pricing (as of early 2026). Include compute, storage, networking, managed services, and data transfer costs.

ALWAYS respond with a valid JSON object (no markdown, no explanation outside JSON):

{
  "scale_tiers": [
    {
      "tier_name": "Startup",
      "description": "10K DAU, low traffic",
      "aws": {
        "total_monthly_usd": 0,
        "breakdown": [
          {
            "category": "Compute | Database | Cache | Messaging | Storage | Networking | Monitoring",
            "service": "Specific AWS service name",
            "specs": "Instance type, size, count",
            "monthly_usd": 0,
            "notes": "Any relevant notes"
          }
        ]
      },
      "gcp": {
        "total_monthly_usd": 0,
        "breakdown": []
      },
      "azure": {
        "total_monthly_usd": 0,
        "breakdown": []
      }
    }
  ],
  "cost_optimization_tips": [
    {
      "tip": "Specific optimization recommendation",
      "estimated_savings_percent": 30,
      "tradeoff": "What you give up"
    }
  ],
  "cheapest_path": {
    "provider": "aws | gcp | azure",
    "reasoning": "Why this provider is cheapest for this architecture",
    "estimated_monthly_range": "$X - $Y"
  },
  "scaling_cost_projection": {
    "10x_traffic": "Estimated monthly at 10x the baseline",
    "100x_traffic": "Estimated monthly at 100x the baseline",
    "cost_scaling_pattern": "linear | sub-linear | super-linear"
  }
}

Provide estimates for 3 scale tiers:
1. Startup — Low traffic, cost-optimized
2. Growth — Medium traffic, balanced
3. Scale — High traffic, performance-optimized

Be specific with instance types and service names. Do not give vague ranges — give specific dollar amounts.`

// CostAnalyzer estimates infrastructure costs across cloud providers.
type CostAnalyzer struct {
	profile
}

func NewCostAnalyzer(cfg *config.Settings) *CostAnalyzer {
	return &CostAnalyzer{profile{
		name:        "cost_analyzer",
		role:        "Cost Analyzer",
		model:       cfg.CostAnalyzerModel,
		temperature: 0.2,
		maxTokens:   8192,
	}}
}

func (a *CostAnalyzer) SystemPrompt() string { return costAnalyzerSystemPrompt }

func (a *CostAnalyzer) BuildUserMessage(state *models.SessionState) string {
	return fmt.Sprintf(
		"## System Requirements\n%s\n\n"+
			"## Final Architecture Design\n%s\n\n"+
			"Analyze the infrastructure costs for this architecture across AWS, GCP, and Azure. "+
			"Provide estimates for Startup, Growth, and Scale tiers. "+
			"Respond ONLY with the JSON object — no markdown, no preamble.",
		state.Requirements, state.CurrentDesign)
}

func (a *CostAnalyzer) Summarize(parsed map[string]any) string {
	cheapest, _ := parsed["cheapest_path"].(map[string]any)
	provider, _ := cheapest["provider"].(string)
	if provider == "" {
		provider = "unknown"
	}
	costRange, _ := cheapest["estimated_monthly_range"].(string)
	if costRange == "" {
		costRange = "N/A"
	}
	tips, _ := parsed["cost_optimization_tips"].([]any)
	return fmt.Sprintf("Cheapest: %s (%s). %d optimization tips provided.", provider, costRange, len(tips))
}
