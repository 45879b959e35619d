// Package validation is the deterministic design review gate. Eight
// validators inspect the architect's JSON artifact and produce a scored
// report; no LLM calls, no network, same input always yields the same
// report.
package validation

import (
	"fmt"
	"sort"
)

// Severity of a validation finding.
type Severity string

const (
	SeverityCritical Severity = "critical" // design is fundamentally broken
	SeverityHigh     Severity = "high"     // serious gap, will cause production issues
	SeverityMedium   Severity = "medium"   // should be addressed, not blocking
	SeverityLow      Severity = "low"      // suggestion for improvement
)

// rank orders severities for sorting, critical first.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// Code identifies a validation rule. Domain pattern rules contribute
// their own codes beyond this fixed set.
type Code string

const (
	CodeSchemaMissingField    Code = "SCHEMA_MISSING_FIELD"
	CodeSchemaInvalidType     Code = "SCHEMA_INVALID_TYPE"
	CodeSchemaInvalidValue    Code = "SCHEMA_INVALID_VALUE"
	CodeSchemaEmptyComponents Code = "SCHEMA_EMPTY_COMPONENTS"

	CodeSPOFDatabase             Code = "SPOF_DATABASE"
	CodeSPOFCache                Code = "SPOF_CACHE"
	CodeSPOFGateway              Code = "SPOF_GATEWAY"
	CodeSPOFQueue                Code = "SPOF_QUEUE"
	CodeSPOFGeneric              Code = "SPOF_GENERIC"
	CodeAvailTargetUnreachable   Code = "AVAIL_TARGET_UNREACHABLE"
	CodeAvailCompositeBelowTarget Code = "AVAIL_COMPOSITE_BELOW_TARGET"
	CodeAvailNoMultiAZ           Code = "AVAIL_NO_MULTI_AZ"
	CodeAvailNoReplication       Code = "AVAIL_NO_REPLICATION"
	CodeAvailSingleRegionHighSLA Code = "AVAIL_SINGLE_REGION_HIGH_SLA"

	CodeCapThroughputExceedsBenchmark Code = "CAP_THROUGHPUT_EXCEEDS_BENCHMARK"
	CodeCapNoAutoscaling              Code = "CAP_NO_AUTOSCALING"
	CodeCapSingleNodeHighRPS          Code = "CAP_SINGLE_NODE_HIGH_RPS"
	CodeCapNoSharding                 Code = "CAP_NO_SHARDING"
	CodeCapHotspotRisk                Code = "CAP_HOTSPOT_RISK"
	CodeCapNoScalingStrategy          Code = "CAP_NO_SCALING_STRATEGY"

	CodeConsistEventualNoJustification   Code = "CONSIST_EVENTUAL_NO_JUSTIFICATION"
	CodeConsistStrongMultiRegionLatency  Code = "CONSIST_STRONG_MULTI_REGION_LATENCY"
	CodeConsistStrongWithEventualDB      Code = "CONSIST_STRONG_WITH_EVENTUAL_DB"
	CodeConsistMissingStrategy           Code = "CONSIST_MISSING_STRATEGY"

	CodeContraEventDrivenNoBroker     Code = "CONTRA_EVENT_DRIVEN_NO_BROKER"
	CodeContraStrongConsistEventualDB Code = "CONTRA_STRONG_CONSIST_EVENTUAL_DB"
	CodeContraServerlessWithK8s       Code = "CONTRA_SERVERLESS_WITH_K8S"
	CodeContraLowLatencyManyHops      Code = "CONTRA_LOW_LATENCY_MANY_HOPS"
	CodeContraMultiRegionSingleDeploy Code = "CONTRA_MULTI_REGION_SINGLE_DEPLOY"
	CodeContraStyleMismatch           Code = "CONTRA_STYLE_MISMATCH"
	CodeContraStatelessWithLocalState Code = "CONTRA_STATELESS_WITH_LOCAL_STATE"

	CodeOpsTooManyServices     Code = "OPS_TOO_MANY_SERVICES"
	CodeOpsOverEngineered      Code = "OPS_OVER_ENGINEERED"
	CodeOpsKafkaLowThroughput  Code = "OPS_KAFKA_LOW_THROUGHPUT"
	CodeOpsMultiRegionMVP      Code = "OPS_MULTI_REGION_MVP"
	CodeOpsEnterpriseForStartup Code = "OPS_ENTERPRISE_FOR_STARTUP"

	CodeMissingAuth         Code = "MISSING_AUTH"
	CodeMissingAnalytics    Code = "MISSING_ANALYTICS"
	CodeMissingDR           Code = "MISSING_DR"
	CodeMissingMonitoring   Code = "MISSING_MONITORING"
	CodeMissingLogging      Code = "MISSING_LOGGING"
	CodeMissingRateLimiting Code = "MISSING_RATE_LIMITING"
	CodeMissingEncryption   Code = "MISSING_ENCRYPTION"
	CodeMissingSearch       Code = "MISSING_SEARCH"
	CodeMissingNotification Code = "MISSING_NOTIFICATION"
	CodeMissingCaching      Code = "MISSING_CACHING"
)

// Finding is a single validation result.
type Finding struct {
	Code       Code     `json:"code"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Component  string   `json:"component,omitempty"`
	Field      string   `json:"field,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Evidence   string   `json:"evidence,omitempty"`
	Category   string   `json:"category,omitempty"`
}

// ScoreBreakdown holds per-category scores. Each category starts at its
// cap and has penalties subtracted, floored at zero.
type ScoreBreakdown struct {
	Reliability float64 `json:"reliability"` // max 30
	Scalability float64 `json:"scalability"` // max 25
	Consistency float64 `json:"consistency"` // max 15
	Security    float64 `json:"security"`    // max 15
	Operational float64 `json:"operational"` // max 15
}

// Total sums the category scores.
func (b ScoreBreakdown) Total() float64 {
	total := b.Reliability + b.Scalability + b.Consistency + b.Security + b.Operational
	if total < 0 {
		return 0
	}
	return total
}

func fullBreakdown() ScoreBreakdown {
	return ScoreBreakdown{
		Reliability: 30,
		Scalability: 25,
		Consistency: 15,
		Security:    15,
		Operational: 15,
	}
}

// penaltyWeights maps severity and scoring category to the points
// deducted per finding.
var penaltyWeights = map[Severity]map[string]float64{
	SeverityCritical: {"reliability": 15, "scalability": 12, "consistency": 8, "security": 8, "operational": 8},
	SeverityHigh:     {"reliability": 8, "scalability": 6, "consistency": 5, "security": 5, "operational": 5},
	SeverityMedium:   {"reliability": 4, "scalability": 3, "consistency": 3, "security": 3, "operational": 3},
	SeverityLow:      {"reliability": 1, "scalability": 1, "consistency": 1, "security": 1, "operational": 1},
}

// codeCategories assigns each rule code to a scoring category. Unknown
// codes (domain pattern rules) fall back to operational.
var codeCategories = map[Code]string{
	CodeSPOFDatabase:              "reliability",
	CodeSPOFCache:                 "reliability",
	CodeSPOFGateway:               "reliability",
	CodeSPOFQueue:                 "reliability",
	CodeSPOFGeneric:               "reliability",
	CodeAvailTargetUnreachable:    "reliability",
	CodeAvailCompositeBelowTarget: "reliability",
	CodeAvailNoMultiAZ:            "reliability",
	CodeAvailNoReplication:        "reliability",
	CodeAvailSingleRegionHighSLA:  "reliability",
	CodeMissingDR:                 "reliability",
	CodeSchemaMissingField:        "reliability",
	CodeSchemaInvalidType:         "reliability",
	CodeSchemaInvalidValue:        "reliability",
	CodeSchemaEmptyComponents:     "reliability",

	CodeCapThroughputExceedsBenchmark: "scalability",
	CodeCapNoAutoscaling:              "scalability",
	CodeCapSingleNodeHighRPS:          "scalability",
	CodeCapNoSharding:                 "scalability",
	CodeCapHotspotRisk:                "scalability",
	CodeCapNoScalingStrategy:          "scalability",
	CodeMissingCaching:                "scalability",

	CodeConsistEventualNoJustification:  "consistency",
	CodeConsistStrongMultiRegionLatency: "consistency",
	CodeConsistStrongWithEventualDB:     "consistency",
	CodeConsistMissingStrategy:          "consistency",
	CodeContraEventDrivenNoBroker:       "consistency",
	CodeContraStrongConsistEventualDB:   "consistency",
	CodeContraServerlessWithK8s:         "consistency",
	CodeContraLowLatencyManyHops:        "consistency",
	CodeContraMultiRegionSingleDeploy:   "consistency",
	CodeContraStyleMismatch:             "consistency",
	CodeContraStatelessWithLocalState:   "consistency",

	CodeMissingAuth:         "security",
	CodeMissingEncryption:   "security",
	CodeMissingRateLimiting: "security",

	CodeOpsTooManyServices:      "operational",
	CodeOpsOverEngineered:       "operational",
	CodeOpsKafkaLowThroughput:   "operational",
	CodeOpsMultiRegionMVP:       "operational",
	CodeOpsEnterpriseForStartup: "operational",
	CodeMissingAnalytics:        "operational",
	CodeMissingMonitoring:       "operational",
	CodeMissingLogging:          "operational",
	CodeMissingSearch:           "operational",
	CodeMissingNotification:     "operational",
}

// Report is the output of a full validation run.
type Report struct {
	Passed         bool           `json:"passed"`
	Score          float64        `json:"score"`
	ScoreBreakdown ScoreBreakdown `json:"score_breakdown"`
	Summary        map[string]int `json:"summary"`
	Errors         []Finding      `json:"errors"`
	Verdict        string         `json:"verdict"`
}

// BuildReport computes the score, pass gate, and verdict from raw
// findings. Findings are sorted by descending severity.
func BuildReport(findings []Finding) *Report {
	summary := map[string]int{"critical": 0, "high": 0, "medium": 0, "low": 0}
	for _, f := range findings {
		summary[string(f.Severity)]++
	}

	breakdown := fullBreakdown()
	for _, f := range findings {
		category, ok := codeCategories[f.Code]
		if !ok {
			category = "operational"
		}
		penalty := penaltyWeights[f.Severity][category]
		switch category {
		case "reliability":
			breakdown.Reliability = floorZero(breakdown.Reliability - penalty)
		case "scalability":
			breakdown.Scalability = floorZero(breakdown.Scalability - penalty)
		case "consistency":
			breakdown.Consistency = floorZero(breakdown.Consistency - penalty)
		case "security":
			breakdown.Security = floorZero(breakdown.Security - penalty)
		case "operational":
			breakdown.Operational = floorZero(breakdown.Operational - penalty)
		}
	}

	score := breakdown.Total()
	passed := summary["critical"] == 0 && score >= 60

	var verdict string
	switch {
	case passed && score >= 80:
		verdict = fmt.Sprintf("PASS — Strong design (score: %.0f/100). Ready for review.", score)
	case passed:
		verdict = fmt.Sprintf("PASS — Acceptable design (score: %.0f/100) with %d high-severity findings to address.", score, summary["high"])
	case summary["critical"] > 0:
		verdict = fmt.Sprintf("FAIL — %d critical issue(s) must be resolved before review. Score: %.0f/100.", summary["critical"], score)
	default:
		verdict = fmt.Sprintf("FAIL — Score %.0f/100 is below threshold (60). Address high-severity findings.", score)
	}

	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.rank() < sorted[j].Severity.rank()
	})

	return &Report{
		Passed:         passed,
		Score:          score,
		ScoreBreakdown: breakdown,
		Summary:        summary,
		Errors:         sorted,
		Verdict:        verdict,
	}
}

func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
