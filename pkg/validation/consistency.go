package validation

import (
	"fmt"
	"strings"

	"github.com/archadvisor/archadvisor/pkg/models"
)

// ConsistencyValidator checks the declared data consistency model for
// feasibility and enforces that eventual consistency is a justified
// choice.
type ConsistencyValidator struct{}

func (ConsistencyValidator) Name() string { return "ConsistencyValidator" }

func (v ConsistencyValidator) Validate(design models.Design, requirements string) []Finding {
	nf := design.NonFunctional()
	consistency := strings.TrimSpace(strings.ToLower(models.Str(nf["data_consistency"])))

	if consistency == "" {
		return []Finding{{
			Code:       CodeConsistMissingStrategy,
			Severity:   SeverityMedium,
			Message:    "No data consistency strategy declared in non_functional requirements",
			Field:      "non_functional.data_consistency",
			Suggestion: "Specify: 'strong', 'eventual', or 'causal'",
		}}
	}

	var findings []Finding
	switch consistency {
	case "eventual":
		findings = append(findings, v.checkEventualJustification(design.TechDecisions())...)
	case "strong":
		findings = append(findings, v.checkStrongMultiRegion(design.Deployment(), design.FlattenText())...)
		findings = append(findings, v.checkStrongWithEventualDB(design.Components())...)
	}
	return findings
}

func (ConsistencyValidator) checkEventualJustification(decisions []map[string]any) []Finding {
	keywords := []string{
		"eventual", "consistency", "CAP", "trade-off", "tradeoff",
		"latency vs consistency", "availability over consistency",
	}

	for _, dec := range decisions {
		text := models.Str(dec["decision"]) + " " + models.Str(dec["reasoning"])
		if models.ContainsAny(text, keywords...) {
			return nil
		}
	}

	return []Finding{{
		Code:     CodeConsistEventualNoJustification,
		Severity: SeverityMedium,
		Message:  "Eventual consistency declared but no justification in tech_decisions",
		Field:    "non_functional.data_consistency",
		Suggestion: "Add a tech_decision explaining why eventual consistency was chosen: " +
			"e.g., CAP theorem tradeoff, latency requirements, read-heavy workload",
	}}
}

func (ConsistencyValidator) checkStrongMultiRegion(deployment map[string]any, flatText string) []Finding {
	multiRegion := models.ContainsAny(flatText,
		"multi-region", "multi_region", "cross-region", "geo-distributed",
		"global deployment", "multiple regions")
	if regions, ok := deployment["regions"].([]any); ok && len(regions) > 1 {
		multiRegion = true
	}
	if !multiRegion {
		return nil
	}

	return []Finding{{
		Code:     CodeConsistStrongMultiRegionLatency,
		Severity: SeverityHigh,
		Message: "Strong consistency with multi-region deployment will incur high " +
			"cross-region latency (50-200ms per write for consensus)",
		Suggestion: "Consider: (1) Causal consistency with conflict resolution, " +
			"(2) Single-leader with read replicas, or " +
			"(3) Accept eventual consistency with compensating transactions",
	}}
}

func (ConsistencyValidator) checkStrongWithEventualDB(components []map[string]any) []Finding {
	var findings []Finding

	for _, comp := range components {
		if compType(comp) != "database" {
			continue
		}
		name := compName(comp)
		text := strings.ToLower(models.Str(comp["name"]) + " " + strings.Join(techStack(comp), " "))

		for _, db := range eventuallyConsistentDBs {
			if strings.Contains(text, db) {
				findings = append(findings, Finding{
					Code:     CodeConsistStrongWithEventualDB,
					Severity: SeverityCritical,
					Message: fmt.Sprintf("Design claims 'strong' consistency but uses '%s' in '%s', which is eventually consistent by default",
						db, name),
					Component: name,
					Suggestion: fmt.Sprintf("Either: (1) Switch to a strongly consistent DB (PostgreSQL, MySQL, CockroachDB), "+
						"(2) Change consistency model to 'eventual', or "+
						"(3) Use '%s' with strong consistency settings (e.g., DynamoDB strongly consistent reads)", db),
				})
				break
			}
		}
	}

	return findings
}
