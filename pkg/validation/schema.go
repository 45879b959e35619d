package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/archadvisor/archadvisor/pkg/models"
)

var requiredTopLevelKeys = []string{
	"overview", "architecture_style", "components",
	"non_functional", "tech_decisions", "deployment",
}

var validStyles = map[string]bool{
	"microservices":    true,
	"event-driven":     true,
	"event_driven":     true,
	"monolith":         true,
	"serverless":       true,
	"hybrid":           true,
	"modular_monolith": true,
}

var validConsistency = map[string]bool{
	"strong": true, "eventual": true, "causal": true,
}

// SchemaValidator checks required fields, types, and value constraints.
// It runs first; the other validators assume a structurally sound
// document.
type SchemaValidator struct{}

func (SchemaValidator) Name() string { return "SchemaValidator" }

func (SchemaValidator) Validate(design models.Design, requirements string) []Finding {
	var findings []Finding

	for _, key := range requiredTopLevelKeys {
		if _, ok := design[key]; !ok {
			findings = append(findings, Finding{
				Code:       CodeSchemaMissingField,
				Severity:   SeverityCritical,
				Message:    fmt.Sprintf("Required field '%s' is missing from architecture design", key),
				Field:      key,
				Suggestion: fmt.Sprintf("Add '%s' to the architecture JSON", key),
			})
		}
	}

	if raw, ok := design["components"]; ok {
		list, isList := raw.([]any)
		switch {
		case !isList:
			findings = append(findings, Finding{
				Code:     CodeSchemaInvalidType,
				Severity: SeverityCritical,
				Message:  "'components' must be a list",
				Field:    "components",
			})
		case len(list) == 0:
			findings = append(findings, Finding{
				Code:       CodeSchemaEmptyComponents,
				Severity:   SeverityCritical,
				Message:    "'components' list is empty — no architecture components defined",
				Field:      "components",
				Suggestion: "Define at least one component in the architecture",
			})
		default:
			for i, item := range list {
				comp, isObj := item.(map[string]any)
				if !isObj {
					continue
				}
				for _, field := range []string{"name", "type", "responsibility"} {
					if _, present := comp[field]; !present {
						name := models.Str(comp["name"])
						if name == "" {
							name = fmt.Sprintf("Component #%d", i+1)
						}
						findings = append(findings, Finding{
							Code:      CodeSchemaMissingField,
							Severity:  SeverityHigh,
							Message:   fmt.Sprintf("Component #%d is missing '%s'", i+1, field),
							Component: name,
							Field:     fmt.Sprintf("components[%d].%s", i, field),
						})
					}
				}
			}
		}
	}

	if style := models.Str(design["architecture_style"]); style != "" {
		normalized := strings.ReplaceAll(strings.ToLower(style), " ", "_")
		if !validStyles[normalized] {
			findings = append(findings, Finding{
				Code:       CodeSchemaInvalidValue,
				Severity:   SeverityMedium,
				Message:    fmt.Sprintf("Architecture style '%s' is not a recognized pattern", style),
				Field:      "architecture_style",
				Suggestion: "Use one of: " + strings.Join(sortedKeys(validStyles), ", "),
			})
		}
	}

	nf := design.NonFunctional()
	if avail := nf["availability_target"]; models.Str(avail) != "" || isNumber(avail) {
		parsed, ok := models.ParseAvailability(avail)
		if !ok {
			findings = append(findings, Finding{
				Code:       CodeSchemaInvalidValue,
				Severity:   SeverityMedium,
				Message:    fmt.Sprintf("Cannot parse availability target: '%v'", avail),
				Field:      "non_functional.availability_target",
				Suggestion: "Use format like '99.99%' or '99.9%'",
			})
		} else if parsed < 90 || parsed > 99.9999 {
			findings = append(findings, Finding{
				Code:     CodeSchemaInvalidValue,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("Availability target %v is outside realistic range (90%% - 99.9999%%)", avail),
				Field:    "non_functional.availability_target",
			})
		}
	}

	if consistency := models.Str(nf["data_consistency"]); consistency != "" {
		if !validConsistency[strings.ToLower(consistency)] {
			findings = append(findings, Finding{
				Code:       CodeSchemaInvalidValue,
				Severity:   SeverityMedium,
				Message:    fmt.Sprintf("Data consistency model '%s' is not recognized", consistency),
				Field:      "non_functional.data_consistency",
				Suggestion: "Use one of: " + strings.Join(sortedKeys(validConsistency), ", "),
			})
		}
	}

	for i, dec := range design.TechDecisions() {
		if models.Str(dec["reasoning"]) == "" {
			name := models.Str(dec["decision"])
			if name == "" {
				name = "unknown"
			}
			findings = append(findings, Finding{
				Code:       CodeSchemaMissingField,
				Severity:   SeverityLow,
				Message:    fmt.Sprintf("Tech decision #%d '%s' has no reasoning", i+1, name),
				Field:      fmt.Sprintf("tech_decisions[%d].reasoning", i),
				Suggestion: "Always justify technology choices",
			})
		}
	}

	return findings
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isNumber(v any) bool {
	_, ok := v.(float64)
	return ok
}
