package validation

import (
	"fmt"
	"strings"

	"github.com/archadvisor/archadvisor/pkg/models"
)

// CoverageValidator cross-checks the user's requirements against the
// design: if the requirements mention analytics, the architecture must
// address analytics somewhere; likewise for auth, encryption, and the
// rest of the requirement map.
type CoverageValidator struct{}

func (CoverageValidator) Name() string { return "MissingRequirementValidator" }

func (v CoverageValidator) Validate(design models.Design, requirements string) []Finding {
	if requirements == "" {
		return nil
	}

	var findings []Finding
	flatDesign := design.FlattenText()
	reqLower := strings.ToLower(requirements)

	for _, check := range requirementChecks {
		matched := ""
		for _, kw := range check.Keywords {
			if strings.Contains(reqLower, strings.ToLower(kw)) {
				matched = kw
				break
			}
		}
		if matched == "" {
			continue
		}

		if v.designAddresses(design, flatDesign, check.Keywords) {
			continue
		}

		findings = append(findings, Finding{
			Code:     check.Code,
			Severity: severityForRequirement(check.Name),
			Message: fmt.Sprintf("Requirements mention '%s' but architecture has no corresponding component or strategy",
				matched),
			Suggestion: fmt.Sprintf("Add a %s component or address %s in the architecture", check.Name, check.Name),
			Evidence:   fmt.Sprintf("Keyword '%s' found in requirements but not in design", matched),
		})
	}

	return findings
}

func (CoverageValidator) designAddresses(design models.Design, flatDesign string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(flatDesign, strings.ToLower(kw)) {
			return true
		}
	}

	for _, comp := range design.Components() {
		text := strings.ToLower(models.Str(comp["name"]) + " " + models.Str(comp["responsibility"]) + " " +
			strings.Join(techStack(comp), " "))
		for _, kw := range keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				return true
			}
		}
	}

	combined := models.Design(design.NonFunctional()).FlattenText() + " " +
		models.Design(design.Deployment()).FlattenText()
	for _, dec := range design.TechDecisions() {
		combined += " " + models.Design(dec).FlattenText()
	}
	for _, kw := range keywords {
		if strings.Contains(combined, strings.ToLower(kw)) {
			return true
		}
	}

	return false
}

func severityForRequirement(name string) Severity {
	switch name {
	case "auth", "encryption", "disaster_recovery", "monitoring", "rate_limiting":
		return SeverityHigh
	case "analytics", "search", "notification", "caching", "logging":
		return SeverityMedium
	default:
		return SeverityLow
	}
}
