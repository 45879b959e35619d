package validation

import (
	"regexp"
	"strings"

	"github.com/archadvisor/archadvisor/pkg/models"
	"github.com/archadvisor/archadvisor/pkg/validation/domainrules"
)

// DomainPatternValidator detects the application domain from the
// requirements text and checks the design against that domain's
// mandatory patterns, recommended patterns, and anti-patterns.
type DomainPatternValidator struct{}

func (DomainPatternValidator) Name() string { return "DomainPatternValidator" }

func (v DomainPatternValidator) Validate(design models.Design, requirements string) []Finding {
	domain := domainrules.Detect(requirements)
	if domain == nil {
		return nil
	}

	var findings []Finding
	designText := design.FlattenText()
	components := design.Components()

	// mandatory and recommended patterns flag when MISSING
	for _, p := range domain.MandatoryPatterns {
		if !checkPattern(p, designText, components) {
			findings = append(findings, patternFinding(p, domain.DisplayName))
		}
	}
	for _, p := range domain.RecommendedPatterns {
		if !checkPattern(p, designText, components) {
			findings = append(findings, patternFinding(p, domain.DisplayName))
		}
	}
	// anti-patterns flag when FOUND
	for _, p := range domain.AntiPatterns {
		if checkPattern(p, designText, components) {
			findings = append(findings, patternFinding(p, domain.DisplayName))
		}
	}

	return findings
}

// DetectedDomain returns the matched domain's display name for session
// metadata, empty when no domain matches.
func (DomainPatternValidator) DetectedDomain(requirements string) string {
	if d := domainrules.Detect(requirements); d != nil {
		return d.DisplayName
	}
	return ""
}

func checkPattern(p domainrules.Pattern, designText string, components []map[string]any) bool {
	switch p.Check {
	case "component_or_tech_mentions_any":
		return componentOrTechMentionsAny(components, p.Terms)
	case "component_type_exists":
		return componentTypeExists(components, p.Terms)
	default: // "design_mentions_any"
		return mentionsAny(designText, p.Terms)
	}
}

// mentionsAny treats each term as a case-insensitive regex, falling
// back to plain substring match when the term is not a valid pattern.
func mentionsAny(text string, terms []string) bool {
	for _, term := range terms {
		re, err := regexp.Compile("(?i)" + term)
		if err != nil {
			if strings.Contains(text, strings.ToLower(term)) {
				return true
			}
			continue
		}
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func componentOrTechMentionsAny(components []map[string]any, terms []string) bool {
	var sb strings.Builder
	for _, comp := range components {
		sb.WriteString(" " + strings.ToLower(models.Str(comp["name"])))
		sb.WriteString(" " + strings.ToLower(models.Str(comp["responsibility"])))
		sb.WriteString(" " + strings.ToLower(models.Str(comp["type"])))
		for _, t := range techStack(comp) {
			sb.WriteString(" " + t)
		}
		sb.WriteString(" " + strings.ToLower(models.Str(comp["scaling_strategy"])))
	}
	return mentionsAny(sb.String(), terms)
}

func componentTypeExists(components []map[string]any, terms []string) bool {
	for _, comp := range components {
		typ := compType(comp)
		name := strings.ToLower(models.Str(comp["name"]))
		stack := techStack(comp)

		for _, term := range terms {
			term = strings.ToLower(term)
			if strings.Contains(typ, term) || strings.Contains(name, term) {
				return true
			}
			for _, tech := range stack {
				if strings.Contains(tech, term) {
					return true
				}
			}
		}
	}
	return false
}

func patternFinding(p domainrules.Pattern, domainName string) Finding {
	severity := map[string]Severity{
		"critical": SeverityCritical,
		"high":     SeverityHigh,
		"medium":   SeverityMedium,
		"low":      SeverityLow,
		"info":     SeverityLow,
		"warning":  SeverityHigh,
	}[strings.ToLower(p.Severity)]
	if severity == "" {
		severity = SeverityMedium
	}

	msg := p.Message
	if msg == "" {
		msg = p.Description
	}

	return Finding{
		Code:       Code(p.ID),
		Severity:   severity,
		Message:    msg,
		Suggestion: p.Description,
		Evidence:   "Domain: " + domainName,
		Category:   "domain_pattern",
	}
}
