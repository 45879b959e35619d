package validation

import (
	"strings"

	"github.com/archadvisor/archadvisor/pkg/models"
)

// Validator is one deterministic design check. Implementations must be
// pure: no I/O, no randomness, same input yields the same findings.
type Validator interface {
	Name() string
	Validate(design models.Design, requirements string) []Finding
}

// componentText joins a component's name, type, scaling strategy, and
// tech stack into a lowercase haystack for keyword checks.
func componentText(comp map[string]any) string {
	parts := []string{
		models.Str(comp["name"]),
		models.Str(comp["type"]),
		models.Str(comp["scaling_strategy"]),
	}
	if stack, ok := comp["tech_stack"].([]any); ok {
		for _, t := range stack {
			parts = append(parts, models.Str(t))
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// flattenComponent renders one component as lowercase JSON text.
func flattenComponent(comp map[string]any) string {
	return models.Design(comp).FlattenText()
}

func compType(comp map[string]any) string {
	return strings.ToLower(models.Str(comp["type"]))
}

func compName(comp map[string]any) string {
	if n := models.Str(comp["name"]); n != "" {
		return n
	}
	return "Unknown"
}

func techStack(comp map[string]any) []string {
	stack, _ := comp["tech_stack"].([]any)
	out := make([]string, 0, len(stack))
	for _, t := range stack {
		if s, ok := t.(string); ok {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}
