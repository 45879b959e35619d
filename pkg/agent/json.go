package agent

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// ParseLoose extracts a JSON object from LLM output, tolerating the
// formatting mistakes models commonly make: markdown code fences,
// trailing commas, and prose around the object. Recovery is attempted
// in three passes before giving up.
func ParseLoose(agentName, text string) (map[string]any, error) {
	cleaned := stripCodeFences(text)

	var out map[string]any
	if err := json.Unmarshal([]byte(cleaned), &out); err == nil {
		return out, nil
	} else {
		slog.Warn("JSON parse attempt 1 failed", "agent", agentName, "error", err)
	}

	fixed := fixTrailingCommas(cleaned)
	if err := json.Unmarshal([]byte(fixed), &out); err == nil {
		slog.Info("JSON parse recovered", "agent", agentName, "method", "fix_trailing_commas")
		return out, nil
	} else {
		slog.Warn("JSON parse attempt 2 failed", "agent", agentName, "error", err)
	}

	if extracted := extractJSONObject(cleaned); extracted != "" {
		if err := json.Unmarshal([]byte(fixTrailingCommas(extracted)), &out); err == nil {
			slog.Info("JSON parse recovered", "agent", agentName, "method", "extract_object")
			return out, nil
		} else {
			slog.Warn("JSON parse attempt 3 failed", "agent", agentName, "error", err)
		}
	}

	preview := cleaned
	if len(preview) > 500 {
		preview = preview[:500]
	}
	slog.Error("JSON parse failed after all attempts",
		"agent", agentName,
		"response_length", len(text),
		"response_preview", preview,
	)
	err := json.Unmarshal([]byte(cleaned), &out)
	return nil, err
}

// stripCodeFences removes a leading ```json / ``` fence and a trailing
// ``` fence.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[7:]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[3:]
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = cleaned[:len(cleaned)-3]
	}
	return strings.TrimSpace(cleaned)
}

// fixTrailingCommas removes commas immediately before a closing brace
// or bracket.
func fixTrailingCommas(text string) string {
	return trailingCommaRe.ReplaceAllString(text, "$1")
}

// extractJSONObject finds the first balanced top-level JSON object in
// the text, tracking brace depth outside of string literals. Returns ""
// when no complete object exists.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escapeNext := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escapeNext:
			escapeNext = false
		case ch == '\\':
			escapeNext = true
		case ch == '"':
			inString = !inString
		case !inString && ch == '{':
			depth++
		case !inString && ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
