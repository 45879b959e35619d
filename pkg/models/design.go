package models

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Design is the architecture artifact produced by the architect agent.
// The shape is LLM-generated JSON, so it is kept as a generic document
// with typed accessors that tolerate missing or malformed fields.
type Design map[string]any

// ParseDesign parses an architecture JSON document.
func ParseDesign(raw string) (Design, error) {
	var d Design
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, err
	}
	return d, nil
}

// Components returns the components list, empty when absent or mistyped.
func (d Design) Components() []map[string]any {
	return asObjectList(d["components"])
}

// NonFunctional returns the non_functional block.
func (d Design) NonFunctional() map[string]any {
	return asObject(d["non_functional"])
}

// Deployment returns the deployment block.
func (d Design) Deployment() map[string]any {
	return asObject(d["deployment"])
}

// TechDecisions returns the tech_decisions list.
func (d Design) TechDecisions() []map[string]any {
	return asObjectList(d["tech_decisions"])
}

// ComponentNames returns all component names lowercased.
func (d Design) ComponentNames() []string {
	comps := d.Components()
	names := make([]string, 0, len(comps))
	for _, c := range comps {
		names = append(names, strings.ToLower(Str(c["name"])))
	}
	return names
}

// TechStack returns every tech_stack entry across all components, lowercased.
func (d Design) TechStack() []string {
	var techs []string
	for _, c := range d.Components() {
		for _, t := range asStringList(c["tech_stack"]) {
			techs = append(techs, strings.ToLower(t))
		}
	}
	return techs
}

// FlattenText renders the whole design as lowercase JSON for keyword search.
func (d Design) FlattenText() string {
	b, err := json.Marshal(map[string]any(d))
	if err != nil {
		return ""
	}
	return strings.ToLower(string(b))
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}

func asObjectList(v any) []map[string]any {
	raw, _ := v.([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func asStringList(v any) []string {
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Str coerces a generic JSON value to a string, returning "" for non-strings.
func Str(v any) string {
	s, _ := v.(string)
	return s
}

var numberRe = regexp.MustCompile(`[\d.]+`)

// ParseThroughput parses throughput written in various formats:
// "10K RPS", "10000", "10,000/sec", 10000. Returns ok=false when no
// number can be extracted.
func ParseThroughput(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case string:
		text := strings.ReplaceAll(strings.ToLower(v), ",", "")
		text = strings.ReplaceAll(text, " ", "")
		match := numberRe.FindString(text)
		if match == "" {
			return 0, false
		}
		num, err := parseFloat(match)
		if err != nil {
			return 0, false
		}
		suffixes := []struct {
			s    string
			mult float64
		}{{"k", 1e3}, {"m", 1e6}, {"b", 1e9}}
		for _, sfx := range suffixes {
			if strings.Contains(text, sfx.s) {
				return int64(num * sfx.mult), true
			}
		}
		return int64(num), true
	default:
		return 0, false
	}
}

// ParseAvailability parses an availability target: "99.99%", "99.9",
// "four nines", 99.95.
func ParseAvailability(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		text := strings.TrimSuffix(strings.TrimSpace(strings.ToLower(v)), "%")
		named := map[string]float64{
			"two nines":   99.0,
			"three nines": 99.9,
			"four nines":  99.99,
			"five nines":  99.999,
		}
		for name, val := range named {
			if strings.Contains(text, name) {
				return val, true
			}
		}
		f, err := parseFloat(text)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// ContainsAny reports whether text contains any keyword, case-insensitive.
func ContainsAny(text string, keywords ...string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
