// Package domainrules holds per-domain architecture pattern rules,
// compiled into the binary. The loader detects the application domain
// from requirements text by keyword frequency scoring.
package domainrules

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed rules/*.json
var rulesFS embed.FS

// Pattern is one domain-specific check.
type Pattern struct {
	ID          string   `json:"id"`
	Severity    string   `json:"severity"`
	Check       string   `json:"check"`
	Terms       []string `json:"terms"`
	Message     string   `json:"message"`
	Description string   `json:"description"`
}

// Domain is one domain rule file.
type Domain struct {
	Name                string    `json:"domain"`
	DisplayName         string    `json:"display_name"`
	Keywords            []string  `json:"keywords"`
	MandatoryPatterns   []Pattern `json:"mandatory_patterns"`
	RecommendedPatterns []Pattern `json:"recommended_patterns"`
	AntiPatterns        []Pattern `json:"anti_patterns"`
}

var (
	loadOnce sync.Once
	domains  []Domain
	loadErr  error
)

func loadAll() ([]Domain, error) {
	loadOnce.Do(func() {
		entries, err := rulesFS.ReadDir("rules")
		if err != nil {
			loadErr = fmt.Errorf("reading embedded rules: %w", err)
			return
		}
		for _, entry := range entries {
			data, err := rulesFS.ReadFile("rules/" + entry.Name())
			if err != nil {
				loadErr = fmt.Errorf("reading %s: %w", entry.Name(), err)
				return
			}
			var d Domain
			if err := json.Unmarshal(data, &d); err != nil {
				loadErr = fmt.Errorf("parsing %s: %w", entry.Name(), err)
				return
			}
			domains = append(domains, d)
		}
		sort.Slice(domains, func(i, j int) bool { return domains[i].Name < domains[j].Name })
	})
	return domains, loadErr
}

// Detect matches requirements text against all domain keyword lists by
// keyword frequency. At least two keyword hits are required to avoid
// false positives; ties go to the first domain in name order.
func Detect(requirements string) *Domain {
	if requirements == "" {
		return nil
	}
	all, err := loadAll()
	if err != nil {
		return nil
	}

	reqLower := strings.ToLower(requirements)
	var best *Domain
	bestScore := 0
	for i := range all {
		score := 0
		for _, kw := range all[i].Keywords {
			if strings.Contains(reqLower, strings.ToLower(kw)) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = &all[i]
		}
	}

	if bestScore >= 2 {
		return best
	}
	return nil
}

// Load returns a specific domain's rules by name, nil when unknown.
func Load(name string) *Domain {
	all, err := loadAll()
	if err != nil {
		return nil
	}
	for i := range all {
		if all[i].Name == name {
			return &all[i]
		}
	}
	return nil
}

// Names lists all available domain names.
func Names() []string {
	all, err := loadAll()
	if err != nil {
		return nil
	}
	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.Name
	}
	return names
}
