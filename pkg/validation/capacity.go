package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/archadvisor/archadvisor/pkg/models"
)

var autoscaleKeywords = []string{
	"auto-scaling", "autoscaling", "auto_scaling", "horizontal scaling",
	"hpa", "keda", "target tracking", "scale out", "elastic",
}

var shardKeywords = []string{
	"shard", "partition", "hash ring", "consistent hash",
	"range partition", "key-based partition",
}

// CapacityValidator checks declared throughput against per-technology
// benchmarks and flags missing scaling strategies.
type CapacityValidator struct{}

func (CapacityValidator) Name() string { return "CapacityValidator" }

func (v CapacityValidator) Validate(design models.Design, requirements string) []Finding {
	var findings []Finding

	nf := design.NonFunctional()
	components := design.Components()
	flatText := design.FlattenText()

	throughput, hasThroughput := models.ParseThroughput(nf["throughput"])

	if hasThroughput && throughput > 0 {
		findings = append(findings, v.checkFeasibility(components, throughput)...)
		if throughput >= 10_000 {
			findings = append(findings, v.checkAutoscaling(flatText, throughput)...)
			findings = append(findings, v.checkSingleNode(components, throughput)...)
		}
		if throughput >= 5_000 {
			findings = append(findings, v.checkSharding(components, throughput)...)
		}
	}

	findings = append(findings, v.checkScalingStrategy(components)...)

	return findings
}

// benchmarkFor finds the benchmark entry for a tech string. Keys are
// checked longest-first so specific names win over their prefixes.
func benchmarkFor(tech string) (string, benchmark, bool) {
	keys := make([]string, 0, len(throughputBenchmarks))
	for k := range throughputBenchmarks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, key := range keys {
		if strings.Contains(tech, key) || strings.Contains(key, tech) {
			return key, throughputBenchmarks[key], true
		}
	}
	return "", benchmark{}, false
}

func (CapacityValidator) checkFeasibility(components []map[string]any, throughput int64) []Finding {
	var findings []Finding

	for _, comp := range components {
		name := compName(comp)
		scaling := strings.ToLower(models.Str(comp["scaling_strategy"]))

		for _, tech := range techStack(comp) {
			tech = strings.ReplaceAll(tech, " ", "_")
			key, bench, ok := benchmarkFor(tech)
			if !ok {
				continue
			}

			maxRPS := bench.RPS
			if models.ContainsAny(scaling, "horizontal", "replica", "shard", "partition", "cluster") {
				if bench.WithReplicas > 0 {
					maxRPS = bench.WithReplicas
				} else {
					maxRPS = bench.RPS * 3
				}
			}

			if throughput > maxRPS {
				findings = append(findings, Finding{
					Code:     CodeCapThroughputExceedsBenchmark,
					Severity: SeverityHigh,
					Message: fmt.Sprintf("Declared throughput (%d RPS) exceeds '%s' benchmark (%d RPS) in '%s'",
						throughput, key, maxRPS, name),
					Component: name,
					Suggestion: fmt.Sprintf("Add horizontal scaling, read replicas, or caching. '%s' single node handles ~%d RPS.",
						key, bench.RPS),
					Evidence: fmt.Sprintf("tech: %s, benchmark: %s, declared: %d, max: %d", tech, key, throughput, maxRPS),
				})
			}
		}
	}

	return findings
}

func (CapacityValidator) checkAutoscaling(flatText string, throughput int64) []Finding {
	if models.ContainsAny(flatText, autoscaleKeywords...) {
		return nil
	}
	return []Finding{{
		Code:       CodeCapNoAutoscaling,
		Severity:   SeverityHigh,
		Message:    fmt.Sprintf("Declared throughput is %d RPS but no auto-scaling strategy mentioned", throughput),
		Suggestion: "Add auto-scaling: HPA for K8s, target tracking for ECS, or managed auto-scaling",
		Evidence:   "Searched for: " + strings.Join(autoscaleKeywords[:5], ", "),
	}}
}

func (CapacityValidator) checkSingleNode(components []map[string]any, throughput int64) []Finding {
	var findings []Finding

	singleIndicators := []string{"single", "1 instance", "one instance", "standalone", "single node"}

	for _, comp := range components {
		typ := compType(comp)
		if typ != "service" && typ != "gateway" {
			continue
		}
		text := strings.ToLower(models.Str(comp["name"]) + " " + typ + " " + models.Str(comp["scaling_strategy"]))
		if models.ContainsAny(text, singleIndicators...) {
			findings = append(findings, Finding{
				Code:       CodeCapSingleNodeHighRPS,
				Severity:   SeverityCritical,
				Message:    fmt.Sprintf("'%s' appears to be single-node but must handle %d RPS", compName(comp), throughput),
				Component:  compName(comp),
				Suggestion: "Deploy multiple instances behind a load balancer with auto-scaling",
			})
		}
	}

	return findings
}

func (CapacityValidator) checkSharding(components []map[string]any, throughput int64) []Finding {
	var findings []Finding

	for _, comp := range components {
		if compType(comp) != "database" {
			continue
		}
		name := compName(comp)
		text := flattenComponent(comp)

		if models.ContainsAny(text, shardKeywords...) {
			continue
		}

		if throughput >= 20_000 {
			findings = append(findings, Finding{
				Code:       CodeCapNoSharding,
				Severity:   SeverityHigh,
				Message:    fmt.Sprintf("Database '%s' has no sharding strategy with %d RPS declared throughput", name, throughput),
				Component:  name,
				Suggestion: "Add partitioning strategy: hash-based sharding, range partitioning, or use a natively distributed database",
			})
		}

		if throughput >= 5_000 &&
			models.ContainsAny(text, "write-heavy", "write heavy", "all writes", "primary writer") {
			findings = append(findings, Finding{
				Code:       CodeCapHotspotRisk,
				Severity:   SeverityMedium,
				Message:    fmt.Sprintf("Write-heavy database '%s' may have hotspot risk without partitioning", name),
				Component:  name,
				Suggestion: "Implement write distribution via consistent hashing or application-level sharding",
			})
		}
	}

	return findings
}

func (CapacityValidator) checkScalingStrategy(components []map[string]any) []Finding {
	var findings []Finding

	for _, comp := range components {
		typ := compType(comp)
		if typ != "service" && typ != "gateway" {
			continue
		}
		if strings.TrimSpace(models.Str(comp["scaling_strategy"])) == "" {
			findings = append(findings, Finding{
				Code:       CodeCapNoScalingStrategy,
				Severity:   SeverityMedium,
				Message:    fmt.Sprintf("Service '%s' has no scaling_strategy defined", compName(comp)),
				Component:  compName(comp),
				Suggestion: "Specify: horizontal, vertical, or auto-scaling strategy",
			})
		}
	}

	return findings
}
