package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/archadvisor/archadvisor/pkg/models"
)

var redundancyKeywords = []string{
	"cluster", "replica", "multi-az", "multi_az", "multi-region",
	"failover", "standby", "hot-standby", "sentinel", "replication",
	"redundant", "ha ", "high availability", "active-passive", "active-active",
}

var singleInstanceKeywords = []string{
	"single", "standalone", "one instance", "single node", "1 instance",
	"single-instance", "no replica",
}

var replicationKeywords = []string{
	"replication", "replica", "standby", "follower", "secondary",
	"read replica", "multi-master", "primary-secondary",
}

// AvailabilityValidator detects single points of failure and computes
// composite availability from the component chain, comparing it against
// the declared target.
type AvailabilityValidator struct{}

func (AvailabilityValidator) Name() string { return "AvailabilityValidator" }

func (v AvailabilityValidator) Validate(design models.Design, requirements string) []Finding {
	var findings []Finding

	nf := design.NonFunctional()
	components := design.Components()
	deployment := design.Deployment()
	flatText := design.FlattenText()

	target, hasTarget := models.ParseAvailability(nf["availability_target"])

	findings = append(findings, v.detectSPOFs(components, target, hasTarget)...)

	if hasTarget && target >= 99.0 {
		findings = append(findings, v.checkComposite(components, target)...)
	}
	if hasTarget && target >= 99.99 {
		findings = append(findings, v.checkHighSLA(deployment, flatText, target)...)
	}
	if hasTarget && target >= 99.9 {
		findings = append(findings, v.checkReplication(components, target)...)
	}

	return findings
}

func (AvailabilityValidator) detectSPOFs(components []map[string]any, target float64, hasTarget bool) []Finding {
	var findings []Finding

	spofSeverity := SeverityHigh
	if hasTarget && target >= 99.9 {
		spofSeverity = SeverityCritical
	}

	for _, comp := range components {
		name := compName(comp)
		text := componentText(comp)

		hasRedundancy := models.ContainsAny(text, redundancyKeywords...)
		isSingle := models.ContainsAny(text, singleInstanceKeywords...)
		exposed := isSingle || !hasRedundancy

		switch compType(comp) {
		case "database":
			if exposed {
				findings = append(findings, Finding{
					Code:       CodeSPOFDatabase,
					Severity:   spofSeverity,
					Message:    fmt.Sprintf("Database '%s' appears to be a single instance with no replication", name),
					Component:  name,
					Suggestion: "Add read replicas, multi-AZ deployment, or clustering",
					Evidence:   "No redundancy keywords found in: " + truncate(text, 100),
				})
			}
		case "cache":
			if exposed {
				findings = append(findings, Finding{
					Code:       CodeSPOFCache,
					Severity:   SeverityHigh,
					Message:    fmt.Sprintf("Cache '%s' is a single instance — cache failure will cascade to database", name),
					Component:  name,
					Suggestion: "Use Redis Sentinel, Redis Cluster, or ElastiCache with replicas",
				})
			}
		case "gateway":
			if exposed {
				findings = append(findings, Finding{
					Code:       CodeSPOFGateway,
					Severity:   spofSeverity,
					Message:    fmt.Sprintf("API Gateway '%s' appears to be a single instance — all traffic routes through it", name),
					Component:  name,
					Suggestion: "Use a managed gateway (AWS ALB, API Gateway) or deploy multiple instances behind a load balancer",
				})
			}
		case "queue":
			if exposed {
				findings = append(findings, Finding{
					Code:       CodeSPOFQueue,
					Severity:   SeverityHigh,
					Message:    fmt.Sprintf("Message queue '%s' is a single instance — async processing will halt on failure", name),
					Component:  name,
					Suggestion: "Use a managed service (SQS, MSK) or deploy a multi-broker cluster",
				})
			}
		}
	}

	return findings
}

type componentAvail struct {
	name  string
	avail float64
}

func (v AvailabilityValidator) checkComposite(components []map[string]any, target float64) []Finding {
	var avails []componentAvail
	for _, comp := range components {
		text := strings.ToLower(models.Str(comp["name"]) + " " + models.Str(comp["type"]) + " " + strings.Join(techStack(comp), " "))
		avails = append(avails, componentAvail{
			name:  compName(comp),
			avail: estimateAvailability(text, compType(comp)),
		})
	}

	if len(avails) < 2 {
		return nil
	}

	// serial chain: composite is the product of component availabilities
	composite := 1.0
	for _, ca := range avails {
		composite *= ca.avail
	}
	compositePct := composite * 100

	if compositePct >= target {
		return nil
	}

	bottlenecks := make([]componentAvail, len(avails))
	copy(bottlenecks, avails)
	sort.SliceStable(bottlenecks, func(i, j int) bool { return bottlenecks[i].avail < bottlenecks[j].avail })
	if len(bottlenecks) > 3 {
		bottlenecks = bottlenecks[:3]
	}
	parts := make([]string, len(bottlenecks))
	for i, b := range bottlenecks {
		parts[i] = fmt.Sprintf("%s (%.3f%%)", b.name, b.avail*100)
	}

	return []Finding{{
		Code:     CodeAvailCompositeBelowTarget,
		Severity: SeverityCritical,
		Message: fmt.Sprintf("Composite availability is %.2f%%, below target of %v%%. Bottlenecks: %s",
			compositePct, target, strings.Join(parts, ", ")),
		Suggestion: "Add redundancy to bottleneck components, use managed services with higher SLAs, or lower the availability target",
		Evidence:   fmt.Sprintf("Computed from %d serial components", len(avails)),
	}}
}

// estimateAvailability matches a component description to a known
// service figure, falling back to per-type defaults. Redundant
// components are approximated as two independent instances.
func estimateAvailability(text, typ string) float64 {
	hasRedundancy := models.ContainsAny(text, redundancyKeywords...)

	// longest matching key wins so "postgresql" is not shadowed by
	// "postgres" prefix matches
	bestLen := 0
	bestAvail := 0.0
	for key, avail := range componentAvailability {
		spaced := strings.ReplaceAll(key, "_", " ")
		if strings.Contains(text, spaced) || strings.Contains(text, key) {
			if len(key) > bestLen {
				bestLen = len(key)
				bestAvail = avail
			}
		}
	}
	if bestLen > 0 {
		if hasRedundancy {
			return 1 - (1-bestAvail)*(1-bestAvail)
		}
		return bestAvail
	}

	typeDefaults := map[string]float64{
		"service":  0.9995,
		"database": 0.9990,
		"cache":    0.9990,
		"queue":    0.9990,
		"gateway":  0.9995,
		"cdn":      0.9999,
		"storage":  0.9999,
	}
	base, ok := typeDefaults[typ]
	if !ok {
		base = 0.9995
	}
	if hasRedundancy {
		return 1 - (1-base)*(1-base)
	}
	return base
}

func (AvailabilityValidator) checkHighSLA(deployment map[string]any, flatText string, target float64) []Finding {
	multiAZ := models.ContainsAny(flatText,
		"multi-az", "multi_az", "multiple availability zones", "multi-region", "multi_region")
	if multiAZ {
		return nil
	}

	regions, _ := deployment["regions"].([]any)
	if len(regions) > 1 {
		return nil
	}

	return []Finding{{
		Code:       CodeAvailSingleRegionHighSLA,
		Severity:   SeverityCritical,
		Message:    fmt.Sprintf("Availability target %v%% requires multi-AZ or multi-region, but design appears single-region", target),
		Field:      "deployment.regions",
		Suggestion: "Deploy across at least 2 availability zones, or use multi-region active-passive",
	}}
}

func (AvailabilityValidator) checkReplication(components []map[string]any, target float64) []Finding {
	var findings []Finding
	for _, comp := range components {
		if compType(comp) != "database" {
			continue
		}
		if !models.ContainsAny(flattenComponent(comp), replicationKeywords...) {
			findings = append(findings, Finding{
				Code:       CodeAvailNoReplication,
				Severity:   SeverityHigh,
				Message:    fmt.Sprintf("Database '%s' has no replication strategy specified with %v%% SLA target", compName(comp), target),
				Component:  compName(comp),
				Suggestion: "Specify replication: primary-replica, multi-master, or managed service with automatic replication",
			})
		}
	}
	return findings
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
