package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/archadvisor/archadvisor/pkg/models"
)

// ContradictionValidator catches designs whose parts disagree with each
// other: claimed style versus actual components, claimed consistency
// versus chosen databases, claimed latency versus call-chain depth.
type ContradictionValidator struct{}

func (ContradictionValidator) Name() string { return "ContradictionValidator" }

func (v ContradictionValidator) Validate(design models.Design, requirements string) []Finding {
	var findings []Finding

	style := strings.ReplaceAll(strings.ToLower(models.Str(design["architecture_style"])), " ", "_")
	nf := design.NonFunctional()
	components := design.Components()
	deployment := design.Deployment()
	flatText := design.FlattenText()
	allTechs := design.TechStack()

	// event-driven needs a broker
	if strings.Contains(style, "event") {
		hasBroker := false
		for _, broker := range messageBrokers {
			if strings.Contains(flatText, broker) {
				hasBroker = true
				break
			}
		}
		hasQueue := false
		for _, comp := range components {
			if compType(comp) == "queue" {
				hasQueue = true
				break
			}
		}
		if !hasBroker && !hasQueue {
			findings = append(findings, Finding{
				Code:       CodeContraEventDrivenNoBroker,
				Severity:   SeverityCritical,
				Message:    "Architecture style is 'event-driven' but no message broker found in components",
				Suggestion: "Add a message broker: Kafka, RabbitMQ, SQS, Pulsar, or Redis Streams",
				Evidence:   fmt.Sprintf("Style: %s, searched for: %s", style, strings.Join(messageBrokers[:6], ", ")),
			})
		}
	}

	// strong consistency with an eventually consistent store
	if strings.ToLower(models.Str(nf["data_consistency"])) == "strong" {
		for _, tech := range allTechs {
			for _, db := range eventuallyConsistentDBs {
				if strings.Contains(tech, db) {
					findings = append(findings, Finding{
						Code:       CodeContraStrongConsistEventualDB,
						Severity:   SeverityCritical,
						Message:    fmt.Sprintf("Claims 'strong' consistency but tech stack includes '%s' (eventually consistent)", db),
						Suggestion: "Either switch DB or change consistency model to 'eventual'",
					})
					break
				}
			}
		}
	}

	// serverless with Kubernetes
	if strings.Contains(style, "serverless") {
		if models.ContainsAny(flatText, "kubernetes", "k8s", "eks", "gke", "aks", "helm") {
			findings = append(findings, Finding{
				Code:     CodeContraServerlessWithK8s,
				Severity: SeverityHigh,
				Message:  "Architecture style is 'serverless' but Kubernetes is mentioned in deployment",
				Suggestion: "Choose one: true serverless (Lambda/Cloud Run) or container orchestration (K8s). " +
					"They serve different operational models.",
				Evidence: fmt.Sprintf("Style: %s, found K8s references in design", style),
			})
		}
	}

	// low latency target with deep synchronous chains
	latencyTargets := asObject(nf["latency_targets"])
	p99Raw := latencyTargets["p99"]
	if p99Raw == nil {
		p99Raw = latencyTargets["p50"]
	}
	if p99, ok := parseLatencyMS(p99Raw); ok && p99 <= 100 {
		serviceCount := 0
		for _, comp := range components {
			if compType(comp) == "service" {
				serviceCount++
			}
		}
		if serviceCount >= 6 {
			findings = append(findings, Finding{
				Code:     CodeContraLowLatencyManyHops,
				Severity: SeverityHigh,
				Message: fmt.Sprintf("Latency target is %dms (p99) but architecture has %d services. "+
					"Each synchronous hop adds 5-20ms network latency.", p99, serviceCount),
				Suggestion: "Reduce synchronous call chain: use async processing, collapse services, " +
					"or add caching to avoid downstream calls",
				Evidence: fmt.Sprintf("p99 target: %dms, service count: %d, estimated min latency: %dms",
					p99, serviceCount, serviceCount*5),
			})
		}
	}

	// NFRs promise multi-region but deployment is single-region
	nfText := models.Design(nf).FlattenText()
	regions, _ := deployment["regions"].([]any)
	if models.ContainsAny(nfText, "multi-region", "multi_region", "global", "cross-region") && len(regions) <= 1 {
		findings = append(findings, Finding{
			Code:       CodeContraMultiRegionSingleDeploy,
			Severity:   SeverityHigh,
			Message:    "Non-functional requirements mention multi-region but deployment specifies single region",
			Field:      "deployment.regions",
			Suggestion: "Add multiple regions to deployment configuration to match NFR claims",
		})
	}

	// style vs component count
	if strings.Contains(style, "microservice") && len(components) <= 2 {
		findings = append(findings, Finding{
			Code:     CodeContraStyleMismatch,
			Severity: SeverityMedium,
			Message: fmt.Sprintf("Architecture style is '%s' but only %d components defined — this is effectively a monolith",
				style, len(components)),
			Suggestion: "Either add more granular service boundaries or change architecture_style to 'monolith' or 'modular_monolith'",
		})
	}
	if strings.Contains(style, "monolith") && len(components) >= 10 {
		findings = append(findings, Finding{
			Code:     CodeContraStyleMismatch,
			Severity: SeverityMedium,
			Message: fmt.Sprintf("Architecture style is '%s' but %d components defined — this looks like microservices",
				style, len(components)),
			Suggestion: "Change architecture_style to 'microservices' or consolidate components",
		})
	}

	// claims stateless but keeps local state
	for _, comp := range components {
		text := flattenComponent(comp)
		stateless := models.ContainsAny(text, "stateless", "horizontally scalable", "no shared state")
		localState := models.ContainsAny(text, "local file", "in-memory state", "session storage", "local disk", "local storage")
		if stateless && localState {
			findings = append(findings, Finding{
				Code:       CodeContraStatelessWithLocalState,
				Severity:   SeverityHigh,
				Message:    fmt.Sprintf("'%s' claims stateless but references local state storage", compName(comp)),
				Component:  compName(comp),
				Suggestion: "Move state to external store (Redis, DB) or remove stateless claim",
			})
		}
	}

	return findings
}

var latencyNumberRe = regexp.MustCompile(`[\d.]+`)

// parseLatencyMS parses latency targets like "100ms", "0.1s", 100.
func parseLatencyMS(value any) (int, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		text := strings.TrimSpace(strings.ToLower(v))
		match := latencyNumberRe.FindString(text)
		if match == "" {
			return 0, false
		}
		num, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return 0, false
		}
		if strings.Contains(text, "s") && !strings.Contains(text, "ms") {
			return int(num * 1000), true
		}
		return int(num), true
	default:
		return 0, false
	}
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}
