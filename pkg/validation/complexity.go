package validation

import (
	"fmt"
	"strings"

	"github.com/archadvisor/archadvisor/pkg/models"
)

var mvpKeywords = []string{"mvp", "prototype", "proof of concept", "poc", "small", "startup"}

// ComplexityValidator detects over-engineering: too many services for
// the declared scale, heavyweight infrastructure for small systems.
type ComplexityValidator struct{}

func (ComplexityValidator) Name() string { return "OperationalComplexityValidator" }

func (v ComplexityValidator) Validate(design models.Design, requirements string) []Finding {
	var findings []Finding

	components := design.Components()
	nf := design.NonFunctional()
	flatText := design.FlattenText()
	allTechs := design.TechStack()
	reqLower := strings.ToLower(requirements)

	throughput, hasThroughput := models.ParseThroughput(nf["throughput"])
	serviceCount := 0
	for _, comp := range components {
		if compType(comp) == "service" {
			serviceCount++
		}
	}

	findings = append(findings, v.checkServiceCount(serviceCount, len(components), throughput, hasThroughput, reqLower)...)
	findings = append(findings, v.checkKafkaOverkill(allTechs, flatText, throughput, hasThroughput)...)
	findings = append(findings, v.checkMultiRegionOverkill(design, throughput, hasThroughput, reqLower)...)
	findings = append(findings, v.checkEnterpriseOverkill(allTechs, throughput, hasThroughput, reqLower)...)

	return findings
}

func (ComplexityValidator) checkServiceCount(serviceCount, totalComponents int, throughput int64, hasThroughput bool, reqText string) []Finding {
	if totalComponents > 15 {
		return []Finding{{
			Code:       CodeOpsTooManyServices,
			Severity:   SeverityHigh,
			Message:    fmt.Sprintf("%d components defined — this is operationally complex and expensive to maintain", totalComponents),
			Suggestion: "Consolidate related services. Consider bounded contexts — not every entity needs its own service.",
		}}
	}

	if serviceCount >= 8 && (!hasThroughput || throughput < 5_000) {
		isMVP := models.ContainsAny(reqText, mvpKeywords...)
		lowRPS := hasThroughput && throughput < 1_000
		if isMVP || lowRPS {
			scale := "small scale"
			if lowRPS {
				scale = "<1K RPS"
			}
			return []Finding{{
				Code:     CodeOpsTooManyServices,
				Severity: SeverityMedium,
				Message: fmt.Sprintf("%d services for %s — microservices overhead may outweigh benefits at this scale",
					serviceCount, scale),
				Suggestion: "Start with a modular monolith and extract services as scale demands it",
			}}
		}
	}

	return nil
}

func (ComplexityValidator) checkKafkaOverkill(allTechs []string, flatText string, throughput int64, hasThroughput bool) []Finding {
	hasKafka := false
	for _, t := range allTechs {
		if strings.Contains(t, "kafka") || strings.Contains(t, "msk") {
			hasKafka = true
			break
		}
	}
	if !hasKafka {
		hasKafka = strings.Contains(flatText, "kafka") || strings.Contains(flatText, "msk")
	}

	if !hasKafka || !hasThroughput || throughput >= 10_000 {
		return nil
	}

	return []Finding{{
		Code:     CodeOpsKafkaLowThroughput,
		Severity: SeverityMedium,
		Message: fmt.Sprintf("Kafka/MSK included but throughput is only %d RPS. "+
			"Kafka's operational overhead (ZooKeeper/KRaft, brokers, partitions) "+
			"is not justified below ~10K messages/sec.", throughput),
		Suggestion: "Consider simpler alternatives: Redis Streams (< 50K mps), " +
			"RabbitMQ (< 30K mps), or SQS (managed, zero-ops)",
	}}
}

func (ComplexityValidator) checkMultiRegionOverkill(design models.Design, throughput int64, hasThroughput bool, reqText string) []Finding {
	regions, _ := design.Deployment()["regions"].([]any)
	avail, hasAvail := models.ParseAvailability(design.NonFunctional()["availability_target"])

	isMVP := models.ContainsAny(reqText, "mvp", "prototype", "poc", "proof of concept", "small scale", "startup")
	lowThroughput := hasThroughput && throughput < 5_000
	availDoesntRequire := hasAvail && avail < 99.99

	if len(regions) >= 3 && (isMVP || lowThroughput) && availDoesntRequire {
		kind := "low-throughput"
		if isMVP {
			kind = "MVP/startup"
		}
		return []Finding{{
			Code:     CodeOpsMultiRegionMVP,
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("Multi-region deployment (%d regions) for %s system", len(regions), kind),
			Suggestion: "Start with single-region multi-AZ. Add regions when you have " +
				"geographic latency requirements or regulatory needs.",
		}}
	}

	return nil
}

func (ComplexityValidator) checkEnterpriseOverkill(allTechs []string, throughput int64, hasThroughput bool, reqText string) []Finding {
	isSmall := models.ContainsAny(reqText, "mvp", "startup", "poc", "small", "simple")
	lowThroughput := hasThroughput && throughput < 5_000
	if !isSmall && !lowThroughput {
		return nil
	}

	var used []string
	for _, tech := range allTechs {
		for _, enterprise := range enterpriseServices {
			if strings.Contains(tech, enterprise) {
				used = append(used, enterprise)
			}
		}
	}

	if len(used) < 3 {
		return nil
	}

	sample := used
	if len(sample) > 5 {
		sample = sample[:5]
	}
	kind := "low-throughput"
	if isSmall {
		kind = "small-scale"
	}
	return []Finding{{
		Code:     CodeOpsEnterpriseForStartup,
		Severity: SeverityMedium,
		Message: fmt.Sprintf("Using %d enterprise-grade services (%s) for a %s system",
			len(used), strings.Join(sample, ", "), kind),
		Suggestion: "Consider simpler alternatives: PostgreSQL over Aurora, " +
			"Docker Compose over Kubernetes, SQS over Kafka. " +
			"Right-size your infrastructure to your scale.",
	}}
}
