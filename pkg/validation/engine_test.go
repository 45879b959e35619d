package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archadvisor/archadvisor/pkg/models"
)

func findingCodes(findings []Finding) []Code {
	codes := make([]Code, len(findings))
	for i, f := range findings {
		codes[i] = f.Code
	}
	return codes
}

func findByCode(t *testing.T, findings []Finding, code Code) Finding {
	t.Helper()
	for _, f := range findings {
		if f.Code == code {
			return f
		}
	}
	t.Fatalf("finding %s not present in %v", code, findingCodes(findings))
	return Finding{}
}

func TestEmptyDesignFailsSchema(t *testing.T) {
	report := NewEngine().Validate(`{}`, "")

	assert.False(t, report.Passed)
	assert.GreaterOrEqual(t, report.Summary["critical"], 6)

	missing := map[string]bool{}
	for _, f := range report.Errors {
		if f.Code == CodeSchemaMissingField {
			missing[f.Field] = true
		}
	}
	for _, field := range []string{"overview", "architecture_style", "components", "non_functional", "tech_decisions", "deployment"} {
		assert.True(t, missing[field], "expected missing-field finding for %s", field)
	}
}

func TestInvalidJSONIsSingleCriticalFinding(t *testing.T) {
	report := NewEngine().Validate(`{"components": [`, "")

	assert.False(t, report.Passed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, CodeSchemaInvalidType, report.Errors[0].Code)
	assert.Equal(t, SeverityCritical, report.Errors[0].Severity)
}

func TestCompositeAvailabilityBottleneck(t *testing.T) {
	design := `{
		"overview": "two database tiers",
		"architecture_style": "monolith",
		"components": [
			{"name": "Primary DB", "type": "database", "responsibility": "writes", "tech_stack": ["PostgreSQL"]},
			{"name": "Reporting DB", "type": "database", "responsibility": "reads", "tech_stack": ["PostgreSQL"]}
		],
		"non_functional": {"availability_target": "99.99%", "data_consistency": "strong"},
		"tech_decisions": [{"decision": "PostgreSQL", "reasoning": "relational fit"}],
		"deployment": {"regions": ["us-east-1"]}
	}`

	report := NewEngine().Validate(design, "")

	f := findByCode(t, report.Errors, CodeAvailCompositeBelowTarget)
	assert.Equal(t, SeverityCritical, f.Severity)
	assert.Contains(t, f.Evidence, "2 serial components")
	assert.Contains(t, f.Message, "99.80%")
}

func TestRedundancyFormula(t *testing.T) {
	// base availability a with redundancy tokens contributes 1-(1-a)^2
	avail := estimateAvailability("primary db postgresql with read replica failover", "database")
	base := 0.9990
	assert.InDelta(t, 1-(1-base)*(1-base), avail, 1e-9)

	// without redundancy tokens the base figure is used directly
	assert.InDelta(t, base, estimateAvailability("primary db postgresql", "database"), 1e-9)
}

func TestEventDrivenWithoutBroker(t *testing.T) {
	design := `{
		"overview": "orders",
		"architecture_style": "event-driven",
		"components": [
			{"name": "Order Service", "type": "service", "responsibility": "orders", "tech_stack": ["Go"], "scaling_strategy": "horizontal"}
		],
		"non_functional": {"data_consistency": "eventual"},
		"tech_decisions": [{"decision": "events", "reasoning": "eventual consistency trade-off"}],
		"deployment": {"regions": ["us-east-1"]}
	}`

	report := NewEngine().Validate(design, "")

	f := findByCode(t, report.Errors, CodeContraEventDrivenNoBroker)
	assert.Equal(t, SeverityCritical, f.Severity)
	assert.False(t, report.Passed)
}

func TestKafkaAtLowThroughput(t *testing.T) {
	design := `{
		"overview": "small pipeline",
		"architecture_style": "microservices",
		"components": [
			{"name": "Ingest", "type": "service", "responsibility": "ingest", "tech_stack": ["Kafka"], "scaling_strategy": "horizontal"},
			{"name": "Worker", "type": "service", "responsibility": "process", "tech_stack": ["Go"], "scaling_strategy": "horizontal"},
			{"name": "Store", "type": "database", "responsibility": "storage", "tech_stack": ["PostgreSQL", "read replica"]}
		],
		"non_functional": {"throughput": "1K RPS", "data_consistency": "strong"},
		"tech_decisions": [{"decision": "Kafka", "reasoning": "buffering"}],
		"deployment": {"regions": ["us-east-1"]}
	}`

	report := NewEngine().Validate(design, "")

	f := findByCode(t, report.Errors, CodeOpsKafkaLowThroughput)
	assert.Equal(t, SeverityMedium, f.Severity)
}

func TestPassGate(t *testing.T) {
	// the gate is exactly: no criticals and score >= 60
	tests := []struct {
		name     string
		findings []Finding
		passed   bool
	}{
		{"clean report", nil, true},
		{"one critical fails regardless of score", []Finding{
			{Code: CodeSPOFDatabase, Severity: SeverityCritical},
		}, false},
		{"many mediums drag score below 60", []Finding{
			{Code: CodeSchemaMissingField, Severity: SeverityCritical},
			{Code: CodeSchemaInvalidType, Severity: SeverityCritical},
			{Code: CodeSchemaInvalidValue, Severity: SeverityCritical},
			{Code: CodeCapNoAutoscaling, Severity: SeverityHigh},
			{Code: CodeCapNoSharding, Severity: SeverityHigh},
			{Code: CodeConsistMissingStrategy, Severity: SeverityMedium},
		}, false},
		{"highs only, score stays above 60", []Finding{
			{Code: CodeCapNoAutoscaling, Severity: SeverityHigh},
			{Code: CodeConsistMissingStrategy, Severity: SeverityMedium},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := BuildReport(tt.findings)
			assert.Equal(t, tt.passed, report.Passed)
			assert.Equal(t, report.Summary["critical"] == 0 && report.Score >= 60, report.Passed)
		})
	}
}

func TestScoringMonotonicity(t *testing.T) {
	base := []Finding{
		{Code: CodeCapNoAutoscaling, Severity: SeverityHigh},
		{Code: CodeConsistMissingStrategy, Severity: SeverityMedium},
	}
	baseScore := BuildReport(base).Score

	extras := []Finding{
		{Code: CodeSPOFDatabase, Severity: SeverityCritical},
		{Code: CodeMissingAuth, Severity: SeverityHigh},
		{Code: CodeOpsKafkaLowThroughput, Severity: SeverityMedium},
		{Code: CodeSchemaMissingField, Severity: SeverityLow},
		{Code: Code("DOMAIN_RULE_X"), Severity: SeverityMedium},
	}
	for _, extra := range extras {
		with := BuildReport(append(append([]Finding{}, base...), extra))
		assert.LessOrEqual(t, with.Score, baseScore, "adding %s must not raise the score", extra.Code)
	}
}

func TestReportSortedBySeverity(t *testing.T) {
	report := BuildReport([]Finding{
		{Code: CodeConsistMissingStrategy, Severity: SeverityMedium},
		{Code: CodeSPOFDatabase, Severity: SeverityCritical},
		{Code: CodeSchemaMissingField, Severity: SeverityLow},
		{Code: CodeCapNoAutoscaling, Severity: SeverityHigh},
	})

	got := make([]Severity, len(report.Errors))
	for i, f := range report.Errors {
		got[i] = f.Severity
	}
	assert.Equal(t, []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}, got)
}

func TestVerdictStrings(t *testing.T) {
	clean := BuildReport(nil)
	assert.Equal(t, "PASS — Strong design (score: 100/100). Ready for review.", clean.Verdict)

	critical := BuildReport([]Finding{{Code: CodeSPOFDatabase, Severity: SeverityCritical}})
	assert.Contains(t, critical.Verdict, "FAIL — 1 critical issue(s) must be resolved before review.")
}

func TestValidateWithContextFlagsRecurringCriticals(t *testing.T) {
	engine := NewEngine()
	design := `{
		"overview": "x",
		"architecture_style": "event-driven",
		"components": [{"name": "Svc", "type": "service", "responsibility": "x", "scaling_strategy": "horizontal"}],
		"non_functional": {"data_consistency": "eventual"},
		"tech_decisions": [{"decision": "x", "reasoning": "eventual trade-off"}],
		"deployment": {"regions": ["us-east-1"]}
	}`

	first := engine.Validate(design, "")
	second := engine.ValidateWithContext(design, "", first)

	assert.Contains(t, second.Verdict, "critical issue(s) persist from previous revision")
	assert.Contains(t, second.Verdict, string(CodeContraEventDrivenNoBroker))
}

func TestValidatorPanicRecovered(t *testing.T) {
	engine := NewEngineWith(panicValidator{}, SchemaValidator{})
	report := engine.Validate(`{"overview":"x"}`, "")

	f := findByCode(t, report.Errors, CodeSchemaInvalidType)
	assert.Equal(t, SeverityMedium, f.Severity)
	assert.Contains(t, f.Message, "crashed")
	// the rest of the chain still ran
	assert.Greater(t, report.Summary["critical"], 0)
}

type panicValidator struct{}

func (panicValidator) Name() string { return "PanicValidator" }
func (panicValidator) Validate(models.Design, string) []Finding {
	panic("boom")
}

func TestDeterminism(t *testing.T) {
	design := `{
		"overview": "big system",
		"architecture_style": "microservices",
		"components": [
			{"name": "API", "type": "gateway", "responsibility": "ingress", "tech_stack": ["Kong"]},
			{"name": "DB", "type": "database", "responsibility": "storage", "tech_stack": ["Cassandra"]},
			{"name": "Cache", "type": "cache", "responsibility": "hot keys", "tech_stack": ["Redis"]}
		],
		"non_functional": {"availability_target": "99.99%", "throughput": "50K RPS", "data_consistency": "strong"},
		"tech_decisions": [],
		"deployment": {"regions": ["us-east-1"]}
	}`
	requirements := "Design a payment platform handling card transactions with refunds and an audit trail"

	first := NewEngine().Validate(design, requirements)
	for i := 0; i < 5; i++ {
		again := NewEngine().Validate(design, requirements)
		assert.Equal(t, first.Score, again.Score)
		assert.Equal(t, first.Passed, again.Passed)
		assert.Equal(t, findingCodes(first.Errors), findingCodes(again.Errors))
	}
}
