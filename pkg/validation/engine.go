package validation

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/archadvisor/archadvisor/pkg/models"
)

// Engine runs the validator chain against a design and produces a
// unified report. Deterministic and fast; validators run in a fixed
// order and a panicking validator is recorded as a finding rather than
// failing the run.
type Engine struct {
	validators []Validator
}

// NewEngine creates an engine with the default validator chain.
func NewEngine() *Engine {
	return &Engine{validators: defaultValidators()}
}

// NewEngineWith creates an engine with a custom validator chain.
func NewEngineWith(validators ...Validator) *Engine {
	return &Engine{validators: validators}
}

// defaultValidators returns the chain in execution order. Schema runs
// first; the rest assume a structurally plausible document.
func defaultValidators() []Validator {
	return []Validator{
		SchemaValidator{},
		AvailabilityValidator{},
		CapacityValidator{},
		ConsistencyValidator{},
		ContradictionValidator{},
		ComplexityValidator{},
		CoverageValidator{},
		DomainPatternValidator{},
	}
}

// Validate runs every validator against the raw design JSON and builds
// the report. Unparseable JSON short-circuits into a single critical
// finding.
func (e *Engine) Validate(rawDesign, requirements string) *Report {
	start := time.Now()

	design, err := models.ParseDesign(rawDesign)
	if err != nil {
		return BuildReport([]Finding{{
			Code:       CodeSchemaInvalidType,
			Severity:   SeverityCritical,
			Message:    fmt.Sprintf("Cannot parse architecture JSON: %v", err),
			Suggestion: "Ensure the architecture output is valid JSON",
		}})
	}

	var all []Finding
	for _, v := range e.validators {
		all = append(all, e.run(v, design, requirements)...)
	}

	report := BuildReport(all)

	slog.Info("Validation complete",
		"passed", report.Passed,
		"score", report.Score,
		"critical", report.Summary["critical"],
		"high", report.Summary["high"],
		"total_errors", len(all),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return report
}

// run executes one validator, converting a panic into a medium finding
// so one broken check cannot kill the pipeline.
func (e *Engine) run(v Validator, design models.Design, requirements string) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Validator panicked", "validator", v.Name(), "error", r)
			findings = append(findings, Finding{
				Code:     CodeSchemaInvalidType,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("Validator '%s' crashed: %v", v.Name(), r),
			})
		}
	}()
	return v.Validate(design, requirements)
}

// ValidateWithContext validates with awareness of the previous round's
// report: critical findings that persist across revisions are called
// out in the verdict.
func (e *Engine) ValidateWithContext(rawDesign, requirements string, previous *Report) *Report {
	report := e.Validate(rawDesign, requirements)
	if previous == nil {
		return report
	}

	prevCritical := map[Code]bool{}
	for _, f := range previous.Errors {
		if f.Severity == SeverityCritical {
			prevCritical[f.Code] = true
		}
	}

	var recurring []string
	seen := map[Code]bool{}
	for _, f := range report.Errors {
		if f.Severity == SeverityCritical && prevCritical[f.Code] && !seen[f.Code] {
			seen[f.Code] = true
			recurring = append(recurring, string(f.Code))
		}
	}

	if len(recurring) > 0 {
		report.Verdict += fmt.Sprintf(" WARNING: %d critical issue(s) persist from previous revision: %s",
			len(recurring), strings.Join(recurring, ", "))
	}

	return report
}
