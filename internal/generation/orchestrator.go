// internal/generation/orchestrator.go
package generation

import (
	"context"
	"errors"
	"fmt"
	"log"

	"physioflow/recovery-app/internal/assessment"
	"physioflow/recovery-app/internal/domain"
)

// Result wraps a pipeline output with its provenance. Consumers must be able
// to distinguish AI-authored content from canned fallback content, so Source
// travels with the value from here all the way to the UI.
type Result[T any] struct {
	Value   *T                      `json:"value"`
	Source  domain.GenerationSource `json:"source"`
	Warning string                  `json:"warning,omitempty"`
}

// Orchestrator composes the request builder, the external generative
// service, the schema validator, and the fallback provider into one
// sequential pipeline per call. It holds no mutable state, so concurrent
// calls for different clients are independent.
type Orchestrator interface {
	// GeneratePlan runs the treatment-plan pipeline for one assessment.
	// Transport and schema failures resolve to a fallback result; the only
	// error it returns is a *assessment.ValidationError for unusable input.
	GeneratePlan(ctx context.Context, a *domain.Assessment) (*Result[domain.TreatmentPlan], error)

	// AnalyzeExamination runs the media-based diagnosis pipeline.
	AnalyzeExamination(ctx context.Context, description string, mediaURLs []string) (*Result[domain.DiagnosisResult], error)
}

type orchestrator struct {
	generator TextGenerator
}

// NewOrchestrator creates the pipeline orchestrator around a TextGenerator.
func NewOrchestrator(generator TextGenerator) Orchestrator {
	return &orchestrator{generator: generator}
}

// GeneratePlan performs a single best-effort generation attempt. The
// external call is bounded by the caller's ctx; on timeout the in-flight
// call is abandoned (not retried) and the fallback plan is returned, so the
// method never fails past its own boundary for transport or schema reasons.
func (o *orchestrator) GeneratePlan(ctx context.Context, a *domain.Assessment) (*Result[domain.TreatmentPlan], error) {
	if a == nil {
		return nil, &assessment.ValidationError{Field: "assessment", Reason: "is required"}
	}

	req := BuildPlanRequest(a.Document())

	raw, err := o.generator.Complete(ctx, req)
	if err != nil {
		log.Printf("WARN: plan generation transport failure, using fallback: %v", err)
		return &Result[domain.TreatmentPlan]{
			Value:   FallbackPlan(a.Summary()),
			Source:  domain.SourceFallback,
			Warning: warningFor(err),
		}, nil
	}

	plan, err := ValidateTreatmentPlan(raw)
	if err != nil {
		// Logged with the offending path for diagnosing prompt drift.
		log.Printf("WARN: plan response violated output contract, using fallback: %v", err)
		return &Result[domain.TreatmentPlan]{
			Value:   FallbackPlan(a.Summary()),
			Source:  domain.SourceFallback,
			Warning: warningFor(err),
		}, nil
	}

	return &Result[domain.TreatmentPlan]{Value: plan, Source: domain.SourceGenerated}, nil
}

// AnalyzeExamination mirrors GeneratePlan for the diagnosis variant. It
// requires at least one media reference; the description may be empty.
func (o *orchestrator) AnalyzeExamination(ctx context.Context, description string, mediaURLs []string) (*Result[domain.DiagnosisResult], error) {
	if len(mediaURLs) == 0 {
		return nil, &assessment.ValidationError{Field: "media", Reason: "at least one media file is required"}
	}

	req := BuildExaminationRequest(description, mediaURLs)

	raw, err := o.generator.Complete(ctx, req)
	if err != nil {
		log.Printf("WARN: examination analysis transport failure, using fallback: %v", err)
		return &Result[domain.DiagnosisResult]{
			Value:   FallbackDiagnosis(),
			Source:  domain.SourceFallback,
			Warning: warningFor(err),
		}, nil
	}

	diag, err := ValidateDiagnosis(raw)
	if err != nil {
		log.Printf("WARN: examination response violated output contract, using fallback: %v", err)
		return &Result[domain.DiagnosisResult]{
			Value:   FallbackDiagnosis(),
			Source:  domain.SourceFallback,
			Warning: warningFor(err),
		}, nil
	}

	return &Result[domain.DiagnosisResult]{Value: diag, Source: domain.SourceGenerated}, nil
}

// warningFor summarizes the triggering failure kind for the Result warning.
func warningFor(err error) string {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		if schemaErr.Path == "" {
			return fmt.Sprintf("generated response rejected (%s)", schemaErr.Kind)
		}
		return fmt.Sprintf("generated response rejected (%s): %s", schemaErr.Kind, schemaErr.Path)
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if transportErr.StatusCode != 0 {
			return fmt.Sprintf("generation service unavailable (http %d)", transportErr.StatusCode)
		}
		return "generation service unreachable or timed out"
	}
	return "generation failed: " + err.Error()
}
