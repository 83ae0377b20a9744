// internal/generation/fallback.go
package generation

import (
	_ "embed"
	"fmt"

	"physioflow/recovery-app/internal/domain"
)

// The canned artifacts live as data assets, not code, and are loaded exactly
// once at process start. They must stay schema-valid: init runs them through
// the same validator the live pipeline uses, so a bad edit fails fast at
// startup instead of at the first outage.

//go:embed fallback_plan.json
var fallbackPlanJSON string

//go:embed fallback_diagnosis.json
var fallbackDiagnosisJSON string

var (
	fallbackPlan      domain.TreatmentPlan
	fallbackDiagnosis domain.DiagnosisResult
)

func init() {
	plan, err := ValidateTreatmentPlan(fallbackPlanJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded fallback plan is invalid: %v", err))
	}
	fallbackPlan = *plan

	diag, err := ValidateDiagnosis(fallbackDiagnosisJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded fallback diagnosis is invalid: %v", err))
	}
	fallbackDiagnosis = *diag
}

// FallbackPlan returns the deterministic canned treatment plan used when
// generation or validation fails irrecoverably. It never calls the external
// service, and callers must tag the result SourceFallback. Each call returns
// an independent copy so consumers cannot mutate the shared asset.
func FallbackPlan(assessmentSummary string) *domain.TreatmentPlan {
	plan := fallbackPlan
	plan.Phases = clonePhases(fallbackPlan.Phases)
	plan.Precautions = append([]string(nil), fallbackPlan.Precautions...)
	if assessmentSummary != "" {
		plan.Overview = fmt.Sprintf("Prepared for: %s. %s", assessmentSummary, plan.Overview)
	}
	return &plan
}

// FallbackDiagnosis returns the deterministic canned examination result for
// the diagnosis pipeline's failure path.
func FallbackDiagnosis() *domain.DiagnosisResult {
	diag := fallbackDiagnosis
	diag.Findings = append([]string(nil), fallbackDiagnosis.Findings...)
	diag.Recommendations = append([]string(nil), fallbackDiagnosis.Recommendations...)
	return &diag
}

func clonePhases(phases []domain.Phase) []domain.Phase {
	out := make([]domain.Phase, len(phases))
	for i, p := range phases {
		out[i] = p
		out[i].Goals = append([]string(nil), p.Goals...)
		out[i].Exercises = append([]domain.Exercise(nil), p.Exercises...)
	}
	return out
}
