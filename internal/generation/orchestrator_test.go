package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"physioflow/recovery-app/internal/assessment"
	"physioflow/recovery-app/internal/domain"
)

// stubGenerator scripts the external service for orchestrator tests.
type stubGenerator struct {
	response string
	err      error
	lastReq  Request
	delay    time.Duration
}

func (s *stubGenerator) Complete(ctx context.Context, req Request) (string, error) {
	s.lastReq = req
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", &TransportError{Err: ctx.Err()}
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testAssessment(t *testing.T) *domain.Assessment {
	t.Helper()
	a, err := assessment.Aggregate(map[string]map[string]any{
		domain.SectionPersonalInfo: {domain.FieldFullName: "Jane Doe"},
		domain.SectionSymptoms:     {domain.FieldPrimaryComplaint: "lower back pain radiating to left leg"},
	})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	return a
}

func assertPlanInvariants(t *testing.T, plan *domain.TreatmentPlan) {
	t.Helper()
	if plan == nil {
		t.Fatal("plan is nil")
	}
	if len(plan.Phases) < 1 {
		t.Fatalf("plan has no phases")
	}
	for i, phase := range plan.Phases {
		if len(phase.Exercises) < 1 {
			t.Errorf("phase %d has no exercises", i)
		}
		if len(phase.Goals) < 1 {
			t.Errorf("phase %d has no goals", i)
		}
	}
}

func TestGeneratePlan_WellFormedResponse(t *testing.T) {
	gen := &stubGenerator{response: minimalPlanJSON}
	o := NewOrchestrator(gen)

	res, err := o.GeneratePlan(context.Background(), testAssessment(t))
	if err != nil {
		t.Fatalf("GeneratePlan returned error: %v", err)
	}
	if res.Source != domain.SourceGenerated {
		t.Errorf("Source = %q, want %q", res.Source, domain.SourceGenerated)
	}
	if res.Warning != "" {
		t.Errorf("Warning = %q, want empty", res.Warning)
	}
	assertPlanInvariants(t, res.Value)

	// The request must embed the serialized assessment document.
	if gen.lastReq.Instructions == "" {
		t.Error("request had no instruction block")
	}
	if want := "lower back pain radiating to left leg"; !containsStr(gen.lastReq.UserContent, want) {
		t.Errorf("user content does not embed the assessment document (missing %q)", want)
	}
}

func TestGeneratePlan_TransportFailureFallsBack(t *testing.T) {
	gen := &stubGenerator{err: &TransportError{StatusCode: 429, Err: errors.New("rate limited")}}
	o := NewOrchestrator(gen)

	res, err := o.GeneratePlan(context.Background(), testAssessment(t))
	if err != nil {
		t.Fatalf("transport failure must not propagate, got: %v", err)
	}
	if res.Source != domain.SourceFallback {
		t.Errorf("Source = %q, want %q", res.Source, domain.SourceFallback)
	}
	if res.Warning == "" {
		t.Error("Warning is empty on fallback")
	}
	assertPlanInvariants(t, res.Value)
}

func TestGeneratePlan_SchemaInvalidResponseFallsBack(t *testing.T) {
	// Syntactically valid JSON, but phases is a string.
	gen := &stubGenerator{response: `{"overview":"x","phases":"oops","precautions":[],"progressionNotes":"y"}`}
	o := NewOrchestrator(gen)

	res, err := o.GeneratePlan(context.Background(), testAssessment(t))
	if err != nil {
		t.Fatalf("schema failure must not propagate, got: %v", err)
	}
	if res.Source != domain.SourceFallback {
		t.Errorf("Source = %q, want %q", res.Source, domain.SourceFallback)
	}
	if !containsStr(res.Warning, "phases") {
		t.Errorf("Warning %q does not name the offending path", res.Warning)
	}
	assertPlanInvariants(t, res.Value)
}

func TestGeneratePlan_TimeoutFallsBackAndRoundTrips(t *testing.T) {
	gen := &stubGenerator{response: minimalPlanJSON, delay: 200 * time.Millisecond}
	o := NewOrchestrator(gen)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	res, err := o.GeneratePlan(ctx, testAssessment(t))
	if err != nil {
		t.Fatalf("timeout must not propagate, got: %v", err)
	}
	if res.Source != domain.SourceFallback {
		t.Errorf("Source = %q, want %q", res.Source, domain.SourceFallback)
	}
	if res.Warning == "" {
		t.Error("Warning is empty after timeout")
	}

	// The fallback plan must itself satisfy the output contract.
	raw, err := json.Marshal(res.Value)
	if err != nil {
		t.Fatalf("marshal fallback plan: %v", err)
	}
	if _, err := ValidateTreatmentPlan(string(raw)); err != nil {
		t.Fatalf("fallback plan does not round-trip through the validator: %v", err)
	}
}

func TestGeneratePlan_NilAssessment(t *testing.T) {
	o := NewOrchestrator(&stubGenerator{response: minimalPlanJSON})
	_, err := o.GeneratePlan(context.Background(), nil)
	var vErr *assessment.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *assessment.ValidationError, got %v", err)
	}
}

func TestAnalyzeExamination_GeneratedAndFallback(t *testing.T) {
	urls := []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.mp4"}

	gen := &stubGenerator{response: minimalDiagnosisJSON}
	o := NewOrchestrator(gen)

	res, err := o.AnalyzeExamination(context.Background(), "limping on left side", urls)
	if err != nil {
		t.Fatalf("AnalyzeExamination returned error: %v", err)
	}
	if res.Source != domain.SourceGenerated {
		t.Errorf("Source = %q, want %q", res.Source, domain.SourceGenerated)
	}
	if len(gen.lastReq.MediaURLs) != len(urls) {
		t.Errorf("request carries %d media refs, want %d", len(gen.lastReq.MediaURLs), len(urls))
	}

	// Transport failure resolves to a valid fallback diagnosis.
	gen.err = &TransportError{Err: errors.New("connection refused")}
	res, err = o.AnalyzeExamination(context.Background(), "limping on left side", urls)
	if err != nil {
		t.Fatalf("transport failure must not propagate, got: %v", err)
	}
	if res.Source != domain.SourceFallback {
		t.Errorf("Source = %q, want %q", res.Source, domain.SourceFallback)
	}
	if !domain.ValidUrgencyLevel(res.Value.UrgencyLevel) {
		t.Errorf("fallback diagnosis urgency %q is invalid", res.Value.UrgencyLevel)
	}
}

func TestAnalyzeExamination_RequiresMedia(t *testing.T) {
	o := NewOrchestrator(&stubGenerator{response: minimalDiagnosisJSON})
	_, err := o.AnalyzeExamination(context.Background(), "description only", nil)
	var vErr *assessment.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *assessment.ValidationError, got %v", err)
	}
}

func containsStr(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}
