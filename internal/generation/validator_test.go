package generation

import (
	"errors"
	"strings"
	"testing"

	"physioflow/recovery-app/internal/domain"
)

const minimalPlanJSON = `{
  "overview": "Single phase plan.",
  "phases": [
    {
      "name": "Phase 1",
      "duration": "Weeks 1-2",
      "goals": ["Reduce pain"],
      "exercises": [
        {
          "name": "Glute Bridge",
          "description": "Lift hips from supine.",
          "sets": "2-3 sets",
          "reps": "10-15 reps",
          "frequency": "2x daily",
          "progression": "Add holds when easy"
        }
      ]
    }
  ],
  "precautions": ["Stop on sharp pain"],
  "progressionNotes": "Advance weekly."
}`

const minimalDiagnosisJSON = `{
  "assessment": "Mild forward head posture observed.",
  "findings": ["Forward head posture"],
  "recommendations": ["Chin tuck exercises"],
  "urgencyLevel": "high",
  "nextSteps": "Routine follow-up."
}`

func TestValidateTreatmentPlan_AcceptsMinimalPlan(t *testing.T) {
	plan, err := ValidateTreatmentPlan(minimalPlanJSON)
	if err != nil {
		t.Fatalf("ValidateTreatmentPlan rejected a valid plan: %v", err)
	}
	if len(plan.Phases) != 1 {
		t.Fatalf("len(Phases) = %d, want 1", len(plan.Phases))
	}
	if len(plan.Phases[0].Exercises) != 1 {
		t.Fatalf("len(Exercises) = %d, want 1", len(plan.Phases[0].Exercises))
	}
	if plan.Phases[0].Exercises[0].Reps != "10-15 reps" {
		t.Errorf("free text field was altered: %q", plan.Phases[0].Exercises[0].Reps)
	}
}

func TestValidateTreatmentPlan_AcceptsCodeFencedJSON(t *testing.T) {
	fenced := "```json\n" + minimalPlanJSON + "\n```"
	if _, err := ValidateTreatmentPlan(fenced); err != nil {
		t.Fatalf("ValidateTreatmentPlan rejected fenced JSON: %v", err)
	}
}

func TestValidateTreatmentPlan_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		wantKind SchemaErrorKind
		wantPath string
	}{
		{
			name:     "not json",
			raw:      "Sorry, I cannot help with that.",
			wantKind: SchemaMalformed,
		},
		{
			name:     "empty phases",
			raw:      strings.Replace(minimalPlanJSON, `"phases": [`, `"phases": [], "ignored": [`, 1),
			wantKind: SchemaInvalidValue,
			wantPath: "phases",
		},
		{
			name:     "phases wrong type",
			raw:      `{"overview":"x","phases":"not a list","precautions":[],"progressionNotes":"y"}`,
			wantKind: SchemaMissingField,
			wantPath: "phases",
		},
		{
			name:     "missing overview",
			raw:      `{"phases":[],"precautions":[],"progressionNotes":"y"}`,
			wantKind: SchemaMissingField,
			wantPath: "overview",
		},
		{
			name:     "empty exercises in phase",
			raw:      strings.Replace(minimalPlanJSON, `"exercises": [
        {
          "name": "Glute Bridge",
          "description": "Lift hips from supine.",
          "sets": "2-3 sets",
          "reps": "10-15 reps",
          "frequency": "2x daily",
          "progression": "Add holds when easy"
        }
      ]`, `"exercises": []`, 1),
			wantKind: SchemaInvalidValue,
			wantPath: "phases[0].exercises",
		},
		{
			name:     "exercise missing reps",
			raw:      strings.Replace(minimalPlanJSON, `"reps": "10-15 reps",`, ``, 1),
			wantKind: SchemaMissingField,
			wantPath: "phases[0].exercises[0].reps",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateTreatmentPlan(tc.raw)
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected *SchemaError, got %v", err)
			}
			if schemaErr.Kind != tc.wantKind {
				t.Errorf("Kind = %q, want %q", schemaErr.Kind, tc.wantKind)
			}
			if tc.wantPath != "" && schemaErr.Path != tc.wantPath {
				t.Errorf("Path = %q, want %q", schemaErr.Path, tc.wantPath)
			}
		})
	}
}

func TestValidateDiagnosis_UrgencyEnum(t *testing.T) {
	diag, err := ValidateDiagnosis(minimalDiagnosisJSON)
	if err != nil {
		t.Fatalf("ValidateDiagnosis rejected urgencyLevel high: %v", err)
	}
	if diag.UrgencyLevel != domain.UrgencyHigh {
		t.Errorf("UrgencyLevel = %q, want %q", diag.UrgencyLevel, domain.UrgencyHigh)
	}

	invalid := strings.Replace(minimalDiagnosisJSON, `"high"`, `"critical"`, 1)
	_, err = ValidateDiagnosis(invalid)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError for urgencyLevel critical, got %v", err)
	}
	if schemaErr.Kind != SchemaInvalidValue || schemaErr.Path != "urgencyLevel" {
		t.Errorf("got kind=%q path=%q, want kind=%q path=%q", schemaErr.Kind, schemaErr.Path, SchemaInvalidValue, "urgencyLevel")
	}
}

func TestValidateDiagnosis_MissingFindings(t *testing.T) {
	raw := `{"assessment":"x","recommendations":[],"urgencyLevel":"low","nextSteps":"y"}`
	_, err := ValidateDiagnosis(raw)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if schemaErr.Path != "findings" {
		t.Errorf("Path = %q, want findings", schemaErr.Path)
	}
}
