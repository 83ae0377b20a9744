// internal/generation/validator.go
package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"physioflow/recovery-app/internal/domain"
)

// The validator enforces the wire contract only: presence, types, non-empty
// required sequences, and the urgency enum. Field content is clinician-facing
// free text and is passed through untouched; there is no semantic or medical
// correctness checking here.

// ValidateTreatmentPlan parses and validates a raw generative response into
// a TreatmentPlan, or fails with a *SchemaError naming the offending field
// path.
func ValidateTreatmentPlan(raw string) (*domain.TreatmentPlan, error) {
	doc, err := parseObject(raw)
	if err != nil {
		return nil, err
	}

	plan := &domain.TreatmentPlan{}

	if plan.Overview, err = requireString(doc, "", "overview"); err != nil {
		return nil, err
	}
	if plan.Precautions, err = requireStringSlice(doc, "", "precautions"); err != nil {
		return nil, err
	}
	if plan.ProgressionNotes, err = requireString(doc, "", "progressionNotes"); err != nil {
		return nil, err
	}

	rawPhases, err := requireObjectSlice(doc, "", "phases")
	if err != nil {
		return nil, err
	}
	if len(rawPhases) == 0 {
		return nil, &SchemaError{Kind: SchemaInvalidValue, Path: "phases", Msg: "must contain at least one phase"}
	}

	plan.Phases = make([]domain.Phase, 0, len(rawPhases))
	for i, rawPhase := range rawPhases {
		path := fmt.Sprintf("phases[%d]", i)
		phase, err := validatePhase(rawPhase, path)
		if err != nil {
			return nil, err
		}
		plan.Phases = append(plan.Phases, *phase)
	}

	return plan, nil
}

func validatePhase(obj map[string]any, path string) (*domain.Phase, error) {
	phase := &domain.Phase{}
	var err error

	if phase.Name, err = requireString(obj, path, "name"); err != nil {
		return nil, err
	}
	if phase.Duration, err = requireString(obj, path, "duration"); err != nil {
		return nil, err
	}
	if phase.Goals, err = requireStringSlice(obj, path, "goals"); err != nil {
		return nil, err
	}
	if len(phase.Goals) == 0 {
		return nil, &SchemaError{Kind: SchemaInvalidValue, Path: path + ".goals", Msg: "must contain at least one goal"}
	}

	rawExercises, err := requireObjectSlice(obj, path, "exercises")
	if err != nil {
		return nil, err
	}
	if len(rawExercises) == 0 {
		return nil, &SchemaError{Kind: SchemaInvalidValue, Path: path + ".exercises", Msg: "must contain at least one exercise"}
	}

	phase.Exercises = make([]domain.Exercise, 0, len(rawExercises))
	for i, rawEx := range rawExercises {
		exPath := fmt.Sprintf("%s.exercises[%d]", path, i)
		ex := domain.Exercise{}
		if ex.Name, err = requireString(rawEx, exPath, "name"); err != nil {
			return nil, err
		}
		if ex.Description, err = requireString(rawEx, exPath, "description"); err != nil {
			return nil, err
		}
		if ex.Sets, err = requireString(rawEx, exPath, "sets"); err != nil {
			return nil, err
		}
		if ex.Reps, err = requireString(rawEx, exPath, "reps"); err != nil {
			return nil, err
		}
		if ex.Frequency, err = requireString(rawEx, exPath, "frequency"); err != nil {
			return nil, err
		}
		if ex.Progression, err = requireString(rawEx, exPath, "progression"); err != nil {
			return nil, err
		}
		phase.Exercises = append(phase.Exercises, ex)
	}

	return phase, nil
}

// ValidateDiagnosis parses and validates a raw generative response into a
// DiagnosisResult, or fails with a *SchemaError.
func ValidateDiagnosis(raw string) (*domain.DiagnosisResult, error) {
	doc, err := parseObject(raw)
	if err != nil {
		return nil, err
	}

	diag := &domain.DiagnosisResult{}

	if diag.Assessment, err = requireString(doc, "", "assessment"); err != nil {
		return nil, err
	}
	if diag.Findings, err = requireStringSlice(doc, "", "findings"); err != nil {
		return nil, err
	}
	if diag.Recommendations, err = requireStringSlice(doc, "", "recommendations"); err != nil {
		return nil, err
	}
	if diag.NextSteps, err = requireString(doc, "", "nextSteps"); err != nil {
		return nil, err
	}

	urgency, err := requireString(doc, "", "urgencyLevel")
	if err != nil {
		return nil, err
	}
	diag.UrgencyLevel = domain.UrgencyLevel(urgency)
	if !domain.ValidUrgencyLevel(diag.UrgencyLevel) {
		return nil, &SchemaError{
			Kind: SchemaInvalidValue,
			Path: "urgencyLevel",
			Msg:  fmt.Sprintf("%q is not one of low, medium, high", urgency),
		}
	}

	return diag, nil
}

// parseObject unwraps optional markdown code fences (a common model habit)
// and parses the body as a single JSON object.
func parseObject(raw string) (map[string]any, error) {
	body := stripCodeFences(raw)
	var doc map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, &SchemaError{Kind: SchemaMalformed, Msg: fmt.Sprintf("response is not a JSON object: %v", err)}
	}
	return doc, nil
}

func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func missing(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func requireString(obj map[string]any, path, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", &SchemaError{Kind: SchemaMissingField, Path: missing(path, key), Msg: "required string field is missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &SchemaError{Kind: SchemaMissingField, Path: missing(path, key), Msg: fmt.Sprintf("expected string, got %T", v)}
	}
	return s, nil
}

func requireStringSlice(obj map[string]any, path, key string) ([]string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, &SchemaError{Kind: SchemaMissingField, Path: missing(path, key), Msg: "required list field is missing"}
	}
	items, ok := v.([]any)
	if !ok {
		return nil, &SchemaError{Kind: SchemaMissingField, Path: missing(path, key), Msg: fmt.Sprintf("expected list of strings, got %T", v)}
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &SchemaError{
				Kind: SchemaMissingField,
				Path: fmt.Sprintf("%s[%d]", missing(path, key), i),
				Msg:  fmt.Sprintf("expected string, got %T", item),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func requireObjectSlice(obj map[string]any, path, key string) ([]map[string]any, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, &SchemaError{Kind: SchemaMissingField, Path: missing(path, key), Msg: "required list field is missing"}
	}
	items, ok := v.([]any)
	if !ok {
		return nil, &SchemaError{Kind: SchemaMissingField, Path: missing(path, key), Msg: fmt.Sprintf("expected list of objects, got %T", v)}
	}
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &SchemaError{
				Kind: SchemaMissingField,
				Path: fmt.Sprintf("%s[%d]", missing(path, key), i),
				Msg:  fmt.Sprintf("expected object, got %T", item),
			}
		}
		out = append(out, m)
	}
	return out, nil
}
