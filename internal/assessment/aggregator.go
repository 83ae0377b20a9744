// internal/assessment/aggregator.go
package assessment

import (
	"fmt"
	"strings"

	"physioflow/recovery-app/internal/domain"
)

// ValidationError signals bad or incomplete intake input. It is the only
// pipeline error that is caller-fixable, so handlers surface it directly
// instead of falling back.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid assessment: %s %s", e.Field, e.Reason)
}

// sectionLayout fixes a section's position in the canonical document and the
// order of its fields.
type sectionLayout struct {
	name   string
	fields []string
}

// canonicalLayout is the single source of truth for document ordering. The
// aggregator walks this layout, never the caller's map, so insertion order
// can never leak into the serialized document.
var canonicalLayout = []sectionLayout{
	{domain.SectionPersonalInfo, []string{
		domain.FieldFullName,
		"Email",
		"Phone",
		"Age",
		"Occupation",
	}},
	{domain.SectionSymptoms, []string{
		domain.FieldPrimaryComplaint,
		"Pain Level (0-10)",
		"Symptom Duration",
		"Aggravating Factors",
		"Relieving Factors",
	}},
	{domain.SectionMedicalHistory, []string{
		"Past Injuries & Surgeries",
		"Current Medications",
		"Previous Therapy",
	}},
	{domain.SectionDailyLife, []string{
		"Typical Day",
		"Sitting Hours",
		"Sleep Quality",
		"Daily Limitations",
	}},
	{domain.SectionPhysicalActivity, []string{
		"Activity Level",
		"Exercise Habits",
		"Sports & Hobbies",
	}},
	{domain.SectionFunctional, []string{
		"Movement Concerns",
		"Range of Motion Notes",
		"Strength Notes",
		"Balance Notes",
	}},
	{domain.SectionGoals, []string{
		"Treatment Goals",
		"Timeline Expectations",
	}},
	{domain.SectionCompensation, []string{
		"Observed Patterns",
		"Clinician Notes",
	}},
}

// Aggregate normalizes scattered intake fields into one canonical Assessment.
//
// It is a pure transform: given equal field values it always produces the
// same Assessment regardless of the insertion order of the input maps.
// Absent fields render as empty strings rather than omitted keys, so partial
// assessments (draft saves) aggregate fine. The only hard requirements are a
// non-empty identifying name and primary complaint; anything else missing is
// not an error.
func Aggregate(sections map[string]map[string]any) (*domain.Assessment, error) {
	a := &domain.Assessment{Sections: make([]domain.AssessmentSection, 0, len(canonicalLayout))}

	for _, layout := range canonicalLayout {
		sec := domain.AssessmentSection{
			Name:   layout.name,
			Fields: make([]domain.AssessmentField, 0, len(layout.fields)),
		}
		input := sections[layout.name]
		for _, fieldName := range layout.fields {
			sec.Fields = append(sec.Fields, domain.AssessmentField{
				Name:  fieldName,
				Value: normalizeValue(input[fieldName]),
			})
		}
		a.Sections = append(a.Sections, sec)
	}

	if strings.TrimSpace(a.Field(domain.SectionPersonalInfo, domain.FieldFullName)) == "" {
		return nil, &ValidationError{Field: domain.FieldFullName, Reason: "is required"}
	}
	if strings.TrimSpace(a.Field(domain.SectionSymptoms, domain.FieldPrimaryComplaint)) == "" {
		return nil, &ValidationError{Field: domain.FieldPrimaryComplaint, Reason: "is required"}
	}

	return a, nil
}

// normalizeValue flattens a scalar or list-of-string intake value to one
// string. Unknown/nil values become "".
func normalizeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
