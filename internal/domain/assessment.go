// internal/domain/assessment.go
package domain

import "strings"

// Assessment is the canonical aggregated intake document for one client.
// It is built transiently from intake-form state, serialized once into the
// generation request, and discarded. Only the resulting artifact is
// persisted.
//
// Sections and fields are ordered slices, not maps: the aggregator lays them
// out in a fixed canonical order so that two assessments with equal field
// values always serialize to byte-identical documents.
type Assessment struct {
	Sections []AssessmentSection `json:"sections"`
}

// AssessmentSection is one named block of the intake form, e.g. "Symptoms".
type AssessmentSection struct {
	Name   string            `json:"name"`
	Fields []AssessmentField `json:"fields"`
}

// AssessmentField is a single labelled answer. Multi-select answers are
// joined into one string by the aggregator before they get here.
type AssessmentField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Field returns the value of the named field in the named section, or ""
// when absent.
func (a *Assessment) Field(section, field string) string {
	for _, s := range a.Sections {
		if s.Name != section {
			continue
		}
		for _, f := range s.Fields {
			if f.Name == field {
				return f.Value
			}
		}
	}
	return ""
}

// Document serializes the assessment into the canonical text block sent to
// the generative service. The layout is plain text, section headers followed
// by "Field: value" lines, and fully determined by the slice order, so
// identical assessments produce identical documents.
func (a *Assessment) Document() string {
	var b strings.Builder
	for i, s := range a.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.Name)
		b.WriteString(":\n")
		for _, f := range s.Fields {
			b.WriteString("- ")
			b.WriteString(f.Name)
			b.WriteString(": ")
			b.WriteString(f.Value)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Summary returns a short one-line description of the assessment, used for
// artifact listings and fallback plan context.
func (a *Assessment) Summary() string {
	name := a.Field(SectionPersonalInfo, FieldFullName)
	complaint := a.Field(SectionSymptoms, FieldPrimaryComplaint)
	if complaint == "" {
		return name
	}
	return name + ": " + complaint
}

// Canonical section names of the intake form.
const (
	SectionPersonalInfo     = "Personal Information"
	SectionSymptoms         = "Symptoms"
	SectionMedicalHistory   = "Medical History"
	SectionDailyLife        = "Daily Life"
	SectionPhysicalActivity = "Physical Activity"
	SectionFunctional       = "Functional Assessment"
	SectionGoals            = "Goals"
	SectionCompensation     = "Compensation Patterns"
)

// Field names referenced outside the aggregator. The full canonical layout
// lives in the assessment package.
const (
	FieldFullName         = "Full Name"
	FieldPrimaryComplaint = "Primary Complaint"
)

