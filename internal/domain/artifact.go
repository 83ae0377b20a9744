// internal/domain/artifact.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ArtifactKind distinguishes the two pipeline outputs.
type ArtifactKind string

const (
	ArtifactTreatmentPlan ArtifactKind = "treatment_plan"
	ArtifactDiagnosis     ArtifactKind = "diagnosis"
)

// GenerationSource is the provenance flag on every artifact. A fallback
// plan must never be presented as personalized AI output, so the flag is
// persisted with the artifact and rendered by every consumer.
type GenerationSource string

const (
	SourceGenerated GenerationSource = "generated"
	SourceFallback  GenerationSource = "fallback"
)

// Artifact is a persisted TreatmentPlan or DiagnosisResult tied to a client.
// Artifacts are immutable once created: there is no update or delete, a
// regeneration simply appends a newer artifact.
type Artifact struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID primitive.ObjectID `bson:"clientId" json:"clientId"`
	Kind     ArtifactKind       `bson:"kind" json:"kind"`

	// Exactly one of Plan/Diagnosis is set, matching Kind.
	Plan      *TreatmentPlan   `bson:"plan,omitempty" json:"plan,omitempty"`
	Diagnosis *DiagnosisResult `bson:"diagnosis,omitempty" json:"diagnosis,omitempty"`

	Source  GenerationSource `bson:"source" json:"source"`
	Warning string           `bson:"warning,omitempty" json:"warning,omitempty"`

	// Short description of the input that produced this artifact, for
	// listings (the assessment itself is not persisted).
	Summary string `bson:"summary,omitempty" json:"summary,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
