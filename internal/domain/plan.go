// internal/domain/plan.go
package domain

// TreatmentPlan is the structured exercise plan produced by the generation
// pipeline for one client. Phase order is clinically meaningful: earlier
// phases must be completed before later ones, so the slice is never
// re-sorted after creation.
type TreatmentPlan struct {
	Overview         string   `bson:"overview" json:"overview"`
	Phases           []Phase  `bson:"phases" json:"phases"` // At least one phase
	Precautions      []string `bson:"precautions" json:"precautions"`
	ProgressionNotes string   `bson:"progressionNotes" json:"progressionNotes"`
}

// Phase is one stage of a treatment plan, e.g. "Acute Pain Management".
type Phase struct {
	Name      string     `bson:"name" json:"name"`
	Duration  string     `bson:"duration" json:"duration"` // e.g. "Weeks 1-2"
	Goals     []string   `bson:"goals" json:"goals"`       // Non-empty
	Exercises []Exercise `bson:"exercises" json:"exercises"` // Non-empty
}

// Exercise is one prescription inside a phase. All fields are free text on
// purpose: clinicians prescribe ranges ("8-12 reps", "30-60 seconds"), not
// bare numbers.
type Exercise struct {
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
	Sets        string `bson:"sets" json:"sets"`
	Reps        string `bson:"reps" json:"reps"`
	Frequency   string `bson:"frequency" json:"frequency"`
	Progression string `bson:"progression" json:"progression"`
}
