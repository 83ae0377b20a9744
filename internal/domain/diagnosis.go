// internal/domain/diagnosis.go
package domain

// UrgencyLevel classifies how quickly an examination finding needs follow-up.
type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyHigh   UrgencyLevel = "high"
)

// ValidUrgencyLevel reports whether u is one of the three accepted tokens.
// Anything else coming back from the generative service is a contract
// violation, not a new category.
func ValidUrgencyLevel(u UrgencyLevel) bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// DiagnosisResult is the structured outcome of a media-based examination
// (posture photos, gait videos) analysed by the generation pipeline.
type DiagnosisResult struct {
	Assessment      string       `bson:"assessment" json:"assessment"`
	Findings        []string     `bson:"findings" json:"findings"`
	Recommendations []string     `bson:"recommendations" json:"recommendations"`
	UrgencyLevel    UrgencyLevel `bson:"urgencyLevel" json:"urgencyLevel"`
	NextSteps       string       `bson:"nextSteps" json:"nextSteps"`
}
