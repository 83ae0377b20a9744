// internal/generation/prompt.go
package generation

import "fmt"

// Default sampling parameters for both pipelines. Low temperature keeps the
// structured output close to the contract.
const (
	defaultTemperature = 0.3
	planMaxTokens      = 3000
	diagnosisMaxTokens = 2000
)

// planInstructions is the constant instruction block for the treatment-plan
// pipeline. It declares the exact JSON shape the validator enforces; the two
// must be kept in sync.
const planInstructions = `You are an expert physical therapist with 20+ years of experience specializing in movement dysfunction analysis and corrective exercise prescription. Create comprehensive, evidence-based exercise plans that address:

1. Root cause analysis of movement dysfunctions and compensation patterns
2. Biomechanical assessment of pain generators and dysfunction patterns
3. Progressive exercise phases based on tissue healing timelines
4. Specific exercise prescriptions with sets, reps, frequency, and progression criteria
5. Safety precautions and contraindications based on client's condition
6. Functional outcome expectations and timeline milestones

Consider pain science principles, kinetic chain dysfunction, tissue healing phases, and functional movement patterns. Address the entire movement system, not just symptomatic areas. Focus on correcting compensation patterns that perpetuate dysfunction.

Respond ONLY with valid JSON in this exact format:
{
  "overview": "Comprehensive analysis of client's movement dysfunction, pain generators, and treatment approach based on assessment findings",
  "phases": [
    {
      "name": "Phase name (e.g., Acute Pain Management & Early Mobility)",
      "duration": "Timeline (e.g., Weeks 1-2)",
      "goals": ["Specific, measurable goal 1", "Specific, measurable goal 2"],
      "exercises": [
        {
          "name": "Exercise name",
          "description": "Detailed technique description including starting position, movement pattern, breathing cues, and key teaching points",
          "sets": "Number of sets (e.g., 2-3 sets)",
          "reps": "Number of reps or duration (e.g., 10-15 reps or 30-60 seconds)",
          "frequency": "Daily frequency (e.g., 2-3x daily)",
          "progression": "Specific progression criteria and how to advance"
        }
      ]
    }
  ],
  "precautions": ["Important safety considerations and red flags based on client's specific condition"],
  "progressionNotes": "Overall progression strategy, expected timeline for phase transitions, and key indicators for advancement"
}`

// diagnosisInstructions is the constant instruction block for the
// examination pipeline (posture/gait media analysis).
const diagnosisInstructions = `You are a highly experienced movement specialist specializing in movement assessment, gait analysis, and comprehensive posture evaluation. Analyze the provided images/videos and description to provide a comprehensive movement assessment covering posture, movement quality, gait patterns, visible asymmetries, and compensation patterns.

For posture analysis, always explain what optimal alignment should look like, the specific deviations observed, their potential causes, and corrective strategies.

Respond ONLY with valid JSON in this exact format:
{
  "assessment": "Comprehensive analysis of visual findings and movement patterns observed",
  "findings": ["Specific finding 1", "Specific finding 2"],
  "recommendations": ["Recommendation 1", "Recommendation 2"],
  "urgencyLevel": "low|medium|high",
  "nextSteps": "Detailed next steps for care and follow-up"
}

Consider urgency levels:
- HIGH: Signs requiring immediate attention (severe deformity, acute injury, neurological signs)
- MEDIUM: Conditions needing prompt professional evaluation within days
- LOW: Conditions suitable for monitoring or routine professional consultation

IMPORTANT: Always include appropriate disclaimers about the limitations of visual assessment and the need for professional evaluation.`

// BuildPlanRequest turns a serialized assessment document into a generation
// request for the treatment-plan pipeline. The instruction block is a
// constant template, never derived from the data, which is what enforces the
// output contract.
func BuildPlanRequest(assessmentDoc string) Request {
	user := fmt.Sprintf(`Create a personalized exercise plan for this client based on their comprehensive assessment:

%s

Focus on:
- Identifying and correcting underlying movement dysfunctions and compensation patterns
- Addressing root causes rather than just symptoms
- Progressive functional restoration with measurable outcomes
- Safety considerations specific to their medical history and current symptoms

Provide specific, actionable exercise prescriptions that can be implemented immediately.`, assessmentDoc)

	return Request{
		Instructions: planInstructions,
		UserContent:  user,
		Temperature:  defaultTemperature,
		MaxTokens:    planMaxTokens,
	}
}

// BuildExaminationRequest builds the multimodal request for the diagnosis
// pipeline. Every media reference is attached as its own content part; the
// number of parts the service sees equals the number of references the
// caller declared.
func BuildExaminationRequest(description string, mediaURLs []string) Request {
	user := fmt.Sprintf(`Please analyze the following examination:

Clinical Description: %s

I am providing %d media file(s) for analysis. Please provide a comprehensive assessment based on visual findings, movement patterns, and any gait analysis if videos are present.`, description, len(mediaURLs))

	return Request{
		Instructions: diagnosisInstructions,
		UserContent:  user,
		MediaURLs:    append([]string(nil), mediaURLs...),
		Temperature:  defaultTemperature,
		MaxTokens:    diagnosisMaxTokens,
	}
}
