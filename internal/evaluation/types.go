package evaluation

import "context"

// Status is the pipeline lifecycle. COMPLETED and FAILED are terminal; a
// retry is a caller decision and means a new pipeline.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Dimensions are the 8 fixed scoring axes, in report order.
var Dimensions = []string{
	"COMMUNICATION",
	"PROBLEM_SOLVING",
	"TECHNICAL_KNOWLEDGE",
	"COLLABORATION",
	"ADAPTABILITY",
	"LEADERSHIP",
	"CREATIVITY",
	"TIME_MANAGEMENT",
}

// DimensionScore is one axis of the scorecard. Score is nil when the
// capability judged the evidence insufficient.
type DimensionScore struct {
	Score               *int     `json:"score"`
	Rationale           string   `json:"rationale"`
	GreenFlags          []string `json:"greenFlags"`
	RedFlags            []string `json:"redFlags"`
	ObservableBehaviors string   `json:"observableBehaviors,omitempty"`
	Timestamps          []string `json:"timestamps"`
	TrainableGap        bool     `json:"trainableGap"`
}

// KeyHighlight is one cited moment from the session.
type KeyHighlight struct {
	Timestamp   string  `json:"timestamp"`
	Type        string  `json:"type"` // "positive" | "negative"
	Dimension   string  `json:"dimension"`
	Description string  `json:"description"`
	Quote       *string `json:"quote"`
}

// Result is the full scorecard returned to the results view.
type Result struct {
	OverallScore            float64                   `json:"overallScore"`
	DimensionScores         map[string]DimensionScore `json:"dimensionScores"`
	OverallGreenFlags       []string                  `json:"overallGreenFlags"`
	OverallRedFlags         []string                  `json:"overallRedFlags"`
	Recommendation          string                    `json:"recommendation"` // "hire" | "maybe" | "no_hire"
	RecommendationRationale string                    `json:"recommendationRationale"`
	OverallSummary          string                    `json:"overallSummary"`
	KeyHighlights           []KeyHighlight            `json:"keyHighlights"`
	Confidence              string                    `json:"confidence"` // "high" | "medium" | "low"
}

// Part is one unit of evidence submitted to the scoring capability: either
// inline media or text, never both.
type Part struct {
	MIMEType string
	Data     []byte
	Text     string
}

// Scorer is the structured evaluation capability. It returns raw JSON text
// for the pipeline to decode.
type Scorer interface {
	GenerateEvaluation(ctx context.Context, systemInstruction string, parts []Part) (string, error)
}
