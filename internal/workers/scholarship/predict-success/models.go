// internal/workers/scholarship/predict-success/models.go
package predictsuccess

import (
	"encoding/json"
	"time"

	"scholarship-engine/internal/prediction"
)

type Input struct {
	StudentID      string          `json:"studentId"`
	StudentProfile json.RawMessage `json:"studentProfile,omitempty"`
	ScholarshipID  string          `json:"scholarshipId"`
	Scholarship    json.RawMessage `json:"scholarship,omitempty"`
	// EvaluationTime drives the application timing feature; zero leaves it neutral.
	EvaluationTime *time.Time `json:"evaluationTime,omitempty"`
}

type Output struct {
	StudentID        string                        `json:"studentId"`
	ScholarshipID    string                        `json:"scholarshipId"`
	IsEligible       bool                          `json:"isEligible"`
	EligibilityScore int                           `json:"eligibilityScore"`
	Probability      float64                       `json:"probability"`
	PercentageScore  int                           `json:"percentageScore"`
	Confidence       prediction.Confidence         `json:"confidence"`
	Recommendation   string                        `json:"recommendation"`
	TrainedModel     bool                          `json:"trainedModel"`
	ModelSource      prediction.Source             `json:"modelSource"`
	ModelID          string                        `json:"modelId,omitempty"`
	Factors          []prediction.PredictionFactor `json:"factors"`
}
