// internal/workers/scholarship/match-scholarships/models.go
package matchscholarships

import (
	"encoding/json"
	"time"

	"scholarship-engine/internal/matching"
)

// Input selects the scholarships to match: an inline list, a list of ids, or
// the whole active catalogue when both are empty.
type Input struct {
	StudentID         string          `json:"studentId"`
	StudentProfile    json.RawMessage `json:"studentProfile,omitempty"`
	ScholarshipIDs    []string        `json:"scholarshipIds,omitempty"`
	Scholarships      json.RawMessage `json:"scholarships,omitempty"`
	IncludeIneligible *bool           `json:"includeIneligible,omitempty"`
	Limit             int             `json:"limit,omitempty"`
	EvaluationTime    *time.Time      `json:"evaluationTime,omitempty"`
}

type Output struct {
	BatchID        string                 `json:"batchId"`
	StudentID      string                 `json:"studentId"`
	Matches        []matching.MatchResult `json:"matches"`
	EligibleCount  int                    `json:"eligibleCount"`
	TotalEvaluated int                    `json:"totalEvaluated"`
}
