// internal/workers/scholarship/evaluate-eligibility/models.go
package evaluateeligibility

import (
	"encoding/json"

	"scholarship-engine/internal/eligibility"
)

type Input struct {
	StudentID      string          `json:"studentId"`
	StudentProfile json.RawMessage `json:"studentProfile,omitempty"`
	ScholarshipID  string          `json:"scholarshipId"`
	Scholarship    json.RawMessage `json:"scholarship,omitempty"`
	// QuickCheck skips the per-condition report.
	QuickCheck bool `json:"quickCheck,omitempty"`
}

type Output struct {
	StudentID        string                        `json:"studentId"`
	ScholarshipID    string                        `json:"scholarshipId"`
	IsEligible       bool                          `json:"isEligible"`
	EligibilityScore int                           `json:"eligibilityScore"`
	FailedCriteria   []string                      `json:"failedCriteria"`
	Summary          eligibility.Summary           `json:"summary"`
	Conditions       []eligibility.ConditionResult `json:"conditions,omitempty"`
}
