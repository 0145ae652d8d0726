// internal/workers/model/clear-weight-cache/models.go
package clearweightcache

import "time"

// Input carries the model the training workflow just published, for logging only.
type Input struct {
	ModelID       string `json:"modelId,omitempty"`
	ScholarshipID string `json:"scholarshipId,omitempty"`
}

type Output struct {
	Cleared   bool      `json:"cleared"`
	ClearedAt time.Time `json:"clearedAt"`
}
