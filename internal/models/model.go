// internal/models/model.go
package models

import "time"

// TrainedModel is a logistic-regression weight bundle published by the offline
// training pipeline. A nil ScholarshipID marks the global model.
type TrainedModel struct {
	ID            string             `json:"id" yaml:"id"`
	ScholarshipID *string            `json:"scholarshipId,omitempty" yaml:"scholarshipId,omitempty"`
	Version       string             `json:"version,omitempty" yaml:"version,omitempty"`
	Accuracy      float64            `json:"accuracy" yaml:"accuracy"`
	Weights       map[string]float64 `json:"weights" yaml:"weights"`
	IsActive      bool               `json:"isActive" yaml:"isActive"`
	TrainedAt     time.Time          `json:"trainedAt" yaml:"trainedAt"`
}

func (m TrainedModel) IsGlobal() bool {
	return m.ScholarshipID == nil || *m.ScholarshipID == ""
}
