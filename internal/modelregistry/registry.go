// internal/modelregistry/registry.go
package modelregistry

import (
	"context"
	"errors"

	"scholarship-engine/internal/models"
)

// ErrModelNotFound reports that no active trained model exists for the request.
var ErrModelNotFound = errors.New("trained model not found")

// Registry exposes the trained models published by the offline training pipeline.
type Registry interface {
	ScholarshipModel(ctx context.Context, scholarshipID string) (*models.TrainedModel, error)
	GlobalModel(ctx context.Context) (*models.TrainedModel, error)
}

// latestActive picks the most recently trained active model matching the filter.
func latestActive(all []models.TrainedModel, match func(models.TrainedModel) bool) (*models.TrainedModel, error) {
	var best *models.TrainedModel
	for i := range all {
		m := all[i]
		if !m.IsActive || !match(m) {
			continue
		}
		if best == nil || m.TrainedAt.After(best.TrainedAt) {
			best = &m
		}
	}
	if best == nil {
		return nil, ErrModelNotFound
	}
	return best, nil
}
