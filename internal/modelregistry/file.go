// internal/modelregistry/file.go
package modelregistry

import (
	"context"
	"fmt"
	"os"

	"scholarship-engine/internal/models"

	"gopkg.in/yaml.v3"
)

// ModelFile is the YAML document read by FileRegistry.
type ModelFile struct {
	Models []models.TrainedModel `yaml:"models"`
}

// FileRegistry serves trained models from a YAML export, for offline runs and tests.
type FileRegistry struct {
	models []models.TrainedModel
}

func NewFileRegistry(path string) (*FileRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file %s: %w", path, err)
	}
	return ParseModelFile(data)
}

func ParseModelFile(data []byte) (*FileRegistry, error) {
	var doc ModelFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}
	for i, m := range doc.Models {
		if m.ID == "" {
			return nil, fmt.Errorf("model %d: id is required", i)
		}
	}
	return &FileRegistry{models: doc.Models}, nil
}

func (r *FileRegistry) ScholarshipModel(ctx context.Context, scholarshipID string) (*models.TrainedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return latestActive(r.models, func(m models.TrainedModel) bool {
		return !m.IsGlobal() && *m.ScholarshipID == scholarshipID
	})
}

func (r *FileRegistry) GlobalModel(ctx context.Context) (*models.TrainedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return latestActive(r.models, models.TrainedModel.IsGlobal)
}
