// internal/modelregistry/postgres.go
package modelregistry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"scholarship-engine/internal/models"
)

const (
	scholarshipModelQuery = `
		SELECT id, scholarship_id, version, accuracy, weights, is_active, trained_at
		FROM prediction_models
		WHERE scholarship_id = $1 AND is_active = true
		ORDER BY trained_at DESC
		LIMIT 1
	`

	globalModelQuery = `
		SELECT id, scholarship_id, version, accuracy, weights, is_active, trained_at
		FROM prediction_models
		WHERE scholarship_id IS NULL AND is_active = true
		ORDER BY trained_at DESC
		LIMIT 1
	`
)

// PostgresRegistry reads trained models from the prediction_models table.
type PostgresRegistry struct {
	db *sql.DB
}

func NewPostgresRegistry(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

func (r *PostgresRegistry) ScholarshipModel(ctx context.Context, scholarshipID string) (*models.TrainedModel, error) {
	return r.queryModel(ctx, scholarshipModelQuery, scholarshipID)
}

func (r *PostgresRegistry) GlobalModel(ctx context.Context) (*models.TrainedModel, error) {
	return r.queryModel(ctx, globalModelQuery)
}

func (r *PostgresRegistry) queryModel(ctx context.Context, query string, args ...interface{}) (*models.TrainedModel, error) {
	var (
		m             models.TrainedModel
		scholarshipID sql.NullString
		version       sql.NullString
		weightsJSON   []byte
	)

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&m.ID,
		&scholarshipID,
		&version,
		&m.Accuracy,
		&weightsJSON,
		&m.IsActive,
		&m.TrainedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrModelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query prediction model: %w", err)
	}

	if scholarshipID.Valid {
		m.ScholarshipID = &scholarshipID.String
	}
	m.Version = version.String

	if err := json.Unmarshal(weightsJSON, &m.Weights); err != nil {
		return nil, fmt.Errorf("decode weights of model %s: %w", m.ID, err)
	}
	return &m, nil
}
