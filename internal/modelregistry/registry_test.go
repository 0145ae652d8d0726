// internal/modelregistry/registry_test.go
package modelregistry

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var modelColumns = []string{"id", "scholarship_id", "version", "accuracy", "weights", "is_active", "trained_at"}

func TestPostgresRegistry_ScholarshipModel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	trainedAt := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM prediction_models")).
		WithArgs("sch-1").
		WillReturnRows(sqlmock.NewRows(modelColumns).
			AddRow("m-1", "sch-1", "v3", 0.82, []byte(`{"intercept": -2.5, "gwaScore": 1.9}`), true, trainedAt))

	reg := NewPostgresRegistry(db)
	m, err := reg.ScholarshipModel(context.Background(), "sch-1")

	require.NoError(t, err)
	assert.Equal(t, "m-1", m.ID)
	require.NotNil(t, m.ScholarshipID)
	assert.Equal(t, "sch-1", *m.ScholarshipID)
	assert.Equal(t, "v3", m.Version)
	assert.Equal(t, 0.82, m.Accuracy)
	assert.Equal(t, -2.5, m.Weights["intercept"])
	assert.Equal(t, 1.9, m.Weights["gwaScore"])
	assert.Equal(t, trainedAt, m.TrainedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRegistry_GlobalModel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE scholarship_id IS NULL")).
		WillReturnRows(sqlmock.NewRows(modelColumns).
			AddRow("m-global", nil, nil, 0.7, []byte(`{"intercept": -1}`), true, time.Now()))

	m, err := NewPostgresRegistry(db).GlobalModel(context.Background())

	require.NoError(t, err)
	assert.True(t, m.IsGlobal())
	assert.Equal(t, "", m.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRegistry_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM prediction_models")).
		WithArgs("sch-404").
		WillReturnRows(sqlmock.NewRows(modelColumns))

	_, err = NewPostgresRegistry(db).ScholarshipModel(context.Background(), "sch-404")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestPostgresRegistry_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM prediction_models")).
		WithArgs("sch-1").
		WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresRegistry(db).ScholarshipModel(context.Background(), "sch-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrModelNotFound))
}

func TestPostgresRegistry_BadWeights(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM prediction_models")).
		WithArgs("sch-1").
		WillReturnRows(sqlmock.NewRows(modelColumns).
			AddRow("m-1", "sch-1", "v1", 0.8, []byte(`not-json`), true, time.Now()))

	_, err = NewPostgresRegistry(db).ScholarshipModel(context.Background(), "sch-1")
	assert.ErrorContains(t, err, "decode weights")
}

const modelYAML = `
models:
  - id: m-old
    scholarshipId: sch-1
    accuracy: 0.70
    isActive: true
    trainedAt: 2026-01-10T00:00:00Z
    weights:
      intercept: -1.0
  - id: m-new
    scholarshipId: sch-1
    accuracy: 0.75
    isActive: true
    trainedAt: 2026-04-10T00:00:00Z
    weights:
      intercept: -2.0
      gwaScore: 1.4
  - id: m-retired
    scholarshipId: sch-1
    accuracy: 0.95
    isActive: false
    trainedAt: 2026-05-10T00:00:00Z
    weights:
      intercept: 0
  - id: m-global
    accuracy: 0.61
    isActive: true
    trainedAt: 2026-02-01T00:00:00Z
    weights:
      intercept: -3.0
`

func TestFileRegistry(t *testing.T) {
	reg, err := ParseModelFile([]byte(modelYAML))
	require.NoError(t, err)
	ctx := context.Background()

	m, err := reg.ScholarshipModel(ctx, "sch-1")
	require.NoError(t, err)
	assert.Equal(t, "m-new", m.ID)
	assert.Equal(t, 1.4, m.Weights["gwaScore"])

	g, err := reg.GlobalModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m-global", g.ID)

	_, err = reg.ScholarshipModel(ctx, "sch-2")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestFileRegistry_RejectsMissingID(t *testing.T) {
	_, err := ParseModelFile([]byte("models:\n  - accuracy: 0.9\n"))
	assert.Error(t, err)
}

func TestFileRegistry_CancelledContext(t *testing.T) {
	reg, err := ParseModelFile([]byte(modelYAML))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = reg.GlobalModel(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
