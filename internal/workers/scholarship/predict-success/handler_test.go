// internal/workers/scholarship/predict-success/handler_test.go
package predictsuccess

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/models"
	"scholarship-engine/internal/prediction"
	"scholarship-engine/internal/sources/sourcestest"
	"scholarship-engine/internal/workers/scholarship/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticWeights struct {
	weights prediction.ResolvedWeights
	asked   []string
}

func (s *staticWeights) GetWeights(_ context.Context, id string) prediction.ResolvedWeights {
	s.asked = append(s.asked, id)
	return s.weights
}

func testResolver() *shared.Resolver {
	deadline := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	return &shared.Resolver{
		Students: &sourcestest.Students{Profiles: map[string]models.StudentProfile{
			"stu-1": {
				ID:                 "stu-1",
				GWA:                models.Float64(1.5),
				College:            "CEAT",
				YearLevel:          "3rd Year",
				AnnualFamilyIncome: models.Float64(150000),
				Citizenship:        "Filipino",
				ProfileCompleted:   true,
			},
		}},
		Scholarships: sourcestest.NewCatalogue(models.Scholarship{
			ID:                  "sch-1",
			Name:                "Engineering Merit",
			IsActive:            true,
			ApplicationDeadline: &deadline,
			Criteria: models.EligibilityCriteria{
				MaxGWA:                models.Float64(2.0),
				MaxAnnualFamilyIncome: models.Float64(300000),
				EligibleColleges:      []string{"CEAT"},
			},
		}),
	}
}

// ==========================
// Execute
// ==========================

func TestExecute_TrainedModel(t *testing.T) {
	weights := &staticWeights{weights: prediction.ResolvedWeights{
		Weights: prediction.ModelWeights{Intercept: -2, GWAScore: 2, IncomeMatch: 1, EligibilityScore: 1},
		Trained: true,
		Source:  prediction.SourceScholarship,
		ModelID: "model-9",
	}}
	h := NewHandler(LoadConfig(), testResolver(), weights, nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{StudentID: "stu-1", ScholarshipID: "sch-1"})

	require.NoError(t, err)
	assert.Equal(t, []string{"sch-1"}, weights.asked)
	assert.True(t, out.IsEligible)
	assert.Equal(t, 100, out.EligibilityScore)
	assert.True(t, out.TrainedModel)
	assert.Equal(t, prediction.SourceScholarship, out.ModelSource)
	assert.Equal(t, "model-9", out.ModelID)
	assert.Greater(t, out.Probability, 0.5)
	assert.Less(t, out.Probability, 1.0)
	assert.Len(t, out.Factors, 9)
}

func TestExecute_FallbackWithoutWeightSource(t *testing.T) {
	h := NewHandler(nil, testResolver(), nil, nil, logger.NewNoOpLogger())
	evaluatedAt := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	out, err := h.Execute(context.Background(), &Input{StudentID: "stu-1", ScholarshipID: "sch-1", EvaluationTime: &evaluatedAt})

	require.NoError(t, err)
	assert.False(t, out.TrainedModel)
	assert.Equal(t, prediction.SourceFallback, out.ModelSource)
	assert.Equal(t, prediction.Recommendation(out.PercentageScore), out.Recommendation)
	assert.Greater(t, out.Probability, 0.0)
}

func TestExecute_IneligibleStillScored(t *testing.T) {
	h := NewHandler(nil, testResolver(), nil, nil, logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{
		StudentProfile: json.RawMessage(`{"gwa": 2.8, "college": "CAS"}`),
		ScholarshipID:  "sch-1",
	})

	require.NoError(t, err)
	assert.False(t, out.IsEligible)
	assert.Greater(t, out.Probability, 0.0)
	assert.Less(t, out.Probability, 1.0)
}

func TestExecute_LookupFailure(t *testing.T) {
	resolver := testResolver()
	resolver.Scholarships.(*sourcestest.Catalogue).Err = stderrors.New("cluster unavailable")
	h := NewHandler(nil, resolver, nil, nil, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{StudentID: "stu-1", ScholarshipID: "sch-1"})

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeScholarshipLookupFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
