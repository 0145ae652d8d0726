// internal/workers/scholarship/evaluate-eligibility/handler_test.go
package evaluateeligibility

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/models"
	"scholarship-engine/internal/sources/sourcestest"
	"scholarship-engine/internal/workers/scholarship/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	resolver := &shared.Resolver{
		Students: &sourcestest.Students{Profiles: map[string]models.StudentProfile{
			"stu-1": {ID: "stu-1", GWA: models.Float64(1.4), College: "CAS"},
		}},
		Scholarships: sourcestest.NewCatalogue(models.Scholarship{
			ID:       "sch-1",
			Name:     "Engineering Merit",
			IsActive: true,
			Criteria: models.EligibilityCriteria{
				MaxGWA:           models.Float64(1.75),
				EligibleColleges: []string{"CEAT"},
			},
		}),
	}
	return NewHandler(LoadConfig(), resolver, nil, logger.NewTestLogger(t))
}

// ==========================
// Execute
// ==========================

func TestExecute_Ineligible(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{StudentID: "stu-1", ScholarshipID: "sch-1"})

	require.NoError(t, err)
	assert.False(t, out.IsEligible)
	assert.Equal(t, 50, out.EligibilityScore)
	assert.Equal(t, 2, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.FailedRequired)
	require.Len(t, out.FailedCriteria, 1)
	assert.Len(t, out.Conditions, 2)
}

func TestExecute_InlineEligible(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		StudentProfile: json.RawMessage(`{"id": "stu-9", "gwa": 1.2, "college": "College of Engineering and Agro-Industrial Technology"}`),
		ScholarshipID:  "sch-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "stu-9", out.StudentID)
	assert.True(t, out.IsEligible)
	assert.Equal(t, 100, out.EligibilityScore)
	assert.Empty(t, out.FailedCriteria)
}

func TestExecute_QuickCheck(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{StudentID: "stu-1", ScholarshipID: "sch-1", QuickCheck: true})

	require.NoError(t, err)
	assert.False(t, out.IsEligible)
	assert.Empty(t, out.Conditions)
	assert.Equal(t, 0, out.EligibilityScore)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		code  errors.ErrorCode
	}{
		{"unknown student", Input{StudentID: "nobody", ScholarshipID: "sch-1"}, errors.ErrCodeStudentNotFound},
		{"unknown scholarship", Input{StudentID: "stu-1", ScholarshipID: "sch-x"}, errors.ErrCodeScholarshipNotFound},
		{"no student", Input{ScholarshipID: "sch-1"}, errors.ErrCodeInvalidStudentProfile},
		{"bad inline scholarship", Input{StudentID: "stu-1", Scholarship: json.RawMessage(`{"name": "no id"}`)}, errors.ErrCodeInvalidScholarship},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestHandler(t).Execute(context.Background(), &tt.input)

			var stdErr *errors.StandardError
			require.True(t, stderrors.As(err, &stdErr))
			assert.Equal(t, tt.code, stdErr.Code)
		})
	}
}
