// internal/workers/scholarship/shared/resolver_test.go
package shared

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/models"
	"scholarship-engine/internal/sources/sourcestest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codeOf(t *testing.T, err error) errors.ErrorCode {
	t.Helper()
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr), "expected StandardError, got %v", err)
	return stdErr.Code
}

func newResolver() *Resolver {
	return &Resolver{
		Students: &sourcestest.Students{Profiles: map[string]models.StudentProfile{
			"stu-1": {ID: "stu-1", College: "CEAT"},
		}},
		Scholarships: sourcestest.NewCatalogue(
			models.Scholarship{ID: "a", IsActive: true},
			models.Scholarship{ID: "b", IsActive: false},
			models.Scholarship{ID: "c", IsActive: true},
		),
	}
}

// ==========================
// Student
// ==========================

func TestStudent_Inline(t *testing.T) {
	r := newResolver()
	p, err := r.Student(context.Background(), "stu-9", json.RawMessage(`{"gwa": 1.5, "college": "CAS"}`))

	require.NoError(t, err)
	assert.Equal(t, "stu-9", p.ID)
	assert.Equal(t, "CAS", p.College)
	assert.Equal(t, 0, r.Students.(*sourcestest.Students).Calls)
}

func TestStudent_InlineInvalid(t *testing.T) {
	_, err := newResolver().Student(context.Background(), "", json.RawMessage(`{"gwa": "one point five"}`))
	assert.Equal(t, errors.ErrCodeInvalidStudentProfile, codeOf(t, err))
}

func TestStudent_ByID(t *testing.T) {
	p, err := newResolver().Student(context.Background(), "stu-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "CEAT", p.College)
}

func TestStudent_NotFound(t *testing.T) {
	_, err := newResolver().Student(context.Background(), "ghost", json.RawMessage("null"))
	assert.Equal(t, errors.ErrCodeStudentNotFound, codeOf(t, err))
}

func TestStudent_LookupFailure(t *testing.T) {
	r := &Resolver{Students: &sourcestest.Students{Err: stderrors.New("connection refused")}}
	_, err := r.Student(context.Background(), "stu-1", nil)

	assert.Equal(t, errors.ErrCodeProfileLookupFailed, codeOf(t, err))
}

func TestStudent_Missing(t *testing.T) {
	_, err := newResolver().Student(context.Background(), "", nil)
	assert.Equal(t, errors.ErrCodeInvalidStudentProfile, codeOf(t, err))
}

// ==========================
// Scholarships
// ==========================

func TestScholarship_InlineAndByID(t *testing.T) {
	r := newResolver()

	sch, err := r.Scholarship(context.Background(), "", json.RawMessage(`{"id": "inline", "eligibilityCriteria": {"maxGWA": 2}}`))
	require.NoError(t, err)
	assert.Equal(t, "inline", sch.ID)
	assert.Equal(t, 2.0, *sch.Criteria.MaxGWA)

	sch, err = r.Scholarship(context.Background(), "a", nil)
	require.NoError(t, err)
	assert.Equal(t, "a", sch.ID)

	_, err = r.Scholarship(context.Background(), "zzz", nil)
	assert.Equal(t, errors.ErrCodeScholarshipNotFound, codeOf(t, err))
}

func TestScholarship_InlineRejectsUnknownOperator(t *testing.T) {
	doc := `{"id": "x", "eligibilityCriteria": {"customConditions": [
		{"fieldPath": "gwa", "conditionType": "range", "operator": "roughly"}
	]}}`
	_, err := newResolver().Scholarship(context.Background(), "", json.RawMessage(doc))
	assert.Equal(t, errors.ErrCodeInvalidScholarship, codeOf(t, err))
}

func TestScholarships_Modes(t *testing.T) {
	r := newResolver()
	ctx := context.Background()

	active, err := r.ResolveScholarships(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, []string{active[0].ID, active[1].ID})

	byID, err := r.ResolveScholarships(ctx, []string{"c", "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "c", byID[0].ID)
	assert.Equal(t, "b", byID[1].ID)

	inline, err := r.ResolveScholarships(ctx, []string{"ignored"}, json.RawMessage(`[{"id": "i1"}, {"id": "i2"}]`))
	require.NoError(t, err)
	assert.Len(t, inline, 2)

	_, err = r.ResolveScholarships(ctx, nil, json.RawMessage(`[{"id": "ok"}, {"name": "no id"}]`))
	assert.Equal(t, errors.ErrCodeInvalidScholarship, codeOf(t, err))

	_, err = r.ResolveScholarships(ctx, []string{"a", "nope"}, nil)
	assert.Equal(t, errors.ErrCodeScholarshipNotFound, codeOf(t, err))
}

func TestScholarships_CatalogueDown(t *testing.T) {
	cat := sourcestest.NewCatalogue()
	cat.Err = stderrors.New("es unavailable")
	r := &Resolver{Scholarships: cat}

	_, err := r.ResolveScholarships(context.Background(), nil, nil)
	assert.Equal(t, errors.ErrCodeScholarshipLookupFailed, codeOf(t, err))
}
