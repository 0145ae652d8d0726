// internal/workers/scholarship/shared/resolver.go
package shared

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/common/validation"
	"scholarship-engine/internal/models"
	"scholarship-engine/internal/sources"
)

// Resolver turns job variables into typed engine inputs. Inline documents are
// schema-checked; ids are looked up through the sources.
type Resolver struct {
	Students     sources.StudentSource
	Scholarships sources.ScholarshipSource
}

func isEmpty(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// Student resolves an inline profile or loads it by id.
func (r *Resolver) Student(ctx context.Context, studentID string, inline json.RawMessage) (*models.StudentProfile, error) {
	if !isEmpty(inline) {
		if result := validation.ValidateStudentProfile([]byte(inline)); !result.Valid {
			return nil, errors.NewInvalidStudentProfileError(result.Summary())
		}
		var profile models.StudentProfile
		if err := json.Unmarshal(inline, &profile); err != nil {
			return nil, errors.NewInvalidStudentProfileError(err.Error())
		}
		if profile.ID == "" {
			profile.ID = studentID
		}
		return &profile, nil
	}

	if studentID == "" {
		return nil, errors.NewInvalidStudentProfileError("either studentId or studentProfile is required")
	}
	if r.Students == nil {
		return nil, errors.NewProfileLookupFailedError(fmt.Errorf("no student source configured"))
	}

	profile, err := r.Students.GetStudent(ctx, studentID)
	if stderrors.Is(err, sources.ErrStudentNotFound) {
		return nil, errors.NewStudentNotFoundError(studentID)
	}
	if err != nil {
		return nil, errors.NewProfileLookupFailedError(err)
	}
	return profile, nil
}

// Scholarship resolves an inline scholarship or loads it by id.
func (r *Resolver) Scholarship(ctx context.Context, scholarshipID string, inline json.RawMessage) (*models.Scholarship, error) {
	if !isEmpty(inline) {
		return decodeScholarship(inline)
	}

	if scholarshipID == "" {
		return nil, errors.NewInvalidScholarshipError("either scholarshipId or scholarship is required")
	}
	if r.Scholarships == nil {
		return nil, errors.NewScholarshipLookupFailedError(fmt.Errorf("no scholarship source configured"))
	}

	sch, err := r.Scholarships.GetScholarship(ctx, scholarshipID)
	if err != nil {
		return nil, lookupError(err, scholarshipID)
	}
	return sch, nil
}

// ResolveScholarships resolves an inline list, a list of ids, or else the active catalogue.
func (r *Resolver) ResolveScholarships(ctx context.Context, ids []string, inline json.RawMessage) ([]models.Scholarship, error) {
	if !isEmpty(inline) {
		var docs []json.RawMessage
		if err := json.Unmarshal(inline, &docs); err != nil {
			return nil, errors.NewInvalidScholarshipError(fmt.Sprintf("scholarships must be an array: %v", err))
		}
		out := make([]models.Scholarship, 0, len(docs))
		for i, doc := range docs {
			sch, err := decodeScholarship(doc)
			if err != nil {
				if stdErr, ok := err.(*errors.StandardError); ok {
					stdErr.Details = fmt.Sprintf("[%d] %s", i, stdErr.Details)
				}
				return nil, err
			}
			out = append(out, *sch)
		}
		return out, nil
	}

	if r.Scholarships == nil {
		return nil, errors.NewScholarshipLookupFailedError(fmt.Errorf("no scholarship source configured"))
	}

	if len(ids) > 0 {
		schs, err := r.Scholarships.GetScholarships(ctx, ids)
		if err != nil {
			return nil, lookupError(err, fmt.Sprintf("%v", ids))
		}
		return schs, nil
	}

	schs, err := r.Scholarships.ActiveScholarships(ctx)
	if err != nil {
		return nil, errors.NewScholarshipLookupFailedError(err)
	}
	return schs, nil
}

func decodeScholarship(raw json.RawMessage) (*models.Scholarship, error) {
	if result := validation.ValidateScholarship([]byte(raw)); !result.Valid {
		return nil, errors.NewInvalidScholarshipError(result.Summary())
	}
	var sch models.Scholarship
	if err := json.Unmarshal(raw, &sch); err != nil {
		return nil, errors.NewInvalidScholarshipError(err.Error())
	}
	return &sch, nil
}

func lookupError(err error, ref string) error {
	if stderrors.Is(err, sources.ErrScholarshipNotFound) {
		return errors.NewScholarshipNotFoundError(err.Error())
	}
	return errors.NewScholarshipLookupFailedError(fmt.Errorf("%s: %w", ref, err))
}
