// internal/matching/matcher.go
package matching

import (
	"context"
	"sort"
	"time"

	"scholarship-engine/internal/eligibility"
	"scholarship-engine/internal/models"
	"scholarship-engine/internal/prediction"

	"golang.org/x/sync/errgroup"
)

const DefaultMaxParallel = 8

// WeightSource resolves regression weights for a scholarship.
type WeightSource interface {
	GetWeights(ctx context.Context, scholarshipID string) prediction.ResolvedWeights
}

type Options struct {
	// IncludeIneligible scores scholarships whose required criteria failed.
	IncludeIneligible bool
	SkipPrediction    bool
	// MaxParallel bounds batch fan-out; zero uses DefaultMaxParallel.
	MaxParallel int
	Now         time.Time
}

type MatchResult struct {
	ScholarshipID   string                        `json:"scholarshipId"`
	ScholarshipName string                        `json:"scholarshipName"`
	IsEligible      bool                          `json:"isEligible"`
	PredictionScore float64                       `json:"predictionScore"`
	FailedCriteria  []string                      `json:"failedCriteria"`
	Eligibility     eligibility.EligibilityResult `json:"eligibility"`
	Prediction      *prediction.PredictionResult  `json:"prediction,omitempty"`
}

// Matcher composes the eligibility evaluator and the probability scorer.
type Matcher struct {
	weights WeightSource
}

// NewMatcher creates a Matcher. A nil source scores with the neutral fallback weights.
func NewMatcher(weights WeightSource) *Matcher {
	return &Matcher{weights: weights}
}

// MatchStudentToScholarship evaluates eligibility first and scores the pair when it
// is eligible or the caller asked for ineligible scholarships to be scored too.
func (m *Matcher) MatchStudentToScholarship(ctx context.Context, student models.StudentProfile, sch models.Scholarship, opts Options) MatchResult {
	return m.match(ctx, eligibility.Normalize(student), sch, opts)
}

// MatchStudentToScholarships matches every scholarship independently and returns the
// results in input order. It only fails when ctx is cancelled.
func (m *Matcher) MatchStudentToScholarships(ctx context.Context, student models.StudentProfile, scholarships []models.Scholarship, opts Options) ([]MatchResult, error) {
	ns := eligibility.Normalize(student)
	results := make([]MatchResult, len(scholarships))

	limit := opts.MaxParallel
	if limit <= 0 {
		limit = DefaultMaxParallel
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range scholarships {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.match(gctx, ns, scholarships[i], opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (m *Matcher) match(ctx context.Context, ns eligibility.NormalizedStudent, sch models.Scholarship, opts Options) MatchResult {
	elig := eligibility.EvaluateNormalized(ns, sch.Criteria)

	result := MatchResult{
		ScholarshipID:   sch.ID,
		ScholarshipName: sch.Name,
		IsEligible:      elig.Passed,
		FailedCriteria:  make([]string, 0, len(elig.FailedRequired)),
		Eligibility:     elig,
	}
	for _, c := range elig.FailedRequired {
		result.FailedCriteria = append(result.FailedCriteria, c.Description)
	}

	if opts.SkipPrediction || (!elig.Passed && !opts.IncludeIneligible) {
		return result
	}

	weights := prediction.Fallback()
	if m.weights != nil {
		weights = m.weights.GetWeights(ctx, sch.ID)
	}

	pred := prediction.ScoreNormalized(ns, sch, weights, prediction.Options{
		Eligibility: &elig,
		Now:         opts.Now,
	})
	result.Prediction = &pred
	result.PredictionScore = pred.Probability
	return result
}

// Rank orders results eligible first, then by prediction score and eligibility score.
func Rank(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.IsEligible != b.IsEligible {
			return a.IsEligible
		}
		if a.PredictionScore != b.PredictionScore {
			return a.PredictionScore > b.PredictionScore
		}
		return a.Eligibility.Score > b.Eligibility.Score
	})
}
