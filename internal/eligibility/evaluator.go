// internal/eligibility/evaluator.go
package eligibility

import (
	"math"

	"scholarship-engine/internal/models"
)

type Summary struct {
	Total          int `json:"total"`
	Passed         int `json:"passed"`
	Failed         int `json:"failed"`
	FailedRequired int `json:"failedRequired"`
}

// EligibilityResult aggregates every evaluated condition. Passed is true iff no
// required condition failed; Score is the share of all conditions that passed.
type EligibilityResult struct {
	Passed         bool              `json:"passed"`
	Score          int               `json:"score"`
	Conditions     []ConditionResult `json:"conditions"`
	FailedRequired []ConditionResult `json:"failedRequired"`
	Summary        Summary           `json:"summary"`
}

// Evaluate normalizes the profile and runs the built-in and custom conditions.
func Evaluate(student models.StudentProfile, criteria models.EligibilityCriteria) EligibilityResult {
	return EvaluateNormalized(Normalize(student), criteria)
}

func EvaluateNormalized(s NormalizedStudent, criteria models.EligibilityCriteria) EligibilityResult {
	conditions := make([]ConditionResult, 0, len(builtinConditions)+len(criteria.CustomConditions))
	for _, def := range builtinConditions {
		if def.shouldSkip(&criteria) {
			continue
		}
		conditions = append(conditions, def.evaluate(&s, &criteria))
	}
	conditions = append(conditions, EvaluateCustom(s, criteria.CustomConditions)...)

	return aggregate(conditions)
}

func aggregate(conditions []ConditionResult) EligibilityResult {
	result := EligibilityResult{
		Conditions:     conditions,
		FailedRequired: []ConditionResult{},
		Summary:        Summary{Total: len(conditions)},
	}

	for _, c := range conditions {
		if c.Passed {
			result.Summary.Passed++
			continue
		}
		result.Summary.Failed++
		if c.Importance == models.ImportanceRequired {
			result.FailedRequired = append(result.FailedRequired, c)
		}
	}
	result.Summary.FailedRequired = len(result.FailedRequired)
	result.Passed = len(result.FailedRequired) == 0

	if result.Summary.Total == 0 {
		result.Score = 100
	} else {
		result.Score = int(math.Round(100 * float64(result.Summary.Passed) / float64(result.Summary.Total)))
	}
	return result
}

// QuickCheck returns the same verdict as Evaluate(...).Passed, stopping at the
// first failed required condition.
func QuickCheck(student models.StudentProfile, criteria models.EligibilityCriteria) bool {
	return QuickCheckNormalized(Normalize(student), criteria)
}

func QuickCheckNormalized(s NormalizedStudent, criteria models.EligibilityCriteria) bool {
	for _, def := range builtinConditions {
		if def.shouldSkip(&criteria) {
			continue
		}
		if !def.check(&s, &criteria) {
			return false
		}
	}

	for _, cond := range criteria.CustomConditions {
		if !cond.Active() || effectiveImportance(cond) != models.ImportanceRequired {
			continue
		}
		passed, skipped := checkCustom(&s, cond)
		if !skipped && !passed {
			return false
		}
	}
	return true
}
