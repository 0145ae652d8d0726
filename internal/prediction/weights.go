// internal/prediction/weights.go
package prediction

// Coefficient names as published in trained model weight bundles.
const (
	CoefIntercept            = "intercept"
	CoefGWAScore             = "gwaScore"
	CoefYearLevelMatch       = "yearLevelMatch"
	CoefIncomeMatch          = "incomeMatch"
	CoefSTBracketMatch       = "stBracketMatch"
	CoefCollegeMatch         = "collegeMatch"
	CoefCourseMatch          = "courseMatch"
	CoefCitizenshipMatch     = "citizenshipMatch"
	CoefDocumentCompleteness = "documentCompleteness"
	CoefApplicationTiming    = "applicationTiming"
	CoefEligibilityScore     = "eligibilityScore"
)

// FallbackIntercept calibrates the neutral model so that a student matching
// every criterion lands in the upper bands and a weak match stays low.
const FallbackIntercept = -6.0

type Source string

const (
	SourceScholarship Source = "scholarship"
	SourceGlobal      Source = "global"
	SourceFallback    Source = "fallback"
)

// ModelWeights is the intercept plus one coefficient per feature.
type ModelWeights struct {
	Intercept            float64 `json:"intercept" yaml:"intercept"`
	GWAScore             float64 `json:"gwaScore" yaml:"gwaScore"`
	YearLevelMatch       float64 `json:"yearLevelMatch" yaml:"yearLevelMatch"`
	IncomeMatch          float64 `json:"incomeMatch" yaml:"incomeMatch"`
	STBracketMatch       float64 `json:"stBracketMatch" yaml:"stBracketMatch"`
	CollegeMatch         float64 `json:"collegeMatch" yaml:"collegeMatch"`
	CourseMatch          float64 `json:"courseMatch" yaml:"courseMatch"`
	CitizenshipMatch     float64 `json:"citizenshipMatch" yaml:"citizenshipMatch"`
	DocumentCompleteness float64 `json:"documentCompleteness" yaml:"documentCompleteness"`
	ApplicationTiming    float64 `json:"applicationTiming" yaml:"applicationTiming"`
	EligibilityScore     float64 `json:"eligibilityScore" yaml:"eligibilityScore"`
}

// FallbackWeights weighs every feature equally so probability follows the raw feature values.
func FallbackWeights() ModelWeights {
	return ModelWeights{
		Intercept:            FallbackIntercept,
		GWAScore:             1.0,
		YearLevelMatch:       1.0,
		IncomeMatch:          1.0,
		STBracketMatch:       1.0,
		CollegeMatch:         1.0,
		CourseMatch:          1.0,
		CitizenshipMatch:     1.0,
		DocumentCompleteness: 1.0,
		ApplicationTiming:    1.0,
		EligibilityScore:     1.0,
	}
}

// WeightsFromMap reads a trained weight bundle; missing coefficients are zero.
func WeightsFromMap(m map[string]float64) ModelWeights {
	return ModelWeights{
		Intercept:            m[CoefIntercept],
		GWAScore:             m[CoefGWAScore],
		YearLevelMatch:       m[CoefYearLevelMatch],
		IncomeMatch:          m[CoefIncomeMatch],
		STBracketMatch:       m[CoefSTBracketMatch],
		CollegeMatch:         m[CoefCollegeMatch],
		CourseMatch:          m[CoefCourseMatch],
		CitizenshipMatch:     m[CoefCitizenshipMatch],
		DocumentCompleteness: m[CoefDocumentCompleteness],
		ApplicationTiming:    m[CoefApplicationTiming],
		EligibilityScore:     m[CoefEligibilityScore],
	}
}

// positiveCoefficients returns pointers to the weights expected to correlate
// positively with approval, keyed by coefficient name.
func (w *ModelWeights) positiveCoefficients() []struct {
	name  string
	value *float64
} {
	return []struct {
		name  string
		value *float64
	}{
		{CoefGWAScore, &w.GWAScore},
		{CoefIncomeMatch, &w.IncomeMatch},
		{CoefCitizenshipMatch, &w.CitizenshipMatch},
		{CoefEligibilityScore, &w.EligibilityScore},
	}
}

// ResolvedWeights carries the weights together with where they came from.
type ResolvedWeights struct {
	Weights  ModelWeights `json:"weights"`
	Trained  bool         `json:"trained"`
	Source   Source       `json:"source"`
	ModelID  string       `json:"modelId,omitempty"`
	Accuracy float64      `json:"accuracy,omitempty"`
}

func Fallback() ResolvedWeights {
	return ResolvedWeights{Weights: FallbackWeights(), Source: SourceFallback}
}
