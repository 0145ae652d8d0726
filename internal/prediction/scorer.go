// internal/prediction/scorer.go
package prediction

import (
	"math"
	"sort"

	"scholarship-engine/internal/eligibility"
	"scholarship-engine/internal/models"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Recommendation bands, checked from the top.
const (
	RecommendStrong   = "strongly recommended"
	RecommendGood     = "good match"
	RecommendModerate = "moderate match"
	RecommendLow      = "low match"
	RecommendNot      = "not recommended"
)

// maxLogit keeps exp() finite and the probability strictly inside (0, 1).
const maxLogit = 35.0

type PredictionFactor struct {
	Name            string  `json:"name"`
	Value           float64 `json:"value"`
	Weight          float64 `json:"weight"`
	RawContribution float64 `json:"rawContribution"`
	Contribution    float64 `json:"contribution"`
	Description     string  `json:"description"`
	Met             bool    `json:"met"`
}

type PredictionResult struct {
	Probability     float64            `json:"probability"`
	PercentageScore int                `json:"percentageScore"`
	Confidence      Confidence         `json:"confidence"`
	Factors         []PredictionFactor `json:"factors"`
	Recommendation  string             `json:"recommendation"`
	TrainedModel    bool               `json:"trainedModel"`
	ModelSource     Source             `json:"modelSource"`
	ModelID         string             `json:"modelId,omitempty"`
	Convention      Convention         `json:"convention"`
	Features        FeatureVector      `json:"features"`
}

// ConventionFor picks graded scoring for trained weights and binary for the fallback.
func ConventionFor(w ResolvedWeights) Convention {
	if w.Trained {
		return ConventionGraded
	}
	return ConventionBinary
}

// Score computes the approval probability for a student and scholarship.
func Score(student models.StudentProfile, sch models.Scholarship, weights ResolvedWeights, opts Options) PredictionResult {
	return ScoreNormalized(eligibility.Normalize(student), sch, weights, opts)
}

func ScoreNormalized(s eligibility.NormalizedStudent, sch models.Scholarship, weights ResolvedWeights, opts Options) PredictionResult {
	conv := opts.Convention
	if conv == "" {
		conv = ConventionFor(weights)
	}
	conv = conventionOrDefault(conv)

	a := assess(s, sch, opts)
	fv := buildFeatures(s, a, conv)
	probability := Probability(weights.Weights, fv)
	percentage := int(math.Round(probability * 100))

	return PredictionResult{
		Probability:     probability,
		PercentageScore: percentage,
		Confidence:      confidenceFor(s),
		Factors:         explain(a, fv, weights.Weights),
		Recommendation:  Recommendation(percentage),
		TrainedModel:    weights.Trained,
		ModelSource:     weights.Source,
		ModelID:         weights.ModelID,
		Convention:      conv,
		Features:        fv,
	}
}

// Logit is intercept + Σ weight·feature.
func Logit(w ModelWeights, fv FeatureVector) float64 {
	return w.Intercept +
		w.GWAScore*fv.GWAScore +
		w.YearLevelMatch*fv.YearLevelMatch +
		w.IncomeMatch*fv.IncomeMatch +
		w.STBracketMatch*fv.STBracketMatch +
		w.CollegeMatch*fv.CollegeMatch +
		w.CourseMatch*fv.CourseMatch +
		w.CitizenshipMatch*fv.CitizenshipMatch +
		w.DocumentCompleteness*fv.DocumentCompleteness +
		w.ApplicationTiming*fv.ApplicationTiming +
		w.EligibilityScore*fv.EligibilityScore
}

func Probability(w ModelWeights, fv FeatureVector) float64 {
	return Sigmoid(Logit(w, fv))
}

// Sigmoid is the logistic function over a clamped logit; NaN is treated as 0.
func Sigmoid(z float64) float64 {
	if math.IsNaN(z) {
		z = 0
	}
	z = math.Max(-maxLogit, math.Min(maxLogit, z))
	return 1 / (1 + math.Exp(-z))
}

func Recommendation(percentage int) string {
	switch {
	case percentage >= 75:
		return RecommendStrong
	case percentage >= 60:
		return RecommendGood
	case percentage >= 40:
		return RecommendModerate
	case percentage >= 25:
		return RecommendLow
	default:
		return RecommendNot
	}
}

func confidenceFor(s eligibility.NormalizedStudent) Confidence {
	switch {
	case s.ProfileCompleted:
		return ConfidenceHigh
	case s.HasGWA && s.HasIncome:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func newFactor(name string, value, weight float64, met bool, description string) PredictionFactor {
	return PredictionFactor{
		Name:            name,
		Value:           value,
		Weight:          weight,
		RawContribution: value * weight,
		Met:             met,
		Description:     description,
	}
}

type factorText struct {
	met, unmet, open string
}

func (t factorText) pick(c criterion) string {
	switch {
	case !c.restricted:
		return t.open
	case c.matched:
		return t.met
	default:
		return t.unmet
	}
}

// explain builds the nine explanation factors, normalizes their contributions and
// sorts them by absolute raw contribution.
func explain(a assessment, fv FeatureVector, w ModelWeights) []PredictionFactor {
	eligibleText := "Does not meet all required criteria"
	if a.eligibility.Passed {
		eligibleText = "Meets all required eligibility criteria"
	}
	gwaText := factorText{
		met:   "GWA satisfies the required maximum",
		unmet: "GWA does not satisfy the required maximum",
		open:  "GWA is within the passing range",
	}
	if !a.gwa.restricted && !a.gwa.matched {
		gwaText.open = "GWA is missing or outside the passing range"
	}
	incomeText := factorText{
		met:   "Family income is within the scholarship limit",
		unmet: "Family income exceeds the scholarship limit",
		open:  "No income limit",
	}
	if a.income.restricted && !a.income.known {
		incomeText.met = "Family income not provided"
	}

	listMet := func(c criterion) bool { return !c.restricted || c.matched }

	factors := []PredictionFactor{
		newFactor("Overall Eligibility", fv.EligibilityScore, w.EligibilityScore,
			a.eligibility.Passed, eligibleText),
		newFactor("College", fv.CollegeMatch, w.CollegeMatch, listMet(a.college),
			factorText{"College is eligible", "College is not among the eligible colleges", "Open to all colleges"}.pick(a.college)),
		newFactor("Financial Need", fv.IncomeMatch, w.IncomeMatch,
			!a.income.restricted || (a.income.known && a.income.matched), incomeText.pick(a.income)),
		newFactor("Citizenship", fv.CitizenshipMatch, w.CitizenshipMatch, listMet(a.citizenship),
			factorText{"Citizenship is eligible", "Citizenship is not eligible", "Open to all citizenships"}.pick(a.citizenship)),
		newFactor("Academic Performance", fv.GWAScore, w.GWAScore, a.gwa.matched, gwaText.pick(a.gwa)),
		newFactor("Year Level", fv.YearLevelMatch, w.YearLevelMatch, listMet(a.yearLevel),
			factorText{"Year level is eligible", "Year level is not eligible", "Open to all year levels"}.pick(a.yearLevel)),
		newFactor("Course/Major", fv.CourseMatch, w.CourseMatch, listMet(a.course),
			factorText{"Course matches the eligible programs", "Course does not match the eligible programs", "Open to all courses"}.pick(a.course)),
		newFactor("ST Bracket", fv.STBracketMatch, w.STBracketMatch, listMet(a.stBracket),
			factorText{"ST bracket is eligible", "ST bracket is not eligible", "Open to all ST brackets"}.pick(a.stBracket)),
		newFactor("Profile Completeness", fv.DocumentCompleteness, w.DocumentCompleteness, listMet(a.documents),
			factorText{"All required documents submitted", "Some required documents are missing", "No documents required"}.pick(a.documents)),
	}

	total := 0.0
	for _, f := range factors {
		total += math.Abs(f.RawContribution)
	}
	if total > 0 {
		for i := range factors {
			factors[i].Contribution = factors[i].RawContribution / total
		}
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return math.Abs(factors[i].RawContribution) > math.Abs(factors[j].RawContribution)
	})
	return factors
}
