// internal/prediction/features.go
package prediction

import (
	"math"
	"strings"
	"time"

	"scholarship-engine/internal/eligibility"
	"scholarship-engine/internal/models"
)

// Convention selects how criterion matches are turned into feature values.
type Convention string

const (
	// ConventionBinary scores every criterion as exactly 0 or 1.
	ConventionBinary Convention = "binary"
	// ConventionGraded keeps criterion scores in a narrow band so trained weights
	// never see hard zero/one cliffs.
	ConventionGraded Convention = "graded"
)

// Graded convention scores.
const (
	GradedMismatch      = 0.85
	GradedUnknown       = 0.85
	GradedNoRestriction = 0.95
	GradedMatch         = 1.0
	gradedMarginFloor   = 0.90
	gradedTimingFloor   = 0.85
)

const (
	neutralGWA         = 2.5
	passingGWA         = 3.0
	bestGWA            = 1.0
	gwaScaleWidth      = eligibility.WorstGWA - bestGWA
	timingLeadDuration = 30 * 24 * time.Hour
)

// FeatureVector holds the ten regression inputs, each in [0, 1].
type FeatureVector struct {
	GWAScore             float64 `json:"gwaScore"`
	YearLevelMatch       float64 `json:"yearLevelMatch"`
	IncomeMatch          float64 `json:"incomeMatch"`
	STBracketMatch       float64 `json:"stBracketMatch"`
	CollegeMatch         float64 `json:"collegeMatch"`
	CourseMatch          float64 `json:"courseMatch"`
	CitizenshipMatch     float64 `json:"citizenshipMatch"`
	DocumentCompleteness float64 `json:"documentCompleteness"`
	ApplicationTiming    float64 `json:"applicationTiming"`
	EligibilityScore     float64 `json:"eligibilityScore"`
}

// Options tunes extraction and scoring. A zero Options uses the convention implied
// by the weights, evaluates eligibility on demand and treats timing as neutral.
type Options struct {
	Convention  Convention
	Eligibility *eligibility.EligibilityResult
	Now         time.Time
}

// criterion is the match state of one scholarship restriction.
type criterion struct {
	restricted bool
	known      bool
	matched    bool
}

type assessment struct {
	yearLevel   criterion
	college     criterion
	course      criterion
	stBracket   criterion
	citizenship criterion
	income      criterion
	gwa         criterion
	documents   criterion

	incomeRatio   float64
	documentRatio float64
	timingRatio   float64
	hasTiming     bool
	eligibility   eligibility.EligibilityResult
}

func assess(s eligibility.NormalizedStudent, sch models.Scholarship, opts Options) assessment {
	c := sch.Criteria
	a := assessment{}

	a.yearLevel = listCriterion(c.EligibleYearLevels, s.YearLevel, func(list []string, v string) bool {
		return eligibility.ContainsFold(eligibility.NormalizedList(list, eligibility.NormalizeYearLevel), v)
	})
	a.college = listCriterion(c.EligibleColleges, s.College, func(list []string, v string) bool {
		return eligibility.ContainsFold(eligibility.NormalizedList(list, eligibility.NormalizeCollege), v)
	})
	a.stBracket = listCriterion(c.EligibleSTBrackets, s.STBracket, func(list []string, v string) bool {
		return eligibility.ContainsFold(eligibility.NormalizedList(list, eligibility.NormalizeSTBracket), v)
	})
	a.citizenship = listCriterion(c.EligibleCitizenships, s.Citizenship, eligibility.ContainsFold)
	a.course = courseCriterion(c, s)

	if c.MaxAnnualFamilyIncome != nil && *c.MaxAnnualFamilyIncome > 0 {
		a.income = criterion{restricted: true, known: s.HasIncome}
		a.income.matched = s.AnnualFamilyIncome <= *c.MaxAnnualFamilyIncome
		a.incomeRatio = clamp01(s.AnnualFamilyIncome / *c.MaxAnnualFamilyIncome)
	}

	if c.MaxGWA != nil && *c.MaxGWA < eligibility.WorstGWA {
		a.gwa = criterion{restricted: true, known: s.HasGWA, matched: s.HasGWA && s.GWA <= *c.MaxGWA}
	} else {
		a.gwa = criterion{known: s.HasGWA, matched: s.HasGWA && s.GWA <= passingGWA}
	}

	a.documentRatio = 1.0
	if eligibility.HasRestriction(sch.RequiredDocuments) {
		required := eligibility.NormalizedList(sch.RequiredDocuments, strings.TrimSpace)
		submitted := 0
		for _, doc := range required {
			if eligibility.ContainsFold(s.SubmittedDocuments, doc) {
				submitted++
			}
		}
		a.documentRatio = float64(submitted) / float64(len(required))
		a.documents = criterion{restricted: true, known: len(s.SubmittedDocuments) > 0, matched: submitted == len(required)}
	}

	if sch.ApplicationDeadline != nil && !opts.Now.IsZero() {
		a.hasTiming = true
		remaining := sch.ApplicationDeadline.Sub(opts.Now)
		a.timingRatio = clamp01(float64(remaining) / float64(timingLeadDuration))
		if remaining < 0 {
			a.timingRatio = 0
		}
	}

	if opts.Eligibility != nil {
		a.eligibility = *opts.Eligibility
	} else {
		a.eligibility = eligibility.EvaluateNormalized(s, c)
	}
	return a
}

func listCriterion(list []string, value string, match func([]string, string) bool) criterion {
	if !eligibility.HasRestriction(list) {
		return criterion{}
	}
	known := strings.TrimSpace(value) != ""
	return criterion{restricted: true, known: known, matched: known && match(list, value)}
}

// courseCriterion combines the course and major restrictions; each one that is set must match.
func courseCriterion(c models.EligibilityCriteria, s eligibility.NormalizedStudent) criterion {
	courses := eligibility.HasRestriction(c.EligibleCourses)
	majors := eligibility.HasRestriction(c.EligibleMajors)
	if !courses && !majors {
		return criterion{}
	}

	out := criterion{restricted: true, known: true, matched: true}
	if courses {
		out.known = out.known && s.Course != ""
		out.matched = out.matched && eligibility.MatchesAnyFreeText(c.EligibleCourses, s.Course)
	}
	if majors {
		out.known = out.known && s.Major != ""
		out.matched = out.matched && eligibility.MatchesAnyFreeText(c.EligibleMajors, s.Major)
	}
	return out
}

// Extract converts a (student, scholarship) pair into a feature vector.
func Extract(student models.StudentProfile, sch models.Scholarship, opts Options) FeatureVector {
	return ExtractNormalized(eligibility.Normalize(student), sch, opts)
}

func ExtractNormalized(s eligibility.NormalizedStudent, sch models.Scholarship, opts Options) FeatureVector {
	return buildFeatures(s, assess(s, sch, opts), conventionOrDefault(opts.Convention))
}

func conventionOrDefault(c Convention) Convention {
	if c == ConventionGraded {
		return ConventionGraded
	}
	return ConventionBinary
}

func buildFeatures(s eligibility.NormalizedStudent, a assessment, conv Convention) FeatureVector {
	gwa := neutralGWA
	if s.HasGWA {
		gwa = s.GWA
	}

	fv := FeatureVector{
		GWAScore:             clamp01((eligibility.WorstGWA - gwa) / gwaScaleWidth),
		YearLevelMatch:       scoreCriterion(a.yearLevel, conv),
		STBracketMatch:       scoreCriterion(a.stBracket, conv),
		CollegeMatch:         scoreCriterion(a.college, conv),
		CourseMatch:          scoreCriterion(a.course, conv),
		CitizenshipMatch:     scoreCriterion(a.citizenship, conv),
		IncomeMatch:          scoreIncome(a, conv),
		DocumentCompleteness: scoreDocuments(a, conv),
		ApplicationTiming:    scoreTiming(a, conv),
		EligibilityScore:     clamp01(float64(a.eligibility.Score) / 100),
	}
	return fv
}

func scoreCriterion(c criterion, conv Convention) float64 {
	if conv == ConventionBinary {
		if !c.restricted || c.matched {
			return 1
		}
		return 0
	}
	switch {
	case !c.restricted:
		return GradedNoRestriction
	case !c.known:
		return GradedUnknown
	case c.matched:
		return GradedMatch
	default:
		return GradedMismatch
	}
}

func scoreIncome(a assessment, conv Convention) float64 {
	c := a.income
	if conv == ConventionBinary {
		// a missing income counts as zero
		if !c.restricted || c.matched {
			return 1
		}
		return 0
	}
	switch {
	case !c.restricted:
		return GradedNoRestriction
	case !c.known:
		return GradedUnknown
	case c.matched:
		return clamp01(gradedMarginFloor + (1-gradedMarginFloor)*(1-a.incomeRatio))
	default:
		return GradedMismatch
	}
}

func scoreDocuments(a assessment, conv Convention) float64 {
	if !a.documents.restricted {
		if conv == ConventionBinary {
			return 1
		}
		return GradedNoRestriction
	}
	return clamp01(a.documentRatio)
}

func scoreTiming(a assessment, conv Convention) float64 {
	if conv == ConventionBinary {
		if !a.hasTiming || a.timingRatio > 0 {
			return 1
		}
		return 0
	}
	if !a.hasTiming {
		return GradedNoRestriction
	}
	return clamp01(gradedTimingFloor + (1-gradedTimingFloor)*a.timingRatio)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
