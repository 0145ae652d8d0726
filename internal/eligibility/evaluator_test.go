// internal/eligibility/evaluator_test.go
package eligibility

import (
	"math/rand"
	"testing"

	"scholarship-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func studentWithGWA(gwa float64) models.StudentProfile {
	return models.StudentProfile{ID: "stu-001", GWA: models.Float64(gwa)}
}

func findCondition(result EligibilityResult, id string) (ConditionResult, bool) {
	for _, c := range result.Conditions {
		if c.ID == id {
			return c, true
		}
	}
	return ConditionResult{}, false
}

// ==========================
// Required Gate
// ==========================

func TestEvaluate_MaxGWA(t *testing.T) {
	criteria := models.EligibilityCriteria{MaxGWA: models.Float64(1.50)}

	tests := []struct {
		name           string
		gwa            float64
		expectPassed   bool
		expectFailures int
		expectScore    int
	}{
		{name: "gwa within maximum", gwa: 1.20, expectPassed: true, expectFailures: 0, expectScore: 100},
		{name: "gwa exactly at maximum", gwa: 1.50, expectPassed: true, expectFailures: 0, expectScore: 100},
		// 8 boolean status conditions pass, gwa fails: round(800/9)
		{name: "gwa above maximum", gwa: 1.80, expectPassed: false, expectFailures: 1, expectScore: 89},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(studentWithGWA(tt.gwa), criteria)

			assert.Equal(t, tt.expectPassed, result.Passed)
			assert.Len(t, result.FailedRequired, tt.expectFailures)
			assert.Equal(t, tt.expectScore, result.Score)
			assert.Equal(t, result.Passed, len(result.FailedRequired) == 0)
			if tt.expectFailures == 1 {
				assert.Equal(t, "gwa_max", result.FailedRequired[0].ID)
				assert.Equal(t, "1.80", result.FailedRequired[0].StudentValue)
				assert.Equal(t, "≤ 1.50", result.FailedRequired[0].RequiredValue)
			}
		})
	}
}

func TestEvaluate_MissingGWAFails(t *testing.T) {
	result := Evaluate(models.StudentProfile{ID: "stu-002"}, models.EligibilityCriteria{MaxGWA: models.Float64(2.0)})

	require.False(t, result.Passed)
	cond, ok := findCondition(result, "gwa_max")
	require.True(t, ok)
	assert.False(t, cond.Passed)
	assert.Equal(t, "Not specified", cond.StudentValue)
}

func TestEvaluate_LegacyFieldNames(t *testing.T) {
	student := models.StudentProfile{
		GeneralWeightedAverage: models.Float64(1.75),
		FamilyIncome:           models.Float64(150000),
		STFAPBracket:           "FDS",
		Province:               "Laguna",
	}
	criteria := models.EligibilityCriteria{
		MaxGWA:                models.Float64(2.0),
		MaxAnnualFamilyIncome: models.Float64(200000),
		EligibleSTBrackets:    []string{"Full Discount with Stipend"},
		EligibleProvinces:     []string{"laguna"},
	}

	result := Evaluate(student, criteria)
	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.Score)
}

// ==========================
// Skip vs Fail
// ==========================

func TestEvaluate_SkipsUnsetRestrictions(t *testing.T) {
	tests := []struct {
		name     string
		criteria models.EligibilityCriteria
		absent   string
	}{
		{name: "max gwa unset", criteria: models.EligibilityCriteria{}, absent: "gwa_max"},
		{name: "max gwa at sentinel", criteria: models.EligibilityCriteria{MaxGWA: models.Float64(5.0)}, absent: "gwa_max"},
		{name: "min gwa at sentinel", criteria: models.EligibilityCriteria{MinGWA: models.Float64(1.0)}, absent: "gwa_min"},
		{name: "min units zero", criteria: models.EligibilityCriteria{MinUnitsPassed: models.Int(0)}, absent: "units_passed_min"},
		{name: "empty college list", criteria: models.EligibilityCriteria{EligibleColleges: []string{}}, absent: "college"},
		{name: "blank college entries", criteria: models.EligibilityCriteria{EligibleColleges: []string{" ", ""}}, absent: "college"},
		{name: "income unset", criteria: models.EligibilityCriteria{}, absent: "income_max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(studentWithGWA(3.0), tt.criteria)
			_, found := findCondition(result, tt.absent)
			assert.False(t, found, "condition %s must be omitted, not passed", tt.absent)
		})
	}
}

func TestEvaluate_BooleanConditionsPassWhenNotImposed(t *testing.T) {
	student := models.StudentProfile{
		HasExistingScholarship: true,
		HasDisciplinaryAction:  true,
		HasFailingGrade:        true,
	}

	result := Evaluate(student, models.EligibilityCriteria{})
	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.Score)

	cond, ok := findCondition(result, "no_other_scholarship")
	require.True(t, ok)
	assert.True(t, cond.Passed)
	assert.Equal(t, "Not required", cond.RequiredValue)
	assert.Equal(t, "Yes", cond.StudentValue)
}

func TestEvaluate_BooleanConditionsImposed(t *testing.T) {
	criteria := models.EligibilityCriteria{
		MustNotHaveOtherScholarship: true,
		RequiresApprovedThesis:      true,
		MustBeGraduating:            true,
	}

	result := Evaluate(models.StudentProfile{HasExistingScholarship: true, IsGraduating: true}, criteria)
	assert.False(t, result.Passed)

	var failed []string
	for _, c := range result.FailedRequired {
		failed = append(failed, c.ID)
	}
	assert.ElementsMatch(t, []string{"no_other_scholarship", "approved_thesis"}, failed)
}

// ==========================
// List Matching
// ==========================

func TestEvaluate_CollegeListCaseInsensitive(t *testing.T) {
	criteria := models.EligibilityCriteria{
		EligibleColleges: []string{"College of Engineering and Agro-Industrial Technology"},
	}

	tests := []struct {
		name    string
		college string
		passed  bool
	}{
		{name: "exact", college: "College of Engineering and Agro-Industrial Technology", passed: true},
		{name: "lower case", college: "college of engineering and agro-industrial technology", passed: true},
		{name: "college code", college: "CEAT", passed: true},
		{name: "other college", college: "College of Arts and Sciences", passed: false},
		{name: "missing college", college: "", passed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(models.StudentProfile{College: tt.college}, criteria)
			cond, ok := findCondition(result, "college")
			require.True(t, ok)
			assert.Equal(t, tt.passed, cond.Passed)
			assert.Equal(t, tt.passed, result.Passed)
		})
	}
}

func TestEvaluate_FreeTextMatchesBothDirections(t *testing.T) {
	criteria := models.EligibilityCriteria{EligibleCourses: []string{"BS Computer Science"}}

	assert.True(t, Evaluate(models.StudentProfile{Course: "Computer Science"}, criteria).Passed)
	assert.True(t, Evaluate(models.StudentProfile{Course: "BS Computer Science (Honors Track)"}, criteria).Passed)
	assert.False(t, Evaluate(models.StudentProfile{Course: "BS Chemistry"}, criteria).Passed)
}

func TestEvaluate_YearLevelAndBracketNormalization(t *testing.T) {
	criteria := models.EligibilityCriteria{
		EligibleYearLevels: []string{"3rd Year", "4th year"},
		EligibleSTBrackets: []string{"FD", "FDS"},
	}

	assert.True(t, Evaluate(models.StudentProfile{YearLevel: "3RD YEAR", STBracket: "fds"}, criteria).Passed)
	assert.False(t, Evaluate(models.StudentProfile{YearLevel: "1st Year", STBracket: "FDS"}, criteria).Passed)
	assert.False(t, Evaluate(models.StudentProfile{YearLevel: "senior", STBracket: "PD80"}, criteria).Passed)
}

// ==========================
// Importance and Score
// ==========================

func TestEvaluate_PreferredConditionsOnlyAffectScore(t *testing.T) {
	criteria := models.EligibilityCriteria{
		CustomConditions: []models.CustomCondition{
			{
				ID: "volunteer", Name: "Volunteer Hours", FieldPath: "volunteerHours",
				Importance: models.ImportancePreferred,
				Spec:       models.RangeSpec{Operator: models.RangeGTE, Value: models.Float64(40)},
			},
		},
	}
	student := models.StudentProfile{CustomFields: models.CustomFields{"volunteerHours": 10.0}}

	result := Evaluate(student, criteria)
	assert.True(t, result.Passed)
	assert.Empty(t, result.FailedRequired)
	// 8 boolean conditions pass, the preferred one fails: round(800/9)
	assert.Equal(t, 89, result.Score)
	assert.Equal(t, 1, result.Summary.Failed)
}

func TestEvaluate_UnsetImportanceIsRequired(t *testing.T) {
	criteria := models.EligibilityCriteria{
		CustomConditions: []models.CustomCondition{
			{
				ID: "hours", FieldPath: "hours",
				Spec: models.RangeSpec{Operator: models.RangeGTE, Value: models.Float64(20)},
			},
		},
	}
	student := models.StudentProfile{CustomFields: models.CustomFields{"hours": 5.0}}

	result := Evaluate(student, criteria)
	assert.False(t, result.Passed)
	require.Len(t, result.FailedRequired, 1)
	assert.Equal(t, "hours", result.FailedRequired[0].ID)
	assert.Equal(t, models.ImportanceRequired, result.FailedRequired[0].Importance)
	assert.False(t, QuickCheck(student, criteria))

	student.CustomFields["hours"] = 25.0
	assert.True(t, Evaluate(student, criteria).Passed)
	assert.True(t, QuickCheck(student, criteria))
}

func TestAggregate_EmptyConditionsScoresHundred(t *testing.T) {
	result := aggregate(nil)
	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.Score)
	assert.NotNil(t, result.FailedRequired)
}

// ==========================
// QuickCheck Agreement
// ==========================

func randomStudent(r *rand.Rand) models.StudentProfile {
	pick := func(options ...string) string { return options[r.Intn(len(options))] }
	p := models.StudentProfile{
		YearLevel:              pick("", "1st Year", "2ND YEAR", "3rd", "senior", "Graduate"),
		College:                pick("", "CAS", "CEAT", "College of Human Ecology", "cem"),
		Course:                 pick("", "BS Computer Science", "Agriculture", "BS Chemistry"),
		Major:                  pick("", "Soil Science", "Statistics"),
		STBracket:              pick("", "FDS", "FD", "PD80", "ND"),
		ProvinceOfOrigin:       pick("", "Laguna", "Batangas", "Quezon Province"),
		Citizenship:            pick("", "Filipino", "filipino", "Japanese"),
		HasExistingScholarship: r.Intn(2) == 0,
		HasDisciplinaryAction:  r.Intn(4) == 0,
		HasFailingGrade:        r.Intn(4) == 0,
		HasApprovedThesis:      r.Intn(2) == 0,
		IsGraduating:           r.Intn(2) == 0,
		CustomFields: models.CustomFields{
			"orgs":       []interface{}{"ACM", "Red Cross"},
			"hours":      float64(r.Intn(80)),
			"isVerified": r.Intn(2) == 0,
		},
	}
	if r.Intn(5) > 0 {
		p.GWA = models.Float64(1 + r.Float64()*3)
	}
	if r.Intn(5) > 0 {
		p.AnnualFamilyIncome = models.Float64(float64(r.Intn(600000)))
	}
	if r.Intn(3) > 0 {
		p.UnitsPassed = models.Int(r.Intn(40))
	}
	return p
}

func randomCriteria(r *rand.Rand) models.EligibilityCriteria {
	maybe := func(list ...string) []string {
		if r.Intn(2) == 0 {
			return nil
		}
		return list[:1+r.Intn(len(list))]
	}
	c := models.EligibilityCriteria{
		EligibleYearLevels:          maybe("3rd Year", "4th Year", "1st Year"),
		EligibleColleges:            maybe("CEAT", "College of Arts and Sciences"),
		EligibleCourses:             maybe("Computer Science", "Agriculture"),
		EligibleSTBrackets:          maybe("FDS", "Full Discount"),
		EligibleProvinces:           maybe("Laguna", "Quezon"),
		EligibleCitizenships:        maybe("Filipino"),
		MustNotHaveOtherScholarship: r.Intn(2) == 0,
		MustNotHaveFailingGrade:     r.Intn(2) == 0,
		RequiresApprovedThesis:      r.Intn(4) == 0,
	}
	if r.Intn(2) == 0 {
		c.MaxGWA = models.Float64(1 + r.Float64()*4.5)
	}
	if r.Intn(3) == 0 {
		c.MaxAnnualFamilyIncome = models.Float64(float64(r.Intn(500000)))
	}
	if r.Intn(3) == 0 {
		c.MinUnitsPassed = models.Int(r.Intn(30))
	}
	if r.Intn(2) == 0 {
		importance := []models.Importance{models.ImportanceRequired, models.ImportancePreferred, models.ImportanceOptional, ""}
		active := r.Intn(4) > 0
		c.CustomConditions = []models.CustomCondition{
			{
				ID: "hours", FieldPath: "hours", Importance: importance[r.Intn(4)],
				Spec: models.RangeSpec{Operator: models.RangeBetween, Min: models.Float64(20), Max: models.Float64(60)},
			},
			{
				ID: "orgs", FieldPath: "customFields.orgs", Importance: importance[r.Intn(4)], IsActive: &active,
				Spec: models.ListSpec{Operator: models.ListContainsAny, Values: []string{"acm"}},
			},
			{
				ID: "verified", FieldPath: "isVerified", Importance: importance[r.Intn(4)],
				Spec: models.BooleanSpec{Operator: models.BoolIsTrue},
			},
		}
		if r.Intn(4) == 0 {
			c.CustomConditions = append(c.CustomConditions, models.CustomCondition{
				ID: "unset", FieldPath: "hours", Importance: importance[r.Intn(4)],
			})
		}
	}
	return c
}

func TestQuickCheck_AgreesWithEvaluate(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		student := randomStudent(r)
		criteria := randomCriteria(r)

		full := Evaluate(student, criteria)
		quick := QuickCheck(student, criteria)
		if !assert.Equal(t, full.Passed, quick, "iteration %d", i) {
			t.Logf("student=%+v criteria=%+v", student, criteria)
			return
		}
		assert.Equal(t, full.Passed, len(full.FailedRequired) == 0)
	}
}
