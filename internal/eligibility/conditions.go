// internal/eligibility/conditions.go
package eligibility

import (
	"fmt"
	"strings"

	"scholarship-engine/internal/models"
)

const (
	CategoryAcademic    = "academic"
	CategoryFinancial   = "financial"
	CategoryStatus      = "status"
	CategoryDemographic = "demographic"
	CategoryCustom      = "custom"
)

const notSpecified = "Not specified"

// ConditionResult is the outcome of a single condition for one student.
type ConditionResult struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Passed        bool                 `json:"passed"`
	StudentValue  string               `json:"studentValue"`
	RequiredValue string               `json:"requiredValue"`
	Category      string               `json:"category"`
	Importance    models.Importance    `json:"importance"`
	ConditionType models.ConditionType `json:"conditionType"`
	Description   string               `json:"description"`
}

type conditionDef struct {
	id       string
	name     string
	category string
	family   models.ConditionType

	// shouldSkip is true when the scholarship imposes no such restriction.
	shouldSkip    func(c *models.EligibilityCriteria) bool
	check         func(s *NormalizedStudent, c *models.EligibilityCriteria) bool
	studentValue  func(s *NormalizedStudent) string
	requiredValue func(c *models.EligibilityCriteria) string
}

func (d conditionDef) evaluate(s *NormalizedStudent, c *models.EligibilityCriteria) ConditionResult {
	r := ConditionResult{
		ID:            d.id,
		Name:          d.name,
		Passed:        d.check(s, c),
		StudentValue:  d.studentValue(s),
		RequiredValue: d.requiredValue(c),
		Category:      d.category,
		Importance:    models.ImportanceRequired,
		ConditionType: d.family,
	}
	r.Description = describe(r.Name, r.RequiredValue, r.StudentValue, r.Passed)
	return r
}

func describe(name, required, student string, passed bool) string {
	if passed {
		return fmt.Sprintf("%s: %s (student: %s)", name, required, student)
	}
	return fmt.Sprintf("%s: requires %s, student has %s", name, required, student)
}

func never(*models.EligibilityCriteria) bool { return false }

func formatGWA(v float64) string { return fmt.Sprintf("%.2f", v) }

func gwaValue(s *NormalizedStudent) string {
	if !s.HasGWA {
		return notSpecified
	}
	return formatGWA(s.GWA)
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return notSpecified
	}
	return v
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func requiredLabel(b bool) string {
	if b {
		return "Required"
	}
	return "Not required"
}

func joinList(list []string, fn func(string) string) string {
	return strings.Join(NormalizedList(list, fn), ", ")
}

func identity(v string) string { return strings.TrimSpace(v) }

// equalityList builds a case-insensitive membership condition after normalizing both sides.
func equalityList(id, name, category string, list func(*models.EligibilityCriteria) []string,
	value func(*NormalizedStudent) string, norm func(string) string) conditionDef {
	return conditionDef{
		id: id, name: name, category: category, family: models.ConditionList,
		shouldSkip: func(c *models.EligibilityCriteria) bool { return !HasRestriction(list(c)) },
		check: func(s *NormalizedStudent, c *models.EligibilityCriteria) bool {
			return ContainsFold(NormalizedList(list(c), norm), value(s))
		},
		studentValue:  func(s *NormalizedStudent) string { return orNotSpecified(value(s)) },
		requiredValue: func(c *models.EligibilityCriteria) string { return joinList(list(c), norm) },
	}
}

// freeTextList builds a condition that matches by substring containment in either direction.
func freeTextList(id, name, category string, list func(*models.EligibilityCriteria) []string,
	value func(*NormalizedStudent) string) conditionDef {
	return conditionDef{
		id: id, name: name, category: category, family: models.ConditionList,
		shouldSkip: func(c *models.EligibilityCriteria) bool { return !HasRestriction(list(c)) },
		check: func(s *NormalizedStudent, c *models.EligibilityCriteria) bool {
			return MatchesAnyFreeText(list(c), value(s))
		},
		studentValue:  func(s *NormalizedStudent) string { return orNotSpecified(value(s)) },
		requiredValue: func(c *models.EligibilityCriteria) string { return joinList(list(c), identity) },
	}
}

// mustNot builds a boolean "must not have X" condition. It is never skipped and
// passes outright when the scholarship does not impose the restriction.
func mustNot(id, name string, imposed func(*models.EligibilityCriteria) bool, has func(*NormalizedStudent) bool) conditionDef {
	return conditionDef{
		id: id, name: name, category: CategoryStatus, family: models.ConditionBoolean,
		shouldSkip: never,
		check: func(s *NormalizedStudent, c *models.EligibilityCriteria) bool {
			return !imposed(c) || !has(s)
		},
		studentValue:  func(s *NormalizedStudent) string { return yesNo(has(s)) },
		requiredValue: func(c *models.EligibilityCriteria) string { return requiredLabel(imposed(c)) },
	}
}

// must builds a boolean "must have X" condition.
func must(id, name string, imposed func(*models.EligibilityCriteria) bool, has func(*NormalizedStudent) bool) conditionDef {
	return conditionDef{
		id: id, name: name, category: CategoryStatus, family: models.ConditionBoolean,
		shouldSkip: never,
		check: func(s *NormalizedStudent, c *models.EligibilityCriteria) bool {
			return !imposed(c) || has(s)
		},
		studentValue:  func(s *NormalizedStudent) string { return yesNo(has(s)) },
		requiredValue: func(c *models.EligibilityCriteria) string { return requiredLabel(imposed(c)) },
	}
}

// builtinConditions is evaluated in order; all entries are required.
var builtinConditions = []conditionDef{
	{
		id: "gwa_max", name: "Maximum GWA", category: CategoryAcademic, family: models.ConditionRange,
		shouldSkip: func(c *models.EligibilityCriteria) bool { return c.MaxGWA == nil || *c.MaxGWA >= WorstGWA },
		check: func(s *NormalizedStudent, c *models.EligibilityCriteria) bool {
			return s.HasGWA && s.GWA <= *c.MaxGWA
		},
		studentValue:  gwaValue,
		requiredValue: func(c *models.EligibilityCriteria) string { return "≤ " + formatGWA(*c.MaxGWA) },
	},
	{
		id: "gwa_min", name: "Minimum GWA", category: CategoryAcademic, family: models.ConditionRange,
		shouldSkip: func(c *models.EligibilityCriteria) bool { return c.MinGWA == nil || *c.MinGWA <= 1.0 },
		check: func(s *NormalizedStudent, c *models.EligibilityCriteria) bool {
			return s.HasGWA && s.GWA >= *c.MinGWA
		},
		studentValue:  gwaValue,
		requiredValue: func(c *models.EligibilityCriteria) string { return "≥ " + formatGWA(*c.MinGWA) },
	},
	{
		id: "units_enrolled_min", name: "Minimum Units Enrolled", category: CategoryAcademic, family: models.ConditionRange,
		shouldSkip: func(c *models.EligibilityCriteria) bool { return c.MinUnitsEnrolled == nil || *c.MinUnitsEnrolled <= 0 },
		check: func(s *NormalizedStudent, c *models.EligibilityCriteria) bool {
			return s.HasUnitsEnrolled && s.UnitsEnrolled >= *c.MinUnitsEnrolled
		},
		studentValue: func(s *NormalizedStudent) string {
			if !s.HasUnitsEnrolled {
				return notSpecified
			}
			return fmt.Sprintf("%d", s.UnitsEnrolled)
		},
		requiredValue: func(c *models.EligibilityCriteria) string { return fmt.Sprintf("≥ %d", *c.MinUnitsEnrolled) },
	},
	{
		id: "units_passed_min", name: "Minimum Units Passed", category: CategoryAcademic, family: models.ConditionRange,
		shouldSkip: func(c *models.EligibilityCriteria) bool { return c.MinUnitsPassed == nil || *c.MinUnitsPassed <= 0 },
		check: func(s *NormalizedStudent, c *models.EligibilityCriteria) bool {
			return s.HasUnitsPassed && s.UnitsPassed >= *c.MinUnitsPassed
		},
		studentValue: func(s *NormalizedStudent) string {
			if !s.HasUnitsPassed {
				return notSpecified
			}
			return fmt.Sprintf("%d", s.UnitsPassed)
		},
		requiredValue: func(c *models.EligibilityCriteria) string { return fmt.Sprintf("≥ %d", *c.MinUnitsPassed) },
	},
	{
		id: "income_max", name: "Maximum Annual Family Income", category: CategoryFinancial, family: models.ConditionRange,
		shouldSkip: func(c *models.EligibilityCriteria) bool {
			return c.MaxAnnualFamilyIncome == nil || *c.MaxAnnualFamilyIncome <= 0
		},
		check: func(s *NormalizedStudent, c *models.EligibilityCriteria) bool {
			return s.AnnualFamilyIncome <= *c.MaxAnnualFamilyIncome
		},
		studentValue: func(s *NormalizedStudent) string {
			if !s.HasIncome {
				return notSpecified
			}
			return formatNumber(s.AnnualFamilyIncome)
		},
		requiredValue: func(c *models.EligibilityCriteria) string { return "≤ " + formatNumber(*c.MaxAnnualFamilyIncome) },
	},
	equalityList("year_level", "Year Level", CategoryAcademic,
		func(c *models.EligibilityCriteria) []string { return c.EligibleYearLevels },
		func(s *NormalizedStudent) string { return s.YearLevel }, NormalizeYearLevel),
	equalityList("college", "College", CategoryAcademic,
		func(c *models.EligibilityCriteria) []string { return c.EligibleColleges },
		func(s *NormalizedStudent) string { return s.College }, NormalizeCollege),
	freeTextList("course", "Course", CategoryAcademic,
		func(c *models.EligibilityCriteria) []string { return c.EligibleCourses },
		func(s *NormalizedStudent) string { return s.Course }),
	freeTextList("major", "Major", CategoryAcademic,
		func(c *models.EligibilityCriteria) []string { return c.EligibleMajors },
		func(s *NormalizedStudent) string { return s.Major }),
	equalityList("st_bracket", "ST Bracket", CategoryFinancial,
		func(c *models.EligibilityCriteria) []string { return c.EligibleSTBrackets },
		func(s *NormalizedStudent) string { return s.STBracket }, NormalizeSTBracket),
	freeTextList("province", "Province of Origin", CategoryDemographic,
		func(c *models.EligibilityCriteria) []string { return c.EligibleProvinces },
		func(s *NormalizedStudent) string { return s.Province }),
	equalityList("citizenship", "Citizenship", CategoryDemographic,
		func(c *models.EligibilityCriteria) []string { return c.EligibleCitizenships },
		func(s *NormalizedStudent) string { return s.Citizenship }, identity),
	mustNot("no_other_scholarship", "No Other Scholarship",
		func(c *models.EligibilityCriteria) bool { return c.MustNotHaveOtherScholarship },
		func(s *NormalizedStudent) bool { return s.HasExistingScholarship }),
	mustNot("no_disciplinary_action", "No Disciplinary Action",
		func(c *models.EligibilityCriteria) bool { return c.MustNotHaveDisciplinaryAction },
		func(s *NormalizedStudent) bool { return s.HasDisciplinaryAction }),
	mustNot("no_failing_grade", "No Failing Grade",
		func(c *models.EligibilityCriteria) bool { return c.MustNotHaveFailingGrade },
		func(s *NormalizedStudent) bool { return s.HasFailingGrade }),
	mustNot("no_incomplete_grade", "No Incomplete Grade",
		func(c *models.EligibilityCriteria) bool { return c.MustNotHaveIncompleteGrade },
		func(s *NormalizedStudent) bool { return s.HasIncompleteGrade }),
	mustNot("no_conditional_grade", "No Conditional Grade",
		func(c *models.EligibilityCriteria) bool { return c.MustNotHaveConditionalGrade },
		func(s *NormalizedStudent) bool { return s.HasConditionalGrade }),
	mustNot("no_thesis_grant", "No Existing Thesis Grant",
		func(c *models.EligibilityCriteria) bool { return c.MustNotHaveThesisGrant },
		func(s *NormalizedStudent) bool { return s.HasThesisGrant }),
	must("approved_thesis", "Approved Thesis Outline",
		func(c *models.EligibilityCriteria) bool { return c.RequiresApprovedThesis },
		func(s *NormalizedStudent) bool { return s.HasApprovedThesis }),
	must("graduating", "Graduating Student",
		func(c *models.EligibilityCriteria) bool { return c.MustBeGraduating },
		func(s *NormalizedStudent) bool { return s.IsGraduating }),
}
