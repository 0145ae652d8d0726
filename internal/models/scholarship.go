// internal/models/scholarship.go
package models

import "time"

type Scholarship struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	Sponsor             string              `json:"sponsor,omitempty"`
	Type                string              `json:"type,omitempty"`
	IsActive            bool                `json:"isActive"`
	ApplicationDeadline *time.Time          `json:"applicationDeadline,omitempty"`
	RequiredDocuments   []string            `json:"requiredDocuments,omitempty"`
	Criteria            EligibilityCriteria `json:"eligibilityCriteria"`
}

// EligibilityCriteria is the admin-authored rule declaration of a scholarship.
// Nil thresholds and empty lists mean the scholarship imposes no such restriction.
type EligibilityCriteria struct {
	MaxGWA                *float64 `json:"maxGWA,omitempty"`
	MinGWA                *float64 `json:"minGWA,omitempty"`
	MinUnitsEnrolled      *int     `json:"minUnitsEnrolled,omitempty"`
	MinUnitsPassed        *int     `json:"minUnitsPassed,omitempty"`
	MaxAnnualFamilyIncome *float64 `json:"maxAnnualFamilyIncome,omitempty"`

	EligibleColleges     []string `json:"eligibleColleges,omitempty"`
	EligibleCourses      []string `json:"eligibleCourses,omitempty"`
	EligibleMajors       []string `json:"eligibleMajors,omitempty"`
	EligibleYearLevels   []string `json:"eligibleYearLevels,omitempty"`
	EligibleProvinces    []string `json:"eligibleProvinces,omitempty"`
	EligibleCitizenships []string `json:"eligibleCitizenships,omitempty"`
	EligibleSTBrackets   []string `json:"eligibleSTBrackets,omitempty"`

	MustNotHaveOtherScholarship   bool `json:"mustNotHaveOtherScholarship,omitempty"`
	MustNotHaveDisciplinaryAction bool `json:"mustNotHaveDisciplinaryAction,omitempty"`
	MustNotHaveThesisGrant        bool `json:"mustNotHaveThesisGrant,omitempty"`
	MustNotHaveFailingGrade       bool `json:"mustNotHaveFailingGrade,omitempty"`
	MustNotHaveIncompleteGrade    bool `json:"mustNotHaveIncompleteGrade,omitempty"`
	MustNotHaveConditionalGrade   bool `json:"mustNotHaveConditionalGrade,omitempty"`
	RequiresApprovedThesis        bool `json:"requiresApprovedThesis,omitempty"`
	MustBeGraduating              bool `json:"mustBeGraduating,omitempty"`

	CustomConditions []CustomCondition `json:"customConditions,omitempty"`
}

// Float64 and Int return pointers for criteria literals.
func Float64(v float64) *float64 { return &v }

func Int(v int) *int { return &v }
