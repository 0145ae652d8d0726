// internal/eligibility/normalize.go
package eligibility

import (
	"strings"

	"scholarship-engine/internal/models"
)

// WorstGWA is the bottom of the grading scale; it stands in for a missing GWA.
const WorstGWA = 5.0

// NormalizedStudent is the canonical view of a StudentProfile used by every check.
type NormalizedStudent struct {
	ID string

	GWA              float64
	HasGWA           bool
	YearLevel        string
	College          string
	Course           string
	Major            string
	UnitsEnrolled    int
	HasUnitsEnrolled bool
	UnitsPassed      int
	HasUnitsPassed   bool

	AnnualFamilyIncome float64
	HasIncome          bool
	STBracket          string
	HouseholdSize      int

	HasExistingScholarship bool
	HasDisciplinaryAction  bool
	HasThesisGrant         bool
	HasApprovedThesis      bool
	HasFailingGrade        bool
	HasIncompleteGrade     bool
	HasConditionalGrade    bool
	IsGraduating           bool

	Province    string
	Citizenship string

	ProfileCompleted   bool
	SubmittedDocuments []string
	CustomFields       models.CustomFields
}

var yearLevels = map[string]string{
	"1": "1st Year", "1st": "1st Year", "1st year": "1st Year", "first year": "1st Year", "freshman": "1st Year", "1st yr": "1st Year",
	"2": "2nd Year", "2nd": "2nd Year", "2nd year": "2nd Year", "second year": "2nd Year", "sophomore": "2nd Year", "2nd yr": "2nd Year",
	"3": "3rd Year", "3rd": "3rd Year", "3rd year": "3rd Year", "third year": "3rd Year", "junior": "3rd Year", "3rd yr": "3rd Year",
	"4": "4th Year", "4th": "4th Year", "4th year": "4th Year", "fourth year": "4th Year", "senior": "4th Year", "4th yr": "4th Year",
	"5": "5th Year", "5th": "5th Year", "5th year": "5th Year", "fifth year": "5th Year", "5th yr": "5th Year",
	"graduate": "Graduate", "grad": "Graduate", "graduate student": "Graduate", "masters": "Graduate", "phd": "Graduate",
}

var stBrackets = map[string]string{
	"fds": "Full Discount with Stipend", "full discount with stipend": "Full Discount with Stipend",
	"fd": "Full Discount", "full discount": "Full Discount",
	"pd80": "PD80", "pd 80": "PD80", "pd-80": "PD80", "partial discount 80": "PD80", "partial discount 80%": "PD80",
	"pd60": "PD60", "pd 60": "PD60", "pd-60": "PD60", "partial discount 60": "PD60", "partial discount 60%": "PD60",
	"pd40": "PD40", "pd 40": "PD40", "pd-40": "PD40", "partial discount 40": "PD40", "partial discount 40%": "PD40",
	"pd20": "PD20", "pd 20": "PD20", "pd-20": "PD20", "partial discount 20": "PD20", "partial discount 20%": "PD20",
	"nd": "No Discount", "no discount": "No Discount",
}

var colleges = map[string]string{
	"cas":  "College of Arts and Sciences",
	"cafs": "College of Agriculture and Food Science",
	"ceat": "College of Engineering and Agro-Industrial Technology",
	"cem":  "College of Economics and Management",
	"cfnr": "College of Forestry and Natural Resources",
	"che":  "College of Human Ecology",
	"cvm":  "College of Veterinary Medicine",
	"cdc":  "College of Development Communication",
	"cpaf": "College of Public Affairs and Development",
	"gs":   "Graduate School",
}

func lookupKey(v string) string {
	return strings.Join(strings.Fields(strings.ToLower(v)), " ")
}

func normalizeWith(table map[string]string, v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if canonical, ok := table[lookupKey(v)]; ok {
		return canonical
	}
	return v
}

// NormalizeYearLevel maps free-text year levels ("1ST YEAR", "freshman") to the canonical form.
func NormalizeYearLevel(v string) string { return normalizeWith(yearLevels, v) }

// NormalizeSTBracket expands ST bracket codes such as "FDS" or "PD 80".
func NormalizeSTBracket(v string) string { return normalizeWith(stBrackets, v) }

// NormalizeCollege expands college codes such as "CAS" or "CEAT" to full names.
func NormalizeCollege(v string) string { return normalizeWith(colleges, v) }

// Normalize derives the canonical student view. It never fails; absent values keep
// their Has* flag false and default to the worst GWA and zero income.
func Normalize(p models.StudentProfile) NormalizedStudent {
	ns := NormalizedStudent{
		ID:                     p.ID,
		GWA:                    WorstGWA,
		YearLevel:              NormalizeYearLevel(p.YearLevel),
		College:                NormalizeCollege(p.College),
		Course:                 strings.TrimSpace(p.Course),
		Major:                  strings.TrimSpace(p.Major),
		STBracket:              NormalizeSTBracket(firstNonEmpty(p.STBracket, p.STFAPBracket)),
		HasExistingScholarship: p.HasExistingScholarship,
		HasDisciplinaryAction:  p.HasDisciplinaryAction,
		HasThesisGrant:         p.HasThesisGrant,
		HasApprovedThesis:      p.HasApprovedThesis,
		HasFailingGrade:        p.HasFailingGrade,
		HasIncompleteGrade:     p.HasIncompleteGrade,
		HasConditionalGrade:    p.HasConditionalGrade,
		IsGraduating:           p.IsGraduating,
		Province:               strings.TrimSpace(firstNonEmpty(p.ProvinceOfOrigin, p.Province)),
		Citizenship:            strings.TrimSpace(p.Citizenship),
		ProfileCompleted:       p.ProfileCompleted,
		SubmittedDocuments:     p.SubmittedDocuments,
		CustomFields:           p.CustomFields,
	}

	if gwa := firstFloat(p.GWA, p.GeneralWeightedAverage); gwa != nil && *gwa > 0 && *gwa <= WorstGWA {
		ns.GWA, ns.HasGWA = *gwa, true
	}
	if income := firstFloat(p.AnnualFamilyIncome, p.FamilyIncome); income != nil && *income >= 0 {
		ns.AnnualFamilyIncome, ns.HasIncome = *income, true
	}
	if p.UnitsEnrolled != nil && *p.UnitsEnrolled >= 0 {
		ns.UnitsEnrolled, ns.HasUnitsEnrolled = *p.UnitsEnrolled, true
	}
	if p.UnitsPassed != nil && *p.UnitsPassed >= 0 {
		ns.UnitsPassed, ns.HasUnitsPassed = *p.UnitsPassed, true
	}
	if p.HouseholdSize != nil && *p.HouseholdSize > 0 {
		ns.HouseholdSize = *p.HouseholdSize
	}

	return ns
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// ContainsFold reports whether v equals any element of list, ignoring case.
func ContainsFold(list []string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), v) {
			return true
		}
	}
	return false
}

// FreeTextMatch is the lenient comparison used for course, major and province:
// either value may contain the other, ignoring case.
func FreeTextMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// MatchesAnyFreeText applies FreeTextMatch against every entry of list.
func MatchesAnyFreeText(list []string, v string) bool {
	for _, item := range list {
		if FreeTextMatch(item, v) {
			return true
		}
	}
	return false
}

// NormalizedList applies fn to every non-blank entry.
func NormalizedList(list []string, fn func(string) string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if strings.TrimSpace(item) == "" {
			continue
		}
		out = append(out, fn(item))
	}
	return out
}

// HasRestriction reports whether list carries at least one non-blank entry.
func HasRestriction(list []string) bool {
	for _, item := range list {
		if strings.TrimSpace(item) != "" {
			return true
		}
	}
	return false
}
