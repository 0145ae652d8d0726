// internal/models/student.go
package models

import (
	"encoding/json"
	"fmt"
)

// StudentProfile is the raw student record as supplied by the scholarship backend.
// Several attributes arrive under legacy names; the eligibility package coalesces
// them into one canonical shape.
type StudentProfile struct {
	ID            string `json:"id"`
	StudentNumber string `json:"studentNumber,omitempty"`

	// Academic
	GWA                    *float64 `json:"gwa,omitempty"`
	GeneralWeightedAverage *float64 `json:"generalWeightedAverage,omitempty"` // legacy
	YearLevel              string   `json:"yearLevel,omitempty"`
	College                string   `json:"college,omitempty"`
	Course                 string   `json:"course,omitempty"`
	Major                  string   `json:"major,omitempty"`
	UnitsEnrolled          *int     `json:"unitsEnrolled,omitempty"`
	UnitsPassed            *int     `json:"unitsPassed,omitempty"`

	// Financial
	AnnualFamilyIncome *float64 `json:"annualFamilyIncome,omitempty"`
	FamilyIncome       *float64 `json:"familyIncome,omitempty"` // legacy
	STBracket          string   `json:"stBracket,omitempty"`
	STFAPBracket       string   `json:"stfapBracket,omitempty"` // legacy
	HouseholdSize      *int     `json:"householdSize,omitempty"`

	// Status flags
	HasExistingScholarship bool `json:"hasExistingScholarship,omitempty"`
	HasDisciplinaryAction  bool `json:"hasDisciplinaryAction,omitempty"`
	HasThesisGrant         bool `json:"hasThesisGrant,omitempty"`
	HasApprovedThesis      bool `json:"hasApprovedThesis,omitempty"`
	HasFailingGrade        bool `json:"hasFailingGrade,omitempty"`
	HasIncompleteGrade     bool `json:"hasIncompleteGrade,omitempty"`
	HasConditionalGrade    bool `json:"hasConditionalGrade,omitempty"`
	IsGraduating           bool `json:"isGraduating,omitempty"`

	// Demographic
	ProvinceOfOrigin string `json:"provinceOfOrigin,omitempty"`
	Province         string `json:"province,omitempty"` // legacy
	Citizenship      string `json:"citizenship,omitempty"`

	ProfileCompleted   bool     `json:"profileCompleted,omitempty"`
	SubmittedDocuments []string `json:"submittedDocuments,omitempty"`

	CustomFields CustomFields `json:"customFields,omitempty"`
}

// FieldLookup is implemented by keyed custom-field containers that are not plain maps.
type FieldLookup interface {
	Lookup(key string) (interface{}, bool)
}

// CustomFields holds admin-defined student attributes. The backend sends them either
// as a plain object or as a list of {key, value} entries; both decode to the same map.
type CustomFields map[string]interface{}

// CustomFieldEntry is the list form of a single custom field.
type CustomFieldEntry struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// Lookup implements FieldLookup.
func (c CustomFields) Lookup(key string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c[key]
	return v, ok
}

func (c *CustomFields) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = nil
		return nil
	}

	var asMap map[string]interface{}
	if err := json.Unmarshal(data, &asMap); err == nil {
		*c = asMap
		return nil
	}

	var entries []CustomFieldEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("customFields must be an object or a list of key/value entries: %w", err)
	}

	out := make(CustomFields, len(entries))
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		out[e.Key] = e.Value
	}
	*c = out
	return nil
}
