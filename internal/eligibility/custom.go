// internal/eligibility/custom.go
package eligibility

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"scholarship-engine/internal/models"
)

const floatTolerance = 1e-9

// EvaluateCustom evaluates admin-defined conditions in order. Inactive conditions and
// range conditions without any threshold are omitted from the result.
func EvaluateCustom(s NormalizedStudent, conditions []models.CustomCondition) []ConditionResult {
	results := make([]ConditionResult, 0, len(conditions))
	for _, cond := range conditions {
		if !cond.Active() {
			continue
		}
		passed, skipped := checkCustom(&s, cond)
		if skipped {
			continue
		}

		value, present := ResolveField(&s, cond.FieldPath)
		r := ConditionResult{
			ID:            cond.ID,
			Name:          firstNonEmpty(cond.Name, cond.FieldPath, cond.ID),
			Passed:        passed,
			StudentValue:  formatStudentValue(value, present, cond.Spec),
			RequiredValue: formatRequiredValue(cond.Spec),
			Category:      firstNonEmpty(cond.Category, CategoryCustom),
			Importance:    effectiveImportance(cond),
		}
		if cond.Spec != nil {
			r.ConditionType = cond.Spec.Family()
		}
		if cond.Description != "" {
			r.Description = cond.Description
		} else {
			r.Description = describe(r.Name, r.RequiredValue, r.StudentValue, r.Passed)
		}
		results = append(results, r)
	}
	return results
}

// effectiveImportance treats an unset importance as required.
func effectiveImportance(cond models.CustomCondition) models.Importance {
	if cond.Importance == "" {
		return models.ImportanceRequired
	}
	return cond.Importance
}

// checkCustom dispatches on the condition family. It never panics: a missing value or
// a type mismatch evaluates to false.
func checkCustom(s *NormalizedStudent, cond models.CustomCondition) (passed, skipped bool) {
	value, present := ResolveField(s, cond.FieldPath)

	switch spec := cond.Spec.(type) {
	case models.RangeSpec:
		if !rangeConfigured(spec) {
			return false, true
		}
		return evalRange(spec, value, present), false
	case models.BooleanSpec:
		return evalBoolean(spec, value, present), false
	case models.ListSpec:
		return evalList(spec, value, present), false
	default:
		return false, false
	}
}

func rangeConfigured(spec models.RangeSpec) bool {
	switch spec.Operator {
	case models.RangeBetween, models.RangeBetweenExclusive, models.RangeOutside:
		return spec.Min != nil || spec.Max != nil
	default:
		return spec.Value != nil
	}
}

func evalRange(spec models.RangeSpec, value interface{}, present bool) bool {
	if !present {
		return false
	}
	v, ok := toFloat(value)
	if !ok {
		return false
	}

	switch spec.Operator {
	case models.RangeLT:
		return v < *spec.Value
	case models.RangeLTE:
		return v <= *spec.Value
	case models.RangeGT:
		return v > *spec.Value
	case models.RangeGTE:
		return v >= *spec.Value
	case models.RangeEQ:
		return math.Abs(v-*spec.Value) < floatTolerance
	case models.RangeNE:
		return math.Abs(v-*spec.Value) >= floatTolerance
	case models.RangeBetween:
		return (spec.Min == nil || v >= *spec.Min) && (spec.Max == nil || v <= *spec.Max)
	case models.RangeBetweenExclusive:
		return (spec.Min == nil || v > *spec.Min) && (spec.Max == nil || v < *spec.Max)
	case models.RangeOutside:
		return (spec.Min != nil && v < *spec.Min) || (spec.Max != nil && v > *spec.Max)
	default:
		return false
	}
}

func evalBoolean(spec models.BooleanSpec, value interface{}, present bool) bool {
	switch spec.Operator {
	case models.BoolExists:
		return present
	case models.BoolNotExists:
		return !present
	}
	if !present {
		return false
	}
	b, ok := toBool(value)
	if !ok {
		return false
	}

	switch spec.Operator {
	case models.BoolIs:
		return b == spec.Expected
	case models.BoolIsNot:
		return b != spec.Expected
	case models.BoolIsTrue:
		return b
	case models.BoolIsFalse:
		return !b
	default:
		return false
	}
}

func evalList(spec models.ListSpec, value interface{}, present bool) bool {
	items, scalar, ok := toStringList(value)
	if !present || !ok {
		items, scalar = nil, false
	}

	switch spec.Operator {
	case models.ListIsEmpty:
		return len(items) == 0
	case models.ListIsNotEmpty:
		return len(items) > 0
	}

	// An empty required list imposes no restriction.
	if !HasRestriction(spec.Values) {
		return true
	}
	if !present || !ok {
		return false
	}

	switch spec.Operator {
	case models.ListIn:
		if len(items) == 0 {
			return false
		}
		for _, it := range items {
			if !ContainsFold(spec.Values, it) {
				return false
			}
		}
		return true
	case models.ListNotIn:
		for _, it := range items {
			if ContainsFold(spec.Values, it) {
				return false
			}
		}
		return true
	case models.ListContains:
		return holds(items, scalar, spec.Values[0])
	case models.ListNotContains:
		for _, req := range spec.Values {
			if holds(items, scalar, req) {
				return false
			}
		}
		return true
	case models.ListContainsAll:
		for _, req := range spec.Values {
			if !holds(items, scalar, req) {
				return false
			}
		}
		return true
	case models.ListContainsAny:
		for _, req := range spec.Values {
			if holds(items, scalar, req) {
				return true
			}
		}
		return false
	case models.ListMatchesAny:
		for _, req := range spec.Values {
			if MatchesAnyFreeText(items, req) {
				return true
			}
		}
		return false
	case models.ListMatchesAll:
		for _, req := range spec.Values {
			if !MatchesAnyFreeText(items, req) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// holds checks membership for list values and substring containment for a scalar string.
func holds(items []string, scalar bool, want string) bool {
	if scalar && len(items) == 1 {
		w := strings.ToLower(strings.TrimSpace(want))
		return w != "" && strings.Contains(strings.ToLower(items[0]), w)
	}
	return ContainsFold(items, want)
}

// ResolveField looks up a dotted path on the normalized student. Known top-level
// fields are matched first, then "customFields.<key>" or a bare custom key. Custom
// field containers may be plain maps or any models.FieldLookup.
func ResolveField(s *NormalizedStudent, path string) (interface{}, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")

	if len(segments) > 1 && segments[0] == "customFields" {
		return descend(s.CustomFields, segments[1:])
	}
	if len(segments) == 1 {
		if v, ok, known := builtinField(s, segments[0]); known {
			return v, ok
		}
	}
	return descend(s.CustomFields, segments)
}

func builtinField(s *NormalizedStudent, name string) (value interface{}, present, known bool) {
	str := func(v string) (interface{}, bool, bool) { return v, strings.TrimSpace(v) != "", true }

	switch name {
	case "gwa", "generalWeightedAverage":
		return s.GWA, s.HasGWA, true
	case "yearLevel":
		return str(s.YearLevel)
	case "college":
		return str(s.College)
	case "course":
		return str(s.Course)
	case "major":
		return str(s.Major)
	case "unitsEnrolled":
		return float64(s.UnitsEnrolled), s.HasUnitsEnrolled, true
	case "unitsPassed":
		return float64(s.UnitsPassed), s.HasUnitsPassed, true
	case "annualFamilyIncome", "familyIncome":
		return s.AnnualFamilyIncome, s.HasIncome, true
	case "stBracket", "stfapBracket":
		return str(s.STBracket)
	case "householdSize":
		return float64(s.HouseholdSize), s.HouseholdSize > 0, true
	case "provinceOfOrigin", "province":
		return str(s.Province)
	case "citizenship":
		return str(s.Citizenship)
	case "hasExistingScholarship":
		return s.HasExistingScholarship, true, true
	case "hasDisciplinaryAction":
		return s.HasDisciplinaryAction, true, true
	case "hasThesisGrant":
		return s.HasThesisGrant, true, true
	case "hasApprovedThesis":
		return s.HasApprovedThesis, true, true
	case "hasFailingGrade":
		return s.HasFailingGrade, true, true
	case "hasIncompleteGrade":
		return s.HasIncompleteGrade, true, true
	case "hasConditionalGrade":
		return s.HasConditionalGrade, true, true
	case "isGraduating":
		return s.IsGraduating, true, true
	case "profileCompleted":
		return s.ProfileCompleted, true, true
	case "submittedDocuments":
		return s.SubmittedDocuments, s.SubmittedDocuments != nil, true
	default:
		return nil, false, false
	}
}

func descend(root interface{}, segments []string) (interface{}, bool) {
	current := root
	for _, seg := range segments {
		var (
			next interface{}
			ok   bool
		)
		switch node := current.(type) {
		case models.FieldLookup:
			next, ok = node.Lookup(seg)
		case map[string]interface{}:
			next, ok = node[seg]
		default:
			return nil, false
		}
		if !ok || next == nil {
			return nil, false
		}
		current = next
	}
	if s, isStr := current.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return current, true
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toBool(v interface{}) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
		return false, false
	case float64:
		return t != 0, true
	case int:
		return t != 0, true
	default:
		return false, false
	}
}

// toStringList converts a field value to its string elements; scalar is true when
// the value was a single string rather than a list.
func toStringList(v interface{}) (items []string, scalar bool, ok bool) {
	switch t := v.(type) {
	case nil:
		return nil, false, false
	case []string:
		return NormalizedList(t, identity), false, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, it := range t {
			s, ok := scalarToString(it)
			if !ok {
				return nil, false, false
			}
			if s != "" {
				out = append(out, s)
			}
		}
		return out, false, true
	default:
		s, ok := scalarToString(t)
		if !ok {
			return nil, false, false
		}
		if s == "" {
			return nil, true, true
		}
		return []string{s}, true, true
	}
}

func scalarToString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		if f, ok := toFloat(t); ok {
			return formatNumber(f), true
		}
		return "", false
	}
}
