// internal/eligibility/format.go
package eligibility

import (
	"fmt"
	"strconv"
	"strings"

	"scholarship-engine/internal/models"
)

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatStudentValue(value interface{}, present bool, spec models.ConditionSpec) string {
	if !present {
		return notSpecified
	}
	if _, isBool := spec.(models.BooleanSpec); isBool {
		if b, ok := toBool(value); ok {
			return yesNo(b)
		}
	}
	if items, scalar, ok := toStringList(value); ok {
		if !scalar && len(items) == 0 {
			return "None"
		}
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%v", value)
}

func formatRequiredValue(spec models.ConditionSpec) string {
	switch s := spec.(type) {
	case models.RangeSpec:
		return formatRange(s)
	case models.BooleanSpec:
		return requiredLabel(booleanRequires(s))
	case models.ListSpec:
		switch s.Operator {
		case models.ListIsEmpty:
			return "None"
		case models.ListIsNotEmpty:
			return "Any"
		}
		if !HasRestriction(s.Values) {
			return "Any"
		}
		return joinList(s.Values, identity)
	default:
		return ""
	}
}

// booleanRequires reports whether the condition asks for the attribute to be present or true.
func booleanRequires(s models.BooleanSpec) bool {
	switch s.Operator {
	case models.BoolIs:
		return s.Expected
	case models.BoolIsNot:
		return !s.Expected
	case models.BoolIsTrue, models.BoolExists:
		return true
	default:
		return false
	}
}

func formatRange(s models.RangeSpec) string {
	bound := func(v *float64, open string) string {
		if v == nil {
			return open
		}
		return formatNumber(*v)
	}

	switch s.Operator {
	case models.RangeBetween:
		return bound(s.Min, "-∞") + " – " + bound(s.Max, "+∞")
	case models.RangeBetweenExclusive:
		return bound(s.Min, "-∞") + " – " + bound(s.Max, "+∞") + " (exclusive)"
	case models.RangeOutside:
		return "outside " + bound(s.Min, "-∞") + " – " + bound(s.Max, "+∞")
	}

	if s.Value == nil {
		return ""
	}
	symbols := map[models.RangeOperator]string{
		models.RangeLT:  "<",
		models.RangeLTE: "≤",
		models.RangeGT:  ">",
		models.RangeGTE: "≥",
		models.RangeEQ:  "=",
		models.RangeNE:  "≠",
	}
	return symbols[s.Operator] + " " + formatNumber(*s.Value)
}
