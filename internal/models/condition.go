// internal/models/condition.go
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type ConditionType string

const (
	ConditionRange   ConditionType = "range"
	ConditionBoolean ConditionType = "boolean"
	ConditionList    ConditionType = "list"
)

type Importance string

const (
	ImportanceRequired  Importance = "required"
	ImportancePreferred Importance = "preferred"
	ImportanceOptional  Importance = "optional"
)

type RangeOperator string

const (
	RangeLT               RangeOperator = "<"
	RangeLTE              RangeOperator = "<="
	RangeGT               RangeOperator = ">"
	RangeGTE              RangeOperator = ">="
	RangeEQ               RangeOperator = "=="
	RangeNE               RangeOperator = "!="
	RangeBetween          RangeOperator = "between"
	RangeBetweenExclusive RangeOperator = "between_exclusive"
	RangeOutside          RangeOperator = "outside"
)

type BooleanOperator string

const (
	BoolIs        BooleanOperator = "is"
	BoolIsNot     BooleanOperator = "is_not"
	BoolIsTrue    BooleanOperator = "is_true"
	BoolIsFalse   BooleanOperator = "is_false"
	BoolExists    BooleanOperator = "exists"
	BoolNotExists BooleanOperator = "not_exists"
)

type ListOperator string

const (
	ListIn          ListOperator = "in"
	ListNotIn       ListOperator = "not_in"
	ListContains    ListOperator = "contains"
	ListNotContains ListOperator = "not_contains"
	ListContainsAll ListOperator = "contains_all"
	ListContainsAny ListOperator = "contains_any"
	ListIsEmpty     ListOperator = "is_empty"
	ListIsNotEmpty  ListOperator = "is_not_empty"
	ListMatchesAny  ListOperator = "matches_any"
	ListMatchesAll  ListOperator = "matches_all"
)

var rangeOperatorAliases = map[string]RangeOperator{
	"<": RangeLT, "lt": RangeLT, "less_than": RangeLT,
	"<=": RangeLTE, "lte": RangeLTE, "less_than_or_equal": RangeLTE,
	">": RangeGT, "gt": RangeGT, "greater_than": RangeGT,
	">=": RangeGTE, "gte": RangeGTE, "greater_than_or_equal": RangeGTE,
	"==": RangeEQ, "=": RangeEQ, "eq": RangeEQ, "equals": RangeEQ,
	"!=": RangeNE, "ne": RangeNE, "not_equals": RangeNE,
	"between":           RangeBetween,
	"between_exclusive": RangeBetweenExclusive,
	"outside":           RangeOutside,
}

var booleanOperators = map[string]BooleanOperator{
	"is": BoolIs, "is_not": BoolIsNot, "is_true": BoolIsTrue, "is_false": BoolIsFalse,
	"exists": BoolExists, "not_exists": BoolNotExists,
}

var listOperators = map[string]ListOperator{
	"in": ListIn, "not_in": ListNotIn, "contains": ListContains, "not_contains": ListNotContains,
	"contains_all": ListContainsAll, "contains_any": ListContainsAny,
	"is_empty": ListIsEmpty, "is_not_empty": ListIsNotEmpty,
	"matches_any": ListMatchesAny, "matches_all": ListMatchesAll,
}

func normalizeOperator(op string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(op)), "-", "_")
}

// ParseRangeOperator accepts symbols, short names and dashed or underscored spellings.
func ParseRangeOperator(op string) (RangeOperator, bool) {
	v, ok := rangeOperatorAliases[normalizeOperator(op)]
	return v, ok
}

func ParseBooleanOperator(op string) (BooleanOperator, bool) {
	v, ok := booleanOperators[normalizeOperator(op)]
	return v, ok
}

func ParseListOperator(op string) (ListOperator, bool) {
	v, ok := listOperators[normalizeOperator(op)]
	return v, ok
}

// ConditionSpec is the closed set of custom condition families.
// Implementations: RangeSpec, BooleanSpec, ListSpec.
type ConditionSpec interface {
	Family() ConditionType
	sealed()
}

// RangeSpec compares a numeric student value. Value is the single-threshold operand;
// Min and Max bound between/outside, nil meaning unbounded on that side.
type RangeSpec struct {
	Operator RangeOperator
	Value    *float64
	Min      *float64
	Max      *float64
}

type BooleanSpec struct {
	Operator BooleanOperator
	Expected bool
}

type ListSpec struct {
	Operator ListOperator
	Values   []string
}

func (RangeSpec) Family() ConditionType   { return ConditionRange }
func (BooleanSpec) Family() ConditionType { return ConditionBoolean }
func (ListSpec) Family() ConditionType    { return ConditionList }

func (RangeSpec) sealed()   {}
func (BooleanSpec) sealed() {}
func (ListSpec) sealed()    {}

// CustomCondition is an admin-authored rule evaluated against a student field path.
type CustomCondition struct {
	ID          string
	Name        string
	Description string
	FieldPath   string
	Importance  Importance
	Category    string
	IsActive    *bool
	Spec        ConditionSpec
}

// Active reports whether the condition participates in evaluation. An absent flag means active.
func (c CustomCondition) Active() bool {
	return c.IsActive == nil || *c.IsActive
}

type customConditionJSON struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	FieldPath     string          `json:"fieldPath"`
	ConditionType ConditionType   `json:"conditionType"`
	Operator      string          `json:"operator"`
	Value         json.RawMessage `json:"value,omitempty"`
	Min           *float64        `json:"min,omitempty"`
	Max           *float64        `json:"max,omitempty"`
	Importance    Importance      `json:"importance,omitempty"`
	Category      string          `json:"category,omitempty"`
	IsActive      *bool           `json:"isActive,omitempty"`
}

type rangeBounds struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

func (c *CustomCondition) UnmarshalJSON(data []byte) error {
	var raw customConditionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := CustomCondition{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		FieldPath:   raw.FieldPath,
		Importance:  Importance(strings.ToLower(string(raw.Importance))),
		Category:    raw.Category,
		IsActive:    raw.IsActive,
	}
	if out.Importance == "" {
		out.Importance = ImportanceRequired
	}

	switch ConditionType(strings.ToLower(string(raw.ConditionType))) {
	case ConditionRange:
		op, ok := ParseRangeOperator(raw.Operator)
		if !ok {
			return fmt.Errorf("condition %q: unknown range operator %q", raw.ID, raw.Operator)
		}
		spec := RangeSpec{Operator: op, Min: raw.Min, Max: raw.Max}
		if len(raw.Value) > 0 && string(raw.Value) != "null" {
			var bounds rangeBounds
			if err := json.Unmarshal(raw.Value, &bounds); err == nil && (bounds.Min != nil || bounds.Max != nil) {
				if spec.Min == nil {
					spec.Min = bounds.Min
				}
				if spec.Max == nil {
					spec.Max = bounds.Max
				}
			} else if f, ok := decodeNumber(raw.Value); ok {
				spec.Value = &f
			}
		}
		out.Spec = spec

	case ConditionBoolean:
		op, ok := ParseBooleanOperator(raw.Operator)
		if !ok {
			return fmt.Errorf("condition %q: unknown boolean operator %q", raw.ID, raw.Operator)
		}
		spec := BooleanSpec{Operator: op, Expected: true}
		if len(raw.Value) > 0 && string(raw.Value) != "null" {
			if b, ok := decodeBool(raw.Value); ok {
				spec.Expected = b
			}
		}
		out.Spec = spec

	case ConditionList:
		op, ok := ParseListOperator(raw.Operator)
		if !ok {
			return fmt.Errorf("condition %q: unknown list operator %q", raw.ID, raw.Operator)
		}
		out.Spec = ListSpec{Operator: op, Values: decodeStringList(raw.Value)}

	default:
		return fmt.Errorf("condition %q: unknown condition type %q", raw.ID, raw.ConditionType)
	}

	*c = out
	return nil
}

func (c CustomCondition) MarshalJSON() ([]byte, error) {
	raw := customConditionJSON{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		FieldPath:   c.FieldPath,
		Importance:  c.Importance,
		Category:    c.Category,
		IsActive:    c.IsActive,
	}

	var value interface{}
	switch s := c.Spec.(type) {
	case RangeSpec:
		raw.ConditionType = ConditionRange
		raw.Operator = string(s.Operator)
		raw.Min, raw.Max = s.Min, s.Max
		if s.Value != nil {
			value = *s.Value
		}
	case BooleanSpec:
		raw.ConditionType = ConditionBoolean
		raw.Operator = string(s.Operator)
		value = s.Expected
	case ListSpec:
		raw.ConditionType = ConditionList
		raw.Operator = string(s.Operator)
		value = s.Values
	default:
		return nil, fmt.Errorf("condition %q has no spec", c.ID)
	}

	if value != nil {
		b, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		raw.Value = b
	}
	return json.Marshal(raw)
}

func decodeNumber(data json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func decodeBool(data json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return b, true
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// decodeStringList accepts a JSON array of scalars, a single scalar, or a comma-separated string.
func decodeStringList(data json.RawMessage) []string {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var items []interface{}
	if err := json.Unmarshal(data, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, it := range items {
			if s := scalarString(it); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	var single interface{}
	if err := json.Unmarshal(data, &single); err != nil {
		return nil
	}
	if s, ok := single.(string); ok {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	if s := scalarString(single); s != "" {
		return []string{s}
	}
	return nil
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
