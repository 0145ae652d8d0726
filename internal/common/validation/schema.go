// internal/common/validation/schema.go
package validation

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	studentProfileSchema = mustLoadSchema("schemas/student_profile.json")
	scholarshipSchema    = mustLoadSchema("schemas/scholarship.json")
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func mustLoadSchema(path string) *gojsonschema.Schema {
	data, err := schemaFS.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("validation: read %s: %v", path, err))
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(fmt.Sprintf("validation: compile %s: %v", path, err))
	}
	return schema
}

// ValidateStudentProfile checks a raw student profile document.
func ValidateStudentProfile(doc interface{}) *ValidationResult {
	return validate(studentProfileSchema, doc)
}

// ValidateScholarship checks a raw scholarship document including its custom conditions.
func ValidateScholarship(doc interface{}) *ValidationResult {
	return validate(scholarshipSchema, doc)
}

// ValidateScholarships checks every element and prefixes field paths with the index.
func ValidateScholarships(docs []interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}
	for i, doc := range docs {
		r := ValidateScholarship(doc)
		for _, e := range r.Errors {
			e.Field = fmt.Sprintf("[%d].%s", i, e.Field)
			result.Errors = append(result.Errors, e)
		}
	}
	result.Valid = len(result.Errors) == 0
	return result
}

// ValidateInput validates doc against a caller-supplied schema map.
func ValidateInput(doc interface{}, schema map[string]interface{}) *ValidationResult {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(schema)",
			Message: err.Error(),
			Code:    "INVALID_SCHEMA",
		}}}
	}
	return validate(compiled, doc)
}

func validate(schema *gojsonschema.Schema, doc interface{}) *ValidationResult {
	var loader gojsonschema.JSONLoader
	switch d := doc.(type) {
	case []byte:
		loader = gojsonschema.NewBytesLoader(d)
	case string:
		loader = gojsonschema.NewStringLoader(d)
	default:
		loader = gojsonschema.NewGoLoader(d)
	}

	res, err := schema.Validate(loader)
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(root)",
			Message: err.Error(),
			Code:    "MALFORMED_DOCUMENT",
		}}}
	}

	errs := make([]ValidationError, 0, len(res.Errors()))
	for _, desc := range res.Errors() {
		errs = append(errs, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })

	return &ValidationResult{
		Valid:  res.Valid(),
		Errors: errs,
	}
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Summary joins the messages into one line for error details.
func (vr *ValidationResult) Summary() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var errors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field {
			errors = append(errors, err)
		}
	}
	return errors
}
