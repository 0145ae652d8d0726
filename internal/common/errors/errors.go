// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidStudentProfile ErrorCode = "INVALID_STUDENT_PROFILE"
	ErrCodeInvalidScholarship    ErrorCode = "INVALID_SCHOLARSHIP"

	ErrCodeStudentNotFound     ErrorCode = "STUDENT_NOT_FOUND"
	ErrCodeScholarshipNotFound ErrorCode = "SCHOLARSHIP_NOT_FOUND"

	ErrCodeProfileLookupFailed     ErrorCode = "PROFILE_LOOKUP_FAILED"
	ErrCodeScholarshipLookupFailed ErrorCode = "SCHOLARSHIP_LOOKUP_FAILED"

	ErrCodeModelRegistryUnavailable ErrorCode = "MODEL_REGISTRY_UNAVAILABLE"
	ErrCodeCacheClearFailed         ErrorCode = "CACHE_CLEAR_FAILED"

	ErrCodeParseError    ErrorCode = "PARSE_ERROR"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the internal error shape every worker reports.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables flattens the error into process variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func NewInvalidStudentProfileError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStudentProfile,
		Message:   "Student profile failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidScholarshipError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidScholarship,
		Message:   "Scholarship criteria failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewStudentNotFoundError(studentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStudentNotFound,
		Message:   "Student profile not found",
		Details:   fmt.Sprintf("studentId: %s", studentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewScholarshipNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScholarshipNotFound,
		Message:   "Scholarship not found in catalogue",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewProfileLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileLookupFailed,
		Message:   "Student profile lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewScholarshipLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScholarshipLookupFailed,
		Message:   "Scholarship catalogue lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewModelRegistryUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelRegistryUnavailable,
		Message:   "Model registry unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewCacheClearFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheClearFailed,
		Message:   "Model weight cache could not be cleared",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseError,
		Message:   "Failed to parse job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidStudentProfile:    "INVALID_STUDENT_PROFILE",
	ErrCodeInvalidScholarship:       "INVALID_SCHOLARSHIP",
	ErrCodeStudentNotFound:          "STUDENT_NOT_FOUND",
	ErrCodeScholarshipNotFound:      "SCHOLARSHIP_NOT_FOUND",
	ErrCodeProfileLookupFailed:      "PROFILE_LOOKUP_FAILED",
	ErrCodeScholarshipLookupFailed:  "SCHOLARSHIP_LOOKUP_FAILED",
	ErrCodeModelRegistryUnavailable: "MODEL_REGISTRY_UNAVAILABLE",
	ErrCodeCacheClearFailed:         "CACHE_CLEAR_FAILED",
	ErrCodeParseError:               "PARSE_ERROR",
	ErrCodeInternalError:            "INTERNAL_ERROR",
}

// GetRetryCount returns how many retries a code earns before the BPMN error is thrown.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProfileLookupFailed,
		ErrCodeScholarshipLookupFailed,
		ErrCodeModelRegistryUnavailable:
		return 3

	case ErrCodeCacheClearFailed:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "INVALID") || codeStr == string(ErrCodeParseError):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "LOOKUP"
	case strings.Contains(codeStr, "LOOKUP"):
		return "DATASOURCE"
	case strings.Contains(codeStr, "MODEL") || strings.Contains(codeStr, "CACHE"):
		return "MODEL"
	default:
		return "OTHER"
	}
}
