// internal/common/errors/errors_test.go
package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertToBPMNError_Retryable(t *testing.T) {
	stdErr := NewProfileLookupFailedError(fmt.Errorf("connection refused")).
		WithMetadata("studentId", "stu-1")

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "PROFILE_LOOKUP_FAILED", bpmnErr.Code)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 3, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "PROFILE_LOOKUP_FAILED", vars["errorCode"])
	assert.Equal(t, "stu-1", vars["studentId"])
	assert.Equal(t, "connection refused", vars["errorDetails"])
}

func TestConvertToBPMNError_BusinessErrorNeverRetries(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewStudentNotFoundError("stu-9"))

	assert.Equal(t, "STUDENT_NOT_FOUND", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)
}

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("execute: %w", NewInvalidScholarshipError("maxGWA: invalid type"))
	assert.Equal(t, ErrCodeInvalidScholarship, Normalize(wrapped).Code)

	plain := Normalize(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternalError, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrCodeInvalidStudentProfile, "VALIDATION"},
		{ErrCodeParseError, "VALIDATION"},
		{ErrCodeScholarshipNotFound, "LOOKUP"},
		{ErrCodeScholarshipLookupFailed, "DATASOURCE"},
		{ErrCodeModelRegistryUnavailable, "MODEL"},
		{ErrCodeCacheClearFailed, "MODEL"},
		{ErrCodeInternalError, "OTHER"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetErrorCategory(tt.code), string(tt.code))
	}
}
