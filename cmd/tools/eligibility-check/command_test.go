// cmd/tools/eligibility-check/command_test.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	studentJSON = `{"id": "stu-1", "gwa": 1.45, "college": "CEAT", "annualFamilyIncome": 200000, "citizenship": "Filipino"}`

	scholarshipsJSON = `[
		{"id": "strict", "name": "Strict", "eligibilityCriteria": {"maxGWA": 1.25}},
		{"id": "open", "name": "Open", "eligibilityCriteria": {"maxGWA": 2.5, "eligibleColleges": ["CEAT"]}}
	]`

	singleScholarshipJSON = `{"id": "income", "name": "Income Based", "eligibilityCriteria": {"maxAnnualFamilyIncome": 250000}}`

	modelsYAML = `
models:
  - id: m-open
    scholarshipId: open
    accuracy: 0.81
    isActive: true
    trainedAt: 2026-03-01T00:00:00Z
    weights:
      intercept: -1.5
      gwaScore: 2.0
      collegeMatch: 0.7
`
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCommand(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out
	err := cmd.Run(context.Background(), append([]string{"eligibility-check"}, args...))
	return &out, err
}

func TestRun_JSON(t *testing.T) {
	dir := t.TempDir()
	student := writeFile(t, dir, "student.json", studentJSON)
	list := writeFile(t, dir, "list.json", scholarshipsJSON)
	single := writeFile(t, dir, "single.json", singleScholarshipJSON)
	modelFile := writeFile(t, dir, "models.yaml", modelsYAML)

	out, err := runCommand(t, "--student", student, "--scholarship", list, "--scholarship", single, "--models", modelFile)
	require.NoError(t, err)

	var got report
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "stu-1", got.StudentID)
	assert.Equal(t, 2, got.EligibleCount)
	require.Len(t, got.Matches, 3)
	assert.Equal(t, "strict", got.Matches[2].ScholarshipID)

	for _, m := range got.Matches {
		if m.ScholarshipID == "open" {
			require.NotNil(t, m.Prediction)
			assert.True(t, m.Prediction.TrainedModel)
			assert.Equal(t, "m-open", m.Prediction.ModelID)
		}
	}
}

func TestRun_YAML(t *testing.T) {
	dir := t.TempDir()
	student := writeFile(t, dir, "student.json", studentJSON)
	single := writeFile(t, dir, "single.json", singleScholarshipJSON)

	out, err := runCommand(t, "--student", student, "--scholarship", single, "--format", "yaml")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "stu-1", got["studentId"])
	assert.Equal(t, 1, got["eligibleCount"])
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	student := writeFile(t, dir, "student.json", studentJSON)
	single := writeFile(t, dir, "single.json", singleScholarshipJSON)
	invalid := writeFile(t, dir, "invalid.json", `{"name": "missing id"}`)

	tests := []struct {
		name string
		args []string
	}{
		{"missing student file", []string{"--student", filepath.Join(dir, "nope.json"), "--scholarship", single}},
		{"invalid scholarship", []string{"--student", student, "--scholarship", invalid}},
		{"unknown format", []string{"--student", student, "--scholarship", single, "--format", "xml"}},
		{"bad evaluation time", []string{"--student", student, "--scholarship", single, "--evaluated-at", "yesterday"}},
		{"missing model file", []string{"--student", student, "--scholarship", single, "--models", filepath.Join(dir, "none.yaml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
