// cmd/tools/eligibility-check/command.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/matching"
	"scholarship-engine/internal/modelregistry"
	"scholarship-engine/internal/prediction"
	"scholarship-engine/internal/workers/scholarship/shared"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	studentFlag = &cli.StringFlag{
		Name:     "student",
		Aliases:  []string{"s"},
		Usage:    "Path to the student profile JSON file",
		Required: true,
	}

	scholarshipFlag = &cli.StringSliceFlag{
		Name:     "scholarship",
		Aliases:  []string{"c"},
		Usage:    "Path to a scholarship JSON file (object or array, repeatable)",
		Required: true,
	}

	modelsFlag = &cli.StringFlag{
		Name:  "models",
		Usage: "Path to a YAML model file with trained weights (optional, default: neutral weights)",
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}

	includeIneligibleFlag = &cli.BoolFlag{
		Name:  "include-ineligible",
		Usage: "Score scholarships the student is not eligible for",
	}

	evaluatedAtFlag = &cli.StringFlag{
		Name:  "evaluated-at",
		Usage: "RFC3339 evaluation time for the application timing feature",
	}

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}
)

type report struct {
	StudentID     string                 `json:"studentId"`
	EligibleCount int                    `json:"eligibleCount"`
	Matches       []matching.MatchResult `json:"matches"`
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "eligibility-check",
		Usage:   "Evaluate a student against scholarship files and predict approval",
		Version: version,
		Flags: []cli.Flag{
			studentFlag,
			scholarshipFlag,
			modelsFlag,
			formatFlag,
			includeIneligibleFlag,
			evaluatedAtFlag,
			debugFlag,
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := "warn"
	if cmd.Bool(debugFlag.Name) {
		level = "debug"
	}
	log := logger.NewStructured(level, "console")

	format := cmd.String(formatFlag.Name)
	if format == "yml" {
		format = formatYAML
	}
	if format != formatJSON && format != formatYAML {
		return fmt.Errorf("unsupported format %q", format)
	}

	opts := matching.Options{IncludeIneligible: cmd.Bool(includeIneligibleFlag.Name)}
	if v := cmd.String(evaluatedAtFlag.Name); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("parsing evaluated-at: %w", err)
		}
		opts.Now = t
	}

	studentDoc, err := os.ReadFile(cmd.String(studentFlag.Name))
	if err != nil {
		return fmt.Errorf("reading student: %w", err)
	}
	scholarshipDoc, err := readScholarships(cmd.StringSlice(scholarshipFlag.Name))
	if err != nil {
		return err
	}

	resolver := &shared.Resolver{}
	student, err := resolver.Student(ctx, "", studentDoc)
	if err != nil {
		return err
	}
	scholarships, err := resolver.ResolveScholarships(ctx, nil, scholarshipDoc)
	if err != nil {
		return err
	}

	var weights matching.WeightSource
	if path := cmd.String(modelsFlag.Name); path != "" {
		registry, err := modelregistry.NewFileRegistry(path)
		if err != nil {
			return fmt.Errorf("loading models: %w", err)
		}
		weights = prediction.NewWeightProvider(registry, nil, prediction.ProviderConfig{}, log)
	}

	results, err := matching.NewMatcher(weights).MatchStudentToScholarships(ctx, *student, scholarships, opts)
	if err != nil {
		return err
	}
	matching.Rank(results)

	out := report{StudentID: student.ID, Matches: results}
	for _, r := range results {
		if r.IsEligible {
			out.EligibleCount++
		}
	}
	return encode(cmd.Root().Writer, format, out)
}

// readScholarships concatenates every file into one JSON array. A file may hold
// a single scholarship object or an array of them.
func readScholarships(paths []string) (json.RawMessage, error) {
	var all []json.RawMessage
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading scholarship: %w", err)
		}
		data = bytes.TrimSpace(data)
		if len(data) > 0 && data[0] == '[' {
			var list []json.RawMessage
			if err := json.Unmarshal(data, &list); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", p, err)
			}
			all = append(all, list...)
			continue
		}
		all = append(all, json.RawMessage(data))
	}
	return json.Marshal(all)
}

// encode writes v as indented JSON, or as YAML keyed by the JSON field names.
func encode(w io.Writer, format string, v any) error {
	if w == nil {
		w = os.Stdout
	}
	if format == formatYAML {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		return yaml.NewEncoder(w).Encode(doc)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
