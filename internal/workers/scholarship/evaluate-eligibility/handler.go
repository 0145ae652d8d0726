// internal/workers/scholarship/evaluate-eligibility/handler.go
package evaluateeligibility

import (
	"context"
	"encoding/json"
	"time"

	"scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/common/metrics"
	"scholarship-engine/internal/common/observability"
	"scholarship-engine/internal/eligibility"
	"scholarship-engine/internal/workers/scholarship/shared"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "evaluate-eligibility"
)

type Handler struct {
	config       *Config
	resolver     *shared.Resolver
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, resolver *shared.Resolver, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		resolver:     resolver,
		obs:          obs,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewParseError(err), start)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err, start)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJob(ctx, TaskType, "completed", time.Since(start))
}

// Execute resolves the student and scholarship and evaluates eligibility.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	student, err := h.resolver.Student(ctx, input.StudentID, input.StudentProfile)
	if err != nil {
		return nil, err
	}
	sch, err := h.resolver.Scholarship(ctx, input.ScholarshipID, input.Scholarship)
	if err != nil {
		return nil, err
	}

	output := &Output{
		StudentID:      student.ID,
		ScholarshipID:  sch.ID,
		FailedCriteria: []string{},
	}

	if input.QuickCheck {
		output.IsEligible = eligibility.QuickCheck(*student, sch.Criteria)
	} else {
		result := eligibility.Evaluate(*student, sch.Criteria)
		output.IsEligible = result.Passed
		output.EligibilityScore = result.Score
		output.Summary = result.Summary
		output.Conditions = result.Conditions
		for _, c := range result.FailedRequired {
			output.FailedCriteria = append(output.FailedCriteria, c.Description)
		}
	}

	metrics.RecordEligibility(output.IsEligible)
	eligible, ineligible := 0, 1
	if output.IsEligible {
		eligible, ineligible = 1, 0
	}
	h.obs.RecordMatches(ctx, TaskType, eligible, ineligible, time.Since(start))

	h.logger.Info("eligibility evaluated", map[string]interface{}{
		"studentId":     output.StudentID,
		"scholarshipId": output.ScholarshipID,
		"eligible":      output.IsEligible,
		"score":         output.EligibilityScore,
	})

	return output, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	code := errors.Normalize(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.obs.RecordJob(ctx, TaskType, "failed", time.Since(start))
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
}
