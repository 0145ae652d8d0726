// internal/workers/scholarship/match-scholarships/handler.go
package matchscholarships

import (
	"context"
	"encoding/json"
	"time"

	"scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/common/metrics"
	"scholarship-engine/internal/common/observability"
	"scholarship-engine/internal/matching"
	"scholarship-engine/internal/workers/scholarship/shared"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "match-scholarships"
)

type Handler struct {
	config       *Config
	resolver     *shared.Resolver
	matcher      *matching.Matcher
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, resolver *shared.Resolver, matcher *matching.Matcher, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		resolver:     resolver,
		matcher:      matcher,
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

// Execute matches one student against a batch of scholarships and returns the
// results ranked eligible first, then by prediction score.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	student, err := h.resolver.Student(ctx, input.StudentID, input.StudentProfile)
	if err != nil {
		return nil, err
	}
	scholarships, err := h.resolver.ResolveScholarships(ctx, input.ScholarshipIDs, input.Scholarships)
	if err != nil {
		return nil, err
	}

	opts := matching.Options{
		IncludeIneligible: h.config.IncludeIneligible,
		MaxParallel:       h.config.MaxParallel,
	}
	if input.IncludeIneligible != nil {
		opts.IncludeIneligible = *input.IncludeIneligible
	}
	if input.EvaluationTime != nil {
		opts.Now = *input.EvaluationTime
	}

	results, err := h.matcher.MatchStudentToScholarships(ctx, *student, scholarships, opts)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	eligible := 0
	for _, r := range results {
		metrics.RecordEligibility(r.IsEligible)
		if r.IsEligible {
			eligible++
		}
		if r.Prediction != nil {
			metrics.PredictionProbability.Observe(r.PredictionScore)
		}
	}
	h.obs.RecordMatches(ctx, TaskType, eligible, len(results)-eligible, time.Since(start))

	matching.Rank(results)
	if input.Limit > 0 && len(results) > input.Limit {
		results = results[:input.Limit]
	}

	output := &Output{
		BatchID:        uuid.NewString(),
		StudentID:      student.ID,
		Matches:        results,
		EligibleCount:  eligible,
		TotalEvaluated: len(scholarships),
	}

	h.logger.Info("scholarships matched", map[string]interface{}{
		"batchId":   output.BatchID,
		"studentId": output.StudentID,
		"evaluated": output.TotalEvaluated,
		"eligible":  output.EligibleCount,
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
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.obs.RecordJob(ctx, TaskType, "failed", time.Since(start))
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
}
