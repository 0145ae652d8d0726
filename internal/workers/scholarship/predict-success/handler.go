// internal/workers/scholarship/predict-success/handler.go
package predictsuccess

import (
	"context"
	"encoding/json"
	"time"

	"scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/common/metrics"
	"scholarship-engine/internal/common/observability"
	"scholarship-engine/internal/eligibility"
	"scholarship-engine/internal/matching"
	"scholarship-engine/internal/prediction"
	"scholarship-engine/internal/workers/scholarship/shared"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "predict-success"
)

type Handler struct {
	config       *Config
	resolver     *shared.Resolver
	weights      matching.WeightSource
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler creates the predict-success handler. A nil weight source scores
// every pair with the neutral fallback weights.
func NewHandler(config *Config, resolver *shared.Resolver, weights matching.WeightSource, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		resolver:     resolver,
		weights:      weights,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	student, err := h.resolver.Student(ctx, input.StudentID, input.StudentProfile)
	if err != nil {
		return nil, err
	}
	sch, err := h.resolver.Scholarship(ctx, input.ScholarshipID, input.Scholarship)
	if err != nil {
		return nil, err
	}

	ns := eligibility.Normalize(*student)
	elig := eligibility.EvaluateNormalized(ns, sch.Criteria)
	metrics.RecordEligibility(elig.Passed)

	weights := prediction.Fallback()
	if h.weights != nil {
		weights = h.weights.GetWeights(ctx, sch.ID)
	}

	opts := prediction.Options{Eligibility: &elig}
	if input.EvaluationTime != nil {
		opts.Now = *input.EvaluationTime
	}
	result := prediction.ScoreNormalized(ns, *sch, weights, opts)
	metrics.PredictionProbability.Observe(result.Probability)

	h.logger.Info("success predicted", map[string]interface{}{
		"studentId":     student.ID,
		"scholarshipId": sch.ID,
		"probability":   result.Probability,
		"modelSource":   string(result.ModelSource),
	})

	return &Output{
		StudentID:        student.ID,
		ScholarshipID:    sch.ID,
		IsEligible:       elig.Passed,
		EligibilityScore: elig.Score,
		Probability:      result.Probability,
		PercentageScore:  result.PercentageScore,
		Confidence:       result.Confidence,
		Recommendation:   result.Recommendation,
		TrainedModel:     result.TrainedModel,
		ModelSource:      result.ModelSource,
		ModelID:          result.ModelID,
		Factors:          result.Factors,
	}, nil
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
