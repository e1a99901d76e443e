// internal/workers/placement/update-home-profile/handler.go
package updatehomeprofile

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"placement-workers/internal/common/errors"
	"placement-workers/internal/common/logger"
	"placement-workers/internal/common/metrics"
	"placement-workers/internal/common/observability"
	"placement-workers/internal/common/validation"
	"placement-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "update-home-profile"

type Handler struct {
	config     *Config
	homes      ProfileUpdater
	cache      CacheInvalidator
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(cfg *Config, homes ProfileUpdater, cache CacheInvalidator, obs *observability.Observability, log logger.Logger) *Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     cfg,
		homes:      homes,
		cache:      cache,
		obs:        obs,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.handleError(ctx, client, job, err, start)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.handleError(ctx, client, job, err, start)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.handleError(ctx, client, job, err, start)
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err})
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "COMPLETE_FAILED").Inc()
		return
	}

	duration := time.Since(start)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(duration.Seconds())
	h.obs.RecordJob(ctx, TaskType, observability.StatusCompleted, duration)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var variables map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &variables); err != nil {
		return nil, errors.NewInputValidationFailedError("parse variables: " + err.Error())
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewInputValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInputValidationFailedError("decode input: " + err.Error())
	}

	if c := input.Constraints; c != nil && c.MinAge > c.MaxAge {
		return nil, errors.NewInputValidationFailedError(
			fmt.Sprintf("constraints.minAge %d is greater than maxAge %d", c.MinAge, c.MaxAge))
	}
	return &input, nil
}

// Execute writes the provided fields and drops the cached home pool.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	err := h.homes.UpdateProfile(ctx, input.HomeID, repository.HomeProfileUpdate{
		FreeBeds:     input.FreeBeds,
		Constraints:  input.Constraints,
		Capabilities: input.Capabilities,
	})
	switch {
	case err == nil:
	case stderrors.Is(err, repository.ErrHomeNotFound):
		return nil, errors.NewHomeNotFoundError(input.HomeID)
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, errors.NewQueryTimeoutError("update_home_profile")
	default:
		return nil, errors.NewDatabaseUpdateFailedError(err)
	}

	// A failed invalidation leaves the pool stale until the cache TTL expires.
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			h.logger.Warn("failed to invalidate homes cache", map[string]interface{}{
				"homeId": input.HomeID,
				"error":  err,
			})
		}
	}

	fields := map[string]interface{}{
		"homeId":              input.HomeID,
		"constraintsChanged":  input.Constraints != nil,
		"capabilitiesChanged": input.Capabilities != nil,
	}
	if input.FreeBeds != nil {
		fields["freeBeds"] = *input.FreeBeds
	}
	h.logger.Info("home profile updated", fields)

	return &Output{HomeID: input.HomeID, Updated: true}, nil
}

func (h *Handler) handleError(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	stdErr := h.errHandler.HandleJobError(ctx, client, job, err)

	duration := time.Since(start)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(duration.Seconds())
	h.obs.RecordJob(ctx, TaskType, observability.StatusFailed, duration)
}
