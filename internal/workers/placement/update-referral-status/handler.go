// internal/workers/placement/update-referral-status/handler.go
package updatereferralstatus

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"placement-workers/internal/common/errors"
	"placement-workers/internal/common/logger"
	"placement-workers/internal/common/metrics"
	"placement-workers/internal/common/observability"
	"placement-workers/internal/common/validation"
	"placement-workers/internal/models"
	"placement-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "update-referral-status"

	defaultChangedBy = "system"
)

type Handler struct {
	config     *Config
	referrals  StatusUpdater
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(cfg *Config, referrals StatusUpdater, obs *observability.Observability, log logger.Logger) *Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     cfg,
		referrals:  referrals,
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

	input := &Input{
		ReferralID: variables["referralId"].(string),
		Status:     models.ReferralStatus(variables["status"].(string)),
		ChangedBy:  defaultChangedBy,
	}
	if changedBy, ok := variables["changedBy"].(string); ok && changedBy != "" {
		input.ChangedBy = changedBy
	}
	return input, nil
}

// Execute moves the referral to input.Status and records the change.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !input.Status.Valid() {
		return nil, errors.NewInvalidReferralStatusError(string(input.Status))
	}

	change, err := h.referrals.UpdateStatus(ctx, input.ReferralID, input.Status, input.ChangedBy)
	switch {
	case err == nil:
	case stderrors.Is(err, repository.ErrReferralNotFound):
		return nil, errors.NewReferralNotFoundError(input.ReferralID)
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, errors.NewQueryTimeoutError("update_referral_status")
	default:
		return nil, errors.NewDatabaseUpdateFailedError(err)
	}

	h.logger.Info("referral status changed", map[string]interface{}{
		"referralId": input.ReferralID,
		"from":       change.From,
		"to":         change.To,
		"changedBy":  input.ChangedBy,
		"eventId":    change.EventID,
	})

	return &Output{
		ReferralID:     input.ReferralID,
		PreviousStatus: change.From,
		Status:         change.To,
		EventID:        change.EventID,
	}, nil
}

func (h *Handler) handleError(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	stdErr := h.errHandler.HandleJobError(ctx, client, job, err)

	duration := time.Since(start)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(duration.Seconds())
	h.obs.RecordJob(ctx, TaskType, observability.StatusFailed, duration)
}
