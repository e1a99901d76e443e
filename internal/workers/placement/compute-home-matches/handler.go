// internal/workers/placement/compute-home-matches/handler.go
package computehomematches

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
	"placement-workers/internal/matching"
	"placement-workers/internal/models"
	"placement-workers/internal/repository"
	"placement-workers/internal/search"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "compute-home-matches"

type Handler struct {
	config     *Config
	deps       Dependencies
	engine     *matching.Engine
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(cfg *Config, deps Dependencies, log logger.Logger) *Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     cfg,
		deps:       deps,
		engine:     matching.NewEngine(nil),
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
		now:        time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := h.now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.handleError(ctx, client, job, err, start)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.handleError(ctx, client, job, err, start)
		return
	}

	h.completeJob(ctx, client, job, output, start)
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

	return &Input{ReferralID: variables["referralId"].(string)}, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	referral, err := h.deps.Referrals.GetSnapshot(ctx, input.ReferralID)
	if err != nil {
		return nil, classify(input.ReferralID, "get_referral", err)
	}
	if err := referral.Validate(); err != nil {
		return nil, errors.NewReferralDataIncompleteError(input.ReferralID, err)
	}

	homes, err := h.deps.Homes.ListAll(ctx)
	if err != nil {
		return nil, classify(input.ReferralID, "list_homes", err)
	}

	threads, err := h.deps.Threads.IndexForReferral(ctx, input.ReferralID)
	if err != nil {
		return nil, classify(input.ReferralID, "list_threads", err)
	}

	matches := h.engine.ComputeMatches(*referral, homes, threads)

	output := &Output{
		ReferralID: input.ReferralID,
		Matches:    matches,
		TotalHomes: len(matches),
	}
	for _, m := range matches {
		if m.Eligible {
			output.EligibleCount++
		}
	}
	if output.EligibleCount > 0 {
		output.TopHomeID = matches[0].HomeID
	}

	if referral.DoLApplies() {
		h.warnUnknownRegistration(input.ReferralID, homes)
	}

	metrics.MatchesEligible.Observe(float64(output.EligibleCount))
	h.logger.Info("matches computed", map[string]interface{}{
		"referralId":    input.ReferralID,
		"totalHomes":    output.TotalHomes,
		"eligibleCount": output.EligibleCount,
		"topHomeId":     output.TopHomeID,
		"dolApplies":    referral.DoLApplies(),
	})

	h.recordEvent(ctx, output)
	h.indexResult(ctx, referral, output)

	return output, nil
}

// Execute runs the computation without a job client.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// classify maps repository errors to job errors. A corrupt home or thread row
// is not retryable and surfaces as INTERNAL_ERROR.
func classify(referralID, queryType string, err error) error {
	switch {
	case stderrors.Is(err, repository.ErrReferralNotFound):
		return errors.NewReferralNotFoundError(referralID)
	case stderrors.Is(err, repository.ErrCorruptRecord) && queryType == "get_referral":
		return errors.NewReferralDataIncompleteError(referralID, err)
	case stderrors.Is(err, repository.ErrCorruptRecord):
		return errors.Normalize(err)
	default:
		return errors.FromQueryError(queryType, err)
	}
}

// Under DoL an unknown registration produces no reason at all, so surface it
// in the logs for the coordinator.
func (h *Handler) warnUnknownRegistration(referralID string, homes []models.Home) {
	for _, home := range homes {
		if home.IsRegistered == nil {
			h.logger.Warn("home registration unknown for DoL referral", map[string]interface{}{
				"referralId": referralID,
				"homeId":     home.ID,
			})
		}
	}
}

func (h *Handler) recordEvent(ctx context.Context, output *Output) {
	if !h.config.RecordEvents || h.deps.Events == nil {
		return
	}

	eventID, err := h.deps.Events.Record(ctx, output.ReferralID, models.EventMatchesComputed, map[string]interface{}{
		"totalHomes":    output.TotalHomes,
		"eligibleCount": output.EligibleCount,
		"topHomeId":     output.TopHomeID,
	})
	if err != nil {
		h.logger.Warn("failed to record matches event", map[string]interface{}{
			"referralId": output.ReferralID,
			"error":      err,
		})
		return
	}
	h.logger.Debug("matches event recorded", map[string]interface{}{"eventId": eventID})
}

func (h *Handler) indexResult(ctx context.Context, referral *models.ReferralSnapshot, output *Output) {
	if h.deps.Indexer == nil {
		return
	}

	docID, err := h.deps.Indexer.Index(ctx, search.MatchDocument{
		ReferralID:    output.ReferralID,
		ComputedAt:    h.now().UTC(),
		TotalHomes:    output.TotalHomes,
		EligibleCount: output.EligibleCount,
		TopHomeID:     output.TopHomeID,
		DoLApplies:    referral.DoLApplies(),
		Matches:       output.Matches,
	})
	if err != nil {
		h.logger.Warn("failed to index matches", map[string]interface{}{
			"referralId": output.ReferralID,
			"index":      h.deps.Indexer.IndexName(),
			"error":      errors.NewSearchIndexFailedError(h.deps.Indexer.IndexName(), err).Details,
		})
		return
	}
	h.logger.Debug("matches indexed", map[string]interface{}{"documentId": docID})
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.handleError(ctx, client, job, err, start)
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "COMPLETE_FAILED").Inc()
		return
	}

	duration := time.Since(start)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(duration.Seconds())
	h.deps.Observability.RecordJob(ctx, TaskType, observability.StatusCompleted, duration)

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":      job.Key,
		"referralId":  output.ReferralID,
		"duration_ms": duration.Milliseconds(),
	})
}

func (h *Handler) handleError(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	stdErr := h.errHandler.HandleJobError(ctx, client, job, err)

	duration := time.Since(start)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(duration.Seconds())
	h.deps.Observability.RecordJob(ctx, TaskType, observability.StatusFailed, duration)
}
