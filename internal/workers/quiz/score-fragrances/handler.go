// internal/workers/quiz/score-fragrances/handler.go
package scorefragrances

import (
	"context"
	"encoding/json"
	"time"

	"fragrance-finder/internal/catalog"
	"fragrance-finder/internal/common/errors"
	"fragrance-finder/internal/common/logger"
	"fragrance-finder/internal/common/metrics"
	"fragrance-finder/internal/matching"
	"fragrance-finder/internal/quiz"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-fragrances"
)

type Handler struct {
	config     *Config
	source     catalog.Source
	scorer     *matching.Scorer
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, source catalog.Source, scorer *matching.Scorer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		source:     source,
		scorer:     scorer,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, errors.NewInvalidInputError(err.Error()), start)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// execute never fails on catalog errors: an unreachable source is scored as
// an empty catalog and reported through the status.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	tags := quiz.MergeTags(input.Tags, input.Answers)

	items, available := h.fetchCatalog(ctx)

	outcome := h.scorer.ScoreDetailed(tags, items)

	status := string(outcome.Status)
	if !available && outcome.Status != matching.StatusNoGenderSelected {
		status = StatusSourceUnavailable
	}

	metrics.ScoringOutcomes.WithLabelValues(status).Inc()
	metrics.ScoringResults.Observe(float64(len(outcome.Results)))

	h.logger.Info("fragrances scored", map[string]interface{}{
		"tags":       len(tags),
		"gender":     outcome.Gender,
		"candidates": outcome.Candidates,
		"results":    len(outcome.Results),
		"status":     status,
	})

	return &Output{
		Results:          outcome.Results,
		Status:           status,
		Gender:           outcome.Gender,
		Candidates:       outcome.Candidates,
		CatalogAvailable: available,
		CatalogSource:    h.source.Name(),
	}, nil
}

func (h *Handler) fetchCatalog(ctx context.Context) ([]matching.CatalogItem, bool) {
	start := time.Now()
	items, err := h.source.FetchCatalog(ctx)
	metrics.CatalogFetchDuration.WithLabelValues(h.source.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CatalogFetches.WithLabelValues(h.source.Name(), "error").Inc()
		h.logger.Error("catalog fetch failed, scoring empty catalog", map[string]interface{}{
			"source": h.source.Name(),
			"error":  err,
		})
		return nil, false
	}

	metrics.CatalogFetches.WithLabelValues(h.source.Name(), "ok").Inc()
	metrics.CatalogSize.Set(float64(len(items)))
	return items, true
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	stdErr := errors.AsStandardError(err)
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
