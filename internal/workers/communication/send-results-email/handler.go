// internal/workers/communication/send-results-email/handler.go
package sendresultsemail

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fragrance-finder/internal/common/aws"
	"fragrance-finder/internal/common/errors"
	"fragrance-finder/internal/common/logger"
	"fragrance-finder/internal/common/metrics"
	"fragrance-finder/internal/common/validation"
	"fragrance-finder/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "send-results-email"
)

type Handler struct {
	config     *Config
	ses        aws.SESAPI
	guard      *SendGuard
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

// NewHandler builds the worker. guard may be nil, in which case duplicate
// sends are not suppressed.
func NewHandler(config *Config, ses aws.SESAPI, guard *SendGuard, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		ses:        ses,
		guard:      guard,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	to := validation.NormalizeEmail(input.To)
	tags := matching.SanitizeTags(input.Tags)

	fragrances := input.Fragrances
	if len(fragrances) > h.config.TopResults {
		fragrances = fragrances[:h.config.TopResults]
	}

	if !h.config.Enabled || h.ses == nil {
		h.logger.Warn("email delivery disabled, results email not sent", map[string]interface{}{
			"fragrances": len(fragrances),
		})
		metrics.EmailsSent.WithLabelValues(StatusDisabled).Inc()
		return &Output{Success: false, Status: StatusDisabled, Included: len(fragrances)}, nil
	}

	claimed := h.claim(ctx, to, tags)
	if !claimed {
		metrics.EmailsSent.WithLabelValues(StatusDuplicate).Inc()
		h.logger.Info("results email already sent recently", map[string]interface{}{
			"ttl": h.config.DedupeTTL.String(),
		})
		return nil, errors.NewEmailAlreadySentError(to).WithMetadata("status", StatusDuplicate)
	}

	heading := subject(h.config.TopResults)
	htmlBody, textBody, err := render(buildEmailData(heading, fragrances, tags, time.Now()))
	if err != nil {
		h.release(ctx, to, tags)
		return nil, errors.NewInternalError(err)
	}

	messageID, err := aws.Send(ctx, h.ses, aws.Email{
		FromName:  h.config.FromName,
		FromEmail: h.config.FromEmail,
		To:        to,
		Subject:   heading,
		HTMLBody:  htmlBody,
		TextBody:  textBody,
	})
	if err != nil {
		h.release(ctx, to, tags)
		metrics.EmailsSent.WithLabelValues("error").Inc()
		return nil, errors.NewEmailSendFailedError(err)
	}

	metrics.EmailsSent.WithLabelValues(StatusSent).Inc()
	h.logger.Info("results email sent", map[string]interface{}{
		"messageId":  messageID,
		"fragrances": len(fragrances),
		"tags":       len(tags),
	})

	return &Output{
		Success:   true,
		Status:    StatusSent,
		MessageID: messageID,
		Included:  len(fragrances),
	}, nil
}

func validateInput(input *Input) error {
	var problems []string

	to := validation.NormalizeEmail(input.To)
	switch {
	case to == "":
		problems = append(problems, "to is required")
	case !validation.ValidateEmail(to):
		problems = append(problems, fmt.Sprintf("invalid email format: %q", input.To))
	}
	if len(input.Fragrances) == 0 {
		problems = append(problems, "fragrances is required")
	}
	if input.Tags == nil {
		problems = append(problems, "tags is required")
	}

	if len(problems) > 0 {
		return errors.NewValidationFailedError(strings.Join(problems, "; "))
	}
	return nil
}

// claim reports whether this send may proceed. A guard error lets it through.
func (h *Handler) claim(ctx context.Context, to string, tags []string) bool {
	if h.guard == nil {
		return true
	}
	ok, err := h.guard.Acquire(ctx, to, tags)
	if err != nil {
		h.logger.Warn("send guard unavailable, sending without dedupe", map[string]interface{}{
			"error": err,
		})
		return true
	}
	return ok
}

func (h *Handler) release(ctx context.Context, to string, tags []string) {
	if h.guard == nil {
		return
	}
	if err := h.guard.Release(ctx, to, tags); err != nil {
		h.logger.Warn("failed to release send guard", map[string]interface{}{
			"error": err,
		})
	}
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
