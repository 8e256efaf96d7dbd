// internal/workers/quiz/save-email/handler.go
package saveemail

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fragrance-finder/internal/common/aws"
	"fragrance-finder/internal/common/errors"
	"fragrance-finder/internal/common/logger"
	"fragrance-finder/internal/common/metrics"
	"fragrance-finder/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "save-email"
)

type Handler struct {
	config     *Config
	db         *sql.DB
	sns        aws.SNSAPI
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

// NewHandler builds the worker. sns may be nil when lead notifications are off.
func NewHandler(config *Config, db *sql.DB, sns aws.SNSAPI, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		sns:        sns,
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
	if err := h.validateInput(input); err != nil {
		return nil, err
	}

	responseID := strings.TrimSpace(input.QuizResponseID)
	email := validation.NormalizeEmail(input.Email)

	result, err := h.db.ExecContext(ctx, `
		UPDATE quiz_responses
		SET email = $1, agreed_to_lead_terms = $2, updated_at = $3
		WHERE id = $4`,
		email,
		input.AgreedToLeadTerms,
		time.Now().UTC(),
		responseID,
	)
	if err != nil {
		return nil, errors.NewDatabaseUpdateFailedError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, errors.NewDatabaseUpdateFailedError(err)
	}
	if rows == 0 {
		return nil, errors.NewResponseNotFoundError(responseID)
	}

	metrics.LeadsCaptured.WithLabelValues("quiz").Inc()
	h.logger.Info("email attached to quiz response", map[string]interface{}{
		"quizResponseId":    responseID,
		"agreedToLeadTerms": input.AgreedToLeadTerms,
	})

	notified := false
	if input.AgreedToLeadTerms {
		notified = h.notifyLead(ctx, responseID, email)
	}

	return &Output{
		Success:        true,
		QuizResponseID: responseID,
		LeadNotified:   notified,
	}, nil
}

func (h *Handler) validateInput(input *Input) error {
	var problems []string

	if strings.TrimSpace(input.QuizResponseID) == "" {
		problems = append(problems, "quizResponseId is required")
	} else if _, err := uuid.Parse(strings.TrimSpace(input.QuizResponseID)); err != nil {
		problems = append(problems, "quizResponseId must be a UUID")
	}

	email := validation.NormalizeEmail(input.Email)
	if email == "" {
		problems = append(problems, "email is required")
	} else if !validation.ValidateEmail(email) {
		problems = append(problems, fmt.Sprintf("invalid email format: %q", input.Email))
	}

	if len(problems) > 0 {
		return errors.NewValidationFailedError(strings.Join(problems, "; "))
	}
	return nil
}

// notifyLead publishes a lead.captured event. A publish failure never fails
// the job because the email is already stored.
func (h *Handler) notifyLead(ctx context.Context, responseID, email string) bool {
	if !h.config.NotifyLeads || h.sns == nil {
		return false
	}

	event := LeadEvent{
		QuizResponseID: responseID,
		Email:          email,
		CapturedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	messageID, err := aws.PublishEvent(ctx, h.sns, h.config.LeadTopicARN, LeadCapturedEvent, event)
	if err != nil {
		stdErr := errors.NewNotificationPublishFailedError(h.config.LeadTopicARN, err)
		h.logger.Warn("lead notification failed", map[string]interface{}{
			"quizResponseId": responseID,
			"errorCode":      stdErr.Code,
			"error":          err,
		})
		return false
	}

	h.logger.Info("lead notification published", map[string]interface{}{
		"quizResponseId": responseID,
		"messageId":      messageID,
	})
	return true
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
