// internal/workers/communication/newsletter-subscribe/handler.go
package newslettersubscribe

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fragrance-finder/internal/common/errors"
	"fragrance-finder/internal/common/logger"
	"fragrance-finder/internal/common/metrics"
	"fragrance-finder/internal/common/validation"
	"fragrance-finder/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	TaskType = "newsletter-subscribe"

	unknownCountry = "unknown"
)

// upsertSubscriber keeps one row per address. xmax is 0 only for a freshly
// inserted row, which tells a new subscriber from a returning one.
const upsertSubscriber = `
	INSERT INTO newsletter_subscribers (
		id, email, user_country, user_city, user_region,
		quiz_answers, tags, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	ON CONFLICT (email) DO UPDATE SET
		user_country = EXCLUDED.user_country,
		user_city    = EXCLUDED.user_city,
		user_region  = EXCLUDED.user_region,
		quiz_answers = COALESCE(EXCLUDED.quiz_answers, newsletter_subscribers.quiz_answers),
		tags         = COALESCE(EXCLUDED.tags, newsletter_subscribers.tags),
		updated_at   = EXCLUDED.updated_at
	RETURNING id, (xmax = 0) AS created`

type Handler struct {
	config     *Config
	db         *sql.DB
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
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
	email := validation.NormalizeEmail(input.Email)
	if email == "" {
		return nil, errors.NewValidationFailedError("email is required")
	}
	if !validation.ValidateEmail(email) {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("invalid email format: %q", input.Email))
	}

	geo := Geo{}
	if input.Geo != nil {
		geo = *input.Geo
	}
	country := strings.TrimSpace(geo.CountryName)
	if country == "" {
		country = unknownCountry
	}

	var tags []string
	if sanitized := matching.SanitizeTags(input.Tags); len(sanitized) > 0 {
		tags = sanitized
	}

	var (
		subscriberID string
		created      bool
	)
	err := h.db.QueryRowContext(ctx, upsertSubscriber,
		uuid.New().String(),
		email,
		country,
		nullable(geo.City),
		nullable(geo.Region),
		answersJSON(input.QuizAnswers),
		pq.Array(tags),
		time.Now().UTC(),
	).Scan(&subscriberID, &created)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	if created {
		metrics.LeadsCaptured.WithLabelValues("newsletter").Inc()
	}

	h.logger.Info("newsletter subscription stored", map[string]interface{}{
		"subscriberId": subscriberID,
		"created":      created,
		"country":      country,
		"tags":         len(tags),
	})

	return &Output{
		Success:      true,
		SubscriberID: subscriberID,
		Created:      created,
	}, nil
}

// answersJSON returns nil for absent or null answers so the column stays NULL.
func answersJSON(raw json.RawMessage) interface{} {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return []byte(trimmed)
}

func nullable(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
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
