// internal/workers/quiz/insert-quiz-response/handler.go
package insertquizresponse

import (
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
	"fragrance-finder/internal/quiz"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	TaskType = "insert-quiz-response"

	unknownCountry = "unknown"
)

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
	if email != "" && !validation.ValidateEmail(email) {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("invalid email format: %q", input.Email))
	}

	tags := quiz.MergeTags(input.Tags, &input.Answers)
	topIDs := topFragranceIDs(input.TopFragranceIDs)

	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = unknownCountry
	}

	responseID := uuid.New().String()
	createdAt := time.Now().UTC()

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO quiz_responses (
			id, gender, age_group, usage, scent_profile, intensity,
			seasonality, avoidance, longevity, budget, brand_type,
			top_fragrance_ids, tags, user_country, user_city, user_region,
			email, agreed_to_lead_terms, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)`,
		responseID,
		nullable(input.Gender.First()),
		nullable(input.AgeGroup.First()),
		pq.Array([]string(input.Usage)),
		pq.Array([]string(input.ScentProfile)),
		nullable(input.Intensity.First()),
		pq.Array([]string(input.Seasonality)),
		pq.Array([]string(input.Avoidance)),
		nullable(input.Longevity.First()),
		nullable(input.Budget.First()),
		nullable(input.BrandType.First()),
		pq.Array(topIDs),
		pq.Array(tags),
		country,
		nullable(input.City),
		nullable(input.Region),
		nullable(email),
		input.AgreedToLeadTerms,
		createdAt,
	)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	if email != "" {
		metrics.LeadsCaptured.WithLabelValues("quiz").Inc()
	}

	h.logger.Info("quiz response stored", map[string]interface{}{
		"responseId":   responseID,
		"tags":         len(tags),
		"topFragrance": len(topIDs),
		"country":      country,
		"hasEmail":     email != "",
	})

	return &Output{
		ResponseID: responseID,
		Tags:       tags,
		CreatedAt:  createdAt.Format(time.RFC3339),
	}, nil
}

func topFragranceIDs(ids []int) []int64 {
	if len(ids) > MaxTopFragrances {
		ids = ids[:MaxTopFragrances]
	}
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

// nullable stores blank strings as NULL.
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
		return
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":     job.Key,
		"responseId": output.ResponseID,
	})
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
