// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"fragrance-finder/internal/common/config"
	"fragrance-finder/internal/common/logger"
	"fragrance-finder/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every worker package's Handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// JobHandlerFunc adapts a function to JobHandler.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

func (f JobHandlerFunc) Handle(client worker.JobClient, job entities.Job) {
	f(client, job)
}

// Observed wraps handler with a job span and the otel job metrics.
// A nil obs returns handler unchanged.
func Observed(obs *observability.Observability, taskType string, handler JobHandler) JobHandler {
	if obs == nil {
		return handler
	}
	return JobHandlerFunc(func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		ctx, span := obs.StartSpan(context.Background(), "job "+taskType)
		defer span.End()

		handler.Handle(client, job)
		obs.RecordJob(ctx, taskType, "handled", time.Since(start))
	})
}

// Workers owns the opened job workers so they can be closed together.
type Workers struct {
	client  zbc.Client
	obs     *observability.Observability
	logger  logger.Logger
	workers map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, obs *observability.Observability, log logger.Logger) *Workers {
	return &Workers{
		client:  client,
		obs:     obs,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for taskType unless it is disabled in cfg.
func (w *Workers) Start(cfg *config.Config, taskType string, handler JobHandler) bool {
	if !config.IsWorkerEnabled(cfg, taskType) {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	wc := config.GetWorkerConfig(cfg, taskType)
	jobWorker := w.client.NewJobWorker().
		JobType(taskType).
		Handler(Observed(w.obs, taskType, handler).Handle).
		MaxJobsActive(wc.MaxJobsActive).
		Timeout(config.GetDuration(wc.Timeout)).
		PollInterval(time.Second).
		Name(cfg.App.Name + "-" + taskType).
		Open()

	w.workers[taskType] = jobWorker
	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wc.MaxJobsActive,
		"timeoutMs":     wc.Timeout,
	})
	return true
}

// TaskTypes lists the started workers.
func (w *Workers) TaskTypes() []string {
	out := make([]string, 0, len(w.workers))
	for t := range w.workers {
		out = append(out, t)
	}
	return out
}

// Close stops every worker, waiting for in-flight jobs.
func (w *Workers) Close() {
	for taskType, jw := range w.workers {
		jw.Close()
		jw.AwaitClose()
		w.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
	}
}
