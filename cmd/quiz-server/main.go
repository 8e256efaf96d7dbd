// cmd/quiz-server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fragrance-finder/internal/api"
	"fragrance-finder/internal/catalog"
	"fragrance-finder/internal/common/aws"
	"fragrance-finder/internal/common/camunda"
	"fragrance-finder/internal/common/config"
	"fragrance-finder/internal/common/database"
	commonhttp "fragrance-finder/internal/common/http"
	"fragrance-finder/internal/common/logger"
	"fragrance-finder/internal/common/observability"
	"fragrance-finder/internal/matching"

	nls "fragrance-finder/internal/workers/communication/newsletter-subscribe"
	sre "fragrance-finder/internal/workers/communication/send-results-email"
	iqr "fragrance-finder/internal/workers/quiz/insert-quiz-response"
	se "fragrance-finder/internal/workers/quiz/save-email"
	sf "fragrance-finder/internal/workers/quiz/score-fragrances"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting quiz server",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("catalogSource", cfg.Catalog.Source),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- PostgreSQL ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres setup failed", zap.Error(err))
	}
	defer pg.Close()

	if err := waitForStore(ctx, pg, camunda.DefaultRetryConfig, "postgres connection"); err != nil {
		zapLog.Fatal("postgres unavailable", zap.Error(err))
	}

	if err := database.EnsureSchema(ctx, pg.DB); err != nil {
		zapLog.Fatal("schema setup failed", zap.Error(err))
	}
	zapLog.Info("postgres connected")

	// --- Redis (send guard only; the server runs without it) ---
	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		zapLog.Warn("redis unreachable, duplicate email suppression degraded", zap.Error(err))
	}

	checks := map[string]api.Pinger{
		"postgres": pg,
		"redis":    rdb,
	}

	// --- Elasticsearch (optional catalog source) ---
	var esClient *elasticsearch.Client
	if cfg.Database.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch client failed", zap.Error(err))
		}
		esClient = es.Client
		checks["elasticsearch"] = es
	}

	// --- Catalog + scorer ---
	catalogTimeout := config.GetDuration(cfg.Catalog.Timeout)
	source, err := catalog.NewSource(cfg.Catalog, catalog.Deps{
		HTTP:          commonhttp.NewClient(catalogTimeout),
		Elasticsearch: esClient,
		Logger:        log,
	})
	if err != nil {
		zapLog.Fatal("catalog source setup failed", zap.Error(err))
	}
	source = catalog.WithTimeout(source, catalogTimeout)
	scorer := matching.NewScorer(matching.DefaultTables().WithResultCap(cfg.Scoring.ResultCap))

	// --- AWS delivery ---
	var (
		sesAPI aws.SESAPI
		snsAPI aws.SNSAPI
	)
	awsSection := cfg.Integrations.AWS
	if awsSection.SES.Enabled || awsSection.SNS.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, awsSection.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		if awsSection.SES.Enabled {
			sesAPI = aws.NewSESClient(awsCfg)
		}
		if awsSection.SNS.Enabled {
			snsAPI = aws.NewSNSClient(awsCfg)
		}
	}

	// --- Handlers ---
	sendCfg := sre.LoadConfig(cfg)
	scoreHandler := sf.NewHandler(sf.LoadConfig(cfg), source, scorer, log)
	insertHandler := iqr.NewHandler(iqr.LoadConfig(cfg), pg.DB, log)
	saveEmailHandler := se.NewHandler(se.LoadConfig(cfg), pg.DB, snsAPI, log)
	newsletterHandler := nls.NewHandler(nls.LoadConfig(cfg), pg.DB, log)
	sendHandler := sre.NewHandler(sendCfg, sesAPI, sre.NewSendGuard(rdb.Client, sendCfg.DedupeTTL), log)

	// --- Zeebe workers ---
	var workers *camunda.Workers
	if cfg.Camunda.Enabled {
		var zeebeClient zbc.Client
		err = camunda.RetryWithBackoff(ctx, camunda.DefaultRetryConfig, "zeebe connection", func() error {
			var err error
			zeebeClient, err = camunda.NewClient(ctx, cfg.Camunda)
			return err
		})
		if err != nil {
			zapLog.Fatal("zeebe unavailable", zap.Error(err))
		}
		defer zeebeClient.Close()

		workers = camunda.NewWorkers(zeebeClient, obs, log)
		workers.Start(cfg, sf.TaskType, scoreHandler)
		workers.Start(cfg, iqr.TaskType, insertHandler)
		workers.Start(cfg, se.TaskType, saveEmailHandler)
		workers.Start(cfg, nls.TaskType, newsletterHandler)
		workers.Start(cfg, sre.TaskType, sendHandler)
		zapLog.Info("zeebe workers started", zap.Strings("taskTypes", workers.TaskTypes()))
	}

	// --- HTTP API ---
	gin.SetMode(cfg.Server.Mode)
	server := api.NewServer(api.Deps{
		Scorer:        scoreHandler,
		Responses:     insertHandler,
		Emails:        saveEmailHandler,
		Newsletter:    newsletterHandler,
		Mailer:        sendHandler,
		Checks:        checks,
		Observability: obs,
		Logger:        log,
	})

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		zapLog.Info("http server listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- Graceful shutdown ---
	select {
	case <-ctx.Done():
		zapLog.Info("shutdown signal received")
	case err := <-errCh:
		zapLog.Error("http server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}
	if workers != nil {
		workers.Close()
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown failed", zap.Error(err))
	}
	zapLog.Info("quiz server stopped")
}

// waitForStore retries the first round trip on an already opened pool.
func waitForStore(ctx context.Context, store api.Pinger, rc camunda.RetryConfig, operation string) error {
	return camunda.RetryWithBackoff(ctx, rc, operation, func() error {
		return store.Ping(ctx)
	})
}
