// internal/api/server.go
package api

import (
	"context"
	"net/http"
	"time"

	"fragrance-finder/internal/common/logger"
	"fragrance-finder/internal/common/observability"
	newslettersubscribe "fragrance-finder/internal/workers/communication/newsletter-subscribe"
	sendresultsemail "fragrance-finder/internal/workers/communication/send-results-email"
	insertquizresponse "fragrance-finder/internal/workers/quiz/insert-quiz-response"
	saveemail "fragrance-finder/internal/workers/quiz/save-email"
	scorefragrances "fragrance-finder/internal/workers/quiz/score-fragrances"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// The API calls the same Execute entry points as the job workers.
type (
	Scorer interface {
		Execute(ctx context.Context, input *scorefragrances.Input) (*scorefragrances.Output, error)
	}
	ResponseStore interface {
		Execute(ctx context.Context, input *insertquizresponse.Input) (*insertquizresponse.Output, error)
	}
	EmailSaver interface {
		Execute(ctx context.Context, input *saveemail.Input) (*saveemail.Output, error)
	}
	NewsletterSubscriber interface {
		Execute(ctx context.Context, input *newslettersubscribe.Input) (*newslettersubscribe.Output, error)
	}
	ResultsMailer interface {
		Execute(ctx context.Context, input *sendresultsemail.Input) (*sendresultsemail.Output, error)
	}
)

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Scorer        Scorer
	Responses     ResponseStore
	Emails        EmailSaver
	Newsletter    NewsletterSubscriber
	Mailer        ResultsMailer
	Checks        map[string]Pinger
	Observability *observability.Observability
	// MetricsHandler serves /metrics; promhttp.Handler() when nil.
	MetricsHandler http.Handler
	Logger         logger.Logger
}

type Server struct {
	deps   Deps
	logger logger.Logger
}

func NewServer(deps Deps) *Server {
	return &Server{
		deps:   deps,
		logger: deps.Logger.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.observe())

	router.GET("/health", s.health)
	router.GET("/ready", s.ready)

	metricsHandler := s.deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	router.GET("/metrics", gin.WrapH(metricsHandler))

	s.RegisterRoutes(router.Group("/api"))
	return router
}

func (s *Server) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/get-matching-fragrances", s.getMatchingFragrances)
	rg.POST("/insert-quiz-response", s.insertQuizResponse)
	rg.POST("/save-email", s.saveEmail)
	rg.POST("/newsletter-subscribe", s.newsletterSubscribe)
	rg.POST("/send-email", s.sendEmail)
}

// observe records request metrics and a span per request, and logs the outcome.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		if s.deps.Observability != nil {
			ctx, span := s.deps.Observability.StartSpan(c.Request.Context(), c.Request.Method+" "+route)
			defer span.End()
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()

		status := c.Writer.Status()
		duration := time.Since(start)
		if s.deps.Observability != nil {
			s.deps.Observability.RecordRequest(c.Request.Context(), route, status, duration)
		}

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"route":      route,
			"status":     status,
			"durationMs": duration.Milliseconds(),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error("request failed", fields)
		} else {
			s.logger.Debug("request handled", fields)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true
	for name, p := range s.deps.Checks {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
