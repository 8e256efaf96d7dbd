// internal/catalog/source.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fragrance-finder/internal/common/config"
	commonhttp "fragrance-finder/internal/common/http"
	"fragrance-finder/internal/common/logger"
	"fragrance-finder/internal/matching"

	"github.com/elastic/go-elasticsearch/v8"
)

// ErrSourceUnavailable wraps every fetch failure: network, auth, non-2xx,
// decode or missing configuration.
var ErrSourceUnavailable = errors.New("SOURCE_UNAVAILABLE")

// Source delivers the full candidate catalog. Implementations must be safe for
// concurrent use and must not cache between calls.
type Source interface {
	FetchCatalog(ctx context.Context) ([]matching.CatalogItem, error)
	Name() string
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]matching.CatalogItem, error)

func (f SourceFunc) FetchCatalog(ctx context.Context) ([]matching.CatalogItem, error) {
	return f(ctx)
}

func (f SourceFunc) Name() string { return "func" }

func unavailable(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSourceUnavailable, fmt.Sprintf(format, args...))
}

// Deps are the shared clients a source may need.
type Deps struct {
	HTTP          *commonhttp.Client
	Elasticsearch *elasticsearch.Client
	Logger        logger.Logger
}

// NewSource chooses the implementation named by cfg.Source.
func NewSource(cfg config.CatalogConfig, deps Deps) (Source, error) {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	switch cfg.Source {
	case "", config.CatalogSourceAirtable:
		client := deps.HTTP
		if client == nil {
			client = commonhttp.NewClient(config.GetDuration(cfg.Timeout))
		}
		return NewAirtableSource(cfg.Airtable, client, log), nil

	case config.CatalogSourceElasticsearch:
		if deps.Elasticsearch == nil {
			return nil, fmt.Errorf("elasticsearch catalog selected but no elasticsearch client configured")
		}
		return NewElasticsearchSource(cfg.Elasticsearch, deps.Elasticsearch, log), nil

	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// WithTimeout bounds every fetch of src by d.
func WithTimeout(src Source, d time.Duration) Source {
	if d <= 0 {
		return src
	}
	return &timeoutSource{Source: src, timeout: d}
}

type timeoutSource struct {
	Source
	timeout time.Duration
}

func (s *timeoutSource) FetchCatalog(ctx context.Context) ([]matching.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Source.FetchCatalog(ctx)
}
