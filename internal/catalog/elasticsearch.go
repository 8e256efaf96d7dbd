// internal/catalog/elasticsearch.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fragrance-finder/internal/common/config"
	"fragrance-finder/internal/common/logger"
	"fragrance-finder/internal/matching"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string                 `json:"_id"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// ElasticsearchSource reads the catalog from a search index with match_all.
type ElasticsearchSource struct {
	cfg    config.CatalogElasticsearchConfig
	client *elasticsearch.Client
	logger logger.Logger
}

func NewElasticsearchSource(cfg config.CatalogElasticsearchConfig, client *elasticsearch.Client, log logger.Logger) *ElasticsearchSource {
	return &ElasticsearchSource{
		cfg:    cfg,
		client: client,
		logger: log.WithFields(map[string]interface{}{"catalogSource": config.CatalogSourceElasticsearch}),
	}
}

func (s *ElasticsearchSource) Name() string { return config.CatalogSourceElasticsearch }

func (s *ElasticsearchSource) FetchCatalog(ctx context.Context) ([]matching.CatalogItem, error) {
	size := s.cfg.Size
	if size <= 0 {
		size = 1000
	}
	body := fmt.Sprintf(`{"size":%d,"query":{"match_all":{}},"sort":["_doc"]}`, size)

	req := esapi.SearchRequest{
		Index: []string{s.cfg.Index},
		Body:  strings.NewReader(body),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, unavailable("elasticsearch search: %v", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, unavailable("elasticsearch search on %s: %s", s.cfg.Index, res.Status())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, unavailable("decode elasticsearch response: %v", err)
	}

	items := make([]matching.CatalogItem, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id := stringField(hit.Source, "id", "ID")
		if id == "" {
			id = hit.ID
		}
		items = append(items, DecodeRecord(id, hit.Source))
	}

	s.logger.Debug("catalog fetched", map[string]interface{}{
		"index": s.cfg.Index,
		"items": len(items),
	})
	return items, nil
}
