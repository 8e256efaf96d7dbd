// internal/catalog/airtable.go
package catalog

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"fragrance-finder/internal/common/config"
	commonhttp "fragrance-finder/internal/common/http"
	"fragrance-finder/internal/common/logger"
	"fragrance-finder/internal/matching"
)

// maxAirtablePages stops a misbehaving offset cursor from looping forever.
const maxAirtablePages = 500

type airtableRecord struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

type airtablePage struct {
	Records []airtableRecord `json:"records"`
	Offset  string           `json:"offset"`
}

// AirtableSource reads the catalog table through the Airtable REST API.
type AirtableSource struct {
	cfg    config.AirtableConfig
	client *commonhttp.Client
	logger logger.Logger
}

func NewAirtableSource(cfg config.AirtableConfig, client *commonhttp.Client, log logger.Logger) *AirtableSource {
	return &AirtableSource{
		cfg:    cfg,
		client: client,
		logger: log.WithFields(map[string]interface{}{"catalogSource": config.CatalogSourceAirtable}),
	}
}

func (s *AirtableSource) Name() string { return config.CatalogSourceAirtable }

// FetchCatalog follows the offset cursor until every page has been read.
func (s *AirtableSource) FetchCatalog(ctx context.Context) ([]matching.CatalogItem, error) {
	if err := s.checkConfig(); err != nil {
		return nil, err
	}

	headers := map[string]string{"Authorization": "Bearer " + s.cfg.Token}
	items := make([]matching.CatalogItem, 0)
	offset := ""

	for page := 0; page < maxAirtablePages; page++ {
		var resp airtablePage
		if err := s.client.GetJSON(ctx, s.pageURL(offset), headers, &resp); err != nil {
			return nil, unavailable("airtable page %d: %v", page, err)
		}

		for _, rec := range resp.Records {
			items = append(items, DecodeRecord(rec.ID, rec.Fields))
		}

		if resp.Offset == "" {
			s.logger.Debug("catalog fetched", map[string]interface{}{
				"pages": page + 1,
				"items": len(items),
			})
			return items, nil
		}
		offset = resp.Offset
	}

	return nil, unavailable("airtable pagination did not finish after %d pages", maxAirtablePages)
}

func (s *AirtableSource) checkConfig() error {
	var missing []string
	if s.cfg.Token == "" {
		missing = append(missing, "AIRTABLE_PAT")
	}
	if s.cfg.BaseID == "" {
		missing = append(missing, "AIRTABLE_BASE_ID")
	}
	if s.cfg.Table == "" {
		missing = append(missing, "AIRTABLE_TABLE_NAME")
	}
	if len(missing) > 0 {
		return unavailable("%s not configured", strings.Join(missing, ", "))
	}
	return nil
}

func (s *AirtableSource) pageURL(offset string) string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	u := base + "/v0/" + url.PathEscape(s.cfg.BaseID) + "/" + url.PathEscape(s.cfg.Table)

	q := url.Values{}
	if s.cfg.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(s.cfg.PageSize))
	}
	if offset != "" {
		q.Set("offset", offset)
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}
