// internal/catalog/source_test.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fragrance-finder/internal/common/config"
	commonhttp "fragrance-finder/internal/common/http"
	"fragrance-finder/internal/common/logger"
	"fragrance-finder/internal/matching"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func airtableConfig(baseURL string) config.AirtableConfig {
	return config.AirtableConfig{
		BaseURL:  baseURL,
		Token:    "pat-test",
		BaseID:   "appBase",
		Table:    "Fragrances",
		PageSize: 2,
	}
}

func newAirtable(t *testing.T, baseURL string) *AirtableSource {
	return NewAirtableSource(airtableConfig(baseURL), commonhttp.NewClient(2*time.Second), logger.NewTestLogger(t))
}

func setupElasticsearch(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

// ==========================
// Airtable Tests
// ==========================

func TestAirtableSource_FetchCatalog_FollowsOffset(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v0/appBase/Fragrances", r.URL.Path)
		assert.Equal(t, "Bearer pat-test", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("pageSize"))

		switch r.URL.Query().Get("offset") {
		case "":
			_, _ = io.WriteString(w, `{"records":[
				{"id":"rec1","fields":{"Title":"One","Tags":["for-men"],"frag_number":1}},
				{"id":"rec2","fields":{"Title":"Two","Tags":["for-women"],"frag_number":2}}
			],"offset":"itr1"}`)
		case "itr1":
			_, _ = io.WriteString(w, `{"records":[{"id":"rec3","fields":{"Title":"Three","Tags":"for-unisex"}}]}`)
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	}))
	defer srv.Close()

	items, err := newAirtable(t, srv.URL).FetchCatalog(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "rec1", items[0].ID)
	assert.Equal(t, 2, items[1].SequenceNumber)
	assert.Equal(t, []string{"for-unisex"}, items[2].Tags)
	assert.Equal(t, matching.DefaultImage, items[2].ImageRef)
}

func TestAirtableSource_FetchCatalog_EmptyTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"records":[]}`)
	}))
	defer srv.Close()

	items, err := newAirtable(t, srv.URL).FetchCatalog(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestAirtableSource_FetchCatalog_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"AUTHENTICATION_REQUIRED"}`, http.StatusUnauthorized)
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"records": [`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			items, err := newAirtable(t, srv.URL).FetchCatalog(context.Background())

			assert.Nil(t, items)
			assert.True(t, errors.Is(err, ErrSourceUnavailable), "got %v", err)
		})
	}
}

func TestAirtableSource_FetchCatalog_MissingConfig(t *testing.T) {
	cfg := airtableConfig("http://unused.invalid")
	cfg.Token = ""
	cfg.Table = ""
	src := NewAirtableSource(cfg, commonhttp.NewClient(time.Second), logger.NewNoOpLogger())

	_, err := src.FetchCatalog(context.Background())

	require.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "AIRTABLE_PAT")
	assert.Contains(t, err.Error(), "AIRTABLE_TABLE_NAME")
	assert.NotContains(t, err.Error(), "AIRTABLE_BASE_ID")
}

func TestAirtableSource_FetchCatalog_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newAirtable(t, url).FetchCatalog(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestAirtableSource_PageURL(t *testing.T) {
	src := NewAirtableSource(config.AirtableConfig{BaseURL: "https://api.airtable.com/", BaseID: "app1", Table: "My Table"}, nil, logger.NewNoOpLogger())

	assert.Equal(t, "https://api.airtable.com/v0/app1/My%20Table", src.pageURL(""))
	assert.Equal(t, "https://api.airtable.com/v0/app1/My%20Table?offset=abc", src.pageURL("abc"))
}

// ==========================
// Elasticsearch Tests
// ==========================

func TestElasticsearchSource_FetchCatalog(t *testing.T) {
	client := setupElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fragrances/_search", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(50), body["size"])
		assert.Contains(t, body["query"], "match_all")

		_, _ = io.WriteString(w, `{"hits":{"total":{"value":2},"hits":[
			{"_id":"doc-1","_source":{"Title":"Oud Wood","Tags":["for-unisex","woody-earthy"],"Image":"https://img/oud.png"}},
			{"_id":"doc-2","_source":{"id":"rec-9","Title":"Rose","Tags":["for-women"],"rating1":7}}
		]}}`)
	})

	src := NewElasticsearchSource(config.CatalogElasticsearchConfig{Index: "fragrances", Size: 50}, client, logger.NewTestLogger(t))
	items, err := src.FetchCatalog(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "doc-1", items[0].ID)
	assert.Equal(t, "https://img/oud.png", items[0].ImageRef)
	assert.Equal(t, "rec-9", items[1].ID)
	assert.Equal(t, 7.0, items[1].SubRatings.Longevity)
}

func TestElasticsearchSource_FetchCatalog_IndexMissing(t *testing.T) {
	client := setupElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"index_not_found_exception"},"status":404}`)
	})

	src := NewElasticsearchSource(config.CatalogElasticsearchConfig{Index: "missing"}, client, logger.NewNoOpLogger())
	_, err := src.FetchCatalog(context.Background())

	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

// ==========================
// Factory Tests
// ==========================

func TestNewSource(t *testing.T) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{"http://localhost:9200"}})
	require.NoError(t, err)

	src, err := NewSource(config.CatalogConfig{Source: config.CatalogSourceAirtable, Timeout: 1000}, Deps{})
	require.NoError(t, err)
	assert.Equal(t, "airtable", src.Name())

	src, err = NewSource(config.CatalogConfig{Source: config.CatalogSourceElasticsearch}, Deps{Elasticsearch: es})
	require.NoError(t, err)
	assert.Equal(t, "elasticsearch", src.Name())

	_, err = NewSource(config.CatalogConfig{Source: config.CatalogSourceElasticsearch}, Deps{})
	assert.Error(t, err)

	_, err = NewSource(config.CatalogConfig{Source: "sheets"}, Deps{})
	assert.Error(t, err)
}

func TestWithTimeout(t *testing.T) {
	slow := SourceFunc(func(ctx context.Context) ([]matching.CatalogItem, error) {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, ctx.Err())
		case <-time.After(time.Second):
			return []matching.CatalogItem{{ID: "late"}}, nil
		}
	})

	_, err := WithTimeout(slow, 10*time.Millisecond).FetchCatalog(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	_, wrapped := WithTimeout(slow, 0).(*timeoutSource)
	assert.False(t, wrapped)
}
