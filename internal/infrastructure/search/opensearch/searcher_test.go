package opensearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	osClient, err := opensearchgo.NewClient(opensearchgo.Config{Addresses: []string{serverURL}})
	require.NoError(t, err)
	return &Client{
		client:      osClient,
		indexPrefix: "credmatrix",
		logger:      logging.NewNopLogger(),
	}
}

func TestSearcherSearch(t *testing.T) {
	var capturedBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "_search") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &capturedBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"hits": {
				"total": {"value": 2},
				"hits": [
					{"_score": 2.1, "_source": {"id": "cmp-1", "organization_id": "org-1", "company_name": "Alpha Industries"}},
					{"_score": 1.4, "_source": {"id": "cmp-2", "organization_id": "org-1", "company_name": "Alpha Traders"}}
				]
			}
		}`))
	}))
	defer server.Close()

	searcher := NewSearcher(newTestClient(t, server.URL), logging.NewNopLogger())
	result, err := searcher.Search(context.Background(), SearchInput{
		OrganizationID: "org-1",
		Query:          "alpha",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.Total)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "cmp-1", result.Hits[0].Document.ID)
	assert.Equal(t, 2.1, result.Hits[0].Score)

	// The org filter must always be present in the query.
	raw, err := json.Marshal(capturedBody)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"organization_id":"org-1"`)
	assert.Contains(t, string(raw), "multi_match")
}

func TestSearcherSearchRequiresOrganization(t *testing.T) {
	searcher := NewSearcher(newTestClient(t, "http://localhost:1"), logging.NewNopLogger())
	_, err := searcher.Search(context.Background(), SearchInput{Query: "alpha"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeOrganizationRequired))
}

func TestSearcherSearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"search_phase_execution_exception"}}`))
	}))
	defer server.Close()

	searcher := NewSearcher(newTestClient(t, server.URL), logging.NewNopLogger())
	_, err := searcher.Search(context.Background(), SearchInput{OrganizationID: "org-1"})
	require.Error(t, err)
}

func TestBuildQuery(t *testing.T) {
	t.Run("empty query is filter only", func(t *testing.T) {
		dsl := buildQuery(SearchInput{OrganizationID: "org-1", Size: 10})
		raw, err := json.Marshal(dsl)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "multi_match")
		assert.Contains(t, string(raw), `"organization_id":"org-1"`)
	})

	t.Run("pagination is passed through", func(t *testing.T) {
		dsl := buildQuery(SearchInput{OrganizationID: "org-1", From: 40, Size: 20})
		assert.Equal(t, 40, dsl["from"])
		assert.Equal(t, 20, dsl["size"])
	})
}

func TestSearcherSizeClamping(t *testing.T) {
	var capturedBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &capturedBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":0},"hits":[]}}`))
	}))
	defer server.Close()

	searcher := NewSearcher(newTestClient(t, server.URL), logging.NewNopLogger())
	_, err := searcher.Search(context.Background(), SearchInput{
		OrganizationID: "org-1",
		Size:           10000,
		From:           -5,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(maxSearchSize), capturedBody["size"])
	assert.Equal(t, float64(0), capturedBody["from"])
}
