package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
)

const (
	defaultSearchSize = 20
	maxSearchSize     = 100
)

// SearchInput describes one full-text company search.
type SearchInput struct {
	OrganizationID string
	Query          string
	From           int
	Size           int
}

// SearchHit is one matching company document with its relevance score.
type SearchHit struct {
	Document CompanyDocument
	Score    float64
}

// SearchResult carries the matched page and the total match count.
type SearchResult struct {
	Hits  []SearchHit
	Total int64
	Took  time.Duration
}

// Searcher runs full-text queries against the company index.
type Searcher struct {
	client *Client
	logger logging.Logger
}

// NewSearcher builds a Searcher over an established client.
func NewSearcher(client *Client, logger logging.Logger) *Searcher {
	return &Searcher{client: client, logger: logger}
}

// buildQuery produces the query DSL: free text across name, PAN and CIN,
// always constrained to the caller's organization.
func buildQuery(in SearchInput) map[string]interface{} {
	filters := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"organization_id": in.OrganizationID},
		},
	}

	boolQuery := map[string]interface{}{"filter": filters}
	if in.Query != "" {
		boolQuery["must"] = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  in.Query,
				"fields": []string{"company_name^2", "pan", "cin"},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"from":  in.From,
		"size":  in.Size,
	}
}

// Search runs the query and decodes the hits.
func (s *Searcher) Search(ctx context.Context, in SearchInput) (*SearchResult, error) {
	if in.OrganizationID == "" {
		return nil, errors.New(errors.ErrCodeOrganizationRequired, "organization id is required")
	}
	if in.Size <= 0 {
		in.Size = defaultSearchSize
	}
	if in.Size > maxSearchSize {
		in.Size = maxSearchSize
	}
	if in.From < 0 {
		in.From = 0
	}

	body, err := json.Marshal(buildQuery(in))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encoding search query")
	}

	req := opensearchapi.SearchRequest{
		Index: []string{s.client.CompanyIndex()},
		Body:  bytes.NewReader(body),
	}

	start := time.Now()
	resp, err := req.Do(ctx, s.client.API())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "search request failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, errors.New(errors.ErrCodeInternal, "search returned error status")
	}

	result, err := parseSearchResponse(resp.Body)
	if err != nil {
		return nil, err
	}
	result.Took = time.Since(start)

	s.logger.Debug("company search executed",
		logging.String("organization_id", in.OrganizationID),
		logging.Int64("total", result.Total))
	return result, nil
}

type rawSearchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Score  float64         `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func parseSearchResponse(body io.Reader) (*SearchResult, error) {
	var raw rawSearchResponse
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decoding search response")
	}

	result := &SearchResult{Total: raw.Hits.Total.Value}
	for _, h := range raw.Hits.Hits {
		var doc CompanyDocument
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decoding search hit")
		}
		result.Hits = append(result.Hits, SearchHit{Document: doc, Score: h.Score})
	}
	return result, nil
}
