package store

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"fundingos-workers/internal/common/errors"
	"fundingos-workers/internal/models"
)

const (
	defaultSearchSize = 20
	maxSearchSize     = 100
)

type Search struct {
	es    *elasticsearch.Client
	index string
}

func NewSearch(es *elasticsearch.Client, index string) *Search {
	if index == "" {
		index = "opportunities"
	}
	return &Search{es: es, index: index}
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchOpportunities runs a relevance query over title, description and
// focus fields. Categories boost matches but do not filter.
func (s *Search) SearchOpportunities(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	body, err := json.Marshal(buildSearchBody(q))
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(body)),
		s.es.Search.WithSize(clampSize(q.Size)),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewSearchTimeoutError(s.index)
		}
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, errors.NewIndexNotFoundError(s.index)
	}
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(s.index, stderrors.New(res.String()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewSearchQueryFailedError(s.index, err)
	}

	result := &SearchResult{TotalHits: r.Hits.Total.Value, Took: r.Took}
	for _, hit := range r.Hits.Hits {
		var opp models.Opportunity
		if err := json.Unmarshal(hit.Source, &opp); err != nil {
			continue
		}
		if opp.ID == "" {
			opp.ID = hit.ID
		}
		result.Opportunities = append(result.Opportunities, opp)
	}
	return result, nil
}

func clampSize(size int) int {
	switch {
	case size < 1:
		return defaultSearchSize
	case size > maxSearchSize:
		return maxSearchSize
	}
	return size
}

func buildSearchBody(q SearchQuery) map[string]interface{} {
	var should []interface{}
	if text := strings.TrimSpace(q.Text); text != "" {
		should = append(should, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"title^3", "description", "focusAreas^2", "projectTypes"},
			},
		})
	}
	for _, c := range q.Categories {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{
				"focusAreas": map[string]interface{}{"query": c, "boost": 2},
			},
		})
	}

	if len(should) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
			"sort":  []interface{}{map[string]interface{}{"deadline": map[string]interface{}{"order": "asc", "missing": "_last"}}},
		}
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
	}
}
