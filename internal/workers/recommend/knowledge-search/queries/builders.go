// Package queries builds and runs the product knowledge search against
// Elasticsearch.
package queries

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrMissingIndex = errors.New("index name is required")
	ErrEmptyQuery   = errors.New("query text is required")
)

const (
	defaultSize = 3
	maxSize     = 10
)

// KnowledgeQuery is one free-text question against the knowledge index.
type KnowledgeQuery struct {
	Index string
	Text  string
	Size  int
}

// BuildQuery builds a multi_match search over title and content. Titles weigh
// more than body text.
func BuildQuery(kq KnowledgeQuery) (*esapi.SearchRequest, error) {
	if kq.Index == "" {
		return nil, ErrMissingIndex
	}
	if strings.TrimSpace(kq.Text) == "" {
		return nil, ErrEmptyQuery
	}

	size := kq.Size
	if size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}

	body, err := json.Marshal(buildKnowledgeQuery(kq.Text))
	if err != nil {
		return nil, err
	}

	return &esapi.SearchRequest{
		Index: []string{kq.Index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}, nil
}

func buildKnowledgeQuery(text string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"title^2", "content"},
				"type":   "best_fields",
			},
		},
		"_source": []string{"title", "content", "uri"},
	}
}
