package knowledgesearch

import (
	"context"
	"fmt"
	"strings"

	"pos-onboarding-workers/internal/common/discovery"
	"pos-onboarding-workers/internal/common/observability"
	"pos-onboarding-workers/internal/workers/recommend/knowledge-search/queries"

	"github.com/elastic/go-elasticsearch/v8"
)

// Backend answers a product question. Missing names the first setting the
// backend needs but lacks, or "".
type Backend interface {
	Name() string
	Missing() string
	Answer(ctx context.Context, query string) (*discovery.Answer, error)
}

// DiscoveryBackend answers through the hosted Discovery Engine answer API.
type DiscoveryBackend struct {
	*discovery.Client
}

func NewDiscoveryBackend(client *discovery.Client) *DiscoveryBackend {
	return &DiscoveryBackend{Client: client}
}

func (b *DiscoveryBackend) Name() string {
	return "discovery"
}

// ElasticsearchBackend builds an answer from the best matching documents in
// the product knowledge index.
type ElasticsearchBackend struct {
	client     *elasticsearch.Client
	index      string
	maxResults int
	obs        *observability.Observability
}

func NewElasticsearchBackend(client *elasticsearch.Client, index string, maxResults int, obs *observability.Observability) *ElasticsearchBackend {
	return &ElasticsearchBackend{client: client, index: index, maxResults: maxResults, obs: obs}
}

func (b *ElasticsearchBackend) Name() string {
	return "elasticsearch"
}

func (b *ElasticsearchBackend) Missing() string {
	switch {
	case b.client == nil:
		return "elasticsearch client"
	case b.index == "":
		return "index"
	}
	return ""
}

func (b *ElasticsearchBackend) Answer(ctx context.Context, query string) (*discovery.Answer, error) {
	var result *queries.QueryResult
	err := b.obs.TrackCall(ctx, "elasticsearch", "knowledge_search", func(ctx context.Context) error {
		var err error
		result, err = queries.Execute(ctx, b.client, queries.KnowledgeQuery{
			Index: b.index,
			Text:  query,
			Size:  b.maxResults,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge index search: %w", err)
	}

	answer := &discovery.Answer{References: []discovery.Reference{}, Attachments: []discovery.Attachment{}}
	var lines []string
	for _, hit := range result.Hits {
		lines = append(lines, fmt.Sprintf("- %s: %s", hit.Title, summarize(hit.Content)))
		answer.References = append(answer.References, discovery.Reference{
			URI:   discovery.PublicURI(hit.URI),
			Title: hit.Title,
		})
	}
	answer.Text = strings.Join(lines, "\n")
	return answer, nil
}

const summaryLimit = 300

// summarize keeps the first paragraph of a document, cut at summaryLimit runes.
func summarize(content string) string {
	content = strings.TrimSpace(content)
	if i := strings.Index(content, "\n\n"); i > 0 {
		content = content[:i]
	}
	content = strings.Join(strings.Fields(content), " ")
	if r := []rune(content); len(r) > summaryLimit {
		return string(r[:summaryLimit]) + "..."
	}
	return content
}
