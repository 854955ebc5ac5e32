package queries

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/tidwall/gjson"
)

type Hit struct {
	Title   string
	Content string
	URI     string
	Score   float64
}

type QueryResult struct {
	Hits      []Hit
	TotalHits int64
	Took      int64
}

func Execute(ctx context.Context, esClient *elasticsearch.Client, kq KnowledgeQuery) (*QueryResult, error) {
	req, err := BuildQuery(kq)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	out := &QueryResult{
		Hits:      []Hit{},
		TotalHits: gjson.GetBytes(body, "hits.total.value").Int(),
		Took:      time.Since(start).Milliseconds(),
	}
	gjson.GetBytes(body, "hits.hits").ForEach(func(_, hit gjson.Result) bool {
		out.Hits = append(out.Hits, Hit{
			Title:   hit.Get("_source.title").String(),
			Content: hit.Get("_source.content").String(),
			URI:     hit.Get("_source.uri").String(),
			Score:   hit.Get("_score").Float(),
		})
		return true
	})
	return out, nil
}
