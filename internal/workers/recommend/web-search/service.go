package websearch

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	apperrors "pos-onboarding-workers/internal/common/errors"
	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/logger"
)

var whitespace = regexp.MustCompile(`\s+`)

type Service struct {
	config   *Config
	searcher Searcher
	logger   logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		searcher: deps.Searcher,
		logger:   deps.Logger,
	}
}

// Execute only fails on a missing configuration or a timeout. Other search
// failures come back as an empty result.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !s.searcher.Configured() {
		return nil, apperrors.NewServiceNotConfiguredError("web search", "api key or engine id")
	}

	query := buildQuery(input)
	items, err := s.searcher.Search(ctx, query, s.config.MaxResults)
	if err != nil {
		if errors.Is(err, httpclient.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewWebSearchTimeoutError()
		}
		s.logger.Warn("web search failed, returning empty results", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return &Output{WebData: WebData{Sources: []Source{}}}, nil
	}

	sources := s.processResults(items)
	s.logger.Info("web search completed", map[string]interface{}{
		"query":       query,
		"resultCount": len(sources),
	})
	return &Output{WebData: WebData{Sources: sources, Summary: summary(sources)}}, nil
}

func buildQuery(input *Input) string {
	query := strings.Join([]string{input.Query, input.BusinessName, input.Location}, " ")
	return whitespace.ReplaceAllString(strings.TrimSpace(query), " ")
}

// processResults keeps HTML pages only, drops repeated URLs and ranks pages on
// the preferred domain first.
func (s *Service) processResults(items []SearchItem) []Source {
	seen := make(map[string]bool)
	sources := []Source{}

	for _, item := range items {
		if item.Mime != "" && !strings.Contains(item.Mime, "html") {
			continue
		}
		if item.Link == "" || seen[item.Link] {
			continue
		}
		seen[item.Link] = true

		relevance := 1.0
		if s.config.PreferredDomain != "" && strings.Contains(item.Link, s.config.PreferredDomain) {
			relevance += 0.2
		}
		if strings.Contains(strings.ToLower(item.Title), "official") {
			relevance += 0.1
		}
		if relevance < s.config.MinRelevance {
			continue
		}

		sources = append(sources, Source{
			URL:       item.Link,
			Title:     item.Title,
			Snippet:   item.Snippet,
			Relevance: relevance,
		})
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Relevance > sources[j].Relevance
	})
	if len(sources) > s.config.MaxResults {
		sources = sources[:s.config.MaxResults]
	}
	return sources
}

func summary(sources []Source) string {
	if len(sources) == 0 {
		return ""
	}
	return sources[0].Snippet
}
