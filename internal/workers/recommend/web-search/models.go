package websearch

import (
	"context"

	"pos-onboarding-workers/internal/common/logger"
)

type Input struct {
	Query        string `json:"query" jsonschema:"minLength=1,description=What to search the web for"`
	BusinessName string `json:"businessName,omitempty" jsonschema:"description=Business the question is about"`
	Location     string `json:"location,omitempty" jsonschema:"description=City or region to narrow the search"`
}

type Output struct {
	WebData WebData `json:"webData"`
}

type WebData struct {
	Sources []Source `json:"sources"`
	Summary string   `json:"summary"`
}

type Source struct {
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Snippet   string  `json:"snippet"`
	Relevance float64 `json:"relevance"`
}

// SearchItem is one raw result from the search API.
type SearchItem struct {
	Link    string
	Title   string
	Snippet string
	Mime    string
}

type Searcher interface {
	Configured() bool
	Search(ctx context.Context, query string, num int) ([]SearchItem, error)
}

type ServiceDependencies struct {
	Searcher Searcher
	Logger   logger.Logger
}
