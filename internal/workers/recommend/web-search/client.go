package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/observability"

	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// CustomSearchClient queries the Custom Search JSON API.
type CustomSearchClient struct {
	baseURL  string
	apiKey   string
	engineID string
	http     *httpclient.Client
	obs      *observability.Observability
}

func NewCustomSearchClient(baseURL, apiKey, engineID string, hc *httpclient.Client, obs *observability.Observability) *CustomSearchClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &CustomSearchClient{baseURL: baseURL, apiKey: apiKey, engineID: engineID, http: hc, obs: obs}
}

func (c *CustomSearchClient) Configured() bool {
	return c.apiKey != "" && c.engineID != ""
}

func (c *CustomSearchClient) Search(ctx context.Context, query string, num int) ([]SearchItem, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	params := url.Values{}
	params.Add("key", c.apiKey)
	params.Add("cx", c.engineID)
	params.Add("q", query)
	params.Add("num", strconv.Itoa(num))
	u.RawQuery = params.Encode()

	var body []byte
	err = c.obs.TrackCall(ctx, "websearch", "search", func(ctx context.Context) error {
		var err error
		body, err = c.http.DoJSON(ctx, http.MethodGet, u.String(), nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := []SearchItem{}
	gjson.GetBytes(body, "items").ForEach(func(_, item gjson.Result) bool {
		items = append(items, SearchItem{
			Link:    item.Get("link").String(),
			Title:   item.Get("title").String(),
			Snippet: item.Get("snippet").String(),
			Mime:    item.Get("mime").String(),
		})
		return true
	})
	return items, nil
}
