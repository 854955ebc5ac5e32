// Package docai calls the Document AI process endpoint.
package docai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/observability"

	"github.com/tidwall/gjson"
)

// Entity is one typed mention returned by a processor, in document order.
type Entity struct {
	Type        string `json:"type"`
	MentionText string `json:"mentionText"`
}

type Client struct {
	endpoint string
	http     *httpclient.Client
	obs      *observability.Observability
}

func NewClient(endpoint string, hc *httpclient.Client, obs *observability.Observability) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		http:     hc,
		obs:      obs,
	}
}

type rawDocument struct {
	Content  string `json:"content"`
	MimeType string `json:"mimeType"`
}

type processRequest struct {
	RawDocument     rawDocument `json:"rawDocument"`
	SkipHumanReview bool        `json:"skipHumanReview"`
}

// Process sends the document to processor, a full resource name such as
// projects/p/locations/us/processors/abc, and returns its entities.
func (c *Client) Process(ctx context.Context, processor string, content []byte, mimeType string) ([]Entity, error) {
	url := fmt.Sprintf("%s/v1/%s:process", c.endpoint, processor)
	req := processRequest{
		RawDocument: rawDocument{
			Content:  base64.StdEncoding.EncodeToString(content),
			MimeType: mimeType,
		},
		SkipHumanReview: true,
	}

	var body []byte
	err := c.obs.TrackCall(ctx, "docai", "process", func(ctx context.Context) error {
		var err error
		body, err = c.http.DoJSON(ctx, http.MethodPost, url, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("document ai process: %w", err)
	}

	var entities []Entity
	gjson.GetBytes(body, "document.entities").ForEach(func(_, e gjson.Result) bool {
		entities = append(entities, Entity{
			Type:        e.Get("type").String(),
			MentionText: e.Get("mentionText").String(),
		})
		return true
	})
	return entities, nil
}
