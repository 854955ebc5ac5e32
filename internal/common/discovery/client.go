// Package discovery calls the Discovery Engine answer endpoint backing the
// product knowledge base.
package discovery

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/observability"

	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://discoveryengine.googleapis.com"

	answerPreamble = `Given the conversation between a user and a helpful assistant and some search results, create a final answer for the assistant.
The answer should use all relevant information from the search results, not introduce any additional information, and use exactly the same words as the search results when possible.
The assistant's answer should be no more than 20 sentences. The assistant's answer should be formatted as a bulleted list.
Each list item should start with the '- ' symbol.`
)

type Reference struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Attachment is an inline image returned alongside an answer. Data is base64.
type Attachment struct {
	MimeType string
	Data     string
}

type Answer struct {
	Text        string
	References  []Reference
	Attachments []Attachment
}

type Client struct {
	baseURL    string
	projectID  string
	location   string
	engineID   string
	maxResults int
	http       *httpclient.Client
	obs        *observability.Observability
}

func NewClient(baseURL, projectID, location, engineID string, maxResults int, hc *httpclient.Client, obs *observability.Observability) *Client {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &Client{
		baseURL:    regionalBaseURL(strings.TrimSuffix(baseURL, "/"), location),
		projectID:  projectID,
		location:   location,
		engineID:   engineID,
		maxResults: maxResults,
		http:       hc,
		obs:        obs,
	}
}

// Missing names the first identifier the client needs but lacks, or "".
func (c *Client) Missing() string {
	switch {
	case c.projectID == "":
		return "project id"
	case c.location == "":
		return "location"
	case c.engineID == "":
		return "engine id"
	}
	return ""
}

// ServingConfig is the resource name answers are requested from.
func (c *Client) ServingConfig() string {
	return fmt.Sprintf("projects/%s/locations/%s/collections/default_collection/engines/%s/servingConfigs/default_config",
		c.projectID, c.location, c.engineID)
}

// Answer asks the engine to answer query from its indexed documents.
func (c *Client) Answer(ctx context.Context, query string) (*Answer, error) {
	url := fmt.Sprintf("%s/v1/%s:answer", c.baseURL, c.ServingConfig())
	req := map[string]interface{}{
		"query": map[string]string{"text": query},
		"answerGenerationSpec": map[string]interface{}{
			"ignoreAdversarialQuery":      false,
			"ignoreNonAnswerSeekingQuery": false,
			"ignoreLowRelevantContent":    false,
			"modelSpec":                   map[string]string{"modelVersion": "stable"},
			"promptSpec":                  map[string]string{"preamble": answerPreamble},
			"includeCitations":            true,
			"answerLanguageCode":          "en",
		},
		"queryUnderstandingSpec": map[string]interface{}{
			"queryRephraserSpec": map[string]interface{}{"disable": false, "maxRephraseSteps": 1},
			"queryClassificationSpec": map[string]interface{}{
				"types": []string{"ADVERSARIAL_QUERY", "NON_ANSWER_SEEKING_QUERY"},
			},
		},
		"searchSpec": map[string]interface{}{
			"searchParams": map[string]int{"maxReturnResults": c.maxResults},
		},
	}

	var body []byte
	err := c.obs.TrackCall(ctx, "discovery", "answer", func(ctx context.Context) error {
		var err error
		body, err = c.http.DoJSON(ctx, http.MethodPost, url, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("discovery answer: %w", err)
	}
	return parseAnswer(body), nil
}

func parseAnswer(body []byte) *Answer {
	answer := gjson.GetBytes(body, "answer")
	out := &Answer{
		Text:        answer.Get("answerText").String(),
		References:  []Reference{},
		Attachments: []Attachment{},
	}

	answer.Get("references").ForEach(func(_, ref gjson.Result) bool {
		meta := ref.Get("chunkInfo.documentMetadata")
		if !meta.Exists() {
			meta = ref.Get("unstructuredDocumentInfo")
		}
		if !meta.Exists() {
			return true
		}
		out.References = append(out.References, Reference{
			URI:   PublicURI(meta.Get("uri").String()),
			Title: meta.Get("title").String(),
		})
		return true
	})

	answer.Get("blobAttachments").ForEach(func(_, att gjson.Result) bool {
		out.Attachments = append(out.Attachments, Attachment{
			MimeType: att.Get("data.mimeType").String(),
			Data:     att.Get("data.data").String(),
		})
		return true
	})
	return out
}

// PublicURI rewrites gs:// object URIs to their browser-accessible form.
func PublicURI(uri string) string {
	return strings.Replace(uri, "gs://", "https://storage.cloud.google.com/", 1)
}

// regionalBaseURL switches the default host to the regional endpoint for
// non-global locations.
func regionalBaseURL(baseURL, location string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if baseURL != DefaultBaseURL || location == "" || location == "global" {
		return baseURL
	}
	return fmt.Sprintf("https://%s-discoveryengine.googleapis.com", location)
}

// ImageExtension picks the file extension used when an attachment is saved.
func ImageExtension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	}
	if strings.HasPrefix(mimeType, "image/") {
		if ext := mimeType[strings.LastIndex(mimeType, "/")+1:]; ext != "" {
			return ext
		}
	}
	return "png"
}
