// Package genai calls the Gemini generateContent endpoint for image
// identification and image editing.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"strings"

	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/observability"

	"github.com/tidwall/gjson"
)

const (
	ModalityText  = "TEXT"
	ModalityImage = "IMAGE"
)

// Part is either a text part or an inline binary part.
type Part struct {
	Text     string
	MimeType string
	Data     []byte
}

func TextPart(text string) Part {
	return Part{Text: text}
}

func ImagePart(data []byte, mimeType string) Part {
	return Part{Data: data, MimeType: mimeType}
}

func (p Part) IsImage() bool {
	return len(p.Data) > 0
}

// Response holds the parts of the first candidate.
type Response struct {
	Parts []Part
}

// Text joins every text part.
func (r *Response) Text() string {
	var texts []string
	for _, p := range r.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// FirstImage returns the first image part, if any.
func (r *Response) FirstImage() (Part, bool) {
	for _, p := range r.Parts {
		if p.IsImage() {
			return p, true
		}
	}
	return Part{}, false
}

type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
	obs     *observability.Observability
}

func NewClient(baseURL, apiKey string, hc *httpclient.Client, obs *observability.Observability) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    hc,
		obs:     obs,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type requestPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string        `json:"role"`
	Parts []requestPart `json:"parts"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

// GenerateContent sends one user turn to model. Pass modalities to ask for
// image output; none means text only.
func (c *Client) GenerateContent(ctx context.Context, model string, parts []Part, modalities ...string) (*Response, error) {
	req := generateRequest{Contents: []content{{Role: "user"}}}
	for _, p := range parts {
		if p.IsImage() {
			req.Contents[0].Parts = append(req.Contents[0].Parts, requestPart{InlineData: &inlineData{
				MimeType: p.MimeType,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			}})
			continue
		}
		req.Contents[0].Parts = append(req.Contents[0].Parts, requestPart{Text: p.Text})
	}
	if len(modalities) > 0 {
		req.GenerationConfig = &generationConfig{ResponseModalities: modalities}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, url.QueryEscape(c.apiKey))

	var body []byte
	err := c.obs.TrackCall(ctx, "genai", "generate_content", func(ctx context.Context) error {
		var err error
		body, err = c.http.DoJSON(ctx, http.MethodPost, endpoint, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("generate content with %s: %w", model, err)
	}
	return parseResponse(body)
}

func parseResponse(body []byte) (*Response, error) {
	out := &Response{}
	var decodeErr error
	gjson.GetBytes(body, "candidates.0.content.parts").ForEach(func(_, p gjson.Result) bool {
		if text := p.Get("text"); text.Exists() {
			out.Parts = append(out.Parts, Part{Text: text.String()})
			return true
		}
		inline := p.Get("inlineData")
		if !inline.Exists() || inline.Get("data").String() == "" {
			return true
		}
		data, err := base64.StdEncoding.DecodeString(inline.Get("data").String())
		if err != nil {
			decodeErr = fmt.Errorf("decode inline image: %w", err)
			return false
		}
		out.Parts = append(out.Parts, Part{MimeType: inline.Get("mimeType").String(), Data: data})
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return out, nil
}

// CheckImage reports whether data decodes as a JPEG, PNG or GIF image and
// returns the detected format.
func CheckImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image")
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return format, nil
}
