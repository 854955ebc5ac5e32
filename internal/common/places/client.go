// Package places wraps the Places text search and details endpoints.
package places

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/observability"

	"github.com/tidwall/gjson"
)

const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"

	detailFields = "place_id,name,formatted_address,geometry,rating,editorial_summary,photo,business_status"
)

// StatusError is a search or details response whose status is neither OK nor
// ZERO_RESULTS.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("places status %s", e.Status)
	}
	return fmt.Sprintf("places status %s: %s", e.Status, e.Message)
}

type Place struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	Lat              float64
	Lng              float64
	Rating           float64
	EditorialSummary string
	PhotoReference   string
	BusinessStatus   string
}

type Client struct {
	baseURL       string
	apiKey        string
	photoMaxWidth int
	http          *httpclient.Client
	obs           *observability.Observability
}

func NewClient(baseURL, apiKey string, photoMaxWidth int, hc *httpclient.Client, obs *observability.Observability) *Client {
	if photoMaxWidth <= 0 {
		photoMaxWidth = 400
	}
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		apiKey:        apiKey,
		photoMaxWidth: photoMaxWidth,
		http:          hc,
		obs:           obs,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// TextSearch returns ranked place ids for query. ZERO_RESULTS yields an empty
// slice and no error.
func (c *Client) TextSearch(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)

	body, err := c.get(ctx, "textsearch", c.baseURL+"/textsearch/json?"+params.Encode())
	if err != nil {
		return nil, err
	}

	status := gjson.GetBytes(body, "status").String()
	switch status {
	case StatusOK:
	case StatusZeroResults:
		return []string{}, nil
	default:
		return nil, &StatusError{Status: status, Message: gjson.GetBytes(body, "error_message").String()}
	}

	var ids []string
	for _, id := range gjson.GetBytes(body, "results.#.place_id").Array() {
		if id.String() != "" {
			ids = append(ids, id.String())
		}
	}
	return ids, nil
}

// Details fetches the fields surfaced to the user for one place.
func (c *Client) Details(ctx context.Context, placeID string) (*Place, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailFields)
	params.Set("key", c.apiKey)

	body, err := c.get(ctx, "details", c.baseURL+"/details/json?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if status := gjson.GetBytes(body, "status").String(); status != StatusOK {
		return nil, &StatusError{Status: status, Message: gjson.GetBytes(body, "error_message").String()}
	}

	r := gjson.GetBytes(body, "result")
	return &Place{
		PlaceID:          firstNonEmpty(r.Get("place_id").String(), placeID),
		Name:             r.Get("name").String(),
		FormattedAddress: r.Get("formatted_address").String(),
		Lat:              r.Get("geometry.location.lat").Float(),
		Lng:              r.Get("geometry.location.lng").Float(),
		Rating:           r.Get("rating").Float(),
		EditorialSummary: r.Get("editorial_summary.overview").String(),
		PhotoReference:   r.Get("photos.0.photo_reference").String(),
		BusinessStatus:   r.Get("business_status").String(),
	}, nil
}

// PhotoURL builds the photo endpoint URL for a reference, or "" without one.
func (c *Client) PhotoURL(reference string) string {
	if reference == "" {
		return ""
	}
	return fmt.Sprintf("https://maps.googleapis.com/maps/api/place/photo?maxwidth=%d&photoreference=%s&key=%s",
		c.photoMaxWidth, reference, c.apiKey)
}

// MapURL links to the place on Google Maps.
func MapURL(placeID string) string {
	if placeID == "" {
		return ""
	}
	return "https://www.google.com/maps/place/?q=place_id:" + placeID
}

func (c *Client) get(ctx context.Context, operation, u string) ([]byte, error) {
	var body []byte
	err := c.obs.TrackCall(ctx, "places", operation, func(ctx context.Context) error {
		var err error
		body, err = c.http.DoJSON(ctx, http.MethodGet, u, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("places %s: %w", operation, err)
	}
	return body, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
