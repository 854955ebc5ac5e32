package zoho

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/observability"

	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "https://www.zohoapis.com/crm/v3"

// ErrDealNotFound is returned when no deal matches a business name.
var ErrDealNotFound = errors.New("deal not found")

// Deal is the opportunity record the onboarding flow annotates.
type Deal struct {
	ID          string  `json:"id"`
	Name        string  `json:"Deal_Name"`
	Stage       string  `json:"Stage"`
	Amount      float64 `json:"Amount,omitempty"`
	AccountName string  `json:"Account_Name,omitempty"`
}

type CRMClient struct {
	baseURL    string
	oauthToken string
	http       *httpclient.Client
	obs        *observability.Observability
}

func NewCRMClient(baseURL, oauthToken string, timeout time.Duration, obs *observability.Observability) *CRMClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &CRMClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		oauthToken: oauthToken,
		http: httpclient.NewClient(timeout,
			httpclient.WithRetries(2, 200*time.Millisecond),
			httpclient.WithHeader("Authorization", "Zoho-oauthtoken "+oauthToken)),
		obs: obs,
	}
}

func (c *CRMClient) Configured() bool {
	return c.oauthToken != ""
}

// SearchDeals finds deals whose Deal_Name equals name. Zoho answers 204 with
// an empty body when nothing matches.
func (c *CRMClient) SearchDeals(ctx context.Context, name string) ([]Deal, error) {
	params := url.Values{}
	params.Set("criteria", fmt.Sprintf("(Deal_Name:equals:%s)", escapeCriteria(name)))

	body, err := c.call(ctx, "search_deals", http.MethodGet, c.baseURL+"/Deals/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return parseDeals(body), nil
}

func (c *CRMClient) GetDeal(ctx context.Context, id string) (*Deal, error) {
	body, err := c.call(ctx, "get_deal", http.MethodGet, fmt.Sprintf("%s/Deals/%s", c.baseURL, url.PathEscape(id)), nil)
	if err != nil {
		return nil, err
	}
	deals := parseDeals(body)
	if len(deals) == 0 {
		return nil, fmt.Errorf("%w: id %s", ErrDealNotFound, id)
	}
	return &deals[0], nil
}

// FindDeal resolves a deal by explicit id, or by business name when id is empty.
func (c *CRMClient) FindDeal(ctx context.Context, id, businessName string) (*Deal, error) {
	if id != "" {
		return c.GetDeal(ctx, id)
	}
	deals, err := c.SearchDeals(ctx, businessName)
	if err != nil {
		return nil, err
	}
	if len(deals) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrDealNotFound, businessName)
	}
	return &deals[0], nil
}

// UpdateStage sets the Stage field of a deal.
func (c *CRMClient) UpdateStage(ctx context.Context, id, stage string) error {
	payload := map[string]interface{}{
		"data": []map[string]string{{"Stage": stage}},
	}
	body, err := c.call(ctx, "update_stage", http.MethodPut, fmt.Sprintf("%s/Deals/%s", c.baseURL, url.PathEscape(id)), payload)
	if err != nil {
		return err
	}
	return recordStatus(body, "update stage")
}

// AddNote attaches a note to a deal and returns the note id.
func (c *CRMClient) AddNote(ctx context.Context, id, title, content string) (string, error) {
	payload := map[string]interface{}{
		"data": []map[string]string{{
			"Note_Title":   title,
			"Note_Content": content,
		}},
	}
	body, err := c.call(ctx, "add_note", http.MethodPost, fmt.Sprintf("%s/Deals/%s/Notes", c.baseURL, url.PathEscape(id)), payload)
	if err != nil {
		return "", err
	}
	if err := recordStatus(body, "add note"); err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "data.0.details.id").String(), nil
}

func (c *CRMClient) call(ctx context.Context, operation, method, u string, payload interface{}) ([]byte, error) {
	var body []byte
	err := c.obs.TrackCall(ctx, "zoho", operation, func(ctx context.Context) error {
		var err error
		body, err = c.http.DoJSON(ctx, method, u, payload)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("zoho %s: %w", operation, err)
	}
	return body, nil
}

func parseDeals(body []byte) []Deal {
	deals := []Deal{}
	gjson.GetBytes(body, "data").ForEach(func(_, d gjson.Result) bool {
		deals = append(deals, Deal{
			ID:          d.Get("id").String(),
			Name:        d.Get("Deal_Name").String(),
			Stage:       d.Get("Stage").String(),
			Amount:      d.Get("Amount").Float(),
			AccountName: d.Get("Account_Name.name").String(),
		})
		return true
	})
	return deals
}

func recordStatus(body []byte, operation string) error {
	first := gjson.GetBytes(body, "data.0")
	if status := first.Get("status").String(); status != "" && status != "success" {
		return fmt.Errorf("%s failed: %s", operation, first.Get("message").String())
	}
	return nil
}

// escapeCriteria escapes the characters Zoho reserves inside criteria values.
func escapeCriteria(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, `,`, `\,`)
	return r.Replace(v)
}
