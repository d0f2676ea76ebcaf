package p21

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured is returned when no OData base URL is available from
	// either the constructor or the environment.
	ErrNotConfigured = errors.New("p21 odata base url is not configured")

	// ErrItemNotFound is returned when the item feed has no row for the
	// requested item number.
	ErrItemNotFound = errors.New("p21 item not found")
)

const (
	defaultTimeout = 15 * time.Second
	pageSize       = 100
	maxPages       = 50
)

// Client talks to the P21 OData feed. The zero value is not usable; build
// one with NewClient.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a client for the given base URL and API key, falling back
// to P21_ODATA_BASE_URL / P21_ODATA_API_KEY when the arguments are empty.
// The base URL may be empty; calls then fail with ErrNotConfigured.
func NewClient(baseURL string, apiKey string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = os.Getenv("P21_ODATA_BASE_URL")
	}
	if strings.TrimSpace(apiKey) == "" {
		apiKey = os.Getenv("P21_ODATA_API_KEY")
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// ConnectionResult reports the outcome of a metadata probe.
type ConnectionResult struct {
	Status     string `json:"status"`
	Endpoint   string `json:"endpoint"`
	HTTPStatus int    `json:"httpStatus"`
}

// TestConnection probes {base}/$metadata. Any HTTP response counts as
// reachable; only transport failures and missing configuration error out.
func (c *Client) TestConnection(ctx context.Context) (*ConnectionResult, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	endpoint := c.baseURL + "/$metadata"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("p21 metadata probe failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return &ConnectionResult{
		Status:     "ok",
		Endpoint:   endpoint,
		HTTPStatus: resp.StatusCode,
	}, nil
}

// ItemPrice is the ERP-side price record for a single item.
type ItemPrice struct {
	ItemNumber string
	UnitPrice  decimal.Decimal
	UOM        string
}

type odataItem struct {
	// decimal handles both bare and quoted JSON numbers; some OData emitters
	// serialize Edm.Decimal as a string.
	ItemNumber string          `json:"item_number"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	UOM        string          `json:"uom"`
}

type odataPage struct {
	Value    []odataItem `json:"value"`
	NextLink string      `json:"@odata.nextLink"`
}

// ItemPrice fetches the unit price and UOM for one item number, following
// @odata.nextLink pagination until the item is found or the feed ends.
func (c *Client) ItemPrice(ctx context.Context, itemNumber string) (*ItemPrice, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	itemNumber = strings.TrimSpace(itemNumber)
	if itemNumber == "" {
		return nil, errors.New("item number is required")
	}

	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("item_number eq '%s'", strings.ReplaceAll(itemNumber, "'", "''")))
	query.Set("$top", fmt.Sprintf("%d", pageSize))
	next := c.baseURL + "/items?" + query.Encode()

	for page := 0; next != "" && page < maxPages; page++ {
		body, err := c.getJSON(ctx, next)
		if err != nil {
			return nil, err
		}

		var parsed odataPage
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("p21 items response is not valid json: %w", err)
		}

		for _, item := range parsed.Value {
			if !strings.EqualFold(strings.TrimSpace(item.ItemNumber), itemNumber) {
				continue
			}
			return &ItemPrice{
				ItemNumber: strings.TrimSpace(item.ItemNumber),
				UnitPrice:  item.UnitPrice,
				UOM:        strings.TrimSpace(item.UOM),
			}, nil
		}

		next = c.resolveNextLink(parsed.NextLink)
	}

	return nil, ErrItemNotFound
}

func (c *Client) getJSON(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("p21 request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("p21 returned status %d for %s", resp.StatusCode, endpoint)
	}
	return body, nil
}

// resolveNextLink absolutizes a relative @odata.nextLink against the base URL.
func (c *Client) resolveNextLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return c.baseURL + "/" + strings.TrimLeft(link, "/")
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
