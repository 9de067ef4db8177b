// Package market proxies the data.gov.in mandi commodity price resource
// and optionally translates the lookup fields into the farmer's language.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/krishi-ai/krishi-go/internal/models"
)

// resourceID is the daily mandi price dataset on data.gov.in.
const resourceID = "9ef84268-d588-465a-a308-a864a43d0070"

const defaultBaseURL = "https://api.data.gov.in"

const defaultLimit = 10

// Translator localizes the lookup fields of price records.
type Translator interface {
	TranslateRecords(ctx context.Context, records []models.MarketRecord, language string) []models.MarketRecord
}

// Client fetches commodity prices.
type Client struct {
	apiKey     string
	baseURL    string
	http       *http.Client
	translator Translator
	logger     *slog.Logger
}

// New creates a market price client. translator may be nil, in which case
// records always come back in the upstream's English.
func New(apiKey string, translator Translator, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		http:       &http.Client{Timeout: 30 * time.Second},
		translator: translator,
		logger:     logger,
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type upstreamResponse struct {
	Total   int                   `json:"total"`
	Count   int                   `json:"count"`
	Records []models.MarketRecord `json:"records"`
}

// Prices runs the filtered lookup. When the query carries a non-English
// language and a translator is configured, the lookup fields of each
// record are localized; prices and dates are returned exactly as the
// upstream sent them.
func (c *Client) Prices(ctx context.Context, query models.MarketQuery) ([]models.MarketRecord, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(query.Offset))
	setFilter(q, "state.keyword", query.State)
	setFilter(q, "district", query.District)
	setFilter(q, "market", query.Market)
	setFilter(q, "commodity", query.Commodity)
	setFilter(q, "variety", query.Variety)
	setFilter(q, "grade", query.Grade)

	reqURL := fmt.Sprintf("%s/resource/%s?%s", c.baseURL, resourceID, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch market prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("market api error (status %d): %s", resp.StatusCode, body)
	}

	var payload upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode market response: %w", err)
	}

	records := payload.Records
	if records == nil {
		records = []models.MarketRecord{}
	}
	if c.translator != nil {
		records = c.translator.TranslateRecords(ctx, records, query.Language)
	}
	return records, nil
}

func setFilter(q url.Values, field, value string) {
	if value != "" {
		q.Set("filters["+field+"]", value)
	}
}
