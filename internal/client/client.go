// Package client provides a REST client for the Krishi server, used by
// the command-line interface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/krishi-ai/krishi-go/internal/chat"
	"github.com/krishi-ai/krishi-go/internal/models"
)

// Client talks to a running Krishi server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. If endpoint is empty, uses the KRISHI_SERVER_URL
// env var or defaults to localhost:8080.
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("KRISHI_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	timeout := 2 * time.Minute // LLM replies can take a while
	if t := os.Getenv("KRISHI_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL:    endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SendMessage posts one chat message and returns the exchange result.
func (c *Client) SendMessage(ctx context.Context, userID, message, language string) (chat.Result, error) {
	var res chat.Result
	err := c.post(ctx, "/chat/message", map[string]string{
		"user_id":  userID,
		"message":  message,
		"language": language,
	}, &res)
	return res, err
}

// History fetches the conversation, oldest first. A positive limit
// restricts the result to the most recent turns.
func (c *Client) History(ctx context.Context, userID string, limit int) ([]models.Turn, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var res struct {
		History []models.Turn `json:"history"`
	}
	if err := c.get(ctx, "/chat/history/"+url.PathEscape(userID), query, &res); err != nil {
		return nil, err
	}
	return res.History, nil
}

// ClearHistory wipes the conversation.
func (c *Client) ClearHistory(ctx context.Context, userID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/chat/delete/"+url.PathEscape(userID), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, nil)
}

// MarketPrices runs a filtered mandi price lookup.
func (c *Client) MarketPrices(ctx context.Context, query models.MarketQuery) ([]models.MarketRecord, error) {
	q := url.Values{}
	for key, value := range map[string]string{
		"state": query.State, "district": query.District, "market": query.Market,
		"commodity": query.Commodity, "variety": query.Variety, "grade": query.Grade,
		"language": query.Language,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	if query.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", query.Limit))
	}

	var records []models.MarketRecord
	if err := c.get(ctx, "/market/get", q, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Weather fetches the reshaped forecast for each of the farmer's farms,
// keyed by farm name.
func (c *Client) Weather(ctx context.Context, farmerID string) (map[string]models.FarmWeather, error) {
	q := url.Values{"farmer_id": {farmerID}}
	var reports map[string]models.FarmWeather
	if err := c.get(ctx, "/weather/get", q, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Feed fetches the community feed.
func (c *Client) Feed(ctx context.Context, limit int) ([]models.Post, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	var posts []models.Post
	if err := c.get(ctx, "/posts/feed", q, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("server error (status %d): %s", resp.StatusCode, body)
	}
	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
