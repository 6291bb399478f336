package clob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"polytracker/internal/apperr"
)

const DefaultBaseURL = "https://clob.polymarket.com"

// Client is a thin read-only CLOB API client; the broadcast loop uses it to
// enrich pushes with recent trades and book stats.
type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clob API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = DefaultBaseURL
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Unavailable("clob request", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Unavailable("clob read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Unavailable("clob request", &APIError{Status: resp.StatusCode, Body: string(body)})
	}
	return body, nil
}

// GetTrades returns up to limit recent trades for a market. The endpoint
// answers either a bare array or a {"data": [...]} wrapper; both are
// accepted and the trades pass through untyped to subscribers.
func (c *Client) GetTrades(ctx context.Context, market string, limit int) ([]json.RawMessage, error) {
	if market == "" {
		return nil, fmt.Errorf("market is required")
	}
	if limit <= 0 {
		limit = 10
	}
	query := url.Values{}
	query.Set("market", market)
	query.Set("limit", strconv.Itoa(limit))

	body, err := c.doRequest(ctx, "/trades", query)
	if err != nil {
		return nil, err
	}
	return decodeTradeList(body, limit)
}

// Book is the top-of-book summary for one token.
type Book struct {
	Market string      `json:"market"`
	Bids   []BookLevel `json:"bids"`
	Asks   []BookLevel `json:"asks"`
}

type BookLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// GetBook returns the current order book for a token id.
func (c *Client) GetBook(ctx context.Context, tokenID string) (*Book, error) {
	if tokenID == "" {
		return nil, fmt.Errorf("token id is required")
	}
	query := url.Values{}
	query.Set("token_id", tokenID)

	body, err := c.doRequest(ctx, "/book", query)
	if err != nil {
		return nil, err
	}
	var book Book
	if err := json.Unmarshal(body, &book); err != nil {
		return nil, apperr.Unavailable("clob decode book", err)
	}
	return &book, nil
}

func decodeTradeList(body []byte, limit int) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	var items []json.RawMessage
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, apperr.Unavailable("clob decode trades", err)
		}
		items = wrapper.Data
	} else {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, apperr.Unavailable("clob decode trades", err)
		}
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
