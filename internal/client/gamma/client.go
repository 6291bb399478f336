package gamma

import (
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

const DefaultBaseURL = "https://gamma-api.polymarket.com"

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gamma API error (%d): %s", e.Status, e.Body)
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
		return nil, apperr.Unavailable("gamma request", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Unavailable("gamma read response", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("gamma %s: %w", path, apperr.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Unavailable("gamma request", &APIError{Status: resp.StatusCode, Body: string(body)})
	}
	return body, nil
}

// GetEventRaw returns the raw JSON body for one event, addressed by slug or
// id. Callers that need the outcome tuples feed this into ExtractOutcomes.
func (c *Client) GetEventRaw(ctx context.Context, slugOrID string) ([]byte, error) {
	path := "/events/" + url.PathEscape(slugOrID)
	return c.doRequest(ctx, path, nil)
}

func (c *Client) GetEvent(ctx context.Context, slugOrID string) (*Event, error) {
	body, err := c.GetEventRaw(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	return decodeEvent(body)
}

type ListEventsParams struct {
	TagSlug   string
	Limit     int
	Order     string
	Ascending bool
	Closed    bool
	Archived  bool
}

// ListEvents pages through /events/pagination. Only active events are
// requested; ordering defaults to total volume descending.
func (c *Client) ListEvents(ctx context.Context, params ListEventsParams) ([]Event, error) {
	query := url.Values{}
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	order := params.Order
	if order == "" {
		order = "volume"
	}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("active", "true")
	query.Set("archived", strconv.FormatBool(params.Archived))
	query.Set("closed", strconv.FormatBool(params.Closed))
	query.Set("order", order)
	query.Set("ascending", strconv.FormatBool(params.Ascending))
	if params.TagSlug != "" {
		query.Set("tag_slug", params.TagSlug)
	}

	body, err := c.doRequest(ctx, "/events/pagination", query)
	if err != nil {
		return nil, err
	}

	var page struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, apperr.Unavailable("gamma decode page", err)
	}
	events := make([]Event, 0, len(page.Data))
	for _, raw := range page.Data {
		ev, err := decodeEvent(raw)
		if err != nil {
			continue
		}
		events = append(events, *ev)
	}
	return events, nil
}

func decodeEvent(body []byte) (*Event, error) {
	var doc struct {
		ID        string    `json:"id"`
		Slug      string    `json:"slug"`
		Title     string    `json:"title"`
		Volume    flexFloat `json:"volume"`
		Volume24h flexFloat `json:"volume24hr"`
		Liquidity flexFloat `json:"liquidity"`
		Tags      []Tag     `json:"tags"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperr.Unavailable("gamma decode event", err)
	}
	return &Event{
		ID:        doc.ID,
		Slug:      doc.Slug,
		Title:     doc.Title,
		Volume:    float64(doc.Volume),
		Volume24h: float64(doc.Volume24h),
		Liquidity: float64(doc.Liquidity),
		Tags:      doc.Tags,
		Raw:       append(json.RawMessage(nil), body...),
	}, nil
}
