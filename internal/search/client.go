package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jordan/career-advisor/internal/config"
	"github.com/jordan/career-advisor/internal/courses"
	"github.com/jordan/career-advisor/internal/logger"
	"github.com/jordan/career-advisor/internal/types"
	"github.com/rs/zerolog"
)

// ErrSearchUnavailable is returned when the search provider itself
// errors. Callers may degrade to an empty course list instead of
// propagating it.
var ErrSearchUnavailable = errors.New("search provider unavailable")

// searchColumns are the fields requested from the provider for every hit.
var searchColumns = []string{"title", "description", "skills", "url", "level", "platform"}

// CourseSearcher retrieves candidate courses for a role. Implemented by
// Client; faked in orchestrator and handler tests.
type CourseSearcher interface {
	Search(ctx context.Context, role string, focusSkills []string, limit int) ([]types.Course, error)
}

// Client is the HTTP client for the managed vector/keyword search service.
type Client struct {
	pool         *Pool
	endpoint     string
	apiKey       string
	defaultLimit int
	log          zerolog.Logger
}

// NewClient creates a search client that borrows provider sessions from pool.
func NewClient(cfg config.SearchConfig, pool *Pool) *Client {
	return &Client{
		pool:         pool,
		endpoint:     cfg.Endpoint,
		apiKey:       cfg.APIKey,
		defaultLimit: cfg.DefaultLimit,
		log:          logger.Component("course_search"),
	}
}

// httpConn is a provider session backed by a dedicated HTTP client.
type httpConn struct {
	client *http.Client
}

func (c *httpConn) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// HTTPDialer returns a Dialer that opens HTTP-backed provider sessions.
func HTTPDialer(timeout time.Duration) Dialer {
	return func(_ context.Context) (Conn, error) {
		return &httpConn{client: &http.Client{Timeout: timeout}}, nil
	}
}

// searchRequest is the provider query payload.
type searchRequest struct {
	Query   string   `json:"query"`
	Columns []string `json:"columns"`
	Limit   int      `json:"limit"`
}

// searchResponse is the provider's result envelope.
type searchResponse struct {
	Results []courseRow `json:"results"`
}

type courseRow struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Skills      string `json:"skills"`
	URL         string `json:"url"`
	Level       string `json:"level"`
	Platform    string `json:"platform"`
}

// Search returns up to limit candidate courses for the role, biased toward
// the focus skills when provided. Levels are normalized into tiers on
// receipt; rows without a title or URL are rejected. Pool errors surface
// unchanged (transport class); provider errors surface as
// ErrSearchUnavailable.
func (c *Client) Search(ctx context.Context, role string, focusSkills []string, limit int) ([]types.Course, error) {
	if limit <= 0 {
		limit = c.defaultLimit
	}
	query := BuildQuery(role, focusSkills)

	lease, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := c.post(ctx, lease.Conn().(*httpConn).client, query, limit)
	if err != nil {
		lease.Discard()
		c.log.Error().Str("role", role).Err(err).Msg("search provider request failed")
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	lease.Release()

	result := make([]types.Course, 0, len(rows))
	for _, row := range rows {
		course := types.Course{
			Title:       row.Title,
			Description: row.Description,
			Skills:      row.Skills,
			URL:         row.URL,
			Level:       row.Level,
			Platform:    row.Platform,
			Tier:        courses.NormalizeLevel(row.Level),
		}
		if !course.Valid() {
			continue
		}
		result = append(result, course)
	}
	return result, nil
}

// post performs one provider query over the leased session.
func (c *Client) post(ctx context.Context, client *http.Client, query string, limit int) ([]courseRow, error) {
	body, err := json.Marshal(searchRequest{Query: query, Columns: searchColumns, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/courses/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search provider returned status %d: %s", resp.StatusCode, snippet)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return parsed.Results, nil
}
