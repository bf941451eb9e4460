// File path: internal/semantic/client.go
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/common"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/llm"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
)

// Client talks to the external vector-search service holding the course
// index. It is an optional collaborator: when unreachable or misbehaving the
// caller falls back to the lexical ranker, so every failure here degrades
// rather than propagates.
type Client struct {
	httpClient *http.Client

	baseURL      string
	collection   string
	collectionID string
	available    bool
	apiKey       string
	embedder     llm.Embedder

	mu sync.RWMutex
}

// NewFromEnv constructs a client from environment configuration.
func NewFromEnv(ctx context.Context, embedder llm.Embedder) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg, embedder)
}

// New constructs a client using the provided configuration. Initialization
// failure leaves the client in an unavailable state rather than erroring.
func New(ctx context.Context, cfg Config, embedder llm.Embedder) (*Client, error) {
	logger := common.Logger()
	logger.Info(
		"semantic: initializing vector search client",
		"host", cfg.Host,
		"port", cfg.Port,
		"collection", cfg.Collection,
	)
	client := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    fmt.Sprintf("%s://%s:%s/api/v1", cfg.Scheme, cfg.Host, cfg.Port),
		collection: cfg.Collection,
		apiKey:     cfg.APIKey,
		embedder:   embedder,
	}
	if err := client.ensureReady(ctx); err != nil {
		logger.Warn("semantic: vector search initialization failed", "collection", cfg.Collection, "error", err)
		return client, nil
	}
	logger.Info("semantic: vector search connection established")
	return client, nil
}

func (c *Client) Available() bool {
	if c == nil || c.embedder == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.available
}

// SearchCourses embeds the query and runs a vector search over the course
// collection. Malformed result entries are discarded.
func (c *Client) SearchCourses(ctx context.Context, query string, limit int) ([]lms.Course, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	if !c.Available() {
		return nil, errors.New("semantic search unavailable")
	}
	if limit <= 0 {
		limit = 5
	}
	vectors, err := c.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, nil
	}
	body := map[string]interface{}{
		"query_embeddings": [][]float64{vectors[0]},
		"n_results":        limit,
	}
	c.mu.RLock()
	collectionID := c.collectionID
	c.mu.RUnlock()
	endpoint := fmt.Sprintf("%s/collections/%s/query", c.baseURL, url.PathEscape(collectionID))
	var resp struct {
		IDs       [][]string                 `json:"ids"`
		Metadatas [][]map[string]interface{} `json:"metadatas"`
	}
	if err := c.doRequest(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}
	courses := make([]lms.Course, 0, len(resp.IDs[0]))
	for idx := range resp.IDs[0] {
		if len(resp.Metadatas) == 0 || idx >= len(resp.Metadatas[0]) {
			continue
		}
		course, ok := courseFromMetadata(resp.Metadatas[0][idx])
		if !ok {
			continue
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// courseFromMetadata maps a vector point's metadata into a candidate course.
// Entries without a course id or title cannot be interpreted and are
// dropped, letting the deterministic ranker take over.
func courseFromMetadata(meta map[string]interface{}) (lms.Course, bool) {
	course := lms.Course{
		ID:               stringField(meta, "course_id"),
		Title:            stringField(meta, "title"),
		ShortDescription: stringField(meta, "short_description"),
		Category:         stringField(meta, "category"),
		Level:            lms.Level(stringField(meta, "level")),
	}
	if tags := stringField(meta, "tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				course.Tags = append(course.Tags, trimmed)
			}
		}
	}
	if rating, ok := meta["rating_avg"].(float64); ok {
		course.RatingAvg = rating
	}
	if enrolled, ok := meta["enrolled_count"].(float64); ok {
		course.EnrolledCount = int(enrolled)
	}
	if published := stringField(meta, "published_at"); published != "" {
		if ts, err := time.Parse(time.RFC3339, published); err == nil {
			course.PublishedAt = &ts
		}
	}
	if course.ID == "" || course.Title == "" {
		return lms.Course{}, false
	}
	return course, true
}

func stringField(meta map[string]interface{}, key string) string {
	if value, ok := meta[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func (c *Client) ensureReady(ctx context.Context) error {
	if c == nil {
		return errors.New("semantic client not configured")
	}
	c.mu.RLock()
	available := c.available
	collectionID := c.collectionID
	c.mu.RUnlock()
	if available && collectionID != "" {
		return nil
	}
	const maxAttempts = 3
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = c.health(ctx)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 250 * time.Millisecond):
		}
	}
	if err != nil {
		return err
	}
	if err = c.resolveCollectionID(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.available = true
	c.mu.Unlock()
	return nil
}

func (c *Client) resolveCollectionID(ctx context.Context) error {
	c.mu.RLock()
	if c.collectionID != "" {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()
	endpoint := fmt.Sprintf("%s/collections?name=%s", c.baseURL, url.QueryEscape(c.collection))
	var resp struct {
		Collections []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"collections"`
	}
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return err
	}
	for _, col := range resp.Collections {
		if strings.EqualFold(col.Name, c.collection) {
			c.mu.Lock()
			c.collectionID = col.ID
			c.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("collection %q not found", c.collection)
}

func (c *Client) health(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/heartbeat", c.baseURL)
	return c.doRequest(ctx, http.MethodGet, endpoint, nil, nil)
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("semantic %s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
