// Package qdrant is a minimal REST client for the collection operations the
// pipeline needs: existence probe, create, upsert and search.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"manualdesk/internal/models"
	"manualdesk/internal/util"
)

type Config struct {
	BaseURL    string
	APIKey     string
	Collection string
	Dim        int
}

type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:6333"
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Payload is the metadata stored next to each vector.
type Payload struct {
	DocID    string `json:"doc_id"`
	Filename string `json:"filename"`
	Page     int    `json:"page"`
	Text     string `json:"text"`
}

type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// EnsureCollection probes the collection and creates it only on a definite
// not-found. Any other probe outcome is an error so a reachable-but-broken
// store is never mistaken for a missing collection.
func (c *Client) EnsureCollection(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/collections/"+c.cfg.Collection, nil)
	if err != nil {
		return fmt.Errorf("probe collection %s: %w", c.cfg.Collection, err)
	}
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusNotFound:
		return c.createCollection(ctx)
	default:
		return fmt.Errorf("probe collection %s: unexpected status %d", c.cfg.Collection, status)
	}
}

func (c *Client) createCollection(ctx context.Context) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     c.cfg.Dim,
			"distance": "Cosine",
		},
	}
	status, data, err := c.do(ctx, http.MethodPut, "/collections/"+c.cfg.Collection, body)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", c.cfg.Collection, err)
	}
	if status >= 400 {
		return fmt.Errorf("create collection %s: status %d: %s", c.cfg.Collection, status, data)
	}
	return nil
}

func (c *Client) Upsert(ctx context.Context, points []Point) error {
	type wirePoint struct {
		ID      string    `json:"id"`
		Vector  []float32 `json:"vector"`
		Payload Payload   `json:"payload"`
	}
	wire := make([]wirePoint, len(points))
	for i, p := range points {
		wire[i] = wirePoint{ID: p.ID, Vector: p.Vector, Payload: p.Payload}
	}
	body := map[string]any{"points": wire}
	status, data, err := c.do(ctx, http.MethodPut,
		"/collections/"+c.cfg.Collection+"/points?wait=true", body)
	if err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("upsert %d points: %w", len(points), util.ErrCollectionMissing)
	}
	if status >= 400 {
		return fmt.Errorf("upsert %d points: status %d: %s", len(points), status, data)
	}
	return nil
}

func (c *Client) Search(ctx context.Context, vector []float32, limit int) ([]models.SearchHit, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	status, data, err := c.do(ctx, http.MethodPost,
		"/collections/"+c.cfg.Collection+"/points/search", body)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("search: %w", util.ErrCollectionMissing)
	}
	if status >= 400 {
		return nil, fmt.Errorf("search: status %d: %s", status, data)
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload Payload `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	hits := make([]models.SearchHit, len(resp.Result))
	for i, r := range resp.Result {
		hits[i] = models.SearchHit{
			DocID:    r.Payload.DocID,
			Filename: r.Payload.Filename,
			Page:     r.Payload.Page,
			Text:     r.Payload.Text,
			Score:    r.Score,
		}
	}
	return hits, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("api-key", c.cfg.APIKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}
