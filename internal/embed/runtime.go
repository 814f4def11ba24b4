package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// RuntimeConfig points at an embedding runtime service that loads sentence
// transformer models on demand.
type RuntimeConfig struct {
	BaseURL  string
	Model    string
	CacheDir string
	Offline  bool
}

// Runtime talks to the embedding runtime over HTTP. The model is loaded
// lazily on the first batch; concurrent first calls collapse into a single
// load request.
type Runtime struct {
	cfg    RuntimeConfig
	client *http.Client
	group  singleflight.Group
	loaded atomic.Bool
}

func NewRuntime(cfg RuntimeConfig) *Runtime {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8088"
	}
	return &Runtime{
		cfg:    cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (r *Runtime) ensureLoaded(ctx context.Context) error {
	if r.loaded.Load() {
		return nil
	}
	_, err, _ := r.group.Do("load", func() (any, error) {
		if r.loaded.Load() {
			return nil, nil
		}
		body := map[string]any{
			"model":     r.cfg.Model,
			"cache_dir": r.cfg.CacheDir,
			"offline":   r.cfg.Offline,
		}
		if err := r.post(ctx, "/models/load", body, nil); err != nil {
			return nil, fmt.Errorf("load model %s: %w", r.cfg.Model, err)
		}
		r.loaded.Store(true)
		return nil, nil
	})
	return err
}

func (r *Runtime) EmbedBatch(ctx context.Context, texts []string) (RawEmbeddings, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return RawEmbeddings{}, err
	}
	req := map[string]any{
		"model":  r.cfg.Model,
		"inputs": texts,
	}
	var resp struct {
		Embeddings json.RawMessage `json:"embeddings"`
	}
	if err := r.post(ctx, "/embed", req, &resp); err != nil {
		return RawEmbeddings{}, err
	}
	return decodeEmbeddings(resp.Embeddings)
}

// decodeEmbeddings accepts either a list of vectors or one bare vector.
func decodeEmbeddings(raw json.RawMessage) (RawEmbeddings, error) {
	var rows [][]float32
	if err := json.Unmarshal(raw, &rows); err == nil {
		return RawEmbeddings{Rows: rows}, nil
	}
	var flat []float32
	if err := json.Unmarshal(raw, &flat); err != nil {
		return RawEmbeddings{}, fmt.Errorf("decode embeddings: %w", err)
	}
	return RawEmbeddings{Flat: flat}, nil
}

func (r *Runtime) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("embedding runtime request: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("embedding runtime %s: status %d: %s", path, resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
