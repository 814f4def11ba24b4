package embed

import (
	"context"
	"fmt"

	"manualdesk/internal/config"
	"manualdesk/internal/util"
)

// RawEmbeddings is a backend batch response before shape checking. Exactly
// one of Rows or Flat is set: Rows for per-text results, Flat for a combined
// result or a bare single vector.
type RawEmbeddings struct {
	Rows [][]float32
	Flat []float32
}

// Backend turns a batch of texts into raw embedding output. The shapes it
// may return are reconciled by NormalizeShape, not here.
type Backend interface {
	EmbedBatch(ctx context.Context, texts []string) (RawEmbeddings, error)
}

// FromConfig selects the configured embedding backend.
func FromConfig(cfg config.Config) (Backend, error) {
	switch cfg.EmbedBackend {
	case "runtime", "":
		return NewRuntime(RuntimeConfig{
			BaseURL:  cfg.EmbedURL,
			Model:    cfg.EmbedModel,
			CacheDir: cfg.ModelCacheDir,
			Offline:  cfg.Offline,
		}), nil
	case "mock":
		return NewMockBackend(cfg.EmbedDim), nil
	default:
		return nil, fmt.Errorf("unsupported embed backend: %s", cfg.EmbedBackend)
	}
}

// NormalizeShape coerces a backend response into exactly n vectors of dim
// values, index-aligned with the inputs. It accepts three shapes: a list of
// n per-text vectors, one combined run of n*dim values to be sliced in input
// order, and a bare vector for the n=1 case. Anything else is an integrity
// failure, never silently truncated or padded.
func NormalizeShape(raw RawEmbeddings, n, dim int) ([][]float32, error) {
	var out [][]float32
	switch {
	case raw.Rows != nil:
		if len(raw.Rows) == 1 && n > 1 && len(raw.Rows[0]) == n*dim {
			out = sliceFlat(raw.Rows[0], n, dim)
			break
		}
		for i, row := range raw.Rows {
			if len(row) != dim {
				return nil, fmt.Errorf("%w: row %d has %d values, want %d", util.ErrEmbeddingShape, i, len(row), dim)
			}
		}
		out = raw.Rows
	case raw.Flat != nil:
		if len(raw.Flat) != n*dim {
			return nil, fmt.Errorf("%w: %d values for %d inputs of dim %d", util.ErrEmbeddingShape, len(raw.Flat), n, dim)
		}
		out = sliceFlat(raw.Flat, n, dim)
	default:
		return nil, fmt.Errorf("%w: empty response", util.ErrEmbeddingShape)
	}
	if len(out) != n {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", util.ErrEmbeddingCount, len(out), n)
	}
	return out, nil
}

func sliceFlat(flat []float32, n, dim int) [][]float32 {
	out := make([][]float32, n)
	for i := 0; i < n; i++ {
		out[i] = flat[i*dim : (i+1)*dim]
	}
	return out
}
