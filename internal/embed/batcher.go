package embed

import (
	"context"
	"fmt"

	"manualdesk/internal/util"
)

const (
	DefaultDim       = 384
	DefaultBatchSize = 24
)

// Batcher converts ordered texts into ordered fixed-dimension vectors.
// Batches are issued strictly one at a time so peak memory stays bounded
// when the embedding model runs next to the pipeline.
type Batcher struct {
	backend   Backend
	dim       int
	batchSize int
}

func NewBatcher(backend Backend, dim, batchSize int) *Batcher {
	if dim <= 0 {
		dim = DefaultDim
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Batcher{backend: backend, dim: dim, batchSize: batchSize}
}

func (b *Batcher) Dim() int {
	return b.dim
}

// EmbedTexts returns exactly one vector per input text, in input order.
func (b *Batcher) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		group := texts[start:end]
		raw, err := b.backend.EmbedBatch(ctx, group)
		if err != nil {
			return nil, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		vectors, err := NormalizeShape(raw, len(group), b.dim)
		if err != nil {
			return nil, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		out = append(out, vectors...)
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("%w: %d vectors for %d texts", util.ErrEmbeddingCount, len(out), len(texts))
	}
	return out, nil
}

// EmbedQuery embeds a single text.
func (b *Batcher) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := b.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
