package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// MockBackend derives deterministic unit vectors from the text content, so
// identical texts always land near each other without a running model.
type MockBackend struct {
	dim int
}

func NewMockBackend(dim int) *MockBackend {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &MockBackend{dim: dim}
}

func (m *MockBackend) EmbedBatch(_ context.Context, texts []string) (RawEmbeddings, error) {
	rows := make([][]float32, len(texts))
	for i, text := range texts {
		rows[i] = m.vector(text)
	}
	return RawEmbeddings{Rows: rows}, nil
}

func (m *MockBackend) vector(text string) []float32 {
	seed := sha256.Sum256([]byte(text))
	vec := make([]float32, m.dim)
	var sum float64
	for i := range vec {
		word := binary.BigEndian.Uint32(seed[(i*4)%28:])
		v := float32(word%2000)/1000.0 - 1.0
		// avoid the all-zero vector
		if i == 0 && v == 0 {
			v = 0.5
		}
		vec[i] = v
		sum += float64(v) * float64(v)
	}
	norm := float32(1.0 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= norm
	}
	return vec
}
