// Package vectorstore persists chunk embeddings and serves similarity search.
package vectorstore

import (
	"context"
	"fmt"

	"manualdesk/internal/config"
	"manualdesk/internal/models"
	"manualdesk/internal/vectorstore/pgvector"
	"manualdesk/internal/vectorstore/qdrant"
)

// Point is one chunk plus its embedding, keyed by the chunk's UUID.
type Point struct {
	ID     string
	Vector []float32
	Chunk  models.Chunk
}

// Store is the persistence surface the pipeline and API depend on.
type Store interface {
	// EnsureCollection creates the collection when it does not exist and is
	// a no-op when it does. It never drops data.
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, points []Point) error
	Search(ctx context.Context, vector []float32, limit int) ([]models.SearchHit, error)
}

// FromConfig selects the configured vector store backend.
func FromConfig(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.VectorBackend {
	case "qdrant", "":
		return newQdrantStore(cfg), nil
	case "pgvector":
		return newPgvectorStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported vector backend: %s", cfg.VectorBackend)
	}
}

type qdrantStore struct {
	client *qdrant.Client
}

func newQdrantStore(cfg config.Config) *qdrantStore {
	return &qdrantStore{client: qdrant.NewClient(qdrant.Config{
		BaseURL:    cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.Collection,
		Dim:        cfg.EmbedDim,
	})}
}

func (s *qdrantStore) EnsureCollection(ctx context.Context) error {
	return s.client.EnsureCollection(ctx)
}

func (s *qdrantStore) Upsert(ctx context.Context, points []Point) error {
	qp := make([]qdrant.Point, len(points))
	for i, p := range points {
		qp[i] = qdrant.Point{
			ID:     p.ID,
			Vector: p.Vector,
			Payload: qdrant.Payload{
				DocID:    p.Chunk.DocID,
				Filename: p.Chunk.Filename,
				Page:     p.Chunk.Page,
				Text:     p.Chunk.Text,
			},
		}
	}
	return s.client.Upsert(ctx, qp)
}

func (s *qdrantStore) Search(ctx context.Context, vector []float32, limit int) ([]models.SearchHit, error) {
	return s.client.Search(ctx, vector, limit)
}

type pgvectorStore struct {
	store *pgvector.Store
}

func newPgvectorStore(ctx context.Context, cfg config.Config) (*pgvectorStore, error) {
	st, err := pgvector.New(ctx, pgvector.Config{
		URL:   cfg.PostgresURL,
		Table: cfg.Collection,
		Dim:   cfg.EmbedDim,
	})
	if err != nil {
		return nil, err
	}
	return &pgvectorStore{store: st}, nil
}

func (s *pgvectorStore) EnsureCollection(ctx context.Context) error {
	return s.store.EnsureTable(ctx)
}

func (s *pgvectorStore) Upsert(ctx context.Context, points []Point) error {
	rows := make([]pgvector.Row, len(points))
	for i, p := range points {
		rows[i] = pgvector.Row{
			ID:       p.ID,
			DocID:    p.Chunk.DocID,
			Filename: p.Chunk.Filename,
			Page:     p.Chunk.Page,
			Text:     p.Chunk.Text,
			Vector:   p.Vector,
		}
	}
	return s.store.Upsert(ctx, rows)
}

func (s *pgvectorStore) Search(ctx context.Context, vector []float32, limit int) ([]models.SearchHit, error) {
	return s.store.Search(ctx, vector, limit)
}
