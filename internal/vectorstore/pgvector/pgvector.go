// Package pgvector stores chunk embeddings in Postgres with the vector
// extension, as an alternative to the default Qdrant backend.
package pgvector

import (
	"context"
	"fmt"

	"manualdesk/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"
)

type Config struct {
	URL   string
	Table string
	Dim   int
}

type Store struct {
	pool *pgxpool.Pool
	cfg  Config
}

type Row struct {
	ID       string
	DocID    string
	Filename string
	Page     int
	Text     string
	Vector   []float32
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, cfg: cfg}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureTable creates the chunk table and its cosine index when they do not
// exist yet. Existing data is left untouched.
func (s *Store) EnsureTable(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("enable vector extension: %w", err)
	}
	var reg *string
	if err := s.pool.QueryRow(ctx, "SELECT to_regclass($1)::text", s.cfg.Table).Scan(&reg); err != nil {
		return fmt.Errorf("probe table %s: %w", s.cfg.Table, err)
	}
	if reg != nil {
		return nil
	}
	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id UUID PRIMARY KEY,
		doc_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		page INT NOT NULL,
		text TEXT NOT NULL,
		embedding vector(%d) NOT NULL
	)`, s.cfg.Table, s.cfg.Dim)
	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create table %s: %w", s.cfg.Table, err)
	}
	createIndex := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING ivfflat (embedding vector_cosine_ops)",
		s.cfg.Table, s.cfg.Table)
	if _, err := s.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("create index on %s: %w", s.cfg.Table, err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, rows []Row) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`INSERT INTO %s (id, doc_id, filename, page, text, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			doc_id = EXCLUDED.doc_id,
			filename = EXCLUDED.filename,
			page = EXCLUDED.page,
			text = EXCLUDED.text,
			embedding = EXCLUDED.embedding`, s.cfg.Table)
	for _, r := range rows {
		if _, err := tx.Exec(ctx, stmt,
			r.ID, r.DocID, r.Filename, r.Page, r.Text, pgv.NewVector(r.Vector)); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]models.SearchHit, error) {
	query := fmt.Sprintf(`SELECT doc_id, filename, page, text,
		1 - (embedding <=> $1) AS score
		FROM %s ORDER BY embedding <=> $1 LIMIT $2`, s.cfg.Table)
	rows, err := s.pool.Query(ctx, query, pgv.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var hits []models.SearchHit
	for rows.Next() {
		var h models.SearchHit
		if err := rows.Scan(&h.DocID, &h.Filename, &h.Page, &h.Text, &h.Score); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search rows: %w", err)
	}
	return hits, nil
}
