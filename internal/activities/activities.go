// Package activities holds the side-effecting steps of the ingestion
// workflow. Each activity is small enough to be retried or skipped on its
// own; orchestration lives in the workflows package.
package activities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"manualdesk/internal/acquire"
	"manualdesk/internal/chunker"
	"manualdesk/internal/config"
	"manualdesk/internal/embed"
	"manualdesk/internal/models"
	"manualdesk/internal/textnorm"
	"manualdesk/internal/util"
	"manualdesk/internal/vectorstore"
)

type Activities struct {
	cfg      config.Config
	acquirer *acquire.Acquirer
	chunker  *chunker.Chunker
	batcher  *embed.Batcher
	store    vectorstore.Store
}

func New(ctx context.Context, cfg config.Config) (*Activities, error) {
	backend, err := embed.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := vectorstore.FromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Activities{
		cfg: cfg,
		acquirer: acquire.New(acquire.ExecRunner{}, acquire.Config{
			Extractor:      cfg.Extractor,
			MinDirectText:  cfg.MinDirectText,
			RasterDPI:      cfg.RasterDPI,
			OCRLanguage:    cfg.OCRLanguage,
			OCRPageSegMode: cfg.OCRPageSegMode,
		}),
		chunker: chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		batcher: embed.NewBatcher(backend, cfg.EmbedDim, cfg.EmbedBatch),
		store:   store,
	}, nil
}

// ListDocumentsActivity returns the PDF paths under the docs dir, sorted by name so
// runs over the same corpus process documents in the same order.
func (a *Activities) ListDocumentsActivity(_ context.Context, in ListDocumentsInput) (ListDocumentsOutput, error) {
	dir := in.DocsDir
	if dir == "" {
		dir = a.cfg.DocsDir
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ListDocumentsOutput{}, fmt.Errorf("list docs dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return ListDocumentsOutput{Paths: paths}, nil
}

func (a *Activities) ProbeDocumentActivity(ctx context.Context, in ProbeDocumentInput) (ProbeDocumentOutput, error) {
	count, err := a.acquirer.PageCount(ctx, in.Path)
	if err != nil {
		return ProbeDocumentOutput{}, err
	}
	filename := filepath.Base(in.Path)
	return ProbeDocumentOutput{
		DocID:     util.DocIDFromFilename(filename),
		Filename:  filename,
		PageCount: count,
	}, nil
}

func (a *Activities) EnsureCollectionActivity(ctx context.Context) error {
	return a.store.EnsureCollection(ctx)
}

func (a *Activities) AcquirePageActivity(ctx context.Context, in AcquirePageInput) (AcquirePageOutput, error) {
	page, err := a.acquirer.AcquirePage(ctx, in.Path, in.Page)
	if err != nil {
		return AcquirePageOutput{}, err
	}
	return AcquirePageOutput{Text: page.RawText, Method: page.Method}, nil
}

// ChunkDocumentActivity normalizes each page's text and splits it into chunks. Pages
// that normalize to nothing produce no chunks.
func (a *Activities) ChunkDocumentActivity(_ context.Context, in ChunkDocumentInput) (ChunkDocumentOutput, error) {
	var chunks []models.Chunk
	for _, page := range in.Pages {
		normalized := textnorm.Normalize(page.Text)
		if normalized == "" {
			continue
		}
		for _, text := range a.chunker.Split(normalized) {
			chunks = append(chunks, models.Chunk{
				ID:       uuid.NewString(),
				DocID:    in.DocID,
				Filename: in.Filename,
				Page:     page.Page,
				Text:     text,
			})
		}
	}
	return ChunkDocumentOutput{Chunks: chunks}, nil
}

func (a *Activities) EmbedChunksActivity(ctx context.Context, in EmbedChunksInput) (EmbedChunksOutput, error) {
	vectors, err := a.batcher.EmbedTexts(ctx, in.Texts)
	if err != nil {
		return EmbedChunksOutput{}, err
	}
	return EmbedChunksOutput{Vectors: vectors}, nil
}

func (a *Activities) UpsertChunksActivity(ctx context.Context, in UpsertChunksInput) error {
	if len(in.Chunks) != len(in.Vectors) {
		return fmt.Errorf("%w: %d chunks, %d vectors", util.ErrEmbeddingCount, len(in.Chunks), len(in.Vectors))
	}
	points := make([]vectorstore.Point, len(in.Chunks))
	for i, c := range in.Chunks {
		points[i] = vectorstore.Point{ID: c.ID, Vector: in.Vectors[i], Chunk: c}
	}
	return a.store.Upsert(ctx, points)
}

func (a *Activities) WriteRunReportActivity(_ context.Context, in WriteRunReportInput) (WriteRunReportOutput, error) {
	path := util.SafeJoin(a.cfg.ReportDir, in.RunID+".json")
	if err := util.WriteJSONAtomic(path, in.Summary); err != nil {
		return WriteRunReportOutput{}, err
	}
	return WriteRunReportOutput{Path: path}, nil
}
