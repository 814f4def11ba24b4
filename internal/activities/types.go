package activities

import "manualdesk/internal/models"

type ListDocumentsInput struct {
	DocsDir string `json:"docs_dir"`
}

type ListDocumentsOutput struct {
	Paths []string `json:"paths"`
}

type ProbeDocumentInput struct {
	Path string `json:"path"`
}

type ProbeDocumentOutput struct {
	DocID     string `json:"doc_id"`
	Filename  string `json:"filename"`
	PageCount int    `json:"page_count"`
}

type AcquirePageInput struct {
	Path string `json:"path"`
	Page int    `json:"page"`
}

type AcquirePageOutput struct {
	Text   string                  `json:"text"`
	Method models.ExtractionMethod `json:"method"`
}

type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

type ChunkDocumentInput struct {
	DocID    string     `json:"doc_id"`
	Filename string     `json:"filename"`
	Pages    []PageText `json:"pages"`
}

type ChunkDocumentOutput struct {
	Chunks []models.Chunk `json:"chunks"`
}

type EmbedChunksInput struct {
	Texts []string `json:"texts"`
}

type EmbedChunksOutput struct {
	Vectors [][]float32 `json:"vectors"`
}

type UpsertChunksInput struct {
	Chunks  []models.Chunk `json:"chunks"`
	Vectors [][]float32    `json:"vectors"`
}

type WriteRunReportInput struct {
	RunID   string         `json:"run_id"`
	Summary map[string]any `json:"summary"`
}

type WriteRunReportOutput struct {
	Path string `json:"path"`
}
