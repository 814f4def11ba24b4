package models

// ExtractionMethod records which path produced a page's text.
type ExtractionMethod string

const (
	ExtractionDirect     ExtractionMethod = "direct"
	ExtractionRecognized ExtractionMethod = "recognized"
)

// Page is one page of a source document, produced once during ingestion.
type Page struct {
	Index   int              `json:"index"`
	RawText string           `json:"raw_text"`
	Method  ExtractionMethod `json:"method"`
}

// Document groups the pages and chunks that share a source file. It is not
// persisted on its own; chunks carry its identity through DocID.
type Document struct {
	ID        string `json:"doc_id"`
	Filename  string `json:"filename"`
	PageCount int    `json:"page_count"`
}

// Chunk is the unit that gets embedded, indexed and retrieved.
type Chunk struct {
	ID       string `json:"chunk_id"`
	DocID    string `json:"doc_id"`
	Filename string `json:"filename"`
	Page     int    `json:"page"`
	Text     string `json:"text"`
}

// SearchHit is a chunk returned by a similarity query, with its score.
type SearchHit struct {
	DocID    string  `json:"doc_id"`
	Filename string  `json:"filename"`
	Page     int     `json:"page"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

// Citation points a reader at the source page backing an answer.
type Citation struct {
	Filename string `json:"filename"`
	Page     int    `json:"page"`
}
