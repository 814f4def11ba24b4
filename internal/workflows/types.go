package workflows

type IngestRunInput struct {
	RunID   string `json:"run_id"`
	DocsDir string `json:"docs_dir"`
}

// IngestProgress is served through a workflow query while a run is active.
type IngestProgress struct {
	RunID       string            `json:"run_id"`
	Total       int               `json:"total"`
	Done        int               `json:"done"`
	Failed      int               `json:"failed"`
	PerDocument map[string]string `json:"per_document"`
}

type DocumentIngestInput struct {
	Path string `json:"path"`
}

type PageFailure struct {
	Page  int    `json:"page"`
	Error string `json:"error"`
}

const (
	StatusDone    = "done"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// DocumentReport records how one document fared, page faults included.
type DocumentReport struct {
	DocID        string        `json:"doc_id"`
	Filename     string        `json:"filename"`
	PageCount    int           `json:"page_count"`
	PagesOK      int           `json:"pages_ok"`
	PageFailures []PageFailure `json:"page_failures,omitempty"`
	Chunks       int           `json:"chunks"`
	Status       string        `json:"status"`
	Error        string        `json:"error,omitempty"`
}
