// Package retrieval narrows a broad similarity result down to the few
// excerpts worth showing the language model, and derives the citations.
package retrieval

import (
	"sort"
	"strings"
	"unicode"

	"manualdesk/internal/models"
)

const (
	RoutedRetrieval = "retrieval"
	RoutedNoContext = "no_context"
)

// defogSynonyms are treated as one term: a question about any of them must
// keep chunks mentioning any other, since manuals use them interchangeably.
var defogSynonyms = []string{"defrost", "defog", "demist"}

// QuestionKeywords extracts the lexical gate terms from a question. When the
// question touches the defogging topic the whole synonym group is returned so
// the gate matches across vocabulary variants.
func QuestionKeywords(question string) []string {
	lower := strings.ToLower(question)
	for _, syn := range defogSynonyms {
		if strings.Contains(lower, syn) {
			return append([]string(nil), defogSynonyms...)
		}
	}
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var keywords []string
	for _, f := range fields {
		if len(f) >= 4 {
			keywords = append(keywords, f)
		}
	}
	return keywords
}

// Funnel holds the selection thresholds.
type Funnel struct {
	ScoreFloor  float64
	ContextCap  int
	CitationCap int
}

func New(scoreFloor float64, contextCap, citationCap int) Funnel {
	if contextCap <= 0 {
		contextCap = 6
	}
	if citationCap <= 0 {
		citationCap = 3
	}
	return Funnel{ScoreFloor: scoreFloor, ContextCap: contextCap, CitationCap: citationCap}
}

// Selection is what survives the funnel. Context and Citations are never nil.
type Selection struct {
	Context   []models.SearchHit
	Citations []models.Citation
	Routed    string
}

// Select runs the funnel stages in order: same-document gate, score floor,
// lexical gate, rank and cap. If every gate empties the pool, the single top
// hit is used so that a confident vector match is never answered with
// nothing.
func (f Funnel) Select(question string, hits []models.SearchHit) Selection {
	if len(hits) == 0 {
		return Selection{Context: []models.SearchHit{}, Citations: []models.Citation{}, Routed: RoutedNoContext}
	}
	top := topHit(hits)
	keywords := QuestionKeywords(question)

	pool := sameDocumentGate(hits, top)
	pool = scoreFloorGate(pool, f.ScoreFloor)
	pool = lexicalGate(pool, keywords)
	pool = rankAndCap(pool, f.ContextCap)
	if len(pool) == 0 {
		pool = []models.SearchHit{top}
	}
	return Selection{
		Context:   pool,
		Citations: f.citations(pool),
		Routed:    RoutedRetrieval,
	}
}

func topHit(hits []models.SearchHit) models.SearchHit {
	top := hits[0]
	for _, h := range hits[1:] {
		if h.Score > top.Score {
			top = h
		}
	}
	return top
}

// sameDocumentGate keeps only hits from the document the best match came
// from, so an answer never stitches together excerpts from two manuals.
func sameDocumentGate(hits []models.SearchHit, top models.SearchHit) []models.SearchHit {
	var out []models.SearchHit
	for _, h := range hits {
		if h.Filename == top.Filename {
			out = append(out, h)
		}
	}
	return out
}

func scoreFloorGate(hits []models.SearchHit, floor float64) []models.SearchHit {
	var out []models.SearchHit
	for _, h := range hits {
		if h.Score >= floor {
			out = append(out, h)
		}
	}
	return out
}

// lexicalGate keeps hits whose text contains at least one question keyword.
// A question with no usable keywords passes everything through.
func lexicalGate(hits []models.SearchHit, keywords []string) []models.SearchHit {
	if len(keywords) == 0 {
		return hits
	}
	var out []models.SearchHit
	for _, h := range hits {
		text := strings.ToLower(h.Text)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				out = append(out, h)
				break
			}
		}
	}
	return out
}

func rankAndCap(hits []models.SearchHit, cap int) []models.SearchHit {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > cap {
		hits = hits[:cap]
	}
	return hits
}

// citations dedupes (filename, page) pairs in first-seen order.
func (f Funnel) citations(hits []models.SearchHit) []models.Citation {
	seen := make(map[models.Citation]bool)
	out := []models.Citation{}
	for _, h := range hits {
		c := models.Citation{Filename: h.Filename, Page: h.Page}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if len(out) == f.CitationCap {
			break
		}
	}
	return out
}
