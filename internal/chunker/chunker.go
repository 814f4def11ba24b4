package chunker

import "strings"

const (
	DefaultSize    = 900
	DefaultOverlap = 120
)

// Chunker splits normalized page text into overlapping segments that prefer
// to end just after a sentence period.
type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultOverlap
		if overlap >= size {
			overlap = 0
		}
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split walks a cursor across the text. Each window ends at cursor+size, or
// earlier at the last period in the back half of the window so a sentence
// boundary wins over a hard cut without shrinking the chunk below half the
// target. Consecutive chunks share the trailing overlap runes; the cursor
// only skips the overlap when pulling back would stall it.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	n := len(runes)
	out := make([]string, 0, n/c.size+1)
	cursor := 0
	for cursor < n {
		end := cursor + c.size
		if end > n {
			end = n
		}
		if end < n {
			for i := end - 1; i > cursor+c.size/2; i-- {
				if runes[i] == '.' {
					end = i + 1
					break
				}
			}
		}
		part := strings.TrimSpace(string(runes[cursor:end]))
		if part != "" {
			out = append(out, part)
		}
		if end >= n {
			break
		}
		next := end - c.overlap
		if next <= cursor {
			next = end
		}
		cursor = next
	}
	return out
}
