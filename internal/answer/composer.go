// Package answer turns selected excerpts into a grounded completion request
// and talks to the completion backend.
package answer

import (
	"context"
	"fmt"
	"strings"

	"manualdesk/internal/config"
	"manualdesk/internal/models"
)

const systemPrompt = `You are a careful assistant answering questions about product manuals.
Answer using ONLY the numbered excerpts provided. Cite every claim with the
bracketed source of the excerpt it comes from, in the form [filename p.X].
If the excerpts do not contain the answer, say that the manual does not
cover it. Do not invent procedures, part numbers, or settings.`

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Params struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Completer produces one completion for a prepared conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message, params Params) (string, error)
}

// NewCompleter selects the configured completion backend.
func NewCompleter(cfg config.Config) (Completer, error) {
	switch cfg.CompletionBackend {
	case "chat", "":
		return NewChatCompleter(cfg.ChatURL, cfg.ChatAPIKey), nil
	case "generate":
		return NewGenerateCompleter(cfg.GenerateURL), nil
	default:
		return nil, fmt.Errorf("unsupported completion backend: %s", cfg.CompletionBackend)
	}
}

// BuildMessages lays out the excerpts as a numbered list with their sources,
// followed by the question.
func BuildMessages(question string, excerpts []models.SearchHit) []Message {
	var b strings.Builder
	for i, h := range excerpts {
		fmt.Fprintf(&b, "%d. [%s p.%d] %s\n", i+1, h.Filename, h.Page, h.Text)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}
