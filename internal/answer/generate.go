package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GenerateCompleter calls an Ollama-style generate endpoint, which takes a
// single flattened prompt instead of a message list.
type GenerateCompleter struct {
	baseURL string
	client  *http.Client
}

func NewGenerateCompleter(baseURL string) *GenerateCompleter {
	return &GenerateCompleter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *GenerateCompleter) Complete(ctx context.Context, messages []Message, params Params) (string, error) {
	var system string
	var prompt strings.Builder
	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		if prompt.Len() > 0 {
			prompt.WriteString("\n\n")
		}
		prompt.WriteString(m.Content)
	}
	body := map[string]any{
		"model":  params.Model,
		"system": system,
		"prompt": prompt.String(),
		"stream": false,
		"options": map[string]any{
			"temperature": params.Temperature,
			"num_predict": params.MaxTokens,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("generate: status %d: %s", resp.StatusCode, string(data))
	}
	var out struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return out.Response, nil
}
