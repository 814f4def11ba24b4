// Package api serves the question answering endpoint.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"manualdesk/internal/answer"
	"manualdesk/internal/config"
	"manualdesk/internal/embed"
	"manualdesk/internal/retrieval"
	"manualdesk/internal/vectorstore"
)

type Server struct {
	cfg       config.Config
	batcher   *embed.Batcher
	store     vectorstore.Store
	funnel    retrieval.Funnel
	completer answer.Completer
}

// NewServer wires the query-time pipeline from configuration.
func NewServer(ctx context.Context, cfg config.Config) (*Server, error) {
	backend, err := embed.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := vectorstore.FromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	completer, err := answer.NewCompleter(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:       cfg,
		batcher:   embed.NewBatcher(backend, cfg.EmbedDim, cfg.EmbedBatch),
		store:     store,
		funnel:    retrieval.New(cfg.ScoreFloor, cfg.ContextCap, cfg.CitationCap),
		completer: completer,
	}, nil
}

func newServer(cfg config.Config, batcher *embed.Batcher, store vectorstore.Store, completer answer.Completer) *Server {
	return &Server{
		cfg:       cfg,
		batcher:   batcher,
		store:     store,
		funnel:    retrieval.New(cfg.ScoreFloor, cfg.ContextCap, cfg.CitationCap),
		completer: completer,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/debug/embed", s.handleDebugEmbed)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeErr(w, http.StatusBadRequest, "question is required")
		return
	}
	ctx := r.Context()

	vector, err := s.batcher.EmbedQuery(ctx, question)
	if err != nil {
		log.Printf("ask: embed query: %v", err)
		writeErr(w, http.StatusInternalServerError, "embedding failed")
		return
	}
	hits, err := s.store.Search(ctx, vector, s.cfg.SearchLimit)
	if err != nil {
		log.Printf("ask: search: %v", err)
		writeErr(w, http.StatusInternalServerError, "search failed")
		return
	}
	sel := s.funnel.Select(question, hits)

	var text string
	if len(sel.Context) > 0 {
		messages := answer.BuildMessages(question, sel.Context)
		text, err = s.completer.Complete(ctx, messages, answer.Params{
			Model:       s.cfg.CompletionModel,
			MaxTokens:   s.cfg.MaxTokens,
			Temperature: s.cfg.Temperature,
		})
		if err != nil {
			log.Printf("ask: completion: %v", err)
			writeErr(w, http.StatusInternalServerError, "completion failed")
			return
		}
	} else {
		text = "The indexed manuals do not contain anything relevant to this question."
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"answer":    text,
		"routed":    sel.Routed,
		"citations": sel.Citations,
		"used":      sel.Context,
		"backend":   s.cfg.CompletionBackend,
		"model":     s.cfg.CompletionModel,
	})
}

func (s *Server) handleDebugEmbed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeErr(w, http.StatusBadRequest, "text is required")
		return
	}
	vector, err := s.batcher.EmbedQuery(r.Context(), req.Text)
	if err != nil {
		log.Printf("debug embed: %v", err)
		writeErr(w, http.StatusInternalServerError, "embedding failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dim":    len(vector),
		"vector": vector,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
