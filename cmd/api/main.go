package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"manualdesk/internal/api"
	"manualdesk/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	h, err := api.NewServer(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("manualdesk api listening on %s vector_backend=%s completion_backend=%s model=%s",
		cfg.APIAddr, cfg.VectorBackend, cfg.CompletionBackend, cfg.CompletionModel)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
