package main

import (
	"context"
	"log"
	"time"

	"manualdesk/internal/activities"
	"manualdesk/internal/config"
	"manualdesk/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, err := activities.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	activities.Register(w, a)

	log.Printf("manualdesk worker listening on %s queue=%s extractor=%s vector_backend=%s",
		cfg.TemporalAddress, cfg.TemporalTaskQueue, cfg.Extractor, cfg.VectorBackend)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal(err)
	}
}
