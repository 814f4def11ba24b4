// Command ingest starts an ingestion run on the Temporal worker and follows
// its progress until it completes.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"manualdesk/internal/config"
	"manualdesk/internal/workflows"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	runID := uuid.NewString()[:8]
	ctx := context.Background()
	we, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                    "ingest-" + runID,
		TaskQueue:             cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflows.IngestRunWorkflow, workflows.IngestRunInput{RunID: runID, DocsDir: cfg.DocsDir})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("started run %s (workflow %s)\n", runID, we.GetID())

	done := make(chan error, 1)
	go func() {
		var out string
		done <- we.Get(ctx, &out)
	}()

	var bar *progressbar.ProgressBar
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	var last workflows.IngestProgress
	for {
		select {
		case err := <-done:
			if err != nil {
				log.Fatal(err)
			}
			if bar != nil {
				_ = bar.Finish()
				fmt.Println()
			}
			printSummary(queryProgress(ctx, c, we.GetID(), last))
			return
		case <-ticker.C:
			progress := queryProgress(ctx, c, we.GetID(), last)
			last = progress
			if progress.Total == 0 {
				continue
			}
			if bar == nil {
				bar = getProgressBar(progress.Total)
			}
			_ = bar.Set(progress.Done + progress.Failed)
		}
	}
}

func queryProgress(ctx context.Context, c client.Client, workflowID string, fallback workflows.IngestProgress) workflows.IngestProgress {
	resp, err := c.QueryWorkflow(ctx, workflowID, "", workflows.QueryGetIngestProgress)
	if err != nil {
		return fallback
	}
	var progress workflows.IngestProgress
	if err := resp.Get(&progress); err != nil {
		return fallback
	}
	return progress
}

func getProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString("ingesting manuals")),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func printSummary(progress workflows.IngestProgress) {
	fmt.Printf("run %s: %d documents, %s done, %s failed\n",
		progress.RunID, progress.Total,
		color.GreenString("%d", progress.Done),
		color.RedString("%d", progress.Failed))
	for filename, status := range progress.PerDocument {
		switch status {
		case workflows.StatusDone:
			fmt.Printf("  %s %s\n", color.GreenString("ok"), filename)
		case workflows.StatusPartial:
			fmt.Printf("  %s %s\n", color.YellowString("partial"), filename)
		default:
			fmt.Printf("  %s %s\n", color.RedString("failed"), filename)
		}
	}
}
