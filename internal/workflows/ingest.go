// Package workflows orchestrates manual ingestion on Temporal. Documents are
// processed strictly one after another; inside a document, each page is
// isolated so a corrupt page costs that page, not the run.
package workflows

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"manualdesk/internal/activities"
	"manualdesk/internal/util"
)

const QueryGetIngestProgress = "GetIngestProgress"

func activityOptions(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		// every step is deterministic on its inputs, so a failure is
		// reported rather than retried
		RetryPolicy: &temporal.RetryPolicy{MaximumAttempts: 1},
	})
}

// IngestRunWorkflow walks the docs dir and runs one child workflow per
// document, sequentially, then writes the run report.
func IngestRunWorkflow(ctx workflow.Context, input IngestRunInput) (string, error) {
	logger := workflow.GetLogger(ctx)
	progress := IngestProgress{RunID: input.RunID, PerDocument: map[string]string{}}
	if err := workflow.SetQueryHandler(ctx, QueryGetIngestProgress, func() (IngestProgress, error) {
		return progress, nil
	}); err != nil {
		return "", err
	}

	actx := activityOptions(ctx)

	var listed activities.ListDocumentsOutput
	if err := workflow.ExecuteActivity(actx, "ListDocumentsActivity",
		activities.ListDocumentsInput{DocsDir: input.DocsDir}).Get(ctx, &listed); err != nil {
		return "", fmt.Errorf("list documents: %w", err)
	}
	progress.Total = len(listed.Paths)
	logger.Info("ingest run started", "run_id", input.RunID, "documents", progress.Total)

	var reports []DocumentReport
	for _, path := range listed.Paths {
		base := path[strings.LastIndex(path, "/")+1:]
		childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
			WorkflowID: "doc-" + input.RunID + "-" + sanitizeID(base),
		})
		var report DocumentReport
		if err := workflow.ExecuteChildWorkflow(childCtx, DocumentIngestWorkflow,
			DocumentIngestInput{Path: path}).Get(ctx, &report); err != nil {
			return "", fmt.Errorf("ingest %s: %w", base, err)
		}
		reports = append(reports, report)
		progress.PerDocument[report.Filename] = report.Status
		if report.Status == StatusFailed {
			progress.Failed++
		} else {
			progress.Done++
		}
		logger.Info("document finished", "filename", report.Filename,
			"status", report.Status, "chunks", report.Chunks)
	}

	summary := map[string]any{
		"run_id":    input.RunID,
		"total":     progress.Total,
		"done":      progress.Done,
		"failed":    progress.Failed,
		"documents": reports,
	}
	var written activities.WriteRunReportOutput
	if err := workflow.ExecuteActivity(actx, "WriteRunReportActivity",
		activities.WriteRunReportInput{RunID: input.RunID, Summary: summary}).Get(ctx, &written); err != nil {
		return "", fmt.Errorf("write run report: %w", err)
	}
	logger.Info("ingest run completed", "run_id", input.RunID, "report", written.Path)
	return "completed", nil
}

// DocumentIngestWorkflow ingests one document end to end. Faults come back
// in the report rather than as workflow errors, so one bad file never aborts
// the surrounding run.
func DocumentIngestWorkflow(ctx workflow.Context, input DocumentIngestInput) (DocumentReport, error) {
	logger := workflow.GetLogger(ctx)
	actx := activityOptions(ctx)

	var probe activities.ProbeDocumentOutput
	if err := workflow.ExecuteActivity(actx, "ProbeDocumentActivity",
		activities.ProbeDocumentInput{Path: input.Path}).Get(ctx, &probe); err != nil {
		return DocumentReport{
			Filename: input.Path[strings.LastIndex(input.Path, "/")+1:],
			Status:   StatusFailed,
			Error:    err.Error(),
		}, nil
	}
	report := DocumentReport{
		DocID:     probe.DocID,
		Filename:  probe.Filename,
		PageCount: probe.PageCount,
	}

	if err := workflow.ExecuteActivity(actx, "EnsureCollectionActivity").Get(ctx, nil); err != nil {
		report.Status = StatusFailed
		report.Error = err.Error()
		return report, nil
	}

	var pages []activities.PageText
	for page := 1; page <= probe.PageCount; page++ {
		var acquired activities.AcquirePageOutput
		err := workflow.ExecuteActivity(actx, "AcquirePageActivity",
			activities.AcquirePageInput{Path: input.Path, Page: page}).Get(ctx, &acquired)
		if err != nil {
			report.PageFailures = append(report.PageFailures, PageFailure{Page: page, Error: err.Error()})
			logger.Warn("page failed", "filename", probe.Filename, "page", page, "error", err)
			continue
		}
		pages = append(pages, activities.PageText{Page: page, Text: acquired.Text})
	}
	report.PagesOK = len(pages)
	if len(pages) == 0 {
		report.Status = StatusFailed
		report.Error = util.ErrNoPagesIngested.Error()
		return report, nil
	}

	var chunked activities.ChunkDocumentOutput
	if err := workflow.ExecuteActivity(actx, "ChunkDocumentActivity", activities.ChunkDocumentInput{
		DocID:    probe.DocID,
		Filename: probe.Filename,
		Pages:    pages,
	}).Get(ctx, &chunked); err != nil {
		report.Status = StatusFailed
		report.Error = err.Error()
		return report, nil
	}
	report.Chunks = len(chunked.Chunks)
	if len(chunked.Chunks) == 0 {
		report.Status = statusFor(report)
		return report, nil
	}

	texts := make([]string, len(chunked.Chunks))
	for i, c := range chunked.Chunks {
		texts[i] = c.Text
	}
	var embedded activities.EmbedChunksOutput
	if err := workflow.ExecuteActivity(actx, "EmbedChunksActivity",
		activities.EmbedChunksInput{Texts: texts}).Get(ctx, &embedded); err != nil {
		report.Status = StatusFailed
		report.Error = err.Error()
		return report, nil
	}

	if err := workflow.ExecuteActivity(actx, "UpsertChunksActivity", activities.UpsertChunksInput{
		Chunks:  chunked.Chunks,
		Vectors: embedded.Vectors,
	}).Get(ctx, nil); err != nil {
		report.Status = StatusFailed
		report.Error = err.Error()
		return report, nil
	}

	report.Status = statusFor(report)
	return report, nil
}

func statusFor(report DocumentReport) string {
	if len(report.PageFailures) > 0 {
		return StatusPartial
	}
	return StatusDone
}

// sanitizeID keeps workflow ids readable when filenames carry spaces or
// punctuation.
func sanitizeID(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '-'
		}
	}, s)
}
