package workflows

import (
	"context"
	"errors"
	"testing"

	"manualdesk/internal/activities"
	"manualdesk/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerDocumentActivities(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "ProbeDocumentActivity", func(context.Context, activities.ProbeDocumentInput) (activities.ProbeDocumentOutput, error) {
		return activities.ProbeDocumentOutput{}, nil
	})
	registerActivityName(env, "EnsureCollectionActivity", func(context.Context) error { return nil })
	registerActivityName(env, "AcquirePageActivity", func(context.Context, activities.AcquirePageInput) (activities.AcquirePageOutput, error) {
		return activities.AcquirePageOutput{}, nil
	})
	registerActivityName(env, "ChunkDocumentActivity", func(context.Context, activities.ChunkDocumentInput) (activities.ChunkDocumentOutput, error) {
		return activities.ChunkDocumentOutput{}, nil
	})
	registerActivityName(env, "EmbedChunksActivity", func(context.Context, activities.EmbedChunksInput) (activities.EmbedChunksOutput, error) {
		return activities.EmbedChunksOutput{}, nil
	})
	registerActivityName(env, "UpsertChunksActivity", func(context.Context, activities.UpsertChunksInput) error { return nil })
}

func TestDocumentIngestWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentIngestWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("ProbeDocumentActivity", mock.Anything, activities.ProbeDocumentInput{Path: "/docs/civic.pdf"}).
		Return(activities.ProbeDocumentOutput{DocID: "abc123def456", Filename: "civic.pdf", PageCount: 2}, nil)
	env.OnActivity("EnsureCollectionActivity", mock.Anything).Return(nil)
	env.OnActivity("AcquirePageActivity", mock.Anything, mock.Anything).
		Return(activities.AcquirePageOutput{Text: "Check the tire pressure monthly.", Method: models.ExtractionDirect}, nil)
	env.OnActivity("ChunkDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.ChunkDocumentOutput{Chunks: []models.Chunk{
			{ID: "c1", DocID: "abc123def456", Filename: "civic.pdf", Page: 1, Text: "Check the tire pressure monthly."},
		}}, nil)
	env.OnActivity("EmbedChunksActivity", mock.Anything, mock.Anything).
		Return(activities.EmbedChunksOutput{Vectors: [][]float32{{0.1, 0.2}}}, nil)
	env.OnActivity("UpsertChunksActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(DocumentIngestWorkflow, DocumentIngestInput{Path: "/docs/civic.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var report DocumentReport
	require.NoError(t, env.GetWorkflowResult(&report))
	require.Equal(t, StatusDone, report.Status)
	require.Equal(t, 2, report.PagesOK)
	require.Equal(t, 1, report.Chunks)
	require.Empty(t, report.PageFailures)
}

func TestDocumentIngestWorkflowPageFaultIsIsolated(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentIngestWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("ProbeDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.ProbeDocumentOutput{DocID: "abc123def456", Filename: "civic.pdf", PageCount: 3}, nil)
	env.OnActivity("EnsureCollectionActivity", mock.Anything).Return(nil)
	env.OnActivity("AcquirePageActivity", mock.Anything, activities.AcquirePageInput{Path: "/docs/civic.pdf", Page: 2}).
		Return(activities.AcquirePageOutput{}, errors.New("optical recognition failed"))
	env.OnActivity("AcquirePageActivity", mock.Anything, mock.Anything).
		Return(activities.AcquirePageOutput{Text: "page text", Method: models.ExtractionDirect}, nil)
	env.OnActivity("ChunkDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.ChunkDocumentOutput{Chunks: []models.Chunk{{ID: "c1", Text: "page text"}}}, nil)
	env.OnActivity("EmbedChunksActivity", mock.Anything, mock.Anything).
		Return(activities.EmbedChunksOutput{Vectors: [][]float32{{0.1}}}, nil)
	env.OnActivity("UpsertChunksActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(DocumentIngestWorkflow, DocumentIngestInput{Path: "/docs/civic.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var report DocumentReport
	require.NoError(t, env.GetWorkflowResult(&report))
	require.Equal(t, StatusPartial, report.Status)
	require.Equal(t, 2, report.PagesOK)
	require.Len(t, report.PageFailures, 1)
	require.Equal(t, 2, report.PageFailures[0].Page)
}

func TestDocumentIngestWorkflowAllPagesFail(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentIngestWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("ProbeDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.ProbeDocumentOutput{DocID: "abc123def456", Filename: "scan.pdf", PageCount: 2}, nil)
	env.OnActivity("EnsureCollectionActivity", mock.Anything).Return(nil)
	env.OnActivity("AcquirePageActivity", mock.Anything, mock.Anything).
		Return(activities.AcquirePageOutput{}, errors.New("optical recognition failed"))

	env.ExecuteWorkflow(DocumentIngestWorkflow, DocumentIngestInput{Path: "/docs/scan.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var report DocumentReport
	require.NoError(t, env.GetWorkflowResult(&report))
	require.Equal(t, StatusFailed, report.Status)
	require.Equal(t, 0, report.PagesOK)
	require.Len(t, report.PageFailures, 2)
}

func TestDocumentIngestWorkflowProbeFailureReported(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentIngestWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("ProbeDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.ProbeDocumentOutput{}, errors.New("not a PDF"))

	env.ExecuteWorkflow(DocumentIngestWorkflow, DocumentIngestInput{Path: "/docs/broken.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var report DocumentReport
	require.NoError(t, env.GetWorkflowResult(&report))
	require.Equal(t, StatusFailed, report.Status)
	require.Equal(t, "broken.pdf", report.Filename)
	require.Contains(t, report.Error, "not a PDF")
}

func TestIngestRunWorkflowSequentialRun(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(IngestRunWorkflow)
	env.RegisterWorkflow(DocumentIngestWorkflow)
	registerDocumentActivities(env)
	registerActivityName(env, "ListDocumentsActivity", func(context.Context, activities.ListDocumentsInput) (activities.ListDocumentsOutput, error) {
		return activities.ListDocumentsOutput{}, nil
	})
	registerActivityName(env, "WriteRunReportActivity", func(context.Context, activities.WriteRunReportInput) (activities.WriteRunReportOutput, error) {
		return activities.WriteRunReportOutput{}, nil
	})

	env.OnActivity("ListDocumentsActivity", mock.Anything, mock.Anything).
		Return(activities.ListDocumentsOutput{Paths: []string{"/docs/accord.pdf", "/docs/civic.pdf"}}, nil)
	env.OnActivity("ProbeDocumentActivity", mock.Anything, activities.ProbeDocumentInput{Path: "/docs/accord.pdf"}).
		Return(activities.ProbeDocumentOutput{}, errors.New("not a PDF"))
	env.OnActivity("ProbeDocumentActivity", mock.Anything, activities.ProbeDocumentInput{Path: "/docs/civic.pdf"}).
		Return(activities.ProbeDocumentOutput{DocID: "abc123def456", Filename: "civic.pdf", PageCount: 1}, nil)
	env.OnActivity("EnsureCollectionActivity", mock.Anything).Return(nil)
	env.OnActivity("AcquirePageActivity", mock.Anything, mock.Anything).
		Return(activities.AcquirePageOutput{Text: "text", Method: models.ExtractionDirect}, nil)
	env.OnActivity("ChunkDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.ChunkDocumentOutput{Chunks: []models.Chunk{{ID: "c1", Text: "text"}}}, nil)
	env.OnActivity("EmbedChunksActivity", mock.Anything, mock.Anything).
		Return(activities.EmbedChunksOutput{Vectors: [][]float32{{0.1}}}, nil)
	env.OnActivity("UpsertChunksActivity", mock.Anything, mock.Anything).Return(nil)

	var gotSummary activities.WriteRunReportInput
	env.OnActivity("WriteRunReportActivity", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotSummary = args.Get(1).(activities.WriteRunReportInput)
		}).
		Return(activities.WriteRunReportOutput{Path: "/reports/run1.json"}, nil)

	env.ExecuteWorkflow(IngestRunWorkflow, IngestRunInput{RunID: "run1", DocsDir: "/docs"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "completed", out)
	require.Equal(t, "run1", gotSummary.RunID)
	// numbers in the summary map come back as float64 after serialization
	require.EqualValues(t, 2, gotSummary.Summary["total"])
	require.EqualValues(t, 1, gotSummary.Summary["done"])
	require.EqualValues(t, 1, gotSummary.Summary["failed"])
}
