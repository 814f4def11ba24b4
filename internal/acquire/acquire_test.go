package acquire

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"manualdesk/internal/models"
	"manualdesk/internal/util"
)

// scriptedRunner answers per tool name and records every invocation.
type scriptedRunner struct {
	outputs map[string][]byte
	errs    map[string]error
	calls   []string
}

func (r *scriptedRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, name)
	if name == "pdftoppm" && r.errs["pdftoppm"] == nil {
		// pdftoppm writes images next to the prefix given as its last arg.
		prefix := args[len(args)-1]
		if err := os.WriteFile(prefix+"-1.png", []byte("png"), 0o644); err != nil {
			return nil, err
		}
	}
	if err := r.errs[name]; err != nil {
		return nil, err
	}
	return r.outputs[name], nil
}

func (r *scriptedRunner) count(name string) int {
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

func TestPageCountParsesPdfinfo(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string][]byte{
		"pdfinfo": []byte("Title:          Owner Manual\nPages:          212\nEncrypted:      no\n"),
	}}
	a := New(runner, Config{})
	n, err := a.PageCount(context.Background(), "manual.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 212 {
		t.Fatalf("expected 212 pages, got %d", n)
	}
}

func TestPageCountToolFailure(t *testing.T) {
	runner := &scriptedRunner{errs: map[string]error{"pdfinfo": errors.New("exit status 1")}}
	a := New(runner, Config{})
	if _, err := a.PageCount(context.Background(), "manual.pdf"); err == nil {
		t.Fatal("expected error from failing pdfinfo")
	}
}

func TestAcquirePageDirectSkipsRecognition(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string][]byte{
		"pdftotext": []byte("To defrost the windshield, turn the mode dial to the defrost position."),
	}}
	a := New(runner, Config{})
	page, err := a.AcquirePage(context.Background(), "manual.pdf", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Method != models.ExtractionDirect {
		t.Fatalf("expected direct extraction, got %s", page.Method)
	}
	if page.Index != 3 {
		t.Fatalf("expected page index 3, got %d", page.Index)
	}
	if runner.count("pdftoppm") != 0 || runner.count("tesseract") != 0 {
		t.Fatalf("recognition path must not run, calls: %v", runner.calls)
	}
}

func TestAcquirePageThinTextFallsBackOnce(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string][]byte{
		"pdftotext": []byte("  \n12\n"),
		"tesseract": []byte("WARNING: Do not open the radiator cap while the engine is hot."),
	}}
	a := New(runner, Config{})
	page, err := a.AcquirePage(context.Background(), "manual.pdf", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Method != models.ExtractionRecognized {
		t.Fatalf("expected recognized extraction, got %s", page.Method)
	}
	if !strings.Contains(page.RawText, "radiator cap") {
		t.Fatalf("unexpected recognized text: %q", page.RawText)
	}
	if runner.count("pdftoppm") != 1 || runner.count("tesseract") != 1 {
		t.Fatalf("expected exactly one raster and one recognition call, calls: %v", runner.calls)
	}
}

func TestAcquirePageEmptyRecognitionIsUnusable(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string][]byte{
		"pdftotext": []byte(""),
		"tesseract": []byte("   \n"),
	}}
	a := New(runner, Config{})
	_, err := a.AcquirePage(context.Background(), "manual.pdf", 4)
	if !errors.Is(err, util.ErrNoUsableText) {
		t.Fatalf("expected no-usable-text error, got %v", err)
	}
}

func TestAcquirePageRecognitionFailureIsFatalForPage(t *testing.T) {
	runner := &scriptedRunner{
		outputs: map[string][]byte{"pdftotext": []byte("short")},
		errs:    map[string]error{"tesseract": errors.New("exit status 1")},
	}
	a := New(runner, Config{})
	if _, err := a.AcquirePage(context.Background(), "manual.pdf", 2); err == nil {
		t.Fatal("expected recognition failure to surface")
	}
}
