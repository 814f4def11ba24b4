package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"manualdesk/internal/models"
	"manualdesk/internal/util"

	"github.com/ledongthuc/pdf"
)

const (
	ExtractorPoppler = "poppler"
	ExtractorNative  = "native"
)

type Config struct {
	Extractor      string
	MinDirectText  int
	RasterDPI      int
	OCRLanguage    string
	OCRPageSegMode int
}

// Acquirer produces the best-effort text for a single page: direct
// extraction first, raster plus optical recognition when the direct text is
// too thin to be usable.
type Acquirer struct {
	run Runner
	cfg Config
}

func New(run Runner, cfg Config) *Acquirer {
	if cfg.Extractor == "" {
		cfg.Extractor = ExtractorPoppler
	}
	if cfg.MinDirectText <= 0 {
		cfg.MinDirectText = 30
	}
	if cfg.RasterDPI <= 0 {
		cfg.RasterDPI = 300
	}
	if cfg.OCRLanguage == "" {
		cfg.OCRLanguage = "eng"
	}
	if cfg.OCRPageSegMode <= 0 {
		cfg.OCRPageSegMode = 6
	}
	return &Acquirer{run: run, cfg: cfg}
}

// PageCount probes how many pages the document has.
func (a *Acquirer) PageCount(ctx context.Context, path string) (int, error) {
	if a.cfg.Extractor == ExtractorNative {
		f, r, err := pdf.Open(path)
		if err != nil {
			return 0, fmt.Errorf("open pdf %s: %w", path, err)
		}
		defer f.Close()
		return r.NumPage(), nil
	}
	out, err := a.run.Run(ctx, "pdfinfo", path)
	if err != nil {
		return 0, fmt.Errorf("probe page count: %w", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("parse page count %q: %w", line, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("probe page count: no Pages line in pdfinfo output")
}

// AcquirePage returns the page's raw text and which path produced it.
func (a *Acquirer) AcquirePage(ctx context.Context, path string, page int) (models.Page, error) {
	text, err := a.directText(ctx, path, page)
	if err != nil {
		return models.Page{}, err
	}
	if len(strings.TrimSpace(text)) >= a.cfg.MinDirectText {
		return models.Page{Index: page, RawText: text, Method: models.ExtractionDirect}, nil
	}
	recognized, err := a.recognizePage(ctx, path, page)
	if err != nil {
		return models.Page{}, fmt.Errorf("%w: page %d: %v", util.ErrRecognitionFailure, page, err)
	}
	if strings.TrimSpace(recognized) == "" {
		return models.Page{}, fmt.Errorf("%w: page %d", util.ErrNoUsableText, page)
	}
	return models.Page{Index: page, RawText: recognized, Method: models.ExtractionRecognized}, nil
}

func (a *Acquirer) directText(ctx context.Context, path string, page int) (string, error) {
	if a.cfg.Extractor == ExtractorNative {
		return a.nativeText(path, page)
	}
	p := strconv.Itoa(page)
	out, err := a.run.Run(ctx, "pdftotext", "-f", p, "-l", p, "-layout", path, "-")
	if err != nil {
		return "", fmt.Errorf("extract page %d: %w", page, err)
	}
	return string(out), nil
}

func (a *Acquirer) nativeText(path string, page int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()
	p := r.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract page %d: %w", page, err)
	}
	return text, nil
}

// recognizePage rasterizes one page at the configured DPI and runs the OCR
// engine over the image.
func (a *Acquirer) recognizePage(ctx context.Context, path string, page int) (string, error) {
	dir, err := os.MkdirTemp("", "manualdesk-ocr-")
	if err != nil {
		return "", fmt.Errorf("create raster dir: %w", err)
	}
	defer os.RemoveAll(dir)

	p := strconv.Itoa(page)
	prefix := filepath.Join(dir, "page")
	if _, err := a.run.Run(ctx, "pdftoppm",
		"-f", p, "-l", p,
		"-r", strconv.Itoa(a.cfg.RasterDPI),
		"-png", path, prefix); err != nil {
		return "", fmt.Errorf("rasterize page %d: %w", page, err)
	}
	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil || len(images) == 0 {
		return "", fmt.Errorf("rasterize page %d: no image produced", page)
	}
	sort.Strings(images)
	out, err := a.run.Run(ctx, "tesseract", images[0], "stdout",
		"-l", a.cfg.OCRLanguage,
		"--psm", strconv.Itoa(a.cfg.OCRPageSegMode))
	if err != nil {
		return "", fmt.Errorf("recognize page %d: %w", page, err)
	}
	return string(out), nil
}
