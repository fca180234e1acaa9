package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Splitter splits PDFs into single-page documents using pdfcpu.
type Splitter struct {
	tempRoot string
	logger   *slog.Logger
}

// NewSplitter creates a Splitter. tempRoot is where per-call workspaces are
// created; "" means the OS temp directory.
func NewSplitter(tempRoot string, logger *slog.Logger) *Splitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Splitter{tempRoot: tempRoot, logger: logger}
}

// Split persists src to a scoped workspace, validates it and returns one PDF
// per page in page order. The workspace is removed before Split returns.
func (s *Splitter) Split(ctx context.Context, src io.Reader) ([][]byte, error) {
	tempDir, err := os.MkdirTemp(s.tempRoot, "pdf-splitter-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)
	s.logger.Debug("Created temp directory.", "path", tempDir)

	sourcePdfPath := filepath.Join(tempDir, "source.pdf")
	if err := writeFile(sourcePdfPath, src); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	optimizedPdfPath := filepath.Join(tempDir, "optimized.pdf")
	if err := optimizePDF(sourcePdfPath, optimizedPdfPath); err != nil {
		return nil, fmt.Errorf("failed to validate/optimize PDF: %w", err)
	}
	pageCount, err := api.PageCountFile(optimizedPdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if pageCount == 0 {
		return [][]byte{}, nil
	}

	outDir := filepath.Join(tempDir, "pages")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create pages dir: %w", err)
	}
	if err := api.SplitFile(optimizedPdfPath, outDir, 1, relaxedConfig()); err != nil {
		return nil, fmt.Errorf("failed to split PDF: %w", err)
	}

	// pdfcpu names span-1 output files <base>_<page>.pdf.
	splitFileBase := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(optimizedPdfPath), filepath.Ext(optimizedPdfPath)))
	pages := make([][]byte, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		localSplitFilePath := fmt.Sprintf("%s_%d.pdf", splitFileBase, i)
		data, err := os.ReadFile(localSplitFilePath)
		if err != nil {
			return nil, fmt.Errorf("page %d: failed to read split page: %w", i, err)
		}
		pages = append(pages, data)
	}
	s.logger.Info("PDF split locally.", "pageCount", pageCount)
	return pages, nil
}

func writeFile(path string, src io.Reader) error {
	localFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create temp file at %s: %w", path, err)
	}
	defer localFile.Close()
	if _, err := io.Copy(localFile, src); err != nil {
		return fmt.Errorf("failed to copy upload to local file: %w", err)
	}
	return localFile.Close()
}

func relaxedConfig() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

func optimizePDF(inPath, outPath string) error {
	return api.OptimizeFile(inPath, outPath, relaxedConfig())
}
