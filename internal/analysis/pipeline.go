package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/pdftext"
	"github.com/enesgrahovac/book-quest/internal/structure"
)

// Pipeline runs extraction, structure detection and chapter analysis.
type Pipeline struct {
	detector     *structure.Detector
	orchestrator *Orchestrator
	logger       *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(detector *structure.Detector, orchestrator *Orchestrator, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{detector: detector, orchestrator: orchestrator, logger: logger}
}

// Result is the output of a pipeline run. Pages are returned so callers can
// persist them for later gap reconciliation.
type Result struct {
	Analysis book.BookAnalysis
	Pages    book.PageCollection
}

// Analyze runs the full pipeline. The only error is an extraction failure,
// which wraps pdftext.ErrUnreadablePDF.
func (p *Pipeline) Analyze(ctx context.Context, pdfBytes []byte) (*Result, error) {
	start := time.Now()

	pages, err := pdftext.Extract(pdfBytes, p.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to extract pages: %w", err)
	}
	p.logger.Info("extracted pages", "book_pages", pages.Total())

	detected := p.detector.Detect(ctx, pdfBytes, pages)
	chapters := p.orchestrator.AnalyzeAll(ctx, detected, pages)

	analysis := book.BookAnalysis{
		Title:           detected.Title,
		Author:          detected.Author,
		TotalPages:      pages.Total(),
		Chapters:        chapters,
		DetectionMethod: detected.DetectionMethod,
	}
	p.logger.Info("book analysis complete",
		"title", analysis.Title,
		"method", analysis.DetectionMethod,
		"chapters", len(chapters),
		"elapsed", time.Since(start))
	return &Result{Analysis: analysis, Pages: pages}, nil
}
