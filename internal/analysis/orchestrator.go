package analysis

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/enesgrahovac/book-quest/internal/book"
)

// DefaultBatchSize bounds how many chapters are analyzed at once.
const DefaultBatchSize = 5

// Orchestrator analyzes every chapter of a book in sequential batches.
//
// Chapters within a batch run concurrently. Chapter i is given chapter i-1's
// key concepts only when i-1 finished in an earlier batch, so the first
// chapter of each batch gets context and the rest of the batch does not.
type Orchestrator struct {
	analyzer  *Analyzer
	batchSize int
	logger    *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(analyzer *Analyzer, batchSize int, logger *slog.Logger) *Orchestrator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{analyzer: analyzer, batchSize: batchSize, logger: logger}
}

// AnalyzeAll returns one analysis per chapter, ordered by chapter index.
// ChapterNumber is index+1.
func (o *Orchestrator) AnalyzeAll(ctx context.Context, structure book.BookStructure, pages book.PageCollection) []book.ChapterAnalysis {
	chapters := structure.Chapters
	results := make([]book.ChapterAnalysis, len(chapters))

	for start := 0; start < len(chapters); start += o.batchSize {
		end := min(start+o.batchSize, len(chapters))

		var g errgroup.Group
		g.SetLimit(o.batchSize)
		for i := start; i < end; i++ {
			var prev []string
			if i > 0 && i-1 < start {
				prev = results[i-1].KeyConcepts
			}
			in := ChapterInput{
				Number:           i + 1,
				Boundary:         chapters[i],
				Text:             strings.Join(pages.Range(chapters[i].StartPage, chapters[i].EndPage), "\n\n"),
				PreviousConcepts: prev,
			}
			g.Go(func() error {
				fields := o.analyzer.Analyze(ctx, in)
				results[i] = book.ChapterAnalysis{
					ChapterNumber:   i + 1,
					ChapterBoundary: chapters[i],
					ChapterFields:   fields,
				}
				return nil
			})
		}
		// Analyze degrades instead of failing, so Wait only marks the barrier.
		g.Wait()

		o.logger.Info("analyzed chapter batch",
			"batch", start/o.batchSize+1,
			"chapters", end-start,
			"done", end,
			"total", len(chapters))
	}
	return results
}
