// Package analysis produces per-chapter pedagogical metadata for a book and
// assembles the final BookAnalysis.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/pdftext"
	"github.com/enesgrahovac/book-quest/internal/prompts/chapter_analysis"
	"github.com/enesgrahovac/book-quest/internal/structured"
)

// DefaultMaxChapterChars caps the chapter text sent for analysis.
const DefaultMaxChapterChars = 80000

// TruncationMarker is appended to chapter text cut at the character cap.
const TruncationMarker = "[... chapter truncated for analysis ...]"

// ChapterInput is one chapter to analyze.
type ChapterInput struct {
	Number           int // 1-based
	Boundary         book.ChapterBoundary
	Text             string
	PreviousConcepts []string
}

// Analyzer produces chapter metadata. It never fails: without a working
// generator it returns a deterministic estimate.
type Analyzer struct {
	gen      structured.Client
	maxChars int
	logger   *slog.Logger
}

// NewAnalyzer creates an Analyzer. gen may be nil.
func NewAnalyzer(gen structured.Client, maxChars int, logger *slog.Logger) *Analyzer {
	if maxChars <= 0 {
		maxChars = DefaultMaxChapterChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{gen: gen, maxChars: maxChars, logger: logger}
}

// Analyze returns the chapter's fields.
func (a *Analyzer) Analyze(ctx context.Context, in ChapterInput) book.ChapterFields {
	words := pdftext.WordCount(in.Text)
	if a.gen == nil || !a.gen.Available() {
		return fallbackFields(in, words)
	}

	text, truncated := truncateChapter(in.Text, a.maxChars)
	if truncated {
		a.logger.Debug("chapter text truncated", "chapter", in.Number, "max_chars", a.maxChars)
	}

	var result chapter_analysis.Result
	req := chapter_analysis.NewRequest(chapter_analysis.UserData{
		ChapterNumber:    in.Number,
		Title:            in.Boundary.Title,
		StartPage:        in.Boundary.StartPage + 1,
		EndPage:          in.Boundary.EndPage + 1,
		Text:             text,
		PreviousConcepts: in.PreviousConcepts,
	})
	if err := a.gen.Generate(ctx, req, &result); err != nil {
		a.logger.Warn("chapter analysis failed, using fallback", "chapter", in.Number, "error", err)
		return fallbackFields(in, words)
	}
	return coerceFields(result, in, words)
}

// truncateChapter cuts text to maxChars characters and appends the
// truncation marker when it had to cut.
func truncateChapter(text string, maxChars int) (string, bool) {
	n := 0
	for pos := range text {
		if n == maxChars {
			return text[:pos] + "\n\n" + TruncationMarker, true
		}
		n++
	}
	return text, false
}

func fallbackSummary(in ChapterInput) string {
	return fmt.Sprintf("Chapter %d, %q, covers pages %d-%d.",
		in.Number, in.Boundary.Title, in.Boundary.StartPage+1, in.Boundary.EndPage+1)
}

func fallbackFields(in ChapterInput, words int) book.ChapterFields {
	return book.ChapterFields{
		Summary:                 fallbackSummary(in),
		KeyConcepts:             []string{},
		LearningObjectives:      []string{},
		Prerequisites:           []string{},
		EstimatedReadingMinutes: book.FallbackReadingMinutes(words),
	}
}

// coerceFields keeps valid model output and fills the rest from the
// deterministic estimate.
func coerceFields(r chapter_analysis.Result, in ChapterInput, words int) book.ChapterFields {
	f := book.ChapterFields{
		Summary:                 strings.TrimSpace(r.Summary),
		KeyConcepts:             cleanList(r.KeyConcepts),
		LearningObjectives:      cleanList(r.LearningObjectives),
		Prerequisites:           cleanList(r.Prerequisites),
		EstimatedReadingMinutes: r.EstimatedReadingMinutes,
	}
	if f.Summary == "" {
		f.Summary = fallbackSummary(in)
	}
	if f.EstimatedReadingMinutes <= 0 {
		f.EstimatedReadingMinutes = book.FallbackReadingMinutes(words)
	}
	return f
}

// cleanList trims entries and drops empty ones. The result is never nil.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
