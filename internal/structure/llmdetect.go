package structure

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/prompts/detect_boundaries"
	"github.com/enesgrahovac/book-quest/internal/structured"
)

// llmStrategy samples evenly spaced pages and asks for chapter openings and
// a heading pattern.
type llmStrategy struct {
	gen         structured.Client
	samplePages int
	sampleChars int
	minPages    int
	logger      *slog.Logger
}

func (s *llmStrategy) Method() book.DetectionMethod { return book.DetectionLLM }

func (s *llmStrategy) Detect(ctx context.Context, _ []byte, pages book.PageCollection) (*book.BookStructure, bool) {
	total := pages.Total()
	if s.gen == nil || !s.gen.Available() || total < s.minPages {
		return nil, false
	}

	indexes := samplePages(total, s.samplePages)
	var b strings.Builder
	for _, i := range indexes {
		fmt.Fprintf(&b, "--- Page %d ---\n%s\n\n", i+1, truncateRunes(pages[i], s.sampleChars))
	}

	var result detect_boundaries.Result
	req := detect_boundaries.NewRequest(detect_boundaries.UserData{
		TotalPages:  total,
		SampleCount: len(indexes),
		SampleText:  b.String(),
	})
	if err := s.gen.Generate(ctx, req, &result); err != nil {
		s.logger.Warn("boundary detection failed", "error", err)
		return nil, false
	}
	if len(result.Boundaries) < minTitles {
		s.logger.Debug("too few sampled boundaries", "found", len(result.Boundaries))
		return nil, false
	}

	if hits := scanPattern(result.Pattern, pages); distinctStarts(hits) >= minTitles {
		s.logger.Debug("using pattern matches", "pattern", result.Pattern, "matches", len(hits))
		return &book.BookStructure{Chapters: book.FillBoundaries(hits, total)}, true
	}

	starts := make([]book.ChapterBoundary, 0, len(result.Boundaries))
	for i, bd := range result.Boundaries {
		title := cleanTitle(bd.Title)
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		// Sampled pages are 1-based.
		starts = append(starts, book.ChapterBoundary{Title: title, StartPage: bd.Page - 1})
	}
	chapters := book.FillBoundaries(starts, total)
	if len(chapters) < minTitles {
		return nil, false
	}
	return &book.BookStructure{Chapters: chapters}, true
}

// samplePages returns evenly spaced 0-based page indexes with
// step = max(1, total/target).
func samplePages(total, target int) []int {
	step := max(1, total/max(1, target))
	var out []int
	for i := 0; i < total; i += step {
		out = append(out, i)
	}
	return out
}

// scanPattern compiles pattern as a regular expression and returns the first
// matching line of every page. Lines are matched one at a time so ^ and $
// anchor to line boundaries. An empty or invalid pattern yields
// no matches.
func scanPattern(pattern string, pages book.PageCollection) []book.ChapterBoundary {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil || re.MatchString("") {
		return nil
	}

	var hits []book.ChapterBoundary
	for i, text := range pages {
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && re.MatchString(line) {
				hits = append(hits, book.ChapterBoundary{Title: cleanTitle(line), StartPage: i})
				break
			}
		}
	}
	return hits
}
