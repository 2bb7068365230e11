package structure

import (
	"context"
	"log/slog"
	"strings"

	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/prompts/extract_toc"
	"github.com/enesgrahovac/book-quest/internal/structured"
)

const (
	minTitles          = 2
	minNormalizedTitle = 6 // normalized titles must be longer than 5 characters
)

// titleMatchStrategy asks for the chapter titles listed in the opening
// pages and locates each title in the body text.
type titleMatchStrategy struct {
	gen       structured.Client
	scanPages int
	logger    *slog.Logger
}

func (s *titleMatchStrategy) Method() book.DetectionMethod { return book.DetectionTitleMatch }

func (s *titleMatchStrategy) Detect(ctx context.Context, _ []byte, pages book.PageCollection) (*book.BookStructure, bool) {
	if s.gen == nil || !s.gen.Available() || pages.Total() == 0 {
		return nil, false
	}

	var toc extract_toc.Result
	req := extract_toc.NewRequest(extract_toc.BuildUserData(pages, s.scanPages))
	if err := s.gen.Generate(ctx, req, &toc); err != nil {
		s.logger.Warn("title list extraction failed", "error", err)
		return nil, false
	}
	if len(toc.Chapters) < minTitles {
		s.logger.Debug("too few chapter titles", "found", len(toc.Chapters))
		return nil, false
	}

	starts := locateTitles(toc.Chapters, pages, s.scanPages)
	if distinctStarts(starts) < minTitles {
		s.logger.Debug("too few chapter titles located", "titles", len(toc.Chapters), "located", len(starts))
		return nil, false
	}

	return &book.BookStructure{
		Title:    strings.TrimSpace(toc.Title),
		Author:   strings.TrimSpace(toc.Author),
		Chapters: book.FillBoundaries(starts, pages.Total()),
	}, true
}

// locateTitles finds the page where each title opens, in listed order. Each
// title is matched on the first page after the previous located title, so a
// chapter page that mentions the next chapter does not claim it. Titles whose
// normalized form is too short, or that never appear, are skipped.
func locateTitles(titles []string, pages book.PageCollection, scanPages int) []book.ChapterBoundary {
	type candidate struct {
		title string
		norm  string
	}
	var candidates []candidate
	for _, t := range titles {
		n := normalize(t)
		if len(n) < minNormalizedTitle {
			continue
		}
		candidates = append(candidates, candidate{title: cleanTitle(t), norm: n})
	}
	if len(candidates) == 0 {
		return nil
	}

	normPages := make([]string, pages.Total())
	for i, p := range pages {
		normPages[i] = normalize(p)
	}
	norms := make([]string, len(candidates))
	for i, c := range candidates {
		norms[i] = c.norm
	}
	toc := contentsPage(norms, normPages, scanPages)

	var starts []book.ChapterBoundary
	next := 0
	for _, c := range candidates {
		for i := next; i < len(normPages); i++ {
			if i == toc || !strings.Contains(normPages[i], c.norm) {
				continue
			}
			starts = append(starts, book.ChapterBoundary{Title: c.title, StartPage: i})
			next = i + 1
			break
		}
	}
	return starts
}

// contentsPage returns the front-matter page listing the most titles when it
// lists more than half of them, or -1. Only that single page is treated as
// the table of contents.
func contentsPage(norms, normPages []string, scanPages int) int {
	best, bestHits := -1, 0
	for i := 0; i < min(scanPages, len(normPages)); i++ {
		hits := 0
		for _, n := range norms {
			if strings.Contains(normPages[i], n) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}
	if bestHits < minTitles || bestHits*2 <= len(norms) {
		return -1
	}
	return best
}

func distinctStarts(starts []book.ChapterBoundary) int {
	seen := make(map[int]bool, len(starts))
	for _, s := range starts {
		seen[s.StartPage] = true
	}
	return len(seen)
}
