// Package book defines the records that flow through book analysis:
// extracted pages, detected chapter boundaries, and per-chapter analysis.
package book

import (
	"fmt"
	"sort"
)

// DetectionMethod records which strategy produced a BookStructure.
type DetectionMethod string

const (
	DetectionPDFLinks    DetectionMethod = "pdf-links"
	DetectionTitleMatch  DetectionMethod = "title-match"
	DetectionLLM         DetectionMethod = "llm-detection"
	DetectionFixedChunks DetectionMethod = "fixed-chunks"
)

const (
	// DefaultTitle is used when no title could be determined.
	DefaultTitle = "Untitled Book"

	WordsPerMinute        = 250
	MinFallbackReadingMin = 5
)

// PageCollection is the ordered text of every page. The index is the
// 0-based page number used throughout the pipeline.
type PageCollection []string

// Total returns the number of pages.
func (p PageCollection) Total() int {
	return len(p)
}

// Range returns the text of pages start..end inclusive, clamped to the
// collection bounds.
func (p PageCollection) Range(start, end int) []string {
	if start < 0 {
		start = 0
	}
	if end > len(p)-1 {
		end = len(p) - 1
	}
	if start > end {
		return nil
	}
	return p[start : end+1]
}

// ChapterBoundary is a 0-based inclusive page range attributed to one chapter.
type ChapterBoundary struct {
	Title     string `json:"title" yaml:"title"`
	StartPage int    `json:"startPage" yaml:"start_page"`
	EndPage   int    `json:"endPage" yaml:"end_page"`
}

// BookStructure is the output of structure detection.
type BookStructure struct {
	Title           string            `json:"title" yaml:"title"`
	Author          string            `json:"author,omitempty" yaml:"author,omitempty"`
	Chapters        []ChapterBoundary `json:"chapters" yaml:"chapters"`
	DetectionMethod DetectionMethod   `json:"detectionMethod" yaml:"detection_method"`
}

// ChapterFields is the pedagogical metadata produced for one chapter.
type ChapterFields struct {
	Summary                 string   `json:"summary" yaml:"summary"`
	KeyConcepts             []string `json:"keyConcepts" yaml:"key_concepts"`
	LearningObjectives      []string `json:"learningObjectives" yaml:"learning_objectives"`
	Prerequisites           []string `json:"prerequisites" yaml:"prerequisites"`
	EstimatedReadingMinutes int      `json:"estimatedReadingMinutes" yaml:"estimated_reading_minutes"`
}

// ChapterAnalysis is a chapter boundary plus its analysis.
type ChapterAnalysis struct {
	ChapterNumber int `json:"chapterNumber" yaml:"chapter_number"`
	ChapterBoundary `yaml:",inline"`
	ChapterFields   `yaml:",inline"`
}

// BookAnalysis is the durable per-course record of a book's contents.
type BookAnalysis struct {
	Title           string            `json:"title" yaml:"title"`
	Author          string            `json:"author,omitempty" yaml:"author,omitempty"`
	TotalPages      int               `json:"totalPages" yaml:"total_pages"`
	Chapters        []ChapterAnalysis `json:"chapters" yaml:"chapters"`
	DetectionMethod DetectionMethod   `json:"detectionMethod" yaml:"detection_method"`
}

// LastChapter returns the final chapter, or nil when there are none.
func (a *BookAnalysis) LastChapter() *ChapterAnalysis {
	if a == nil || len(a.Chapters) == 0 {
		return nil
	}
	return &a.Chapters[len(a.Chapters)-1]
}

// UncoveredTail reports the first page after the last chapter when trailing
// pages are not covered by any chapter.
func (a *BookAnalysis) UncoveredTail() (start int, ok bool) {
	last := a.LastChapter()
	if last == nil {
		return 0, a != nil && a.TotalPages > 0
	}
	if last.EndPage < a.TotalPages-1 {
		return last.EndPage + 1, true
	}
	return 0, false
}

// FillBoundaries turns a list of chapter starts into boundaries. Starts are
// sorted by page, duplicates on the same page keep the first title, and each
// chapter ends one page before the next begins. The last chapter ends on the
// final page.
func FillBoundaries(starts []ChapterBoundary, totalPages int) []ChapterBoundary {
	if totalPages <= 0 || len(starts) == 0 {
		return nil
	}
	sorted := make([]ChapterBoundary, 0, len(starts))
	for _, s := range starts {
		if s.StartPage < 0 || s.StartPage >= totalPages {
			continue
		}
		sorted = append(sorted, s)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartPage < sorted[j].StartPage
	})

	out := make([]ChapterBoundary, 0, len(sorted))
	for _, s := range sorted {
		if len(out) > 0 && out[len(out)-1].StartPage == s.StartPage {
			continue
		}
		out = append(out, ChapterBoundary{Title: s.Title, StartPage: s.StartPage})
	}
	for i := range out {
		if i+1 < len(out) {
			out[i].EndPage = out[i+1].StartPage - 1
		} else {
			out[i].EndPage = totalPages - 1
		}
	}
	return out
}

// ValidateBoundaries checks that chapters are sorted, non-overlapping and
// within [0, totalPages-1].
func ValidateBoundaries(chapters []ChapterBoundary, totalPages int) error {
	prevEnd := -1
	for i, ch := range chapters {
		if ch.StartPage < 0 || ch.EndPage > totalPages-1 {
			return fmt.Errorf("chapter %d (%q) out of range [0,%d]: %d-%d", i, ch.Title, totalPages-1, ch.StartPage, ch.EndPage)
		}
		if ch.EndPage < ch.StartPage {
			return fmt.Errorf("chapter %d (%q) ends before it starts: %d-%d", i, ch.Title, ch.StartPage, ch.EndPage)
		}
		if ch.StartPage <= prevEnd {
			return fmt.Errorf("chapter %d (%q) overlaps previous chapter ending at %d", i, ch.Title, prevEnd)
		}
		prevEnd = ch.EndPage
	}
	return nil
}

// FallbackReadingMinutes estimates reading time from a word count.
func FallbackReadingMinutes(words int) int {
	minutes := words / WordsPerMinute
	if minutes < MinFallbackReadingMin {
		return MinFallbackReadingMin
	}
	return minutes
}
