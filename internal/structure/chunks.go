package structure

import (
	"context"
	"fmt"

	"github.com/enesgrahovac/book-quest/internal/book"
)

// chunkStrategy splits the book into fixed windows. It always succeeds.
type chunkStrategy struct {
	chunkPages int
}

func (s *chunkStrategy) Method() book.DetectionMethod { return book.DetectionFixedChunks }

func (s *chunkStrategy) Detect(_ context.Context, _ []byte, pages book.PageCollection) (*book.BookStructure, bool) {
	return &book.BookStructure{Chapters: FixedChunks(pages.Total(), s.chunkPages)}, true
}

// FixedChunks splits total pages into windows of size pages, titled
// "Section 1", "Section 2", and so on.
func FixedChunks(total, size int) []book.ChapterBoundary {
	if size <= 0 {
		size = DefaultChunkPages
	}
	var chapters []book.ChapterBoundary
	for start := 0; start < total; start += size {
		chapters = append(chapters, book.ChapterBoundary{
			Title:     fmt.Sprintf("Section %d", len(chapters)+1),
			StartPage: start,
			EndPage:   min(start+size, total) - 1,
		})
	}
	return chapters
}
