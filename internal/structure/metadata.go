package structure

import (
	"context"
	"log/slog"
	"strings"

	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/prompts/metadata"
	"github.com/enesgrahovac/book-quest/internal/structured"
)

type metadataExtractor struct {
	gen    structured.Client
	pages  int
	logger *slog.Logger
}

// extract asks for title and author from the opening pages. Failure yields
// the default title and no author.
func (m *metadataExtractor) extract(ctx context.Context, pages book.PageCollection) (title, author string) {
	if m.gen == nil || !m.gen.Available() {
		return book.DefaultTitle, ""
	}
	text := metadata.PrepareBookText(pages, m.pages)
	if text == "" {
		return book.DefaultTitle, ""
	}

	var result metadata.Result
	if err := m.gen.Generate(ctx, metadata.NewRequest(metadata.UserData{BookText: text}), &result); err != nil {
		m.logger.Warn("metadata extraction failed", "error", err)
		return book.DefaultTitle, ""
	}
	title = strings.TrimSpace(result.Title)
	if title == "" {
		title = book.DefaultTitle
	}
	return title, strings.TrimSpace(result.Author)
}
