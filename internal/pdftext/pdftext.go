// Package pdftext extracts ordered per-page plain text from PDF bytes.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/enesgrahovac/book-quest/internal/book"
)

// ErrUnreadablePDF is returned when PDF bytes cannot be turned into page text.
var ErrUnreadablePDF = errors.New("unreadable PDF")

// Rect is an axis-aligned rectangle in PDF user space.
type Rect struct {
	LLX, LLY, URX, URY float64
}

// Contains reports whether (x, y) lies inside the rectangle, expanded by pad.
func (r Rect) Contains(x, y, pad float64) bool {
	return x >= r.LLX-pad && x <= r.URX+pad && y >= r.LLY-pad && y <= r.URY+pad
}

// Document is an opened PDF for page-level text access.
type Document struct {
	reader *pdf.Reader
	logger *slog.Logger
}

// Open parses PDF bytes.
func Open(data []byte, logger *slog.Logger) (doc *Document, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty content", ErrUnreadablePDF)
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: parser panic: %v", ErrUnreadablePDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	return &Document{reader: r, logger: logger}, nil
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of a 0-based page. Pages whose content
// stream cannot be decoded yield an empty string.
func (d *Document) PageText(index int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("recovered panic extracting page text", "page", index, "panic", r)
			text = ""
		}
	}()

	page := d.reader.Page(index + 1)
	if page.V.IsNull() {
		return ""
	}
	plain, err := page.GetPlainText(nil)
	if err != nil {
		d.logger.Debug("page text extraction failed", "page", index, "error", err)
		return ""
	}
	return strings.TrimSpace(plain)
}

// TextIn returns the text drawn inside rect on a 0-based page, in reading
// order (top to bottom, left to right).
func (d *Document) TextIn(index int, rect Rect) (text string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Debug("recovered panic reading page layout", "page", index, "panic", r)
			text = ""
		}
	}()

	page := d.reader.Page(index + 1)
	if page.V.IsNull() {
		return ""
	}

	var hits []pdf.Text
	for _, t := range page.Content().Text {
		if rect.Contains(t.X, t.Y, 2) {
			hits = append(hits, t)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Y != hits[j].Y {
			return hits[i].Y > hits[j].Y
		}
		return hits[i].X < hits[j].X
	})

	var b strings.Builder
	for i, t := range hits {
		if i > 0 && hits[i-1].Y != t.Y {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Extract returns one text string per page, ordered by page number.
func Extract(data []byte, logger *slog.Logger) (book.PageCollection, error) {
	doc, err := Open(data, logger)
	if err != nil {
		return nil, err
	}

	total := doc.NumPages()
	if total <= 0 {
		return nil, fmt.Errorf("%w: no pages", ErrUnreadablePDF)
	}

	pages := make(book.PageCollection, total)
	for i := range pages {
		pages[i] = doc.PageText(i)
	}
	doc.logger.Debug("extracted page text", "pages", total)
	return pages, nil
}

// FirstLine returns the first non-empty line of a page's text.
func FirstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// WordCount counts whitespace-separated words across texts.
func WordCount(texts ...string) int {
	n := 0
	for _, t := range texts {
		n += len(strings.Fields(t))
	}
	return n
}
