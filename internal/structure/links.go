package structure

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/pdftext"
)

// minLinkDestinations is the number of distinct link targets required
// before link annotations are trusted as a table of contents.
const minLinkDestinations = 3

var disableConfigDir sync.Once

// linkStrategy reads internal link annotations from the opening pages. A
// linked table of contents points each entry at its chapter's first page.
type linkStrategy struct {
	scanPages int
	logger    *slog.Logger
}

// pageLink is a link annotation resolved to a destination page.
type pageLink struct {
	sourcePage int // 0-based
	destPage   int // 0-based
	rect       pdftext.Rect
	contents   string
}

func (s *linkStrategy) Method() book.DetectionMethod { return book.DetectionPDFLinks }

func (s *linkStrategy) Detect(_ context.Context, pdfBytes []byte, pages book.PageCollection) (*book.BookStructure, bool) {
	if len(pdfBytes) == 0 || pages.Total() == 0 {
		return nil, false
	}

	links, info, err := readLinks(pdfBytes, s.scanPages)
	if err != nil {
		s.logger.Debug("link annotation scan failed", "error", err)
		return nil, false
	}

	// Keep the first link seen for each destination.
	seen := make(map[int]bool)
	var unique []pageLink
	for _, l := range links {
		if l.destPage < 0 || l.destPage >= pages.Total() || seen[l.destPage] {
			continue
		}
		seen[l.destPage] = true
		unique = append(unique, l)
	}
	if len(unique) < minLinkDestinations {
		s.logger.Debug("too few link destinations", "found", len(unique))
		return nil, false
	}
	sort.SliceStable(unique, func(i, j int) bool { return unique[i].destPage < unique[j].destPage })

	doc, err := pdftext.Open(pdfBytes, s.logger)
	if err != nil {
		doc = nil
	}

	starts := make([]book.ChapterBoundary, len(unique))
	for i, l := range unique {
		starts[i] = book.ChapterBoundary{
			Title:     linkLabel(l, i, doc, pages),
			StartPage: l.destPage,
		}
	}

	return &book.BookStructure{
		Title:    info.title,
		Author:   info.author,
		Chapters: book.FillBoundaries(starts, pages.Total()),
	}, true
}

// linkLabel picks a chapter title for a link: the annotation's /Contents,
// else the text drawn under the link, else the first line of the target
// page, else "Chapter N".
func linkLabel(l pageLink, index int, doc *pdftext.Document, pages book.PageCollection) string {
	if t := cleanTitle(l.contents); t != "" {
		return t
	}
	if doc != nil {
		if t := cleanTitle(doc.TextIn(l.sourcePage, l.rect)); t != "" {
			return t
		}
	}
	if t := cleanTitle(pdftext.FirstLine(pages[l.destPage])); t != "" {
		return t
	}
	return fmt.Sprintf("Chapter %d", index+1)
}

type docInfo struct {
	title  string
	author string
}

// readLinks parses the PDF with pdfcpu and returns the internal links found
// on the first scanPages pages, in page and annotation order.
func readLinks(pdfBytes []byte, scanPages int) (links []pageLink, info docInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdfBytes), conf)
	if err != nil {
		return nil, info, fmt.Errorf("failed to read PDF: %w", err)
	}

	// Page object number -> 0-based page index.
	pageIndex := make(map[int]int, ctx.PageCount)
	for nr := 1; nr <= ctx.PageCount; nr++ {
		_, ref, _, err := ctx.PageDict(nr, false)
		if err != nil || ref == nil {
			continue
		}
		pageIndex[ref.ObjectNumber.Value()] = nr - 1
	}

	last := min(scanPages, ctx.PageCount)
	for nr := 1; nr <= last; nr++ {
		pageDict, _, _, err := ctx.PageDict(nr, false)
		if err != nil || pageDict == nil {
			continue
		}
		annots, err := ctx.DereferenceArray(pageDict["Annots"])
		if err != nil {
			continue
		}
		for _, obj := range annots {
			annot, err := ctx.DereferenceDict(obj)
			if err != nil || annot == nil {
				continue
			}
			if subtype, ok := annot["Subtype"].(types.Name); !ok || subtype != "Link" {
				continue
			}
			dest, ok := linkDestination(ctx, annot, pageIndex)
			if !ok {
				continue
			}
			links = append(links, pageLink{
				sourcePage: nr - 1,
				destPage:   dest,
				rect:       annotRect(ctx, annot),
				contents:   textEntry(ctx, annot["Contents"]),
			})
		}
	}

	return links, readInfo(ctx), nil
}

// linkDestination resolves /Dest or a GoTo action's /D to a page index.
// Named destinations are not resolved.
func linkDestination(ctx *model.Context, annot types.Dict, pageIndex map[int]int) (int, bool) {
	destObj := annot["Dest"]
	if destObj == nil {
		action, err := ctx.DereferenceDict(annot["A"])
		if err != nil || action == nil {
			return 0, false
		}
		if s, ok := action["S"].(types.Name); !ok || s != "GoTo" {
			return 0, false
		}
		destObj = action["D"]
	}

	dest, err := ctx.DereferenceArray(destObj)
	if err != nil || len(dest) == 0 {
		return 0, false
	}
	switch target := dest[0].(type) {
	case types.IndirectRef:
		idx, ok := pageIndex[target.ObjectNumber.Value()]
		return idx, ok
	case types.Integer:
		return target.Value(), true
	}
	return 0, false
}

func annotRect(ctx *model.Context, annot types.Dict) pdftext.Rect {
	arr, err := ctx.DereferenceArray(annot["Rect"])
	if err != nil || len(arr) < 4 {
		return pdftext.Rect{}
	}
	var v [4]float64
	for i := range v {
		v[i] = number(arr[i])
	}
	return pdftext.Rect{
		LLX: min(v[0], v[2]), LLY: min(v[1], v[3]),
		URX: max(v[0], v[2]), URY: max(v[1], v[3]),
	}
}

func number(o types.Object) float64 {
	switch n := o.(type) {
	case types.Float:
		return n.Value()
	case types.Integer:
		return float64(n.Value())
	}
	return 0
}

// textEntry decodes a string object, following indirect references.
func textEntry(ctx *model.Context, o types.Object) string {
	if o == nil {
		return ""
	}
	o, err := ctx.Dereference(o)
	if err != nil {
		return ""
	}
	var s string
	switch v := o.(type) {
	case types.StringLiteral:
		s, err = types.StringLiteralToString(v)
	case types.HexLiteral:
		s, err = types.HexLiteralToString(v)
	default:
		return ""
	}
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func readInfo(ctx *model.Context) docInfo {
	if ctx.Info == nil {
		return docInfo{}
	}
	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || d == nil {
		return docInfo{}
	}
	return docInfo{
		title:  textEntry(ctx, d["Title"]),
		author: textEntry(ctx, d["Author"]),
	}
}
