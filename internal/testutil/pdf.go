package testutil

import (
	"bytes"
	"fmt"
	"strings"
)

// Line layout used by BuildPDF. Text starts at (72, 720) and each line
// moves down by LineLeading points.
const (
	firstLineY  = 720.0
	LineLeading = 14.0
)

// PDFLink is a link annotation drawn on a page.
type PDFLink struct {
	// Rect is [llx lly urx ury]. Use LineRect to cover a rendered line.
	Rect [4]float64
	// DestPage is the 0-based target page.
	DestPage int
	// Contents sets the optional /Contents entry.
	Contents string
}

// PDFPage is one page of a fixture PDF.
type PDFPage struct {
	Lines []string
	Links []PDFLink
}

// PDFSpec describes a fixture PDF.
type PDFSpec struct {
	Title  string
	Author string
	Pages  []PDFPage
}

// LineRect returns a rectangle covering the given 0-based line of a page.
func LineRect(line int) [4]float64 {
	y := firstLineY - LineLeading*float64(line)
	return [4]float64{70, y - 3, 540, y + 11}
}

// TextPages builds page specs from raw text, one string per page with
// lines separated by newlines.
func TextPages(texts ...string) []PDFPage {
	pages := make([]PDFPage, len(texts))
	for i, t := range texts {
		pages[i] = PDFPage{Lines: strings.Split(t, "\n")}
	}
	return pages
}

// BuildPDF renders a minimal but well-formed PDF with a cross-reference
// table, Helvetica text, optional link annotations and an Info dictionary.
func BuildPDF(spec PDFSpec) []byte {
	n := len(spec.Pages)
	pageObj := func(i int) int { return 4 + 2*i }
	contentObj := func(i int) int { return 5 + 2*i }

	next := 4 + 2*n
	annotObjs := make([][]int, n)
	for i, p := range spec.Pages {
		for range p.Links {
			annotObjs[i] = append(annotObjs[i], next)
			next++
		}
	}
	infoObj := 0
	if spec.Title != "" || spec.Author != "" {
		infoObj = next
		next++
	}
	size := next

	objects := make([]string, size)
	objects[1] = "<< /Type /Catalog /Pages 2 0 R >>"

	kids := make([]string, n)
	for i := range spec.Pages {
		kids[i] = fmt.Sprintf("%d 0 R", pageObj(i))
	}
	objects[2] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n)
	objects[3] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"

	for i, p := range spec.Pages {
		var annots string
		if len(annotObjs[i]) > 0 {
			refs := make([]string, len(annotObjs[i]))
			for j, obj := range annotObjs[i] {
				refs[j] = fmt.Sprintf("%d 0 R", obj)
			}
			annots = fmt.Sprintf(" /Annots [%s]", strings.Join(refs, " "))
		}
		objects[pageObj(i)] = fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R%s >>",
			contentObj(i), annots)

		stream := contentStream(p.Lines)
		objects[contentObj(i)] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)

		for j, link := range p.Links {
			entry := fmt.Sprintf(
				"<< /Type /Annot /Subtype /Link /Rect [%g %g %g %g] /Border [0 0 0] /Dest [%d 0 R /Fit]",
				link.Rect[0], link.Rect[1], link.Rect[2], link.Rect[3], pageObj(link.DestPage))
			if link.Contents != "" {
				entry += fmt.Sprintf(" /Contents (%s)", escape(link.Contents))
			}
			objects[annotObjs[i][j]] = entry + " >>"
		}
	}

	if infoObj != 0 {
		var info []string
		if spec.Title != "" {
			info = append(info, fmt.Sprintf("/Title (%s)", escape(spec.Title)))
		}
		if spec.Author != "" {
			info = append(info, fmt.Sprintf("/Author (%s)", escape(spec.Author)))
		}
		objects[infoObj] = "<< " + strings.Join(info, " ") + " >>"
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, size)
	for obj := 1; obj < size; obj++ {
		offsets[obj] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", obj, objects[obj])
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for obj := 1; obj < size; obj++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[obj])
	}

	trailer := fmt.Sprintf("<< /Size %d /Root 1 0 R", size)
	if infoObj != 0 {
		trailer += fmt.Sprintf(" /Info %d 0 R", infoObj)
	}
	fmt.Fprintf(&buf, "trailer\n%s >>\nstartxref\n%d\n%%%%EOF\n", trailer, xref)
	return buf.Bytes()
}

func contentStream(lines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BT\n/F1 12 Tf\n%g TL\n72 %g Td\n", LineLeading, firstLineY)
	for _, line := range lines {
		fmt.Fprintf(&b, "(%s) Tj\nT*\n", escape(line))
	}
	b.WriteString("ET")
	return b.String()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
