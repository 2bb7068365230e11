package structure

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/prompts/detect_boundaries"
	"github.com/enesgrahovac/book-quest/internal/prompts/extract_toc"
	"github.com/enesgrahovac/book-quest/internal/prompts/metadata"
	"github.com/enesgrahovac/book-quest/internal/testutil"
)

const lorem = "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua."

func fillerPages(n int) book.PageCollection {
	pages := make(book.PageCollection, n)
	for i := range pages {
		pages[i] = fmt.Sprintf("%d\n%s", i+1, lorem)
	}
	return pages
}

func TestDetect_FixedChunksWithoutSignal(t *testing.T) {
	t.Run("three page lorem PDF without generator", func(t *testing.T) {
		data := testutil.BuildPDF(testutil.PDFSpec{
			Pages: testutil.TextPages(lorem, "", ""),
		})
		pages := book.PageCollection{lorem, "", ""}

		got := NewDetector(Config{}).Detect(context.Background(), data, pages)

		if got.DetectionMethod != book.DetectionFixedChunks {
			t.Errorf("DetectionMethod = %q, want fixed-chunks", got.DetectionMethod)
		}
		want := []book.ChapterBoundary{{Title: "Section 1", StartPage: 0, EndPage: 2}}
		if !reflect.DeepEqual(got.Chapters, want) {
			t.Errorf("Chapters = %+v, want %+v", got.Chapters, want)
		}
		if got.Title != book.DefaultTitle || got.Author != "" {
			t.Errorf("title/author = %q/%q", got.Title, got.Author)
		}
	})

	t.Run("chapter count is ceil(pages/30)", func(t *testing.T) {
		for _, n := range []int{1, 29, 30, 31, 65, 90} {
			pages := fillerPages(n)
			got := NewDetector(Config{Generator: &testutil.FakeGenerator{Unavailable: true}}).
				Detect(context.Background(), nil, pages)
			want := (n + 29) / 30
			if got.DetectionMethod != book.DetectionFixedChunks || len(got.Chapters) != want {
				t.Errorf("%d pages: method=%s chapters=%d, want %d", n, got.DetectionMethod, len(got.Chapters), want)
			}
			if err := book.ValidateBoundaries(got.Chapters, n); err != nil {
				t.Errorf("%d pages: %v", n, err)
			}
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		pages := fillerPages(70)
		d := NewDetector(Config{})
		a := d.Detect(context.Background(), nil, pages)
		b := d.Detect(context.Background(), nil, pages)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("detection not deterministic: %+v vs %+v", a, b)
		}
	})
}

func TestFixedChunks(t *testing.T) {
	got := FixedChunks(65, 30)
	want := []book.ChapterBoundary{
		{Title: "Section 1", StartPage: 0, EndPage: 29},
		{Title: "Section 2", StartPage: 30, EndPage: 59},
		{Title: "Section 3", StartPage: 60, EndPage: 64},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FixedChunks(65, 30) = %+v", got)
	}
	if FixedChunks(0, 30) != nil {
		t.Error("FixedChunks(0) should be empty")
	}
}

func linkedBook() ([]byte, book.PageCollection) {
	texts := []string{
		"Contents\nThe First Steps\nGoing Further\nAdvanced Topics",
		"Preface\n" + lorem,
		"The First Steps\n" + lorem,
		lorem, lorem,
		"Going Further\n" + lorem,
		lorem, lorem,
		"Advanced Topics\n" + lorem,
		lorem,
	}
	specPages := testutil.TextPages(texts...)
	specPages[0].Links = []testutil.PDFLink{
		{Rect: testutil.LineRect(1), DestPage: 2, Contents: "The First Steps"},
		{Rect: testutil.LineRect(2), DestPage: 5},
		{Rect: testutil.LineRect(3), DestPage: 8},
		// Duplicate destination; first label wins.
		{Rect: testutil.LineRect(1), DestPage: 2, Contents: "Duplicate"},
	}
	data := testutil.BuildPDF(testutil.PDFSpec{
		Title:  "Linked Book",
		Author: "Ada Lovelace",
		Pages:  specPages,
	})
	return data, book.PageCollection(texts)
}

func TestDetect_PDFLinks(t *testing.T) {
	data, pages := linkedBook()
	gen := &testutil.FakeGenerator{}

	got := NewDetector(Config{Generator: gen}).Detect(context.Background(), data, pages)

	if got.DetectionMethod != book.DetectionPDFLinks {
		t.Fatalf("DetectionMethod = %q, want pdf-links", got.DetectionMethod)
	}
	if len(got.Chapters) != 3 {
		t.Fatalf("got %d chapters, want 3: %+v", len(got.Chapters), got.Chapters)
	}
	wantRanges := [][2]int{{2, 4}, {5, 7}, {8, 9}}
	for i, r := range wantRanges {
		if got.Chapters[i].StartPage != r[0] || got.Chapters[i].EndPage != r[1] {
			t.Errorf("chapter %d range = %d-%d, want %d-%d", i, got.Chapters[i].StartPage, got.Chapters[i].EndPage, r[0], r[1])
		}
	}
	if got.Chapters[0].Title != "The First Steps" {
		t.Errorf("chapter 0 title = %q", got.Chapters[0].Title)
	}
	if !strings.Contains(got.Chapters[1].Title, "Going Further") {
		t.Errorf("chapter 1 title = %q, want text under the link", got.Chapters[1].Title)
	}
	if got.Title != "Linked Book" || got.Author != "Ada Lovelace" {
		t.Errorf("title/author = %q/%q", got.Title, got.Author)
	}
	if len(gen.Calls()) != 0 {
		t.Errorf("generator called %d times, want 0", len(gen.Calls()))
	}

	again := NewDetector(Config{Generator: gen}).Detect(context.Background(), data, pages)
	if !reflect.DeepEqual(got, again) {
		t.Error("link detection is not deterministic")
	}
}

func TestDetect_PDFLinksTooFew(t *testing.T) {
	specPages := testutil.TextPages("Contents\nOne\nTwo", lorem, lorem, lorem)
	specPages[0].Links = []testutil.PDFLink{
		{Rect: testutil.LineRect(1), DestPage: 1},
		{Rect: testutil.LineRect(2), DestPage: 2},
	}
	data := testutil.BuildPDF(testutil.PDFSpec{Pages: specPages})
	pages := book.PageCollection{"Contents\nOne\nTwo", lorem, lorem, lorem}

	got := NewDetector(Config{}).Detect(context.Background(), data, pages)
	if got.DetectionMethod != book.DetectionFixedChunks {
		t.Errorf("DetectionMethod = %q, want fixed-chunks", got.DetectionMethod)
	}
}

func TestDetect_PDFParseFailureFallsThrough(t *testing.T) {
	pages := fillerPages(12)
	got := NewDetector(Config{}).Detect(context.Background(), []byte("not a pdf"), pages)
	if got.DetectionMethod != book.DetectionFixedChunks {
		t.Errorf("DetectionMethod = %q, want fixed-chunks", got.DetectionMethod)
	}
}

func tocPages() book.PageCollection {
	pages := fillerPages(40)
	pages[1] = "Table of Contents\nFoundations of Logic 3\nSets and Functions 12\nProof Techniques 25\nIndex 39"
	pages[3] = "Chapter 1\nFoundations of Logic\n" + lorem
	pages[12] = "Chapter 2\nSets and Functions\n" + lorem
	pages[25] = "Chapter 3\nProof Techniques\n" + lorem
	return pages
}

func TestDetect_TitleMatch(t *testing.T) {
	pages := tocPages()
	gen := &testutil.FakeGenerator{
		Responses: map[string]any{
			extract_toc.UserPromptKey: extract_toc.Result{
				Title:    "Discrete Mathematics",
				Author:   "G. Boole",
				Chapters: []string{"Foundations of Logic", "Sets and Functions", "Proof Techniques", "Index"},
			},
		},
	}

	got := NewDetector(Config{Generator: gen}).Detect(context.Background(), nil, pages)

	if got.DetectionMethod != book.DetectionTitleMatch {
		t.Fatalf("DetectionMethod = %q, want title-match", got.DetectionMethod)
	}
	want := []book.ChapterBoundary{
		{Title: "Foundations of Logic", StartPage: 3, EndPage: 11},
		{Title: "Sets and Functions", StartPage: 12, EndPage: 24},
		{Title: "Proof Techniques", StartPage: 25, EndPage: 39},
	}
	if !reflect.DeepEqual(got.Chapters, want) {
		t.Errorf("Chapters = %+v\nwant %+v", got.Chapters, want)
	}
	if got.Title != "Discrete Mathematics" || got.Author != "G. Boole" {
		t.Errorf("title/author = %q/%q", got.Title, got.Author)
	}
	if n := len(gen.CallsFor(metadata.UserPromptKey)); n != 0 {
		t.Errorf("metadata called %d times, want 0 when the ToC supplied a title", n)
	}
}

func TestDetect_TitleMatchChapterNamesNextChapter(t *testing.T) {
	pages := fillerPages(40)
	pages[0] = "Contents\nFoundations of Logic\nSets and Functions\nProof Techniques"
	pages[3] = "Chapter 1\nFoundations of Logic\nThis chapter prepares you for Sets and Functions.\n" + lorem
	pages[12] = "Chapter 2\nSets and Functions\nWe build toward Proof Techniques.\n" + lorem
	pages[25] = "Chapter 3\nProof Techniques\n" + lorem
	gen := &testutil.FakeGenerator{
		Responses: map[string]any{
			extract_toc.UserPromptKey: extract_toc.Result{
				Title:    "Discrete Mathematics",
				Chapters: []string{"Foundations of Logic", "Sets and Functions", "Proof Techniques"},
			},
		},
	}

	got := NewDetector(Config{Generator: gen}).Detect(context.Background(), nil, pages)

	want := []book.ChapterBoundary{
		{Title: "Foundations of Logic", StartPage: 3, EndPage: 11},
		{Title: "Sets and Functions", StartPage: 12, EndPage: 24},
		{Title: "Proof Techniques", StartPage: 25, EndPage: 39},
	}
	if got.DetectionMethod != book.DetectionTitleMatch || !reflect.DeepEqual(got.Chapters, want) {
		t.Errorf("got %s %+v\nwant %+v", got.DetectionMethod, got.Chapters, want)
	}
}

func TestDetect_TitleMatchFallsThrough(t *testing.T) {
	pages := fillerPages(40)
	gen := &testutil.FakeGenerator{
		Responses: map[string]any{
			extract_toc.UserPromptKey: extract_toc.Result{Chapters: []string{"Nowhere To Be Found", "Also Missing Here"}},
			detect_boundaries.UserPromptKey: detect_boundaries.Result{
				Boundaries: []detect_boundaries.Boundary{{Title: "Only", Page: 1}},
			},
			metadata.UserPromptKey: metadata.Result{Title: "Filler"},
		},
	}
	got := NewDetector(Config{Generator: gen}).Detect(context.Background(), nil, pages)
	if got.DetectionMethod != book.DetectionFixedChunks {
		t.Errorf("DetectionMethod = %q, want fixed-chunks", got.DetectionMethod)
	}
	if got.Title != "Filler" {
		t.Errorf("Title = %q, want metadata title", got.Title)
	}
}

func TestLocateTitles(t *testing.T) {
	pages := book.PageCollection{
		"Contents: Linear Algebra, Calculus Basics",
		"Linear Algebra begins here",
		"calculus   BASICS!",
		"Linear algebra again",
	}
	got := locateTitles([]string{"Linear Algebra", "Calculus Basics", "Sets"}, pages, 15)
	want := []book.ChapterBoundary{
		{Title: "Linear Algebra", StartPage: 1},
		{Title: "Calculus Basics", StartPage: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("locateTitles() = %+v, want %+v", got, want)
	}
}

func TestContentsPage(t *testing.T) {
	norms := []string{"linearalgebra", "calculusbasics", "probability"}
	tests := []struct {
		name  string
		pages []string
		want  int
	}{
		{"page listing most titles", []string{"linearalgebra", "linearalgebracalculusbasics", "linearalgebracalculusbasicsprobability"}, 2},
		{"two of three titles", []string{"preface", "linearalgebracalculusbasics"}, 1},
		{"single title", []string{"linearalgebra"}, -1},
		{"beyond scanned pages", []string{"a", "b", "c", "linearalgebracalculusbasicsprobability"}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contentsPage(norms, tt.pages, 3); got != tt.want {
				t.Errorf("contentsPage() = %d, want %d", got, tt.want)
			}
		})
	}

	t.Run("minority of titles", func(t *testing.T) {
		five := append(norms, "statistics", "geometry")
		if got := contentsPage(five, []string{"linearalgebracalculusbasics"}, 3); got != -1 {
			t.Errorf("contentsPage() = %d, want -1", got)
		}
	})
}

func TestDetect_LLMDetection(t *testing.T) {
	t.Run("pattern matches preferred", func(t *testing.T) {
		pages := fillerPages(60)
		for i, p := range []int{0, 20, 41} {
			pages[p] = fmt.Sprintf("CHAPTER %d\nHeading %d\n%s", i+1, i+1, lorem)
		}
		gen := &testutil.FakeGenerator{
			Errors: map[string]error{extract_toc.UserPromptKey: errors.New("no toc")},
			Responses: map[string]any{
				detect_boundaries.UserPromptKey: detect_boundaries.Result{
					Pattern: `^CHAPTER \d+$`,
					Boundaries: []detect_boundaries.Boundary{
						{Title: "One", Page: 1},
						{Title: "Two", Page: 21},
					},
				},
				metadata.UserPromptKey: metadata.Result{Title: "Sampled", Author: "Someone"},
			},
		}

		got := NewDetector(Config{Generator: gen}).Detect(context.Background(), nil, pages)
		if got.DetectionMethod != book.DetectionLLM {
			t.Fatalf("DetectionMethod = %q, want llm-detection", got.DetectionMethod)
		}
		if len(got.Chapters) != 3 {
			t.Fatalf("got %d chapters, want 3 from pattern: %+v", len(got.Chapters), got.Chapters)
		}
		if got.Chapters[2].StartPage != 41 || got.Chapters[2].Title != "CHAPTER 3" {
			t.Errorf("chapter 3 = %+v", got.Chapters[2])
		}
		if got.Title != "Sampled" || got.Author != "Someone" {
			t.Errorf("title/author = %q/%q", got.Title, got.Author)
		}

		calls := gen.CallsFor(detect_boundaries.UserPromptKey)
		if len(calls) != 1 {
			t.Fatalf("boundary calls = %d", len(calls))
		}
		data := calls[0].Data.(detect_boundaries.UserData)
		if data.SampleCount != 30 || data.TotalPages != 60 {
			t.Errorf("sample = %d of %d", data.SampleCount, data.TotalPages)
		}
	})

	t.Run("sampled boundaries are 1-based", func(t *testing.T) {
		pages := fillerPages(30)
		gen := &testutil.FakeGenerator{
			Errors: map[string]error{extract_toc.UserPromptKey: errors.New("no toc")},
			Responses: map[string]any{
				detect_boundaries.UserPromptKey: detect_boundaries.Result{
					Pattern: "([unclosed",
					Boundaries: []detect_boundaries.Boundary{
						{Title: "Intro", Page: 1},
						{Title: "Body", Page: 11},
						{Title: "Out of range", Page: 99},
					},
				},
				metadata.UserPromptKey: metadata.Result{Title: "T"},
			},
		}
		got := NewDetector(Config{Generator: gen}).Detect(context.Background(), nil, pages)
		want := []book.ChapterBoundary{
			{Title: "Intro", StartPage: 0, EndPage: 9},
			{Title: "Body", StartPage: 10, EndPage: 29},
		}
		if got.DetectionMethod != book.DetectionLLM || !reflect.DeepEqual(got.Chapters, want) {
			t.Errorf("got %s %+v, want %+v", got.DetectionMethod, got.Chapters, want)
		}
	})

	t.Run("skipped for short books", func(t *testing.T) {
		pages := fillerPages(9)
		gen := &testutil.FakeGenerator{
			Errors: map[string]error{extract_toc.UserPromptKey: errors.New("no toc")},
		}
		got := NewDetector(Config{Generator: gen}).Detect(context.Background(), nil, pages)
		if got.DetectionMethod != book.DetectionFixedChunks {
			t.Errorf("DetectionMethod = %q", got.DetectionMethod)
		}
		if n := len(gen.CallsFor(detect_boundaries.UserPromptKey)); n != 0 {
			t.Errorf("boundary detection called %d times for a 9-page book", n)
		}
		if got.Title != book.DefaultTitle {
			t.Errorf("Title = %q, want default after metadata failure", got.Title)
		}
	})
}

func TestSamplePages(t *testing.T) {
	if got := samplePages(10, 30); len(got) != 10 {
		t.Errorf("samplePages(10) = %v", got)
	}
	got := samplePages(95, 30)
	if got[1] != 3 || len(got) != 32 {
		t.Errorf("samplePages(95) step/len = %d/%d", got[1], len(got))
	}
}

func TestScanPattern(t *testing.T) {
	pages := book.PageCollection{
		"Chapter 1\ntext",
		"some text\nsee Chapter 1 for details",
		"1\n2\n3\n4\n5\nChapter 9 deep in the page",
		"chapter 2: Loops",
	}
	hits := scanPattern(`(?i)^chapter \d+`, pages)
	var starts []int
	for _, h := range hits {
		starts = append(starts, h.StartPage)
	}
	if !reflect.DeepEqual(starts, []int{0, 2, 3}) {
		t.Errorf("scanPattern() starts = %v, want [0 2 3]", starts)
	}
	if hits[1].Title != "Chapter 9 deep in the page" {
		t.Errorf("heading below the first lines = %q", hits[1].Title)
	}
	if scanPattern(".*", pages) != nil {
		t.Error("pattern matching the empty string should be ignored")
	}
	if scanPattern("", pages) != nil {
		t.Error("empty pattern should yield nothing")
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Chapter 1: The Beginning!": "chapter1thebeginning",
		"  Ünïcode Títle ":          "ünïcodetítle",
		"---":                       "",
	}
	for in, want := range tests {
		if got := normalize(in); got != want {
			t.Errorf("normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

type staticStrategy struct {
	method book.DetectionMethod
	result *book.BookStructure
}

func (s staticStrategy) Method() book.DetectionMethod { return s.method }
func (s staticStrategy) Detect(context.Context, []byte, book.PageCollection) (*book.BookStructure, bool) {
	return s.result, s.result != nil
}

func TestDetect_RejectsInvalidBoundaries(t *testing.T) {
	bad := staticStrategy{
		method: book.DetectionLLM,
		result: &book.BookStructure{Title: "x", Chapters: []book.ChapterBoundary{{Title: "a", StartPage: 5, EndPage: 2}}},
	}
	got := NewDetectorWithStrategies(Config{}, bad).Detect(context.Background(), nil, fillerPages(10))
	if got.DetectionMethod != book.DetectionFixedChunks {
		t.Errorf("DetectionMethod = %q, want fixed-chunks", got.DetectionMethod)
	}
}
