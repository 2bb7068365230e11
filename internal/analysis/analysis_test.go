package analysis

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/pdftext"
	"github.com/enesgrahovac/book-quest/internal/prompts/chapter_analysis"
	"github.com/enesgrahovac/book-quest/internal/structure"
	"github.com/enesgrahovac/book-quest/internal/structured"
	"github.com/enesgrahovac/book-quest/internal/testutil"
)

func TestAnalyzer_Fallback(t *testing.T) {
	in := ChapterInput{
		Number:   2,
		Boundary: book.ChapterBoundary{Title: "Loops", StartPage: 10, EndPage: 19},
		Text:     strings.Repeat("word ", 2000),
	}

	tests := []struct {
		name string
		gen  structured.Client
	}{
		{"nil generator", nil},
		{"unavailable", &testutil.FakeGenerator{Unavailable: true}},
		{"generator error", &testutil.FakeGenerator{Errors: map[string]error{
			chapter_analysis.UserPromptKey: errors.New("boom"),
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewAnalyzer(tt.gen, 0, nil).Analyze(context.Background(), in)
			if got.EstimatedReadingMinutes != 8 {
				t.Errorf("EstimatedReadingMinutes = %d, want 8", got.EstimatedReadingMinutes)
			}
			if got.Summary != `Chapter 2, "Loops", covers pages 11-20.` {
				t.Errorf("Summary = %q", got.Summary)
			}
			if got.KeyConcepts == nil || len(got.KeyConcepts) != 0 || len(got.LearningObjectives) != 0 || len(got.Prerequisites) != 0 {
				t.Errorf("expected empty non-nil lists, got %+v", got)
			}
		})
	}

	t.Run("short chapters read for at least five minutes", func(t *testing.T) {
		got := NewAnalyzer(nil, 0, nil).Analyze(context.Background(), ChapterInput{Number: 1, Text: "tiny"})
		if got.EstimatedReadingMinutes < book.MinFallbackReadingMin {
			t.Errorf("EstimatedReadingMinutes = %d", got.EstimatedReadingMinutes)
		}
	})
}

func TestAnalyzer_Generated(t *testing.T) {
	gen := &testutil.FakeGenerator{
		Responses: map[string]any{
			chapter_analysis.UserPromptKey: chapter_analysis.Result{
				Summary:                 "  Covers loops.  ",
				KeyConcepts:             []string{"for loops", " ", "while loops"},
				LearningObjectives:      []string{"Write a loop"},
				Prerequisites:           nil,
				EstimatedReadingMinutes: 0,
			},
		},
	}
	in := ChapterInput{
		Number:           3,
		Boundary:         book.ChapterBoundary{Title: "Loops", StartPage: 0, EndPage: 1},
		Text:             strings.Repeat("word ", 1500),
		PreviousConcepts: []string{"variables"},
	}

	got := NewAnalyzer(gen, 0, nil).Analyze(context.Background(), in)

	want := book.ChapterFields{
		Summary:                 "Covers loops.",
		KeyConcepts:             []string{"for loops", "while loops"},
		LearningObjectives:      []string{"Write a loop"},
		Prerequisites:           []string{},
		EstimatedReadingMinutes: 6,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Analyze() = %+v\nwant %+v", got, want)
	}

	calls := gen.CallsFor(chapter_analysis.UserPromptKey)
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	data := calls[0].Data.(chapter_analysis.UserData)
	if !reflect.DeepEqual(data.PreviousConcepts, []string{"variables"}) {
		t.Errorf("PreviousConcepts = %v", data.PreviousConcepts)
	}
	if data.StartPage != 1 || data.EndPage != 2 {
		t.Errorf("display pages = %d-%d, want 1-2", data.StartPage, data.EndPage)
	}
}

func TestAnalyzer_Truncation(t *testing.T) {
	gen := &testutil.FakeGenerator{
		Responses: map[string]any{
			chapter_analysis.UserPromptKey: chapter_analysis.Result{Summary: "s", EstimatedReadingMinutes: 12},
		},
	}
	text := strings.Repeat("é", 150)
	NewAnalyzer(gen, 100, nil).Analyze(context.Background(), ChapterInput{Number: 1, Text: text})

	sent := gen.Calls()[0].Data.(chapter_analysis.UserData).Text
	if !strings.HasSuffix(sent, TruncationMarker) {
		t.Errorf("truncated text missing marker: %q", sent[len(sent)-50:])
	}
	if !strings.HasPrefix(sent, strings.Repeat("é", 100)+"\n") {
		t.Error("truncated text should keep the first 100 characters")
	}

	if got, cut := truncateChapter("short", 100); cut || got != "short" {
		t.Errorf("truncateChapter(short) = %q, %v", got, cut)
	}
}

// conceptGenerator returns concepts named after the chapter and records the
// context each chapter received.
type conceptGenerator struct {
	mu      sync.Mutex
	context map[int][]string
}

func (g *conceptGenerator) Available() bool { return true }

func (g *conceptGenerator) Generate(_ context.Context, req structured.Request, out any) error {
	data := req.Data.(chapter_analysis.UserData)
	g.mu.Lock()
	g.context[data.ChapterNumber-1] = data.PreviousConcepts
	g.mu.Unlock()

	res := out.(*chapter_analysis.Result)
	res.Summary = data.Title
	res.KeyConcepts = []string{fmt.Sprintf("concept-%d", data.ChapterNumber-1)}
	res.EstimatedReadingMinutes = 10
	return nil
}

func twelveChapters() (book.BookStructure, book.PageCollection) {
	pages := make(book.PageCollection, 24)
	for i := range pages {
		pages[i] = fmt.Sprintf("page %d text", i)
	}
	var chapters []book.ChapterBoundary
	for i := 0; i < 12; i++ {
		chapters = append(chapters, book.ChapterBoundary{
			Title:     fmt.Sprintf("Chapter %d", i+1),
			StartPage: 2 * i,
			EndPage:   2*i + 1,
		})
	}
	return book.BookStructure{Title: "Twelve", Chapters: chapters, DetectionMethod: book.DetectionPDFLinks}, pages
}

func TestOrchestrator_BatchContext(t *testing.T) {
	bs, pages := twelveChapters()
	gen := &conceptGenerator{context: make(map[int][]string)}
	o := NewOrchestrator(NewAnalyzer(gen, 0, nil), 5, nil)

	results := o.AnalyzeAll(context.Background(), bs, pages)

	if len(results) != 12 {
		t.Fatalf("got %d results, want 12", len(results))
	}
	for i, r := range results {
		if r.ChapterNumber != i+1 {
			t.Errorf("result %d ChapterNumber = %d", i, r.ChapterNumber)
		}
		if r.Title != bs.Chapters[i].Title || r.Summary != bs.Chapters[i].Title {
			t.Errorf("result %d out of order: %+v", i, r)
		}
	}

	if ctx := gen.context[0]; ctx != nil {
		t.Errorf("chapter 0 context = %v, want none", ctx)
	}
	if ctx := gen.context[5]; !reflect.DeepEqual(ctx, []string{"concept-4"}) {
		t.Errorf("chapter 5 context = %v, want [concept-4]", ctx)
	}
	if ctx := gen.context[10]; !reflect.DeepEqual(ctx, []string{"concept-9"}) {
		t.Errorf("chapter 10 context = %v, want [concept-9]", ctx)
	}
	for _, i := range []int{1, 2, 3, 4, 6, 11} {
		if ctx := gen.context[i]; ctx != nil {
			t.Errorf("chapter %d context = %v, want none within a batch", i, ctx)
		}
	}
}

// slowGenerator tracks how many chapter calls are in flight at once.
type slowGenerator struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (g *slowGenerator) Available() bool { return true }

func (g *slowGenerator) Generate(ctx context.Context, req structured.Request, out any) error {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	out.(*chapter_analysis.Result).Summary = "ok"
	return nil
}

func TestOrchestrator_ConcurrencyBound(t *testing.T) {
	bs, pages := twelveChapters()
	gen := &slowGenerator{}
	results := NewOrchestrator(NewAnalyzer(gen, 0, nil), 3, nil).AnalyzeAll(context.Background(), bs, pages)

	if len(results) != 12 {
		t.Fatalf("got %d results, want 12", len(results))
	}
	if peak := gen.peak.Load(); peak > 3 || peak < 1 {
		t.Errorf("peak concurrent calls = %d, want 1..3", peak)
	}
	for i, r := range results {
		if r.ChapterNumber != i+1 || r.Summary != "ok" {
			t.Errorf("result %d = %+v", i, r)
		}
	}
}

func TestOrchestrator_Fallback(t *testing.T) {
	bs, pages := twelveChapters()
	results := NewOrchestrator(NewAnalyzer(nil, 0, nil), 0, nil).AnalyzeAll(context.Background(), bs, pages)
	if len(results) != len(bs.Chapters) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.ChapterNumber != i+1 || r.EstimatedReadingMinutes < 5 {
			t.Errorf("result %d = %+v", i, r)
		}
	}

	if got := NewOrchestrator(NewAnalyzer(nil, 0, nil), 5, nil).AnalyzeAll(context.Background(), book.BookStructure{}, nil); len(got) != 0 {
		t.Errorf("empty structure produced %d results", len(got))
	}
}

func TestPipeline_Analyze(t *testing.T) {
	t.Run("lorem PDF without generator", func(t *testing.T) {
		data := testutil.BuildPDF(testutil.PDFSpec{
			Pages: testutil.TextPages("Lorem ipsum dolor sit amet", "", ""),
		})
		p := NewPipeline(
			structure.NewDetector(structure.Config{}),
			NewOrchestrator(NewAnalyzer(nil, 0, nil), 5, nil),
			nil,
		)

		res, err := p.Analyze(context.Background(), data)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		a := res.Analysis
		if a.TotalPages != 3 || a.DetectionMethod != book.DetectionFixedChunks || a.Title != book.DefaultTitle {
			t.Errorf("analysis = %+v", a)
		}
		if len(a.Chapters) != 1 || a.Chapters[0].ChapterNumber != 1 || a.Chapters[0].EndPage != 2 {
			t.Errorf("chapters = %+v", a.Chapters)
		}
		if res.Pages.Total() != 3 {
			t.Errorf("pages = %d", res.Pages.Total())
		}
	})

	t.Run("unreadable PDF", func(t *testing.T) {
		p := NewPipeline(structure.NewDetector(structure.Config{}), NewOrchestrator(NewAnalyzer(nil, 0, nil), 5, nil), nil)
		_, err := p.Analyze(context.Background(), []byte("garbage"))
		if !errors.Is(err, pdftext.ErrUnreadablePDF) {
			t.Errorf("expected ErrUnreadablePDF, got %v", err)
		}
	})
}
