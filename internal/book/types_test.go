package book

import "testing"

func TestFillBoundaries(t *testing.T) {
	t.Run("sorts and fills end pages", func(t *testing.T) {
		got := FillBoundaries([]ChapterBoundary{
			{Title: "Two", StartPage: 40},
			{Title: "One", StartPage: 10},
			{Title: "Three", StartPage: 75},
		}, 100)

		want := []ChapterBoundary{
			{Title: "One", StartPage: 10, EndPage: 39},
			{Title: "Two", StartPage: 40, EndPage: 74},
			{Title: "Three", StartPage: 75, EndPage: 99},
		}
		if len(got) != len(want) {
			t.Fatalf("got %d chapters, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("chapter %d = %+v, want %+v", i, got[i], want[i])
			}
		}
		if err := ValidateBoundaries(got, 100); err != nil {
			t.Errorf("ValidateBoundaries() error = %v", err)
		}
	})

	t.Run("collapses shared start pages keeping first", func(t *testing.T) {
		got := FillBoundaries([]ChapterBoundary{
			{Title: "First", StartPage: 5},
			{Title: "Duplicate", StartPage: 5},
			{Title: "Next", StartPage: 8},
		}, 10)
		if len(got) != 2 {
			t.Fatalf("got %d chapters, want 2", len(got))
		}
		if got[0].Title != "First" || got[0].EndPage != 7 {
			t.Errorf("first chapter = %+v", got[0])
		}
	})

	t.Run("drops out of range starts", func(t *testing.T) {
		got := FillBoundaries([]ChapterBoundary{
			{Title: "Negative", StartPage: -1},
			{Title: "Valid", StartPage: 2},
			{Title: "Past end", StartPage: 12},
		}, 10)
		if len(got) != 1 || got[0].Title != "Valid" || got[0].EndPage != 9 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := FillBoundaries(nil, 10); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestValidateBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		chapters []ChapterBoundary
		wantErr  bool
	}{
		{"valid", []ChapterBoundary{{StartPage: 0, EndPage: 4}, {StartPage: 5, EndPage: 9}}, false},
		{"gap allowed", []ChapterBoundary{{StartPage: 0, EndPage: 3}, {StartPage: 5, EndPage: 7}}, false},
		{"overlap", []ChapterBoundary{{StartPage: 0, EndPage: 5}, {StartPage: 5, EndPage: 9}}, true},
		{"inverted", []ChapterBoundary{{StartPage: 4, EndPage: 2}}, true},
		{"past end", []ChapterBoundary{{StartPage: 0, EndPage: 10}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBoundaries(tt.chapters, 10)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBoundaries() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFallbackReadingMinutes(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 5},
		{1000, 5},
		{1250, 5},
		{2500, 10},
		{25000, 100},
	}
	for _, tt := range tests {
		if got := FallbackReadingMinutes(tt.words); got != tt.want {
			t.Errorf("FallbackReadingMinutes(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}
}

func TestBookAnalysis_UncoveredTail(t *testing.T) {
	a := &BookAnalysis{
		TotalPages: 120,
		Chapters: []ChapterAnalysis{
			{ChapterNumber: 1, ChapterBoundary: ChapterBoundary{StartPage: 0, EndPage: 99}},
		},
	}
	start, ok := a.UncoveredTail()
	if !ok || start != 100 {
		t.Errorf("UncoveredTail() = %d, %v; want 100, true", start, ok)
	}

	a.Chapters[0].EndPage = 119
	if _, ok := a.UncoveredTail(); ok {
		t.Error("expected fully covered book to report no tail")
	}
}

func TestPageCollection_Range(t *testing.T) {
	pages := PageCollection{"a", "b", "c", "d"}
	if got := pages.Range(1, 2); len(got) != 2 || got[0] != "b" {
		t.Errorf("Range(1,2) = %v", got)
	}
	if got := pages.Range(-3, 10); len(got) != 4 {
		t.Errorf("Range clamps, got %v", got)
	}
	if got := pages.Range(3, 1); got != nil {
		t.Errorf("inverted Range should be nil, got %v", got)
	}
}
