package coursestore

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/plan"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(t.TempDir(), nil)
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestStore_AbsentDocuments(t *testing.T) {
	s := newTestStore(t)
	k := Key{UserID: "u1", CourseID: "c1"}

	a, err := s.LoadAnalysis(k)
	if err != nil || a != nil {
		t.Errorf("LoadAnalysis() = %v, %v; want nil, nil", a, err)
	}
	p, err := s.LoadPlan(k)
	if err != nil || p != nil {
		t.Errorf("LoadPlan() = %v, %v; want nil, nil", p, err)
	}
	pages, err := s.LoadPages(k)
	if err != nil || pages != nil {
		t.Errorf("LoadPages() = %v, %v; want nil, nil", pages, err)
	}
	ts, err := s.UpdatedAt(k, PlanFile)
	if err != nil || !ts.IsZero() {
		t.Errorf("UpdatedAt() = %v, %v", ts, err)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	k := Key{UserID: "user-1", CourseID: "course_a"}

	analysis := &book.BookAnalysis{
		Title:           "Dune",
		Author:          "Frank Herbert",
		TotalPages:      10,
		DetectionMethod: book.DetectionPDFLinks,
		Chapters: []book.ChapterAnalysis{{
			ChapterNumber:   1,
			ChapterBoundary: book.ChapterBoundary{Title: "Book One", StartPage: 0, EndPage: 9},
			ChapterFields: book.ChapterFields{
				Summary:                 "Arrakis",
				KeyConcepts:             []string{"spice"},
				LearningObjectives:      []string{},
				Prerequisites:           []string{},
				EstimatedReadingMinutes: 12,
			},
		}},
	}
	if err := s.SaveAnalysis(k, analysis); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}
	gotAnalysis, err := s.LoadAnalysis(k)
	if err != nil {
		t.Fatalf("LoadAnalysis() error = %v", err)
	}
	if !reflect.DeepEqual(gotAnalysis, analysis) {
		t.Errorf("LoadAnalysis() = %+v, want %+v", gotAnalysis, analysis)
	}

	pages := book.PageCollection{"one", "two"}
	if err := s.SavePages(k, pages); err != nil {
		t.Fatalf("SavePages() error = %v", err)
	}
	gotPages, err := s.LoadPages(k)
	if err != nil || !reflect.DeepEqual(gotPages, pages) {
		t.Errorf("LoadPages() = %v, %v", gotPages, err)
	}

	p := &plan.CoursePlan{Title: "Dune", Units: []plan.Unit{{UnitNumber: 1, Title: "Arrakis", ChapterNumbers: []int{1}, LearningObjectives: []string{}, EstimatedMinutes: 12}}}
	if err := s.SavePlan(k, p); err != nil {
		t.Fatalf("SavePlan() error = %v", err)
	}
	gotPlan, err := s.LoadPlan(k)
	if err != nil || !reflect.DeepEqual(gotPlan, p) {
		t.Errorf("LoadPlan() = %+v, %v", gotPlan, err)
	}

	ts, err := s.UpdatedAt(k, PlanFile)
	if err != nil {
		t.Fatal(err)
	}
	if !ts.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("UpdatedAt() = %v", ts)
	}

	entries, err := os.ReadDir(filepath.Join(s.root, "user-1", "course_a"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("course dir has %v, want only the three documents", names)
	}
}

func TestStore_CoursesAreIsolated(t *testing.T) {
	s := newTestStore(t)
	a := Key{UserID: "u", CourseID: "a"}
	b := Key{UserID: "u", CourseID: "b"}

	if err := s.SavePlan(a, &plan.CoursePlan{Title: "A"}); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadPlan(b)
	if err != nil || got != nil {
		t.Errorf("LoadPlan(b) = %v, %v", got, err)
	}

	if err := s.Delete(a); err != nil {
		t.Fatal(err)
	}
	got, err = s.LoadPlan(a)
	if err != nil || got != nil {
		t.Errorf("LoadPlan(a) after delete = %v, %v", got, err)
	}
	if err := s.Delete(a); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestStore_InvalidIDs(t *testing.T) {
	s := newTestStore(t)
	keys := []Key{
		{UserID: "", CourseID: "c"},
		{UserID: "u", CourseID: "  "},
		{UserID: "..", CourseID: "c"},
		{UserID: "u", CourseID: "a/b"},
		{UserID: `a\b`, CourseID: "c"},
		{UserID: "u", CourseID: "x..y"},
	}
	for _, k := range keys {
		if err := s.SavePlan(k, &plan.CoursePlan{}); !errors.Is(err, ErrInvalidID) {
			t.Errorf("SavePlan(%+v) error = %v, want ErrInvalidID", k, err)
		}
		if _, err := s.LoadAnalysis(k); !errors.Is(err, ErrInvalidID) {
			t.Errorf("LoadAnalysis(%+v) error = %v, want ErrInvalidID", k, err)
		}
	}
}

func TestStore_CorruptDocument(t *testing.T) {
	s := newTestStore(t)
	k := Key{UserID: "u", CourseID: "c"}
	dir := filepath.Join(s.root, "u", "c")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, PlanFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadPlan(k); err == nil {
		t.Error("expected error for corrupt document")
	}
}
