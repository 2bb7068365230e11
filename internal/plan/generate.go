package plan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/prompts/course_plan"
	"github.com/enesgrahovac/book-quest/internal/structured"
)

// Planner turns a book analysis into a course plan.
type Planner struct {
	gen    structured.Client
	logger *slog.Logger
}

// NewPlanner creates a Planner. gen may be nil.
func NewPlanner(gen structured.Client, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{gen: gen, logger: logger}
}

// Generate builds a plan. Without a working generator every chapter becomes
// its own unit.
func (p *Planner) Generate(ctx context.Context, analysis *book.BookAnalysis, goals string) CoursePlan {
	plan := CoursePlan{Goals: strings.TrimSpace(goals), Units: []Unit{}}
	if analysis == nil {
		return plan
	}
	plan.Title = analysis.Title
	if len(analysis.Chapters) == 0 {
		return plan
	}

	plan.Units = p.generateUnits(ctx, analysis, plan.Goals)
	plan.Renumber()
	return plan
}

func (p *Planner) generateUnits(ctx context.Context, analysis *book.BookAnalysis, goals string) []Unit {
	if p.gen == nil || !p.gen.Available() {
		return fallbackUnits(analysis)
	}

	var result course_plan.PlanResult
	req := course_plan.NewGenerateRequest(course_plan.GenerateData{
		BookTitle:    analysis.Title,
		BookAuthor:   analysis.Author,
		Goals:        goals,
		ChaptersText: chaptersText(analysis.Chapters),
	})
	if err := p.gen.Generate(ctx, req, &result); err != nil {
		p.logger.Warn("plan generation failed, using one unit per chapter", "error", err)
		return fallbackUnits(analysis)
	}

	units := sanitizeUnits(result.Units, analysis)
	kept := units[:0]
	for _, u := range units {
		if len(u.ChapterNumbers) > 0 {
			kept = append(kept, u)
		}
	}
	if len(kept) == 0 {
		p.logger.Warn("plan generation returned no usable units, using one unit per chapter")
		return fallbackUnits(analysis)
	}
	return kept
}

func fallbackUnits(analysis *book.BookAnalysis) []Unit {
	units := make([]Unit, 0, len(analysis.Chapters))
	for _, ch := range analysis.Chapters {
		units = append(units, unitForChapter(ch))
	}
	return units
}

// chaptersText renders chapters for a prompt. Pages are shown 1-based.
func chaptersText(chapters []book.ChapterAnalysis) string {
	var b strings.Builder
	for _, ch := range chapters {
		fmt.Fprintf(&b, "Chapter %d: %s (pages %d-%d, ~%d min)\n",
			ch.ChapterNumber, ch.Title, ch.StartPage+1, ch.EndPage+1, ch.EstimatedReadingMinutes)
		if ch.Summary != "" {
			fmt.Fprintf(&b, "  Summary: %s\n", ch.Summary)
		}
		if len(ch.KeyConcepts) > 0 {
			fmt.Fprintf(&b, "  Key concepts: %s\n", strings.Join(ch.KeyConcepts, ", "))
		}
		if len(ch.LearningObjectives) > 0 {
			fmt.Fprintf(&b, "  Objectives: %s\n", strings.Join(ch.LearningObjectives, "; "))
		}
	}
	return b.String()
}
