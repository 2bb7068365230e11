// Package plan generates course plans from a book analysis and applies a
// learner's edit instructions, discovering chapters that structure
// detection missed when the learner reports missing content.
package plan

import (
	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/prompts/course_plan"
)

// Unit is one step of a course.
type Unit struct {
	UnitNumber         int      `json:"unitNumber" yaml:"unit_number"`
	Title              string   `json:"title" yaml:"title"`
	Description        string   `json:"description" yaml:"description"`
	ChapterNumbers     []int    `json:"chapterNumbers" yaml:"chapter_numbers"`
	LearningObjectives []string `json:"learningObjectives" yaml:"learning_objectives"`
	EstimatedMinutes   int      `json:"estimatedMinutes" yaml:"estimated_minutes"`
}

// CoursePlan is an ordered list of units built from one book.
type CoursePlan struct {
	Title string `json:"title" yaml:"title"`
	Goals string `json:"goals,omitempty" yaml:"goals,omitempty"`
	Units []Unit `json:"units" yaml:"units"`
}

// Renumber sets unit numbers to 1..n in order.
func (p *CoursePlan) Renumber() {
	for i := range p.Units {
		p.Units[i].UnitNumber = i + 1
	}
}

// Clone returns a deep copy of the plan.
func (p CoursePlan) Clone() CoursePlan {
	out := p
	out.Units = make([]Unit, len(p.Units))
	for i, u := range p.Units {
		u.ChapterNumbers = append([]int{}, u.ChapterNumbers...)
		u.LearningObjectives = append([]string{}, u.LearningObjectives...)
		out.Units[i] = u
	}
	return out
}

// unitForChapter builds the deterministic unit covering a single chapter.
func unitForChapter(ch book.ChapterAnalysis) Unit {
	return Unit{
		Title:              ch.Title,
		Description:        ch.Summary,
		ChapterNumbers:     []int{ch.ChapterNumber},
		LearningObjectives: append([]string{}, ch.LearningObjectives...),
		EstimatedMinutes:   max(1, ch.EstimatedReadingMinutes),
	}
}

// sanitizeUnits converts model units, drops chapter numbers that do not
// exist in the analysis, and fills a missing study time from the chapters.
func sanitizeUnits(units []course_plan.Unit, analysis *book.BookAnalysis) []Unit {
	minutes := make(map[int]int)
	if analysis != nil {
		for _, ch := range analysis.Chapters {
			minutes[ch.ChapterNumber] = ch.EstimatedReadingMinutes
		}
	}

	out := make([]Unit, 0, len(units))
	for _, u := range units {
		unit := Unit{
			Title:              u.Title,
			Description:        u.Description,
			ChapterNumbers:     []int{},
			LearningObjectives: []string{},
			EstimatedMinutes:   u.EstimatedMinutes,
		}
		seen := make(map[int]bool)
		total := 0
		for _, n := range u.ChapterNumbers {
			m, ok := minutes[n]
			if !ok || seen[n] {
				continue
			}
			seen[n] = true
			total += m
			unit.ChapterNumbers = append(unit.ChapterNumbers, n)
		}
		for _, o := range u.LearningObjectives {
			if o != "" {
				unit.LearningObjectives = append(unit.LearningObjectives, o)
			}
		}
		if unit.EstimatedMinutes <= 0 {
			unit.EstimatedMinutes = max(1, total)
		}
		out = append(out, unit)
	}
	return out
}
