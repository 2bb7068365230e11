package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/prompts/course_plan"
	"github.com/enesgrahovac/book-quest/internal/prompts/discover_gaps"
	"github.com/enesgrahovac/book-quest/internal/structured"
)

const (
	// DefaultGapTextChars caps the uncovered page text sent for discovery.
	DefaultGapTextChars = 12000

	// readingMinutesScale spreads a notional 120 minutes over the whole book
	// when estimating discovered chapter reading time.
	readingMinutesScale = 120
)

// Explanations returned when the plan is left unchanged.
const (
	ExplanationUnavailable = "Automatic plan editing is unavailable because no language model provider is configured. Your plan has not been changed."
	ExplanationEditFailed  = "I couldn't apply that change automatically. Your plan has not been changed."
	ExplanationNoneFound   = "I looked through the pages after the last chapter but didn't find any additional chapters. Your plan has not been changed."
)

// ReconcileInput is an edit request against an existing plan.
type ReconcileInput struct {
	Plan        CoursePlan
	Instruction string

	// Analysis and Pages are optional. Without them missing-content
	// requests are handled as standard edits.
	Analysis *book.BookAnalysis
	Pages    book.PageCollection
}

// ReconcileResult is the outcome of an edit. UpdatedAnalysis is set only
// when chapters were discovered and merged.
type ReconcileResult struct {
	Plan            CoursePlan         `json:"plan"`
	UpdatedAnalysis *book.BookAnalysis `json:"updatedAnalysis,omitempty"`
	Explanation     string             `json:"explanation"`
}

// Reconciler applies edit instructions to course plans.
type Reconciler struct {
	gen          structured.Client
	gapTextChars int
	logger       *slog.Logger
}

// NewReconciler creates a Reconciler. gen may be nil.
func NewReconciler(gen structured.Client, gapTextChars int, logger *slog.Logger) *Reconciler {
	if gapTextChars <= 0 {
		gapTextChars = DefaultGapTextChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{gen: gen, gapTextChars: gapTextChars, logger: logger}
}

// Reconcile applies the instruction. It never fails; on any error the input
// plan is returned unchanged with an explanation.
func (r *Reconciler) Reconcile(ctx context.Context, in ReconcileInput) ReconcileResult {
	unchanged := func(explanation string) ReconcileResult {
		return ReconcileResult{Plan: in.Plan.Clone(), Explanation: explanation}
	}

	if r.gen == nil || !r.gen.Available() {
		return unchanged(ExplanationUnavailable)
	}

	if IsMissingContentIntent(in.Instruction) {
		if start, ok := r.gapStart(in); ok {
			r.logger.Info("reconciling missing content", "uncovered_from", start, "total_pages", in.Analysis.TotalPages)
			return r.discoverAndMerge(ctx, in, start, unchanged)
		}
		r.logger.Debug("missing-content request without uncovered pages, using standard edit")
	}
	return r.edit(ctx, in, unchanged)
}

// gapStart returns the first uncovered page when discovery can run.
func (r *Reconciler) gapStart(in ReconcileInput) (int, bool) {
	if in.Analysis == nil || len(in.Pages) == 0 {
		return 0, false
	}
	start, ok := in.Analysis.UncoveredTail()
	if !ok || start >= len(in.Pages) {
		return 0, false
	}
	return start, true
}

func (r *Reconciler) discoverAndMerge(ctx context.Context, in ReconcileInput, start int, unchanged func(string) ReconcileResult) ReconcileResult {
	total := in.Analysis.TotalPages
	end := min(total, len(in.Pages)) - 1

	lastTitle, lastEnd := "", start-1
	if last := in.Analysis.LastChapter(); last != nil {
		lastTitle, lastEnd = last.Title, last.EndPage
	}

	var found discover_gaps.Result
	req := discover_gaps.NewRequest(discover_gaps.UserData{
		BookTitle:        in.Analysis.Title,
		TotalPages:       total,
		LastChapterTitle: lastTitle,
		LastChapterEnd:   lastEnd,
		StartPage:        start,
		EndPage:          end,
		PagesText:        gapText(in.Pages, start, end, r.gapTextChars),
	})
	if err := r.gen.Generate(ctx, req, &found); err != nil {
		r.logger.Warn("chapter discovery failed", "error", err)
		return unchanged(ExplanationEditFailed)
	}

	discovered := discoveredChapters(found.Chapters, in.Analysis, start, end)
	if len(discovered) == 0 {
		return unchanged(ExplanationNoneFound)
	}

	updated := *in.Analysis
	updated.Chapters = append(append([]book.ChapterAnalysis{}, in.Analysis.Chapters...), discovered...)

	planJSON, err := json.MarshalIndent(in.Plan, "", "  ")
	if err != nil {
		return unchanged(ExplanationEditFailed)
	}
	var merged course_plan.EditResult
	mergeReq := course_plan.NewMergeRequest(course_plan.MergeData{
		Instruction:  in.Instruction,
		PlanJSON:     string(planJSON),
		ChaptersText: chaptersText(discovered),
	})
	if err := r.gen.Generate(ctx, mergeReq, &merged); err != nil {
		r.logger.Warn("plan merge failed", "error", err)
		return unchanged(ExplanationEditFailed)
	}

	plan := mergePlan(in.Plan, merged.Units, &updated, discovered)
	explanation := strings.TrimSpace(merged.Explanation)
	if explanation == "" {
		explanation = fmt.Sprintf("Added %d chapter(s) found after page %d to your plan.", len(discovered), lastEnd+1)
	}
	r.logger.Info("merged discovered chapters", "discovered", len(discovered), "units", len(plan.Units))
	return ReconcileResult{Plan: plan, UpdatedAnalysis: &updated, Explanation: explanation}
}

// gapText joins pages start..end with page markers and caps the result.
func gapText(pages book.PageCollection, start, end, maxChars int) string {
	var b strings.Builder
	for i := start; i <= end && i < len(pages); i++ {
		fmt.Fprintf(&b, "--- Page %d ---\n%s\n\n", i, pages[i])
	}
	text := b.String()
	if len([]rune(text)) > maxChars {
		text = string([]rune(text)[:maxChars])
	}
	return text
}

// discoveredChapters clamps discovered chapters into start..end, drops
// overlaps and numbers them after the existing chapters.
func discoveredChapters(found []discover_gaps.Chapter, analysis *book.BookAnalysis, start, end int) []book.ChapterAnalysis {
	sorted := append([]discover_gaps.Chapter(nil), found...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartPage < sorted[j].StartPage })

	next := len(analysis.Chapters) + 1
	prevEnd := start - 1
	var out []book.ChapterAnalysis
	for _, ch := range sorted {
		s := max(ch.StartPage, start, prevEnd+1)
		e := min(ch.EndPage, end)
		title := strings.TrimSpace(ch.Title)
		if s > e || title == "" {
			continue
		}
		out = append(out, book.ChapterAnalysis{
			ChapterNumber:   next,
			ChapterBoundary: book.ChapterBoundary{Title: title, StartPage: s, EndPage: e},
			ChapterFields: book.ChapterFields{
				Summary:                 strings.TrimSpace(ch.Summary),
				KeyConcepts:             cleanStrings(ch.KeyConcepts),
				LearningObjectives:      cleanStrings(ch.LearningObjectives),
				Prerequisites:           []string{},
				EstimatedReadingMinutes: proportionalMinutes(e-s+1, analysis.TotalPages),
			},
		})
		next++
		prevEnd = e
	}
	return out
}

// proportionalMinutes is round(span/total*120), at least 1.
func proportionalMinutes(span, total int) int {
	if total <= 0 {
		return 1
	}
	return max(1, int(math.Round(float64(span)/float64(total)*readingMinutesScale)))
}

// mergePlan keeps the original units verbatim, takes only units beyond the
// original count from the model, and adds one unit per discovered chapter
// the model left uncovered.
func mergePlan(original CoursePlan, modelUnits []course_plan.Unit, updated *book.BookAnalysis, discovered []book.ChapterAnalysis) CoursePlan {
	plan := original.Clone()

	var extra []course_plan.Unit
	if len(modelUnits) > len(original.Units) {
		extra = modelUnits[len(original.Units):]
	}

	covered := make(map[int]bool)
	for _, u := range plan.Units {
		for _, n := range u.ChapterNumbers {
			covered[n] = true
		}
	}
	for _, u := range sanitizeUnits(extra, updated) {
		var chapters []int
		for _, n := range u.ChapterNumbers {
			if !covered[n] {
				covered[n] = true
				chapters = append(chapters, n)
			}
		}
		if len(chapters) == 0 {
			continue
		}
		u.ChapterNumbers = chapters
		plan.Units = append(plan.Units, u)
	}
	for _, ch := range discovered {
		if !covered[ch.ChapterNumber] {
			plan.Units = append(plan.Units, unitForChapter(ch))
		}
	}

	plan.Renumber()
	return plan
}

func (r *Reconciler) edit(ctx context.Context, in ReconcileInput, unchanged func(string) ReconcileResult) ReconcileResult {
	planJSON, err := json.MarshalIndent(in.Plan, "", "  ")
	if err != nil {
		return unchanged(ExplanationEditFailed)
	}

	var edited course_plan.EditResult
	req := course_plan.NewEditRequest(course_plan.EditData{
		Instruction: in.Instruction,
		PlanJSON:    string(planJSON),
		BookSummary: bookSummary(in.Analysis),
	})
	if err := r.gen.Generate(ctx, req, &edited); err != nil {
		r.logger.Warn("plan edit failed", "error", err)
		return unchanged(ExplanationEditFailed)
	}
	if len(edited.Units) == 0 {
		return unchanged(ExplanationEditFailed)
	}

	analysis := in.Analysis
	if analysis == nil {
		analysis = analysisFromPlan(in.Plan)
	}
	plan := in.Plan.Clone()
	plan.Units = sanitizeUnits(edited.Units, analysis)
	plan.Renumber()

	explanation := strings.TrimSpace(edited.Explanation)
	if explanation == "" {
		explanation = "Your plan has been updated."
	}
	return ReconcileResult{Plan: plan, Explanation: explanation}
}

// bookSummary is a compact chapter list for the edit prompt.
func bookSummary(analysis *book.BookAnalysis) string {
	if analysis == nil {
		return "(book analysis unavailable)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d pages, %d chapters)\n", analysis.Title, analysis.TotalPages, len(analysis.Chapters))
	for _, ch := range analysis.Chapters {
		fmt.Fprintf(&b, "%d. %s (pages %d-%d)\n", ch.ChapterNumber, ch.Title, ch.StartPage+1, ch.EndPage+1)
	}
	return b.String()
}

// analysisFromPlan stands in for a missing analysis so chapter numbers
// already used by the plan stay valid.
func analysisFromPlan(p CoursePlan) *book.BookAnalysis {
	a := &book.BookAnalysis{Title: p.Title}
	seen := make(map[int]bool)
	for _, u := range p.Units {
		for _, n := range u.ChapterNumbers {
			if !seen[n] {
				seen[n] = true
				a.Chapters = append(a.Chapters, book.ChapterAnalysis{ChapterNumber: n})
			}
		}
	}
	return a
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
