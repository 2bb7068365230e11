// Package catalog registers every embedded prompt with a resolver.
package catalog

import (
	"github.com/enesgrahovac/book-quest/internal/prompts"
	"github.com/enesgrahovac/book-quest/internal/prompts/chapter_analysis"
	"github.com/enesgrahovac/book-quest/internal/prompts/course_plan"
	"github.com/enesgrahovac/book-quest/internal/prompts/detect_boundaries"
	"github.com/enesgrahovac/book-quest/internal/prompts/discover_gaps"
	"github.com/enesgrahovac/book-quest/internal/prompts/extract_toc"
	"github.com/enesgrahovac/book-quest/internal/prompts/metadata"
)

// RegisterAll registers the prompts of every pipeline stage.
func RegisterAll(r *prompts.Resolver) {
	metadata.RegisterPrompts(r)
	extract_toc.RegisterPrompts(r)
	detect_boundaries.RegisterPrompts(r)
	chapter_analysis.RegisterPrompts(r)
	discover_gaps.RegisterPrompts(r)
	course_plan.RegisterPrompts(r)
}
