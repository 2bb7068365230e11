package chapter_analysis

import (
	_ "embed"

	"github.com/enesgrahovac/book-quest/internal/prompts"
	"github.com/enesgrahovac/book-quest/internal/structured"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPrompt string

// Prompt keys
const (
	SystemPromptKey = "stages.chapter_analysis.system"
	UserPromptKey   = "stages.chapter_analysis.user"
)

// RegisterPrompts registers the chapter_analysis prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Chapter analysis system prompt - summary, concepts, objectives and prerequisites",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPrompt,
		Description: "Chapter analysis user prompt template",
	})
}

// UserData is the template data for the user prompt. Pages are 1-based for
// display.
type UserData struct {
	ChapterNumber    int
	Title            string
	StartPage        int
	EndPage          int
	Text             string
	PreviousConcepts []string
}

// NewRequest builds the structured generation request.
func NewRequest(data UserData) structured.Request {
	return structured.Request{
		SystemKey:   SystemPromptKey,
		UserKey:     UserPromptKey,
		Data:        data,
		Schema:      Schema,
		Temperature: 0.2,
		MaxTokens:   2048,
	}
}
