package discover_gaps

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
	SystemPromptKey = "stages.discover_gaps.system"
	UserPromptKey   = "stages.discover_gaps.user"
)

// RegisterPrompts registers the discover_gaps prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Gap discovery system prompt - finds chapters in pages missed by detection",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPrompt,
		Description: "Gap discovery user prompt template",
	})
}

// UserData is the template data for the user prompt. Page numbers are 0-based.
type UserData struct {
	BookTitle        string
	TotalPages       int
	LastChapterTitle string
	LastChapterEnd   int
	StartPage        int
	EndPage          int
	PagesText        string
}

// NewRequest builds the structured generation request.
func NewRequest(data UserData) structured.Request {
	return structured.Request{
		SystemKey:   SystemPromptKey,
		UserKey:     UserPromptKey,
		Data:        data,
		Schema:      Schema,
		Temperature: 0.1,
		MaxTokens:   4096,
	}
}
