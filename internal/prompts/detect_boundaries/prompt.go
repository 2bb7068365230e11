package detect_boundaries

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
	SystemPromptKey = "stages.detect_boundaries.system"
	UserPromptKey   = "stages.detect_boundaries.user"
)

// RegisterPrompts registers the detect_boundaries prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Boundary detection system prompt - finds chapter openings in sampled pages",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPrompt,
		Description: "Boundary detection user prompt template",
	})
}

// UserData is the template data for the user prompt.
type UserData struct {
	TotalPages  int
	SampleCount int
	SampleText  string
}

// NewRequest builds the structured generation request.
func NewRequest(data UserData) structured.Request {
	return structured.Request{
		SystemKey:   SystemPromptKey,
		UserKey:     UserPromptKey,
		Data:        data,
		Schema:      Schema,
		Temperature: 0.1,
		MaxTokens:   2048,
	}
}
