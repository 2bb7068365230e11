package metadata

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/enesgrahovac/book-quest/internal/prompts"
	"github.com/enesgrahovac/book-quest/internal/structured"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPrompt string

// Prompt keys
const (
	SystemPromptKey = "stages.metadata.system"
	UserPromptKey   = "stages.metadata.user"
)

// RegisterPrompts registers the metadata prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Metadata extraction system prompt - identifies title and author from front matter",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPrompt,
		Description: "Metadata extraction user prompt template",
	})
}

// UserData is the template data for the user prompt.
type UserData struct {
	BookText string
}

// PrepareBookText concatenates the first maxPages non-empty pages with
// 1-based page separators.
func PrepareBookText(pages []string, maxPages int) string {
	var parts []string
	for i, text := range pages {
		if i >= maxPages {
			break
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", i+1, text))
	}
	return strings.Join(parts, "\n\n")
}

// NewRequest builds the structured generation request.
func NewRequest(data UserData) structured.Request {
	return structured.Request{
		SystemKey:   SystemPromptKey,
		UserKey:     UserPromptKey,
		Data:        data,
		Schema:      ExtractionSchema,
		Temperature: 0.1,
		MaxTokens:   512,
	}
}
