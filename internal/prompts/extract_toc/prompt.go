package extract_toc

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
	SystemPromptKey = "stages.extract_toc.system"
	UserPromptKey   = "stages.extract_toc.user"
)

// RegisterPrompts registers the extract_toc prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "ToC extraction system prompt - lists chapter titles from the opening pages",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPrompt,
		Description: "ToC extraction user prompt template",
	})
}

// UserData is the template data for the user prompt.
type UserData struct {
	PageCount int
	PagesText string
}

// BuildUserData formats the first maxPages pages with page markers.
func BuildUserData(pages []string, maxPages int) UserData {
	var b strings.Builder
	n := 0
	for i, text := range pages {
		if i >= maxPages {
			break
		}
		n++
		b.WriteString("================================================================================\n")
		fmt.Fprintf(&b, "PAGE %d\n", i+1)
		b.WriteString("================================================================================\n")
		b.WriteString(text)
		b.WriteString("\n")
	}
	return UserData{PageCount: n, PagesText: b.String()}
}

// NewRequest builds the structured generation request.
func NewRequest(data UserData) structured.Request {
	return structured.Request{
		SystemKey:   SystemPromptKey,
		UserKey:     UserPromptKey,
		Data:        data,
		Schema:      ExtractionSchema,
		Temperature: 0.1,
		MaxTokens:   2048,
	}
}
