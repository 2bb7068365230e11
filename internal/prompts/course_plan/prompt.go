// Package course_plan holds the prompts used to generate, merge and edit
// course plans.
package course_plan

import (
	_ "embed"

	"github.com/enesgrahovac/book-quest/internal/prompts"
	"github.com/enesgrahovac/book-quest/internal/structured"
)

//go:embed system_generate.tmpl
var systemGeneratePrompt string

//go:embed user_generate.tmpl
var userGenerateTmpl string

//go:embed system_merge.tmpl
var systemMergePrompt string

//go:embed user_merge.tmpl
var userMergeTmpl string

//go:embed system_edit.tmpl
var systemEditPrompt string

//go:embed user_edit.tmpl
var userEditTmpl string

// Prompt keys
const (
	SystemGenerateKey = "stages.course_plan.generate.system"
	UserGenerateKey   = "stages.course_plan.generate.user"

	SystemMergeKey = "stages.course_plan.merge.system"
	UserMergeKey   = "stages.course_plan.merge.user"

	SystemEditKey = "stages.course_plan.edit.system"
	UserEditKey   = "stages.course_plan.edit.user"
)

// RegisterPrompts registers all course_plan prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemGenerateKey,
		Text:        systemGeneratePrompt,
		Description: "Course plan system prompt - groups analyzed chapters into units",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserGenerateKey,
		Text:        userGenerateTmpl,
		Description: "Course plan user prompt template - chapters and learner goals",
	})

	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemMergeKey,
		Text:        systemMergePrompt,
		Description: "Plan merge system prompt - appends units for discovered chapters",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserMergeKey,
		Text:        userMergeTmpl,
		Description: "Plan merge user prompt template - current plan and discovered chapters",
	})

	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemEditKey,
		Text:        systemEditPrompt,
		Description: "Plan edit system prompt - applies a learner's edit instruction",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserEditKey,
		Text:        userEditTmpl,
		Description: "Plan edit user prompt template - current plan, instruction and book summary",
	})
}

// GenerateData is the template data for plan generation.
type GenerateData struct {
	BookTitle    string
	BookAuthor   string
	Goals        string
	ChaptersText string
}

// MergeData is the template data for merging discovered chapters.
type MergeData struct {
	Instruction  string
	PlanJSON     string
	ChaptersText string
}

// EditData is the template data for a standard plan edit.
type EditData struct {
	Instruction string
	PlanJSON    string
	BookSummary string
}

// NewGenerateRequest builds the plan generation request.
func NewGenerateRequest(data GenerateData) structured.Request {
	return structured.Request{
		SystemKey:   SystemGenerateKey,
		UserKey:     UserGenerateKey,
		Data:        data,
		Schema:      PlanSchema,
		Temperature: 0.3,
		MaxTokens:   4096,
	}
}

// NewMergeRequest builds the plan merge request.
func NewMergeRequest(data MergeData) structured.Request {
	return structured.Request{
		SystemKey:   SystemMergeKey,
		UserKey:     UserMergeKey,
		Data:        data,
		Schema:      EditSchema,
		Temperature: 0.1,
		MaxTokens:   4096,
	}
}

// NewEditRequest builds the standard plan edit request.
func NewEditRequest(data EditData) structured.Request {
	return structured.Request{
		SystemKey:   SystemEditKey,
		UserKey:     UserEditKey,
		Data:        data,
		Schema:      EditSchema,
		Temperature: 0.1,
		MaxTokens:   4096,
	}
}
