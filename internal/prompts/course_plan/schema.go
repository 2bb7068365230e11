package course_plan

var unitSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"unitNumber":  map[string]any{"type": "integer"},
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"chapterNumbers": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "integer"},
		},
		"learningObjectives": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"estimatedMinutes": map[string]any{"type": "integer"},
	},
	"required": []string{
		"unitNumber", "title", "description",
		"chapterNumbers", "learningObjectives", "estimatedMinutes",
	},
	"additionalProperties": false,
}

// PlanSchema is the JSON schema for plan generation output.
var PlanSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "course_plan",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"units": map[string]any{
					"type":  "array",
					"items": unitSchema,
				},
			},
			"required":             []string{"units"},
			"additionalProperties": false,
		},
	},
}

// EditSchema is the JSON schema for merge and edit output.
var EditSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "course_plan_edit",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"units": map[string]any{
					"type":  "array",
					"items": unitSchema,
				},
				"explanation": map[string]any{
					"type":        "string",
					"description": "One or two sentences describing the change",
				},
			},
			"required":             []string{"units", "explanation"},
			"additionalProperties": false,
		},
	},
}

// Unit is one course unit as returned by the model.
type Unit struct {
	UnitNumber         int      `json:"unitNumber"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	ChapterNumbers     []int    `json:"chapterNumbers"`
	LearningObjectives []string `json:"learningObjectives"`
	EstimatedMinutes   int      `json:"estimatedMinutes"`
}

// PlanResult represents the parsed result from plan generation.
type PlanResult struct {
	Units []Unit `json:"units"`
}

// EditResult represents the parsed result from a merge or edit.
type EditResult struct {
	Units       []Unit `json:"units"`
	Explanation string `json:"explanation"`
}
