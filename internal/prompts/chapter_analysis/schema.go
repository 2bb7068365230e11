package chapter_analysis

var stringList = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}

// Schema is the JSON schema for chapter analysis output.
var Schema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "chapter_analysis",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"summary":                 map[string]any{"type": "string"},
				"keyConcepts":             stringList,
				"learningObjectives":      stringList,
				"prerequisites":           stringList,
				"estimatedReadingMinutes": map[string]any{"type": "integer"},
			},
			"required": []string{
				"summary", "keyConcepts", "learningObjectives",
				"prerequisites", "estimatedReadingMinutes",
			},
			"additionalProperties": false,
		},
	},
}

// Result represents the parsed result from chapter analysis.
type Result struct {
	Summary                 string   `json:"summary"`
	KeyConcepts             []string `json:"keyConcepts"`
	LearningObjectives      []string `json:"learningObjectives"`
	Prerequisites           []string `json:"prerequisites"`
	EstimatedReadingMinutes int      `json:"estimatedReadingMinutes"`
}
