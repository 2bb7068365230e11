package discover_gaps

// Schema is the JSON schema for gap discovery output.
var Schema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "discovered_chapters",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"chapters": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"title":   map[string]any{"type": "string"},
							"summary": map[string]any{"type": "string"},
							"keyConcepts": map[string]any{
								"type":  "array",
								"items": map[string]any{"type": "string"},
							},
							"learningObjectives": map[string]any{
								"type":  "array",
								"items": map[string]any{"type": "string"},
							},
							"startPage": map[string]any{"type": "integer"},
							"endPage":   map[string]any{"type": "integer"},
						},
						"required": []string{
							"title", "summary", "keyConcepts",
							"learningObjectives", "startPage", "endPage",
						},
						"additionalProperties": false,
					},
				},
			},
			"required":             []string{"chapters"},
			"additionalProperties": false,
		},
	},
}

// Chapter is one discovered chapter. Pages are 0-based.
type Chapter struct {
	Title              string   `json:"title"`
	Summary            string   `json:"summary"`
	KeyConcepts        []string `json:"keyConcepts"`
	LearningObjectives []string `json:"learningObjectives"`
	StartPage          int      `json:"startPage"`
	EndPage            int      `json:"endPage"`
}

// Result represents the parsed result from gap discovery.
type Result struct {
	Chapters []Chapter `json:"chapters"`
}
