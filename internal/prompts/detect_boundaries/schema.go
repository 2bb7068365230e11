package detect_boundaries

// Schema is the JSON schema for boundary detection output.
var Schema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "chapter_boundaries",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pattern": map[string]any{
					"type":        "string",
					"description": "RE2 regular expression matching chapter headings, or empty string",
				},
				"boundaries": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"title": map[string]any{"type": "string"},
							"page": map[string]any{
								"type":        "integer",
								"description": "1-based page number as labeled in the sample",
							},
						},
						"required":             []string{"title", "page"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []string{"pattern", "boundaries"},
			"additionalProperties": false,
		},
	},
}

// Boundary is one sampled chapter opening. Page is 1-based.
type Boundary struct {
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// Result represents the parsed result from boundary detection.
type Result struct {
	Pattern    string     `json:"pattern"`
	Boundaries []Boundary `json:"boundaries"`
}
