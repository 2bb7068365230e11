package extract_toc

// ExtractionSchema is the JSON schema for ToC extraction output.
var ExtractionSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "toc_extraction",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "Book title as printed on the title page. Empty if not found.",
				},
				"author": map[string]any{
					"type":        "string",
					"description": "Author names, comma separated. Empty if not found.",
				},
				"chapters": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Chapter titles in Table of Contents order, prefixes and page numbers removed",
				},
			},
			"required":             []string{"title", "author", "chapters"},
			"additionalProperties": false,
		},
	},
}

// Result represents the parsed result from ToC extraction.
type Result struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Chapters []string `json:"chapters"`
}
