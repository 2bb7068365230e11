package metadata

// ExtractionSchema is the JSON schema for metadata extraction output.
var ExtractionSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "book_metadata",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "Official book title (without subtitle)",
				},
				"author": map[string]any{
					"type":        "string",
					"description": "Primary author names, comma separated. Empty if unknown.",
				},
				"confidence": map[string]any{
					"type":        "number",
					"description": "Confidence score 0.0-1.0",
				},
			},
			"required":             []string{"title", "author", "confidence"},
			"additionalProperties": false,
		},
	},
}

// Result represents the parsed result from metadata extraction.
type Result struct {
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Confidence float64 `json:"confidence"`
}
