package config

// Config holds bookquest configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Analysis     AnalysisCfg               `mapstructure:"analysis" yaml:"analysis"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type      string  `mapstructure:"type" yaml:"type"`             // "openrouter", "openai"
	Model     string  `mapstructure:"model" yaml:"model"`           // Model name
	APIKey    string  `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selections.
type DefaultsCfg struct {
	LLMProvider string `mapstructure:"llm_provider" yaml:"llm_provider"` // Provider used for generation
}

// AnalysisCfg tunes structure detection, chapter analysis and plan editing.
// Zero values fall back to the package defaults.
type AnalysisCfg struct {
	BatchSize       int `mapstructure:"batch_size" yaml:"batch_size"`
	ChunkPages      int `mapstructure:"chunk_pages" yaml:"chunk_pages"`
	MaxChapterChars int `mapstructure:"max_chapter_chars" yaml:"max_chapter_chars"`
	TocScanPages    int `mapstructure:"toc_scan_pages" yaml:"toc_scan_pages"`
	MetadataPages   int `mapstructure:"metadata_pages" yaml:"metadata_pages"`
	SamplePages     int `mapstructure:"sample_pages" yaml:"sample_pages"`
	SampleChars     int `mapstructure:"sample_chars" yaml:"sample_chars"`
	MinLLMPages     int `mapstructure:"min_llm_pages" yaml:"min_llm_pages"`
	GapTextChars    int `mapstructure:"gap_text_chars" yaml:"gap_text_chars"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:      "openrouter",
				Model:     "anthropic/claude-sonnet-4",
				APIKey:    "${OPENROUTER_API_KEY}",
				RateLimit: 5,
				Enabled:   true,
			},
			"openai": {
				Type:      "openai",
				Model:     "gpt-4o-mini",
				APIKey:    "${OPENAI_API_KEY}",
				RateLimit: 5,
				Enabled:   true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "openrouter",
		},
		Analysis: AnalysisCfg{
			BatchSize:       5,
			ChunkPages:      30,
			MaxChapterChars: 80000,
			TocScanPages:    15,
			MetadataPages:   5,
			SamplePages:     30,
			SampleChars:     500,
			MinLLMPages:     10,
			GapTextChars:    12000,
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
