package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ErrNoDefault is returned when no default value exists for a config key.
var ErrNoDefault = errors.New("no default exists")

// ErrInvalidKey is returned when a config key contains invalid characters.
var ErrInvalidKey = errors.New("invalid config key")

// envKeyReplacer maps config keys to env names: analysis.batch_size ->
// BOOKQUEST_ANALYSIS_BATCH_SIZE.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Entry is a single documented configuration key.
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

// ValidateKey checks if a config key contains only allowed characters.
// Valid keys contain: letters, digits, dots, underscores, and hyphens.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}
	for i, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '_' && r != '-' {
			return fmt.Errorf("%w: invalid character %q at position %d", ErrInvalidKey, r, i)
		}
	}
	if key[0] == '.' || key[len(key)-1] == '.' {
		return fmt.Errorf("%w: key cannot start or end with a dot", ErrInvalidKey)
	}
	return nil
}

// DefaultEntries returns the default configuration entries.
// These seed viper's defaults and document the settings endpoint.
func DefaultEntries() []Entry {
	def := DefaultConfig()
	entries := make([]Entry, 0, 24)

	// LLM providers
	names := make([]string, 0, len(def.LLMProviders))
	for name := range def.LLMProviders {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := def.LLMProviders[name]
		prefix := "llm_providers." + name + "."
		entries = append(entries,
			Entry{Key: prefix + "type", Value: p.Type, Description: "Provider type for " + name + " (openrouter or openai)"},
			Entry{Key: prefix + "model", Value: p.Model, Description: "Default model for " + name},
			Entry{Key: prefix + "api_key", Value: p.APIKey, Description: "API key for " + name + " (supports ${ENV_VAR})"},
			Entry{Key: prefix + "rate_limit", Value: p.RateLimit, Description: "Requests per second sent to " + name},
			Entry{Key: prefix + "enabled", Value: p.Enabled, Description: "Whether " + name + " is registered"},
		)
	}

	// Defaults
	entries = append(entries, Entry{
		Key:         "defaults.llm_provider",
		Value:       def.Defaults.LLMProvider,
		Description: "Provider used for all structured generation",
	})

	// Analysis
	a := def.Analysis
	entries = append(entries,
		Entry{Key: "analysis.batch_size", Value: a.BatchSize, Description: "Chapters analyzed concurrently per batch"},
		Entry{Key: "analysis.chunk_pages", Value: a.ChunkPages, Description: "Pages per section when falling back to fixed chunks"},
		Entry{Key: "analysis.max_chapter_chars", Value: a.MaxChapterChars, Description: "Chapter text cap before truncation"},
		Entry{Key: "analysis.toc_scan_pages", Value: a.TocScanPages, Description: "Leading pages scanned for links and table of contents"},
		Entry{Key: "analysis.metadata_pages", Value: a.MetadataPages, Description: "Leading pages used for title and author extraction"},
		Entry{Key: "analysis.sample_pages", Value: a.SamplePages, Description: "Target page samples for model boundary detection"},
		Entry{Key: "analysis.sample_chars", Value: a.SampleChars, Description: "Characters kept per sampled page"},
		Entry{Key: "analysis.min_llm_pages", Value: a.MinLLMPages, Description: "Minimum book length for model boundary detection"},
		Entry{Key: "analysis.gap_text_chars", Value: a.GapTextChars, Description: "Uncovered page text sent when discovering missed chapters"},
	)
	return entries
}

// GetDefault returns the default value for a config key.
// Returns nil if no default exists for the key.
func GetDefault(key string) *Entry {
	for _, entry := range DefaultEntries() {
		if entry.Key == key {
			return &entry
		}
	}
	return nil
}

// Settings returns every documented key with its effective value, sorted by
// key. API keys that are not ${ENV_VAR} references are masked.
func (cm *Manager) Settings() []Entry {
	defaults := DefaultEntries()
	out := make([]Entry, 0, len(defaults))
	for _, def := range defaults {
		out = append(out, cm.effective(def))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Setting returns the effective value of one documented key.
// Returns ErrInvalidKey for malformed keys and ErrNoDefault for unknown ones.
func (cm *Manager) Setting(key string) (*Entry, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	def := GetDefault(key)
	if def == nil {
		return nil, fmt.Errorf("%w for key %q", ErrNoDefault, key)
	}
	entry := cm.effective(*def)
	return &entry, nil
}

func (cm *Manager) effective(def Entry) Entry {
	cm.mu.RLock()
	value := cm.v.Get(def.Key)
	cm.mu.RUnlock()
	if strings.HasSuffix(def.Key, ".api_key") {
		value = maskSecret(fmt.Sprint(value))
	}
	return Entry{Key: def.Key, Value: value, Description: def.Description}
}

func maskSecret(s string) string {
	if s == "" || envVarPattern.MatchString(s) {
		return s
	}
	return "********"
}
