// Package structure finds chapter boundaries in a book using an ordered
// chain of detection strategies. The last strategy always succeeds, so
// detection never fails.
package structure

import (
	"context"
	"log/slog"

	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/structured"
)

// Defaults for detection.
const (
	DefaultScanPages     = 15
	DefaultMetadataPages = 5
	DefaultChunkPages    = 30
	DefaultSamplePages   = 30
	DefaultSampleChars   = 500
	DefaultMinLLMPages   = 10
)

// Strategy is one tier of structure detection. Detect returns false when the
// strategy found too little signal to be trusted.
type Strategy interface {
	Method() book.DetectionMethod
	Detect(ctx context.Context, pdfBytes []byte, pages book.PageCollection) (*book.BookStructure, bool)
}

// Config configures a Detector. Zero values take the defaults above.
type Config struct {
	// Generator is optional. Without it only the deterministic tiers run.
	Generator structured.Client
	Logger    *slog.Logger

	ScanPages     int // pages scanned for links and ToC titles
	MetadataPages int // pages sent for title/author extraction
	ChunkPages    int // window size of the fixed-chunk tier
	SamplePages   int // target sample count of the LLM tier
	SampleChars   int // characters kept per sampled page
	MinLLMPages   int // minimum book length for the LLM tier
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.ScanPages <= 0 {
		c.ScanPages = DefaultScanPages
	}
	if c.MetadataPages <= 0 {
		c.MetadataPages = DefaultMetadataPages
	}
	if c.ChunkPages <= 0 {
		c.ChunkPages = DefaultChunkPages
	}
	if c.SamplePages <= 0 {
		c.SamplePages = DefaultSamplePages
	}
	if c.SampleChars <= 0 {
		c.SampleChars = DefaultSampleChars
	}
	if c.MinLLMPages <= 0 {
		c.MinLLMPages = DefaultMinLLMPages
	}
	return c
}

// Detector runs strategies in order and returns the first accepted result.
type Detector struct {
	strategies []Strategy
	metadata   *metadataExtractor
	logger     *slog.Logger
}

// NewDetector creates a detector with the standard tier order:
// pdf-links, title-match, llm-detection, fixed-chunks.
func NewDetector(cfg Config) *Detector {
	cfg = cfg.withDefaults()
	return &Detector{
		strategies: []Strategy{
			&linkStrategy{scanPages: cfg.ScanPages, logger: cfg.Logger},
			&titleMatchStrategy{gen: cfg.Generator, scanPages: cfg.ScanPages, logger: cfg.Logger},
			&llmStrategy{
				gen:         cfg.Generator,
				samplePages: cfg.SamplePages,
				sampleChars: cfg.SampleChars,
				minPages:    cfg.MinLLMPages,
				logger:      cfg.Logger,
			},
			&chunkStrategy{chunkPages: cfg.ChunkPages},
		},
		metadata: &metadataExtractor{gen: cfg.Generator, pages: cfg.MetadataPages, logger: cfg.Logger},
		logger:   cfg.Logger,
	}
}

// NewDetectorWithStrategies creates a detector with a custom strategy chain.
// A fixed-chunk tier is appended so detection still never fails.
func NewDetectorWithStrategies(cfg Config, strategies ...Strategy) *Detector {
	cfg = cfg.withDefaults()
	chain := append([]Strategy(nil), strategies...)
	chain = append(chain, &chunkStrategy{chunkPages: cfg.ChunkPages})
	return &Detector{
		strategies: chain,
		metadata:   &metadataExtractor{gen: cfg.Generator, pages: cfg.MetadataPages, logger: cfg.Logger},
		logger:     cfg.Logger,
	}
}

// Detect returns the book structure. It never fails.
func (d *Detector) Detect(ctx context.Context, pdfBytes []byte, pages book.PageCollection) book.BookStructure {
	for _, s := range d.strategies {
		result, ok := s.Detect(ctx, pdfBytes, pages)
		if !ok || result == nil {
			d.logger.Debug("detection tier produced no result", "method", s.Method())
			continue
		}
		if err := book.ValidateBoundaries(result.Chapters, pages.Total()); err != nil {
			d.logger.Warn("detection tier produced invalid boundaries", "method", s.Method(), "error", err)
			continue
		}

		result.DetectionMethod = s.Method()
		if result.Title == "" {
			title, author := d.metadata.extract(ctx, pages)
			result.Title = title
			if result.Author == "" {
				result.Author = author
			}
		}

		d.logger.Info("detected book structure",
			"method", result.DetectionMethod,
			"chapters", len(result.Chapters),
			"pages", pages.Total(),
			"title", result.Title)
		return *result
	}

	// Unreachable with the standard chain; chunking always accepts.
	return book.BookStructure{Title: book.DefaultTitle, DetectionMethod: book.DetectionFixedChunks}
}
