// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/enesgrahovac/book-quest/internal/analysis"
	"github.com/enesgrahovac/book-quest/internal/config"
	"github.com/enesgrahovac/book-quest/internal/coursestore"
	"github.com/enesgrahovac/book-quest/internal/home"
	"github.com/enesgrahovac/book-quest/internal/llmcall"
	"github.com/enesgrahovac/book-quest/internal/plan"
	"github.com/enesgrahovac/book-quest/internal/prompts"
	"github.com/enesgrahovac/book-quest/internal/providers"
	"github.com/enesgrahovac/book-quest/internal/structured"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Registry      *providers.Registry
	ConfigManager *config.Manager
	Logger        *slog.Logger
	Home          *home.Dir
	LLMCallStore  *llmcall.Store
	Prompts       *prompts.Resolver
	Generator     structured.Client
	Courses       *coursestore.Store
	Pipeline      *analysis.Pipeline
	Planner       *plan.Planner
	Reconciler    *plan.Reconciler

	// DefaultProvider returns the provider used for generation.
	DefaultProvider func() string
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigManager
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}

// LLMCallStoreFrom extracts the LLM call store from context.
func LLMCallStoreFrom(ctx context.Context) *llmcall.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.LLMCallStore
	}
	return nil
}

// PromptsFrom extracts the prompt resolver from context.
func PromptsFrom(ctx context.Context) *prompts.Resolver {
	if s := ServicesFrom(ctx); s != nil {
		return s.Prompts
	}
	return nil
}

// GeneratorFrom extracts the structured generation client from context.
func GeneratorFrom(ctx context.Context) structured.Client {
	if s := ServicesFrom(ctx); s != nil {
		return s.Generator
	}
	return nil
}

// CoursesFrom extracts the course store from context.
func CoursesFrom(ctx context.Context) *coursestore.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Courses
	}
	return nil
}

// PipelineFrom extracts the book analysis pipeline from context.
func PipelineFrom(ctx context.Context) *analysis.Pipeline {
	if s := ServicesFrom(ctx); s != nil {
		return s.Pipeline
	}
	return nil
}

// PlannerFrom extracts the course planner from context.
func PlannerFrom(ctx context.Context) *plan.Planner {
	if s := ServicesFrom(ctx); s != nil {
		return s.Planner
	}
	return nil
}

// ReconcilerFrom extracts the plan reconciler from context.
func ReconcilerFrom(ctx context.Context) *plan.Reconciler {
	if s := ServicesFrom(ctx); s != nil {
		return s.Reconciler
	}
	return nil
}
