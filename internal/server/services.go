package server

import (
	"fmt"
	"log/slog"

	"github.com/enesgrahovac/book-quest/internal/analysis"
	"github.com/enesgrahovac/book-quest/internal/config"
	"github.com/enesgrahovac/book-quest/internal/coursestore"
	"github.com/enesgrahovac/book-quest/internal/home"
	"github.com/enesgrahovac/book-quest/internal/llmcall"
	"github.com/enesgrahovac/book-quest/internal/plan"
	"github.com/enesgrahovac/book-quest/internal/prompts"
	"github.com/enesgrahovac/book-quest/internal/prompts/catalog"
	"github.com/enesgrahovac/book-quest/internal/providers"
	"github.com/enesgrahovac/book-quest/internal/structure"
	"github.com/enesgrahovac/book-quest/internal/structured"
	"github.com/enesgrahovac/book-quest/internal/svcctx"
)

// ServicesConfig configures NewServices.
type ServicesConfig struct {
	Home          *home.Dir
	ConfigManager *config.Manager
	Logger        *slog.Logger
}

// Services is the wired service graph plus the resources that need closing.
type Services struct {
	*svcctx.Services
	recorder *llmcall.Recorder
}

// Close flushes pending LLM call records.
func (s *Services) Close() {
	s.recorder.Stop()
}

// NewServices builds the provider registry, prompt resolver, generator and
// pipeline from configuration. Provider changes in the config file are
// picked up without a restart.
func NewServices(cfg ServicesConfig) (*Services, error) {
	if cfg.Home == nil {
		return nil, fmt.Errorf("home directory is required")
	}
	if cfg.ConfigManager == nil {
		return nil, fmt.Errorf("config manager is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Home.EnsureExists(); err != nil {
		return nil, err
	}

	registry := providers.NewRegistry()
	registry.SetLogger(logger)
	registry.Reload(cfg.ConfigManager.Get().ToProviderRegistryConfig())
	cfg.ConfigManager.OnChange(func(c *config.Config) {
		registry.Reload(c.ToProviderRegistryConfig())
		logger.Info("provider registry reloaded from config")
	})

	resolver := prompts.NewResolver(prompts.NewStore(cfg.Home.PromptsPath(), logger), logger)
	catalog.RegisterAll(resolver)

	recorder := llmcall.NewRecorder(llmcall.RecorderConfig{
		Path:   cfg.Home.LLMCallsPath(),
		Logger: logger,
	})

	defaultProvider := func() string {
		return cfg.ConfigManager.Get().Defaults.LLMProvider
	}
	gen := structured.NewGenerator(structured.Config{
		Registry: registry,
		Resolver: resolver,
		Provider: defaultProvider,
		Recorder: recorder,
		Logger:   logger,
	})

	svc := &svcctx.Services{
		Registry:        registry,
		ConfigManager:   cfg.ConfigManager,
		Logger:          logger,
		Home:            cfg.Home,
		LLMCallStore:    llmcall.NewStore(cfg.Home.LLMCallsPath(), logger),
		Prompts:         resolver,
		Generator:       gen,
		Courses:         coursestore.New(cfg.Home.CoursesPath(), logger),
		DefaultProvider: defaultProvider,
	}
	WireAnalysis(svc, cfg.ConfigManager.Get().Analysis)

	logger.Info("services ready",
		"llm_providers", registry.ListLLM(),
		"default_provider", defaultProvider(),
		"generator_available", gen.Available(),
	)
	return &Services{Services: svc, recorder: recorder}, nil
}

// WireAnalysis builds the pipeline, planner and reconciler on top of
// svc.Generator using the analysis settings.
func WireAnalysis(svc *svcctx.Services, a config.AnalysisCfg) {
	logger := svc.Logger
	detector := structure.NewDetector(structure.Config{
		Generator:     svc.Generator,
		Logger:        logger,
		ScanPages:     a.TocScanPages,
		MetadataPages: a.MetadataPages,
		ChunkPages:    a.ChunkPages,
		SamplePages:   a.SamplePages,
		SampleChars:   a.SampleChars,
		MinLLMPages:   a.MinLLMPages,
	})
	analyzer := analysis.NewAnalyzer(svc.Generator, a.MaxChapterChars, logger)
	orchestrator := analysis.NewOrchestrator(analyzer, a.BatchSize, logger)

	svc.Pipeline = analysis.NewPipeline(detector, orchestrator, logger)
	svc.Planner = plan.NewPlanner(svc.Generator, logger)
	svc.Reconciler = plan.NewReconciler(svc.Generator, a.GapTextChars, logger)
}
