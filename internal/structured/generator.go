// Package structured turns a prompt pair and a JSON schema into a typed value
// using whichever LLM provider is configured as the default.
package structured

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/enesgrahovac/book-quest/internal/llmcall"
	"github.com/enesgrahovac/book-quest/internal/prompts"
	"github.com/enesgrahovac/book-quest/internal/providers"
)

// ErrUnavailable is returned when no LLM provider is configured.
var ErrUnavailable = errors.New("structured generation unavailable")

// Default request settings.
const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 2048
)

// Request describes one structured generation call.
type Request struct {
	SystemKey string // prompt key of the system template
	UserKey   string // prompt key of the user template
	Data      any    // template data for both prompts

	// Schema follows the {"type":"json_schema","json_schema":{...}} layout.
	Schema map[string]any

	Temperature float64
	MaxTokens   int
	Timeout     time.Duration

	// CourseID is recorded with the call. When empty the ID set with
	// WithCourseID is used.
	CourseID string
}

// Client is the capability the pipeline depends on.
type Client interface {
	// Available reports whether a provider is configured.
	Available() bool

	// Generate renders the prompts, calls the provider and decodes the
	// validated JSON response into out.
	Generate(ctx context.Context, req Request, out any) error
}

// Config configures a Generator.
type Config struct {
	Registry *providers.Registry
	Resolver *prompts.Resolver

	// Provider returns the name of the provider to use. It is called on every
	// request so config reloads take effect without restarting.
	Provider func() string

	// Recorder is optional.
	Recorder *llmcall.Recorder
	Logger   *slog.Logger
}

// Generator implements Client on top of the provider registry.
type Generator struct {
	registry *providers.Registry
	resolver *prompts.Resolver
	provider func() string
	recorder *llmcall.Recorder
	logger   *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewGenerator creates a Generator.
func NewGenerator(cfg Config) *Generator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	provider := cfg.Provider
	if provider == nil {
		provider = func() string { return "" }
	}
	return &Generator{
		registry: cfg.Registry,
		resolver: cfg.Resolver,
		provider: provider,
		recorder: cfg.Recorder,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Available reports whether the configured provider is registered.
func (g *Generator) Available() bool {
	if g == nil {
		return false
	}
	_, err := g.client()
	return err == nil
}

// Generate implements Client.
func (g *Generator) Generate(ctx context.Context, req Request, out any) error {
	if g == nil {
		return ErrUnavailable
	}
	client, err := g.client()
	if err != nil {
		return err
	}

	system, err := g.render(req.SystemKey, req.Data)
	if err != nil {
		return err
	}
	user, err := g.render(req.UserKey, req.Data)
	if err != nil {
		return err
	}

	chatReq := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: system.text},
			{Role: providers.RoleUser, Content: user.text},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Timeout:     req.Timeout,
		RequestID:   uuid.New().String(),
	}
	if chatReq.Temperature == 0 {
		chatReq.Temperature = DefaultTemperature
	}
	if chatReq.MaxTokens == 0 {
		chatReq.MaxTokens = DefaultMaxTokens
	}
	if req.Schema != nil {
		format, err := buildResponseFormat(req.Schema)
		if err != nil {
			return err
		}
		chatReq.ResponseFormat = format
	}

	if err := g.limiter(client).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	courseID := req.CourseID
	if courseID == "" {
		courseID = CourseIDFrom(ctx)
	}

	result, err := client.Chat(ctx, chatReq)
	temp := chatReq.Temperature
	g.recorder.Record(result, llmcall.RecordOptions{
		CourseID:    courseID,
		PromptKey:   req.UserKey,
		PromptCID:   user.cid,
		Temperature: &temp,
		Err:         err,
	})
	if err != nil {
		g.logger.Warn("structured generation failed",
			"prompt", req.UserKey, "provider", client.Name(), "error", err)
		return fmt.Errorf("failed to generate %s: %w", req.UserKey, err)
	}

	data := result.ParsedJSON
	if len(data) == 0 {
		data = json.RawMessage(result.Content)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.UserKey, err)
	}
	g.logger.Debug("structured generation complete",
		"prompt", req.UserKey,
		"provider", result.Provider,
		"model", result.ModelUsed,
		"tokens", result.TotalTokens,
		"latency", result.TotalTime)
	return nil
}

func (g *Generator) client() (providers.LLMClient, error) {
	if g.registry == nil {
		return nil, ErrUnavailable
	}
	name := g.provider()
	if name == "" {
		return nil, ErrUnavailable
	}
	client, err := g.registry.GetLLM(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return client, nil
}

type renderedPrompt struct {
	text string
	cid  string
}

func (g *Generator) render(key string, data any) (renderedPrompt, error) {
	if g.resolver == nil {
		return renderedPrompt{}, fmt.Errorf("no prompt resolver configured")
	}
	resolved, err := g.resolver.Resolve(key)
	if err != nil {
		return renderedPrompt{}, err
	}
	text, err := prompts.Render(key, resolved.Text, data)
	if err != nil {
		return renderedPrompt{}, err
	}
	return renderedPrompt{text: text, cid: resolved.CID}, nil
}

// limiter returns the rate limiter for a client, keyed by name and rate so a
// reloaded provider with a new rate gets a fresh limiter.
func (g *Generator) limiter(client providers.LLMClient) *rate.Limiter {
	rps := 0.0
	if rl, ok := client.(providers.RateLimited); ok {
		rps = rl.RequestsPerSecond()
	}
	key := fmt.Sprintf("%s@%g", client.Name(), rps)

	g.mu.Lock()
	defer g.mu.Unlock()
	if l, ok := g.limiters[key]; ok {
		return l
	}
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = max(1, int(rps))
	}
	l := rate.NewLimiter(limit, burst)
	g.limiters[key] = l
	return l
}

// buildResponseFormat converts a schema in the json_schema wrapper layout
// into a provider response format.
func buildResponseFormat(schema map[string]any) (*providers.ResponseFormat, error) {
	inner, ok := schema["json_schema"]
	if !ok {
		return nil, fmt.Errorf("schema is missing json_schema")
	}
	raw, err := json.Marshal(inner)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	formatType, _ := schema["type"].(string)
	if formatType == "" {
		formatType = "json_schema"
	}
	return &providers.ResponseFormat{Type: formatType, JSONSchema: raw}, nil
}

var _ Client = (*Generator)(nil)
