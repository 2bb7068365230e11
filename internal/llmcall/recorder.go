package llmcall

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/enesgrahovac/book-quest/internal/providers"
)

// RecorderConfig configures the call recorder.
type RecorderConfig struct {
	Path      string // JSONL file calls are appended to
	QueueSize int    // Buffer size (default: 256)
	Logger    *slog.Logger
}

// Recorder handles fire-and-forget LLM call recording. Calls are queued and
// appended to a JSONL file by a single writer goroutine.
type Recorder struct {
	path   string
	logger *slog.Logger

	queue    chan *Call
	mu       sync.RWMutex // guards closed against concurrent sends
	closed   bool
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewRecorder creates a recorder and starts its writer goroutine.
func NewRecorder(cfg RecorderConfig) *Recorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := &Recorder{
		path:   cfg.Path,
		logger: cfg.Logger,
		queue:  make(chan *Call, cfg.QueueSize),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Record captures an LLM call asynchronously.
// This is non-blocking unless the queue is full.
func (r *Recorder) Record(result *providers.ChatResult, opts RecordOptions) {
	if r == nil {
		return
	}
	r.RecordCall(FromChatResult(result, opts))
}

// RecordCall captures an already-constructed Call asynchronously.
func (r *Recorder) RecordCall(call *Call) {
	if r == nil || call == nil {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Warn("recorder closed, dropping LLM call", "prompt_key", call.PromptKey)
		return
	}
	r.queue <- call
}

// Stop drains queued calls to disk and stops the writer.
func (r *Recorder) Stop() {
	if r == nil {
		return
	}
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
		r.wg.Wait()
	})
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for call := range r.queue {
		batch := []*Call{call}
		// Drain whatever else is already queued into the same write.
	drain:
		for {
			select {
			case next, ok := <-r.queue:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		if err := r.write(batch); err != nil {
			r.logger.Warn("failed to record LLM calls", "count", len(batch), "error", err)
		}
	}
}

func (r *Recorder) write(batch []*Call) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open call log: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, call := range batch {
		if err := enc.Encode(call); err != nil {
			return fmt.Errorf("failed to encode call %s: %w", call.ID, err)
		}
	}
	return nil
}
