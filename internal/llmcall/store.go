package llmcall

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
)

// Store reads recorded LLM calls from the JSONL call log.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a new LLMCall store over the given log file.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// QueryFilter specifies filters for listing LLM calls.
type QueryFilter struct {
	CourseID  string
	PromptKey string
	Provider  string
	Success   *bool
	Limit     int
}

// List returns recorded calls matching filter, newest first.
// A missing log yields an empty list.
func (s *Store) List(ctx context.Context, filter QueryFilter) ([]Call, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Call{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open call log: %w", err)
	}
	defer f.Close()

	calls := []Call{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		var call Call
		if err := json.Unmarshal(scanner.Bytes(), &call); err != nil {
			s.logger.Debug("skipping malformed call log line", "line", line, "error", err)
			continue
		}
		if !filter.matches(&call) {
			continue
		}
		calls = append(calls, call)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read call log: %w", err)
	}

	// The log is append-only, so reversing yields newest first; the stable
	// sort keeps that order for equal timestamps.
	for i, j := 0, len(calls)-1; i < j; i, j = i+1, j-1 {
		calls[i], calls[j] = calls[j], calls[i]
	}
	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].Timestamp.After(calls[j].Timestamp)
	})

	if filter.Limit > 0 && len(calls) > filter.Limit {
		calls = calls[:filter.Limit]
	}
	return calls, nil
}

// CountByPromptKey returns call counts grouped by prompt key.
func (s *Store) CountByPromptKey(ctx context.Context, courseID string) (map[string]int, error) {
	calls, err := s.List(ctx, QueryFilter{CourseID: courseID})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, c := range calls {
		counts[c.PromptKey]++
	}
	return counts, nil
}

func (f QueryFilter) matches(c *Call) bool {
	if f.CourseID != "" && c.CourseID != f.CourseID {
		return false
	}
	if f.PromptKey != "" && c.PromptKey != f.PromptKey {
		return false
	}
	if f.Provider != "" && c.Provider != f.Provider {
		return false
	}
	if f.Success != nil && c.Success != *f.Success {
		return false
	}
	return true
}
