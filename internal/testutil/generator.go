package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/enesgrahovac/book-quest/internal/structured"
)

// FakeGenerator is a scripted structured.Client for tests.
type FakeGenerator struct {
	// Unavailable makes Available report false and Generate fail with
	// structured.ErrUnavailable.
	Unavailable bool

	// Responses maps a user prompt key to the value returned for it. The value
	// is round-tripped through JSON into the caller's output.
	Responses map[string]any

	// Errors maps a user prompt key to an error returned for it.
	Errors map[string]error

	// Handler, when set, takes precedence over Responses and Errors.
	Handler func(req structured.Request) (any, error)

	mu    sync.Mutex
	calls []structured.Request
}

// Available implements structured.Client.
func (f *FakeGenerator) Available() bool {
	return !f.Unavailable
}

// Generate implements structured.Client.
func (f *FakeGenerator) Generate(ctx context.Context, req structured.Request, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.Unavailable {
		return structured.ErrUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var resp any
	var err error
	switch {
	case f.Handler != nil:
		resp, err = f.Handler(req)
	case f.Errors[req.UserKey] != nil:
		err = f.Errors[req.UserKey]
	default:
		var ok bool
		resp, ok = f.Responses[req.UserKey]
		if !ok {
			err = fmt.Errorf("no scripted response for %s", req.UserKey)
		}
	}
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Calls returns the requests received so far.
func (f *FakeGenerator) Calls() []structured.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]structured.Request(nil), f.calls...)
}

// CallsFor returns the requests received for one user prompt key.
func (f *FakeGenerator) CallsFor(userKey string) []structured.Request {
	var out []structured.Request
	for _, c := range f.Calls() {
		if c.UserKey == userKey {
			out = append(out, c)
		}
	}
	return out
}

var _ structured.Client = (*FakeGenerator)(nil)
