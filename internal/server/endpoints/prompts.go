package endpoints

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/enesgrahovac/book-quest/internal/api"
	"github.com/enesgrahovac/book-quest/internal/prompts"
	"github.com/enesgrahovac/book-quest/internal/svcctx"
)

// PromptResponse represents a single resolved prompt.
type PromptResponse struct {
	Key         string   `json:"key"`
	Text        string   `json:"text"`
	Description string   `json:"description,omitempty"`
	Variables   []string `json:"variables,omitempty"`
	Hash        string   `json:"hash,omitempty"`
	IsOverride  bool     `json:"is_override"`
}

// PromptsListResponse contains all registered prompts.
type PromptsListResponse struct {
	Prompts []prompts.Info `json:"prompts"`
}

// SetPromptRequest is the request body for setting a prompt override.
type SetPromptRequest struct {
	Text string `json:"text"`
}

// promptKey reads the {key...} wildcard. It writes a 400 response and returns
// false when the key is missing.
func promptKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key, err := url.PathUnescape(r.PathValue("key"))
	if err != nil || key == "" {
		writeError(w, http.StatusBadRequest, "invalid prompt key")
		return "", false
	}
	return key, true
}

// ListPromptsEndpoint handles GET /api/prompts.
type ListPromptsEndpoint struct{}

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts", e.handler
}

func (e *ListPromptsEndpoint) RequiresInit() bool { return true }

func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resolver := svcctx.PromptsFrom(r.Context())
	if resolver == nil {
		writeError(w, http.StatusServiceUnavailable, "prompt resolver not available")
		return
	}
	writeJSON(w, http.StatusOK, PromptsListResponse{Prompts: resolver.List()})
}

func (e *ListPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PromptsListResponse
			if err := client.Get(cmd.Context(), "/api/prompts", &resp); err != nil {
				return err
			}
			if api.IsStructuredOutput() {
				return api.Output(resp)
			}
			for _, p := range resp.Prompts {
				marker := " "
				if p.IsOverride {
					marker = "*"
				}
				fmt.Printf("%s %-40s %s\n", marker, p.Key, p.Description)
			}
			return nil
		},
	}
}

// GetPromptEndpoint handles GET /api/prompts/{key...}.
type GetPromptEndpoint struct{}

func (e *GetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts/{key...}", e.handler
}

func (e *GetPromptEndpoint) RequiresInit() bool { return true }

func (e *GetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	key, ok := promptKey(w, r)
	if !ok {
		return
	}
	resolver := svcctx.PromptsFrom(r.Context())
	if resolver == nil {
		writeError(w, http.StatusServiceUnavailable, "prompt resolver not available")
		return
	}

	embedded, known := resolver.GetEmbedded(key)
	if !known {
		writeError(w, http.StatusNotFound, "prompt not found: "+key)
		return
	}
	resolved, err := resolver.Resolve(key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, PromptResponse{
		Key:         key,
		Text:        resolved.Text,
		Description: embedded.Description,
		Variables:   resolved.Variables,
		Hash:        resolved.CID,
		IsOverride:  resolved.IsOverride,
	})
}

func (e *GetPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show the effective text of a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PromptResponse
			if err := client.Get(cmd.Context(), "/api/prompts/"+args[0], &resp); err != nil {
				return err
			}
			if api.IsStructuredOutput() {
				return api.Output(resp)
			}
			fmt.Println(resp.Text)
			return nil
		},
	}
}

// SetPromptEndpoint handles PUT /api/prompts/{key...}.
type SetPromptEndpoint struct{}

func (e *SetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/prompts/{key...}", e.handler
}

func (e *SetPromptEndpoint) RequiresInit() bool { return true }

func (e *SetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	key, ok := promptKey(w, r)
	if !ok {
		return
	}
	resolver := svcctx.PromptsFrom(r.Context())
	if resolver == nil || resolver.Store() == nil {
		writeError(w, http.StatusServiceUnavailable, "prompt overrides not available")
		return
	}
	if _, known := resolver.GetEmbedded(key); !known {
		writeError(w, http.StatusNotFound, "prompt not found: "+key)
		return
	}

	var req SetPromptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if err := prompts.Validate(key, req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := resolver.Store().Save(key, req.Text); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	svcctx.LoggerFrom(r.Context()).Info("prompt override set", "key", key)

	writeJSON(w, http.StatusOK, PromptResponse{
		Key:        key,
		Text:       req.Text,
		Variables:  prompts.ExtractVariables(req.Text),
		Hash:       prompts.HashText(req.Text),
		IsOverride: true,
	})
}

func (e *SetPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "set <key> [text]",
		Short: "Override a prompt with new text",
		Long: `Override a prompt with new text.

The text is taken from the second argument, or from --file.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			switch {
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", file, err)
				}
				text = string(data)
			case len(args) == 2:
				text = args[1]
			default:
				return fmt.Errorf("provide prompt text or --file")
			}

			client := api.NewClient(getServerURL())
			var resp PromptResponse
			if err := client.Put(cmd.Context(), "/api/prompts/"+args[0], SetPromptRequest{Text: text}, &resp); err != nil {
				return err
			}
			if api.IsStructuredOutput() {
				return api.Output(resp)
			}
			fmt.Printf("Override set for %s (%s)\n", resp.Key, resp.Hash[:12])
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read prompt text from file")
	return cmd
}

// ClearPromptEndpoint handles DELETE /api/prompts/{key...}.
type ClearPromptEndpoint struct{}

func (e *ClearPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/prompts/{key...}", e.handler
}

func (e *ClearPromptEndpoint) RequiresInit() bool { return true }

func (e *ClearPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	key, ok := promptKey(w, r)
	if !ok {
		return
	}
	resolver := svcctx.PromptsFrom(r.Context())
	if resolver == nil || resolver.Store() == nil {
		writeError(w, http.StatusServiceUnavailable, "prompt overrides not available")
		return
	}
	if _, known := resolver.GetEmbedded(key); !known {
		writeError(w, http.StatusNotFound, "prompt not found: "+key)
		return
	}
	if err := resolver.Store().Delete(key); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	svcctx.LoggerFrom(r.Context()).Info("prompt override cleared", "key", key)
	w.WriteHeader(http.StatusNoContent)
}

func (e *ClearPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <key>",
		Short: "Remove a prompt override, restoring the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/prompts/"+args[0]); err != nil {
				return err
			}
			fmt.Printf("Override cleared for %s\n", args[0])
			return nil
		},
	}
}
