package main

import (
	"github.com/spf13/cobra"

	"github.com/enesgrahovac/book-quest/internal/api"
	"github.com/enesgrahovac/book-quest/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Book Quest server via HTTP.

These commands require a running server (bookquest serve).
Use --server to specify a custom server URL.

Examples:
  bookquest api health                          # Check server health
  bookquest api book analyze u1 go-101 go.pdf   # Upload and analyze a book
  bookquest api plan generate u1 go-101         # Build a course plan
  bookquest api plan edit u1 go-101 "You missed the appendix"`,
}

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Course state commands",
}

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book upload and analysis commands",
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Course plan commands",
}

var llmcallsCmd = &cobra.Command{
	Use:   "llmcalls",
	Short: "LLM call history commands",
}

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Prompt inspection and override commands",
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Configuration settings commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

// addEndpoints adds the CLI command of each endpoint to parent.
func addEndpoints(parent *cobra.Command, eps []api.Endpoint) {
	for _, ep := range eps {
		parent.AddCommand(ep.Command(getServerURL))
	}
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	addEndpoints(courseCmd, endpoints.CourseCommands())
	addEndpoints(bookCmd, endpoints.BookCommands())
	addEndpoints(planCmd, endpoints.PlanCommands())
	addEndpoints(llmcallsCmd, endpoints.LLMCallCommands())
	addEndpoints(promptsCmd, endpoints.PromptCommands())
	addEndpoints(settingsCmd, endpoints.SettingsCommands())

	apiCmd.AddCommand(courseCmd, bookCmd, planCmd, llmcallsCmd, promptsCmd, settingsCmd)
	rootCmd.AddCommand(apiCmd)
}
