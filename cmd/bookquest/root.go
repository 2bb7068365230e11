package main

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/enesgrahovac/book-quest/internal/api"
	"github.com/enesgrahovac/book-quest/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	envFile      string
)

var rootCmd = &cobra.Command{
	Use:   "bookquest",
	Short: "Turn PDF books into structured, editable courses",
	Long: `Book Quest turns a PDF book into a course.

The pipeline includes:
  - Page text extraction from the uploaded PDF
  - Chapter detection from PDF links, the table of contents, or an LLM
  - Per-chapter summaries, key concepts and learning objectives
  - Course plans that can be edited in plain language, including
    recovering chapters the detector missed`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.bookquest/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "bookquest home directory (default: ~/.bookquest)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml, json or text",
	)
	rootCmd.PersistentFlags().StringVar(
		&envFile, "env-file", ".env", "dotenv file with provider API keys",
	)

	// Load API keys and set output format before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to load env file", "path", envFile, "error", err)
		}
		api.SetOutputFormat(outputFormat)
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}
