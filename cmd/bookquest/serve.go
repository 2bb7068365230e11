package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/enesgrahovac/book-quest/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Book Quest server",
	Long: `Start the Book Quest HTTP server.

Provider settings in the config file are reloaded when the file changes.

The server provides:
  - /health - Basic server health check
  - /status - Registered providers and home directory
  - /api/users/{user_id}/courses/{course_id}/book       - Upload and analyze a PDF
  - /api/users/{user_id}/courses/{course_id}/plan       - Generate or fetch a course plan
  - /api/users/{user_id}/courses/{course_id}/plan/edit  - Edit a plan in plain language

Examples:
  bookquest serve                    # Start on default port 8080
  bookquest serve --port 3000        # Start on custom port
  bookquest serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		svc, cm, err := loadServices(logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		if cm.ConfigFile() != "" {
			cm.WatchConfig()
			logger.Info("watching config file", "path", cm.ConfigFile())
		}

		srv, err := server.New(server.Config{
			Host:     serveHost,
			Port:     servePort,
			Services: svc.Services,
			Logger:   logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
